package protocol

import (
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

var (
	ErrUnknownMessageType = errors.New("protocol: unknown message type")
	ErrMissingData        = errors.New("protocol: message has no data")
)

// Message is implemented by every protocol message.
type Message interface {
	Type() MessageType
	msgp.Marshaler
}

// Marshal encodes msg as {"type": <type>, "data": <message>}.
func Marshal(msg Message) ([]byte, error) {
	b := make([]byte, 0, 128)
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "type")
	b = msgp.AppendString(b, string(msg.Type()))
	b = msgp.AppendString(b, "data")
	return msg.MarshalMsg(b)
}

// Unmarshal decodes a message produced by Marshal. The returned Message is
// the value type, e.g. ActionResponse, not *ActionResponse.
func Unmarshal(data []byte) (Message, error) {
	var (
		typ  MessageType
		body []byte
	)
	rest, err := walkMap(data, func(key string, b []byte) ([]byte, error) {
		switch key {
		case "type":
			s, o, err := msgp.ReadStringBytes(b)
			typ = MessageType(s)
			return o, err
		case "data":
			o, err := msgp.Skip(b)
			if err != nil {
				return o, err
			}
			body = b[:len(b)-len(o)]
			return o, nil
		}
		return msgp.Skip(b)
	})
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("protocol: %d trailing bytes", len(rest))
	}
	if body == nil {
		return nil, ErrMissingData
	}

	switch typ {
	case TypeJoinServer:
		return decode[JoinServer](body)
	case TypeJoinTable:
		return decode[JoinTable](body)
	case TypeLeaveTable:
		return decode[LeaveTable](body)
	case TypeActionResponse:
		return decode[ActionResponse](body)
	case TypeServerJoined:
		return decode[ServerJoined](body)
	case TypeTableJoined:
		return decode[TableJoined](body)
	case TypeNoTablesLeft:
		return decode[NoTablesLeft](body)
	case TypeNotEnoughChips:
		return decode[NotEnoughChips](body)
	case TypePlayerAlreadyJoined:
		return decode[PlayerAlreadyJoined](body)
	case TypePlayerJoined:
		return decode[PlayerJoined](body)
	case TypePlayerLeft:
		return decode[PlayerLeft](body)
	case TypeStartGame:
		return decode[StartGame](body)
	case TypeStartHand:
		return decode[StartHand](body)
	case TypeDealCards:
		return decode[DealCards](body)
	case TypePlayerActed:
		return decode[PlayerActed](body)
	case TypeGameUpdate:
		return decode[GameUpdate](body)
	case TypeActionRequest:
		return decode[ActionRequest](body)
	case TypeEndHand:
		return decode[EndHand](body)
	case TypeEndGame:
		return decode[EndGame](body)
	case TypeShowAccount:
		return decode[ShowAccount](body)
	case TypeError:
		return decode[Error](body)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, typ)
}

// decode unmarshals body into a T through its pointer method set.
func decode[T any, PT interface {
	*T
	msgp.Unmarshaler
}](body []byte) (Message, error) {
	var v T
	if _, err := PT(&v).UnmarshalMsg(body); err != nil {
		return nil, err
	}
	return any(v).(Message), nil
}
