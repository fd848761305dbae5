package protocol

import (
	"github.com/tinylib/msgp/msgp"

	"github.com/lox/freezeout/internal/identity"
)

// Hand written msgpack encoders in the shape msgp generates: each message is
// a map keyed by its msg tags, and unknown keys are skipped so that fields
// can be added without breaking older peers.

func walkMap(b []byte, field func(key string, b []byte) ([]byte, error)) ([]byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return b, err
	}
	for range n {
		var key []byte
		key, b, err = msgp.ReadMapKeyZC(b)
		if err != nil {
			return b, err
		}
		b, err = field(string(key), b)
		if err != nil {
			return b, msgp.WrapError(err, string(key))
		}
	}
	return b, nil
}

func appendPlayerID(b []byte, id identity.PlayerID) []byte {
	return msgp.AppendBytes(b, id[:])
}

func readPlayerID(b []byte) (identity.PlayerID, []byte, error) {
	raw, o, err := msgp.ReadBytesZC(b)
	if err != nil {
		return identity.PlayerID{}, b, err
	}
	id, err := identity.PlayerIDFromBytes(raw)
	return id, o, err
}

func appendStrings(b []byte, ss []string) []byte {
	b = msgp.AppendArrayHeader(b, uint32(len(ss)))
	for _, s := range ss {
		b = msgp.AppendString(b, s)
	}
	return b
}

func readStrings(b []byte) ([]string, []byte, error) {
	n, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	out := make([]string, n)
	for i := range out {
		out[i], b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
	}
	return out, b, nil
}

func readAction(b []byte) (PlayerAction, []byte, error) {
	s, o, err := msgp.ReadStringBytes(b)
	return PlayerAction(s), o, err
}

// MarshalMsg implements msgp.Marshaler
func (z JoinServer) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 1)
	b = msgp.AppendString(b, "nickname")
	b = msgp.AppendString(b, z.Nickname)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *JoinServer) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "nickname":
			z.Nickname, o, err = msgp.ReadStringBytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

func marshalEmpty(b []byte) ([]byte, error) {
	return msgp.AppendMapHeader(b, 0), nil
}

func unmarshalEmpty(b []byte) ([]byte, error) {
	return walkMap(b, func(_ string, b []byte) ([]byte, error) { return msgp.Skip(b) })
}

func (JoinTable) MarshalMsg(b []byte) ([]byte, error)              { return marshalEmpty(b) }
func (*JoinTable) UnmarshalMsg(b []byte) ([]byte, error)           { return unmarshalEmpty(b) }
func (LeaveTable) MarshalMsg(b []byte) ([]byte, error)             { return marshalEmpty(b) }
func (*LeaveTable) UnmarshalMsg(b []byte) ([]byte, error)          { return unmarshalEmpty(b) }
func (NoTablesLeft) MarshalMsg(b []byte) ([]byte, error)           { return marshalEmpty(b) }
func (*NoTablesLeft) UnmarshalMsg(b []byte) ([]byte, error)        { return unmarshalEmpty(b) }
func (NotEnoughChips) MarshalMsg(b []byte) ([]byte, error)         { return marshalEmpty(b) }
func (*NotEnoughChips) UnmarshalMsg(b []byte) ([]byte, error)      { return unmarshalEmpty(b) }
func (PlayerAlreadyJoined) MarshalMsg(b []byte) ([]byte, error)    { return marshalEmpty(b) }
func (*PlayerAlreadyJoined) UnmarshalMsg(b []byte) ([]byte, error) { return unmarshalEmpty(b) }

// MarshalMsg implements msgp.Marshaler
func (z ActionResponse) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "action")
	b = msgp.AppendString(b, string(z.Action))
	b = msgp.AppendString(b, "amount")
	b = msgp.AppendInt64(b, z.Amount)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *ActionResponse) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "action":
			z.Action, o, err = readAction(b)
			return o, err
		case "amount":
			z.Amount, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z ServerJoined) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 3)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "nickname")
	b = msgp.AppendString(b, z.Nickname)
	b = msgp.AppendString(b, "chips")
	b = msgp.AppendInt64(b, z.Chips)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *ServerJoined) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "nickname":
			z.Nickname, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "chips":
			z.Chips, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z TableJoined) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 3)
	b = msgp.AppendString(b, "table_id")
	b = msgp.AppendInt(b, z.TableID)
	b = msgp.AppendString(b, "seat")
	b = msgp.AppendInt(b, z.Seat)
	b = msgp.AppendString(b, "chips")
	b = msgp.AppendInt64(b, z.Chips)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *TableJoined) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "table_id":
			z.TableID, o, err = msgp.ReadIntBytes(b)
			return o, err
		case "seat":
			z.Seat, o, err = msgp.ReadIntBytes(b)
			return o, err
		case "chips":
			z.Chips, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z PlayerJoined) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 3)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "nickname")
	b = msgp.AppendString(b, z.Nickname)
	b = msgp.AppendString(b, "chips")
	b = msgp.AppendInt64(b, z.Chips)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *PlayerJoined) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "nickname":
			z.Nickname, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "chips":
			z.Chips, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z PlayerLeft) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 1)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *PlayerLeft) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		if key == "player_id" {
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z StartGame) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 1)
	b = msgp.AppendString(b, "seats")
	b = msgp.AppendArrayHeader(b, uint32(len(z.Seats)))
	for _, id := range z.Seats {
		b = appendPlayerID(b, id)
	}
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *StartGame) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) ([]byte, error) {
		if key != "seats" {
			return msgp.Skip(b)
		}
		n, b, err := msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return b, err
		}
		z.Seats = make([]identity.PlayerID, n)
		for i := range z.Seats {
			z.Seats[i], b, err = readPlayerID(b)
			if err != nil {
				return b, err
			}
		}
		return b, nil
	})
}

// MarshalMsg implements msgp.Marshaler
func (z StartHand) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 4)
	b = msgp.AppendString(b, "hand_id")
	b = msgp.AppendString(b, z.HandID)
	b = msgp.AppendString(b, "button")
	b = appendPlayerID(b, z.Button)
	b = msgp.AppendString(b, "small_blind")
	b = msgp.AppendInt64(b, z.SmallBlind)
	b = msgp.AppendString(b, "big_blind")
	b = msgp.AppendInt64(b, z.BigBlind)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *StartHand) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "hand_id":
			z.HandID, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "button":
			z.Button, o, err = readPlayerID(b)
			return o, err
		case "small_blind":
			z.SmallBlind, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "big_blind":
			z.BigBlind, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z DealCards) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "hand_id")
	b = msgp.AppendString(b, z.HandID)
	b = msgp.AppendString(b, "cards")
	b = appendStrings(b, z.Cards)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *DealCards) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "hand_id":
			z.HandID, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "cards":
			z.Cards, o, err = readStrings(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z PlayerActed) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 8)
	b = msgp.AppendString(b, "hand_id")
	b = msgp.AppendString(b, z.HandID)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "action")
	b = msgp.AppendString(b, string(z.Action))
	b = msgp.AppendString(b, "amount")
	b = msgp.AppendInt64(b, z.Amount)
	b = msgp.AppendString(b, "stack")
	b = msgp.AppendInt64(b, z.Stack)
	b = msgp.AppendString(b, "bet")
	b = msgp.AppendInt64(b, z.Bet)
	b = msgp.AppendString(b, "pot")
	b = msgp.AppendInt64(b, z.Pot)
	b = msgp.AppendString(b, "server_issued")
	b = msgp.AppendBool(b, z.ServerIssued)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *PlayerActed) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "hand_id":
			z.HandID, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "action":
			z.Action, o, err = readAction(b)
			return o, err
		case "amount":
			z.Amount, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "stack":
			z.Stack, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "bet":
			z.Bet, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "pot":
			z.Pot, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "server_issued":
			z.ServerIssued, o, err = msgp.ReadBoolBytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z PlayerUpdate) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 4)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "stack")
	b = msgp.AppendInt64(b, z.Stack)
	b = msgp.AppendString(b, "bet")
	b = msgp.AppendInt64(b, z.Bet)
	b = msgp.AppendString(b, "status")
	b = msgp.AppendString(b, z.Status)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *PlayerUpdate) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "stack":
			z.Stack, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "bet":
			z.Bet, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "status":
			z.Status, o, err = msgp.ReadStringBytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z GameUpdate) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 5)
	b = msgp.AppendString(b, "hand_id")
	b = msgp.AppendString(b, z.HandID)
	b = msgp.AppendString(b, "street")
	b = msgp.AppendString(b, z.Street)
	b = msgp.AppendString(b, "board")
	b = appendStrings(b, z.Board)
	b = msgp.AppendString(b, "pot")
	b = msgp.AppendInt64(b, z.Pot)
	b = msgp.AppendString(b, "players")
	b = msgp.AppendArrayHeader(b, uint32(len(z.Players)))
	for _, p := range z.Players {
		b, _ = p.MarshalMsg(b)
	}
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *GameUpdate) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "hand_id":
			z.HandID, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "street":
			z.Street, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "board":
			z.Board, o, err = readStrings(b)
			return o, err
		case "pot":
			z.Pot, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "players":
			var n uint32
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return b, err
			}
			z.Players = make([]PlayerUpdate, n)
			for i := range z.Players {
				if b, err = z.Players[i].UnmarshalMsg(b); err != nil {
					return b, err
				}
			}
			return b, nil
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z ActionRequest) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 7)
	b = msgp.AppendString(b, "hand_id")
	b = msgp.AppendString(b, z.HandID)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "actions")
	b = msgp.AppendArrayHeader(b, uint32(len(z.Actions)))
	for _, a := range z.Actions {
		b = msgp.AppendString(b, string(a))
	}
	b = msgp.AppendString(b, "to_call")
	b = msgp.AppendInt64(b, z.ToCall)
	b = msgp.AppendString(b, "min_raise")
	b = msgp.AppendInt64(b, z.MinRaise)
	b = msgp.AppendString(b, "big_blind")
	b = msgp.AppendInt64(b, z.BigBlind)
	b = msgp.AppendString(b, "deadline_ms")
	b = msgp.AppendInt64(b, z.DeadlineMs)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *ActionRequest) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "hand_id":
			z.HandID, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "actions":
			var n uint32
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return b, err
			}
			z.Actions = make([]PlayerAction, n)
			for i := range z.Actions {
				if z.Actions[i], b, err = readAction(b); err != nil {
					return b, err
				}
			}
			return b, nil
		case "to_call":
			z.ToCall, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "min_raise":
			z.MinRaise, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "big_blind":
			z.BigBlind, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "deadline_ms":
			z.DeadlineMs, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z Payoff) MarshalMsg(b []byte) ([]byte, error) {
	n := uint32(2)
	if z.Hand != "" {
		n++
	}
	b = msgp.AppendMapHeader(b, n)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "chips")
	b = msgp.AppendInt64(b, z.Chips)
	if z.Hand != "" {
		b = msgp.AppendString(b, "hand")
		b = msgp.AppendString(b, z.Hand)
	}
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Payoff) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "chips":
			z.Chips, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		case "hand":
			z.Hand, o, err = msgp.ReadStringBytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z PlayerCards) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "player_id")
	b = appendPlayerID(b, z.PlayerID)
	b = msgp.AppendString(b, "cards")
	b = appendStrings(b, z.Cards)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *PlayerCards) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "player_id":
			z.PlayerID, o, err = readPlayerID(b)
			return o, err
		case "cards":
			z.Cards, o, err = readStrings(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z EndHand) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 4)
	b = msgp.AppendString(b, "hand_id")
	b = msgp.AppendString(b, z.HandID)
	b = msgp.AppendString(b, "payoffs")
	b = msgp.AppendArrayHeader(b, uint32(len(z.Payoffs)))
	for _, p := range z.Payoffs {
		b, _ = p.MarshalMsg(b)
	}
	b = msgp.AppendString(b, "board")
	b = appendStrings(b, z.Board)
	b = msgp.AppendString(b, "cards")
	b = msgp.AppendArrayHeader(b, uint32(len(z.Cards)))
	for _, c := range z.Cards {
		b, _ = c.MarshalMsg(b)
	}
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *EndHand) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "hand_id":
			z.HandID, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "payoffs":
			var n uint32
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return b, err
			}
			z.Payoffs = make([]Payoff, n)
			for i := range z.Payoffs {
				if b, err = z.Payoffs[i].UnmarshalMsg(b); err != nil {
					return b, err
				}
			}
			return b, nil
		case "board":
			z.Board, o, err = readStrings(b)
			return o, err
		case "cards":
			var n uint32
			n, b, err = msgp.ReadArrayHeaderBytes(b)
			if err != nil {
				return b, err
			}
			z.Cards = make([]PlayerCards, n)
			for i := range z.Cards {
				if b, err = z.Cards[i].UnmarshalMsg(b); err != nil {
					return b, err
				}
			}
			return b, nil
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z EndGame) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "winner")
	b = appendPlayerID(b, z.Winner)
	b = msgp.AppendString(b, "chips")
	b = msgp.AppendInt64(b, z.Chips)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *EndGame) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "winner":
			z.Winner, o, err = readPlayerID(b)
			return o, err
		case "chips":
			z.Chips, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z ShowAccount) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 1)
	b = msgp.AppendString(b, "chips")
	b = msgp.AppendInt64(b, z.Chips)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *ShowAccount) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		if key == "chips" {
			z.Chips, o, err = msgp.ReadInt64Bytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}

// MarshalMsg implements msgp.Marshaler
func (z Error) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendMapHeader(b, 2)
	b = msgp.AppendString(b, "code")
	b = msgp.AppendString(b, z.Code)
	b = msgp.AppendString(b, "message")
	b = msgp.AppendString(b, z.Message)
	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler
func (z *Error) UnmarshalMsg(b []byte) ([]byte, error) {
	return walkMap(b, func(key string, b []byte) (o []byte, err error) {
		switch key {
		case "code":
			z.Code, o, err = msgp.ReadStringBytes(b)
			return o, err
		case "message":
			z.Message, o, err = msgp.ReadStringBytes(b)
			return o, err
		}
		return msgp.Skip(b)
	})
}
