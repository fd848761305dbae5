package protocol

import "github.com/lox/freezeout/internal/identity"

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeJoinServer     MessageType = "join_server"
	TypeJoinTable      MessageType = "join_table"
	TypeLeaveTable     MessageType = "leave_table"
	TypeActionResponse MessageType = "action_response"

	// Server -> Client
	TypeServerJoined        MessageType = "server_joined"
	TypeTableJoined         MessageType = "table_joined"
	TypeNoTablesLeft        MessageType = "no_tables_left"
	TypeNotEnoughChips      MessageType = "not_enough_chips"
	TypePlayerAlreadyJoined MessageType = "player_already_joined"
	TypePlayerJoined        MessageType = "player_joined"
	TypePlayerLeft          MessageType = "player_left"
	TypeStartGame           MessageType = "start_game"
	TypeStartHand           MessageType = "start_hand"
	TypeDealCards           MessageType = "deal_cards"
	TypePlayerActed         MessageType = "player_acted"
	TypeGameUpdate          MessageType = "game_update"
	TypeActionRequest       MessageType = "action_request"
	TypeEndHand             MessageType = "end_hand"
	TypeEndGame             MessageType = "end_game"
	TypeShowAccount         MessageType = "show_account"
	TypeError               MessageType = "error"
)

// PlayerAction is an action as it appears on the wire.
type PlayerAction string

const (
	ActionNone       PlayerAction = "none"
	ActionSmallBlind PlayerAction = "small_blind"
	ActionBigBlind   PlayerAction = "big_blind"
	ActionCheck      PlayerAction = "check"
	ActionCall       PlayerAction = "call"
	ActionBet        PlayerAction = "bet"
	ActionRaise      PlayerAction = "raise"
	ActionFold       PlayerAction = "fold"
	ActionAllIn      PlayerAction = "allin"
)

// Error codes sent in Error messages.
const (
	CodeGameRule   = "game_rule"
	CodeNotInTable = "not_in_table"
	CodeBadRequest = "bad_request"
)

// Client -> Server Messages

// JoinServer must be the first message after the handshake.
type JoinServer struct {
	Nickname string `msg:"nickname"`
}

// JoinTable asks the server for a seat at any table with room.
type JoinTable struct{}

// LeaveTable gives up the seat; mid-hand it folds first.
type LeaveTable struct{}

// ActionResponse answers an ActionRequest.
type ActionResponse struct {
	Action PlayerAction `msg:"action"`
	Amount int64        `msg:"amount"` // total bet for bet/raise
}

// Server -> Client Messages

// ServerJoined confirms JoinServer with the player's account.
type ServerJoined struct {
	PlayerID identity.PlayerID `msg:"player_id"`
	Nickname string            `msg:"nickname"`
	Chips    int64             `msg:"chips"`
}

// TableJoined is sent to the joining player.
type TableJoined struct {
	TableID int   `msg:"table_id"`
	Seat    int   `msg:"seat"`
	Chips   int64 `msg:"chips"`
}

// NoTablesLeft is sent when no table can seat the player.
type NoTablesLeft struct{}

// NotEnoughChips is sent when the balance cannot cover the buy-in.
type NotEnoughChips struct{}

// PlayerAlreadyJoined is sent when the player is already seated somewhere.
type PlayerAlreadyJoined struct{}

// PlayerJoined tells the table about a new occupant.
type PlayerJoined struct {
	PlayerID identity.PlayerID `msg:"player_id"`
	Nickname string            `msg:"nickname"`
	Chips    int64             `msg:"chips"`
}

// PlayerLeft tells the table a seat was vacated.
type PlayerLeft struct {
	PlayerID identity.PlayerID `msg:"player_id"`
}

// StartGame is sent when a table fills, with the shuffled seat order.
type StartGame struct {
	Seats []identity.PlayerID `msg:"seats"`
}

// StartHand is sent before the blinds are posted.
type StartHand struct {
	HandID     string            `msg:"hand_id"`
	Button     identity.PlayerID `msg:"button"`
	SmallBlind int64             `msg:"small_blind"`
	BigBlind   int64             `msg:"big_blind"`
}

// DealCards carries a player's hole cards, sent only to that player.
type DealCards struct {
	HandID string   `msg:"hand_id"`
	Cards  []string `msg:"cards"`
}

// PlayerActed is broadcast after every applied action, including blinds
// and actions the server issued on a player's behalf.
type PlayerActed struct {
	HandID       string            `msg:"hand_id"`
	PlayerID     identity.PlayerID `msg:"player_id"`
	Action       PlayerAction      `msg:"action"`
	Amount       int64             `msg:"amount"` // chips put in by this action
	Stack        int64             `msg:"stack"`
	Bet          int64             `msg:"bet"`
	Pot          int64             `msg:"pot"`
	ServerIssued bool              `msg:"server_issued"`
}

// PlayerUpdate is one seat in a GameUpdate.
type PlayerUpdate struct {
	PlayerID identity.PlayerID `msg:"player_id"`
	Stack    int64             `msg:"stack"`
	Bet      int64             `msg:"bet"`
	Status   string            `msg:"status"`
}

// GameUpdate is broadcast when the board or the pots change.
type GameUpdate struct {
	HandID  string         `msg:"hand_id"`
	Street  string         `msg:"street"`
	Board   []string       `msg:"board"`
	Pot     int64          `msg:"pot"`
	Players []PlayerUpdate `msg:"players"`
}

// ActionRequest is broadcast when a seat must act; only the named player may answer.
type ActionRequest struct {
	HandID     string            `msg:"hand_id"`
	PlayerID   identity.PlayerID `msg:"player_id"`
	Actions    []PlayerAction    `msg:"actions"`
	ToCall     int64             `msg:"to_call"`
	MinRaise   int64             `msg:"min_raise"` // smallest legal total bet for bet/raise
	BigBlind   int64             `msg:"big_blind"`
	DeadlineMs int64             `msg:"deadline_ms"`
}

// Payoff is a player's winnings in an EndHand.
type Payoff struct {
	PlayerID identity.PlayerID `msg:"player_id"`
	Chips    int64             `msg:"chips"`
	Hand     string            `msg:"hand,omitempty"` // e.g. "two pair, kings and fours"
}

// PlayerCards are cards shown at showdown.
type PlayerCards struct {
	PlayerID identity.PlayerID `msg:"player_id"`
	Cards    []string          `msg:"cards"`
}

// EndHand is sent when a hand is settled. Cards is empty when the hand ended
// without a showdown.
type EndHand struct {
	HandID  string        `msg:"hand_id"`
	Payoffs []Payoff      `msg:"payoffs"`
	Board   []string      `msg:"board"`
	Cards   []PlayerCards `msg:"cards"`
}

// EndGame is sent when one player holds all the chips.
type EndGame struct {
	Winner identity.PlayerID `msg:"winner"`
	Chips  int64             `msg:"chips"`
}

// ShowAccount carries the player's balance after leaving a table.
type ShowAccount struct {
	Chips int64 `msg:"chips"`
}

// Error is sent to a single client, e.g. for an illegal action.
type Error struct {
	Code    string `msg:"code"`
	Message string `msg:"message"`
}

func (JoinServer) Type() MessageType          { return TypeJoinServer }
func (JoinTable) Type() MessageType           { return TypeJoinTable }
func (LeaveTable) Type() MessageType          { return TypeLeaveTable }
func (ActionResponse) Type() MessageType      { return TypeActionResponse }
func (ServerJoined) Type() MessageType        { return TypeServerJoined }
func (TableJoined) Type() MessageType         { return TypeTableJoined }
func (NoTablesLeft) Type() MessageType        { return TypeNoTablesLeft }
func (NotEnoughChips) Type() MessageType      { return TypeNotEnoughChips }
func (PlayerAlreadyJoined) Type() MessageType { return TypePlayerAlreadyJoined }
func (PlayerJoined) Type() MessageType        { return TypePlayerJoined }
func (PlayerLeft) Type() MessageType          { return TypePlayerLeft }
func (StartGame) Type() MessageType           { return TypeStartGame }
func (StartHand) Type() MessageType           { return TypeStartHand }
func (DealCards) Type() MessageType           { return TypeDealCards }
func (PlayerActed) Type() MessageType         { return TypePlayerActed }
func (GameUpdate) Type() MessageType          { return TypeGameUpdate }
func (ActionRequest) Type() MessageType       { return TypeActionRequest }
func (EndHand) Type() MessageType             { return TypeEndHand }
func (EndGame) Type() MessageType             { return TypeEndGame }
func (ShowAccount) Type() MessageType         { return TypeShowAccount }
func (Error) Type() MessageType               { return TypeError }
