package entity

const (
	RoleWhite = "white"
	RoleBlack = "black"
)

// Players holds the two fixed connection-id slots of a session. The
// slots never change owner; only the liveness of the underlying
// connections varies.
type Players struct {
	White string `json:"white"`
	Black string `json:"black"`
}

// ClientState is the opaque snapshot mirrored from the client's own
// state representation. It is used only to resynchronize a reconnecting
// participant, never for rule enforcement.
type ClientState map[string]any

type Session struct {
	ID          string      `json:"id"`
	Players     Players     `json:"players"`
	Turn        string      `json:"player_turn"`
	MoveHistory []string    `json:"move_history,omitempty"`
	LastMove    *Move       `json:"last_move,omitempty"`
	ClientState ClientState `json:"client_state,omitempty"`
}

func NewSession(id, whiteID, blackID string) *Session {
	return &Session{
		ID:   id,
		Turn: RoleWhite,
		Players: Players{
			White: whiteID,
			Black: blackID,
		},
	}
}

// RecordMove stores the relayed move: last move, its mirror inside the
// client-state snapshot, the history entry, and the turn flip.
func (that *Session) RecordMove(move *Move) {
	that.LastMove = move
	that.MoveHistory = append(that.MoveHistory, move.Notation())

	if that.ClientState == nil {
		that.ClientState = ClientState{}
	}
	that.ClientState["lastMove"] = map[string]any{
		"from":  move.From,
		"to":    move.To,
		"piece": move.Piece,
	}

	if that.Turn == RoleWhite {
		that.Turn = RoleBlack
	} else {
		that.Turn = RoleWhite
	}
}

func (that *Session) HasPlayer(connID string) bool {
	return that.Players.White == connID || that.Players.Black == connID
}

// Opponent returns the other slot's connection id, or "" when connID
// holds neither slot (a reconnected id bound after the fact).
func (that *Session) Opponent(connID string) string {
	switch connID {
	case that.Players.White:
		return that.Players.Black
	case that.Players.Black:
		return that.Players.White
	default:
		return ""
	}
}
