package websocket

import "encoding/json"

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OpponentPayload addresses a trust-model control event (resign, undo)
// to a named peer connection.
type OpponentPayload struct {
	OpponentID string `json:"opponentId"`
}

// ReconnectPayload rejoins a connection to an existing session. The
// client also sends its own currentGameState snapshot; the server
// replays its mirrored copy instead, so that field is not read.
type ReconnectPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}
