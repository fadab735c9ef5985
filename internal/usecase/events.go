package usecase

import "github.com/opengambit/chessrelay-backend/internal/entity"

// emitter is the connection registry as seen from the use cases: live
// connections addressable by id, plus named session groups for
// broadcast. The websocket transport implements it.
type emitter interface {
	Emit(connID, event string, payload any) error
	EmitToSession(sessionID, event string, payload any)
	EmitToSessionExcept(sessionID, exceptConnID, event string, payload any)
	JoinSession(sessionID, connID string)
	IsConnected(connID string) bool
}

// Outbound event names, as clients consume them.
const (
	eventQueueJoined          = "queueJoined"
	eventQueueLeft            = "queueLeft"
	eventGameStarted          = "gameStarted"
	eventMoveMade             = "moveMade"
	eventMoveError            = "moveError"
	eventOpponentResigned     = "opponentResigned"
	eventUndoRequested        = "undoRequested"
	eventUndoAccepted         = "undoAccepted"
	eventUndoRejected         = "undoRejected"
	eventOpponentDisconnected = "opponentDisconnected"
	eventOpponentReconnected  = "opponentReconnected"
	eventGameState            = "gameState"
)

type QueueJoinedPayload struct {
	PlayerName string `json:"playerName"`
}

type GameStartedPayload struct {
	Color        string `json:"color"`
	OpponentID   string `json:"opponentId"`
	GameID       string `json:"gameId"`
	OpponentName string `json:"opponentName"`
}

type MoveMadePayload struct {
	From  *entity.Square `json:"from"`
	To    *entity.Square `json:"to"`
	Piece *entity.Piece  `json:"piece"`
}

type MoveErrorPayload struct {
	Message string `json:"message"`
}

type GameStatePayload struct {
	State entity.ClientState `json:"state"`
}
