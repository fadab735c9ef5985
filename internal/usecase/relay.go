package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/opengambit/chessrelay-backend/internal/entity"
	"github.com/opengambit/chessrelay-backend/internal/repository"
)

const (
	msgInvalidMoveData  = "Invalid move data"
	msgOpponentNotFound = "Opponent not found"
)

// Relay validates and forwards gameplay-control events between the two
// members of a session, and keeps the per-session state they may need
// to resynchronize after a reconnect.
type Relay struct {
	logger   *slog.Logger
	emitter  emitter
	sessions repository.SessionRepository

	// serializes session-state mutation across connection goroutines
	mu sync.Mutex
}

func NewRelay(logger *slog.Logger, emitter emitter, sessions repository.SessionRepository) *Relay {
	return &Relay{
		logger:   logger.With("component", "relay"),
		emitter:  emitter,
		sessions: sessions,
	}
}

// HandleMove checks the move structurally, records it on the sender's
// session when one exists, and forwards it to the addressed opponent.
// The forwarding path tolerates a missing session record; only the
// reconnect-replay mirror degrades without one.
func (that *Relay) HandleMove(ctx context.Context, connID string, move *entity.Move) {
	log := that.logger.With("method", "HandleMove", "connID", connID)

	if err := move.Validate(); err != nil {
		log.Debug("rejected move", "error", err)
		that.sendMoveError(connID, msgInvalidMoveData)
		return
	}

	if !that.emitter.IsConnected(move.OpponentID) {
		log.Debug("opponent not connected", "opponentID", move.OpponentID)
		that.sendMoveError(connID, msgOpponentNotFound)
		return
	}

	that.recordMove(ctx, connID, move)

	payload := MoveMadePayload{
		From:  move.From,
		To:    move.To,
		Piece: move.Piece,
	}
	if err := that.emitter.Emit(move.OpponentID, eventMoveMade, payload); err != nil {
		log.Error("failed to forward move", "opponentID", move.OpponentID, "error", err)
	}
}

// HandleDisconnect notifies the session group that a member dropped.
// The binding is kept so the session stays addressable for a later
// reconnection.
func (that *Relay) HandleDisconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "HandleDisconnect", "connID", connID)

	session, err := that.sessions.GetByConnection(ctx, connID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return
	}

	if err != nil {
		log.Error("failed to look up session", "error", err)
		return
	}

	that.emitter.EmitToSession(session.ID, eventOpponentDisconnected, nil)
}

// HandleReconnect binds a fresh connection to an existing session,
// replays the mirrored snapshot to it, and tells the other member.
// An unknown session id is a silent no-op.
func (that *Relay) HandleReconnect(ctx context.Context, connID, sessionID, priorConnID string) {
	log := that.logger.With("method", "HandleReconnect", "connID", connID, "sessionID", sessionID)

	session, err := that.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		log.Debug("reconnect to unknown session", "priorConnID", priorConnID)
		return
	}

	if err != nil {
		log.Error("failed to look up session", "error", err)
		return
	}

	if err = that.sessions.BindConnection(ctx, connID, sessionID); err != nil {
		log.Error("failed to bind connection", "error", err)
		return
	}

	that.emitter.JoinSession(sessionID, connID)

	if err = that.emitter.Emit(connID, eventGameState, GameStatePayload{State: session.ClientState}); err != nil {
		log.Error("failed to replay game state", "error", err)
	}

	that.emitter.EmitToSessionExcept(sessionID, connID, eventOpponentReconnected, GameStatePayload{State: session.ClientState})
}

// HandleResign forwards the resignation notice to the named opponent.
// The opponent id is taken on trust; pairing is not verified.
func (that *Relay) HandleResign(_ context.Context, connID, opponentID string) {
	if err := that.emitter.Emit(opponentID, eventOpponentResigned, nil); err != nil {
		that.logger.Debug("failed to forward resignation", "connID", connID, "opponentID", opponentID, "error", err)
	}
}

// HandleUndoRequest forwards an undo request, same trust model as resign.
func (that *Relay) HandleUndoRequest(_ context.Context, connID, opponentID string) {
	if err := that.emitter.Emit(opponentID, eventUndoRequested, nil); err != nil {
		that.logger.Debug("failed to forward undo request", "connID", connID, "opponentID", opponentID, "error", err)
	}
}

// HandleUndoResponse forwards the verdict on a pending undo request.
func (that *Relay) HandleUndoResponse(_ context.Context, connID, opponentID string, accepted bool) {
	event := eventUndoRejected
	if accepted {
		event = eventUndoAccepted
	}

	if err := that.emitter.Emit(opponentID, event, nil); err != nil {
		that.logger.Debug("failed to forward undo response", "connID", connID, "opponentID", opponentID, "error", err)
	}
}

func (that *Relay) recordMove(ctx context.Context, connID string, move *entity.Move) {
	log := that.logger.With("method", "recordMove", "connID", connID)

	that.mu.Lock()
	defer that.mu.Unlock()

	session, err := that.sessions.GetByConnection(ctx, connID)
	if errors.Is(err, repository.ErrSessionNotFound) {
		log.Debug("no session bound to sender, forwarding without recording")
		return
	}

	if err != nil {
		log.Error("failed to look up session", "error", err)
		return
	}

	session.RecordMove(move)

	if err = that.sessions.Save(ctx, session); err != nil {
		log.Error("failed to save session", "sessionID", session.ID, "error", err)
	}
}

func (that *Relay) sendMoveError(connID, message string) {
	if err := that.emitter.Emit(connID, eventMoveError, MoveErrorPayload{Message: message}); err != nil {
		that.logger.Debug("failed to send moveError", "connID", connID, "error", err)
	}
}
