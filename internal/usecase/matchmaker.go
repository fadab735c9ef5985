package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/opengambit/chessrelay-backend/internal/entity"
	"github.com/opengambit/chessrelay-backend/internal/namegen"
	"github.com/opengambit/chessrelay-backend/internal/repository"
)

// WaitingEntry is one not-yet-paired connection in the queue.
type WaitingEntry struct {
	ConnectionID string
	PlayerName   string
}

// Matchmaker keeps the FIFO waiting list and pairs its two oldest live
// entries into a new session. The mutex gives the list a single-writer
// discipline: each operation runs guard-check through pairing without
// interleaving with another.
type Matchmaker struct {
	logger   *slog.Logger
	emitter  emitter
	sessions repository.SessionRepository

	mu      sync.Mutex
	waiting []WaitingEntry
}

func NewMatchmaker(logger *slog.Logger, emitter emitter, sessions repository.SessionRepository) *Matchmaker {
	return &Matchmaker{
		logger:   logger.With("component", "matchmaker"),
		emitter:  emitter,
		sessions: sessions,
	}
}

// AddPlayer admits a connection to the waiting list. Idempotent: a
// connection already queued is left untouched.
func (that *Matchmaker) AddPlayer(ctx context.Context, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, entry := range that.waiting {
		if entry.ConnectionID == connID {
			return
		}
	}

	entry := WaitingEntry{
		ConnectionID: connID,
		PlayerName:   namegen.Generate(),
	}
	that.waiting = append(that.waiting, entry)

	if err := that.emitter.Emit(connID, eventQueueJoined, QueueJoinedPayload{PlayerName: entry.PlayerName}); err != nil {
		that.logger.Error("failed to send queueJoined", "connID", connID, "error", err)
	}

	that.matchPairs(ctx)
}

// RemovePlayer drops the connection from the waiting list and always
// acknowledges with queueLeft, queued or not.
func (that *Matchmaker) RemovePlayer(_ context.Context, connID string) {
	that.mu.Lock()

	remaining := that.waiting[:0]
	for _, entry := range that.waiting {
		if entry.ConnectionID != connID {
			remaining = append(remaining, entry)
		}
	}
	that.waiting = remaining

	that.mu.Unlock()

	if err := that.emitter.Emit(connID, eventQueueLeft, nil); err != nil {
		that.logger.Debug("failed to send queueLeft", "connID", connID, "error", err)
	}
}

// QueueLen reports the current waiting-list size.
func (that *Matchmaker) QueueLen() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.waiting)
}

// matchPairs consumes the two oldest entries while the list holds at
// least two. A dead candidate is discarded and its live counterpart
// re-enqueued at the tail, so the loop shrinks the list every pass.
// Caller must hold the mutex.
func (that *Matchmaker) matchPairs(ctx context.Context) {
	for len(that.waiting) >= 2 {
		first, second := that.waiting[0], that.waiting[1]
		that.waiting = that.waiting[2:]

		firstLive := that.emitter.IsConnected(first.ConnectionID)
		secondLive := that.emitter.IsConnected(second.ConnectionID)

		if firstLive && secondLive {
			if !that.startSession(ctx, first, second) {
				return
			}
			continue
		}

		if firstLive {
			that.waiting = append(that.waiting, first)
		}
		if secondLive {
			that.waiting = append(that.waiting, second)
		}
	}
}

// startSession materializes the session record and both bindings before
// either side learns about the pairing, so a reconnect works even for a
// session with zero moves made. Returns false when the store rejected
// the session; the pair goes back to the tail for a later attempt.
func (that *Matchmaker) startSession(ctx context.Context, first, second WaitingEntry) bool {
	sessionID := uuid.NewString()

	session := entity.NewSession(sessionID, first.ConnectionID, second.ConnectionID)
	if err := that.sessions.Save(ctx, session); err != nil {
		that.logger.Error("failed to save session, re-enqueueing pair", "sessionID", sessionID, "error", err)
		that.waiting = append(that.waiting, first, second)
		return false
	}

	for _, entry := range []WaitingEntry{first, second} {
		if err := that.sessions.BindConnection(ctx, entry.ConnectionID, sessionID); err != nil {
			that.logger.Error("failed to bind connection", "connID", entry.ConnectionID, "error", err)
		}
		that.emitter.JoinSession(sessionID, entry.ConnectionID)
	}

	firstPayload := GameStartedPayload{
		Color:        entity.RoleWhite,
		OpponentID:   second.ConnectionID,
		GameID:       sessionID,
		OpponentName: second.PlayerName,
	}
	secondPayload := GameStartedPayload{
		Color:        entity.RoleBlack,
		OpponentID:   first.ConnectionID,
		GameID:       sessionID,
		OpponentName: first.PlayerName,
	}

	if err := that.emitter.Emit(first.ConnectionID, eventGameStarted, firstPayload); err != nil {
		that.logger.Error("failed to send gameStarted", "connID", first.ConnectionID, "error", err)
	}
	if err := that.emitter.Emit(second.ConnectionID, eventGameStarted, secondPayload); err != nil {
		that.logger.Error("failed to send gameStarted", "connID", second.ConnectionID, "error", err)
	}

	that.logger.Info("paired players into session", "sessionID", sessionID)

	return true
}
