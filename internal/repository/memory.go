package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/opengambit/chessrelay-backend/internal/entity"
)

// memorySession is the default store: all state lives in process memory
// and is lost on restart. Sessions go in and out as deep copies so no
// caller ever shares a live pointer with the store or with another
// connection goroutine, the same isolation the redis backend gets from
// its JSON round-trip.
type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
	bindings map[string]string
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySession{
		sessions: make(map[string]*entity.Session),
		bindings: make(map[string]string),
	}
}

func (that *memorySession) Save(_ context.Context, session *entity.Session) error {
	cloned, err := cloneSession(session)
	if err != nil {
		return err
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = cloned

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	session, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	return cloneSession(session)
}

func (that *memorySession) GetByConnection(ctx context.Context, connID string) (*entity.Session, error) {
	that.mu.RLock()
	sessionID, ok := that.bindings[connID]
	that.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}

	return that.GetByID(ctx, sessionID)
}

func (that *memorySession) BindConnection(_ context.Context, connID, sessionID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.bindings[connID] = sessionID

	return nil
}

func (that *memorySession) Count(_ context.Context) (int, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions), nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)

	return nil
}

func cloneSession(session *entity.Session) (*entity.Session, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	var cloned entity.Session
	if err = json.Unmarshal(raw, &cloned); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &cloned, nil
}
