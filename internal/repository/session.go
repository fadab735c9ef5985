package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opengambit/chessrelay-backend/internal/entity"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	sessionKeyPrefix = "session:"
	bindingKeyPrefix = "binding:"
)

// SessionRepository holds live session state and the connection→session
// index. Bindings are many-to-one: two (or, after a reconnect, more)
// connection ids may point at the same session.
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	GetByConnection(ctx context.Context, connID string) (*entity.Session, error)
	BindConnection(ctx context.Context, connID, sessionID string) error
	Count(ctx context.Context) (int, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository - redis-backed store. ttl 0 means no expiry.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbSession) Save(ctx context.Context, session *entity.Session) error {
	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal session: %w", err)
	}

	sessionKey := sessionKeyPrefix + session.ID
	if err = that.client.Set(ctx, sessionKey, sessionJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	sessionKey := sessionKeyPrefix + id

	response, err := that.client.Get(ctx, sessionKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var existingSession entity.Session
	if err = json.Unmarshal([]byte(response), &existingSession); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &existingSession, nil
}

func (that *dbSession) GetByConnection(ctx context.Context, connID string) (*entity.Session, error) {
	bindingKey := bindingKeyPrefix + connID

	sessionID, err := that.client.Get(ctx, bindingKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get binding: %w", err)
	}

	return that.GetByID(ctx, sessionID)
}

func (that *dbSession) BindConnection(ctx context.Context, connID, sessionID string) error {
	bindingKey := bindingKeyPrefix + connID

	if err := that.client.Set(ctx, bindingKey, sessionID, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to bind connection: %w", err)
	}

	return nil
}

func (that *dbSession) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)

	for {
		keys, next, err := that.client.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan sessions: %w", err)
		}

		total += len(keys)

		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	sessionKey := sessionKeyPrefix + id

	if err := that.client.Del(ctx, sessionKey).Err(); err != nil {
		return fmt.Errorf("failed to delete session by ID: %w", err)
	}

	return nil
}
