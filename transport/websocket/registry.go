package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrConnectionNotFound = errors.New("connection not found")

// connection pairs a socket with a write lock; gorilla allows only one
// concurrent writer per connection.
type connection struct {
	socket *websocket.Conn
	mu     sync.Mutex
}

func (that *connection) writeJSON(v any) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.socket.WriteJSON(v)
}

// Registry tracks live connections by id and the session groups used
// for broadcast. It is the connection registry the use cases emit
// through.
type Registry struct {
	logger *slog.Logger

	mu     sync.RWMutex
	conns  map[string]*connection
	groups map[string]map[string]struct{}
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger: logger.With("component", "registry"),
		conns:  make(map[string]*connection),
		groups: make(map[string]map[string]struct{}),
	}
}

func (that *Registry) Add(connID string, socket *websocket.Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[connID] = &connection{socket: socket}
}

// Remove drops the connection. Group membership is kept: a session
// group outlives its members so a reconnected id can rejoin it.
func (that *Registry) Remove(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, connID)
}

func (that *Registry) IsConnected(connID string) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.conns[connID]

	return ok
}

func (that *Registry) JoinSession(sessionID, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	group, ok := that.groups[sessionID]
	if !ok {
		group = make(map[string]struct{})
		that.groups[sessionID] = group
	}

	group[connID] = struct{}{}
}

// Emit sends one event to one connection.
func (that *Registry) Emit(connID, event string, payload any) error {
	that.mu.RLock()
	conn, ok := that.conns[connID]
	that.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, connID)
	}

	message, err := buildMessage(event, payload)
	if err != nil {
		return err
	}

	if err = conn.writeJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// EmitToSession sends one event to every live member of a session group.
func (that *Registry) EmitToSession(sessionID, event string, payload any) {
	that.emitToGroup(sessionID, "", event, payload)
}

// EmitToSessionExcept is EmitToSession minus one member, matching the
// "everyone else in the room" delivery used for reconnect notices.
func (that *Registry) EmitToSessionExcept(sessionID, exceptConnID, event string, payload any) {
	that.emitToGroup(sessionID, exceptConnID, event, payload)
}

func (that *Registry) emitToGroup(sessionID, exceptConnID, event string, payload any) {
	that.mu.RLock()
	members := make([]string, 0, len(that.groups[sessionID]))
	for connID := range that.groups[sessionID] {
		if connID != exceptConnID {
			members = append(members, connID)
		}
	}
	that.mu.RUnlock()

	for _, connID := range members {
		if err := that.Emit(connID, event, payload); err != nil {
			// dead members are expected in a group that outlives them
			that.logger.Debug("failed to emit to group member", "sessionID", sessionID, "connID", connID, "error", err)
		}
	}
}

func buildMessage(event string, payload any) (*Message, error) {
	message := &Message{Action: event}

	if payload == nil {
		return message, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	message.Payload = raw

	return message, nil
}
