package usecase

import (
	"encoding/json"
	"fmt"
	"sync"
)

type emission struct {
	ConnID  string
	Event   string
	Payload any
}

type groupEmission struct {
	SessionID string
	Except    string
	Event     string
	Payload   any
}

// fakeEmitter stands in for the connection registry: it records every
// emission and lets tests flip liveness per connection id.
type fakeEmitter struct {
	mu        sync.Mutex
	live      map[string]bool
	emissions []emission
	groups    map[string][]string
	broadcast []groupEmission
}

func newFakeEmitter(liveConnIDs ...string) *fakeEmitter {
	that := &fakeEmitter{
		live:   make(map[string]bool),
		groups: make(map[string][]string),
	}
	for _, connID := range liveConnIDs {
		that.live[connID] = true
	}

	return that
}

func (that *fakeEmitter) disconnect(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.live[connID] = false
}

func (that *fakeEmitter) Emit(connID, event string, payload any) error {
	frame(payload)

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.live[connID] {
		return fmt.Errorf("connection not found: %s", connID)
	}

	that.emissions = append(that.emissions, emission{ConnID: connID, Event: event, Payload: payload})

	return nil
}

func (that *fakeEmitter) EmitToSession(sessionID, event string, payload any) {
	frame(payload)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.broadcast = append(that.broadcast, groupEmission{SessionID: sessionID, Event: event, Payload: payload})
}

func (that *fakeEmitter) EmitToSessionExcept(sessionID, exceptConnID, event string, payload any) {
	frame(payload)

	that.mu.Lock()
	defer that.mu.Unlock()

	that.broadcast = append(that.broadcast, groupEmission{SessionID: sessionID, Except: exceptConnID, Event: event, Payload: payload})
}

// frame serializes the payload the way the registry does on the wire,
// so the race detector sees any state an emission shares with a
// concurrent writer.
func frame(payload any) {
	if payload == nil {
		return
	}

	_, _ = json.Marshal(payload)
}

func (that *fakeEmitter) JoinSession(sessionID, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.groups[sessionID] = append(that.groups[sessionID], connID)
}

func (that *fakeEmitter) IsConnected(connID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.live[connID]
}

func (that *fakeEmitter) emissionsTo(connID string) []emission {
	that.mu.Lock()
	defer that.mu.Unlock()

	var out []emission
	for _, e := range that.emissions {
		if e.ConnID == connID {
			out = append(out, e)
		}
	}

	return out
}

func (that *fakeEmitter) eventsTo(connID, event string) []emission {
	var out []emission
	for _, e := range that.emissionsTo(connID) {
		if e.Event == event {
			out = append(out, e)
		}
	}

	return out
}
