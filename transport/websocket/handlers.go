package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opengambit/chessrelay-backend/internal/entity"
)

func (that *Server) handleJoinQueue(ctx context.Context, connID string, _ json.RawMessage) error {
	that.matchmaker.AddPlayer(ctx, connID)
	return nil
}

func (that *Server) handleLeaveQueue(ctx context.Context, connID string, _ json.RawMessage) error {
	that.matchmaker.RemovePlayer(ctx, connID)
	return nil
}

func (that *Server) handleMoveMade(ctx context.Context, connID string, payload json.RawMessage) error {
	// structural validation happens in the relay, which answers the
	// sender with moveError instead of dropping the event; an absent
	// payload goes through as an empty move for the same reason
	var move entity.Move
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &move); err != nil {
			return fmt.Errorf("failed to unmarshal move: %w", err)
		}
	}

	that.relay.HandleMove(ctx, connID, &move)

	return nil
}

func (that *Server) handleResign(ctx context.Context, connID string, payload json.RawMessage) error {
	opponent, err := unmarshalOpponent(payload)
	if err != nil {
		return err
	}

	that.relay.HandleResign(ctx, connID, opponent.OpponentID)

	return nil
}

func (that *Server) handleUndoRequest(ctx context.Context, connID string, payload json.RawMessage) error {
	opponent, err := unmarshalOpponent(payload)
	if err != nil {
		return err
	}

	that.relay.HandleUndoRequest(ctx, connID, opponent.OpponentID)

	return nil
}

func (that *Server) handleUndoAccepted(ctx context.Context, connID string, payload json.RawMessage) error {
	opponent, err := unmarshalOpponent(payload)
	if err != nil {
		return err
	}

	that.relay.HandleUndoResponse(ctx, connID, opponent.OpponentID, true)

	return nil
}

func (that *Server) handleUndoRejected(ctx context.Context, connID string, payload json.RawMessage) error {
	opponent, err := unmarshalOpponent(payload)
	if err != nil {
		return err
	}

	that.relay.HandleUndoResponse(ctx, connID, opponent.OpponentID, false)

	return nil
}

func (that *Server) handleReconnect(ctx context.Context, connID string, payload json.RawMessage) error {
	var req ReconnectPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal reconnect payload: %w", err)
	}

	that.relay.HandleReconnect(ctx, connID, req.GameID, req.PlayerID)

	return nil
}

func unmarshalOpponent(payload json.RawMessage) (*OpponentPayload, error) {
	var opponent OpponentPayload
	if err := json.Unmarshal(payload, &opponent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal opponent payload: %w", err)
	}

	return &opponent, nil
}
