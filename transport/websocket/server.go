package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/opengambit/chessrelay-backend/internal/entity"
)

const eventConnected = "connected"

type matchmaker interface {
	AddPlayer(ctx context.Context, connID string)
	RemovePlayer(ctx context.Context, connID string)
}

type relay interface {
	HandleMove(ctx context.Context, connID string, move *entity.Move)
	HandleDisconnect(ctx context.Context, connID string)
	HandleReconnect(ctx context.Context, connID, sessionID, priorConnID string)
	HandleResign(ctx context.Context, connID, opponentID string)
	HandleUndoRequest(ctx context.Context, connID, opponentID string)
	HandleUndoResponse(ctx context.Context, connID, opponentID string, accepted bool)
}

type Server struct {
	logger     *slog.Logger
	matchmaker matchmaker
	relay      relay
	registry   *Registry
	upgrader   websocket.Upgrader

	handlers map[string]func(ctx context.Context, connID string, payload json.RawMessage) error
}

func New(logger *slog.Logger, allowedOrigin string, matchmaker matchmaker, relay relay, registry *Registry) *Server {
	server := &Server{
		logger:     logger,
		matchmaker: matchmaker,
		relay:      relay,
		registry:   registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOriginFunc(allowedOrigin),
		},

		handlers: make(map[string]func(context.Context, string, json.RawMessage) error),
	}

	server.handlers["join-queue"] = server.handleJoinQueue
	server.handlers["leave-queue"] = server.handleLeaveQueue
	server.handlers["move-made"] = server.handleMoveMade
	server.handlers["resign"] = server.handleResign
	server.handlers["undo-request"] = server.handleUndoRequest
	server.handlers["undo-accepted"] = server.handleUndoAccepted
	server.handlers["undo-rejected"] = server.handleUndoRejected
	server.handlers["reconnect-to-game"] = server.handleReconnect

	return server
}

// Start - starts WebSocket server and shuts it down when ctx is
// canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}

// serveConnection - upgrades the connection and pumps its messages
// until the client goes away.
func (that *Server) serveConnection(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	socket, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer socket.Close()

	connID := uuid.NewString()
	that.registry.Add(connID, socket)

	log = log.With("connID", connID)
	log.Info("WebSocket connection established")

	if err = that.registry.Emit(connID, eventConnected, ConnectedPayload{PlayerID: connID}); err != nil {
		log.Error("failed to send connection id", "error", err)
	}

	defer func() {
		that.registry.Remove(connID)
		that.relay.HandleDisconnect(ctx, connID)
		that.matchmaker.RemovePlayer(ctx, connID)
		log.Info("WebSocket connection closed")
	}()

	that.handleMessages(ctx, connID, socket)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, connID string, socket *websocket.Conn) {
	log := that.logger.With("method", "handleMessages", "connID", connID)

	for {
		_, reqBody, err := socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err = handler(ctx, connID, message.Payload); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func checkOriginFunc(allowedOrigin string) func(r *http.Request) bool {
	if allowedOrigin == "" {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		return r.Header.Get("Origin") == allowedOrigin
	}
}
