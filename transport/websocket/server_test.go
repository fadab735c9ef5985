package websocket

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/opengambit/chessrelay-backend/internal/entity"
)

type nopMatchmaker struct{}

func (nopMatchmaker) AddPlayer(context.Context, string)    {}
func (nopMatchmaker) RemovePlayer(context.Context, string) {}

type nopRelay struct{}

func (nopRelay) HandleMove(context.Context, string, *entity.Move)         {}
func (nopRelay) HandleDisconnect(context.Context, string)                 {}
func (nopRelay) HandleReconnect(context.Context, string, string, string)  {}
func (nopRelay) HandleResign(context.Context, string, string)             {}
func (nopRelay) HandleUndoRequest(context.Context, string, string)        {}
func (nopRelay) HandleUndoResponse(context.Context, string, string, bool) {}

func TestServer_StopsOnContextCancel(t *testing.T) {
	// Given: a running server on an ephemeral port
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	server := New(logger, "", nopMatchmaker{}, nopRelay{}, testRegistry())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx, "0")
	}()

	// let the listener come up before stopping it
	time.Sleep(50 * time.Millisecond)

	// When: the application context is canceled
	cancel()

	// Then: Start returns cleanly instead of hanging in ListenAndServe
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down on context cancel")
	}
}
