package rest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStart_StopsOnContextCancel(t *testing.T) {
	// Given: a running server on an ephemeral port
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Start(ctx, "0", &fakeQueue{}, &fakeCounter{})
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
