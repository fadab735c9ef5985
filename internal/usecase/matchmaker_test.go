package usecase

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengambit/chessrelay-backend/internal/entity"
	"github.com/opengambit/chessrelay-backend/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestMatchmaker(liveConnIDs ...string) (*Matchmaker, *fakeEmitter, repository.SessionRepository) {
	emitter := newFakeEmitter(liveConnIDs...)
	sessions := repository.NewMemorySessionRepository()

	return NewMatchmaker(testLogger(), emitter, sessions), emitter, sessions
}

func TestMatchmaker_AddPlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("queues a single player", func(t *testing.T) {
		// Given: an empty queue and one live connection
		matchmaker, emitter, _ := newTestMatchmaker("conn-a")

		// When: the connection joins the queue
		matchmaker.AddPlayer(ctx, "conn-a")

		// Then: it is waiting, acknowledged with its display name
		assert.Equal(t, 1, matchmaker.QueueLen())

		joined := emitter.eventsTo("conn-a", eventQueueJoined)
		require.Len(t, joined, 1)
		payload, ok := joined[0].Payload.(QueueJoinedPayload)
		require.True(t, ok)
		assert.NotEmpty(t, payload.PlayerName)
	})

	t.Run("is idempotent per connection", func(t *testing.T) {
		// Given: a connection already in the queue
		matchmaker, emitter, _ := newTestMatchmaker("conn-a")
		matchmaker.AddPlayer(ctx, "conn-a")

		// When: the same connection joins again
		matchmaker.AddPlayer(ctx, "conn-a")

		// Then: the queue still holds it once and no second ack is sent
		assert.Equal(t, 1, matchmaker.QueueLen())
		assert.Len(t, emitter.eventsTo("conn-a", eventQueueJoined), 1)
	})
}

func TestMatchmaker_Pairing(t *testing.T) {
	ctx := context.Background()

	t.Run("pairs the two oldest players", func(t *testing.T) {
		// Given: two live connections joining in order
		matchmaker, emitter, sessions := newTestMatchmaker("conn-a", "conn-b")

		// When: both join the queue
		matchmaker.AddPlayer(ctx, "conn-a")
		matchmaker.AddPlayer(ctx, "conn-b")

		// Then: the queue drains and both sides get gameStarted
		assert.Equal(t, 0, matchmaker.QueueLen())

		startedA := emitter.eventsTo("conn-a", eventGameStarted)
		startedB := emitter.eventsTo("conn-b", eventGameStarted)
		require.Len(t, startedA, 1)
		require.Len(t, startedB, 1)

		payloadA, ok := startedA[0].Payload.(GameStartedPayload)
		require.True(t, ok)
		payloadB, ok := startedB[0].Payload.(GameStartedPayload)
		require.True(t, ok)

		// the first-dequeued side plays white, the other black
		assert.Equal(t, entity.RoleWhite, payloadA.Color)
		assert.Equal(t, entity.RoleBlack, payloadB.Color)
		assert.Equal(t, "conn-b", payloadA.OpponentID)
		assert.Equal(t, "conn-a", payloadB.OpponentID)
		assert.NotEmpty(t, payloadA.OpponentName)
		assert.NotEmpty(t, payloadB.OpponentName)

		// both share one generated session id
		require.NotEmpty(t, payloadA.GameID)
		assert.Equal(t, payloadA.GameID, payloadB.GameID)

		// and the session record exists before either side heard of it
		session, err := sessions.GetByID(ctx, payloadA.GameID)
		require.NoError(t, err)
		assert.Equal(t, "conn-a", session.Players.White)
		assert.Equal(t, "conn-b", session.Players.Black)

		bound, err := sessions.GetByConnection(ctx, "conn-a")
		require.NoError(t, err)
		assert.Equal(t, session.ID, bound.ID)

		bound, err = sessions.GetByConnection(ctx, "conn-b")
		require.NoError(t, err)
		assert.Equal(t, session.ID, bound.ID)
	})

	t.Run("keeps FIFO order across pairings", func(t *testing.T) {
		// Given: three players joining in order
		matchmaker, emitter, _ := newTestMatchmaker("conn-a", "conn-b", "conn-c")

		// When: all three join
		matchmaker.AddPlayer(ctx, "conn-a")
		matchmaker.AddPlayer(ctx, "conn-b")
		matchmaker.AddPlayer(ctx, "conn-c")

		// Then: the two oldest are paired, the newest keeps waiting
		assert.Equal(t, 1, matchmaker.QueueLen())
		assert.Len(t, emitter.eventsTo("conn-a", eventGameStarted), 1)
		assert.Len(t, emitter.eventsTo("conn-b", eventGameStarted), 1)
		assert.Empty(t, emitter.eventsTo("conn-c", eventGameStarted))
	})

	t.Run("re-enqueues the live half of a dead pair", func(t *testing.T) {
		// Given: one queued player whose connection has since died
		matchmaker, emitter, _ := newTestMatchmaker("conn-a", "conn-b", "conn-c")
		matchmaker.AddPlayer(ctx, "conn-a")
		emitter.disconnect("conn-a")

		// When: a live player joins, then another
		matchmaker.AddPlayer(ctx, "conn-b")
		matchmaker.AddPlayer(ctx, "conn-c")

		// Then: the dead entry never pairs; the survivors pair together
		assert.Equal(t, 0, matchmaker.QueueLen())
		assert.Empty(t, emitter.eventsTo("conn-a", eventGameStarted))

		startedB := emitter.eventsTo("conn-b", eventGameStarted)
		require.Len(t, startedB, 1)
		payloadB, ok := startedB[0].Payload.(GameStartedPayload)
		require.True(t, ok)
		assert.Equal(t, "conn-c", payloadB.OpponentID)

		require.Len(t, emitter.eventsTo("conn-c", eventGameStarted), 1)
	})
}

func TestMatchmaker_RemovePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("removes a queued player", func(t *testing.T) {
		// Given: a queued connection
		matchmaker, emitter, _ := newTestMatchmaker("conn-a")
		matchmaker.AddPlayer(ctx, "conn-a")

		// When: it leaves the queue
		matchmaker.RemovePlayer(ctx, "conn-a")

		// Then: the queue is empty and the departure acknowledged
		assert.Equal(t, 0, matchmaker.QueueLen())
		assert.Len(t, emitter.eventsTo("conn-a", eventQueueLeft), 1)
	})

	t.Run("acknowledges a player that was never queued", func(t *testing.T) {
		// Given: an empty queue
		matchmaker, emitter, _ := newTestMatchmaker("conn-a")

		// When: a non-queued connection leaves
		matchmaker.RemovePlayer(ctx, "conn-a")

		// Then: queueLeft is still sent, with no error surfaced
		assert.Len(t, emitter.eventsTo("conn-a", eventQueueLeft), 1)
	})

	t.Run("removed player is not paired", func(t *testing.T) {
		// Given: a player that joined and immediately left
		matchmaker, emitter, _ := newTestMatchmaker("conn-a", "conn-b", "conn-c")
		matchmaker.AddPlayer(ctx, "conn-a")
		matchmaker.RemovePlayer(ctx, "conn-a")

		// When: two more players join
		matchmaker.AddPlayer(ctx, "conn-b")
		matchmaker.AddPlayer(ctx, "conn-c")

		// Then: the pairing skips the departed connection
		assert.Empty(t, emitter.eventsTo("conn-a", eventGameStarted))
		assert.Len(t, emitter.eventsTo("conn-b", eventGameStarted), 1)
		assert.Len(t, emitter.eventsTo("conn-c", eventGameStarted), 1)
	})
}
