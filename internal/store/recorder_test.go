package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyStore embeds NoopStore and records calls, optionally failing or
// blocking every operation.
type spyStore struct {
	NoopStore

	mu    sync.Mutex
	calls []string

	err     error
	release chan struct{} // when set, ops block until closed or ctx expires
}

func (s *spyStore) note(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	s.mu.Unlock()
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *spyStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *spyStore) CreateGame(ctx context.Context, roomID, creatorID string, entryFee float64, maxPlayers int) error {
	return s.note(ctx, "create_game")
}

func (s *spyStore) AddPlayerToGame(ctx context.Context, roomID, playerID, name, walletAddress string) error {
	return s.note(ctx, "add_player")
}

func (s *spyStore) FinishGame(ctx context.Context, roomID, winnerID string) error {
	return s.note(ctx, "finish_game")
}

func TestRecorderDispatchesCalls(t *testing.T) {
	spy := &spyStore{}
	rec := NewRecorder(spy)

	rec.CreateGame("ABC123", "p1", 0.5, 50)
	rec.AddPlayerToGame("ABC123", "p1", "alice", "0xabc")
	rec.FinishGame("ABC123", "p1")
	rec.Wait()

	spy.mu.Lock()
	defer spy.mu.Unlock()
	assert.ElementsMatch(t, []string{"create_game", "add_player", "finish_game"}, spy.calls)
}

// A failing store is logged and dropped; the caller never sees it.
func TestRecorderSwallowsStoreErrors(t *testing.T) {
	spy := &spyStore{err: errors.New("db down")}
	rec := NewRecorder(spy)

	require.NotPanics(t, func() {
		rec.CreateGame("ABC123", "p1", 0.5, 50)
		rec.Wait()
	})
	assert.Equal(t, 1, spy.callCount())
}

// A hanging store must not block the caller, and the bounded context
// eventually cuts the call loose.
func TestRecorderDoesNotBlockCaller(t *testing.T) {
	spy := &spyStore{release: make(chan struct{})}
	rec := NewRecorder(spy)
	rec.timeout = 50 * time.Millisecond

	start := time.Now()
	rec.FinishGame("ABC123", "p1")
	require.Less(t, time.Since(start), 20*time.Millisecond, "recorder call must return immediately")

	rec.Wait() // returns once the 50ms context expires
	assert.Equal(t, 1, spy.callCount())
}

func TestRecorderWaitDrainsConcurrentCalls(t *testing.T) {
	spy := &spyStore{}
	rec := NewRecorder(spy)

	for i := 0; i < 20; i++ {
		rec.AddPlayerToGame("ABC123", "p", "name", "")
	}
	rec.Wait()
	assert.Equal(t, 20, spy.callCount())
}

func TestNoopStoreSatisfiesInterface(t *testing.T) {
	var s GameStore = NoopStore{}
	assert.NoError(t, s.CreateGame(context.Background(), "ABC123", "p1", 0.5, 50))
	assert.NoError(t, s.UpdateGame(context.Background(), "ABC123", GameUpdate{}))
	assert.NoError(t, s.IncrementQuestionUsage(context.Background(), "q1"))
}
