package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal"
)

// GameUpdate carries the mutable per-game fields. Nil pointers mean
// "leave unchanged".
type GameUpdate struct {
	Status       *string
	PrizePool    *float64
	TotalPlayers *int
	Questions    []internal.Question
}

// PlayerUpdate carries the mutable per-player fields.
type PlayerUpdate struct {
	Eliminated *bool
	Position   *int
	PrizeWon   *float64
}

// GameStore records room, player and session state. Implementations
// may be slow or failing; game logic never calls one directly, every
// call goes through the Recorder.
type GameStore interface {
	CreateGame(ctx context.Context, roomID, creatorID string, entryFee float64, maxPlayers int) error
	AddPlayerToGame(ctx context.Context, roomID, playerID, name, walletAddress string) error
	RemovePlayerFromGame(ctx context.Context, roomID, playerID string) error
	UpdateGame(ctx context.Context, roomID string, upd GameUpdate) error
	UpdatePlayerInGame(ctx context.Context, roomID, playerID string, upd PlayerUpdate) error
	FinishGame(ctx context.Context, roomID, winnerID string) error
	CreateSession(ctx context.Context, roomID, playerID string) error
	RecordAnswer(ctx context.Context, roomID, playerID string, round int, answer string, correct bool, latencyMs int64) error
	CompleteSession(ctx context.Context, roomID, playerID string, score int, prize float64) error
	IncrementQuestionUsage(ctx context.Context, questionID string) error
	UpdateQuestionCorrectRate(ctx context.Context, questionID string, correct bool) error
}

const defaultRecordTimeout = 10 * time.Second

// Recorder dispatches every store call on its own goroutine with a
// bounded timeout, logging and dropping failures. Gameplay proceeds
// identically whether persistence succeeds, fails or hangs.
type Recorder struct {
	store   GameStore
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRecorder(store GameStore) *Recorder {
	return &Recorder{store: store, timeout: defaultRecordTimeout}
}

// Wait blocks until all in-flight recordings finish. Test hook.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) record(op string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Warn().Err(err).Str("op", op).Msg("persistence call failed")
		}
	}()
}

func (r *Recorder) CreateGame(roomID, creatorID string, entryFee float64, maxPlayers int) {
	r.record("create_game", func(ctx context.Context) error {
		return r.store.CreateGame(ctx, roomID, creatorID, entryFee, maxPlayers)
	})
}

func (r *Recorder) AddPlayerToGame(roomID, playerID, name, walletAddress string) {
	r.record("add_player", func(ctx context.Context) error {
		return r.store.AddPlayerToGame(ctx, roomID, playerID, name, walletAddress)
	})
}

func (r *Recorder) RemovePlayerFromGame(roomID, playerID string) {
	r.record("remove_player", func(ctx context.Context) error {
		return r.store.RemovePlayerFromGame(ctx, roomID, playerID)
	})
}

func (r *Recorder) UpdateGame(roomID string, upd GameUpdate) {
	r.record("update_game", func(ctx context.Context) error {
		return r.store.UpdateGame(ctx, roomID, upd)
	})
}

func (r *Recorder) UpdatePlayerInGame(roomID, playerID string, upd PlayerUpdate) {
	r.record("update_player", func(ctx context.Context) error {
		return r.store.UpdatePlayerInGame(ctx, roomID, playerID, upd)
	})
}

func (r *Recorder) FinishGame(roomID, winnerID string) {
	r.record("finish_game", func(ctx context.Context) error {
		return r.store.FinishGame(ctx, roomID, winnerID)
	})
}

func (r *Recorder) CreateSession(roomID, playerID string) {
	r.record("create_session", func(ctx context.Context) error {
		return r.store.CreateSession(ctx, roomID, playerID)
	})
}

func (r *Recorder) RecordAnswer(roomID, playerID string, round int, answer string, correct bool, latencyMs int64) {
	r.record("record_answer", func(ctx context.Context) error {
		return r.store.RecordAnswer(ctx, roomID, playerID, round, answer, correct, latencyMs)
	})
}

func (r *Recorder) CompleteSession(roomID, playerID string, score int, prize float64) {
	r.record("complete_session", func(ctx context.Context) error {
		return r.store.CompleteSession(ctx, roomID, playerID, score, prize)
	})
}

func (r *Recorder) IncrementQuestionUsage(questionID string) {
	r.record("increment_question_usage", func(ctx context.Context) error {
		return r.store.IncrementQuestionUsage(ctx, questionID)
	})
}

func (r *Recorder) UpdateQuestionCorrectRate(questionID string, correct bool) {
	r.record("update_question_correct_rate", func(ctx context.Context) error {
		return r.store.UpdateQuestionCorrectRate(ctx, questionID, correct)
	})
}
