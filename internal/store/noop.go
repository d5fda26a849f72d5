package store

import "context"

// NoopStore discards everything. Used when no DATABASE_URL is
// configured; the game runs identically without persistence.
type NoopStore struct{}

func (NoopStore) CreateGame(context.Context, string, string, float64, int) error { return nil }
func (NoopStore) AddPlayerToGame(context.Context, string, string, string, string) error {
	return nil
}
func (NoopStore) RemovePlayerFromGame(context.Context, string, string) error { return nil }
func (NoopStore) UpdateGame(context.Context, string, GameUpdate) error       { return nil }
func (NoopStore) UpdatePlayerInGame(context.Context, string, string, PlayerUpdate) error {
	return nil
}
func (NoopStore) FinishGame(context.Context, string, string) error    { return nil }
func (NoopStore) CreateSession(context.Context, string, string) error { return nil }
func (NoopStore) RecordAnswer(context.Context, string, string, int, string, bool, int64) error {
	return nil
}
func (NoopStore) CompleteSession(context.Context, string, string, int, float64) error { return nil }
func (NoopStore) IncrementQuestionUsage(context.Context, string) error                { return nil }
func (NoopStore) UpdateQuestionCorrectRate(context.Context, string, bool) error       { return nil }
