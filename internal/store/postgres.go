package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is the pgx-backed GameStore. Schema is created with
// Migrate; all statements are simple single-row upserts/updates so a
// slow database only ever costs one recorder goroutine at a time.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Migrate creates the schema when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS games (
			room_id      TEXT PRIMARY KEY,
			creator_id   TEXT NOT NULL,
			entry_fee    DOUBLE PRECISION NOT NULL,
			max_players  INT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'waiting',
			prize_pool   DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_players INT NOT NULL DEFAULT 1,
			questions    JSONB,
			winner_id    TEXT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			finished_at  TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS game_players (
			room_id        TEXT NOT NULL,
			player_id      TEXT NOT NULL,
			name           TEXT NOT NULL,
			wallet_address TEXT,
			eliminated     BOOLEAN NOT NULL DEFAULT FALSE,
			position       INT,
			prize_won      DOUBLE PRECISION,
			left_at        TIMESTAMPTZ,
			joined_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (room_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS game_sessions (
			room_id      TEXT NOT NULL,
			player_id    TEXT NOT NULL,
			score        INT,
			prize        DOUBLE PRECISION,
			started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			completed_at TIMESTAMPTZ,
			PRIMARY KEY (room_id, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS session_answers (
			id         BIGSERIAL PRIMARY KEY,
			room_id    TEXT NOT NULL,
			player_id  TEXT NOT NULL,
			round      INT NOT NULL,
			answer     TEXT NOT NULL,
			correct    BOOLEAN NOT NULL,
			latency_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS question_stats (
			question_id   TEXT PRIMARY KEY,
			times_used    BIGINT NOT NULL DEFAULT 0,
			times_correct BIGINT NOT NULL DEFAULT 0,
			times_wrong   BIGINT NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateGame(ctx context.Context, roomID, creatorID string, entryFee float64, maxPlayers int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO games (room_id, creator_id, entry_fee, max_players, prize_pool)
		 VALUES ($1, $2, $3, $4, $3)
		 ON CONFLICT (room_id) DO NOTHING`,
		roomID, creatorID, entryFee, maxPlayers)
	return err
}

func (s *PostgresStore) AddPlayerToGame(ctx context.Context, roomID, playerID, name, walletAddress string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_players (room_id, player_id, name, wallet_address)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 ON CONFLICT (room_id, player_id) DO NOTHING`,
		roomID, playerID, name, walletAddress)
	return err
}

func (s *PostgresStore) RemovePlayerFromGame(ctx context.Context, roomID, playerID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE game_players SET left_at = now() WHERE room_id = $1 AND player_id = $2`,
		roomID, playerID)
	return err
}

func (s *PostgresStore) UpdateGame(ctx context.Context, roomID string, upd GameUpdate) error {
	var questionsJSON []byte
	if upd.Questions != nil {
		var err error
		if questionsJSON, err = json.Marshal(upd.Questions); err != nil {
			return fmt.Errorf("failed to marshal questions: %w", err)
		}
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE games SET
			status        = COALESCE($2, status),
			prize_pool    = COALESCE($3, prize_pool),
			total_players = COALESCE($4, total_players),
			questions     = COALESCE($5, questions)
		 WHERE room_id = $1`,
		roomID, upd.Status, upd.PrizePool, upd.TotalPlayers, questionsJSON)
	return err
}

func (s *PostgresStore) UpdatePlayerInGame(ctx context.Context, roomID, playerID string, upd PlayerUpdate) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE game_players SET
			eliminated = COALESCE($3, eliminated),
			position   = COALESCE($4, position),
			prize_won  = COALESCE($5, prize_won)
		 WHERE room_id = $1 AND player_id = $2`,
		roomID, playerID, upd.Eliminated, upd.Position, upd.PrizeWon)
	return err
}

func (s *PostgresStore) FinishGame(ctx context.Context, roomID, winnerID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE games SET status = 'finished', winner_id = NULLIF($2, ''), finished_at = now()
		 WHERE room_id = $1`,
		roomID, winnerID)
	return err
}

func (s *PostgresStore) CreateSession(ctx context.Context, roomID, playerID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO game_sessions (room_id, player_id)
		 VALUES ($1, $2)
		 ON CONFLICT (room_id, player_id) DO NOTHING`,
		roomID, playerID)
	return err
}

func (s *PostgresStore) RecordAnswer(ctx context.Context, roomID, playerID string, round int, answer string, correct bool, latencyMs int64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_answers (room_id, player_id, round, answer, correct, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		roomID, playerID, round, answer, correct, latencyMs)
	return err
}

func (s *PostgresStore) CompleteSession(ctx context.Context, roomID, playerID string, score int, prize float64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE game_sessions SET score = $3, prize = $4, completed_at = now()
		 WHERE room_id = $1 AND player_id = $2`,
		roomID, playerID, score, prize)
	return err
}

func (s *PostgresStore) IncrementQuestionUsage(ctx context.Context, questionID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO question_stats (question_id, times_used) VALUES ($1, 1)
		 ON CONFLICT (question_id) DO UPDATE SET times_used = question_stats.times_used + 1`,
		questionID)
	return err
}

func (s *PostgresStore) UpdateQuestionCorrectRate(ctx context.Context, questionID string, correct bool) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO question_stats (question_id, times_correct, times_wrong)
		 VALUES ($1, CASE WHEN $2 THEN 1 ELSE 0 END, CASE WHEN $2 THEN 0 ELSE 1 END)
		 ON CONFLICT (question_id) DO UPDATE SET
			times_correct = question_stats.times_correct + CASE WHEN $2 THEN 1 ELSE 0 END,
			times_wrong   = question_stats.times_wrong   + CASE WHEN $2 THEN 0 ELSE 1 END`,
		questionID, correct)
	return err
}
