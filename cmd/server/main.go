package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/config"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/game"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/server"
	"github.com/nhatlapross/WhoIsSUIMillioner-sub000/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	var gameStore store.GameStore = store.NoopStore{}
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := pg.Migrate(ctx); err != nil {
			cancel()
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		cancel()
		defer pg.Close()
		gameStore = pg
		log.Info().Msg("postgres persistence enabled")
	} else {
		log.Info().Msg("no DATABASE_URL set, persistence disabled")
	}

	var questions game.QuestionSource
	if cfg.QuestionServiceURL != "" {
		questions = game.NewHTTPQuestionSource(cfg.QuestionServiceURL)
	}

	gameServer := game.NewGameServer(
		game.NewRegistry(),
		store.NewRecorder(gameStore),
		questions,
		clockwork.NewRealClock(),
	)
	srv := server.NewServer(gameServer)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("game server listening")
	if err := http.ListenAndServe(addr, srv.RegisterRoutes()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
