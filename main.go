package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avrorahistoria/lecture-skill/internal/game"
	"github.com/avrorahistoria/lecture-skill/internal/httpserver"
	"github.com/avrorahistoria/lecture-skill/internal/morph"
	"github.com/avrorahistoria/lecture-skill/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}
	questions := store.NewQuestions(db)
	if err := seedQuestions(context.Background(), questions); err != nil {
		log.Fatal().Err(err).Msg("seed questions")
	}

	var (
		seen   game.SeenStore
		replay store.ReplayCache
	)
	if cfg.RedisAddr != "" {
		rds, err := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rds.Close()
		seen, replay = rds, rds
	} else {
		log.Warn().Msg("REDIS_ADDR not set, seen-set and replay cache are in-memory")
		mem := store.NewMemory()
		seen, replay = mem, mem
	}

	analyzer := morph.NewSnowball()
	engine := game.NewEngine(questions, seen, analyzer,
		game.WithHints(cfg.Hints),
		game.WithThreshold(cfg.Threshold),
	)

	srv := httpserver.New(engine, questions, seen, replay, analyzer, httpserver.Config{
		WebhookPath: cfg.WebhookPath,
		JWTSecret:   cfg.JWTSecret,
		ReplayTTL:   cfg.ReplayTTL,
	})

	log.Info().Str("port", cfg.Port).Str("webhook", cfg.WebhookPath).Msg("starting lecture-skill server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
