package main

import (
	"os"
	"strconv"
	"time"
)

type config struct {
	Port          string
	WebhookPath   string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogLevel      string
	Hints         int
	Threshold     float64
	JWTSecret     string
	ReplayTTL     time.Duration
}

func loadConfig() config {
	return config{
		Port:          envStr("PORT", "3010"),
		WebhookPath:   envStr("WEBHOOK_PATH", "/webhook/lecture"),
		DBPath:        envStr("DB_PATH", "./data/lecture.db"),
		RedisAddr:     envStr("REDIS_ADDR", ""),
		RedisPassword: envStr("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		Hints:         envInt("HINTS_PER_GAME", 3),
		Threshold:     envFloat("MATCH_THRESHOLD", 0.33),
		JWTSecret:     envStr("JWT_SECRET", ""),
		ReplayTTL:     envDuration("REPLAY_TTL", 10*time.Minute),
	}
}

func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}
