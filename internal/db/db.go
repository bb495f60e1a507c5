package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultMarketUpdateInterval = 5 * time.Minute

// NewConnection builds the shared pgx pool from DATABASE_URL.
func NewConnection(log *zap.Logger) *pgxpool.Pool {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn("could not load .env file, using system environment variables")
	}

	config, err := pgxpool.ParseConfig(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("failed to parse db config", zap.Error(err))
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal("failed to create db pool", zap.Error(err))
	}

	return pool
}

// MarketUpdateInterval reads MARKET_UPDATE_INTERVAL (Go duration syntax,
// e.g. "5m"), defaulting to five minutes.
func MarketUpdateInterval() time.Duration {
	raw := os.Getenv("MARKET_UPDATE_INTERVAL")
	if raw == "" {
		return defaultMarketUpdateInterval
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		return defaultMarketUpdateInterval
	}
	return interval
}
