package main

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/miubank/go-miubank/internal/api"
	"github.com/miubank/go-miubank/internal/db"
	"github.com/miubank/go-miubank/internal/ledger"
	"github.com/miubank/go-miubank/internal/market"
	"github.com/miubank/go-miubank/internal/report"
	"github.com/miubank/go-miubank/internal/scheduler"
	"github.com/miubank/go-miubank/internal/trading"
	"github.com/miubank/go-miubank/internal/transfer"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Initialize a new Fiber app
	app := fiber.New()

	// DB connection
	pool := db.NewConnection(logger)
	defer pool.Close()

	store := ledger.NewPostgresStore(pool)
	engine := market.NewEngine(store, market.DefaultConfig())

	// Initialize the API routes
	api.InitializeRoutes(app, api.Services{
		Transfer: transfer.NewService(store),
		Trading:  trading.NewService(store),
		Market:   engine,
		Reports:  report.NewService(store),
	})

	// Background price updates
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.New(engine, db.MarketUpdateInterval(), logger).Run(ctx)

	// Start the server on port 8000
	logger.Fatal("server stopped", zap.Error(app.Listen(":8000")))
}
