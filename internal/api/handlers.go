package api

import (
	"github.com/gofiber/fiber/v3"

	accountapi "github.com/miubank/go-miubank/internal/api/account"
	marketapi "github.com/miubank/go-miubank/internal/api/market"
	reportapi "github.com/miubank/go-miubank/internal/api/report"
	"github.com/miubank/go-miubank/internal/market"
	"github.com/miubank/go-miubank/internal/report"
	"github.com/miubank/go-miubank/internal/trading"
	"github.com/miubank/go-miubank/internal/transfer"
)

type Services struct {
	Transfer *transfer.Service
	Trading  *trading.Service
	Market   *market.Engine
	Reports  *report.Service
}

func InitializeRoutes(app *fiber.App, svc Services) {
	accountapi.InitializeRoutes(app, svc.Transfer)
	marketapi.InitializeRoutes(app, svc.Market, svc.Trading, svc.Reports)
	reportapi.InitializeRoutes(app, svc.Reports)
}
