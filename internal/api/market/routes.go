package market

import (
	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/market"
	"github.com/miubank/go-miubank/internal/report"
	"github.com/miubank/go-miubank/internal/trading"
)

func InitializeRoutes(app *fiber.App, engine *market.Engine, tradingSvc *trading.Service, reports *report.Service) {
	app.Get("/v1/market/assets", GetAssetsHandler(engine))
	app.Get("/v1/market/investments", GetInvestmentsHandler(reports))
	app.Post("/v1/market/buy", BuyAssetHandler(tradingSvc))
	app.Post("/v1/market/sell", SellAssetHandler(tradingSvc))
}
