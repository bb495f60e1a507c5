package account

import (
	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/transfer"
)

func InitializeRoutes(app *fiber.App, svc *transfer.Service) {
	app.Get("/v1/accounts/balances", GetBalancesHandler(svc))
	app.Post("/v1/accounts/deposit", DepositHandler(svc))
	app.Post("/v1/accounts/withdraw", WithdrawHandler(svc))
	app.Post("/v1/accounts/transfer/internal", TransferInternalHandler(svc))
	app.Post("/v1/accounts/transfer/external", TransferExternalHandler(svc))
}
