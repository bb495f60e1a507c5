package market

import (
	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/helper"
	"github.com/miubank/go-miubank/internal/market"
	"github.com/miubank/go-miubank/internal/report"
	"github.com/miubank/go-miubank/internal/trading"
)

func GetAssetsHandler(engine *market.Engine) fiber.Handler {
	return func(c fiber.Ctx) error {
		assets, err := engine.ListAssets(c)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(assets)
	}
}

func GetInvestmentsHandler(reports *report.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		summaries, err := reports.InvestmentSummaries(c, userId)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(summaries)
	}
}

func BuyAssetHandler(svc *trading.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		var body BuyAssetSchema
		if err := c.Bind().Body(&body); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&body); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		investment, account, err := svc.BuyAsset(c, userId, body.AssetId, *body.Quantity)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(BuyAssetResponseSchema{
			Investment: investment,
			Account:    account,
		})
	}
}

func SellAssetHandler(svc *trading.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		var body SellAssetSchema
		if err := c.Bind().Body(&body); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&body); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		result, err := svc.SellAsset(c, userId, body.InvestmentId, body.Quantity)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(SellAssetResponseSchema{
			Investment: result.Investment,
			Account:    result.Account,
			Profit:     result.Profit,
			TaxPaid:    result.TaxPaid,
		})
	}
}
