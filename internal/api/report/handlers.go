package report

import (
	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/helper"
	"github.com/miubank/go-miubank/internal/ledger"
	"github.com/miubank/go-miubank/internal/report"
)

func GetStatementHandler(reports *report.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		accountType := ledger.AccountType(c.Query("account_type", string(ledger.Corrente)))
		if accountType != ledger.Corrente && accountType != ledger.Investimento {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "account_type must be CORRENTE or INVESTIMENTO",
			})
		}

		from, err := helper.DateQuery(c, "from")
		if err != nil {
			return err
		}
		to, err := helper.DateQuery(c, "to")
		if err != nil {
			return err
		}

		statement, err := reports.AccountStatement(c, userId, accountType, from, to)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(statement)
	}
}

func GetInvestmentSummaryHandler(reports *report.Service) fiber.Handler {
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

func GetTaxReportHandler(reports *report.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		taxReport, err := reports.TaxReport(c, userId)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(taxReport)
	}
}
