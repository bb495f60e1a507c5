package report

import (
	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/report"
)

func InitializeRoutes(app *fiber.App, reports *report.Service) {
	app.Get("/v1/reports/statement", GetStatementHandler(reports))
	app.Get("/v1/reports/investments-summary", GetInvestmentSummaryHandler(reports))
	app.Get("/v1/reports/tax-report", GetTaxReportHandler(reports))
}
