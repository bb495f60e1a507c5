package market

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miubank/go-miubank/internal/ledger"
)

type BuyAssetSchema struct {
	AssetId  uuid.UUID        `json:"asset_id" validate:"required"`
	Quantity *decimal.Decimal `json:"quantity" validate:"required"`
}

// Quantity is optional: omitted means sell the full remaining position.
type SellAssetSchema struct {
	InvestmentId uuid.UUID        `json:"investment_id" validate:"required"`
	Quantity     *decimal.Decimal `json:"quantity"`
}

type BuyAssetResponseSchema struct {
	Investment ledger.Investment `json:"investment"`
	Account    ledger.Account    `json:"account"`
}

type SellAssetResponseSchema struct {
	Investment ledger.Investment `json:"investment"`
	Account    ledger.Account    `json:"account"`
	Profit     decimal.Decimal   `json:"profit"`
	TaxPaid    decimal.Decimal   `json:"tax_paid"`
}
