package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miubank/go-miubank/internal/ledger"
)

// Service builds read-only projections over Movements and Investments for
// statements and tax reporting. It never mutates ledger state.
type Service struct {
	store ledger.Store
}

func NewService(store ledger.Store) *Service {
	return &Service{store: store}
}

type StatementEntry struct {
	Date        time.Time           `json:"date"`
	Type        ledger.MovementType `json:"type"`
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	IsDebit     bool                `json:"is_debit"`
}

type Statement struct {
	AccountId      uuid.UUID          `json:"account_id"`
	AccountType    ledger.AccountType `json:"account_type"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
	Entries        []StatementEntry   `json:"statement"`
}

// AccountStatement lists an account's movements in chronological order,
// optionally restricted to [from, to]. The end date is extended to the end of
// its day so a statement "until 2024-03-01" includes that whole day. Debit or
// credit is relative to the requested account.
func (s *Service) AccountStatement(ctx context.Context, userId uuid.UUID, accountType ledger.AccountType, from, to *time.Time) (Statement, error) {
	account, err := s.store.AccountByUser(ctx, userId, accountType)
	if err != nil {
		return Statement{}, err
	}

	if to != nil {
		end := to.Add(24*time.Hour - time.Millisecond)
		to = &end
	}
	movements, err := s.store.MovementsByAccount(ctx, account.Id, from, to)
	if err != nil {
		return Statement{}, err
	}

	entries := make([]StatementEntry, 0, len(movements))
	for _, movement := range movements {
		entries = append(entries, StatementEntry{
			Date:        movement.CreatedAt,
			Type:        movement.Type,
			Description: movement.Description,
			Amount:      movement.Amount,
			IsDebit:     isDebit(movement, account.Id),
		})
	}

	return Statement{
		AccountId:      account.Id,
		AccountType:    accountType,
		CurrentBalance: account.Balance,
		Entries:        entries,
	}, nil
}

// Deposits, withdrawals and asset trades move money in and out of a single
// account, so they carry the same account on both sides and the direction
// comes from the movement type. Transfers are classified by which side the
// requested account is on.
func isDebit(movement ledger.Movement, accountId uuid.UUID) bool {
	if movement.FromAccountId == movement.ToAccountId {
		return movement.Type == ledger.Saque || movement.Type == ledger.CompraAtivo
	}
	return movement.FromAccountId == accountId
}

type InvestmentSummary struct {
	Id            uuid.UUID       `json:"id"`
	AssetSymbol   string          `json:"asset_symbol"`
	AssetName     string          `json:"asset_name"`
	AssetType     ledger.AssetType `json:"asset_type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	ProfitOrLoss  decimal.Decimal `json:"profit_or_loss"`
}

// InvestmentSummaries values every open position at the latest persisted
// asset price.
func (s *Service) InvestmentSummaries(ctx context.Context, userId uuid.UUID) ([]InvestmentSummary, error) {
	investments, err := s.store.InvestmentsByUser(ctx, userId, true)
	if err != nil {
		return nil, err
	}

	summaries := make([]InvestmentSummary, 0, len(investments))
	for _, investment := range investments {
		asset, err := s.store.AssetById(ctx, investment.AssetId)
		if err != nil {
			return nil, err
		}

		currentValue := asset.CurrentPrice.Mul(investment.Quantity)
		initialValue := investment.PurchasePrice.Mul(investment.Quantity)
		summaries = append(summaries, InvestmentSummary{
			Id:            investment.Id,
			AssetSymbol:   asset.Symbol,
			AssetName:     asset.Name,
			AssetType:     asset.Type,
			Quantity:      investment.Quantity,
			PurchasePrice: investment.PurchasePrice,
			PurchaseDate:  investment.PurchaseDate,
			CurrentPrice:  asset.CurrentPrice,
			CurrentValue:  currentValue,
			ProfitOrLoss:  currentValue.Sub(initialValue),
		})
	}
	return summaries, nil
}

type TaxReportItem struct {
	InvestmentId uuid.UUID       `json:"investment_id"`
	AssetName    string          `json:"asset_name"`
	Profit       decimal.Decimal `json:"profit"`
	TaxPaid      decimal.Decimal `json:"tax_paid"`
	SaleDate     *time.Time      `json:"sale_date,omitempty"`
}

type TaxReport struct {
	TotalProfit  decimal.Decimal `json:"total_profit"`
	TotalTaxPaid decimal.Decimal `json:"total_tax_paid"`
	Items        []TaxReportItem `json:"items"`
}

// TaxReport totals realized profit and tax across every investment with sell
// activity, including partially sold positions.
func (s *Service) TaxReport(ctx context.Context, userId uuid.UUID) (TaxReport, error) {
	investments, err := s.store.InvestmentsByUser(ctx, userId, false)
	if err != nil {
		return TaxReport{}, err
	}

	taxReport := TaxReport{
		TotalProfit:  decimal.Zero,
		TotalTaxPaid: decimal.Zero,
		Items:        []TaxReportItem{},
	}
	for _, investment := range investments {
		if investment.Profit.IsZero() && investment.TaxPaid.IsZero() {
			continue
		}

		asset, err := s.store.AssetById(ctx, investment.AssetId)
		if err != nil {
			return TaxReport{}, err
		}

		taxReport.Items = append(taxReport.Items, TaxReportItem{
			InvestmentId: investment.Id,
			AssetName:    asset.Name,
			Profit:       investment.Profit,
			TaxPaid:      investment.TaxPaid,
			SaleDate:     investment.SaleDate,
		})
		taxReport.TotalProfit = taxReport.TotalProfit.Add(investment.Profit)
		taxReport.TotalTaxPaid = taxReport.TotalTaxPaid.Add(investment.TaxPaid)
	}
	return taxReport, nil
}
