package trading

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miubank/go-miubank/internal/ledger"
)

// Fee and tax policy.
var (
	BrokerageFeeRate   = decimal.RequireFromString("0.01") // stocks only
	StockTaxRate       = decimal.RequireFromString("0.15")
	FixedIncomeTaxRate = decimal.RequireFromString("0.22")
)

// SellResult reports the outcome of one sell call. Profit and TaxPaid cover
// this call only, not the investment's cumulative totals.
type SellResult struct {
	Investment ledger.Investment
	Account    ledger.Account
	Profit     decimal.Decimal
	TaxPaid    decimal.Decimal
}

// Service executes buys and sells against the investment account, pricing
// trades at the asset's latest persisted price.
type Service struct {
	store ledger.Store
	now   func() time.Time
}

func NewService(store ledger.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// BuyAsset debits price*quantity plus the brokerage fee from the investment
// account and opens a new Investment position.
func (s *Service) BuyAsset(ctx context.Context, userId, assetId uuid.UUID, quantity decimal.Decimal) (ledger.Investment, ledger.Account, error) {
	if !quantity.IsPositive() {
		return ledger.Investment{}, ledger.Account{}, ledger.Validationf("quantity must be greater than zero")
	}

	var investment ledger.Investment
	var account ledger.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		asset, err := tx.AssetById(ctx, assetId)
		if err != nil {
			return err
		}

		investmentAccount, err := tx.AccountByUser(ctx, userId, ledger.Investimento)
		if err != nil {
			return err
		}

		grossCost := asset.CurrentPrice.Mul(quantity)
		if asset.Type.FixedIncome() && !asset.MinimumInvestment.IsZero() && grossCost.LessThan(asset.MinimumInvestment) {
			return ledger.Validationf("minimum investment for %s is %s", asset.Name, asset.MinimumInvestment.StringFixed(2))
		}

		fee := decimal.Zero
		if asset.Type == ledger.Acao {
			fee = grossCost.Mul(BrokerageFeeRate)
		}
		totalCost := grossCost.Add(fee)

		if investmentAccount.Balance.LessThan(totalCost) {
			return ledger.ErrInsufficientFunds
		}

		account, err = tx.AdjustBalance(ctx, investmentAccount.Id, totalCost.Neg())
		if err != nil {
			return err
		}

		investment, err = tx.CreateInvestment(ctx, ledger.Investment{
			UserId:        userId,
			AssetId:       asset.Id,
			Quantity:      quantity,
			PurchasePrice: asset.CurrentPrice,
			PurchaseDate:  s.now(),
		})
		if err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: investmentAccount.Id,
			ToAccountId:   investmentAccount.Id,
			Amount:        totalCost,
			Type:          ledger.CompraAtivo,
			Description:   fmt.Sprintf("Purchase of %s %s (fee: %s)", quantity, assetLabel(asset), fee.StringFixed(2)),
			InvestmentId:  &investment.Id,
		})
		return err
	})
	return investment, account, err
}

// SellAsset sells quantityToSell units of the position, or the full remaining
// quantity when nil. Tax applies to the gross profit only when positive: 15%
// for stocks, 22% for fixed income. A partial sell keeps the same row with a
// reduced quantity; the purchase price and date stay untouched (single
// weighted lot, no per-tranche accounting).
func (s *Service) SellAsset(ctx context.Context, userId, investmentId uuid.UUID, quantityToSell *decimal.Decimal) (SellResult, error) {
	var result SellResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		investment, err := tx.InvestmentById(ctx, investmentId)
		if err != nil {
			return err
		}
		if investment.UserId != userId {
			return ledger.ErrInvestmentNotFound
		}
		if investment.IsSold {
			return ledger.ErrAlreadySold
		}

		asset, err := tx.AssetById(ctx, investment.AssetId)
		if err != nil {
			return err
		}

		quantity := investment.Quantity
		if quantityToSell != nil {
			quantity = *quantityToSell
		}
		if !quantity.IsPositive() || quantity.GreaterThan(investment.Quantity) {
			return ledger.ErrInvalidQuantity
		}

		grossRevenue := quantity.Mul(asset.CurrentPrice)
		originalCost := quantity.Mul(investment.PurchasePrice)
		grossProfit := grossRevenue.Sub(originalCost)

		taxRate := decimal.Zero
		if grossProfit.IsPositive() {
			if asset.Type == ledger.Acao {
				taxRate = StockTaxRate
			} else {
				taxRate = FixedIncomeTaxRate
			}
		}
		taxAmount := grossProfit.Mul(taxRate)
		netRevenue := grossRevenue.Sub(taxAmount)
		netProfit := grossProfit.Sub(taxAmount)

		investmentAccount, err := tx.AccountByUser(ctx, userId, ledger.Investimento)
		if err != nil {
			return err
		}

		result.Account, err = tx.AdjustBalance(ctx, investmentAccount.Id, netRevenue)
		if err != nil {
			return err
		}

		investment.Profit = investment.Profit.Add(netProfit)
		investment.TaxPaid = investment.TaxPaid.Add(taxAmount)
		if quantity.Equal(investment.Quantity) {
			now := s.now()
			investment.IsSold = true
			investment.Quantity = decimal.Zero
			investment.SalePrice = asset.CurrentPrice
			investment.SaleDate = &now
		} else {
			investment.Quantity = investment.Quantity.Sub(quantity)
		}
		if err := tx.UpdateInvestment(ctx, investment); err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: investmentAccount.Id,
			ToAccountId:   investmentAccount.Id,
			Amount:        netRevenue,
			Type:          ledger.VendaAtivo,
			Description: fmt.Sprintf("Sale of %s %s. Gross profit: %s, tax: %s",
				quantity, assetLabel(asset), grossProfit.StringFixed(2), taxAmount.StringFixed(2)),
			InvestmentId: &investment.Id,
		})
		if err != nil {
			return err
		}

		result.Investment = investment
		result.Profit = netProfit
		result.TaxPaid = taxAmount
		return nil
	})
	if err != nil {
		return SellResult{}, err
	}
	return result, nil
}

func assetLabel(asset ledger.Asset) string {
	if asset.Symbol != "" {
		return asset.Symbol
	}
	return asset.Name
}
