package trading

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/miubank/go-miubank/internal/ledger"
)

type fixture struct {
	store *ledger.MemoryStore
	svc   *Service
	user  ledger.User
	stock ledger.Asset
	cdb   ledger.Asset
}

func newFixture(t *testing.T, investmentBalance string) fixture {
	t.Helper()
	store := ledger.NewMemoryStore()
	user := store.AddUser(ledger.User{
		Name:  "Alice",
		Email: "alice@example.com",
		Cpf:   "111.111.111-11",
	})
	store.SetBalance(user.Id, ledger.Investimento, decimal.RequireFromString(investmentBalance))

	stock := store.AddAsset(ledger.Asset{
		Name:         "Ação XPTO",
		Symbol:       "XPTO",
		Type:         ledger.Acao,
		CurrentPrice: decimal.NewFromInt(100),
	})
	cdb := store.AddAsset(ledger.Asset{
		Name:              "CDB Banco A",
		Type:              ledger.CDB,
		CurrentPrice:      decimal.NewFromInt(100),
		Rate:              decimal.RequireFromString("0.12"),
		RateType:          ledger.PreFixado,
		MinimumInvestment: decimal.NewFromInt(100),
	})
	return fixture{store: store, svc: NewService(store), user: user, stock: stock, cdb: cdb}
}

func (f fixture) investmentBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	account, err := f.store.AccountByUser(context.Background(), f.user.Id, ledger.Investimento)
	require.NoError(t, err)
	return account.Balance
}

func (f fixture) setPrice(t *testing.T, asset ledger.Asset, price string) {
	t.Helper()
	err := f.store.UpdateAssetPrice(context.Background(), asset.Id, decimal.RequireFromString(price), asset.LastUpdate)
	require.NoError(t, err)
}

func TestBuyStockChargesBrokerageFee(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, account, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)

	// 10 * 100 = 1000 plus 1% fee = 1010.
	require.True(t, account.Balance.Equal(decimal.NewFromInt(990)), "got %s", account.Balance)
	require.True(t, investment.Quantity.Equal(decimal.NewFromInt(10)))
	require.True(t, investment.PurchasePrice.Equal(decimal.NewFromInt(100)))
	require.False(t, investment.IsSold)

	movements, err := f.store.MovementsByAccount(ctx, account.Id, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, ledger.CompraAtivo, movements[0].Type)
	require.True(t, movements[0].Amount.Equal(decimal.NewFromInt(1010)))
	require.NotNil(t, movements[0].InvestmentId)
	require.Equal(t, investment.Id, *movements[0].InvestmentId)
}

func TestBuyFixedIncomeHasNoFee(t *testing.T) {
	f := newFixture(t, "2000")

	_, account, err := f.svc.BuyAsset(context.Background(), f.user.Id, f.cdb.Id, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(1000)), "got %s", account.Balance)
}

func TestBuyRejectsBelowMinimumInvestment(t *testing.T) {
	f := newFixture(t, "2000")
	f.setPrice(t, f.cdb, "10")

	// 5 * 10 = 50 < minimum of 100.
	_, _, err := f.svc.BuyAsset(context.Background(), f.user.Id, f.cdb.Id, decimal.NewFromInt(5))
	require.ErrorIs(t, err, ledger.ErrValidation)
	require.True(t, f.investmentBalance(t).Equal(decimal.NewFromInt(2000)))
}

func TestBuyInsufficientFundsLeavesNoTrace(t *testing.T) {
	f := newFixture(t, "1000")
	ctx := context.Background()

	// Needs 1010 with the fee.
	_, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	require.True(t, f.investmentBalance(t).Equal(decimal.NewFromInt(1000)))
	investments, err := f.store.InvestmentsByUser(ctx, f.user.Id, false)
	require.NoError(t, err)
	require.Empty(t, investments)
}

func TestBuyRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t, "1000")

	_, _, err := f.svc.BuyAsset(context.Background(), f.user.Id, f.stock.Id, decimal.Zero)
	require.ErrorIs(t, err, ledger.ErrValidation)
}

func TestBuyUnknownAsset(t *testing.T) {
	f := newFixture(t, "1000")

	_, _, err := f.svc.BuyAsset(context.Background(), f.user.Id, uuid.New(), decimal.NewFromInt(1))
	require.ErrorIs(t, err, ledger.ErrAssetNotFound)
}

func TestSellStockTaxOnGain(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)
	balanceAfterBuy := f.investmentBalance(t)

	f.setPrice(t, f.stock, "120")

	result, err := f.svc.SellAsset(ctx, f.user.Id, investment.Id, nil)
	require.NoError(t, err)

	// Gross profit 10*(120-100) = 200, 15% tax = 30, net credit = 1200-30.
	require.True(t, result.TaxPaid.Equal(decimal.NewFromInt(30)), "tax: got %s", result.TaxPaid)
	require.True(t, result.Profit.Equal(decimal.NewFromInt(170)), "profit: got %s", result.Profit)
	require.True(t, result.Account.Balance.Equal(balanceAfterBuy.Add(decimal.NewFromInt(1170))),
		"balance: got %s", result.Account.Balance)

	require.True(t, result.Investment.IsSold)
	require.True(t, result.Investment.Quantity.IsZero())
	require.True(t, result.Investment.SalePrice.Equal(decimal.NewFromInt(120)))
	require.NotNil(t, result.Investment.SaleDate)
	require.True(t, result.Investment.TaxPaid.Equal(decimal.NewFromInt(30)))
}

func TestSellFixedIncomeTaxRate(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.cdb.Id, decimal.NewFromInt(10))
	require.NoError(t, err)

	f.setPrice(t, f.cdb, "110")

	result, err := f.svc.SellAsset(ctx, f.user.Id, investment.Id, nil)
	require.NoError(t, err)

	// Gross profit 100, 22% tax = 22.
	require.True(t, result.TaxPaid.Equal(decimal.NewFromInt(22)), "got %s", result.TaxPaid)
	require.True(t, result.Profit.Equal(decimal.NewFromInt(78)))
}

func TestSellAtLossPaysNoTax(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)
	balanceAfterBuy := f.investmentBalance(t)

	f.setPrice(t, f.stock, "80")

	result, err := f.svc.SellAsset(ctx, f.user.Id, investment.Id, nil)
	require.NoError(t, err)

	require.True(t, result.TaxPaid.IsZero(), "no tax on losses, got %s", result.TaxPaid)
	require.True(t, result.Profit.Equal(decimal.NewFromInt(-200)))
	require.True(t, result.Account.Balance.Equal(balanceAfterBuy.Add(decimal.NewFromInt(800))))
}

func TestPartialSellKeepsSingleLot(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)

	f.setPrice(t, f.stock, "120")

	half := decimal.NewFromInt(5)
	first, err := f.svc.SellAsset(ctx, f.user.Id, investment.Id, &half)
	require.NoError(t, err)

	require.False(t, first.Investment.IsSold)
	require.True(t, first.Investment.Quantity.Equal(decimal.NewFromInt(5)))
	// The remaining lot keeps the original purchase price and date.
	require.True(t, first.Investment.PurchasePrice.Equal(decimal.NewFromInt(100)))
	require.True(t, first.Investment.PurchaseDate.Equal(investment.PurchaseDate))
	require.True(t, first.TaxPaid.Equal(decimal.NewFromInt(15)))

	second, err := f.svc.SellAsset(ctx, f.user.Id, investment.Id, &half)
	require.NoError(t, err)

	require.True(t, second.Investment.IsSold)
	require.True(t, second.Investment.Quantity.IsZero())
	// Per-call figures cover only this sell; the row accumulates both.
	require.True(t, second.TaxPaid.Equal(decimal.NewFromInt(15)))
	require.True(t, second.Investment.TaxPaid.Equal(decimal.NewFromInt(30)))
	require.True(t, second.Investment.Profit.Equal(decimal.NewFromInt(170)))
}

func TestSellRejectsOversell(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)
	balanceAfterBuy := f.investmentBalance(t)

	tooMany := decimal.NewFromInt(11)
	_, err = f.svc.SellAsset(ctx, f.user.Id, investment.Id, &tooMany)
	require.ErrorIs(t, err, ledger.ErrInvalidQuantity)

	zero := decimal.Zero
	_, err = f.svc.SellAsset(ctx, f.user.Id, investment.Id, &zero)
	require.ErrorIs(t, err, ledger.ErrInvalidQuantity)

	require.True(t, f.investmentBalance(t).Equal(balanceAfterBuy))
}

func TestSellAlreadySoldInvestment(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)

	_, err = f.svc.SellAsset(ctx, f.user.Id, investment.Id, nil)
	require.NoError(t, err)

	_, err = f.svc.SellAsset(ctx, f.user.Id, investment.Id, nil)
	require.ErrorIs(t, err, ledger.ErrAlreadySold)
}

func TestSellSomeoneElsesInvestment(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)

	other := f.store.AddUser(ledger.User{Name: "Mallory", Email: "m@example.com", Cpf: "333.333.333-33"})
	_, err = f.svc.SellAsset(ctx, other.Id, investment.Id, nil)
	require.ErrorIs(t, err, ledger.ErrInvestmentNotFound)
}

func TestSellRollsBackOnStorageFault(t *testing.T) {
	f := newFixture(t, "2000")
	ctx := context.Background()

	investment, _, err := f.svc.BuyAsset(ctx, f.user.Id, f.stock.Id, decimal.NewFromInt(10))
	require.NoError(t, err)
	balanceAfterBuy := f.investmentBalance(t)

	f.setPrice(t, f.stock, "120")

	boom := errors.New("connection reset")
	f.store.FailNext("AppendMovement", boom)

	_, err = f.svc.SellAsset(ctx, f.user.Id, investment.Id, nil)
	require.ErrorIs(t, err, boom)

	// The credit and the investment update are both rolled back.
	require.True(t, f.investmentBalance(t).Equal(balanceAfterBuy))
	reloaded, err := f.store.InvestmentById(ctx, investment.Id)
	require.NoError(t, err)
	require.False(t, reloaded.IsSold)
	require.True(t, reloaded.Quantity.Equal(decimal.NewFromInt(10)))

	account, err := f.store.AccountByUser(ctx, f.user.Id, ledger.Investimento)
	require.NoError(t, err)
	movements, err := f.store.MovementsByAccount(ctx, account.Id, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1, "only the buy movement may remain")
}
