package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/miubank/go-miubank/internal/ledger"
)

func newFixture(t *testing.T) (*ledger.MemoryStore, *Service, ledger.User) {
	t.Helper()
	store := ledger.NewMemoryStore()
	user := store.AddUser(ledger.User{
		Name:  "Alice",
		Email: "alice@example.com",
		Cpf:   "111.111.111-11",
	})
	return store, NewService(store), user
}

func balance(t *testing.T, store *ledger.MemoryStore, userId uuid.UUID, accountType ledger.AccountType) decimal.Decimal {
	t.Helper()
	account, err := store.AccountByUser(context.Background(), userId, accountType)
	require.NoError(t, err)
	return account.Balance
}

func TestDeposit(t *testing.T) {
	store, svc, user := newFixture(t)
	ctx := context.Background()

	account, err := svc.Deposit(ctx, user.Id, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(600)))

	movements, err := store.MovementsByAccount(ctx, account.Id, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, ledger.Deposito, movements[0].Type)
	require.Equal(t, account.Id, movements[0].FromAccountId)
	require.Equal(t, account.Id, movements[0].ToAccountId)
	require.True(t, movements[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	store, svc, user := newFixture(t)
	ctx := context.Background()

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		_, err := svc.Deposit(ctx, user.Id, amount)
		require.ErrorIs(t, err, ledger.ErrValidation)
	}
	require.True(t, balance(t, store, user.Id, ledger.Corrente).Equal(decimal.NewFromInt(500)))
}

func TestWithdraw(t *testing.T) {
	store, svc, user := newFixture(t)
	ctx := context.Background()

	account, err := svc.Withdraw(ctx, user.Id, decimal.NewFromInt(200))
	require.NoError(t, err)
	require.True(t, account.Balance.Equal(decimal.NewFromInt(300)))

	movements, err := store.MovementsByAccount(ctx, account.Id, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, ledger.Saque, movements[0].Type)
}

func TestWithdrawInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	store, svc, user := newFixture(t)
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, user.Id, decimal.RequireFromString("500.01"))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	require.True(t, balance(t, store, user.Id, ledger.Corrente).Equal(decimal.NewFromInt(500)))

	account, err := store.AccountByUser(ctx, user.Id, ledger.Corrente)
	require.NoError(t, err)
	movements, err := store.MovementsByAccount(ctx, account.Id, nil, nil)
	require.NoError(t, err)
	require.Empty(t, movements)
}

func TestTransferInternalConservesTotal(t *testing.T) {
	store, svc, user := newFixture(t)
	ctx := context.Background()

	before := balance(t, store, user.Id, ledger.Corrente).
		Add(balance(t, store, user.Id, ledger.Investimento))

	from, to, err := svc.TransferInternal(ctx, user.Id, decimal.NewFromInt(200), ledger.Corrente, ledger.Investimento)
	require.NoError(t, err)
	require.True(t, from.Balance.Equal(decimal.NewFromInt(300)))
	require.True(t, to.Balance.Equal(decimal.NewFromInt(200)))

	after := balance(t, store, user.Id, ledger.Corrente).
		Add(balance(t, store, user.Id, ledger.Investimento))
	require.True(t, before.Equal(after), "internal transfer must conserve the user's total")

	movements, err := store.MovementsByAccount(ctx, from.Id, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, ledger.TransferenciaInterna, movements[0].Type)
	require.Equal(t, from.Id, movements[0].FromAccountId)
	require.Equal(t, to.Id, movements[0].ToAccountId)
}

func TestTransferInternalRejectsSameType(t *testing.T) {
	_, svc, user := newFixture(t)

	_, _, err := svc.TransferInternal(context.Background(), user.Id, decimal.NewFromInt(10), ledger.Corrente, ledger.Corrente)
	require.ErrorIs(t, err, ledger.ErrValidation)
}

func TestTransferInternalBlockedByPendingInvestments(t *testing.T) {
	store, svc, user := newFixture(t)
	ctx := context.Background()

	asset := store.AddAsset(ledger.Asset{
		Name:         "Ação XPTO",
		Symbol:       "XPTO",
		Type:         ledger.Acao,
		CurrentPrice: decimal.NewFromInt(10),
	})
	_, err := store.CreateInvestment(ctx, ledger.Investment{
		UserId:        user.Id,
		AssetId:       asset.Id,
		Quantity:      decimal.NewFromInt(5),
		PurchasePrice: decimal.NewFromInt(10),
		PurchaseDate:  time.Now(),
	})
	require.NoError(t, err)
	store.SetBalance(user.Id, ledger.Investimento, decimal.NewFromInt(100))

	_, _, err = svc.TransferInternal(ctx, user.Id, decimal.NewFromInt(50), ledger.Investimento, ledger.Corrente)
	require.ErrorIs(t, err, ledger.ErrPendingInvestments)

	// Both balances untouched.
	require.True(t, balance(t, store, user.Id, ledger.Investimento).Equal(decimal.NewFromInt(100)))
	require.True(t, balance(t, store, user.Id, ledger.Corrente).Equal(decimal.NewFromInt(500)))

	// The gate only blocks transfers OUT of the investment account.
	_, _, err = svc.TransferInternal(ctx, user.Id, decimal.NewFromInt(50), ledger.Corrente, ledger.Investimento)
	require.NoError(t, err)
}

func TestTransferExternalFee(t *testing.T) {
	store, svc, sender := newFixture(t)
	recipient := store.AddUser(ledger.User{
		Name:  "Bob",
		Email: "bob@example.com",
		Cpf:   "222.222.222-22",
	})
	ctx := context.Background()

	senderAccount, recipientAccount, err := svc.TransferExternal(ctx, sender.Id, recipient.Cpf, decimal.NewFromInt(100))
	require.NoError(t, err)

	// 0.5% fee: sender pays 100.50, recipient receives exactly 100.00.
	require.True(t, senderAccount.Balance.Equal(decimal.RequireFromString("399.50")),
		"got %s", senderAccount.Balance)
	require.True(t, recipientAccount.Balance.Equal(decimal.NewFromInt(600)),
		"got %s", recipientAccount.Balance)

	movements, err := store.MovementsByAccount(ctx, senderAccount.Id, nil, nil)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	require.True(t, movements[0].Amount.Equal(decimal.RequireFromString("100.50")))
	require.True(t, movements[1].Amount.Equal(decimal.NewFromInt(100)))
	for _, movement := range movements {
		require.Equal(t, ledger.TransferenciaExterna, movement.Type)
		require.Equal(t, senderAccount.Id, movement.FromAccountId)
		require.Equal(t, recipientAccount.Id, movement.ToAccountId)
	}

	// Each leg names the counterparty, identified by CPF.
	require.Contains(t, movements[0].Description, recipient.Name)
	require.Contains(t, movements[0].Description, recipient.Cpf)
	require.Contains(t, movements[1].Description, sender.Name)
	require.Contains(t, movements[1].Description, sender.Cpf)
}

func TestTransferExternalInsufficientForAmountPlusFee(t *testing.T) {
	store, svc, sender := newFixture(t)
	recipient := store.AddUser(ledger.User{
		Name:  "Bob",
		Email: "bob@example.com",
		Cpf:   "222.222.222-22",
	})

	// 500 available: transferring 500 needs 502.50 with the fee.
	_, _, err := svc.TransferExternal(context.Background(), sender.Id, recipient.Cpf, decimal.NewFromInt(500))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	require.True(t, balance(t, store, sender.Id, ledger.Corrente).Equal(decimal.NewFromInt(500)))
	require.True(t, balance(t, store, recipient.Id, ledger.Corrente).Equal(decimal.NewFromInt(500)))
}

func TestTransferExternalRecipientNotFound(t *testing.T) {
	_, svc, sender := newFixture(t)

	_, _, err := svc.TransferExternal(context.Background(), sender.Id, "999.999.999-99", decimal.NewFromInt(10))
	require.ErrorIs(t, err, ledger.ErrRecipientNotFound)
}
