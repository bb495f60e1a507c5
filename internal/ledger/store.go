package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tx is the set of reads and writes available inside a single transaction.
// Every business operation performs its whole read-modify-write cycle through
// one Tx so a failure never leaves a balance change without its Movement.
type Tx interface {
	UserById(ctx context.Context, id uuid.UUID) (User, error)
	UserByCpf(ctx context.Context, cpf string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)

	// AccountByUser locks the account row for the remainder of the
	// transaction, serializing concurrent operations on the same account.
	AccountByUser(ctx context.Context, userId uuid.UUID, accountType AccountType) (Account, error)
	AccountsByUser(ctx context.Context, userId uuid.UUID) ([]Account, error)

	// AdjustBalance applies a signed delta and fails with
	// ErrInsufficientFunds if the resulting balance would be negative.
	AdjustBalance(ctx context.Context, accountId uuid.UUID, delta decimal.Decimal) (Account, error)

	AppendMovement(ctx context.Context, movement Movement) (Movement, error)
	MovementsByAccount(ctx context.Context, accountId uuid.UUID, from, to *time.Time) ([]Movement, error)

	ListAssets(ctx context.Context) ([]Asset, error)
	AssetById(ctx context.Context, id uuid.UUID) (Asset, error)
	AssetBySymbol(ctx context.Context, symbol string) (Asset, error)
	UpdateAssetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error

	CreateInvestment(ctx context.Context, investment Investment) (Investment, error)
	InvestmentById(ctx context.Context, id uuid.UUID) (Investment, error)
	InvestmentsByUser(ctx context.Context, userId uuid.UUID, openOnly bool) ([]Investment, error)
	CountOpenInvestments(ctx context.Context, userId uuid.UUID) (int64, error)
	UpdateInvestment(ctx context.Context, investment Investment) error
}

// Store is the process-wide handle to the ledger. Reads outside WithTx are
// auto-committed single statements.
type Store interface {
	Tx

	// WithTx runs fn inside one transaction. Any error returned by fn rolls
	// everything back and is returned unchanged.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
