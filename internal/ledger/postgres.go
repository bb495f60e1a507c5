package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const balanceCheckViolation = "23514"

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// pgSession carries the query surface shared by the pool (auto-commit) and an
// open transaction. Account reads lock their row only inside a transaction.
type pgSession struct {
	q       querier
	locking bool
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pgSession
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pgSession: pgSession{q: pool}, pool: pool}
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Storagef(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgSession{q: tx, locking: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return Storagef(err)
	}
	return nil
}

const userColumns = "id, name, email, password, cpf, birth_date"

func (s *pgSession) scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.Id, &user.Name, &user.Email, &user.Password, &user.Cpf, &user.BirthDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, Storagef(err)
	}
	return user, nil
}

func (s *pgSession) UserById(ctx context.Context, id uuid.UUID) (User, error) {
	return s.scanUser(s.q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (s *pgSession) UserByCpf(ctx context.Context, cpf string) (User, error) {
	return s.scanUser(s.q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE cpf = $1", cpf))
}

func (s *pgSession) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.q.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (s *pgSession) scanAccount(row pgx.Row) (Account, error) {
	var account Account
	err := row.Scan(&account.Id, &account.UserId, &account.Type, &account.Balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, Storagef(err)
	}
	return account, nil
}

func (s *pgSession) AccountByUser(ctx context.Context, userId uuid.UUID, accountType AccountType) (Account, error) {
	query := "SELECT id, user_id, type, balance FROM accounts WHERE user_id = $1 AND type = $2"
	if s.locking {
		query += " FOR UPDATE"
	}
	return s.scanAccount(s.q.QueryRow(ctx, query, userId, accountType))
}

func (s *pgSession) AccountsByUser(ctx context.Context, userId uuid.UUID) ([]Account, error) {
	rows, err := s.q.Query(ctx, "SELECT id, user_id, type, balance FROM accounts WHERE user_id = $1 ORDER BY type", userId)
	if err != nil {
		return nil, Storagef(err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var account Account
		if err := rows.Scan(&account.Id, &account.UserId, &account.Type, &account.Balance); err != nil {
			return nil, Storagef(err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (s *pgSession) AdjustBalance(ctx context.Context, accountId uuid.UUID, delta decimal.Decimal) (Account, error) {
	row := s.q.QueryRow(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING id, user_id, type, balance",
		delta, accountId,
	)
	account, err := s.scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == balanceCheckViolation {
			return Account{}, ErrInsufficientFunds
		}
		return Account{}, err
	}
	return account, nil
}

func (s *pgSession) AppendMovement(ctx context.Context, movement Movement) (Movement, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO movements (from_account_id, to_account_id, amount, type, description, investment_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		movement.FromAccountId, movement.ToAccountId, movement.Amount,
		movement.Type, movement.Description, movement.InvestmentId,
	)
	if err := row.Scan(&movement.Id, &movement.CreatedAt); err != nil {
		return Movement{}, Storagef(err)
	}
	return movement, nil
}

func (s *pgSession) MovementsByAccount(ctx context.Context, accountId uuid.UUID, from, to *time.Time) ([]Movement, error) {
	query := `
		SELECT id, from_account_id, to_account_id, amount, type, description, investment_id, created_at
		FROM movements
		WHERE (from_account_id = $1 OR to_account_id = $1)`
	args := []any{accountId}
	if from != nil {
		args = append(args, *from)
		query += " AND created_at >= $2"
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += " AND created_at <= $3"
		} else {
			query += " AND created_at <= $2"
		}
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, Storagef(err)
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var movement Movement
		var description *string
		if err := rows.Scan(
			&movement.Id, &movement.FromAccountId, &movement.ToAccountId, &movement.Amount,
			&movement.Type, &description, &movement.InvestmentId, &movement.CreatedAt,
		); err != nil {
			return nil, Storagef(err)
		}
		if description != nil {
			movement.Description = *description
		}
		movements = append(movements, movement)
	}
	return movements, rows.Err()
}

const assetColumns = "id, name, symbol, type, current_price, last_update, rate, rate_type, maturity, minimum_investment"

func scanAssetFrom(scan func(dest ...any) error) (Asset, error) {
	var asset Asset
	var symbol *string
	var rate, minimumInvestment *decimal.Decimal
	var rateType *RateType
	var maturity *time.Time
	err := scan(
		&asset.Id, &asset.Name, &symbol, &asset.Type, &asset.CurrentPrice, &asset.LastUpdate,
		&rate, &rateType, &maturity, &minimumInvestment,
	)
	if err != nil {
		return Asset{}, err
	}
	if symbol != nil {
		asset.Symbol = *symbol
	}
	if rate != nil {
		asset.Rate = *rate
	}
	if rateType != nil {
		asset.RateType = *rateType
	}
	if maturity != nil {
		asset.Maturity = *maturity
	}
	if minimumInvestment != nil {
		asset.MinimumInvestment = *minimumInvestment
	}
	return asset, nil
}

func (s *pgSession) scanAsset(row pgx.Row) (Asset, error) {
	asset, err := scanAssetFrom(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, ErrAssetNotFound
	}
	if err != nil {
		return Asset{}, Storagef(err)
	}
	return asset, nil
}

func (s *pgSession) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := s.q.Query(ctx, "SELECT "+assetColumns+" FROM assets ORDER BY name")
	if err != nil {
		return nil, Storagef(err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		asset, err := scanAssetFrom(rows.Scan)
		if err != nil {
			return nil, Storagef(err)
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func (s *pgSession) AssetById(ctx context.Context, id uuid.UUID) (Asset, error) {
	return s.scanAsset(s.q.QueryRow(ctx, "SELECT "+assetColumns+" FROM assets WHERE id = $1", id))
}

func (s *pgSession) AssetBySymbol(ctx context.Context, symbol string) (Asset, error) {
	return s.scanAsset(s.q.QueryRow(ctx, "SELECT "+assetColumns+" FROM assets WHERE symbol = $1", symbol))
}

func (s *pgSession) UpdateAssetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	tag, err := s.q.Exec(ctx, "UPDATE assets SET current_price = $1, last_update = $2 WHERE id = $3", price, at, id)
	if err != nil {
		return Storagef(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

const investmentColumns = "id, user_id, asset_id, quantity, purchase_price, purchase_date, is_sold, sale_price, sale_date, profit, tax_paid"

func scanInvestmentFrom(scan func(dest ...any) error) (Investment, error) {
	var investment Investment
	var salePrice, profit, taxPaid *decimal.Decimal
	err := scan(
		&investment.Id, &investment.UserId, &investment.AssetId, &investment.Quantity,
		&investment.PurchasePrice, &investment.PurchaseDate, &investment.IsSold,
		&salePrice, &investment.SaleDate, &profit, &taxPaid,
	)
	if err != nil {
		return Investment{}, err
	}
	if salePrice != nil {
		investment.SalePrice = *salePrice
	}
	if profit != nil {
		investment.Profit = *profit
	}
	if taxPaid != nil {
		investment.TaxPaid = *taxPaid
	}
	return investment, nil
}

func (s *pgSession) CreateInvestment(ctx context.Context, investment Investment) (Investment, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO investments (user_id, asset_id, quantity, purchase_price, purchase_date, is_sold)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		investment.UserId, investment.AssetId, investment.Quantity,
		investment.PurchasePrice, investment.PurchaseDate, investment.IsSold,
	)
	if err := row.Scan(&investment.Id); err != nil {
		return Investment{}, Storagef(err)
	}
	return investment, nil
}

func (s *pgSession) InvestmentById(ctx context.Context, id uuid.UUID) (Investment, error) {
	query := "SELECT " + investmentColumns + " FROM investments WHERE id = $1"
	if s.locking {
		query += " FOR UPDATE"
	}
	investment, err := scanInvestmentFrom(s.q.QueryRow(ctx, query, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return Investment{}, ErrInvestmentNotFound
	}
	if err != nil {
		return Investment{}, Storagef(err)
	}
	return investment, nil
}

func (s *pgSession) InvestmentsByUser(ctx context.Context, userId uuid.UUID, openOnly bool) ([]Investment, error) {
	query := "SELECT " + investmentColumns + " FROM investments WHERE user_id = $1"
	if openOnly {
		query += " AND is_sold = FALSE"
	}
	query += " ORDER BY purchase_date ASC"

	rows, err := s.q.Query(ctx, query, userId)
	if err != nil {
		return nil, Storagef(err)
	}
	defer rows.Close()

	var investments []Investment
	for rows.Next() {
		investment, err := scanInvestmentFrom(rows.Scan)
		if err != nil {
			return nil, Storagef(err)
		}
		investments = append(investments, investment)
	}
	return investments, rows.Err()
}

func (s *pgSession) CountOpenInvestments(ctx context.Context, userId uuid.UUID) (int64, error) {
	var count int64
	err := s.q.QueryRow(ctx, "SELECT COUNT(*) FROM investments WHERE user_id = $1 AND is_sold = FALSE", userId).Scan(&count)
	if err != nil {
		return 0, Storagef(err)
	}
	return count, nil
}

func (s *pgSession) UpdateInvestment(ctx context.Context, investment Investment) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE investments
		SET quantity = $1, is_sold = $2, sale_price = $3, sale_date = $4, profit = $5, tax_paid = $6
		WHERE id = $7`,
		investment.Quantity, investment.IsSold, investment.SalePrice,
		investment.SaleDate, investment.Profit, investment.TaxPaid, investment.Id,
	)
	if err != nil {
		return Storagef(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvestmentNotFound
	}
	return nil
}
