package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store used by tests and local development.
// WithTx holds the store lock for the whole transaction and restores a
// snapshot on failure, which gives the same all-or-nothing visibility as the
// Postgres implementation.
type MemoryStore struct {
	mu       sync.Mutex
	data     *memData
	failNext map[string]error
}

type memData struct {
	users       map[uuid.UUID]User
	accounts    map[uuid.UUID]Account
	assets      map[uuid.UUID]Asset
	investments map[uuid.UUID]Investment
	movements   []Movement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: &memData{
			users:       make(map[uuid.UUID]User),
			accounts:    make(map[uuid.UUID]Account),
			assets:      make(map[uuid.UUID]Asset),
			investments: make(map[uuid.UUID]Investment),
		},
		failNext: make(map[string]error),
	}
}

// FailNext makes the next call of the named operation ("AppendMovement",
// "AdjustBalance", ...) return err, simulating a storage fault mid
// transaction.
func (s *MemoryStore) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[op] = err
}

func (d *memData) clone() *memData {
	c := &memData{
		users:       make(map[uuid.UUID]User, len(d.users)),
		accounts:    make(map[uuid.UUID]Account, len(d.accounts)),
		assets:      make(map[uuid.UUID]Asset, len(d.assets)),
		investments: make(map[uuid.UUID]Investment, len(d.investments)),
		movements:   make([]Movement, len(d.movements)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.accounts {
		c.accounts[k] = v
	}
	for k, v := range d.assets {
		c.assets[k] = v
	}
	for k, v := range d.investments {
		c.investments[k] = v
	}
	copy(c.movements, d.movements)
	return c
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(ctx, &memTx{s: s}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// memTx runs with the store lock already held by WithTx.
type memTx struct {
	s *MemoryStore
}

func (t *memTx) fail(op string) error {
	if err, ok := t.s.failNext[op]; ok {
		delete(t.s.failNext, op)
		return err
	}
	return nil
}

func (t *memTx) UserById(ctx context.Context, id uuid.UUID) (User, error) {
	return t.s.data.userById(id)
}

func (t *memTx) UserByCpf(ctx context.Context, cpf string) (User, error) {
	return t.s.data.userByCpf(cpf)
}

func (t *memTx) UserByEmail(ctx context.Context, email string) (User, error) {
	return t.s.data.userByEmail(email)
}

func (t *memTx) AccountByUser(ctx context.Context, userId uuid.UUID, accountType AccountType) (Account, error) {
	return t.s.data.accountByUser(userId, accountType)
}

func (t *memTx) AccountsByUser(ctx context.Context, userId uuid.UUID) ([]Account, error) {
	return t.s.data.accountsByUser(userId)
}

func (t *memTx) AdjustBalance(ctx context.Context, accountId uuid.UUID, delta decimal.Decimal) (Account, error) {
	if err := t.fail("AdjustBalance"); err != nil {
		return Account{}, err
	}
	return t.s.data.adjustBalance(accountId, delta)
}

func (t *memTx) AppendMovement(ctx context.Context, movement Movement) (Movement, error) {
	if err := t.fail("AppendMovement"); err != nil {
		return Movement{}, err
	}
	return t.s.data.appendMovement(movement)
}

func (t *memTx) MovementsByAccount(ctx context.Context, accountId uuid.UUID, from, to *time.Time) ([]Movement, error) {
	return t.s.data.movementsByAccount(accountId, from, to)
}

func (t *memTx) ListAssets(ctx context.Context) ([]Asset, error) {
	return t.s.data.listAssets()
}

func (t *memTx) AssetById(ctx context.Context, id uuid.UUID) (Asset, error) {
	return t.s.data.assetById(id)
}

func (t *memTx) AssetBySymbol(ctx context.Context, symbol string) (Asset, error) {
	return t.s.data.assetBySymbol(symbol)
}

func (t *memTx) UpdateAssetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	if err := t.fail("UpdateAssetPrice"); err != nil {
		return err
	}
	return t.s.data.updateAssetPrice(id, price, at)
}

func (t *memTx) CreateInvestment(ctx context.Context, investment Investment) (Investment, error) {
	if err := t.fail("CreateInvestment"); err != nil {
		return Investment{}, err
	}
	return t.s.data.createInvestment(investment)
}

func (t *memTx) InvestmentById(ctx context.Context, id uuid.UUID) (Investment, error) {
	return t.s.data.investmentById(id)
}

func (t *memTx) InvestmentsByUser(ctx context.Context, userId uuid.UUID, openOnly bool) ([]Investment, error) {
	return t.s.data.investmentsByUser(userId, openOnly)
}

func (t *memTx) CountOpenInvestments(ctx context.Context, userId uuid.UUID) (int64, error) {
	return t.s.data.countOpenInvestments(userId)
}

func (t *memTx) UpdateInvestment(ctx context.Context, investment Investment) error {
	if err := t.fail("UpdateInvestment"); err != nil {
		return err
	}
	return t.s.data.updateInvestment(investment)
}

// Auto-committed single reads/writes outside WithTx.

func (s *MemoryStore) UserById(ctx context.Context, id uuid.UUID) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.userById(id)
}

func (s *MemoryStore) UserByCpf(ctx context.Context, cpf string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.userByCpf(cpf)
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.userByEmail(email)
}

func (s *MemoryStore) AccountByUser(ctx context.Context, userId uuid.UUID, accountType AccountType) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.accountByUser(userId, accountType)
}

func (s *MemoryStore) AccountsByUser(ctx context.Context, userId uuid.UUID) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.accountsByUser(userId)
}

func (s *MemoryStore) AdjustBalance(ctx context.Context, accountId uuid.UUID, delta decimal.Decimal) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.adjustBalance(accountId, delta)
}

func (s *MemoryStore) AppendMovement(ctx context.Context, movement Movement) (Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.appendMovement(movement)
}

func (s *MemoryStore) MovementsByAccount(ctx context.Context, accountId uuid.UUID, from, to *time.Time) ([]Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.movementsByAccount(accountId, from, to)
}

func (s *MemoryStore) ListAssets(ctx context.Context) ([]Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.listAssets()
}

func (s *MemoryStore) AssetById(ctx context.Context, id uuid.UUID) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.assetById(id)
}

func (s *MemoryStore) AssetBySymbol(ctx context.Context, symbol string) (Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.assetBySymbol(symbol)
}

func (s *MemoryStore) UpdateAssetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateAssetPrice(id, price, at)
}

func (s *MemoryStore) CreateInvestment(ctx context.Context, investment Investment) (Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.createInvestment(investment)
}

func (s *MemoryStore) InvestmentById(ctx context.Context, id uuid.UUID) (Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.investmentById(id)
}

func (s *MemoryStore) InvestmentsByUser(ctx context.Context, userId uuid.UUID, openOnly bool) ([]Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.investmentsByUser(userId, openOnly)
}

func (s *MemoryStore) CountOpenInvestments(ctx context.Context, userId uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.countOpenInvestments(userId)
}

func (s *MemoryStore) UpdateInvestment(ctx context.Context, investment Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.updateInvestment(investment)
}

// AddUser registers a user with the default pair of accounts: CORRENTE with
// an opening balance of 500.00 and INVESTIMENTO with 0.00.
func (s *MemoryStore) AddUser(user User) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	s.data.users[user.Id] = user
	for _, accountType := range []AccountType{Corrente, Investimento} {
		account := Account{
			Id:      uuid.New(),
			UserId:  user.Id,
			Type:    accountType,
			Balance: decimal.Zero,
		}
		if accountType == Corrente {
			account.Balance = decimal.NewFromInt(500)
		}
		s.data.accounts[account.Id] = account
	}
	return user
}

func (s *MemoryStore) AddAsset(asset Asset) Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset.Id == uuid.Nil {
		asset.Id = uuid.New()
	}
	if asset.LastUpdate.IsZero() {
		asset.LastUpdate = time.Now()
	}
	s.data.assets[asset.Id] = asset
	return asset
}

// SetBalance overwrites an account balance, bypassing business rules. Test
// fixture helper only.
func (s *MemoryStore) SetBalance(userId uuid.UUID, accountType AccountType, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, account := range s.data.accounts {
		if account.UserId == userId && account.Type == accountType {
			account.Balance = balance
			s.data.accounts[id] = account
			return
		}
	}
}

// Unlocked data access shared by the store and its transactions.

func (d *memData) userById(id uuid.UUID) (User, error) {
	user, ok := d.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (d *memData) userByCpf(cpf string) (User, error) {
	for _, user := range d.users {
		if user.Cpf == cpf {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (d *memData) userByEmail(email string) (User, error) {
	for _, user := range d.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (d *memData) accountByUser(userId uuid.UUID, accountType AccountType) (Account, error) {
	for _, account := range d.accounts {
		if account.UserId == userId && account.Type == accountType {
			return account, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (d *memData) accountsByUser(userId uuid.UUID) ([]Account, error) {
	var accounts []Account
	for _, account := range d.accounts {
		if account.UserId == userId {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Type < accounts[j].Type })
	return accounts, nil
}

func (d *memData) adjustBalance(accountId uuid.UUID, delta decimal.Decimal) (Account, error) {
	account, ok := d.accounts[accountId]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	newBalance := account.Balance.Add(delta)
	if newBalance.IsNegative() {
		return Account{}, ErrInsufficientFunds
	}
	account.Balance = newBalance
	d.accounts[accountId] = account
	return account, nil
}

func (d *memData) appendMovement(movement Movement) (Movement, error) {
	if movement.Id == uuid.Nil {
		movement.Id = uuid.New()
	}
	if movement.CreatedAt.IsZero() {
		movement.CreatedAt = time.Now()
	}
	d.movements = append(d.movements, movement)
	return movement, nil
}

func (d *memData) movementsByAccount(accountId uuid.UUID, from, to *time.Time) ([]Movement, error) {
	var movements []Movement
	for _, movement := range d.movements {
		if movement.FromAccountId != accountId && movement.ToAccountId != accountId {
			continue
		}
		if from != nil && movement.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && movement.CreatedAt.After(*to) {
			continue
		}
		movements = append(movements, movement)
	}
	sort.Slice(movements, func(i, j int) bool {
		return movements[i].CreatedAt.Before(movements[j].CreatedAt)
	})
	return movements, nil
}

func (d *memData) listAssets() ([]Asset, error) {
	assets := make([]Asset, 0, len(d.assets))
	for _, asset := range d.assets {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

func (d *memData) assetById(id uuid.UUID) (Asset, error) {
	asset, ok := d.assets[id]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return asset, nil
}

func (d *memData) assetBySymbol(symbol string) (Asset, error) {
	for _, asset := range d.assets {
		if asset.Symbol == symbol {
			return asset, nil
		}
	}
	return Asset{}, ErrAssetNotFound
}

func (d *memData) updateAssetPrice(id uuid.UUID, price decimal.Decimal, at time.Time) error {
	asset, ok := d.assets[id]
	if !ok {
		return ErrAssetNotFound
	}
	asset.CurrentPrice = price
	asset.LastUpdate = at
	d.assets[id] = asset
	return nil
}

func (d *memData) createInvestment(investment Investment) (Investment, error) {
	if investment.Id == uuid.Nil {
		investment.Id = uuid.New()
	}
	d.investments[investment.Id] = investment
	return investment, nil
}

func (d *memData) investmentById(id uuid.UUID) (Investment, error) {
	investment, ok := d.investments[id]
	if !ok {
		return Investment{}, ErrInvestmentNotFound
	}
	return investment, nil
}

func (d *memData) investmentsByUser(userId uuid.UUID, openOnly bool) ([]Investment, error) {
	var investments []Investment
	for _, investment := range d.investments {
		if investment.UserId != userId {
			continue
		}
		if openOnly && investment.IsSold {
			continue
		}
		investments = append(investments, investment)
	}
	sort.Slice(investments, func(i, j int) bool {
		return investments[i].PurchaseDate.Before(investments[j].PurchaseDate)
	})
	return investments, nil
}

func (d *memData) countOpenInvestments(userId uuid.UUID) (int64, error) {
	var count int64
	for _, investment := range d.investments {
		if investment.UserId == userId && !investment.IsSold {
			count++
		}
	}
	return count, nil
}

func (d *memData) updateInvestment(investment Investment) error {
	if _, ok := d.investments[investment.Id]; !ok {
		return ErrInvestmentNotFound
	}
	d.investments[investment.Id] = investment
	return nil
}
