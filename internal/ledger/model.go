package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	Corrente     AccountType = "CORRENTE"
	Investimento AccountType = "INVESTIMENTO"
)

type AssetType string

const (
	Acao          AssetType = "ACAO"
	CDB           AssetType = "CDB"
	TesouroDireto AssetType = "TESOURO_DIRETO"
)

// FixedIncome reports whether the asset accrues deterministically from a
// contracted rate instead of following the simulated market walk.
func (t AssetType) FixedIncome() bool {
	return t == CDB || t == TesouroDireto
}

type RateType string

const (
	PreFixado RateType = "pre"
	PosFixado RateType = "pos"
)

type MovementType string

const (
	Deposito              MovementType = "DEPOSITO"
	Saque                 MovementType = "SAQUE"
	TransferenciaInterna  MovementType = "TRANSFERENCIA_INTERNA"
	TransferenciaExterna  MovementType = "TRANSFERENCIA_EXTERNA"
	CompraAtivo           MovementType = "COMPRA_ATIVO"
	VendaAtivo            MovementType = "VENDA_ATIVO"
)

type User struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Cpf       string    `json:"cpf"`
	BirthDate time.Time `json:"birth_date"`
}

type Account struct {
	Id      uuid.UUID       `json:"id"`
	UserId  uuid.UUID       `json:"user_id"`
	Type    AccountType     `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

type Asset struct {
	Id           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Symbol       string          `json:"symbol,omitempty"`
	Type         AssetType       `json:"type"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	LastUpdate   time.Time       `json:"last_update"`

	// Fixed income only.
	Rate              decimal.Decimal `json:"rate,omitempty"`
	RateType          RateType        `json:"rate_type,omitempty"`
	Maturity          time.Time       `json:"maturity,omitempty"`
	MinimumInvestment decimal.Decimal `json:"minimum_investment,omitempty"`
}

type Investment struct {
	Id            uuid.UUID       `json:"id"`
	UserId        uuid.UUID       `json:"user_id"`
	AssetId       uuid.UUID       `json:"asset_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	IsSold        bool            `json:"is_sold"`
	SalePrice     decimal.Decimal `json:"sale_price,omitempty"`
	SaleDate      *time.Time      `json:"sale_date,omitempty"`
	Profit        decimal.Decimal `json:"profit"`
	TaxPaid       decimal.Decimal `json:"tax_paid"`
}

// Movement is an immutable ledger entry. For deposits, withdrawals and asset
// trades the from and to accounts are the same account.
type Movement struct {
	Id            uuid.UUID       `json:"id"`
	FromAccountId uuid.UUID       `json:"from_account_id"`
	ToAccountId   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          MovementType    `json:"type"`
	Description   string          `json:"description"`
	InvestmentId  *uuid.UUID      `json:"investment_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
