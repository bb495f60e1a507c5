package account

import (
	"github.com/shopspring/decimal"

	"github.com/miubank/go-miubank/internal/ledger"
)

type AmountSchema struct {
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

type TransferInternalSchema struct {
	Amount          *decimal.Decimal   `json:"amount" validate:"required"`
	FromAccountType ledger.AccountType `json:"from_account_type" validate:"required,oneof=CORRENTE INVESTIMENTO"`
	ToAccountType   ledger.AccountType `json:"to_account_type" validate:"required,oneof=CORRENTE INVESTIMENTO"`
}

type TransferExternalSchema struct {
	Amount       *decimal.Decimal `json:"amount" validate:"required"`
	RecipientCpf string           `json:"recipient_cpf" validate:"required"`
}

type BalancesSchema struct {
	Corrente     decimal.Decimal `json:"corrente"`
	Investimento decimal.Decimal `json:"investimento"`
}

type TransferInternalResponseSchema struct {
	FromAccount ledger.Account `json:"from_account"`
	ToAccount   ledger.Account `json:"to_account"`
}

type TransferExternalResponseSchema struct {
	SenderAccount ledger.Account `json:"sender_account"`
}
