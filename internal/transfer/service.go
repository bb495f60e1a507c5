package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/miubank/go-miubank/internal/ledger"
)

// ExternalFeeRate is the 0.5% fee retained on transfers between users.
var ExternalFeeRate = decimal.RequireFromString("0.005")

// Service implements the money-moving operations over the ledger. Each
// operation runs in one transaction: the balance change and its Movement are
// committed together or not at all.
type Service struct {
	store ledger.Store
}

func NewService(store ledger.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Accounts(ctx context.Context, userId uuid.UUID) ([]ledger.Account, error) {
	return s.store.AccountsByUser(ctx, userId)
}

// Deposit credits the user's checking account.
func (s *Service) Deposit(ctx context.Context, userId uuid.UUID, amount decimal.Decimal) (ledger.Account, error) {
	if !amount.IsPositive() {
		return ledger.Account{}, ledger.Validationf("deposit amount must be greater than zero")
	}

	var updated ledger.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		account, err := tx.AccountByUser(ctx, userId, ledger.Corrente)
		if err != nil {
			return err
		}

		updated, err = tx.AdjustBalance(ctx, account.Id, amount)
		if err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: account.Id,
			ToAccountId:   account.Id,
			Amount:        amount,
			Type:          ledger.Deposito,
			Description:   "Deposit into checking account",
		})
		return err
	})
	return updated, err
}

// Withdraw debits the user's checking account.
func (s *Service) Withdraw(ctx context.Context, userId uuid.UUID, amount decimal.Decimal) (ledger.Account, error) {
	if !amount.IsPositive() {
		return ledger.Account{}, ledger.Validationf("withdrawal amount must be greater than zero")
	}

	var updated ledger.Account
	err := s.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		account, err := tx.AccountByUser(ctx, userId, ledger.Corrente)
		if err != nil {
			return err
		}
		if account.Balance.LessThan(amount) {
			return ledger.ErrInsufficientFunds
		}

		updated, err = tx.AdjustBalance(ctx, account.Id, amount.Neg())
		if err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: account.Id,
			ToAccountId:   account.Id,
			Amount:        amount,
			Type:          ledger.Saque,
			Description:   "Withdrawal from checking account",
		})
		return err
	})
	return updated, err
}

// TransferInternal moves funds between the user's own accounts. Moving out of
// the investment account is blocked while the user holds any open investment,
// a whole-portfolio gate regardless of which asset is held.
func (s *Service) TransferInternal(ctx context.Context, userId uuid.UUID, amount decimal.Decimal, fromType, toType ledger.AccountType) (from, to ledger.Account, err error) {
	if !amount.IsPositive() {
		return from, to, ledger.Validationf("transfer amount must be greater than zero")
	}
	if fromType == toType {
		return from, to, ledger.Validationf("source and destination account types must differ")
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		fromAccount, err := tx.AccountByUser(ctx, userId, fromType)
		if err != nil {
			return err
		}
		toAccount, err := tx.AccountByUser(ctx, userId, toType)
		if err != nil {
			return err
		}

		if fromAccount.Balance.LessThan(amount) {
			return ledger.ErrInsufficientFunds
		}

		if fromType == ledger.Investimento {
			open, err := tx.CountOpenInvestments(ctx, userId)
			if err != nil {
				return err
			}
			if open > 0 {
				return ledger.ErrPendingInvestments
			}
		}

		from, err = tx.AdjustBalance(ctx, fromAccount.Id, amount.Neg())
		if err != nil {
			return err
		}
		to, err = tx.AdjustBalance(ctx, toAccount.Id, amount)
		if err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: fromAccount.Id,
			ToAccountId:   toAccount.Id,
			Amount:        amount,
			Type:          ledger.TransferenciaInterna,
			Description:   fmt.Sprintf("Internal transfer from %s to %s", fromType, toType),
		})
		return err
	})
	return from, to, err
}

// TransferExternal sends funds from the sender's checking account to the
// recipient's, resolved by CPF. The 0.5% fee is debited from the sender and
// retained, not transferred. Two movements are written: the sender's debit
// including the fee and the recipient's credit of the principal only.
func (s *Service) TransferExternal(ctx context.Context, senderUserId uuid.UUID, recipientCpf string, amount decimal.Decimal) (sender, recipient ledger.Account, err error) {
	if !amount.IsPositive() {
		return sender, recipient, ledger.Validationf("transfer amount must be greater than zero")
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx ledger.Tx) error {
		senderUser, err := tx.UserById(ctx, senderUserId)
		if err != nil {
			return err
		}
		senderAccount, err := tx.AccountByUser(ctx, senderUserId, ledger.Corrente)
		if err != nil {
			return err
		}

		recipientUser, err := tx.UserByCpf(ctx, recipientCpf)
		if errors.Is(err, ledger.ErrUserNotFound) {
			return ledger.ErrRecipientNotFound
		}
		if err != nil {
			return err
		}
		recipientAccount, err := tx.AccountByUser(ctx, recipientUser.Id, ledger.Corrente)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return ledger.ErrRecipientNotFound
		}
		if err != nil {
			return err
		}

		fee := amount.Mul(ExternalFeeRate)
		totalDebit := amount.Add(fee)
		if senderAccount.Balance.LessThan(totalDebit) {
			return ledger.ErrInsufficientFunds
		}

		sender, err = tx.AdjustBalance(ctx, senderAccount.Id, totalDebit.Neg())
		if err != nil {
			return err
		}
		recipient, err = tx.AdjustBalance(ctx, recipientAccount.Id, amount)
		if err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: senderAccount.Id,
			ToAccountId:   recipientAccount.Id,
			Amount:        totalDebit,
			Type:          ledger.TransferenciaExterna,
			Description:   fmt.Sprintf("Transfer sent to %s (CPF: %s), fee of %s included", recipientUser.Name, recipientCpf, fee.StringFixed(2)),
		})
		if err != nil {
			return err
		}

		_, err = tx.AppendMovement(ctx, ledger.Movement{
			FromAccountId: senderAccount.Id,
			ToAccountId:   recipientAccount.Id,
			Amount:        amount,
			Type:          ledger.TransferenciaExterna,
			Description:   fmt.Sprintf("Transfer received from %s (sender CPF: %s)", senderUser.Name, senderUser.Cpf),
		})
		return err
	})
	return sender, recipient, err
}
