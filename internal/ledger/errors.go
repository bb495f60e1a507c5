package ledger

import (
	"errors"
	"fmt"
)

// Business errors. All of them are detected before any mutation, so returning
// one from a transaction closure always rolls back a clean state.
var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInvestmentNotFound = errors.New("investment not found")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrPendingInvestments = errors.New("pending investments block transfers out of the investment account")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrAlreadySold        = errors.New("investment already fully sold")

	// ErrStorage wraps driver/infrastructure failures so callers can tell
	// them apart from business rejections.
	ErrStorage = errors.New("storage error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func Storagef(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
