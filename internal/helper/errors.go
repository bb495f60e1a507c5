package helper

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/ledger"
)

// ErrorResponse maps business errors to stable HTTP statuses. Storage and
// unknown errors fall through to fiber's 500 handling.
func ErrorResponse(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrValidation), errors.Is(err, ledger.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrAssetNotFound),
		errors.Is(err, ledger.ErrInvestmentNotFound),
		errors.Is(err, ledger.ErrRecipientNotFound),
		errors.Is(err, ledger.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ledger.ErrPendingInvestments), errors.Is(err, ledger.ErrAlreadySold):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return err
	}
}
