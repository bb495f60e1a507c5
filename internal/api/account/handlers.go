package account

import (
	"github.com/gofiber/fiber/v3"

	"github.com/miubank/go-miubank/internal/helper"
	"github.com/miubank/go-miubank/internal/ledger"
	"github.com/miubank/go-miubank/internal/transfer"
)

func GetBalancesHandler(svc *transfer.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		accounts, err := svc.Accounts(c, userId)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		if len(accounts) == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no accounts found for this user",
			})
		}

		var balances BalancesSchema
		for _, account := range accounts {
			switch account.Type {
			case ledger.Corrente:
				balances.Corrente = account.Balance
			case ledger.Investimento:
				balances.Investimento = account.Balance
			}
		}
		return c.JSON(balances)
	}
}

func DepositHandler(svc *transfer.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		var body AmountSchema
		if err := c.Bind().Body(&body); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&body); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		account, err := svc.Deposit(c, userId, *body.Amount)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(account)
	}
}

func WithdrawHandler(svc *transfer.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		var body AmountSchema
		if err := c.Bind().Body(&body); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&body); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		account, err := svc.Withdraw(c, userId, *body.Amount)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(account)
	}
}

func TransferInternalHandler(svc *transfer.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		var body TransferInternalSchema
		if err := c.Bind().Body(&body); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&body); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		from, to, err := svc.TransferInternal(c, userId, *body.Amount, body.FromAccountType, body.ToAccountType)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(TransferInternalResponseSchema{FromAccount: from, ToAccount: to})
	}
}

func TransferExternalHandler(svc *transfer.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		userId, err := helper.UserIdFromRequest(c)
		if err != nil {
			return err
		}

		var body TransferExternalSchema
		if err := c.Bind().Body(&body); err != nil {
			return fiber.ErrBadRequest
		}
		if err := helper.ValidateInput(&body); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		sender, _, err := svc.TransferExternal(c, userId, body.RecipientCpf, *body.Amount)
		if err != nil {
			return helper.ErrorResponse(c, err)
		}
		return c.JSON(TransferExternalResponseSchema{SenderAccount: sender})
	}
}
