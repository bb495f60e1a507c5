package helper

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

var validate = validator.New()

func ValidateInput(input interface{}) error {
	return validate.Struct(input)
}

// UserIdFromRequest resolves the caller identity set by the authentication
// layer in front of this API. How the identity was validated is not this
// service's concern.
func UserIdFromRequest(c fiber.Ctx) (uuid.UUID, error) {
	raw := c.Get("X-User-Id")
	if raw == "" {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}

// DateQuery parses an optional YYYY-MM-DD query parameter.
func DateQuery(c fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fiber.ErrBadRequest
	}
	return &date, nil
}
