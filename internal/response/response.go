// Package response writes the {status, message, data} envelope shared by every endpoint.
package response

import (
	"errors"

	"marketplace-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Kind   apperr.Kind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}

func OK(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// Fail reports a logical failure. The HTTP status stays 200; callers inspect
// the status field. Persistence failures hide the driver error.
func Fail(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	env := Envelope{
		Status:  false,
		Message: "Something went wrong",
		Error:   &ErrorBody{Kind: kind},
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		env.Message = appErr.Message
		if kind != apperr.KindPersistence && appErr.Err != nil {
			env.Error.Detail = appErr.Err.Error()
		}
	}

	return c.Status(fiber.StatusOK).JSON(env)
}

// Gate is used by the authorization layer and the fiber error handler, the
// only places allowed to answer with a non-200 status.
func Gate(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(Envelope{
		Status:  false,
		Message: message,
	})
}
