package logging

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID  = "X-Request-ID"
	CtxRequestIDKey  = "request_id"
	productionAppEnv = "production"
)

// New builds the process logger: JSON in production, console otherwise.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == productionAppEnv {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// RequestID tags every request with an id, reusing one sent by the caller.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(CtxRequestIDKey, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxRequestIDKey).(string)
	return id
}
