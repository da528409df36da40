package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"marketplace-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, Envelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return resp.StatusCode, env
}

func TestOK(t *testing.T) {
	code, env := call(t, func(c *fiber.Ctx) error {
		return OK(c, "done", fiber.Map{"id": 1})
	})
	assert.Equal(t, 200, code)
	assert.True(t, env.Status)
	assert.Equal(t, "done", env.Message)
	assert.Nil(t, env.Error)
}

func TestFailKeepsHTTP200(t *testing.T) {
	code, env := call(t, func(c *fiber.Ctx) error {
		return Fail(c, apperr.Conflict("menu 7 is already bound to fee 1"))
	})
	assert.Equal(t, 200, code)
	assert.False(t, env.Status)
	assert.Equal(t, "menu 7 is already bound to fee 1", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, apperr.KindConflict, env.Error.Kind)
}

func TestFailHidesPersistenceDetail(t *testing.T) {
	_, env := call(t, func(c *fiber.Ctx) error {
		return Fail(c, apperr.Persistence(errors.New("pq: relation does not exist"), "could not create fee"))
	})
	assert.False(t, env.Status)
	assert.Equal(t, "could not create fee", env.Message)
	assert.Equal(t, apperr.KindPersistence, env.Error.Kind)
	assert.Empty(t, env.Error.Detail)
}

func TestFailUnclassified(t *testing.T) {
	_, env := call(t, func(c *fiber.Ctx) error {
		return Fail(c, errors.New("boom"))
	})
	assert.False(t, env.Status)
	assert.Equal(t, apperr.KindPersistence, env.Error.Kind)
}

func TestGate(t *testing.T) {
	code, env := call(t, func(c *fiber.Ctx) error {
		return Gate(c, fiber.StatusUnauthorized, "missing token")
	})
	assert.Equal(t, 401, code)
	assert.False(t, env.Status)
}
