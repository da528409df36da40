package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database/dbtest"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"
	"marketplace-backend/internal/systemlog"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var testCfg = &config.Config{JWTSecret: strings.Repeat("s", 32)}

type AuthTestSuite struct {
	suite.Suite
}

func TestAuth(t *testing.T) {
	suite.Run(t, &AuthTestSuite{})
}

func (s *AuthTestSuite) TestTokenRoundTrip() {
	admin := &models.AdminUser{ID: 7, Name: "Root", Email: "root@example.com", Role: models.RoleSuperAdmin}

	token, err := GenerateToken(testCfg.JWTSecret, admin)
	s.Require().NoError(err)

	claims, err := ParseToken(testCfg.JWTSecret, token)
	s.Require().NoError(err)
	s.EqualValues(7, claims.AdminID)
	s.Equal("Root", claims.Name)
	s.Equal(models.RoleSuperAdmin, claims.Role)

	_, err = ParseToken(strings.Repeat("x", 32), token)
	s.Error(err)
}

func (s *AuthTestSuite) TestCreateAdminRules() {
	db := dbtest.Open(s.T())
	ctx := context.Background()

	_, err := CreateAdmin(ctx, db, NewAdmin{Name: "Root", Email: "root@example.com", Password: "short", Role: models.RoleSuperAdmin})
	s.ErrorIs(err, apperr.ErrValidation)

	_, err = CreateAdmin(ctx, db, NewAdmin{Name: "Root", Email: "not-an-email", Password: "password123", Role: models.RoleSuperAdmin})
	s.ErrorIs(err, apperr.ErrValidation)

	root, err := CreateAdmin(ctx, db, NewAdmin{Name: " Root ", Email: "Root@Example.com", Password: "password123", Role: models.RoleSuperAdmin})
	s.Require().NoError(err)
	s.Equal("Root", root.Name)
	s.Equal("root@example.com", root.Email)
	s.NotEqual("password123", root.PasswordHash)

	_, err = CreateAdmin(ctx, db, NewAdmin{Name: "Other", Email: "other@example.com", Password: "password123", Role: models.RoleSuperAdmin})
	s.ErrorIs(err, apperr.ErrConflict, "only one super admin")

	_, err = CreateAdmin(ctx, db, NewAdmin{Name: "Sub", Email: "root@example.com", Password: "password123", Role: models.RoleSubAdmin})
	s.ErrorIs(err, apperr.ErrConflict, "email taken")

	sub, err := CreateAdmin(ctx, db, NewAdmin{Name: "Sub", Email: "sub@example.com", Password: "password123", Role: models.RoleSubAdmin})
	s.Require().NoError(err)
	s.Equal(models.RoleSubAdmin, sub.Role)
}

func (s *AuthTestSuite) TestAuthenticate() {
	db := dbtest.Open(s.T())
	ctx := context.Background()

	_, err := CreateAdmin(ctx, db, NewAdmin{Name: "Root", Email: "root@example.com", Password: "password123", Role: models.RoleSuperAdmin})
	s.Require().NoError(err)

	admin, err := Authenticate(ctx, db, " ROOT@example.com", "password123")
	s.Require().NoError(err)
	s.Equal("Root", admin.Name)

	_, err = Authenticate(ctx, db, "root@example.com", "wrong-password")
	s.ErrorIs(err, apperr.ErrValidation)

	_, err = Authenticate(ctx, db, "nobody@example.com", "password123")
	s.ErrorIs(err, apperr.ErrValidation)
}

func gatedApp() *fiber.App {
	app := fiber.New()
	app.Use(JWTMiddleware(testCfg), RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		actor := systemlog.ActorFrom(RequestContext(c))
		return c.SendString(actor.AdminName)
	})
	return app
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	resp, err := gatedApp().Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var env response.Envelope
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.Status)
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := gatedApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareAcceptsAdmin(t *testing.T) {
	token, err := GenerateToken(testCfg.JWTSecret, &models.AdminUser{ID: 2, Name: "Sub", Role: models.RoleSubAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := gatedApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Sub", string(body))
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	app := fiber.New()
	app.Use(JWTMiddleware(testCfg), RequireRole(models.RoleSuperAdmin))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	token, err := GenerateToken(testCfg.JWTSecret, &models.AdminUser{ID: 2, Role: models.RoleSubAdmin})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
