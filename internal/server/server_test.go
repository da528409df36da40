package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/auth"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database/dbtest"
	"marketplace-backend/internal/fees"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type ServerTestSuite struct {
	suite.Suite
	cfg *config.Config
	app *fiber.App
}

func TestServer(t *testing.T) {
	suite.Run(t, &ServerTestSuite{})
}

func (s *ServerTestSuite) SetupTest() {
	s.cfg = &config.Config{JWTSecret: strings.Repeat("k", 32), CORSOrigins: "http://localhost:5173"}
	db := dbtest.Open(s.T())
	s.app = New(s.cfg, db, zap.NewNop(), fees.NewService(db, zap.NewNop()))
}

func (s *ServerTestSuite) token(role models.AdminRole) string {
	tok, err := auth.GenerateToken(s.cfg.JWTSecret, &models.AdminUser{ID: 1, Name: "Admin", Email: "admin@example.com", Role: role})
	s.Require().NoError(err)
	return tok
}

func (s *ServerTestSuite) do(method, target, token, body string) (int, response.Envelope) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	s.Require().NoError(err)
	s.NotEmpty(resp.Header.Get("X-Request-ID"))

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var env response.Envelope
	s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	return resp.StatusCode, env
}

const feeBody = `{"name":"Shipping Fee","detailPairs":[{"vendor":{"isGlobal":true},"consumer":{"isGlobal":true}}]}`

func (s *ServerTestSuite) TestAdminRoutesRequireToken() {
	code, env := s.do("POST", "/api/fees", "", feeBody)
	s.Equal(fiber.StatusUnauthorized, code)
	s.False(env.Status)

	code, _ = s.do("DELETE", "/api/fees/1", "not-a-token", "")
	s.Equal(fiber.StatusUnauthorized, code)
}

func (s *ServerTestSuite) TestPublicRoutes() {
	code, env := s.do("GET", "/api/fees", "", "")
	s.Equal(200, code)
	s.True(env.Status)

	code, env = s.do("GET", "/api/categories", "", "")
	s.Equal(200, code)
	s.True(env.Status)
}

func (s *ServerTestSuite) TestValidationFailureKeepsStatus200() {
	code, env := s.do("POST", "/api/fees", s.token(models.RoleSubAdmin), `{"name":""}`)
	s.Equal(200, code)
	s.False(env.Status)
	s.Require().NotNil(env.Error)
	s.Equal(apperr.KindValidation, env.Error.Kind)
}

func (s *ServerTestSuite) TestCreateThenReadPublicly() {
	code, env := s.do("POST", "/api/fees", s.token(models.RoleSuperAdmin), feeBody)
	s.Equal(200, code)
	s.Require().True(env.Status, env.Message)

	id := env.Data.(map[string]interface{})["id"].(float64)
	s.EqualValues(1, id)

	code, env = s.do("GET", "/api/fees/one?feeId=1", "", "")
	s.Equal(200, code)
	s.True(env.Status)
	s.Equal("Shipping Fee", env.Data.(map[string]interface{})["name"])

	code, env = s.do("DELETE", "/api/fees/1", s.token(models.RoleSubAdmin), "")
	s.Equal(200, code)
	s.True(env.Status)

	_, env = s.do("GET", "/api/fees/one?feeId=1", "", "")
	s.False(env.Status)
	s.Equal(apperr.KindNotFound, env.Error.Kind)
}

func (s *ServerTestSuite) TestSubAdminsRouteIsSuperAdminOnly() {
	body := `{"name":"Sub","email":"sub@example.com","password":"password123"}`

	code, _ := s.do("POST", "/api/admin/sub-admins", s.token(models.RoleSubAdmin), body)
	s.Equal(fiber.StatusForbidden, code)

	code, env := s.do("POST", "/api/admin/sub-admins", s.token(models.RoleSuperAdmin), body)
	s.Equal(200, code)
	s.True(env.Status, env.Message)
}

func (s *ServerTestSuite) TestMetricsEndpoint() {
	resp, err := s.app.Test(httptest.NewRequest("GET", "/metrics", nil))
	s.Require().NoError(err)
	s.Equal(200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(raw), "go_goroutines")
}
