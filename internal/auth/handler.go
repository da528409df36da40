package auth

import (
	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AdminResponse struct {
	ID    uint             `json:"id"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Role  models.AdminRole `json:"role"`
}

func toAdminResponse(a *models.AdminUser) AdminResponse {
	return AdminResponse{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role}
}

// POST /api/auth/register-super-admin
func RegisterSuperAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}

		admin, err := CreateAdmin(c.UserContext(), db, NewAdmin{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Role:     models.RoleSuperAdmin,
		})
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Super admin created", toAdminResponse(admin))
	}
}

// POST /api/admin/sub-admins (super admin only)
func CreateSubAdminHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}

		admin, err := CreateAdmin(c.UserContext(), db, NewAdmin{
			Name:     body.Name,
			Email:    body.Email,
			Password: body.Password,
			Role:     models.RoleSubAdmin,
		})
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Sub admin created", toAdminResponse(admin))
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}

		admin, err := Authenticate(c.UserContext(), db, body.Email, body.Password)
		if err != nil {
			return response.Fail(c, err)
		}

		token, err := GenerateToken(cfg.JWTSecret, admin)
		if err != nil {
			return response.Fail(c, apperr.Persistence(err, "could not issue token"))
		}

		return response.OK(c, "Logged in", fiber.Map{
			"token": token,
			"admin": toAdminResponse(admin),
		})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, _ := c.Locals(CtxAdminIDKey).(uint)

		var admin models.AdminUser
		if err := db.WithContext(c.UserContext()).First(&admin, adminID).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "admin not found"))
		}
		return response.OK(c, "Current admin", toAdminResponse(&admin))
	}
}
