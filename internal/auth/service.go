package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type NewAdmin struct {
	Name     string
	Email    string
	Password string
	Role     models.AdminRole
}

// CreateAdmin validates and stores an admin account with a bcrypt hash.
// Only one super admin may exist.
func CreateAdmin(ctx context.Context, db *gorm.DB, in NewAdmin) (*models.AdminUser, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.Validation("email %q is not valid", in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if in.Role != models.RoleSuperAdmin && in.Role != models.RoleSubAdmin {
		return nil, apperr.Validation("unknown role %q", in.Role)
	}

	db = db.WithContext(ctx)

	if in.Role == models.RoleSuperAdmin {
		var count int64
		if err := db.Model(&models.AdminUser{}).Where("role = ?", models.RoleSuperAdmin).Count(&count).Error; err != nil {
			return nil, apperr.FromDB(err, "could not check existing super admin")
		}
		if count > 0 {
			return nil, apperr.Conflict("a super admin already exists")
		}
	}

	var existing models.AdminUser
	err := db.Where("email = ?", in.Email).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflict("email %s is already registered", in.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.FromDB(err, "could not check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Persistence(err, "could not hash password")
	}

	admin := models.AdminUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := db.Create(&admin).Error; err != nil {
		return nil, apperr.FromDB(err, "could not create admin")
	}
	return &admin, nil
}

// Authenticate returns the admin for valid credentials. Unknown email and
// wrong password produce the same error.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var admin models.AdminUser
	if err := db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("email or password is wrong")
		}
		return nil, apperr.FromDB(err, "could not load admin")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Validation("email or password is wrong")
	}
	return &admin, nil
}
