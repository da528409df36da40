package main

import (
	"context"
	"log"

	"marketplace-backend/internal/auth"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/logging"
	"marketplace-backend/internal/models"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"
)

type args struct {
	DSN           string `arg:"--dsn,env:DATABASE_DSN,required" help:"postgres DSN"`
	AdminEmail    string `arg:"--admin-email" help:"seed a super admin with this email"`
	AdminName     string `arg:"--admin-name" default:"Super Admin"`
	AdminPassword string `arg:"--admin-password,env:ADMIN_PASSWORD"`
	Env           string `arg:"--env,env:APP_ENV" default:"development"`
}

func (args) Description() string {
	return "migrates the marketplace schema and optionally seeds the super admin"
}

func main() {
	var a args
	arg.MustParse(&a)

	logger, err := logging.New(a.Env)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(&config.Config{DatabaseDSN: a.DSN, DBMaxIdleConns: 1, DBMaxOpenConns: 2}, logger)
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("schema migrated", zap.Int("tables", len(database.Models)))

	if a.AdminEmail == "" {
		return
	}
	admin, err := auth.CreateAdmin(context.Background(), db, auth.NewAdmin{
		Name:     a.AdminName,
		Email:    a.AdminEmail,
		Password: a.AdminPassword,
		Role:     models.RoleSuperAdmin,
	})
	if err != nil {
		logger.Fatal("could not seed super admin", zap.Error(err))
	}
	logger.Info("super admin seeded", zap.Uint("admin_id", admin.ID), zap.String("email", admin.Email))
}
