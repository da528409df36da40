// Package server assembles the fiber application: middleware, error
// handling and the route table.
package server

import (
	"errors"
	"strings"

	"marketplace-backend/internal/auth"
	"marketplace-backend/internal/category"
	"marketplace-backend/internal/config"
	"marketplace-backend/internal/fees"
	"marketplace-backend/internal/logging"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"
	"marketplace-backend/internal/systemlog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger, feeSvc *fees.Service) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "marketplace-backend",
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(logging.RequestID())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:request_id} ${status} ${latency} ${method} ${path}\n",
	}))

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Public
	api.Post("/auth/register-super-admin", auth.RegisterSuperAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db))
	api.Get("/categories", category.ListHandler(db))
	api.Get("/fees", fees.ListFeesHandler(feeSvc))
	api.Get("/fees/one", fees.GetFeeHandler(feeSvc))

	// Everything registered below requires a valid token.
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	admin := protected.Group("")
	admin.Use(auth.RequireRole(models.RoleSuperAdmin, models.RoleSubAdmin))

	// Fee configuration; static paths before /fees/:feeId.
	admin.Post("/fees", fees.CreateFeeHandler(feeSvc))
	admin.Patch("/fees", fees.UpdateFeeHandler(feeSvc))
	admin.Patch("/fees/detail", fees.PatchDetailHandler(feeSvc))
	admin.Get("/fees/export", fees.ExportFeesHandler(feeSvc))
	admin.Post("/fees/categories", fees.AddCategoriesHandler(feeSvc))
	admin.Delete("/fees/categories/:id", fees.RemoveCategoryHandler(feeSvc))
	admin.Delete("/fees/pairing/:id", fees.DeletePairingHandler(feeSvc))
	admin.Delete("/fees/:feeId", fees.DeleteFeeHandler(feeSvc))

	// Categories
	admin.Post("/admin/categories", category.CreateHandler(db))
	admin.Put("/admin/categories/:id", category.UpdateHandler(db, feeSvc))
	admin.Delete("/admin/categories/:id", category.DeleteHandler(db))

	admin.Get("/admin/system-logs", systemlog.ListHandler(db))

	superAdmin := admin.Group("/admin")
	superAdmin.Use(auth.RequireRole(models.RoleSuperAdmin))
	superAdmin.Post("/sub-admins", auth.CreateSubAdminHandler(db))

	return app
}

func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Gate(c, fe.Code, fe.Message)
		}
		logger.Error("unhandled request error",
			zap.String("request_id", logging.RequestIDFrom(c)),
			zap.String("path", c.Path()),
			zap.Error(err))
		return response.Gate(c, fiber.StatusInternalServerError, "Unexpected server error")
	}
}
