// Package category serves the marketplace categories that fees are linked to.
package category

import (
	"context"
	"strconv"
	"strings"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name"`
}

func toResponse(cat models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		CreatedAt: cat.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func categoryID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("category id must be a positive integer")
	}
	return uint(id), nil
}

// GET /api/categories
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := db.WithContext(c.UserContext()).Order("name asc").Find(&categories).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not list categories"))
		}

		res := make([]CategoryResponse, 0, len(categories))
		for _, cat := range categories {
			res = append(res, toResponse(cat))
		}
		return response.OK(c, "Categories fetched", res)
	}
}

// POST /api/admin/categories
func CreateHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return response.Fail(c, apperr.Validation("category name is required"))
		}

		tx := db.WithContext(c.UserContext())
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ?", body.Name).Count(&count).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not check category name"))
		}
		if count > 0 {
			return response.Fail(c, apperr.Conflict("category %q already exists", body.Name))
		}

		cat := models.Category{Name: body.Name}
		if err := tx.Create(&cat).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not create category"))
		}
		return response.OK(c, "Category created", toResponse(cat))
	}
}

// FeeInvalidator drops cached fees that embed a category.
type FeeInvalidator interface {
	InvalidateFees(ctx context.Context, feeIDs ...uint)
}

// PUT /api/admin/categories/:id
func UpdateHandler(db *gorm.DB, fees FeeInvalidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := categoryID(c)
		if err != nil {
			return response.Fail(c, err)
		}
		tx := db.WithContext(c.UserContext())

		var cat models.Category
		if err := tx.First(&cat, id).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "category not found"))
		}

		var body UpdateCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return response.Fail(c, apperr.Validation("category name must not be empty"))
			}
			cat.Name = name
		}

		if err := tx.Save(&cat).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not update category"))
		}

		var feeIDs []uint
		if err := tx.Model(&models.FeeCategory{}).Where("category_id = ?", id).Pluck("fee_id", &feeIDs).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not load linked fees"))
		}
		if fees != nil {
			fees.InvalidateFees(c.UserContext(), feeIDs...)
		}
		return response.OK(c, "Category updated", toResponse(cat))
	}
}

// DELETE /api/admin/categories/:id
func DeleteHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := categoryID(c)
		if err != nil {
			return response.Fail(c, err)
		}
		tx := db.WithContext(c.UserContext())

		var count int64
		if err := tx.Model(&models.FeeCategory{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not check category usage"))
		}
		if count > 0 {
			return response.Fail(c, apperr.Conflict("category is linked to %d fee(s), unlink them first", count))
		}

		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return response.Fail(c, apperr.FromDB(res.Error, "could not delete category"))
		}
		if res.RowsAffected == 0 {
			return response.Fail(c, apperr.NotFound("category %d not found", id))
		}
		return response.OK(c, "Category deleted", nil)
	}
}
