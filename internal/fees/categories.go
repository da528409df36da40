package fees

import (
	"context"
	"strings"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/systemlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddCategories links a fee to categories. A category already linked to the
// fee, or repeated within entries, is skipped.
func (s *Service) AddCategories(ctx context.Context, feeID uint, entries []CategoryEntry) (*AddCategoriesResult, error) {
	if feeID == 0 {
		return nil, apperr.Validation("fee id is required")
	}
	if len(entries) == 0 {
		return nil, apperr.Validation("at least one category entry is required")
	}
	for i, e := range entries {
		if e.CategoryID == 0 {
			return nil, apperr.Validation("category entry %d: category id is required", i)
		}
	}

	result := &AddCategoriesResult{Created: []models.FeeCategory{}, Skipped: []uint{}}
	err := database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Fee{}).Where("id = ?", feeID).Count(&count).Error; err != nil {
			return apperr.FromDB(err, "could not check fee")
		}
		if count == 0 {
			return apperr.NotFound("fee %d not found", feeID)
		}

		seen := make(map[uint]bool, len(entries))
		for _, e := range entries {
			if seen[e.CategoryID] {
				result.Skipped = append(result.Skipped, e.CategoryID)
				continue
			}
			seen[e.CategoryID] = true

			if err := ensureCategory(tx, e.CategoryID); err != nil {
				return err
			}
			link, created, err := findOrCreateAssociation(tx, feeID, e.CategoryID, strings.TrimSpace(e.Location))
			if err != nil {
				return err
			}
			if !created {
				result.Skipped = append(result.Skipped, e.CategoryID)
				continue
			}
			result.Created = append(result.Created, *link)
		}

		if len(result.Created) == 0 {
			return nil
		}
		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFeeCategory,
			EntityID:    feeID,
			Action:      models.LogActionCreate,
			Description: "categories linked to fee",
			After:       result.Created,
		})
	})
	if err != nil {
		s.logFailure("add_categories", err, zap.Uint("fee_id", feeID))
		return nil, err
	}

	s.invalidate(ctx, feeID)
	s.succeeded("add_categories")
	return result, nil
}

// RemoveCategory deletes one fee-category link by its id.
func (s *Service) RemoveCategory(ctx context.Context, associationID uint) error {
	if associationID == 0 {
		return apperr.Validation("category link id is required")
	}

	var link models.FeeCategory
	err := database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&link, associationID).Error; err != nil {
			return apperr.FromDB(err, "fee category link not found")
		}
		if err := tx.Delete(&models.FeeCategory{}, link.ID).Error; err != nil {
			return apperr.FromDB(err, "could not delete fee category link")
		}
		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFeeCategory,
			EntityID:    link.ID,
			Action:      models.LogActionDelete,
			Description: "category unlinked from fee",
			Before:      link,
		})
	})
	if err != nil {
		s.logFailure("remove_category", err, zap.Uint("link_id", associationID))
		return err
	}

	s.invalidate(ctx, link.FeeID)
	s.succeeded("remove_category")
	return nil
}

func ensureCategory(tx *gorm.DB, categoryID uint) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return apperr.FromDB(err, "could not check category")
	}
	if count == 0 {
		return apperr.NotFound("category %d not found", categoryID)
	}
	return nil
}

// findOrCreateAssociation returns the link keyed on (feeID, categoryID),
// creating it when missing. created reports whether a row was inserted.
func findOrCreateAssociation(tx *gorm.DB, feeID, categoryID uint, location string) (*models.FeeCategory, bool, error) {
	var link models.FeeCategory
	err := tx.Where("fee_id = ? AND category_id = ?", feeID, categoryID).
		Limit(1).
		Find(&link).Error
	if err != nil {
		return nil, false, apperr.FromDB(err, "could not look up fee category link")
	}
	if link.ID != 0 {
		return &link, false, nil
	}

	link = models.FeeCategory{FeeID: feeID, CategoryID: categoryID, CategoryLocation: location}
	if err := tx.Create(&link).Error; err != nil {
		return nil, false, apperr.FromDB(err, "could not link category")
	}
	return &link, true, nil
}
