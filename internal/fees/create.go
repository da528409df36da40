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
	"gorm.io/gorm/clause"
)

// CreateFeeTree creates a fee with all of its detail pairs. The returned fee
// is not re-hydrated; use GetFee for the full tree.
func (s *Service) CreateFeeTree(ctx context.Context, in CreateFeeInput) (*models.Fee, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Validation("fee name is required")
	}
	if len(in.Pairs) == 0 {
		return nil, apperr.Validation("at least one detail pair is required")
	}
	feeType, err := normalizeType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := validatePairs(in.Pairs); err != nil {
		return nil, err
	}

	fee := &models.Fee{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		PolicyID:    in.PolicyID,
		Type:        feeType,
		MenuID:      in.MenuID,
		Status:      models.FeeStatusActive,
	}

	err = database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := ensurePolicy(tx, in.PolicyID); err != nil {
			return err
		}
		if err := ensureMenuFree(tx, in.MenuID, 0); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(fee).Error; err != nil {
			return apperr.FromDB(err, "could not create fee")
		}

		for i, pair := range in.Pairs {
			if _, err := createPairing(tx, fee.ID, pair); err != nil {
				s.logger.Warn("detail pair failed, rolling back fee",
					zap.Int("pair", i), zap.Error(err))
				return err
			}
		}

		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFee,
			EntityID:    fee.ID,
			Action:      models.LogActionCreate,
			Description: "fee tree created",
			After:       fee,
		})
	})
	if err != nil {
		s.logFailure("create", err, zap.String("name", in.Name))
		return nil, err
	}

	s.succeeded("create")
	s.logger.Info("fee tree created", zap.Uint("fee_id", fee.ID), zap.Int("pairs", len(in.Pairs)))
	return fee, nil
}
