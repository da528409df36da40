package fees

import (
	"context"
	"errors"
	"strings"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/systemlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpdateFeeTree updates the fee fields and patches every pair side that names
// an existing FeeDetail. Omitted charges and scope keep their stored values.
// Sides without a detail id are not created; they are reported in
// UpdateResult.Skipped.
func (s *Service) UpdateFeeTree(ctx context.Context, in UpdateFeeInput) (*UpdateResult, error) {
	if in.FeeID == 0 {
		return nil, apperr.Validation("fee id is required")
	}
	var feeType models.FeeType
	if in.Type != "" {
		t, err := normalizeType(in.Type)
		if err != nil {
			return nil, err
		}
		feeType = t
	}
	if err := validateUpdatePairs(in.Pairs); err != nil {
		return nil, err
	}

	result := &UpdateResult{Skipped: []SkippedSide{}}
	var fee models.Fee

	err := database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&fee, in.FeeID).Error; err != nil {
			return apperr.FromDB(err, "fee not found")
		}
		before := fee

		if name := strings.TrimSpace(in.Name); name != "" {
			fee.Name = name
		}
		if in.Description != nil {
			fee.Description = strings.TrimSpace(*in.Description)
		}
		if in.PolicyID != nil {
			if err := ensurePolicy(tx, in.PolicyID); err != nil {
				return err
			}
			fee.PolicyID = in.PolicyID
		}
		if feeType != "" {
			fee.Type = feeType
		}
		if in.MenuID != nil {
			if err := ensureMenuFree(tx, in.MenuID, fee.ID); err != nil {
				return err
			}
			fee.MenuID = in.MenuID
		}

		if err := tx.Omit(clause.Associations).Save(&fee).Error; err != nil {
			return apperr.FromDB(err, "could not update fee")
		}

		for i, pair := range in.Pairs {
			sides := []struct {
				side   models.FeeSide
				update SideUpdate
			}{
				{models.FeeSideVendor, pair.Vendor},
				{models.FeeSideConsumer, pair.Consumer},
			}
			for _, sd := range sides {
				if sd.update.DetailID == 0 {
					result.Skipped = append(result.Skipped, SkippedSide{Pair: i, Side: sd.side})
					continue
				}
				detail, err := loadDetail(tx, fee.ID, sd.update.DetailID, sd.side)
				if err != nil {
					return err
				}
				if err := saveDetail(tx, detail, sd.update.SidePatch); err != nil {
					return err
				}
				result.Updated++
			}
		}

		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFee,
			EntityID:    fee.ID,
			Action:      models.LogActionUpdate,
			Description: "fee tree updated",
			Before:      before,
			After:       fee,
		})
	})
	if err != nil {
		s.logFailure("update", err, zap.Uint("fee_id", in.FeeID))
		return nil, err
	}

	s.invalidate(ctx, fee.ID)
	if len(result.Skipped) > 0 {
		s.logger.Warn("detail sides without id were skipped",
			zap.Uint("fee_id", fee.ID), zap.Int("skipped", len(result.Skipped)))
	}
	s.succeeded("update")
	s.logger.Info("fee tree updated", zap.Uint("fee_id", fee.ID), zap.Int("details", result.Updated))

	result.Fee = &fee
	return result, nil
}

// UpdatePairDetails partially updates the vendor and/or consumer detail of
// one pairing.
func (s *Service) UpdatePairDetails(ctx context.Context, in PatchDetailInput) (*models.FeePairing, error) {
	if in.PairingID == 0 {
		return nil, apperr.Validation("fee detail id is required")
	}
	if in.Vendor == nil && in.Consumer == nil {
		return nil, apperr.Validation("vendor or consumer fields are required")
	}
	if in.Vendor != nil {
		if err := validateCharges("vendor", in.Vendor.Charges); err != nil {
			return nil, err
		}
	}
	if in.Consumer != nil {
		if err := validateCharges("consumer", in.Consumer.Charges); err != nil {
			return nil, err
		}
	}

	var pairing models.FeePairing
	err := database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&pairing, in.PairingID).Error; err != nil {
			return apperr.FromDB(err, "fee pairing not found")
		}

		patches := []struct {
			side  models.FeeSide
			id    uint
			patch *SidePatch
		}{
			{models.FeeSideVendor, pairing.VendorDetailID, in.Vendor},
			{models.FeeSideConsumer, pairing.ConsumerDetailID, in.Consumer},
		}
		for _, p := range patches {
			if p.patch == nil {
				continue
			}
			detail, err := loadDetail(tx, pairing.FeeID, p.id, p.side)
			if err != nil {
				return err
			}
			if err := saveDetail(tx, detail, *p.patch); err != nil {
				return err
			}
		}

		if err := tx.Preload("VendorDetail.Location").
			Preload("ConsumerDetail.Location").
			First(&pairing, pairing.ID).Error; err != nil {
			return apperr.FromDB(err, "could not reload fee pairing")
		}

		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFeePairing,
			EntityID:    pairing.ID,
			Action:      models.LogActionUpdate,
			Description: "fee pairing details updated",
			After:       pairing,
		})
	})
	if err != nil {
		s.logFailure("patch_detail", err, zap.Uint("pairing_id", in.PairingID))
		return nil, err
	}

	s.invalidate(ctx, pairing.FeeID)
	s.succeeded("patch_detail")
	return &pairing, nil
}

// loadDetail fetches a detail that must belong to feeID and sit on side.
func loadDetail(tx *gorm.DB, feeID, detailID uint, side models.FeeSide) (*models.FeeDetail, error) {
	var detail models.FeeDetail
	err := tx.Where("id = ? AND fee_id = ?", detailID, feeID).First(&detail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("fee detail %d not found for fee %d", detailID, feeID)
	}
	if err != nil {
		return nil, apperr.FromDB(err, "could not load fee detail")
	}
	if detail.Side != side {
		return nil, apperr.Validation("fee detail %d is a %s detail, not %s", detailID, detail.Side, side)
	}
	return &detail, nil
}
