package fees

import (
	"context"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/database"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/systemlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteFeeTree hard-deletes a fee and everything it owns. Rows go in
// foreign-key order: pairings, details, locations, category links, the fee.
func (s *Service) DeleteFeeTree(ctx context.Context, feeID uint) (*DeleteResult, error) {
	if feeID == 0 {
		return nil, apperr.Validation("fee id is required")
	}

	result := &DeleteResult{}
	err := database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var fee models.Fee
		if err := tx.First(&fee, feeID).Error; err != nil {
			return apperr.FromDB(err, "fee not found")
		}

		res := tx.Where("fee_id = ?", feeID).Delete(&models.FeePairing{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "could not delete fee pairings")
		}
		result.Pairings = res.RowsAffected

		res = tx.Where("fee_id = ?", feeID).Delete(&models.FeeDetail{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "could not delete fee details")
		}
		result.Details = res.RowsAffected

		res = tx.Where("fee_id = ?", feeID).Delete(&models.FeeLocation{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "could not delete fee locations")
		}
		result.Locations = res.RowsAffected

		res = tx.Where("fee_id = ?", feeID).Delete(&models.FeeCategory{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "could not delete fee categories")
		}
		result.Categories = res.RowsAffected

		if err := tx.Delete(&models.Fee{}, feeID).Error; err != nil {
			return apperr.FromDB(err, "could not delete fee")
		}

		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFee,
			EntityID:    feeID,
			Action:      models.LogActionDelete,
			Description: "fee tree deleted",
			Before:      fee,
			After:       result,
		})
	})
	if err != nil {
		s.logFailure("delete", err, zap.Uint("fee_id", feeID))
		return nil, err
	}

	s.invalidate(ctx, feeID)
	s.succeeded("delete")
	s.logger.Info("fee tree deleted",
		zap.Uint("fee_id", feeID),
		zap.Int64("pairings", result.Pairings),
		zap.Int64("details", result.Details),
		zap.Int64("locations", result.Locations))
	return result, nil
}

// DeletePairing removes one pairing with its two details and their
// locations. The fee and its other pairings are untouched.
func (s *Service) DeletePairing(ctx context.Context, pairingID uint) (*DeleteResult, error) {
	if pairingID == 0 {
		return nil, apperr.Validation("pairing id is required")
	}

	result := &DeleteResult{}
	var pairing models.FeePairing
	err := database.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&pairing, pairingID).Error; err != nil {
			return apperr.FromDB(err, "fee pairing not found")
		}

		detailIDs := []uint{pairing.VendorDetailID, pairing.ConsumerDetailID}
		var details []models.FeeDetail
		if err := tx.Where("id IN ?", detailIDs).Find(&details).Error; err != nil {
			return apperr.FromDB(err, "could not load fee details")
		}
		locationIDs := make([]uint, 0, len(details))
		for _, d := range details {
			if d.LocationID != nil {
				locationIDs = append(locationIDs, *d.LocationID)
			}
		}

		if err := tx.Delete(&models.FeePairing{}, pairing.ID).Error; err != nil {
			return apperr.FromDB(err, "could not delete fee pairing")
		}
		result.Pairings = 1

		res := tx.Where("id IN ?", detailIDs).Delete(&models.FeeDetail{})
		if res.Error != nil {
			return apperr.FromDB(res.Error, "could not delete fee details")
		}
		result.Details = res.RowsAffected

		if len(locationIDs) > 0 {
			res = tx.Where("id IN ?", locationIDs).Delete(&models.FeeLocation{})
			if res.Error != nil {
				return apperr.FromDB(res.Error, "could not delete fee locations")
			}
			result.Locations = res.RowsAffected
		}

		return systemlog.Write(ctx, tx, systemlog.Entry{
			EntityType:  entityFeePairing,
			EntityID:    pairing.ID,
			Action:      models.LogActionDelete,
			Description: "fee pairing deleted",
			Before:      pairing,
			After:       result,
		})
	})
	if err != nil {
		s.logFailure("delete_pairing", err, zap.Uint("pairing_id", pairingID))
		return nil, err
	}

	s.invalidate(ctx, pairing.FeeID)
	s.succeeded("delete_pairing")
	return result, nil
}
