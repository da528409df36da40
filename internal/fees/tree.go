package fees

import (
	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func newLocation(feeID uint, side models.FeeSide, loc LocationSpec) *models.FeeLocation {
	return &models.FeeLocation{
		FeeID:     feeID,
		Side:      side,
		CountryID: loc.CountryID,
		StateID:   loc.StateID,
		CityID:    loc.CityID,
		Town:      loc.Town,
	}
}

func applyCharges(d *models.FeeDetail, c ChargePatch) {
	if c.Percentage != nil {
		d.Percentage = *c.Percentage
	}
	if c.MaxCapPerDeal != nil {
		d.MaxCapPerDeal = *c.MaxCapPerDeal
	}
	if c.MaxCapPerMonth != nil {
		d.MaxCapPerMonth = *c.MaxCapPerMonth
	}
	if c.FixedFee != nil {
		d.FixedFee = *c.FixedFee
	}
	if c.VAT != nil {
		d.VAT = *c.VAT
	}
	if c.PaymentGatewayFee != nil {
		d.PaymentGatewayFee = *c.PaymentGatewayFee
	}
}

// createSide inserts the side's location when it is scoped, then the detail
// pointing at it.
func createSide(tx *gorm.DB, feeID uint, side models.FeeSide, spec SideSpec) (*models.FeeDetail, error) {
	detail := &models.FeeDetail{FeeID: feeID, Side: side}
	applyCharges(detail, spec.Charges.patch())

	if loc, ok := spec.Scope.Location(); ok {
		row := newLocation(feeID, side, loc)
		if err := tx.Create(row).Error; err != nil {
			return nil, apperr.FromDB(err, "could not create "+string(side)+" location")
		}
		detail.LocationID = &row.ID
	}

	if err := tx.Omit(clause.Associations).Create(detail).Error; err != nil {
		return nil, apperr.FromDB(err, "could not create "+string(side)+" fee detail")
	}
	return detail, nil
}

func createPairing(tx *gorm.DB, feeID uint, pair PairSpec) (*models.FeePairing, error) {
	vendor, err := createSide(tx, feeID, models.FeeSideVendor, pair.Vendor)
	if err != nil {
		return nil, err
	}
	consumer, err := createSide(tx, feeID, models.FeeSideConsumer, pair.Consumer)
	if err != nil {
		return nil, err
	}

	pairing := &models.FeePairing{
		FeeID:            feeID,
		VendorDetailID:   vendor.ID,
		ConsumerDetailID: consumer.ID,
		Status:           models.FeeStatusActive,
	}
	if err := tx.Omit(clause.Associations).Create(pairing).Error; err != nil {
		return nil, apperr.FromDB(err, "could not create fee pairing")
	}
	pairing.VendorDetail = vendor
	pairing.ConsumerDetail = consumer
	return pairing, nil
}

// applyScope moves detail to scope without saving the detail itself. When the
// detail leaves a location behind, its id is returned and the caller deletes
// that row once the detail no longer references it.
func applyScope(tx *gorm.DB, detail *models.FeeDetail, scope Scope) (*uint, error) {
	loc, scoped := scope.Location()

	switch {
	case !scoped:
		orphan := detail.LocationID
		detail.LocationID = nil
		return orphan, nil

	case detail.LocationID != nil:
		err := tx.Model(&models.FeeLocation{}).
			Where("id = ?", *detail.LocationID).
			Updates(map[string]interface{}{
				"country_id": loc.CountryID,
				"state_id":   loc.StateID,
				"city_id":    loc.CityID,
				"town":       loc.Town,
			}).Error
		if err != nil {
			return nil, apperr.FromDB(err, "could not update fee location")
		}
		return nil, nil

	default:
		row := newLocation(detail.FeeID, detail.Side, loc)
		if err := tx.Create(row).Error; err != nil {
			return nil, apperr.FromDB(err, "could not create fee location")
		}
		detail.LocationID = &row.ID
		return nil, nil
	}
}

// saveDetail applies the patch, persists the detail and removes any location
// it stopped owning.
func saveDetail(tx *gorm.DB, detail *models.FeeDetail, patch SidePatch) error {
	if patch.KeepScoped && patch.Scope == nil && detail.LocationID == nil {
		return apperr.Validation("fee detail %d is global, a location is required to scope it", detail.ID)
	}
	applyCharges(detail, patch.Charges)

	var orphan *uint
	if patch.Scope != nil {
		var err error
		if orphan, err = applyScope(tx, detail, *patch.Scope); err != nil {
			return err
		}
	}

	detail.Location = nil
	if err := tx.Omit(clause.Associations).Save(detail).Error; err != nil {
		return apperr.FromDB(err, "could not update fee detail")
	}

	if orphan != nil {
		if err := tx.Delete(&models.FeeLocation{}, *orphan).Error; err != nil {
			return apperr.FromDB(err, "could not delete fee location")
		}
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// withPairings preloads Pairing -> vendor/consumer FeeDetail -> Location.
func withPairings(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Pairings", orderByID).
		Preload("Pairings.VendorDetail.Location").
		Preload("Pairings.ConsumerDetail.Location")
}

func withCategories(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories", orderByID).
		Preload("Categories.Category")
}
