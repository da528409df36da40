// Package fees manages fee configuration trees: a Fee owns vendor/consumer
// detail pairs, each side optionally scoped to a location, plus links to
// marketplace categories. Every multi-row change runs in one transaction.
package fees

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	cacheNamespace  = "fee"
	defaultCacheTTL = 5 * time.Minute

	entityFee         = "fee"
	entityFeePairing  = "fee_pairing"
	entityFeeCategory = "fee_category"
)

var hundred = decimal.NewFromInt(100)

// Cache is the read cache for hydrated fees. Get returns an error on a miss.
type Cache interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
}

type Service struct {
	db       *gorm.DB
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger

	// cacheMu orders cache fills against invalidations. generation moves on
	// every invalidation, so a read that started before a mutation committed
	// never fills the cache.
	cacheMu    sync.Mutex
	generation uint64
}

type Option func(*Service)

// WithCache enables the read cache for GetFee.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func NewService(db *gorm.DB, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		cacheTTL: defaultCacheTTL,
		logger:   logger.Named("fees"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeType(t models.FeeType) (models.FeeType, error) {
	switch models.FeeType(strings.ToUpper(string(t))) {
	case "":
		return models.FeeTypeNonGlobal, nil
	case models.FeeTypeGlobal:
		return models.FeeTypeGlobal, nil
	case models.FeeTypeNonGlobal:
		return models.FeeTypeNonGlobal, nil
	}
	return "", apperr.Validation("fee type must be GLOBAL or NONGLOBAL, got %q", t)
}

// validateCharges rejects negative amounts and percentages above 100. Nil
// fields are not checked. where prefixes the message, e.g. "pair 0 vendor".
func validateCharges(where string, c ChargePatch) error {
	fields := []struct {
		name string
		v    *decimal.Decimal
	}{
		{"percentage", c.Percentage},
		{"maxCapPerDeal", c.MaxCapPerDeal},
		{"maxCapPerMonth", c.MaxCapPerMonth},
		{"fixedFee", c.FixedFee},
		{"vat", c.VAT},
		{"paymentGatewayFee", c.PaymentGatewayFee},
	}
	for _, f := range fields {
		if f.v != nil && f.v.IsNegative() {
			return apperr.Validation("%s: %s must not be negative", where, f.name)
		}
	}
	if c.Percentage != nil && c.Percentage.GreaterThan(hundred) {
		return apperr.Validation("%s: percentage must not exceed 100", where)
	}
	return nil
}

func validatePairs(pairs []PairSpec) error {
	for i, p := range pairs {
		if err := validateCharges(fmt.Sprintf("pair %d vendor", i), p.Vendor.Charges.patch()); err != nil {
			return err
		}
		if err := validateCharges(fmt.Sprintf("pair %d consumer", i), p.Consumer.Charges.patch()); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdatePairs(pairs []UpdatePairSpec) error {
	for i, p := range pairs {
		if err := validateCharges(fmt.Sprintf("pair %d vendor", i), p.Vendor.Charges); err != nil {
			return err
		}
		if err := validateCharges(fmt.Sprintf("pair %d consumer", i), p.Consumer.Charges); err != nil {
			return err
		}
	}
	return nil
}

// ensureMenuFree fails with a conflict when menuID is bound to a non-deleted
// fee other than selfID.
func ensureMenuFree(tx *gorm.DB, menuID *uint, selfID uint) error {
	if menuID == nil {
		return nil
	}
	var owner models.Fee
	err := tx.Select("id").
		Where("menu_id = ? AND status <> ? AND id <> ?", *menuID, models.FeeStatusDeleted, selfID).
		Limit(1).
		Find(&owner).Error
	if err != nil {
		return apperr.FromDB(err, "could not check menu binding")
	}
	if owner.ID != 0 {
		return apperr.Conflict("menu %d is already bound to fee %d", *menuID, owner.ID)
	}
	return nil
}

func ensurePolicy(tx *gorm.DB, policyID *uint) error {
	if policyID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Policy{}).Where("id = ?", *policyID).Count(&count).Error; err != nil {
		return apperr.FromDB(err, "could not check policy")
	}
	if count == 0 {
		return apperr.NotFound("policy %d not found", *policyID)
	}
	return nil
}

func cacheKey(feeID uint) string {
	return strconv.FormatUint(uint64(feeID), 10)
}

// invalidate drops the cached copy of a fee. Failures only cost freshness
// until the TTL runs out, so they are logged and swallowed.
func (s *Service) invalidate(ctx context.Context, feeID uint) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	s.generation++
	s.cacheMu.Unlock()

	if err := s.cache.Delete(ctx, cacheNamespace, cacheKey(feeID)); err != nil {
		s.logger.Warn("fee cache invalidation failed", zap.Uint("fee_id", feeID), zap.Error(err))
	}
}

// InvalidateFees drops the cached copies of feeIDs, e.g. after a linked
// category was renamed.
func (s *Service) InvalidateFees(ctx context.Context, feeIDs ...uint) {
	for _, id := range feeIDs {
		s.invalidate(ctx, id)
	}
}

func (s *Service) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

func (s *Service) logFailure(op string, err error, fields ...zap.Field) {
	recordFailure(op, err)
	fields = append(fields, zap.String("op", op), zap.String("kind", string(apperr.KindOf(err))), zap.Error(err))
	if apperr.KindOf(err) == apperr.KindPersistence {
		s.logger.Error("fee operation failed", fields...)
		return
	}
	s.logger.Info("fee operation rejected", fields...)
}
