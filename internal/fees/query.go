package fees

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultPage      = 1
	maxPage          = 1_000_000
	defaultPageSize  = 10
	maxPageSize      = 100
	minSearchTermLen = 3
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (q ListQuery) normalize() ListQuery {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Page > maxPage {
		q.Page = maxPage
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	return q
}

// nameFilter matches fee names case-insensitively. Terms shorter than three
// characters do not filter.
func nameFilter(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if utf8.RuneCountInString(term) < minSearchTermLen {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		return db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern)
	}
}

// ListFees returns one page of fees, newest first, each hydrated with its
// pairings, details and locations.
func (s *Service) ListFees(ctx context.Context, q ListQuery) (*FeePage, error) {
	q = q.normalize()
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Fee{}).Scopes(nameFilter(q.SearchTerm)).Count(&total).Error; err != nil {
		s.logFailure("list", err)
		return nil, apperr.FromDB(err, "could not count fees")
	}

	items := []models.Fee{}
	err := db.Scopes(nameFilter(q.SearchTerm), withPairings).
		Order("id DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		s.logFailure("list", err)
		return nil, apperr.FromDB(err, "could not list fees")
	}

	s.succeeded("list")
	return &FeePage{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

// GetFee returns the full tree of one fee including its category links.
func (s *Service) GetFee(ctx context.Context, feeID uint) (*models.Fee, error) {
	if feeID == 0 {
		return nil, apperr.Validation("fee id is required")
	}

	if fee, ok := s.cached(ctx, feeID); ok {
		s.succeeded("get")
		return fee, nil
	}
	gen := s.cacheGeneration()

	var fee models.Fee
	err := s.db.WithContext(ctx).
		Scopes(withPairings, withCategories).
		Preload("Policy").
		First(&fee, feeID).Error
	if err != nil {
		err = apperr.FromDB(err, "fee not found")
		s.logFailure("get", err, zap.Uint("fee_id", feeID))
		return nil, err
	}

	s.store(ctx, &fee, gen)
	s.succeeded("get")
	return &fee, nil
}

func (s *Service) cached(ctx context.Context, feeID uint) (*models.Fee, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheNamespace, cacheKey(feeID))
	if err != nil {
		cacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}
	var fee models.Fee
	if err := json.Unmarshal([]byte(raw), &fee); err != nil {
		s.logger.Warn("dropping unreadable cached fee", zap.Uint("fee_id", feeID), zap.Error(err))
		s.invalidate(ctx, feeID)
		return nil, false
	}
	cacheRequests.WithLabelValues("hit").Inc()
	return &fee, true
}

// store caches fee unless an invalidation happened after gen was taken.
func (s *Service) store(ctx context.Context, fee *models.Fee, gen uint64) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(fee)
	if err != nil {
		return
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		return
	}
	if err := s.cache.Set(ctx, cacheNamespace, cacheKey(fee.ID), string(raw), s.cacheTTL); err != nil {
		s.logger.Warn("fee cache write failed", zap.Uint("fee_id", fee.ID), zap.Error(err))
	}
}
