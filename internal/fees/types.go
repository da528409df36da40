package fees

import (
	"marketplace-backend/internal/models"

	"github.com/shopspring/decimal"
)

// ChargeSpec carries the six charge parameters of one detail side.
type ChargeSpec struct {
	Percentage        decimal.Decimal
	MaxCapPerDeal     decimal.Decimal
	MaxCapPerMonth    decimal.Decimal
	FixedFee          decimal.Decimal
	VAT               decimal.Decimal
	PaymentGatewayFee decimal.Decimal
}

// ChargePatch is a ChargeSpec where every field is optional.
type ChargePatch struct {
	Percentage        *decimal.Decimal
	MaxCapPerDeal     *decimal.Decimal
	MaxCapPerMonth    *decimal.Decimal
	FixedFee          *decimal.Decimal
	VAT               *decimal.Decimal
	PaymentGatewayFee *decimal.Decimal
}

func (c ChargeSpec) patch() ChargePatch {
	return ChargePatch{
		Percentage:        &c.Percentage,
		MaxCapPerDeal:     &c.MaxCapPerDeal,
		MaxCapPerMonth:    &c.MaxCapPerMonth,
		FixedFee:          &c.FixedFee,
		VAT:               &c.VAT,
		PaymentGatewayFee: &c.PaymentGatewayFee,
	}
}

type LocationSpec struct {
	CountryID *uint
	StateID   *uint
	CityID    *uint
	Town      string
}

// Scope is either Global (no location) or Scoped to exactly one location.
// The zero value is Global.
type Scope struct {
	location *LocationSpec
}

func Global() Scope {
	return Scope{}
}

func Scoped(loc LocationSpec) Scope {
	return Scope{location: &loc}
}

func (s Scope) IsGlobal() bool {
	return s.location == nil
}

// Location returns the scoped location; ok is false for Global.
func (s Scope) Location() (LocationSpec, bool) {
	if s.location == nil {
		return LocationSpec{}, false
	}
	return *s.location, true
}

// SideSpec describes one side of a new detail pair.
type SideSpec struct {
	Charges ChargeSpec
	Scope   Scope
}

type PairSpec struct {
	Vendor   SideSpec
	Consumer SideSpec
}

type CreateFeeInput struct {
	Name        string
	Description string
	PolicyID    *uint
	Type        models.FeeType
	MenuID      *uint
	Pairs       []PairSpec
}

// UpdateFeeInput changes the fee fields that are set; nil pointers and empty
// strings keep the stored value.
type UpdateFeeInput struct {
	FeeID       uint
	Name        string
	Description *string
	PolicyID    *uint
	Type        models.FeeType
	MenuID      *uint
	Pairs       []UpdatePairSpec
}

// SideUpdate patches the existing FeeDetail named by DetailID. A zero
// DetailID marks the side as skipped.
type SideUpdate struct {
	DetailID uint
	SidePatch
}

type UpdatePairSpec struct {
	Vendor   SideUpdate
	Consumer SideUpdate
}

type SkippedSide struct {
	Pair int            `json:"pair"`
	Side models.FeeSide `json:"side"`
}

type UpdateResult struct {
	Fee     *models.Fee   `json:"fee"`
	Updated int           `json:"updated"`
	Skipped []SkippedSide `json:"skipped"`
}

// SidePatch is a partial update of one side. Nil charge fields keep their
// value and a nil Scope leaves the scope as is. KeepScoped rejects the patch
// when the detail has no location to keep.
type SidePatch struct {
	Charges    ChargePatch
	Scope      *Scope
	KeepScoped bool
}

type PatchDetailInput struct {
	PairingID uint
	Vendor    *SidePatch
	Consumer  *SidePatch
}

type DeleteResult struct {
	Pairings   int64 `json:"pairings"`
	Details    int64 `json:"details"`
	Locations  int64 `json:"locations"`
	Categories int64 `json:"categories"`
}

type ListQuery struct {
	Page       int
	PageSize   int
	SearchTerm string
}

type FeePage struct {
	Items    []models.Fee `json:"items"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"limit"`
}

type CategoryEntry struct {
	CategoryID uint
	Location   string
}

type AddCategoriesResult struct {
	Created []models.FeeCategory `json:"created"`
	Skipped []uint               `json:"skipped"`
}
