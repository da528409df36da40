package fees

import (
	"fmt"
	"strings"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/models"

	"github.com/shopspring/decimal"
)

type locationBody struct {
	CountryID *uint  `json:"countryId"`
	StateID   *uint  `json:"stateId"`
	CityID    *uint  `json:"cityId"`
	Town      string `json:"town"`
}

// sideBody is one vendor or consumer side as sent by the admin panel.
type sideBody struct {
	ID                uint             `json:"id"`
	Percentage        *decimal.Decimal `json:"percentage"`
	MaxCapPerDeal     *decimal.Decimal `json:"maxCapPerDeal"`
	MaxCapPerMonth    *decimal.Decimal `json:"maxCapPerMonth"`
	FixedFee          *decimal.Decimal `json:"fixedFee"`
	VAT               *decimal.Decimal `json:"vat"`
	PaymentGatewayFee *decimal.Decimal `json:"paymentGatewayFee"`
	IsGlobal          *bool            `json:"isGlobal"`
	Location          *locationBody    `json:"location"`
}

type pairBody struct {
	Vendor   sideBody `json:"vendor"`
	Consumer sideBody `json:"consumer"`
}

type createFeeBody struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Policy      *uint          `json:"policy"`
	Type        models.FeeType `json:"type"`
	MenuID      *uint          `json:"menuId"`
	DetailPairs []pairBody     `json:"detailPairs"`
}

type updateFeeBody struct {
	FeeID       uint           `json:"feeId"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Policy      *uint          `json:"policy"`
	Type        models.FeeType `json:"type"`
	MenuID      *uint          `json:"menuId"`
	DetailPairs []pairBody     `json:"detailPairs"`
}

type patchDetailBody struct {
	FeeDetailID    uint      `json:"feeDetailId"`
	VendorFields   *sideBody `json:"vendorFields"`
	ConsumerFields *sideBody `json:"consumerFields"`
}

type categoryEntryBody struct {
	CategoryID       uint   `json:"categoryId"`
	CategoryLocation string `json:"categoryLocation"`
}

type addCategoriesBody struct {
	FeeID           uint                `json:"feeId"`
	CategoryEntries []categoryEntryBody `json:"categoryEntries"`
}

func (b sideBody) charges() ChargePatch {
	return ChargePatch{
		Percentage:        b.Percentage,
		MaxCapPerDeal:     b.MaxCapPerDeal,
		MaxCapPerMonth:    b.MaxCapPerMonth,
		FixedFee:          b.FixedFee,
		VAT:               b.VAT,
		PaymentGatewayFee: b.PaymentGatewayFee,
	}
}

// fullCharges treats omitted charge fields as zero.
func (b sideBody) fullCharges() ChargeSpec {
	orZero := func(d *decimal.Decimal) decimal.Decimal {
		if d == nil {
			return decimal.Zero
		}
		return *d
	}
	return ChargeSpec{
		Percentage:        orZero(b.Percentage),
		MaxCapPerDeal:     orZero(b.MaxCapPerDeal),
		MaxCapPerMonth:    orZero(b.MaxCapPerMonth),
		FixedFee:          orZero(b.FixedFee),
		VAT:               orZero(b.VAT),
		PaymentGatewayFee: orZero(b.PaymentGatewayFee),
	}
}

func (b sideBody) location() Scope {
	return Scoped(LocationSpec{
		CountryID: b.Location.CountryID,
		StateID:   b.Location.StateID,
		CityID:    b.Location.CityID,
		Town:      b.Location.Town,
	})
}

// scope reads the scope of a new side. Omitting both isGlobal and location
// means global; a contradicting pair is rejected.
func (b sideBody) scope(where string) (Scope, error) {
	switch {
	case b.IsGlobal != nil && *b.IsGlobal && b.Location != nil:
		return Scope{}, apperr.Validation("%s: a global side must not carry a location", where)
	case b.IsGlobal != nil && !*b.IsGlobal && b.Location == nil:
		return Scope{}, apperr.Validation("%s: location is required when isGlobal is false", where)
	case b.Location == nil:
		return Global(), nil
	}
	return b.location(), nil
}

// toPatch reads a side of an existing detail. Omitted fields keep their
// stored value; isGlobal:false without a location keeps the current location.
func (b sideBody) toPatch(where string) (SidePatch, error) {
	patch := SidePatch{Charges: b.charges()}
	switch {
	case b.IsGlobal != nil && *b.IsGlobal && b.Location != nil:
		return SidePatch{}, apperr.Validation("%s: a global side must not carry a location", where)
	case b.Location != nil:
		scope := b.location()
		patch.Scope = &scope
	case b.IsGlobal != nil && *b.IsGlobal:
		scope := Global()
		patch.Scope = &scope
	case b.IsGlobal != nil:
		patch.KeepScoped = true
	}
	return patch, nil
}

func (b sideBody) toSpec(where string) (SideSpec, error) {
	scope, err := b.scope(where)
	if err != nil {
		return SideSpec{}, err
	}
	return SideSpec{Charges: b.fullCharges(), Scope: scope}, nil
}

func (b sideBody) toUpdate(where string) (SideUpdate, error) {
	patch, err := b.toPatch(where)
	if err != nil {
		return SideUpdate{}, err
	}
	return SideUpdate{DetailID: b.ID, SidePatch: patch}, nil
}

func toPairSpecs(pairs []pairBody) ([]PairSpec, error) {
	specs := make([]PairSpec, 0, len(pairs))
	for i, p := range pairs {
		vendor, err := p.Vendor.toSpec(sideLabel(i, models.FeeSideVendor))
		if err != nil {
			return nil, err
		}
		consumer, err := p.Consumer.toSpec(sideLabel(i, models.FeeSideConsumer))
		if err != nil {
			return nil, err
		}
		specs = append(specs, PairSpec{Vendor: vendor, Consumer: consumer})
	}
	return specs, nil
}

func toUpdatePairs(pairs []pairBody) ([]UpdatePairSpec, error) {
	updates := make([]UpdatePairSpec, 0, len(pairs))
	for i, p := range pairs {
		vendor, err := p.Vendor.toUpdate(sideLabel(i, models.FeeSideVendor))
		if err != nil {
			return nil, err
		}
		consumer, err := p.Consumer.toUpdate(sideLabel(i, models.FeeSideConsumer))
		if err != nil {
			return nil, err
		}
		updates = append(updates, UpdatePairSpec{Vendor: vendor, Consumer: consumer})
	}
	return updates, nil
}

func sideLabel(pair int, side models.FeeSide) string {
	return fmt.Sprintf("detailPairs[%d].%s", pair, strings.ToLower(string(side)))
}

func (b createFeeBody) toInput() (CreateFeeInput, error) {
	pairs, err := toPairSpecs(b.DetailPairs)
	if err != nil {
		return CreateFeeInput{}, err
	}
	return CreateFeeInput{
		Name:        b.Name,
		Description: b.Description,
		PolicyID:    b.Policy,
		Type:        b.Type,
		MenuID:      b.MenuID,
		Pairs:       pairs,
	}, nil
}

func (b updateFeeBody) toInput() (UpdateFeeInput, error) {
	pairs, err := toUpdatePairs(b.DetailPairs)
	if err != nil {
		return UpdateFeeInput{}, err
	}
	return UpdateFeeInput{
		FeeID:       b.FeeID,
		Name:        b.Name,
		Description: b.Description,
		PolicyID:    b.Policy,
		Type:        b.Type,
		MenuID:      b.MenuID,
		Pairs:       pairs,
	}, nil
}

func (b patchDetailBody) toInput() (PatchDetailInput, error) {
	in := PatchDetailInput{PairingID: b.FeeDetailID}
	if b.VendorFields != nil {
		p, err := b.VendorFields.toPatch("vendorFields")
		if err != nil {
			return PatchDetailInput{}, err
		}
		in.Vendor = &p
	}
	if b.ConsumerFields != nil {
		p, err := b.ConsumerFields.toPatch("consumerFields")
		if err != nil {
			return PatchDetailInput{}, err
		}
		in.Consumer = &p
	}
	return in, nil
}

func (b addCategoriesBody) entries() []CategoryEntry {
	out := make([]CategoryEntry, 0, len(b.CategoryEntries))
	for _, e := range b.CategoryEntries {
		out = append(out, CategoryEntry{CategoryID: e.CategoryID, Location: e.CategoryLocation})
	}
	return out
}
