package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FeeSide string

const (
	FeeSideVendor   FeeSide = "VENDOR"
	FeeSideConsumer FeeSide = "CONSUMER"
)

// FeeDetail holds the charge parameters of one side of a pairing.
type FeeDetail struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	FeeID             uint            `gorm:"index;not null" json:"feeId"`
	Side              FeeSide         `gorm:"size:10;not null" json:"side"`
	Percentage        decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"percentage"`
	MaxCapPerDeal     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"maxCapPerDeal"`
	MaxCapPerMonth    decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"maxCapPerMonth"`
	FixedFee          decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"fixedFee"`
	VAT               decimal.Decimal `gorm:"column:vat;type:decimal(12,4);not null" json:"vat"`
	PaymentGatewayFee decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"paymentGatewayFee"`
	IsScopeGlobal     bool            `gorm:"not null" json:"isScopeGlobal"`
	LocationID        *uint           `gorm:"index" json:"locationId"`
	Location          *FeeLocation    `json:"location,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// BeforeSave keeps the global flag in lockstep with the location reference.
func (d *FeeDetail) BeforeSave(tx *gorm.DB) error {
	d.IsScopeGlobal = d.LocationID == nil
	return nil
}
