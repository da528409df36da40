package models

import "time"

// FeePairing binds one vendor detail and one consumer detail to a fee.
type FeePairing struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	FeeID            uint       `gorm:"index;not null" json:"feeId"`
	VendorDetailID   uint       `gorm:"not null" json:"vendorDetailId"`
	VendorDetail     *FeeDetail `gorm:"foreignKey:VendorDetailID" json:"vendor,omitempty"`
	ConsumerDetailID uint       `gorm:"not null" json:"consumerDetailId"`
	ConsumerDetail   *FeeDetail `gorm:"foreignKey:ConsumerDetailID" json:"consumer,omitempty"`
	Status           FeeStatus  `gorm:"size:20;not null" json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
