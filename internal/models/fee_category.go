package models

import "time"

// FeeCategory links a fee to a marketplace category. (fee_id, category_id) is unique.
type FeeCategory struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FeeID            uint      `gorm:"uniqueIndex:idx_fee_categories_fee_category;not null" json:"feeId"`
	CategoryID       uint      `gorm:"uniqueIndex:idx_fee_categories_fee_category;not null" json:"categoryId"`
	Category         *Category `json:"category,omitempty"`
	CategoryLocation string    `gorm:"size:150" json:"categoryLocation"`
	CreatedAt        time.Time `json:"createdAt"`
}
