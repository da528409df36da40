package models

import "time"

type FeeType string

const (
	FeeTypeGlobal    FeeType = "GLOBAL"
	FeeTypeNonGlobal FeeType = "NONGLOBAL"
)

type FeeStatus string

const (
	FeeStatusActive   FeeStatus = "ACTIVE"
	FeeStatusInactive FeeStatus = "INACTIVE"
	FeeStatusDeleted  FeeStatus = "DELETE"
)

// Fee is the root of a fee configuration tree. It binds a set of
// vendor/consumer charge pairs to one marketplace menu.
type Fee struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"size:1000" json:"description"`
	PolicyID    *uint     `gorm:"index" json:"policyId"`
	Policy      *Policy   `json:"policy,omitempty"`
	Type        FeeType   `gorm:"size:20;not null" json:"type"`
	MenuID      *uint     `gorm:"uniqueIndex:idx_fees_menu_id,where:status <> 'DELETE'" json:"menuId"`
	Status      FeeStatus `gorm:"size:20;not null;index" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Pairings   []FeePairing  `json:"pairings,omitempty"`
	Categories []FeeCategory `json:"categories,omitempty"`
}
