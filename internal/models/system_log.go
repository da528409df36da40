package models

import "time"

type LogAction string

const (
	LogActionCreate LogAction = "create"
	LogActionUpdate LogAction = "update"
	LogActionDelete LogAction = "delete"
)

// SystemLog records one committed mutation of the fee configuration.
type SystemLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	AdminID   *uint  `gorm:"index" json:"adminId"`
	AdminName string `gorm:"size:100" json:"adminName"`
	RequestID string `gorm:"size:64" json:"requestId"`

	// "fee", "fee_pairing", "fee_category"
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   uint   `gorm:"index" json:"entityId"`

	Action      LogAction `gorm:"size:20" json:"action"`
	Description string    `gorm:"size:255" json:"description"`

	BeforeData string `gorm:"type:text" json:"beforeData"`
	AfterData  string `gorm:"type:text" json:"afterData"`
}
