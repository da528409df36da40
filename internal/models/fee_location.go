package models

import "time"

// FeeLocation narrows one FeeDetail to a geographic scope. Its lifetime is
// owned by the detail that references it.
type FeeLocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FeeID     uint      `gorm:"index;not null" json:"feeId"`
	Side      FeeSide   `gorm:"size:10;not null" json:"side"`
	CountryID *uint     `json:"countryId"`
	StateID   *uint     `json:"stateId"`
	CityID    *uint     `json:"cityId"`
	Town      string    `gorm:"size:150" json:"town"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
