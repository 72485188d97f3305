package models

import "time"

type Menu struct {
	ID                 uint    `gorm:"primaryKey"`
	Name               string  `gorm:"size:100;not null"`
	Description        string  `gorm:"size:500"`
	Price              float64 `gorm:"not null"`
	Category           string  `gorm:"size:50;not null"`
	AvailabilityStatus bool    `gorm:"not null;default:true"`
	ProductDetails     string  `gorm:"size:500"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
