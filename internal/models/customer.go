package models

import "time"

// Customer identifies a dine-in or QR self-service session. OrderReference is the
// human-shareable code used for pickup/payment matching.
type Customer struct {
	ID             uint   `gorm:"primaryKey"`
	CustomerName   string `gorm:"size:100"` // optional, frontend shows "Guest" when empty
	TableNumber    string `gorm:"size:20;not null"`
	OrderReference string `gorm:"size:100;uniqueIndex;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
