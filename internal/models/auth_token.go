package models

import "time"

// AuthToken tracks issued bearer tokens by their JWT ID so that logout can
// revoke the current token and logout-all every token of a user.
type AuthToken struct {
	ID        uint   `gorm:"primaryKey"`
	JTI       string `gorm:"size:64;uniqueIndex;not null"`
	UserID    uint   `gorm:"index;not null"`
	User      User
	Revoked   bool      `gorm:"not null;default:false"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
