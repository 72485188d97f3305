package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleCashier UserRole = "Cashier"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleCashier
}

type User struct {
	ID            uint     `gorm:"primaryKey"`
	Name          string   `gorm:"size:100;not null"`
	Username      string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash  string   `gorm:"size:255;not null"`
	Role          UserRole `gorm:"size:20;not null"`
	ContactNumber string   `gorm:"size:30"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
