package models

import "time"

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodGcash PaymentMethod = "gcash"
	PaymentMethodCard  PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodGcash || m == PaymentMethodCard
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// Multiple payments may exist per order, e.g. a failed attempt followed by a
// completed one.
type Payment struct {
	ID               uint          `gorm:"primaryKey"`
	OrderID          uint          `gorm:"index;not null"`
	AmountPaid       float64       `gorm:"not null"`
	PaymentMethod    PaymentMethod `gorm:"size:20;not null"`
	PaymentStatus    PaymentStatus `gorm:"size:20;not null"`
	PaymentTimestamp time.Time     `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
