package models

import "time"

// AuditLog is append-only: rows are written once as a side effect of a
// mutation and never updated or deleted afterwards.
//
// UserID is nil for system-initiated actions (e.g. a QR customer registering
// without a session). No magic sentinel ids.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	User      *User  `gorm:"constraint:OnDelete:SET NULL"`
	Action    string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
