package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target measured against the user's Tabungan bucket.
type Goal struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint            `gorm:"index;not null"`
	Name         string          `gorm:"size:255;not null"`
	TargetAmount decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Deadline     *time.Time
	Achieved     bool `gorm:"default:false"`
}
