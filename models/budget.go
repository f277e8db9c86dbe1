package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is one logical row per user+account+calendar day, keyed by CreatedAt.
// DailyBudget starts equal to InitialDailyBudget and only decreases as
// expenses are recorded (or when a Kebutuhan mutation triggers a recompute).
// DailySaving accumulates the unspent leftover carried across days.
type Budget struct {
	ID                 uint `gorm:"primaryKey"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	UserID             uint            `gorm:"index;not null"`
	AccountID          uint            `gorm:"index;not null"`
	Account            Account         `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	DailyBudget        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	InitialDailyBudget decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DailySaving        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
}
