package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spend recorded against an account's Kebutuhan bucket.
type Expense struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint            `gorm:"index;not null"`
	AccountID uint            `gorm:"index;not null"`
	Account   Account         `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name      string          `gorm:"size:255;not null"`
	Category  string          `gorm:"size:64"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Date      time.Time       `gorm:"not null;index"`
}

// Income is money credited into one of an account's buckets.
type Income struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint            `gorm:"index;not null"`
	AccountID uint            `gorm:"index;not null"`
	Account   Account         `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name      string          `gorm:"size:255;not null"`
	Type      AllocationType  `gorm:"size:16;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Date      time.Time       `gorm:"not null;index"`
}

// MonthlyExpense is a fixed recurring obligation (rent, subscriptions). Its
// monthly total reduces the daily-budget base before the per-day division.
type MonthlyExpense struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint            `gorm:"index;not null"`
	Name      string          `gorm:"size:255;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	DueDay    int             `gorm:"not null;default:1"`
}
