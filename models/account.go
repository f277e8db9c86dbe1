package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is one bank/e-wallet balance record owned by a user. CurrentBalance
// is always derived from the account's allocations and must be recomputed
// after any allocation mutation.
type Account struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         uint `gorm:"index;not null"`
	BankID         uint `gorm:"index;not null"`
	Bank           Bank `gorm:"foreignKey:BankID;references:ID"`
	InitialBalance decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0"`
	CurrentBalance decimal.Decimal     `gorm:"type:numeric(18,2);not null;default:0"`
	Allocations    []AccountAllocation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
