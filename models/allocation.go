package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationType is the budget bucket an allocation belongs to. The set is
// closed: exactly these three values, case-sensitive.
type AllocationType string

const (
	TypeKebutuhan AllocationType = "Kebutuhan" // needs / daily spending
	TypeTabungan  AllocationType = "Tabungan"  // savings
	TypeDarurat   AllocationType = "Darurat"   // emergency fund
)

// Valid reports whether t is one of the three known bucket types.
func (t AllocationType) Valid() bool {
	switch t {
	case TypeKebutuhan, TypeTabungan, TypeDarurat:
		return true
	}
	return false
}

// AllocationTypes lists all bucket types in canonical order.
func AllocationTypes() []AllocationType {
	return []AllocationType{TypeKebutuhan, TypeTabungan, TypeDarurat}
}

// AccountAllocation is one bucket of money inside an account.
// AllocationDate is the date the balance figure applies to; it is used by
// historical chart queries and defaults to the creation date.
type AccountAllocation struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AccountID      uint            `gorm:"index;not null"`
	Account        Account         `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Type           AllocationType  `gorm:"size:16;not null;index"`
	BalancePerType decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	AllocationDate time.Time       `gorm:"not null"`
}
