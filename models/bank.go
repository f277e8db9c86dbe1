package models

import "time"

// Bank is a master-catalog row for supported banks and e-wallets. Seeded at startup.
type Bank struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:64;uniqueIndex;not null"`
	Code      string `gorm:"size:16"`
}
