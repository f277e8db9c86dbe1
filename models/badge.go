package models

import "time"

// Badge is a master-catalog row describing one earnable badge. Seeded at startup.
type Badge struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Code        string `gorm:"size:32;uniqueIndex;not null"`
	Name        string `gorm:"size:64;not null"`
	Description string `gorm:"size:255"`
}

// UserBadge is an awarded badge. One row per user per badge.
type UserBadge struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint      `gorm:"index;not null;uniqueIndex:idx_user_badge"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badge"`
	Badge     Badge     `gorm:"foreignKey:BadgeID;references:ID"`
	AwardedAt time.Time `gorm:"not null"`
}
