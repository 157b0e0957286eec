package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	IsAdmin      bool   `gorm:"default:false"`

	Stats UserStats `gorm:"constraint:OnDelete:CASCADE"`
}

// UserStats carries the gamification state for one user. XP and Level are
// never written independently: every XP change goes through services.AddXP,
// which re-derives Level from the curve.
type UserStats struct {
	gorm.Model
	UserID           uint `gorm:"uniqueIndex;not null"`
	XP               int  `gorm:"default:0"`
	Level            int  `gorm:"default:1"`
	TotalTimeSec     int  `gorm:"default:0"`
	CurrentStreak    int  `gorm:"default:0"`
	LongestStreak    int  `gorm:"default:0"`
	LastActivityDate *time.Time
}

// AppSetting is a persisted key-value pair for process-wide flags,
// e.g. whether registration is currently open.
type AppSetting struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:256;not null"`
}
