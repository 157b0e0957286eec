package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusUnsolved  = "unsolved"
	StatusAttempted = "attempted"
	StatusSolved    = "solved"
)

// UserProblem is the per-(user, problem) attempt record, created lazily on
// first interaction. The composite unique index holds the at-most-one-per-pair
// invariant even when two requests race on first touch.
type UserProblem struct {
	gorm.Model
	UserID       uint   `gorm:"index:idx_user_problem,unique;not null"`
	ProblemID    uint   `gorm:"index:idx_user_problem,unique;not null"`
	Status       string `gorm:"size:20;default:unsolved"`
	Code         string `gorm:"type:text"`
	Notes        string `gorm:"type:text"`
	Attempts     int    `gorm:"default:0"`
	TimeSpentSec int    `gorm:"default:0"`
	LastOpenedAt *time.Time
	LastSavedAt  *time.Time
	SolvedAt     *time.Time
}

// DailyTime accumulates seconds of work per user per UTC calendar day.
// One row per (user, day); concurrent writes for the same day fold into
// a single upsert.
type DailyTime struct {
	gorm.Model
	UserID  uint      `gorm:"index:idx_daily_time,unique;not null"`
	Day     time.Time `gorm:"index:idx_daily_time,unique;not null"`
	Seconds int       `gorm:"default:0"`
}

// ChapterProgress is the per-chapter completion tuple the dashboard renders.
type ChapterProgress struct {
	ChapterID uint   `json:"chapter_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Solved    int64  `json:"solved"`
	Total     int64  `json:"total"`
	Percent   int    `json:"percent"`
}
