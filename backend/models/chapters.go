package models

import "gorm.io/gorm"

type Chapter struct {
	gorm.Model
	Title    string `gorm:"size:120;not null"`
	Slug     string `gorm:"size:120;uniqueIndex;not null"`
	Position int    `gorm:"default:0"`

	Problems []Problem `gorm:"constraint:OnDelete:CASCADE"`
}

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Problem struct {
	gorm.Model
	ChapterID  uint   `gorm:"index;not null"`
	Title      string `gorm:"size:200;not null"`
	Difficulty string `gorm:"size:32;not null"` // easy, medium, hard
	Points     int    `gorm:"default:10"`
	Prompt     string `gorm:"type:text"`

	Tags []Tag `gorm:"many2many:problem_tags"`
}

// Tag names are trimmed and lowercased before they reach the database;
// the unique index keeps lazy creation idempotent.
type Tag struct {
	gorm.Model
	Name string `gorm:"size:64;uniqueIndex;not null"`
}
