package services

import (
	"codetrack/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var defaultChapters = []string{
	"Basics",
	"Loops",
	"Functions",
	"Lists",
	"Dicts",
	"Strings",
	"Files",
	"OOP",
}

// SeedChapters inserts the default chapter set, keyed by slug so repeated
// runs are idempotent.
func SeedChapters(db *gorm.DB) error {
	for idx, title := range defaultChapters {
		chapter := models.Chapter{
			Title:    title,
			Slug:     Slugify(title),
			Position: idx + 1,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&chapter).Error; err != nil {
			return err
		}
	}
	return nil
}
