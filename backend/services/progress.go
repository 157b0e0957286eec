package services

import (
	"time"

	"codetrack/backend/models"

	"gorm.io/gorm"
)

// ChapterProgressFor computes the per-chapter (solved, total, percent) tuples
// for one user, chapters ordered by position then id. Percent is floored
// integer division; an empty chapter reports 0 without dividing.
// Recomputed fresh per call; chapter sizes are small enough that no running
// counter is maintained.
func ChapterProgressFor(db *gorm.DB, userID uint) ([]models.ChapterProgress, error) {
	var chapters []models.Chapter
	if err := db.Order("position ASC, id ASC").Find(&chapters).Error; err != nil {
		return nil, err
	}

	progress := make([]models.ChapterProgress, 0, len(chapters))
	for _, chapter := range chapters {
		var total int64
		if err := db.Model(&models.Problem{}).
			Where("chapter_id = ?", chapter.ID).
			Count(&total).Error; err != nil {
			return nil, err
		}

		var solved int64
		if err := db.Model(&models.UserProblem{}).
			Joins("JOIN problems ON problems.id = user_problems.problem_id").
			Where("user_problems.user_id = ? AND problems.chapter_id = ? AND user_problems.status = ?",
				userID, chapter.ID, models.StatusSolved).
			Count(&solved).Error; err != nil {
			return nil, err
		}

		percent := 0
		if total > 0 {
			percent = int(solved * 100 / total)
		}

		progress = append(progress, models.ChapterProgress{
			ChapterID: chapter.ID,
			Title:     chapter.Title,
			Slug:      chapter.Slug,
			Solved:    solved,
			Total:     total,
			Percent:   percent,
		})
	}
	return progress, nil
}

// TodayActivity returns the user's activity rows for the current UTC day,
// newest first, capped at limit.
func TodayActivity(db *gorm.DB, userID uint, limit int) ([]models.ActivityLog, error) {
	start := DateOf(time.Now())
	var logs []models.ActivityLog
	err := db.Where("user_id = ? AND created_at >= ?", userID, start).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
