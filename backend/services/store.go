package services

import (
	"strings"
	"time"

	"codetrack/backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddDailyTime folds seconds into the unique (user, day) row as a single
// atomic upsert, so two requests racing on the first touch of a day both
// land as additions instead of one of them failing on the unique index.
func AddDailyTime(tx *gorm.DB, userID uint, seconds int, day time.Time) error {
	row := models.DailyTime{UserID: userID, Day: DateOf(day), Seconds: seconds}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seconds":    gorm.Expr("seconds + ?", seconds),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&row).Error
}

// FirstTouch returns the attempt record for (userID, problemID), creating it
// with status unsolved if absent. The OnConflict guard makes concurrent first
// touches collapse into the one existing row; created reports whether this
// call inserted it.
func FirstTouch(tx *gorm.DB, userID, problemID uint) (*models.UserProblem, bool, error) {
	attempt := models.UserProblem{
		UserID:    userID,
		ProblemID: problemID,
		Status:    models.StatusUnsolved,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
		DoNothing: true,
	}).Create(&attempt)
	if result.Error != nil {
		return nil, false, result.Error
	}
	created := result.RowsAffected > 0

	if err := tx.Where("user_id = ? AND problem_id = ?", userID, problemID).
		First(&attempt).Error; err != nil {
		return nil, false, err
	}
	return &attempt, created, nil
}

// EnsureTags lazily creates tags by case-folded name and returns the rows
// for association. Blank names are skipped.
func EnsureTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		tag := models.Tag{Name: name}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&tag).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// LogActivity appends one immutable row to the activity log.
func LogActivity(tx *gorm.DB, userID uint, action, refType string, refID uint) error {
	return tx.Create(&models.ActivityLog{
		UserID:  userID,
		Action:  action,
		RefType: refType,
		RefID:   refID,
		Meta:    "{}",
	}).Error
}
