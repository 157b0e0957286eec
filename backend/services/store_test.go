package services

import (
	"fmt"
	"testing"
	"time"

	"codetrack/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.AppSetting{},
		&models.Chapter{},
		&models.Problem{},
		&models.Tag{},
		&models.UserProblem{},
		&models.DailyTime{},
		&models.ActivityLog{},
	))
	return db
}

func TestAddDailyTimeAccumulates(t *testing.T) {
	db := newTestDB(t)
	today := DateOf(time.Now())

	require.NoError(t, AddDailyTime(db, 1, 30, today))
	require.NoError(t, AddDailyTime(db, 1, 45, today))

	var row models.DailyTime
	require.NoError(t, db.Where("user_id = ? AND day = ?", 1, today).First(&row).Error)
	assert.Equal(t, 75, row.Seconds)

	var count int64
	db.Model(&models.DailyTime{}).Where("user_id = ?", 1).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddDailyTimeSeparatesDays(t *testing.T) {
	db := newTestDB(t)
	today := DateOf(time.Now())
	tomorrow := today.AddDate(0, 0, 1)

	require.NoError(t, AddDailyTime(db, 1, 30, today))
	require.NoError(t, AddDailyTime(db, 1, 45, tomorrow))

	var count int64
	db.Model(&models.DailyTime{}).Where("user_id = ?", 1).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestFirstTouchIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	first, created, err := FirstTouch(db, 1, 7)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.StatusUnsolved, first.Status)

	second, created, err := FirstTouch(db, 1, 7)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&models.UserProblem{}).Where("user_id = ? AND problem_id = ?", 1, 7).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestEnsureTagsCaseFoldsAndDedupes(t *testing.T) {
	db := newTestDB(t)

	tags, err := EnsureTags(db, []string{" Loops ", "loops", "ARRAYS", ""})
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "loops", tags[0].Name)
	assert.Equal(t, "loops", tags[1].Name)
	assert.Equal(t, tags[0].ID, tags[1].ID)
	assert.Equal(t, "arrays", tags[2].Name)

	var count int64
	db.Model(&models.Tag{}).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestRegistrationOpenDefaults(t *testing.T) {
	db := newTestDB(t)

	// No setting and no admin: open.
	open, err := RegistrationOpen(db)
	require.NoError(t, err)
	assert.True(t, open)

	// An admin exists but still no stored value: closed.
	require.NoError(t, db.Create(&models.User{Email: "a@b.c", PasswordHash: "x", IsAdmin: true}).Error)
	open, err = RegistrationOpen(db)
	require.NoError(t, err)
	assert.False(t, open)

	// Stored value wins over the default rule.
	require.NoError(t, SetRegistrationOpen(db, true))
	open, err = RegistrationOpen(db)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestChapterProgressFor(t *testing.T) {
	db := newTestDB(t)

	empty := models.Chapter{Title: "Empty", Slug: "empty", Position: 2}
	require.NoError(t, db.Create(&empty).Error)

	loops := models.Chapter{Title: "Loops", Slug: "loops", Position: 1}
	require.NoError(t, db.Create(&loops).Error)
	for i := 0; i < 4; i++ {
		require.NoError(t, db.Create(&models.Problem{
			ChapterID:  loops.ID,
			Title:      fmt.Sprintf("Problem %d", i+1),
			Difficulty: models.DifficultyEasy,
			Points:     10,
		}).Error)
	}

	var problems []models.Problem
	require.NoError(t, db.Where("chapter_id = ?", loops.ID).Order("id ASC").Find(&problems).Error)
	require.NoError(t, db.Create(&models.UserProblem{
		UserID:    1,
		ProblemID: problems[0].ID,
		Status:    models.StatusSolved,
	}).Error)
	require.NoError(t, db.Create(&models.UserProblem{
		UserID:    1,
		ProblemID: problems[1].ID,
		Status:    models.StatusAttempted,
	}).Error)

	progress, err := ChapterProgressFor(db, 1)
	require.NoError(t, err)
	require.Len(t, progress, 2)

	// Ordered by position: loops first.
	assert.Equal(t, "loops", progress[0].Slug)
	assert.EqualValues(t, 1, progress[0].Solved)
	assert.EqualValues(t, 4, progress[0].Total)
	assert.Equal(t, 25, progress[0].Percent)

	// Empty chapter reports 0 percent without dividing.
	assert.Equal(t, "empty", progress[1].Slug)
	assert.EqualValues(t, 0, progress[1].Total)
	assert.Equal(t, 0, progress[1].Percent)
}

func TestTodayActivityNewestFirstCapped(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 12; i++ {
		require.NoError(t, LogActivity(db, 1, models.ActionSaveProblem, "problem", uint(i+1)))
	}
	require.NoError(t, LogActivity(db, 2, models.ActionSaveProblem, "problem", 99))

	logs, err := TodayActivity(db, 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 10)
	assert.EqualValues(t, 12, logs[0].RefID)
	for _, entry := range logs {
		assert.EqualValues(t, 1, entry.UserID)
	}
}

func TestSeedChaptersIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SeedChapters(db))
	require.NoError(t, SeedChapters(db))

	var count int64
	db.Model(&models.Chapter{}).Count(&count)
	assert.EqualValues(t, 8, count)

	var first models.Chapter
	require.NoError(t, db.Where("slug = ?", "basics").First(&first).Error)
	assert.Equal(t, 1, first.Position)
}
