package controllers

import (
	"codetrack/backend/config"
	"codetrack/backend/models"
	"codetrack/backend/services"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DashboardController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewDashboardController(db *gorm.DB, cfg *config.Config) *DashboardController {
	return &DashboardController{DB: db, Cfg: cfg}
}

// GetDashboard godoc
// @Summary Get dashboard
// @Description Returns the caller's stats, per-chapter progress and today's activity feed (newest first, max 10)
// @Tags dashboard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (dc *DashboardController) GetDashboard(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var stats models.UserStats
	if err := dc.DB.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return utils.NotFound(c, "Stats not found")
	}

	progress, err := services.ChapterProgressFor(dc.DB, userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute progress")
	}

	activity, err := services.TodayActivity(dc.DB, userID, 10)
	if err != nil {
		return utils.InternalServerError(c, "Could not load activity")
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"xp":                 stats.XP,
			"level":              stats.Level,
			"total_time_sec":     stats.TotalTimeSec,
			"current_streak":     stats.CurrentStreak,
			"longest_streak":     stats.LongestStreak,
			"last_activity_date": stats.LastActivityDate,
		},
		"chapter_progress": progress,
		"today_activity":   activity,
	})
}
