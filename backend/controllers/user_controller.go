package controllers

import (
	"codetrack/backend/config"
	"codetrack/backend/models"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's account data
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	return c.JSON(fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"is_admin":   user.IsAdmin,
		"created_at": user.CreatedAt,
	})
}

// GetStats godoc
// @Summary Get gamification stats
// @Description Returns the caller's XP, level, time totals and streaks
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/stats [get]
func (uc *UserController) GetStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var stats models.UserStats
	if err := uc.DB.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		return utils.NotFound(c, "Stats not found")
	}

	return c.JSON(fiber.Map{
		"xp":                 stats.XP,
		"level":              stats.Level,
		"total_time_sec":     stats.TotalTimeSec,
		"current_streak":     stats.CurrentStreak,
		"longest_streak":     stats.LongestStreak,
		"last_activity_date": stats.LastActivityDate,
	})
}
