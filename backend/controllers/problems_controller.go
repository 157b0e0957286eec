package controllers

import (
	"errors"
	"strconv"
	"time"

	"codetrack/backend/config"
	"codetrack/backend/models"
	"codetrack/backend/services"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProblemsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProblemsController(db *gorm.DB, cfg *config.Config) *ProblemsController {
	return &ProblemsController{DB: db, Cfg: cfg}
}

type SaveProblemInput struct {
	Code       string `json:"code"`
	Notes      string `json:"notes"`
	MarkSolved bool   `json:"mark_solved"`
}

type LogTimeInput struct {
	Seconds int `json:"seconds"`
}

func (pc *ProblemsController) problemID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid problem ID")
	}
	return uint(id), nil
}

// GetProblem godoc
// @Summary Open a problem
// @Description Returns the problem and the caller's attempt record, creating the record on first view
// @Tags problems
// @Produce json
// @Param id path int true "Problem ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /problems/{id} [get]
func (pc *ProblemsController) GetProblem(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	problemID, err := pc.problemID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid problem ID")
	}

	var problem models.Problem
	if err := pc.DB.Preload("Tags").First(&problem, problemID).Error; err != nil {
		return utils.NotFound(c, "Problem not found")
	}

	var attempt *models.UserProblem
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		up, created, err := services.FirstTouch(tx, userID, problem.ID)
		if err != nil {
			return err
		}
		// Opening does not touch streak or XP; only the first view is
		// stamped and logged.
		if created {
			now := time.Now().UTC()
			up.LastOpenedAt = &now
			if err := tx.Save(up).Error; err != nil {
				return err
			}
			if err := services.LogActivity(tx, userID, models.ActionOpenProblem, "problem", problem.ID); err != nil {
				return err
			}
		}
		attempt = up
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not open problem")
	}

	tagNames := make([]string, 0, len(problem.Tags))
	for _, tag := range problem.Tags {
		tagNames = append(tagNames, tag.Name)
	}

	return c.JSON(fiber.Map{
		"problem": fiber.Map{
			"id":         problem.ID,
			"chapter_id": problem.ChapterID,
			"title":      problem.Title,
			"difficulty": problem.Difficulty,
			"points":     problem.Points,
			"prompt":     problem.Prompt,
			"tags":       tagNames,
		},
		"attempt": attemptJSON(attempt),
	})
}

// SaveProblem godoc
// @Summary Save an attempt
// @Description Stores code/notes and advances the attempt state machine. XP is awarded only on the transition into solved.
// @Tags problems
// @Accept json
// @Produce json
// @Param id path int true "Problem ID"
// @Param request body SaveProblemInput true "Save payload"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /problems/{id}/save [post]
func (pc *ProblemsController) SaveProblem(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	problemID, err := pc.problemID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid problem ID")
	}

	var input SaveProblemInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var problem models.Problem
	if err := pc.DB.First(&problem, problemID).Error; err != nil {
		return utils.NotFound(c, "Problem not found")
	}

	var attempt *models.UserProblem
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		up, _, err := services.FirstTouch(tx, userID, problem.ID)
		if err != nil {
			return err
		}

		var stats models.UserStats
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		up.Code = input.Code
		up.Notes = input.Notes
		up.LastSavedAt = &now
		up.Attempts++

		action := models.ActionSaveProblem
		if input.MarkSolved {
			// Award only on the transition into solved; a re-save of an
			// already solved problem keeps its original SolvedAt and XP.
			if up.Status != models.StatusSolved {
				up.Status = models.StatusSolved
				up.SolvedAt = &now
				services.AddXP(&stats, problem.Points)
				action = models.ActionSolveProblem
			}
		} else if up.Status == models.StatusUnsolved {
			up.Status = models.StatusAttempted
		}

		services.UpdateStreak(&stats, now)

		if err := tx.Save(up).Error; err != nil {
			return err
		}
		if err := tx.Save(&stats).Error; err != nil {
			return err
		}
		if err := services.LogActivity(tx, userID, action, "problem", problem.ID); err != nil {
			return err
		}
		attempt = up
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not save attempt")
	}

	return c.JSON(fiber.Map{
		"message": "Saved",
		"attempt": attemptJSON(attempt),
	})
}

// LogTime godoc
// @Summary Log time on a problem
// @Description Adds elapsed seconds to the attempt, user totals and the daily aggregate. Rejects non-positive counts.
// @Tags problems
// @Accept json
// @Produce json
// @Param id path int true "Problem ID"
// @Param request body LogTimeInput true "Elapsed seconds"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /problems/{id}/time [post]
func (pc *ProblemsController) LogTime(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}
	problemID, err := pc.problemID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid problem ID")
	}

	var input LogTimeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Seconds <= 0 {
		return utils.BadRequest(c, "Seconds must be positive")
	}

	var problem models.Problem
	if err := pc.DB.First(&problem, problemID).Error; err != nil {
		return utils.NotFound(c, "Problem not found")
	}

	var totalTime int
	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		up, _, err := services.FirstTouch(tx, userID, problem.ID)
		if err != nil {
			return err
		}

		var stats models.UserStats
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		up.TimeSpentSec += input.Seconds
		stats.TotalTimeSec += input.Seconds
		services.UpdateStreak(&stats, now)

		if err := tx.Save(up).Error; err != nil {
			return err
		}
		if err := tx.Save(&stats).Error; err != nil {
			return err
		}
		if err := services.AddDailyTime(tx, userID, input.Seconds, now); err != nil {
			return err
		}
		if err := services.LogActivity(tx, userID, models.ActionTimeLog, "problem", problem.ID); err != nil {
			return err
		}
		totalTime = stats.TotalTimeSec
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not log time")
	}

	return c.JSON(fiber.Map{
		"ok":             true,
		"total_time_sec": totalTime,
	})
}

func attemptJSON(up *models.UserProblem) fiber.Map {
	return fiber.Map{
		"status":         up.Status,
		"code":           up.Code,
		"notes":          up.Notes,
		"attempts":       up.Attempts,
		"time_spent_sec": up.TimeSpentSec,
		"last_opened_at": up.LastOpenedAt,
		"last_saved_at":  up.LastSavedAt,
		"solved_at":      up.SolvedAt,
	}
}
