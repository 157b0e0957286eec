package controllers

import (
	"time"

	"codetrack/backend/cache"
	"codetrack/backend/config"
	"codetrack/backend/models"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const chapterListCacheKey = "chapters:list"

type ChaptersController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewChaptersController(db *gorm.DB, cfg *config.Config) *ChaptersController {
	return &ChaptersController{DB: db, Cfg: cfg}
}

type chapterSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
	Problems int64  `json:"problems"`
}

// ListChapters godoc
// @Summary List chapters
// @Description Returns all chapters ordered by position. Served from redis when available; admin content writes invalidate the entry.
// @Tags chapters
// @Produce json
// @Success 200 {array} chapterSummary
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /chapters [get]
func (cc *ChaptersController) ListChapters(c *fiber.Ctx) error {
	if cache.Enabled() {
		var cached []chapterSummary
		if err := cache.Get(chapterListCacheKey, &cached); err == nil {
			c.Set("X-Cache", "HIT")
			return c.JSON(cached)
		}
	}

	var chapters []models.Chapter
	if err := cc.DB.Order("position ASC, id ASC").Find(&chapters).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch chapters")
	}

	result := make([]chapterSummary, 0, len(chapters))
	for _, chapter := range chapters {
		var count int64
		if err := cc.DB.Model(&models.Problem{}).
			Where("chapter_id = ?", chapter.ID).
			Count(&count).Error; err != nil {
			return utils.InternalServerError(c, "Could not fetch chapters")
		}
		result = append(result, chapterSummary{
			ID:       chapter.ID,
			Title:    chapter.Title,
			Slug:     chapter.Slug,
			Position: chapter.Position,
			Problems: count,
		})
	}

	if cache.Enabled() {
		cache.Set(chapterListCacheKey, result, 5*time.Minute)
		c.Set("X-Cache", "MISS")
	}

	return c.JSON(result)
}

// GetChapter godoc
// @Summary Get chapter detail
// @Description Returns one chapter with its problems and the caller's per-problem status
// @Tags chapters
// @Produce json
// @Param slug path string true "Chapter slug"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /chapters/{slug} [get]
func (cc *ChaptersController) GetChapter(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	slug := c.Params("slug")
	var chapter models.Chapter
	if err := cc.DB.Where("slug = ?", slug).First(&chapter).Error; err != nil {
		return utils.NotFound(c, "Chapter not found")
	}

	var problems []models.Problem
	if err := cc.DB.Preload("Tags").
		Where("chapter_id = ?", chapter.ID).
		Order("id ASC").
		Find(&problems).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch problems")
	}

	var attempts []models.UserProblem
	if err := cc.DB.Where("user_id = ?", userID).Find(&attempts).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch attempts")
	}
	statusByProblem := make(map[uint]string, len(attempts))
	for _, attempt := range attempts {
		statusByProblem[attempt.ProblemID] = attempt.Status
	}

	problemList := make([]fiber.Map, 0, len(problems))
	for _, problem := range problems {
		status, ok := statusByProblem[problem.ID]
		if !ok {
			status = models.StatusUnsolved
		}
		tagNames := make([]string, 0, len(problem.Tags))
		for _, tag := range problem.Tags {
			tagNames = append(tagNames, tag.Name)
		}
		problemList = append(problemList, fiber.Map{
			"id":         problem.ID,
			"title":      problem.Title,
			"difficulty": problem.Difficulty,
			"points":     problem.Points,
			"tags":       tagNames,
			"status":     status,
		})
	}

	return c.JSON(fiber.Map{
		"chapter": fiber.Map{
			"id":       chapter.ID,
			"title":    chapter.Title,
			"slug":     chapter.Slug,
			"position": chapter.Position,
		},
		"problems": problemList,
	})
}
