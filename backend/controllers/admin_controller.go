package controllers

import (
	"encoding/json"
	"errors"

	"codetrack/backend/cache"
	"codetrack/backend/config"
	"codetrack/backend/middleware"
	"codetrack/backend/models"
	"codetrack/backend/services"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AdminController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAdminController(db *gorm.DB, cfg *config.Config) *AdminController {
	return &AdminController{DB: db, Cfg: cfg}
}

type CreateChapterInput struct {
	Title    string `json:"title" validate:"required,max=120"`
	Position int    `json:"position" validate:"gte=0"`
}

type CreateProblemInput struct {
	ChapterID  uint     `json:"chapter_id" validate:"required"`
	Title      string   `json:"title" validate:"required,max=200"`
	Difficulty string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Points     int      `json:"points" validate:"omitempty,gte=1"`
	Prompt     string   `json:"prompt"`
	Tags       []string `json:"tags"`
}

// ImportPayload mirrors the bulk import format: chapters are matched by
// slug-of-title and created when absent, problems are always created.
type ImportPayload struct {
	Chapters []struct {
		Title    string `json:"title"`
		Position int    `json:"position"`
		Problems []struct {
			Title      string   `json:"title"`
			Difficulty string   `json:"difficulty"`
			Points     int      `json:"points"`
			Prompt     string   `json:"prompt"`
			Tags       []string `json:"tags"`
		} `json:"problems"`
	} `json:"chapters"`
}

type RegistrationSettingInput struct {
	Open bool `json:"open"`
}

// CreateChapter godoc
// @Summary Create chapter
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateChapterInput true "Chapter data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/chapters [post]
func (ac *AdminController) CreateChapter(c *fiber.Ctx) error {
	var input CreateChapterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := middleware.ValidateStruct(&input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	slug := services.Slugify(input.Title)
	if slug == "" {
		return utils.BadRequest(c, "Title produces an empty slug")
	}

	chapter := models.Chapter{
		Title:    input.Title,
		Slug:     slug,
		Position: input.Position,
	}
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Chapter
		if err := tx.Where("slug = ?", slug).First(&existing).Error; err == nil {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&chapter).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Chapter already exists")
		}
		return utils.InternalServerError(c, "Could not create chapter")
	}

	cache.Delete(chapterListCacheKey)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Chapter created",
		"chapter": chapter,
	})
}

// CreateProblem godoc
// @Summary Create problem
// @Tags admin
// @Accept json
// @Produce json
// @Param request body CreateProblemInput true "Problem data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/problems [post]
func (ac *AdminController) CreateProblem(c *fiber.Ctx) error {
	var input CreateProblemInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := middleware.ValidateStruct(&input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	var chapter models.Chapter
	if err := ac.DB.First(&chapter, input.ChapterID).Error; err != nil {
		return utils.NotFound(c, "Chapter not found")
	}

	problem := models.Problem{
		ChapterID:  chapter.ID,
		Title:      input.Title,
		Difficulty: input.Difficulty,
		Points:     input.Points,
		Prompt:     input.Prompt,
	}
	if problem.Difficulty == "" {
		problem.Difficulty = models.DifficultyEasy
	}
	if problem.Points == 0 {
		problem.Points = 10
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		tags, err := services.EnsureTags(tx, input.Tags)
		if err != nil {
			return err
		}
		problem.Tags = tags
		return tx.Create(&problem).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create problem")
	}

	cache.Delete(chapterListCacheKey)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Problem created",
		"problem": problem,
	})
}

// BulkImport godoc
// @Summary Bulk import chapters and problems
// @Description Accepts {chapters:[{title,position?,problems:[...]}]}. Malformed JSON is rejected before any write; the whole import commits or rolls back as one unit.
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/import [post]
func (ac *AdminController) BulkImport(c *fiber.Ctx) error {
	var payload ImportPayload
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return utils.BadRequest(c, "Invalid JSON")
	}

	created := 0
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		for _, chapterData := range payload.Chapters {
			slug := services.Slugify(chapterData.Title)
			if slug == "" {
				return errors.New("chapter title produces an empty slug")
			}

			var chapter models.Chapter
			if err := tx.Where("slug = ?", slug).First(&chapter).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				chapter = models.Chapter{
					Title:    chapterData.Title,
					Slug:     slug,
					Position: chapterData.Position,
				}
				if err := tx.Create(&chapter).Error; err != nil {
					return err
				}
			}

			for _, p := range chapterData.Problems {
				problem := models.Problem{
					ChapterID:  chapter.ID,
					Title:      p.Title,
					Difficulty: p.Difficulty,
					Points:     p.Points,
					Prompt:     p.Prompt,
				}
				if problem.Difficulty == "" {
					problem.Difficulty = models.DifficultyEasy
				}
				if problem.Points == 0 {
					problem.Points = 10
				}
				tags, err := services.EnsureTags(tx, p.Tags)
				if err != nil {
					return err
				}
				problem.Tags = tags
				if err := tx.Create(&problem).Error; err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return utils.BadRequest(c, "Import failed: "+err.Error())
	}

	cache.Delete(chapterListCacheKey)
	utils.Logger.Info("bulk_import", zap.Int("problems_created", created))

	return c.JSON(fiber.Map{
		"message":  "Import complete",
		"imported": created,
	})
}

// UpdateRegistration godoc
// @Summary Toggle registration
// @Tags admin
// @Accept json
// @Produce json
// @Param request body RegistrationSettingInput true "Registration flag"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/settings/registration [put]
func (ac *AdminController) UpdateRegistration(c *fiber.Ctx) error {
	var input RegistrationSettingInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := services.SetRegistrationOpen(ac.DB, input.Open); err != nil {
		return utils.InternalServerError(c, "Could not update setting")
	}

	return c.JSON(fiber.Map{
		"message":           "Setting updated",
		"registration_open": input.Open,
	})
}
