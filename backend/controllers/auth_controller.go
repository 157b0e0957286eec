package controllers

import (
	"errors"
	"strings"
	"time"

	"codetrack/backend/config"
	"codetrack/backend/middleware"
	"codetrack/backend/models"
	"codetrack/backend/services"
	"codetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterInput struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	InviteCode string `json:"invite_code" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates a user account with its stats record. The first user ever becomes admin, after which registration closes.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterInput true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := middleware.ValidateStruct(&input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	open, err := services.RegistrationOpen(ac.DB)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if !open {
		return utils.Forbidden(c, "Registration is closed")
	}

	if ac.Cfg.InviteCode == "" || input.InviteCode != ac.Cfg.InviteCode {
		return utils.Forbidden(c, "Invalid invite code")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing models.User
	if err := ac.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.Conflict(c, "Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	var user models.User
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		firstUser := count == 0

		user = models.User{
			Email:        email,
			PasswordHash: string(hashedPassword),
			IsAdmin:      firstUser,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		stats := models.UserStats{UserID: user.ID, Level: 1}
		services.UpdateStreak(&stats, time.Now())
		if err := tx.Create(&stats).Error; err != nil {
			return err
		}

		if err := services.LogActivity(tx, user.ID, models.ActionRegister, "user", user.ID); err != nil {
			return err
		}

		if firstUser {
			return services.SetRegistrationOpen(tx, false)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Email already registered")
		}
		return utils.InternalServerError(c, "Could not create user")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	utils.Logger.Info("user_registered",
		zap.Uint("user_id", user.ID),
		zap.Bool("is_admin", user.IsAdmin),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"email":    user.Email,
			"is_admin": user.IsAdmin,
		},
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := middleware.ValidateStruct(&input); err != nil {
		return utils.ValidationError(c, err.Error())
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		var stats models.UserStats
		if err := tx.Where("user_id = ?", user.ID).First(&stats).Error; err != nil {
			return err
		}
		services.UpdateStreak(&stats, time.Now())
		if err := tx.Save(&stats).Error; err != nil {
			return err
		}
		return services.LogActivity(tx, user.ID, models.ActionLogin, "user", user.ID)
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update streak")
	}

	token, err := utils.GenerateJWTToken(user.ID, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"email":    user.Email,
			"is_admin": user.IsAdmin,
		},
	})
}
