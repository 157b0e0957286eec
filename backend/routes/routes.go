package routes

import (
	"time"

	"codetrack/backend/config"
	"codetrack/backend/controllers"
	"codetrack/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	auth := app.Group("/api/auth", middleware.RateLimitMiddleware(20, time.Minute))
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Get("/api/user/stats", authMiddleware, userController.GetStats)

	// Dashboard routes
	dashboardController := controllers.NewDashboardController(db, cfg)
	app.Get("/api/dashboard", authMiddleware, dashboardController.GetDashboard)

	// Chapter routes
	chaptersController := controllers.NewChaptersController(db, cfg)
	chapters := app.Group("/api/chapters", authMiddleware)
	chapters.Get("/", chaptersController.ListChapters)
	chapters.Get("/:slug", chaptersController.GetChapter)

	// Problem routes
	problemsController := controllers.NewProblemsController(db, cfg)
	problems := app.Group("/api/problems", authMiddleware)
	problems.Get("/:id", problemsController.GetProblem)
	problems.Post("/:id/save", problemsController.SaveProblem)
	problems.Post("/:id/time", problemsController.LogTime)

	// Admin routes
	adminController := controllers.NewAdminController(db, cfg)
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/chapters", adminController.CreateChapter)
	admin.Post("/problems", adminController.CreateProblem)
	admin.Post("/import", adminController.BulkImport)
	admin.Put("/settings/registration", adminController.UpdateRegistration)
}
