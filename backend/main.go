package main

import (
	"flag"
	"log"

	"codetrack/backend/cache"
	"codetrack/backend/config"
	"codetrack/backend/middleware"
	"codetrack/backend/routes"
	"codetrack/backend/services"
	"codetrack/backend/utils"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	seed := flag.Bool("seed", false, "insert the default chapter set and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger and metrics
	logger := utils.InitLogger(cfg.LogFile)
	defer logger.Sync()
	utils.InitMetrics()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	if err := utils.Migrate(db); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	if *seed {
		if err := services.SeedChapters(db); err != nil {
			log.Fatalf("Error seeding chapters: %v", err)
		}
		logger.Info("seeded_chapters")
		return
	}

	// Optional redis: caching and rate limiting stay off if unavailable
	if err := cache.Init(cfg, logger); err != nil {
		logger.Warn("continuing_without_redis", zap.Error(err))
	}
	defer cache.Close()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("db unavailable")
		}
		return c.SendString("ok")
	})

	// Setup routes
	routes.SetupRoutes(app, db, cfg)

	// Start server
	logger.Info("listening", zap.String("port", cfg.ServerPort))
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
