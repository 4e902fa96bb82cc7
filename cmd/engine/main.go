package main

import (
	"fmt"
	"log"
	"time"

	"plan-engine/internal/common/config"
	"plan-engine/internal/common/middleware"
	"plan-engine/internal/engine/handlers"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Engine Service
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Plan Engine Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Engine Routes
	// ============================================================

	app.Post("/cleanup", handlers.Cleanup)
	app.Post("/rooms/detect", handlers.DetectRooms)
	app.Post("/solve", handlers.Solve)
	app.Post("/bevel", handlers.ApplyBevel)
	app.Post("/bevel/center", handlers.DragBevelCenter)
	app.Post("/query/range", handlers.RangeQuery)
	app.Post("/query/nearest", handlers.NearestQuery)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Plan Engine Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
