package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"plan-engine/internal/common/config"
	"plan-engine/internal/common/middleware"
	"plan-engine/internal/gateway/handlers"
	"plan-engine/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Plan Gateway
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Plan Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	engineURL := getEnv("ENGINE_URL", "http://localhost:3001")
	plansURL := getEnv("PLANS_URL", "http://localhost:3002")

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe(handlers.Upstreams{
		Engine: engineURL,
		Plans:  plansURL,
	}))

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Plan Gateway v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	// Engine Service
	api.Post("/cleanup", proxy.ProxyTo(engineURL+"/cleanup"))
	api.Post("/rooms/detect", proxy.ProxyTo(engineURL+"/rooms/detect"))
	api.Post("/solve", proxy.ProxyTo(engineURL+"/solve"))
	api.Post("/bevel", proxy.ProxyTo(engineURL+"/bevel"))
	api.Post("/bevel/center", proxy.ProxyTo(engineURL+"/bevel/center"))
	api.Post("/query/range", proxy.ProxyTo(engineURL+"/query/range"))
	api.Post("/query/nearest", proxy.ProxyTo(engineURL+"/query/nearest"))

	// Plans Service
	api.Post("/plans", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/plans?%s", plansURL, c.Request().URI().QueryString()))
	})
	api.Get("/plans", proxy.ProxyTo(plansURL+"/plans"))
	api.Get("/plans/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/plans/%s", plansURL, c.Params("id")))
	})
	api.Delete("/plans/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/plans/%s", plansURL, c.Params("id")))
	})

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Plan Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying engine to %s, plans to %s", engineURL, plansURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
