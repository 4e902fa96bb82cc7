package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Upstreams — адреса сервисов для сводной проверки готовности
type Upstreams struct {
	Engine string
	Plans  string
}

// LivenessProbe проверяет, что приложение работает
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe опрашивает оба сервиса и сводит их статус
func ReadinessProbe(up Upstreams) fiber.Handler {
	return func(c fiber.Ctx) error {
		services := fiber.Map{
			"engine": probe(up.Engine + "/health/live"),
			"plans":  probe(up.Plans + "/health/live"),
		}

		status := "ready"
		code := http.StatusOK
		for _, s := range services {
			if s != "ok" {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"services": services,
		})
	}
}

var probeClient = &http.Client{Timeout: 2 * time.Second}

func probe(url string) string {
	resp, err := probeClient.Get(url)
	if err != nil {
		return "unreachable"
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "degraded"
	}
	return "ok"
}
