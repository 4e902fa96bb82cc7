package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"plan-engine/internal/engine/models"
	"plan-engine/internal/engine/spatial"
)

// ============================================================
// Spatial Query Handler
// ============================================================

// Индекс только читается после постройки, поэтому строится на
// каждый запрос; хост с горячим индексом держит его у себя.

type rangeRequest struct {
	Walls   []models.Wall   `json:"walls"`
	Box     models.Box      `json:"box"`
	Options spatial.Options `json:"options"`
}

type nearestRequest struct {
	Walls   []models.Wall   `json:"walls"`
	Point   models.Point    `json:"point"`
	Radius  float64         `json:"radius"`
	Options spatial.Options `json:"options"`
}

// RangeQuery возвращает id стен, пересекающих бокс
func RangeQuery(c fiber.Ctx) error {
	var req rangeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	idx := spatial.New(req.Options)
	idx.Rebuild(req.Walls)
	ids := idx.Range(req.Box)
	log.Printf("[ENGINE] RangeQuery: %d walls, %d hits", len(req.Walls), len(ids))

	return c.JSON(fiber.Map{"wallIds": ids})
}

// NearestQuery возвращает вершины в радиусе по возрастанию расстояния
func NearestQuery(c fiber.Ctx) error {
	var req nearestRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	idx := spatial.New(req.Options)
	idx.Rebuild(req.Walls)
	hits := idx.Nearest(req.Point, req.Radius)
	log.Printf("[ENGINE] NearestQuery: %d walls, %d hits", len(req.Walls), len(hits))

	return c.JSON(fiber.Map{"vertices": hits})
}
