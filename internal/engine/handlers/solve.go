package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"plan-engine/internal/engine/models"
	"plan-engine/internal/engine/solver"
)

// ============================================================
// Solver Handler
// ============================================================

type solveRequest struct {
	Walls      []models.Wall      `json:"walls"`
	Dimensions []models.Dimension `json:"dimensions,omitempty"`
	Chains     []models.Chain     `json:"chains,omitempty"`
	Parameters []models.Parameter `json:"parameters,omitempty"`
	Context    map[string]float64 `json:"context,omitempty"`
}

// Solve применяет параметрические размеры к снимку стен
func Solve(c fiber.Ctx) error {
	var req solveRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	res := solver.Solve(req.Walls, req.Dimensions, req.Chains, req.Parameters, req.Context)
	log.Printf("[ENGINE] Solve: %d walls, %d dimensions, %d diagnostics",
		len(req.Walls), len(req.Dimensions), len(res.Diagnostics))

	return c.JSON(res)
}
