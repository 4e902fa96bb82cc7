package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"plan-engine/internal/engine/bevel"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Bevel Handler
// ============================================================

type bevelRequest struct {
	Walls     []models.Wall `json:"walls"`
	WallA     string        `json:"wallA"`
	WallB     string        `json:"wallB"`
	Handle    string        `json:"handle"` // outer, inner
	Pointer   models.Point  `json:"pointer"`
	Tolerance float64       `json:"tolerance,omitempty"`
}

type bevelResponse struct {
	Walls       []models.Wall       `json:"walls"`
	Diagnostics []models.Diagnostic `json:"diagnostics,omitempty"`
	Applied     bool                `json:"applied"`
}

// ApplyBevel подрезает угол пары стен и ставит соединитель
func ApplyBevel(c fiber.Ctx) error {
	var req bevelRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	walls, diags := bevel.Apply(req.Walls, req.WallA, req.WallB, req.Handle, req.Pointer, req.Tolerance)
	log.Printf("[ENGINE] ApplyBevel: pair %s/%s handle %s, %d diagnostics", req.WallA, req.WallB, req.Handle, len(diags))

	return c.JSON(bevelResponse{Walls: walls, Diagnostics: diags, Applied: len(diags) == 0})
}

// DragBevelCenter смещает общий узел; вырожденный угол отклоняется
func DragBevelCenter(c fiber.Ctx) error {
	var req bevelRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	walls, ok := bevel.DragCenter(req.Walls, req.WallA, req.WallB, req.Pointer, req.Tolerance)
	log.Printf("[ENGINE] DragBevelCenter: pair %s/%s applied=%v", req.WallA, req.WallB, ok)

	if !ok {
		// ход отклонен, снимок не меняется
		return c.JSON(bevelResponse{Walls: req.Walls, Applied: false})
	}
	return c.JSON(bevelResponse{Walls: walls, Applied: true})
}
