package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"plan-engine/internal/engine/models"
	"plan-engine/internal/engine/rooms"
)

// ============================================================
// Rooms Handler
// ============================================================

type detectRequest struct {
	Walls         []models.Wall `json:"walls"`
	PreviousRooms []models.Room `json:"previousRooms,omitempty"`
	Options       rooms.Options `json:"options"`
}

type detectResponse struct {
	Rooms       []models.Room       `json:"rooms"`
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

// DetectRooms извлекает замкнутые грани графа стен
func DetectRooms(c fiber.Ctx) error {
	var req detectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	found, diags := rooms.Detect(req.Walls, req.PreviousRooms, req.Options)
	log.Printf("[ENGINE] DetectRooms: %d walls, %d rooms, %d diagnostics", len(req.Walls), len(found), len(diags))

	return c.JSON(detectResponse{Rooms: found, Diagnostics: diags})
}
