package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"plan-engine/internal/engine/cleanup"
	"plan-engine/internal/engine/models"
)

// ============================================================
// Cleanup Handler
// ============================================================

type cleanupRequest struct {
	Walls   []models.Wall   `json:"walls"`
	Options *cleanupOptions `json:"options,omitempty"`
}

// все toggles по умолчанию включены, поэтому указатели
type cleanupOptions struct {
	EndpointTolerance  float64 `json:"endpointTolerance"`
	CollinearAngleDeg  float64 `json:"collinearAngleToleranceDeg"`
	SplitTJunctions    *bool   `json:"splitTJunctions,omitempty"`
	SplitIntersections *bool   `json:"splitIntersections,omitempty"`
	MergeCollinear     *bool   `json:"mergeCollinear,omitempty"`
	HealGaps           *bool   `json:"healGaps,omitempty"`
}

type cleanupResponse struct {
	Walls  []models.Wall  `json:"walls"`
	Report cleanup.Report `json:"report"`
}

// Cleanup нормализует сырой список стен в плоский граф
func Cleanup(c fiber.Ctx) error {
	var req cleanupRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json: " + err.Error()})
	}

	opts := cleanup.DefaultOptions()
	if o := req.Options; o != nil {
		if o.EndpointTolerance > 0 {
			opts.EndpointTolerance = o.EndpointTolerance
		}
		if o.CollinearAngleDeg > 0 {
			opts.CollinearAngleDeg = o.CollinearAngleDeg
		}
		if o.SplitTJunctions != nil {
			opts.SplitTJunctions = *o.SplitTJunctions
		}
		if o.SplitIntersections != nil {
			opts.SplitIntersections = *o.SplitIntersections
		}
		if o.MergeCollinear != nil {
			opts.MergeCollinear = *o.MergeCollinear
		}
		if o.HealGaps != nil {
			opts.HealGaps = *o.HealGaps
		}
	}

	walls, report := cleanup.Clean(req.Walls, opts)
	log.Printf("[ENGINE] Cleanup: %d walls in, %d walls out, report %+v", len(req.Walls), len(walls), report)

	return c.JSON(cleanupResponse{Walls: walls, Report: report})
}
