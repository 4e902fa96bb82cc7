package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"plan-engine/internal/plans/repository"
	"plan-engine/internal/plans/schema"
)

// ============================================================
// Plans Handler
// ============================================================

type PlansHandler struct {
	repo *repository.Repository
}

func NewPlansHandler(repo *repository.Repository) *PlansHandler {
	return &PlansHandler{repo: repo}
}

// Save валидирует конверт и сохраняет его как есть; миграция
// выполняется при чтении.
func (h *PlansHandler) Save(c fiber.Ctx) error {
	log.Printf("[PLANS] Save request, %d bytes", len(c.Body()))

	env, err := schema.Parse(c.Body())
	if err != nil {
		log.Printf("[PLANS] Envelope rejected: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	id := c.Query("id")
	if id == "" {
		id = uuid.NewString()
	}

	if err := h.repo.Save(context.Background(), id, env.Version, c.Body()); err != nil {
		log.Printf("[PLANS] Save failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save plan"})
	}

	return c.JSON(fiber.Map{"id": id, "version": env.Version})
}

// Get читает план, валидирует и мигрирует до текущей версии
func (h *PlansHandler) Get(c fiber.Ctx) error {
	id := c.Params("id")

	payload, err := h.repo.Get(context.Background(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
		}
		log.Printf("[PLANS] Get failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load plan"})
	}

	env, err := schema.Parse(payload)
	if err != nil {
		// план в базе испорчен, наружу не отдаем
		log.Printf("[PLANS] Stored envelope invalid for %s: %v", id, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "stored plan is invalid"})
	}
	if err := schema.Migrate(env); err != nil {
		log.Printf("[PLANS] Migration failed for %s: %v", id, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to migrate plan"})
	}

	return c.JSON(env)
}

func (h *PlansHandler) List(c fiber.Ctx) error {
	infos, err := h.repo.List(context.Background())
	if err != nil {
		log.Printf("[PLANS] List failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list plans"})
	}
	if infos == nil {
		infos = []repository.PlanInfo{}
	}
	return c.JSON(fiber.Map{"plans": infos})
}

func (h *PlansHandler) Delete(c fiber.Ctx) error {
	id := c.Params("id")

	if err := h.repo.Delete(context.Background(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "plan not found"})
		}
		log.Printf("[PLANS] Delete failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete plan"})
	}

	return c.JSON(fiber.Map{"deleted": id})
}
