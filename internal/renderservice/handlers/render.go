package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"floormap/internal/plan/models"
	"floormap/internal/plan/render"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Render Handler
// ============================================================

// RenderMap рендерит присланный документ карты в SVG.
// ?policy=editable включает хуки редактора, по умолчанию read-only.
func RenderMap(c fiber.Ctx) error {
	log.Printf("[RENDER] Received request, body: %d bytes", len(c.Body()))

	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "body required"})
	}

	var doc models.MapDocument
	if err := json.Unmarshal(c.Body(), &doc); err != nil {
		log.Printf("[RENDER] Decode error: %v", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}

	policy := render.ReadOnly
	if c.Query("policy") == "editable" {
		policy = render.Editable
	}

	svg, err := render.NewRenderer(policy).Render(&doc)
	if err != nil {
		log.Printf("[RENDER] Render error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}
