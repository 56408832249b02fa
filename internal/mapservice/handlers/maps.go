package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"floormap/internal/mapservice/repository"
	"floormap/internal/plan/editor"
	"floormap/internal/plan/models"
	"floormap/internal/plan/render"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Map Handler
// ============================================================

type MapHandler struct {
	repo *repository.Repository
}

func NewMapHandler(repo *repository.Repository) *MapHandler {
	return &MapHandler{repo: repo}
}

// SaveMap сохраняет новый документ. Валидация та же, что на клиенте:
// имя, непустая сцена, хотя бы одна офисная зона.
func (h *MapHandler) SaveMap(c fiber.Ctx) error {
	log.Printf("[MAPS] Save request, body: %d bytes", len(c.Body()))

	input, ok := decodeSaveInput(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(models.SaveResult{Success: false, Message: "invalid JSON payload"})
	}

	if err := editor.ValidateSaveInput(input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.SaveResult{Success: false, Message: err.Error()})
	}

	result, err := h.repo.SaveMapDocument(context.Background(), input)
	if err != nil {
		log.Printf("[MAPS] Save error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(models.SaveResult{Success: false, Message: "failed to save map"})
	}

	return c.JSON(result)
}

// UpdateMap перезаписывает существующий документ.
func (h *MapHandler) UpdateMap(c fiber.Ctx) error {
	id := c.Params("id")
	log.Printf("[MAPS] Update request for %s", id)

	input, ok := decodeSaveInput(c)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(models.SaveResult{Success: false, Message: "invalid JSON payload"})
	}

	if err := editor.ValidateSaveInput(input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.SaveResult{Success: false, Message: err.Error()})
	}

	result, err := h.repo.UpdateMapDocument(context.Background(), id, input)
	if err != nil {
		log.Printf("[MAPS] Update error: %v", err)
		return c.Status(http.StatusNotFound).JSON(models.SaveResult{Success: false, Message: "map not found"})
	}

	return c.JSON(result)
}

// GetMap отдаёт документ по id.
func (h *MapHandler) GetMap(c fiber.Ctx) error {
	id := c.Params("id")

	doc, err := h.repo.LoadMapDocument(context.Background(), id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"success": false, "message": "map not found"})
	}

	return c.JSON(fiber.Map{"success": true, "data": doc})
}

// ListMaps — список документов для админки.
func (h *MapHandler) ListMaps(c fiber.Ctx) error {
	maps, err := h.repo.ListMapDocuments(context.Background())
	if err != nil {
		log.Printf("[MAPS] List error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to list maps"})
	}

	return c.JSON(fiber.Map{"success": true, "data": maps})
}

// RenderStoredMap отдаёт сохранённый документ как SVG.
// ?policy=editable включает хуки редактора, по умолчанию read-only.
func (h *MapHandler) RenderStoredMap(c fiber.Ctx) error {
	id := c.Params("id")

	doc, err := h.repo.LoadMapDocument(context.Background(), id)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"success": false, "message": "map not found"})
	}

	policy := render.ReadOnly
	if c.Query("policy") == "editable" {
		policy = render.Editable
	}

	svg, err := render.NewRenderer(policy).Render(doc)
	if err != nil {
		log.Printf("[MAPS] Render error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to render map"})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

func decodeSaveInput(c fiber.Ctx) (models.SaveMapInput, bool) {
	var input models.SaveMapInput
	if len(c.Body()) == 0 {
		return input, false
	}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		log.Printf("[MAPS] Decode error: %v", err)
		return input, false
	}
	return input, true
}
