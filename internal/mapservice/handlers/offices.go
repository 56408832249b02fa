package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"floormap/internal/mapservice/repository"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Office Handler
// ============================================================

type OfficeHandler struct {
	repo *repository.Repository
}

func NewOfficeHandler(repo *repository.Repository) *OfficeHandler {
	return &OfficeHandler{repo: repo}
}

type lookupRequest struct {
	IDs []int64 `json:"ids"`
}

// LookupOffices — батч-поиск офисов по списку id; его зовёт просмотр
// карты, чтобы показать живые данные на ховере.
func (h *OfficeHandler) LookupOffices(c fiber.Ctx) error {
	var req lookupRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid JSON payload"})
	}
	if len(req.IDs) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "ids required"})
	}

	offices, err := h.repo.ListOfficesByIDs(context.Background(), req.IDs)
	if err != nil {
		log.Printf("[OFFICES] Lookup error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to load offices"})
	}

	return c.JSON(fiber.Map{"success": true, "data": offices})
}

// ListOffices — полный справочник для пула привязки редактора.
func (h *OfficeHandler) ListOffices(c fiber.Ctx) error {
	offices, err := h.repo.ListAllOffices(context.Background())
	if err != nil {
		log.Printf("[OFFICES] List error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to list offices"})
	}

	return c.JSON(fiber.Map{"success": true, "data": offices})
}

// ============================================================
// Asset Handler
// ============================================================

// ListAssets отдаёт фиксированную библиотеку растровых ассетов.
func (h *OfficeHandler) ListAssets(c fiber.Ctx) error {
	assets, err := h.repo.ListAssets(context.Background())
	if err != nil {
		log.Printf("[ASSETS] List error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "failed to list assets"})
	}

	return c.JSON(fiber.Map{"success": true, "data": assets})
}
