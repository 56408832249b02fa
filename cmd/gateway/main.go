package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"floormap/internal/common/config"
	"floormap/internal/common/middleware"
	"floormap/internal/gateway/handlers"
	"floormap/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Floormap Gateway",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe)
	app.Get("/health/startup", handlers.StartupProbe)

	// ============================================================
	// Docs
	// ============================================================

	app.Get("/docs", handlers.SwaggerUI)
	app.Get("/docs/openapi.yaml", handlers.SwaggerSpec)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Floormap API v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	// Map Service
	mapURL := getEnv("MAP_SERVICE_URL", "http://localhost:3002")
	api.Post("/maps", proxy.ProxyTo(mapURL+"/maps"))
	api.Get("/maps", proxy.ProxyTo(mapURL+"/maps"))
	api.Get("/maps/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/maps/%s", mapURL, c.Params("id")))
	})
	api.Put("/maps/:id", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/maps/%s", mapURL, c.Params("id")))
	})
	api.Get("/maps/:id/svg", func(c fiber.Ctx) error {
		return proxy.Forward(c, fmt.Sprintf("%s/maps/%s/svg", mapURL, c.Params("id")))
	})
	api.Get("/offices", proxy.ProxyTo(mapURL+"/offices"))
	api.Post("/offices/lookup", proxy.ProxyTo(mapURL+"/offices/lookup"))
	api.Get("/assets", proxy.ProxyTo(mapURL+"/assets"))

	// Render Service
	renderURL := getEnv("RENDER_SERVICE_URL", "http://localhost:3001")
	api.Post("/render", proxy.ProxyTo(renderURL+"/render"))

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Floormap Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying /maps to %s", mapURL)
	log.Printf("Proxying /render to %s", renderURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}
