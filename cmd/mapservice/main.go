package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"floormap/internal/common/config"
	"floormap/internal/common/middleware"
	"floormap/internal/mapservice/handlers"
	"floormap/internal/mapservice/repository"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Map Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3002"
	}

	db, err := repository.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.MigrationsPath); err != nil {
		log.Fatalf("init db: %v", err)
	}

	mapHandler := handlers.NewMapHandler(repo)
	officeHandler := handlers.NewOfficeHandler(repo)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Map Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := db.Ping(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Map Routes
	// ============================================================

	app.Post("/maps", mapHandler.SaveMap)
	app.Get("/maps", mapHandler.ListMaps)
	app.Get("/maps/:id", mapHandler.GetMap)
	app.Put("/maps/:id", mapHandler.UpdateMap)
	app.Get("/maps/:id/svg", mapHandler.RenderStoredMap)

	// ============================================================
	// Office & Asset Routes
	// ============================================================

	app.Get("/offices", officeHandler.ListOffices)
	app.Post("/offices/lookup", officeHandler.LookupOffices)
	app.Get("/assets", officeHandler.ListAssets)

	// Статика библиотеки ассетов.
	app.Get("/static/assets/*", func(c fiber.Ctx) error {
		return c.SendFile("static/assets/" + c.Params("*"))
	})

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Map Service on %s (env: %s)", addr, cfg.Environment)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
