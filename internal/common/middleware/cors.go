package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS разрешает источники из CORS_ORIGINS; без настройки — все (dev).
func CORS() fiber.Handler {
	origins := []string{"*"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: []string{"*"},
		AllowMethods: []string{"*"},
	})
}
