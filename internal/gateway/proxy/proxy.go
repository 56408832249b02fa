package proxy

import (
	"bytes"
	"io"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Proxy Handler
// ============================================================

// ProxyTo прокси запрос к другому сервису
func ProxyTo(targetURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return forwardRequest(c, targetURL)
	}
}

// Forward проксирует запрос по переданному URL (для динамических путей).
func Forward(c fiber.Ctx, targetURL string) error {
	return forwardRequest(c, targetURL)
}

// forwardRequest проксирует любой метод с сохранением тела и query.
// Сервисы карт общаются только JSON-ом, multipart здесь не нужен.
func forwardRequest(c fiber.Ctx, targetURL string) error {
	log.Printf("[PROXY] Request: %s %s", c.Method(), c.Path())
	log.Printf("[PROXY] Forwarding to: %s", targetURL)

	if qs := string(c.Request().URI().QueryString()); qs != "" {
		targetURL += "?" + qs
	}

	req, err := http.NewRequest(c.Method(), targetURL, bytes.NewReader(c.Body()))
	if err != nil {
		log.Printf("[PROXY] build request error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "proxy failed"})
	}

	if contentType := c.Get("Content-Type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth := c.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[PROXY] Error: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp)
}

func copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[PROXY] Read response error: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
