package llm

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/voiceops/tripquery/types"
)

// NewServer builds the fiber app exposing the LLM gateway: POST /chat
// for tool selection and plain chat, GET /health for liveness.
func NewServer(client *Client) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Post("/chat", func(c *fiber.Ctx) error {
		var req types.ChatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.UserInput == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_input is required"})
		}

		toolChoice := req.ToolChoice
		if toolChoice == "" {
			toolChoice = "auto"
		}

		if len(req.Tools) > 0 && toolChoice == "auto" {
			log.Printf("Tool selection request: %q (%d tools)", req.UserInput, len(req.Tools))
			resp, err := client.SelectTool(c.Context(), req.UserInput, req.Tools, time.Now())
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
			return c.JSON(resp)
		}

		log.Printf("Chat request: %q", req.UserInput)
		content, err := client.Chat(c.Context(), req.UserInput)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(types.ChatResponse{
			Type:    types.ResponseTypeText,
			Content: content,
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "LLM Server with Date Parsing",
			"model":   client.Model(),
		})
	})

	return app
}
