package main

import (
	"log"

	"github.com/voiceops/tripquery/config"
	"github.com/voiceops/tripquery/llm"
)

func main() {
	cfg := config.Load()

	client := llm.NewClient(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.OllamaModel)
	app := llm.NewServer(client)

	log.Printf("🤖 LLM server listening on %s (model %s at %s)", cfg.LLMAddr, cfg.OllamaModel, cfg.OllamaBaseURL)
	if err := app.Listen(cfg.LLMAddr); err != nil {
		log.Fatalf("LLM server failed: %v", err)
	}
}
