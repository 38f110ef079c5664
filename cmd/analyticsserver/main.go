package main

import (
	"log"

	"github.com/voiceops/tripquery/analytics"
	"github.com/voiceops/tripquery/charts"
	"github.com/voiceops/tripquery/config"
)

func main() {
	cfg := config.Load()

	store, err := analytics.LoadCSV(cfg.CSVPath)
	if err != nil {
		log.Fatalf("Loading trip data: %v", err)
	}

	renderer, err := charts.NewRenderer(cfg.ChartsDir)
	if err != nil {
		log.Fatalf("Preparing charts directory: %v", err)
	}

	app, _ := analytics.NewServer(store, renderer, analytics.NewPlanner(cfg.LLMServerURL))

	log.Printf("📊 Analytics server listening on %s (%d trips from %s)", cfg.AnalyticsAddr, store.Len(), cfg.CSVPath)
	if err := app.Listen(cfg.AnalyticsAddr); err != nil {
		log.Fatalf("Analytics server failed: %v", err)
	}
}
