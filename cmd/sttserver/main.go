package main

import (
	"log"

	"github.com/voiceops/tripquery/config"
	"github.com/voiceops/tripquery/stt"
)

func main() {
	cfg := config.Load()

	whisper := stt.NewWhisperClient(cfg.WhisperURL, cfg.WhisperModel, cfg.Language)
	analytics := stt.NewAnalyticsClient(cfg.AnalyticsURL)
	svc := stt.NewService(stt.NewMicrophone(cfg.SampleRate), whisper, analytics, cfg.SampleRate)

	forwarder := stt.NewForwarder(analytics)
	forwarder.Start()
	defer forwarder.Stop()

	app := stt.NewServer(svc, forwarder)

	log.Printf("🎙️ STT server listening on %s (whisper at %s)", cfg.STTAddr, cfg.WhisperURL)
	if err := app.Listen(cfg.STTAddr); err != nil {
		log.Fatalf("STT server failed: %v", err)
	}
}
