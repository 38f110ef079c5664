package stt

import (
	"io"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/voiceops/tripquery/types"
)

// NewServer builds the STT fiber app around the voice service. The
// forwarder may be nil when background analytics forwarding is off.
func NewServer(svc *Service, forwarder *Forwarder) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "STT Server",
		})
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"recording":   svc.Recording(),
			"sample_rate": svc.SampleRate(),
		})
	})

	app.Post("/start_recording", func(c *fiber.Ctx) error {
		if err := svc.StartRecording(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status": "error",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "recording_started"})
	})

	app.Post("/stop_recording", func(c *fiber.Ctx) error {
		text, err := svc.StopAndTranscribe(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(types.TranscribeResponse{
				Error: err.Error(),
			})
		}
		return c.JSON(types.TranscribeResponse{Transcription: text})
	})

	app.Post("/transcribe", func(c *fiber.Ctx) error {
		wavData, err := uploadedWAV(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.TranscribeResponse{
				Error: err.Error(),
			})
		}
		text, err := svc.TranscribeWAV(c.UserContext(), wavData)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(types.TranscribeResponse{
				Error: err.Error(),
			})
		}
		return c.JSON(types.TranscribeResponse{Transcription: text})
	})

	app.Post("/process_voice_query", func(c *fiber.Ctx) error {
		wavData, err := uploadedWAV(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(types.VoiceQueryResponse{
				Status: "error",
				Error:  err.Error(),
			})
		}

		text, err := svc.TranscribeWAV(c.UserContext(), wavData)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(types.VoiceQueryResponse{
				Status: "error",
				Error:  err.Error(),
			})
		}
		if text == "" {
			return c.JSON(types.VoiceQueryResponse{
				Status: "error",
				Error:  "no speech recognized",
			})
		}

		analytics, err := svc.RunQuery(c.UserContext(), text)
		if err != nil {
			log.Printf("Analytics call failed: %v", err)
			return c.Status(fiber.StatusBadGateway).JSON(types.VoiceQueryResponse{
				Transcription: text,
				Status:        "error",
				Error:         "analytics server unavailable",
			})
		}

		return c.JSON(types.VoiceQueryResponse{
			Transcription:     text,
			AnalyticsResponse: analytics,
			Status:            "success",
		})
	})

	app.Use("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/stream", websocket.New(func(ws *websocket.Conn) {
		NewStreamSession(ws, svc, forwarder).Run()
	}))

	return app
}

// uploadedWAV pulls the audio file out of a multipart request.
func uploadedWAV(c *fiber.Ctx) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "missing audio file upload")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
