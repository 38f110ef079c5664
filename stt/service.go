package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/voiceops/tripquery/types"
)

// Recorder captures PCM audio between Start and Stop.
type Recorder interface {
	Start() error
	Stop() ([]int16, error)
	Recording() bool
}

// Transcriber turns WAV audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavData []byte) (string, error)
}

// Service ties the recorder, transcriber and analytics client into the
// voice query flow.
type Service struct {
	recorder   Recorder
	whisper    Transcriber
	analytics  *AnalyticsClient
	sampleRate int
}

// NewService wires the voice pipeline.
func NewService(recorder Recorder, whisper Transcriber, analytics *AnalyticsClient, sampleRate int) *Service {
	return &Service{
		recorder:   recorder,
		whisper:    whisper,
		analytics:  analytics,
		sampleRate: sampleRate,
	}
}

// Recording reports whether a capture is in progress.
func (s *Service) Recording() bool {
	return s.recorder.Recording()
}

// SampleRate returns the configured capture rate.
func (s *Service) SampleRate() int {
	return s.sampleRate
}

// StartRecording begins microphone capture.
func (s *Service) StartRecording() error {
	return s.recorder.Start()
}

// StopAndTranscribe ends the capture, conditions the audio and sends it
// for transcription.
func (s *Service) StopAndTranscribe(ctx context.Context) (string, error) {
	samples, err := s.recorder.Stop()
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("no audio captured")
	}
	return s.TranscribeSamples(ctx, samples, s.sampleRate)
}

// TranscribeSamples conditions raw PCM and sends it for transcription.
// Clips whose level never rises above the noise gate are rejected
// without an API call.
func (s *Service) TranscribeSamples(ctx context.Context, samples []int16, sampleRate int) (string, error) {
	floats := Int16ToFloat(samples)
	if RMS(floats) < gateThreshold {
		return "", fmt.Errorf("no speech detected")
	}
	conditioned := FloatToInt16(Condition(floats))

	wavData, err := EncodeWAV(conditioned, sampleRate)
	if err != nil {
		return "", err
	}

	text, err := s.whisper.Transcribe(ctx, wavData)
	if err != nil {
		return "", fmt.Errorf("transcribing: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// TranscribeWAV decodes an uploaded WAV file and transcribes it.
func (s *Service) TranscribeWAV(ctx context.Context, wavData []byte) (string, error) {
	samples, rate, err := DecodeWAV(wavData)
	if err != nil {
		return "", err
	}
	return s.TranscribeSamples(ctx, samples, rate)
}

// RunQuery forwards a transcription to the analytics server.
func (s *Service) RunQuery(ctx context.Context, query string) (*types.QueryResponse, error) {
	return s.analytics.Process(ctx, query)
}
