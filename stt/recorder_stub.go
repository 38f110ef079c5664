//go:build !portaudio
// +build !portaudio

package stt

import "fmt"

// Microphone stub used when the binary is built without portaudio.
type Microphone struct{}

// NewMicrophone builds the stub recorder.
func NewMicrophone(sampleRate int) *Microphone {
	return &Microphone{}
}

func (m *Microphone) Start() error {
	return fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}

func (m *Microphone) Stop() ([]int16, error) {
	return nil, fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}

func (m *Microphone) Recording() bool {
	return false
}
