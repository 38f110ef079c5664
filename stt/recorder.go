//go:build portaudio
// +build portaudio

package stt

import (
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Microphone captures mono 16-bit PCM from the default input device.
type Microphone struct {
	sampleRate int

	mu        sync.Mutex
	stream    *portaudio.Stream
	samples   []int16
	recording bool
}

// NewMicrophone builds a microphone recorder at the given sample rate.
func NewMicrophone(sampleRate int) *Microphone {
	return &Microphone{sampleRate: sampleRate}
}

// Start opens the default input stream and begins buffering samples.
func (m *Microphone) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recording {
		return fmt.Errorf("already recording")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	buffer := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.samples = m.samples[:0]
	m.recording = true

	go m.capture(stream, buffer)

	log.Printf("Recording started at %d Hz", m.sampleRate)
	return nil
}

func (m *Microphone) capture(stream *portaudio.Stream, buffer []int16) {
	for {
		if err := stream.Read(); err != nil {
			m.mu.Lock()
			stillRecording := m.recording
			m.mu.Unlock()
			if stillRecording {
				log.Printf("Stream read error: %v", err)
			}
			return
		}

		m.mu.Lock()
		if !m.recording {
			m.mu.Unlock()
			return
		}
		m.samples = append(m.samples, buffer...)
		m.mu.Unlock()
	}
}

// Stop closes the stream and returns everything captured since Start.
func (m *Microphone) Stop() ([]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.recording {
		return nil, fmt.Errorf("not recording")
	}

	m.recording = false
	m.stream.Stop()
	m.stream.Close()
	m.stream = nil
	portaudio.Terminate()

	out := make([]int16, len(m.samples))
	copy(out, m.samples)
	log.Printf("Recording stopped, captured %d samples", len(out))
	return out, nil
}

// Recording reports whether a capture is in progress.
func (m *Microphone) Recording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording
}
