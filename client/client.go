// Package client implements the voice input client for the STT server.
package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"

	"github.com/voiceops/tripquery/types"
)

// Client talks to the STT server over HTTP and websocket.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client against the STT server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Health checks the STT server.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]any
	if err := c.getJSON(ctx, "/health", &out); err != nil {
		return err
	}
	if out["status"] != "healthy" {
		return fmt.Errorf("server unhealthy: %v", out["status"])
	}
	return nil
}

// Status returns whether the server is recording and its sample rate.
func (c *Client) Status(ctx context.Context) (recording bool, sampleRate int, err error) {
	var out struct {
		Recording  bool `json:"recording"`
		SampleRate int  `json:"sample_rate"`
	}
	if err := c.getJSON(ctx, "/status", &out); err != nil {
		return false, 0, err
	}
	return out.Recording, out.SampleRate, nil
}

// StartRecording asks the server to begin capturing audio.
func (c *Client) StartRecording(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := c.postJSON(ctx, "/start_recording", &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("start recording: %s", out.Error)
	}
	return nil
}

// StopRecording ends the capture and returns the transcription.
func (c *Client) StopRecording(ctx context.Context) (string, error) {
	var out types.TranscribeResponse
	if err := c.postJSON(ctx, "/stop_recording", &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("stop recording: %s", out.Error)
	}
	return out.Transcription, nil
}

// QuickQuery records for the given duration and returns the
// transcription.
func (c *Client) QuickQuery(ctx context.Context, duration time.Duration) (string, error) {
	if err := c.StartRecording(ctx); err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		c.StopRecording(context.Background())
		return "", ctx.Err()
	case <-time.After(duration):
	}
	return c.StopRecording(ctx)
}

// StreamPCM sends raw little-endian PCM over the websocket stream
// endpoint in chunks and waits for the final transcript.
func (c *Client) StreamPCM(ctx context.Context, pcm []byte, sampleRate int) (string, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/stream"

	conn, _, err := gws.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return "", fmt.Errorf("dialing stream: %w", err)
	}
	defer conn.Close()

	start := types.StreamEvent{Event: "start"}
	start.Start.SessionID = uuid.New().String()
	start.Start.SampleRate = sampleRate
	if err := conn.WriteJSON(start); err != nil {
		return "", fmt.Errorf("sending start: %w", err)
	}

	const chunkSize = 8192
	for off := 0; off < len(pcm); off += chunkSize {
		end := off + chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}
		media := types.StreamEvent{Event: "media"}
		media.Media.Payload = base64.StdEncoding.EncodeToString(pcm[off:end])
		if err := conn.WriteJSON(media); err != nil {
			return "", fmt.Errorf("sending media: %w", err)
		}
	}

	if err := conn.WriteJSON(types.StreamEvent{Event: "stop"}); err != nil {
		return "", fmt.Errorf("sending stop: %w", err)
	}

	var transcript types.StreamTranscript
	if err := conn.ReadJSON(&transcript); err != nil {
		return "", fmt.Errorf("reading transcript: %w", err)
	}
	if transcript.Event == "error" {
		return "", fmt.Errorf("stream transcription failed")
	}
	return transcript.Transcription, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
