package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/voiceops/tripquery/backoff"
)

// WhisperClient talks to a Whisper-compatible transcription API.
type WhisperClient struct {
	baseURL    string
	model      string
	language   string
	httpClient *http.Client
	retry      backoff.Config
}

// NewWhisperClient builds a client against the given API base URL,
// e.g. a local whisper.cpp server or the OpenAI endpoint.
func NewWhisperClient(baseURL, model, language string) *WhisperClient {
	return &WhisperClient{
		baseURL:    baseURL,
		model:      model,
		language:   language,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      backoff.Default(),
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends WAV audio to the transcription API and returns the
// recognized text. Transient API failures are retried.
func (c *WhisperClient) Transcribe(ctx context.Context, wavData []byte) (string, error) {
	var result transcriptionResponse

	err := backoff.Retry(ctx, c.retry, func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", "audio.wav")
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}
		if _, err = part.Write(wavData); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}
		if err = writer.WriteField("model", c.model); err != nil {
			return fmt.Errorf("writing model field: %w", err)
		}
		if err = writer.WriteField("language", c.language); err != nil {
			return fmt.Errorf("writing language field: %w", err)
		}
		if err = writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			apiErr := fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody))
			if backoff.RetryableStatus(resp.StatusCode) {
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if err != nil {
		return "", err
	}

	return result.Text, nil
}
