package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/voiceops/tripquery/backoff"
	"github.com/voiceops/tripquery/types"
)

// Planner asks the LLM server which tool fits a query.
type Planner struct {
	baseURL string
	client  *http.Client
	retry   backoff.Config
}

// NewPlanner builds a planner against the LLM server base URL.
func NewPlanner(baseURL string) *Planner {
	return &Planner{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		retry:   backoff.Default(),
	}
}

// Plan sends the query plus the tool catalog to the LLM server and
// returns its decision. Transient upstream failures are retried.
func (p *Planner) Plan(ctx context.Context, query string) (*types.ChatResponse, error) {
	body, err := json.Marshal(types.ChatRequest{
		UserInput:  query,
		Tools:      Catalog,
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	var decision types.ChatResponse
	err = backoff.Retry(ctx, p.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if backoff.RetryableStatus(resp.StatusCode) {
			return fmt.Errorf("llm server returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("llm server returned %d", resp.StatusCode))
		}
		return json.NewDecoder(resp.Body).Decode(&decision)
	})
	if err != nil {
		return nil, err
	}
	return &decision, nil
}
