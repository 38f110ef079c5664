package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/voiceops/tripquery/types"
)

// Client wraps an OpenAI-compatible chat API. The default deployment
// points it at a local Ollama instance, which speaks the same wire
// protocol with a dummy API key.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient builds a client for the given OpenAI-compatible endpoint.
func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Model returns the model name the client was configured with.
func (c *Client) Model() string {
	return c.model
}

// Chat sends a plain chat completion without any tool machinery.
func (c *Client) Chat(ctx context.Context, input string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Message.Content, nil
}

// SelectTool asks the model to pick an analytics tool for the query and
// to resolve its natural-language date range into concrete dates. The
// model must answer with strict JSON; anything else degrades to a
// guidance text response so the caller keeps working.
func (c *Client) SelectTool(ctx context.Context, input string, tools []types.ToolDefinition, now time.Time) (*types.ChatResponse, error) {
	prompt, err := buildToolPrompt(input, tools, now)
	if err != nil {
		return nil, err
	}

	// Low temperature keeps tool selection and date output consistent.
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		log.Printf("Tool selection completion failed: %v", err)
		return guidanceResponse(), nil
	}
	if len(resp.Choices) == 0 {
		return guidanceResponse(), nil
	}

	raw := stripCodeFences(resp.Choices[0].Message.Content)

	var parsed types.ChatResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		log.Printf("Could not parse model JSON, falling back to text: %v", err)
		return guidanceResponse(), nil
	}

	switch parsed.Type {
	case types.ResponseTypeToolCall:
		if parsed.ToolCall == nil || parsed.ToolCall.Name == "" {
			return guidanceResponse(), nil
		}
		if !toolExists(parsed.ToolCall.Name, tools) {
			log.Printf("Model chose unknown tool: %s", parsed.ToolCall.Name)
			return guidanceResponse(), nil
		}
		return &parsed, nil
	case types.ResponseTypeText:
		if parsed.Content == "" {
			return guidanceResponse(), nil
		}
		return &parsed, nil
	default:
		return guidanceResponse(), nil
	}
}

func toolExists(name string, tools []types.ToolDefinition) bool {
	for _, t := range tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// stripCodeFences removes a leading/trailing markdown code fence some
// models wrap JSON answers in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func guidanceResponse() *types.ChatResponse {
	return &types.ChatResponse{
		Type: types.ResponseTypeText,
		Content: "I can help you analyze your trip data! Please specify what " +
			"you'd like to analyze (completions, cancellations, trip times, " +
			"performance) and include a date range like 'last week', " +
			"'past month', or 'month of June'.",
	}
}
