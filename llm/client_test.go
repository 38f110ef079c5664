package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/voiceops/tripquery/types"
)

var testTools = []types.ToolDefinition{
	{Name: "get_weekly_trip_summary", Description: "Trip summary for a date range"},
	{Name: "get_trip_cancellations", Description: "Cancellation analysis"},
}

// fakeModel returns an OpenAI-compatible completion server that always
// answers with the given message content.
func fakeModel(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestSelectToolParsesToolCall(t *testing.T) {
	server := fakeModel(t, `{"type":"tool_call","tool_call":{"name":"get_trip_cancellations","arguments":{"start_date":"2024-12-01","end_date":"2024-12-14","period_type":"weekly","date_description":"Last 2 weeks"}}}`)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	resp, err := client.SelectTool(context.Background(), "show me last 2 weeks cancellations", testTools, time.Now())
	if err != nil {
		t.Fatalf("SelectTool error: %v", err)
	}

	if resp.Type != types.ResponseTypeToolCall {
		t.Fatalf("Type: got %s, want tool_call", resp.Type)
	}
	if resp.ToolCall.Name != "get_trip_cancellations" {
		t.Errorf("Name: got %s, want get_trip_cancellations", resp.ToolCall.Name)
	}
	if resp.ToolCall.Arguments.StartDate != "2024-12-01" {
		t.Errorf("StartDate: got %s, want 2024-12-01", resp.ToolCall.Arguments.StartDate)
	}
	if resp.ToolCall.Arguments.PeriodType != "weekly" {
		t.Errorf("PeriodType: got %s, want weekly", resp.ToolCall.Arguments.PeriodType)
	}
}

func TestSelectToolStripsCodeFences(t *testing.T) {
	server := fakeModel(t, "```json\n{\"type\":\"tool_call\",\"tool_call\":{\"name\":\"get_weekly_trip_summary\",\"arguments\":{\"start_date\":\"2024-06-01\",\"end_date\":\"2024-06-30\",\"period_type\":\"monthly\",\"date_description\":\"June 2024\"}}}\n```")
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	resp, err := client.SelectTool(context.Background(), "analyze month of June", testTools, time.Now())
	if err != nil {
		t.Fatalf("SelectTool error: %v", err)
	}
	if resp.Type != types.ResponseTypeToolCall {
		t.Fatalf("Type: got %s, want tool_call", resp.Type)
	}
	if resp.ToolCall.Name != "get_weekly_trip_summary" {
		t.Errorf("Name: got %s, want get_weekly_trip_summary", resp.ToolCall.Name)
	}
}

func TestSelectToolUnknownToolFallsBack(t *testing.T) {
	server := fakeModel(t, `{"type":"tool_call","tool_call":{"name":"get_made_up_tool","arguments":{}}}`)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	resp, err := client.SelectTool(context.Background(), "do something", testTools, time.Now())
	if err != nil {
		t.Fatalf("SelectTool error: %v", err)
	}
	if resp.Type != types.ResponseTypeText {
		t.Errorf("unknown tool should degrade to text_response, got %s", resp.Type)
	}
}

func TestSelectToolMalformedJSONFallsBack(t *testing.T) {
	server := fakeModel(t, "I think you want a summary of last week's trips.")
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	resp, err := client.SelectTool(context.Background(), "summary please", testTools, time.Now())
	if err != nil {
		t.Fatalf("SelectTool error: %v", err)
	}
	if resp.Type != types.ResponseTypeText {
		t.Errorf("malformed JSON should degrade to text_response, got %s", resp.Type)
	}
	if resp.Content == "" {
		t.Error("fallback content is empty")
	}
}

func TestSelectToolUpstreamErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	resp, err := client.SelectTool(context.Background(), "summary please", testTools, time.Now())
	if err != nil {
		t.Fatalf("SelectTool error: %v", err)
	}
	if resp.Type != types.ResponseTypeText {
		t.Errorf("upstream failure should degrade to text_response, got %s", resp.Type)
	}
}

func TestChat(t *testing.T) {
	server := fakeModel(t, "Hello there!")
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")

	content, err := client.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if content != "Hello there!" {
		t.Errorf("content: got %q, want %q", content, "Hello there!")
	}
}
