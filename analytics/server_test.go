package analytics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/voiceops/tripquery/charts"
	"github.com/voiceops/tripquery/types"
)

// fakeLLM serves /chat with a canned decision.
func fakeLLM(t *testing.T, decision types.ChatResponse) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding chat request: %v", err)
		}
		if len(req.Tools) == 0 {
			t.Errorf("chat request carried no tools")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(decision)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, llmURL string) *fiber.App {
	t.Helper()
	store, err := LoadCSV(writeFixture(t, fixtureCSV))
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}
	renderer, err := charts.NewRenderer(t.TempDir())
	if err != nil {
		t.Fatalf("NewRenderer error: %v", err)
	}
	app, _ := NewServer(store, renderer, NewPlanner(llmURL))
	return app
}

func postQuery(t *testing.T, app *fiber.App, query string) types.QueryResponse {
	t.Helper()
	body, _ := json.Marshal(types.QueryRequest{Query: query})
	req := httptest.NewRequest(http.MethodPost, "/process_query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 15000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}

	var out types.QueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func TestProcessQueryToolCall(t *testing.T) {
	llm := fakeLLM(t, types.ChatResponse{
		Type: types.ResponseTypeToolCall,
		ToolCall: &types.ToolCall{
			Name: ToolTripSummary,
			Arguments: types.ToolArguments{
				StartDate:       "2024-06-01",
				EndDate:         "2024-06-03",
				PeriodType:      "daily",
				DateDescription: "early June",
			},
		},
	})
	app := newTestServer(t, llm.URL)

	out := postQuery(t, app, "show me a trip summary for early June")
	if out.Status != "success" {
		t.Fatalf("status: got %q, want success", out.Status)
	}
	if !strings.Contains(out.Response, "TRIP SUMMARY") {
		t.Errorf("response missing summary header: %q", out.Response)
	}
	if !strings.Contains(out.Response, "Total Trips: 4") {
		t.Errorf("response missing totals: %q", out.Response)
	}
	if len(out.Charts) == 0 {
		t.Errorf("expected at least one chart")
	}
	for _, ch := range out.Charts {
		if !strings.HasPrefix(ch.URL, "/chart/") {
			t.Errorf("chart URL: got %q", ch.URL)
		}
	}
}

func TestProcessQueryNonTripQuery(t *testing.T) {
	llm := fakeLLM(t, types.ChatResponse{Type: types.ResponseTypeText, Content: "hi"})
	app := newTestServer(t, llm.URL)

	out := postQuery(t, app, "what is your favorite color")
	if !strings.Contains(out.Response, "Here's what I can analyze") {
		t.Errorf("expected guidance response, got %q", out.Response)
	}
}

func TestProcessQueryLLMDown(t *testing.T) {
	// Planner pointed at a closed port degrades to guidance.
	app := newTestServer(t, "http://127.0.0.1:1")

	out := postQuery(t, app, "trip summary for last week")
	if out.Status != "success" {
		t.Errorf("status: got %q, want success", out.Status)
	}
	if !strings.Contains(out.Response, "Here's what I can analyze") {
		t.Errorf("expected guidance response, got %q", out.Response)
	}
}

func TestProcessQueryEmptyQuery(t *testing.T) {
	llm := fakeLLM(t, types.ChatResponse{Type: types.ResponseTypeText})
	app := newTestServer(t, llm.URL)

	body, _ := json.Marshal(types.QueryRequest{Query: "   "})
	req := httptest.NewRequest(http.MethodPost, "/process_query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestStatusAndHealth(t *testing.T) {
	llm := fakeLLM(t, types.ChatResponse{Type: types.ResponseTypeText})
	app := newTestServer(t, llm.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	var health map[string]any
	json.NewDecoder(resp.Body).Decode(&health)
	if health["status"] != "healthy" {
		t.Errorf("health status: got %v", health["status"])
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/status", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	var status map[string]any
	json.NewDecoder(resp.Body).Decode(&status)
	if status["loaded"] != true {
		t.Errorf("loaded: got %v, want true", status["loaded"])
	}
	if status["total_trips"] != float64(4) {
		t.Errorf("total_trips: got %v, want 4", status["total_trips"])
	}
	cols, ok := status["columns"].([]any)
	if !ok || len(cols) != 7 {
		t.Errorf("columns: got %v, want 7 names", status["columns"])
	}
}

func TestChartsEndpoints(t *testing.T) {
	llm := fakeLLM(t, types.ChatResponse{
		Type: types.ResponseTypeToolCall,
		ToolCall: &types.ToolCall{
			Name: ToolCompletions,
			Arguments: types.ToolArguments{
				StartDate: "2024-06-01",
				EndDate:   "2024-06-03",
			},
		},
	})
	app := newTestServer(t, llm.URL)

	out := postQuery(t, app, "completed trips for early June")
	if len(out.Charts) != 1 {
		t.Fatalf("charts: got %d, want 1", len(out.Charts))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/charts", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	var listing struct {
		Charts []types.ChartInfo `json:"charts"`
		Count  int               `json:"count"`
	}
	json.NewDecoder(resp.Body).Decode(&listing)
	if listing.Count != 1 {
		t.Fatalf("chart count: got %d, want 1", listing.Count)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, listing.Charts[0].URL, nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("chart fetch status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image/png") {
		t.Errorf("content type: got %q, want image/png", ct)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/chart/evil.txt", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-png fetch status: got %d, want 400", resp.StatusCode)
	}
}

func TestReportEndpoint(t *testing.T) {
	llm := fakeLLM(t, types.ChatResponse{Type: types.ResponseTypeText})
	app := newTestServer(t, llm.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/report?start=2024-06-01&end=2024-06-03", nil), 15000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type: got %q, want application/pdf", ct)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/report?start=2030-01-01&end=2030-01-31", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("empty range status: got %d, want 404", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/report?start=bad&end=worse", nil), 5000)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad params status: got %d, want 400", resp.StatusCode)
	}
}
