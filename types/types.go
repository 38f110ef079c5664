package types

// Response type discriminators used by the LLM server.
const (
	ResponseTypeToolCall = "tool_call"
	ResponseTypeText     = "text_response"
)

// ToolDefinition describes one analytics tool offered to the LLM.
type ToolDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolArguments carries the date range the LLM extracted from the query.
type ToolArguments struct {
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	PeriodType      string `json:"period_type"`
	DateDescription string `json:"date_description"`
}

// ToolCall names the tool the LLM selected plus its parsed arguments.
type ToolCall struct {
	Name      string        `json:"name"`
	Arguments ToolArguments `json:"arguments"`
}

// ChatRequest is the body accepted by the LLM server's /chat endpoint.
type ChatRequest struct {
	UserInput  string           `json:"user_input"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`
}

// ChatResponse is either a tool call or a plain text reply.
type ChatResponse struct {
	Type     string    `json:"type"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	Content  string    `json:"content,omitempty"`
}

// QueryRequest is the body accepted by the analytics server's /process_query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is what the analytics server returns for a processed query.
type QueryResponse struct {
	Query    string      `json:"query"`
	Response string      `json:"response"`
	Charts   []ChartInfo `json:"charts,omitempty"`
	Status   string      `json:"status"`
	Error    string      `json:"error,omitempty"`
}

// ChartInfo is one saved chart as listed by GET /charts.
type ChartInfo struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// TranscribeResponse is returned by the STT server's /transcribe endpoint.
type TranscribeResponse struct {
	Transcription string `json:"transcription"`
	Error         string `json:"error,omitempty"`
}

// VoiceQueryResponse bundles a transcription with the analytics reply.
type VoiceQueryResponse struct {
	Transcription     string         `json:"transcription"`
	AnalyticsResponse *QueryResponse `json:"analytics_response,omitempty"`
	Status            string         `json:"status"`
	Error             string         `json:"error,omitempty"`
}

// StreamEvent is one frame of the STT live-transcription websocket
// protocol: a "start" header, any number of "media" frames carrying
// base64 PCM, then a "stop".
type StreamEvent struct {
	Event string `json:"event"`
	Media struct {
		Payload string `json:"payload"`
	} `json:"media"`
	Start struct {
		SessionID  string `json:"session_id"`
		SampleRate int    `json:"sample_rate"`
	} `json:"start"`
}

// StreamTranscript is pushed back to the websocket client for each
// transcribed utterance.
type StreamTranscript struct {
	Event         string `json:"event"`
	Transcription string `json:"transcription"`
	Final         bool   `json:"final"`
}
