package llm

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/voiceops/tripquery/types"
)

// dateContext is injected into the tool-selection prompt so the model
// can resolve relative expressions like "last quarter" against today.
type dateContext struct {
	Date    string
	Weekday string
	Month   string
	Year    int
	ISOWeek int
}

func currentDateContext(now time.Time) dateContext {
	_, week := now.ISOWeek()
	return dateContext{
		Date:    now.Format("2006-01-02"),
		Weekday: now.Weekday().String(),
		Month:   now.Month().String(),
		Year:    now.Year(),
		ISOWeek: week,
	}
}

// buildToolPrompt renders the full tool-selection instruction: date
// context, the tool catalog as JSON, the date parsing rules, and the
// required response shape.
func buildToolPrompt(input string, tools []types.ToolDefinition, now time.Time) (string, error) {
	toolJSON, err := json.MarshalIndent(tools, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling tool catalog: %w", err)
	}

	dc := currentDateContext(now)

	return fmt.Sprintf(`You are a trip analytics assistant with date range support. The user has asked: %q

Current Date Context:
- Today's Date: %s
- Current Day: %s
- Current Month: %s
- Current Year: %d
- Current Week: %d

Available tools:
%s

Your task: analyze the user's query and return a JSON response with the
most appropriate tool, a properly formatted date range (start_date and
end_date in YYYY-MM-DD format), and a period type classification.

You must respond with ONLY a JSON object in this exact format:
{
    "type": "tool_call",
    "tool_call": {
        "name": "tool_name_here",
        "arguments": {
            "start_date": "YYYY-MM-DD",
            "end_date": "YYYY-MM-DD",
            "period_type": "daily|weekly|monthly|yearly|custom",
            "date_description": "human readable description of the date range"
        }
    }
}

Date Range Parsing Rules:
- "last week" -> 7 days ending yesterday
- "last 2 weeks" -> 14 days ending yesterday
- "past month" -> previous calendar month
- "last 3 months" -> 90 days ending yesterday
- "month of June" -> June 1-30 of the current year (or previous year if June has not happened yet)
- "Q1 2024" -> January 1, 2024 to March 31, 2024
- "last quarter" -> previous quarter based on the current date
- "last 45 days" -> exactly 45 days ending yesterday
- "this year" -> January 1 to the current date
- "2024-01-01 to 2024-03-31" -> exact date range

Tool Selection Rules:
- cancelled trips, cancellations, failed trips -> "get_trip_cancellations"
- completed trips, completions, successful trips -> "get_trip_completions"
- on-time pickup, punctuality, pickup rate, being on schedule -> "get_on_time_pickup_analysis"
- trip time, average time, duration, how long trips take -> "get_trip_time_analysis"
- completion rate, percentage, success rate -> "get_completion_rate_analysis"
- performance comparison, benchmarking, daily vs weekly -> "get_performance_benchmarking"
- performance patterns, heatmap, intensity mapping -> "get_performance_heatmap"
- overview, summary, dashboard, general analysis -> "get_weekly_trip_summary"

If the user's query does not match any tool, respond with:
{
    "type": "text_response",
    "content": "a short suggestion of what trip analyses are available"
}

Remember: ONLY return valid JSON, no other text.`,
		input, dc.Date, dc.Weekday, dc.Month, dc.Year, dc.ISOWeek, toolJSON), nil
}
