package analytics

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/voiceops/tripquery/charts"
	"github.com/voiceops/tripquery/types"
)

// Tool names, shared with the LLM prompt rules.
const (
	ToolTripSummary        = "get_weekly_trip_summary"
	ToolCancellations      = "get_trip_cancellations"
	ToolCompletions        = "get_trip_completions"
	ToolOnTimePickup       = "get_on_time_pickup_analysis"
	ToolTripTime           = "get_trip_time_analysis"
	ToolCompletionRate     = "get_completion_rate_analysis"
	ToolBenchmarking       = "get_performance_benchmarking"
	ToolPerformanceHeatmap = "get_performance_heatmap"
)

// Catalog is the tool list sent to the LLM server with every query.
var Catalog = []types.ToolDefinition{
	{
		Name: ToolTripSummary,
		Description: "Comprehensive trip summary for a date range: totals, completion rate, " +
			"trip times, on-time rate and a performance score. Time grouping and chart type " +
			"adapt to the range automatically. Use for overviews, dashboards and general analysis.",
	},
	{
		Name: ToolCancellations,
		Description: "Cancelled trip analysis for a date range: cancellation counts per period " +
			"and the overall cancellation rate. Use for cancelled trips, cancellations or failed trips.",
	},
	{
		Name: ToolCompletions,
		Description: "Completed trip analysis for a date range: completion counts per period " +
			"and success patterns. Use for completed trips, completions or successful trips.",
	},
	{
		Name: ToolOnTimePickup,
		Description: "On-time pickup analysis for a date range: punctuality rate per period " +
			"(pickups within five minutes of schedule). Use for on-time pickup, punctuality or schedule adherence.",
	},
	{
		Name: ToolTripTime,
		Description: "Trip duration analysis for a date range: average trip time per period with " +
			"the range average for comparison. Use for trip time, duration or how long trips take.",
	},
	{
		Name: ToolCompletionRate,
		Description: "Completion rate analysis for a date range: completion percentage per period. " +
			"Use for completion rate, percentages or success rate.",
	},
	{
		Name: ToolBenchmarking,
		Description: "Performance benchmarking for a date range: per-period performance score " +
			"compared against the range average. Use for performance comparison or benchmarking.",
	},
	{
		Name: ToolPerformanceHeatmap,
		Description: "Performance intensity view for a date range: completion rate, on-time rate " +
			"and normalized volume across periods on one chart. Use for patterns, heatmaps or intensity mapping.",
	},
}

// ToolResult is the outcome of one executed tool.
type ToolResult struct {
	Text   string
	Charts []string
}

// Executor maps tool names to their handlers.
type Executor struct {
	store    *Store
	renderer *charts.Renderer
}

// NewExecutor wires the trip store and chart renderer together.
func NewExecutor(store *Store, renderer *charts.Renderer) *Executor {
	return &Executor{store: store, renderer: renderer}
}

// Execute runs the named tool. The LLM-supplied arguments take
// precedence; when they carry no usable dates the local parser has a
// go at the raw query, and failing that the whole dataset is used.
func (e *Executor) Execute(call *types.ToolCall, query string, today time.Time) (*ToolResult, error) {
	trips, rangeDesc := e.selectTrips(call.Arguments, query, today)
	if len(trips) == 0 {
		return &ToolResult{
			Text: fmt.Sprintf("No trip data found for %s. Try a different date range.", rangeDesc),
		}, nil
	}

	log.Printf("Executing tool %s over %d trips (%s)", call.Name, len(trips), rangeDesc)

	switch call.Name {
	case ToolTripSummary:
		return e.tripSummary(trips, rangeDesc)
	case ToolCancellations:
		return e.cancellations(trips, rangeDesc)
	case ToolCompletions:
		return e.completions(trips, rangeDesc)
	case ToolOnTimePickup:
		return e.onTimePickup(trips, rangeDesc)
	case ToolTripTime:
		return e.tripTime(trips, rangeDesc)
	case ToolCompletionRate:
		return e.completionRate(trips, rangeDesc)
	case ToolBenchmarking:
		return e.benchmarking(trips, rangeDesc)
	case ToolPerformanceHeatmap:
		return e.performanceHeatmap(trips, rangeDesc)
	default:
		return nil, fmt.Errorf("tool %q not found", call.Name)
	}
}

// selectTrips resolves the effective date range and filters the store.
func (e *Executor) selectTrips(args types.ToolArguments, query string, today time.Time) ([]Trip, string) {
	start, errStart := time.Parse("2006-01-02", args.StartDate)
	end, errEnd := time.Parse("2006-01-02", args.EndDate)
	if errStart == nil && errEnd == nil && !end.Before(start) {
		desc := args.DateDescription
		if desc == "" {
			desc = fmt.Sprintf("%s to %s", args.StartDate, args.EndDate)
		}
		return e.store.FilterRange(start, end), desc
	}

	if r, ok := ParseDateRange(query, today); ok {
		desc := fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
		return e.store.FilterRange(r.Start, r.End), desc
	}

	return e.store.Trips(), "all available data"
}

func spanAndBuckets(trips []Trip) (int, []Bucket, bool) {
	s := Summarize(trips)
	span := s.TotalDays
	buckets := BucketTrips(trips, GroupingFor(span))
	return span, buckets, UseLineChart(span)
}

func labelsOf(buckets []Bucket) []string {
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	return labels
}

func (e *Executor) tripSummary(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, line := spanAndBuckets(trips)

	completed := make([]float64, len(buckets))
	cancelled := make([]float64, len(buckets))
	for i, b := range buckets {
		completed[i] = float64(b.Completed)
		cancelled[i] = float64(b.Cancelled)
	}

	var files []string
	if f, err := e.renderer.StatusChart(labelsOf(buckets), completed, cancelled, line,
		"trip_summary", "Trip Distribution: Completed vs Cancelled"); err == nil {
		files = append(files, f)
	} else {
		log.Printf("Summary chart failed: %v", err)
	}
	if f, err := e.renderer.CompletionPie(s.CompletedTrips, s.CancelledTrips, "completion_status"); err == nil {
		files = append(files, f)
	} else {
		log.Printf("Completion pie failed: %v", err)
	}

	text := fmt.Sprintf(`📊 TRIP SUMMARY (%s, %d days)

Total Trips: %d
Completed: %d (%.1f%%)
Cancelled: %d
Trip Time: %.1f min (range %.1f-%.1f, σ %.1f)
On-Time Rate: %.1f%%
Daily Average: %.1f trips
Performance: %s (%.1f/100)`,
		rangeDesc, s.TotalDays,
		s.TotalTrips,
		s.CompletedTrips, s.CompletionRate,
		s.CancelledTrips,
		s.AvgTripTime, s.MinTripTime, s.MaxTripTime, s.TripTimeStdDev,
		s.OnTimeRate,
		s.AvgDailyTrips,
		s.Rating(), s.PerformanceScore)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) cancellations(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, line := spanAndBuckets(trips)

	values := make([]float64, len(buckets))
	peak := buckets[0]
	for i, b := range buckets {
		values[i] = float64(b.Cancelled)
		if b.Cancelled > peak.Cancelled {
			peak = b
		}
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MetricChart(labelsOf(buckets), values, line,
			"cancellations", "Cancelled Trips per Period", "Cancellations")
	})

	cancellationRate := 100 - s.CompletionRate
	text := fmt.Sprintf(`❌ CANCELLATION ANALYSIS (%s)

Cancelled Trips: %d of %d (%.1f%%)
Worst Period: %s (%d cancellations)
Daily Average: %.1f cancellations`,
		rangeDesc,
		s.CancelledTrips, s.TotalTrips, cancellationRate,
		peak.Label, peak.Cancelled,
		s.AvgDailyCancelled)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) completions(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, line := spanAndBuckets(trips)

	values := make([]float64, len(buckets))
	best := buckets[0]
	for i, b := range buckets {
		values[i] = float64(b.Completed)
		if b.Completed > best.Completed {
			best = b
		}
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MetricChart(labelsOf(buckets), values, line,
			"completions", "Completed Trips per Period", "Completions")
	})

	text := fmt.Sprintf(`✅ COMPLETION ANALYSIS (%s)

Completed Trips: %d of %d (%.1f%%)
Best Period: %s (%d completions)
Daily Average: %.1f completions`,
		rangeDesc,
		s.CompletedTrips, s.TotalTrips, s.CompletionRate,
		best.Label, best.Completed,
		s.AvgDailyCompleted)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) onTimePickup(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, line := spanAndBuckets(trips)

	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.OnTimeRate()
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MetricChart(labelsOf(buckets), values, line,
			"on_time_pickup", "On-Time Pickup Rate per Period", "On-Time %")
	})

	text := fmt.Sprintf(`⏰ ON-TIME PICKUP ANALYSIS (%s)

On-Time Pickups: %d of %d completed trips (%.1f%%)
Tolerance: pickups within %.0f minutes of schedule count as on time`,
		rangeDesc,
		s.OnTimeCount, s.CompletedTrips, s.OnTimeRate,
		OnTimeWindow.Minutes())

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) tripTime(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	if s.CompletedTrips == 0 {
		return &ToolResult{Text: fmt.Sprintf("No completed trips to analyze for %s.", rangeDesc)}, nil
	}
	_, buckets, line := spanAndBuckets(trips)

	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.AvgTripTime()
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MetricChart(labelsOf(buckets), values, line,
			"trip_time", "Average Trip Time per Period", "Minutes")
	})

	text := fmt.Sprintf(`⏱️ TRIP TIME ANALYSIS (%s)

Average Trip Time: %.1f min
Fastest: %.1f min · Slowest: %.1f min
Std Deviation: %.1f min
Based on %d completed trips`,
		rangeDesc,
		s.AvgTripTime,
		s.MinTripTime, s.MaxTripTime,
		s.TripTimeStdDev,
		s.CompletedTrips)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) completionRate(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, line := spanAndBuckets(trips)

	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.CompletionRate()
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MetricChart(labelsOf(buckets), values, line,
			"completion_rate", "Completion Rate per Period", "Completion %")
	})

	text := fmt.Sprintf(`📈 COMPLETION RATE ANALYSIS (%s)

Overall Completion Rate: %.1f%%
Completed: %d · Cancelled: %d · Total: %d`,
		rangeDesc,
		s.CompletionRate,
		s.CompletedTrips, s.CancelledTrips, s.TotalTrips)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) benchmarking(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, line := spanAndBuckets(trips)

	values := make([]float64, len(buckets))
	var above, below int
	for i, b := range buckets {
		score := performanceScore(b.CompletionRate(), b.OnTimeRate(), b.AvgTripTime())
		values[i] = score
		if score >= s.PerformanceScore {
			above++
		} else {
			below++
		}
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MetricChart(labelsOf(buckets), values, line,
			"benchmarking", "Performance Score per Period", "Score")
	})

	text := fmt.Sprintf(`🏆 PERFORMANCE BENCHMARKING (%s)

Range Average Score: %.1f/100 (%s)
Periods at or above average: %d
Periods below average: %d`,
		rangeDesc,
		s.PerformanceScore, s.Rating(),
		above, below)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) performanceHeatmap(trips []Trip, rangeDesc string) (*ToolResult, error) {
	s := Summarize(trips)
	_, buckets, _ := spanAndBuckets(trips)

	maxTotal := 0
	for _, b := range buckets {
		if b.Total > maxTotal {
			maxTotal = b.Total
		}
	}

	completion := make([]float64, len(buckets))
	onTime := make([]float64, len(buckets))
	volume := make([]float64, len(buckets))
	for i, b := range buckets {
		completion[i] = b.CompletionRate()
		onTime[i] = b.OnTimeRate()
		if maxTotal > 0 {
			volume[i] = float64(b.Total) / float64(maxTotal) * 100
		}
	}

	files := e.renderOne(func() (string, error) {
		return e.renderer.MultiMetricChart(labelsOf(buckets), []charts.NamedSeries{
			{Name: "Completion %", Values: completion},
			{Name: "On-Time %", Values: onTime},
			{Name: "Volume (normalized)", Values: volume},
		}, "performance_heatmap", "Performance Intensity per Period", "Intensity")
	})

	text := fmt.Sprintf(`🔥 PERFORMANCE PATTERNS (%s)

Periods analyzed: %d
Completion: %.1f%% · On-Time: %.1f%% · Peak volume: %d trips/period
The chart overlays completion rate, on-time rate and normalized volume
to expose intensity patterns across the range.`,
		rangeDesc,
		len(buckets),
		s.CompletionRate, s.OnTimeRate, maxTotal)

	return &ToolResult{Text: text, Charts: files}, nil
}

func (e *Executor) renderOne(render func() (string, error)) []string {
	f, err := render()
	if err != nil {
		log.Printf("Chart render failed: %v", err)
		return nil
	}
	return []string{f}
}

// HelpText is returned when a query is not trip-related or the LLM did
// not pick a tool.
const HelpText = `🤔 I'm not sure what you mean. Here's what I can analyze for your trip data:

📊 Basic Analysis:
• "How many trips were completed this week?"
• "What's our completion rate for the last 2 months?"
• "Show me trip cancellations from month of June"
• "What's the average trip time for the past 45 days?"

📈 Advanced Analytics:
• "How do our daily numbers compare for last week?" (benchmarking)
• "Show me patterns across the past 3 months" (intensity view)

📅 Date expressions understood: "last 2 weeks", "past month", "month of
June", "Q1 2024", "last quarter", "this year", or exact ranges like
"2024-01-01 to 2024-03-31".`

// TripRelated is the keyword prefilter applied before involving the
// LLM at all.
func TripRelated(query string) bool {
	lower := strings.ToLower(query)
	keywords := []string{
		"trip", "trips", "completed", "cancelled", "cancellation",
		"pickup", "time", "duration", "analytics", "analysis", "summary",
		"report", "benchmark", "benchmarking", "heatmap", "patterns",
		"performance", "rate", "week", "month", "quarter", "year", "daily",
	}
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
