package analytics

import (
	"math"
	"testing"
)

func almost(got, want float64) bool {
	return math.Abs(got-want) < 0.01
}

func TestSummarize(t *testing.T) {
	trips := []Trip{
		makeTrip(date(2024, 6, 1), StatusCompleted, 30, true),
		makeTrip(date(2024, 6, 2), StatusCompleted, 60, true),
		makeTrip(date(2024, 6, 3), StatusCompleted, 90, false),
		makeTrip(date(2024, 6, 4), StatusCancelled, 0, false),
	}

	s := Summarize(trips)

	if s.TotalTrips != 4 || s.CompletedTrips != 3 || s.CancelledTrips != 1 {
		t.Errorf("counts: total=%d completed=%d cancelled=%d", s.TotalTrips, s.CompletedTrips, s.CancelledTrips)
	}
	if !almost(s.CompletionRate, 75) {
		t.Errorf("CompletionRate: got %.2f, want 75", s.CompletionRate)
	}
	if !almost(s.AvgTripTime, 60) {
		t.Errorf("AvgTripTime: got %.2f, want 60", s.AvgTripTime)
	}
	if !almost(s.MinTripTime, 30) || !almost(s.MaxTripTime, 90) {
		t.Errorf("min/max: got %.1f/%.1f, want 30/90", s.MinTripTime, s.MaxTripTime)
	}
	if !almost(s.OnTimeRate, 66.67) {
		t.Errorf("OnTimeRate: got %.2f, want 66.67", s.OnTimeRate)
	}
	if s.TotalDays != 4 {
		t.Errorf("TotalDays: got %d, want 4", s.TotalDays)
	}
	if !almost(s.AvgDailyTrips, 1) {
		t.Errorf("AvgDailyTrips: got %.2f, want 1", s.AvgDailyTrips)
	}

	// Avg trip time equals the baseline, so efficiency contributes 0:
	// 75*0.4 + 66.67*0.4 = 56.67.
	if !almost(s.PerformanceScore, 56.67) {
		t.Errorf("PerformanceScore: got %.2f, want 56.67", s.PerformanceScore)
	}
	if s.Rating() != "Fair" {
		t.Errorf("Rating: got %q, want Fair", s.Rating())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalTrips != 0 || s.PerformanceScore != 0 {
		t.Errorf("empty summary not zero: %+v", s)
	}
}

func TestPerformanceScoreClampsEfficiency(t *testing.T) {
	// 120 min average exceeds the baseline, efficiency floors at 0.
	got := performanceScore(100, 100, 120)
	if !almost(got, 80) {
		t.Errorf("performanceScore: got %.2f, want 80", got)
	}

	// 30 min average leaves 50% efficiency.
	got = performanceScore(100, 100, 30)
	if !almost(got, 90) {
		t.Errorf("performanceScore: got %.2f, want 90", got)
	}
}

func TestRatingBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{85, "Excellent"},
		{80, "Excellent"},
		{65, "Good"},
		{45, "Fair"},
		{20, "Needs Improvement"},
	}
	for _, c := range cases {
		s := Summary{PerformanceScore: c.score}
		if got := s.Rating(); got != c.want {
			t.Errorf("Rating(%.0f): got %q, want %q", c.score, got, c.want)
		}
	}
}
