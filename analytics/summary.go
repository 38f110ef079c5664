package analytics

import (
	"time"

	"github.com/go-gota/gota/series"
)

// Summary holds the headline statistics for a set of trips.
type Summary struct {
	TotalTrips     int
	CompletedTrips int
	CancelledTrips int
	CompletionRate float64

	AvgTripTime    float64
	MinTripTime    float64
	MaxTripTime    float64
	TripTimeStdDev float64

	OnTimeCount int
	OnTimeRate  float64

	StartDate time.Time
	EndDate   time.Time
	TotalDays int

	AvgDailyTrips     float64
	AvgDailyCompleted float64
	AvgDailyCancelled float64

	PerformanceScore float64
}

// Performance score weights: completion and punctuality dominate,
// duration efficiency rounds it out.
const (
	completionWeight = 0.4
	onTimeWeight     = 0.4
	efficiencyWeight = 0.2
	baselineTripTime = 60.0 // minutes
)

// Summarize computes the full summary over the given trips.
func Summarize(trips []Trip) Summary {
	var s Summary
	if len(trips) == 0 {
		return s
	}

	var tripTimes []float64
	for _, t := range trips {
		s.TotalTrips++
		switch t.Status {
		case StatusCompleted:
			s.CompletedTrips++
			tripTimes = append(tripTimes, t.TripTime)
			if t.OnTime {
				s.OnTimeCount++
			}
		case StatusCancelled:
			s.CancelledTrips++
		}

		if s.StartDate.IsZero() || t.Date.Before(s.StartDate) {
			s.StartDate = t.Date
		}
		if t.Date.After(s.EndDate) {
			s.EndDate = t.Date
		}
	}

	s.CompletionRate = float64(s.CompletedTrips) / float64(s.TotalTrips) * 100

	if len(tripTimes) > 0 {
		times := series.Floats(tripTimes)
		s.AvgTripTime = times.Mean()
		s.MinTripTime = times.Min()
		s.MaxTripTime = times.Max()
		if len(tripTimes) > 1 {
			s.TripTimeStdDev = times.StdDev()
		}
		s.OnTimeRate = float64(s.OnTimeCount) / float64(s.CompletedTrips) * 100
	}

	s.TotalDays = int(s.EndDate.Sub(s.StartDate).Hours()/24) + 1
	if s.TotalDays > 0 {
		days := float64(s.TotalDays)
		s.AvgDailyTrips = float64(s.TotalTrips) / days
		s.AvgDailyCompleted = float64(s.CompletedTrips) / days
		s.AvgDailyCancelled = float64(s.CancelledTrips) / days
	}

	s.PerformanceScore = performanceScore(s.CompletionRate, s.OnTimeRate, s.AvgTripTime)
	return s
}

func performanceScore(completionRate, onTimeRate, avgTripTime float64) float64 {
	efficiency := 100.0
	if avgTripTime > 0 {
		efficiency = 100 - avgTripTime/baselineTripTime*100
		if efficiency < 0 {
			efficiency = 0
		}
	}
	return completionRate*completionWeight + onTimeRate*onTimeWeight + efficiency*efficiencyWeight
}

// Rating translates a performance score into a human label.
func (s Summary) Rating() string {
	switch {
	case s.PerformanceScore >= 80:
		return "Excellent"
	case s.PerformanceScore >= 60:
		return "Good"
	case s.PerformanceScore >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
