package analytics

import (
	"fmt"
	"sort"
	"time"
)

// Grouping is the time bucket size charts aggregate trips into.
type Grouping string

const (
	GroupDaily   Grouping = "daily"
	GroupWeekly  Grouping = "weekly"
	GroupMonthly Grouping = "monthly"
	GroupYearly  Grouping = "yearly"
)

// GroupingFor picks the bucket size for a span of days: up to a week
// daily, up to ~a month weekly, up to ~a year monthly, beyond that
// yearly.
func GroupingFor(spanDays int) Grouping {
	switch {
	case spanDays <= 7:
		return GroupDaily
	case spanDays <= 35:
		return GroupWeekly
	case spanDays <= 400:
		return GroupMonthly
	default:
		return GroupYearly
	}
}

// UseLineChart reports whether a span is long enough that trends matter
// more than per-bucket comparison. Three weeks is the cutover.
func UseLineChart(spanDays int) bool {
	return spanDays > 21
}

// Bucket is one aggregated time slot of trips.
type Bucket struct {
	Start         time.Time
	Label         string
	Total         int
	Completed     int
	Cancelled     int
	TripTimeSum   float64
	TripTimeCount int
	OnTimeCount   int
}

// AvgTripTime returns the mean completed trip time of the bucket.
func (b Bucket) AvgTripTime() float64 {
	if b.TripTimeCount == 0 {
		return 0
	}
	return b.TripTimeSum / float64(b.TripTimeCount)
}

// CompletionRate returns the percentage of bucket trips completed.
func (b Bucket) CompletionRate() float64 {
	if b.Total == 0 {
		return 0
	}
	return float64(b.Completed) / float64(b.Total) * 100
}

// OnTimeRate returns the on-time pickup percentage among completed
// trips in the bucket.
func (b Bucket) OnTimeRate() float64 {
	if b.Completed == 0 {
		return 0
	}
	return float64(b.OnTimeCount) / float64(b.Completed) * 100
}

// BucketTrips aggregates trips into the given grouping, sorted by
// bucket start. Buckets with no trips are not emitted.
func BucketTrips(trips []Trip, g Grouping) []Bucket {
	byStart := make(map[time.Time]*Bucket)

	for _, t := range trips {
		start := bucketStart(t.Date, g)
		b, ok := byStart[start]
		if !ok {
			b = &Bucket{Start: start, Label: bucketLabel(start, g)}
			byStart[start] = b
		}
		b.Total++
		switch t.Status {
		case StatusCompleted:
			b.Completed++
			b.TripTimeSum += t.TripTime
			b.TripTimeCount++
			if t.OnTime {
				b.OnTimeCount++
			}
		case StatusCancelled:
			b.Cancelled++
		}
	}

	out := make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

func bucketStart(date time.Time, g Grouping) time.Time {
	switch g {
	case GroupDaily:
		return midnight(date)
	case GroupWeekly:
		return mondayOf(date)
	case GroupMonthly:
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
}

func bucketLabel(start time.Time, g Grouping) string {
	switch g {
	case GroupDaily:
		return start.Format("Mon 01/02")
	case GroupWeekly:
		return fmt.Sprintf("Week %s", start.Format("01/02"))
	case GroupMonthly:
		return start.Format("Jan 2006")
	default:
		return start.Format("2006")
	}
}
