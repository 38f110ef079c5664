package analytics

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Trip is one derived trip record. TripTime is minutes between actual
// pickup and dropoff; OnTime means the actual pickup was within five
// minutes of the scheduled one.
type Trip struct {
	Date            time.Time
	Status          string
	ScheduledPickup time.Time
	ActualPickup    time.Time
	Dropoff         time.Time
	TripTime        float64
	OnTime          bool
}

const (
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// OnTimeWindow is the pickup tolerance for counting a trip as on time.
const OnTimeWindow = 5 * time.Minute

// Store holds the trip dataframe and the derived per-trip records.
type Store struct {
	df    dataframe.DataFrame
	trips []Trip
	path  string
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"15:04:05",
	"15:04",
}

// LoadCSV reads the trip CSV (trip_date, trip_status,
// scheduled_pickup_time, actual_pickup_time, dropoff_time), derives the
// trip time and on-time columns, and returns the populated store. Rows
// with unparseable dates are skipped, not fatal.
func LoadCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trip CSV: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.WithTypes(map[string]series.Type{
		"trip_date":             series.String,
		"trip_status":           series.String,
		"scheduled_pickup_time": series.String,
		"actual_pickup_time":    series.String,
		"dropoff_time":          series.String,
	}))
	if df.Err != nil {
		return nil, fmt.Errorf("parsing trip CSV: %w", df.Err)
	}

	for _, col := range []string{"trip_date", "trip_status", "scheduled_pickup_time", "actual_pickup_time", "dropoff_time"} {
		if !hasColumn(df, col) {
			return nil, fmt.Errorf("trip CSV missing column %q", col)
		}
	}

	records := df.Records()
	idx := columnIndex(records[0])

	trips := make([]Trip, 0, len(records)-1)
	enriched := make([][]string, 0, len(records))
	enriched = append(enriched, append(append([]string{}, records[0]...),
		"trip_time_minutes", "on_time_pickup"))
	skipped := 0

	for _, row := range records[1:] {
		trip, err := deriveTrip(row, idx)
		if err != nil {
			skipped++
			continue
		}
		trips = append(trips, trip)

		onTime := "No"
		if trip.OnTime {
			onTime = "Yes"
		}
		enriched = append(enriched, append(append([]string{}, row...),
			strconv.FormatFloat(trip.TripTime, 'f', 1, 64), onTime))
	}

	if skipped > 0 {
		log.Printf("Skipped %d malformed rows in %s", skipped, path)
	}
	if len(trips) == 0 {
		return nil, fmt.Errorf("no usable trips in %s", path)
	}

	// Rebuild the frame from the surviving rows so the derived columns
	// stay aligned even when malformed rows were dropped.
	df = dataframe.LoadRecords(enriched, dataframe.WithTypes(map[string]series.Type{
		"trip_date":             series.String,
		"trip_status":           series.String,
		"scheduled_pickup_time": series.String,
		"actual_pickup_time":    series.String,
		"dropoff_time":          series.String,
		"trip_time_minutes":     series.Float,
		"on_time_pickup":        series.String,
	}))
	if df.Err != nil {
		return nil, fmt.Errorf("deriving columns: %w", df.Err)
	}

	log.Printf("Loaded %d trips from %s", len(trips), path)
	return &Store{df: df, trips: trips, path: path}, nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

func deriveTrip(row []string, idx map[string]int) (Trip, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(row[idx["trip_date"]]))
	if err != nil {
		return Trip{}, fmt.Errorf("trip_date: %w", err)
	}

	scheduled, err := parseTimestamp(date, row[idx["scheduled_pickup_time"]])
	if err != nil {
		return Trip{}, fmt.Errorf("scheduled_pickup_time: %w", err)
	}
	actual, err := parseTimestamp(date, row[idx["actual_pickup_time"]])
	if err != nil {
		return Trip{}, fmt.Errorf("actual_pickup_time: %w", err)
	}
	dropoff, err := parseTimestamp(date, row[idx["dropoff_time"]])
	if err != nil {
		return Trip{}, fmt.Errorf("dropoff_time: %w", err)
	}

	diff := actual.Sub(scheduled)
	if diff < 0 {
		diff = -diff
	}

	return Trip{
		Date:            date,
		Status:          titleStatus(row[idx["trip_status"]]),
		ScheduledPickup: scheduled,
		ActualPickup:    actual,
		Dropoff:         dropoff,
		TripTime:        dropoff.Sub(actual).Minutes(),
		OnTime:          diff <= OnTimeWindow,
	}, nil
}

// parseTimestamp accepts full timestamps or bare clock times; bare
// times are anchored to the trip date.
func parseTimestamp(date time.Time, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			return time.Date(date.Year(), date.Month(), date.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// titleStatus normalizes "completed" / "CANCELLED" into Completed /
// Cancelled form.
func titleStatus(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Trips returns all derived trip records.
func (s *Store) Trips() []Trip {
	return s.trips
}

// Len returns the number of usable trips.
func (s *Store) Len() int {
	return len(s.trips)
}

// Path returns the CSV file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Columns returns the frame's column names, derived columns included.
func (s *Store) Columns() []string {
	return s.df.Names()
}

// FilterRange returns trips whose date falls within [start, end]
// inclusive. Zero start/end mean an unbounded side.
func (s *Store) FilterRange(start, end time.Time) []Trip {
	if start.IsZero() && end.IsZero() {
		return s.trips
	}
	var out []Trip
	for _, t := range s.trips {
		if !start.IsZero() && t.Date.Before(start) {
			continue
		}
		if !end.IsZero() && t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Span returns the first and last trip date in the dataset.
func (s *Store) Span() (time.Time, time.Time) {
	if len(s.trips) == 0 {
		return time.Time{}, time.Time{}
	}
	min, max := s.trips[0].Date, s.trips[0].Date
	for _, t := range s.trips[1:] {
		if t.Date.Before(min) {
			min = t.Date
		}
		if t.Date.After(max) {
			max = t.Date
		}
	}
	return min, max
}
