// Package report renders trip analytics summaries as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// Input carries the summary figures printed on the report.
type Input struct {
	RangeDesc   string
	GeneratedAt time.Time

	TotalTrips     int
	CompletedTrips int
	CancelledTrips int
	CompletionRate float64

	AvgTripTime float64
	MinTripTime float64
	MaxTripTime float64

	OnTimeRate    float64
	AvgDailyTrips float64

	PerformanceScore float64
	Rating           string
}

// Build renders a one-page summary report PDF.
func Build(in Input) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Trip Analytics Report")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Range: %s", in.RangeDesc))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", in.GeneratedAt.Format("2006-01-02 15:04 UTC")))
	pdf.Ln(12)

	section(pdf, "Volume")
	row(pdf, "Total trips", fmt.Sprintf("%d", in.TotalTrips))
	row(pdf, "Completed", fmt.Sprintf("%d (%.1f%%)", in.CompletedTrips, in.CompletionRate))
	row(pdf, "Cancelled", fmt.Sprintf("%d", in.CancelledTrips))
	row(pdf, "Daily average", fmt.Sprintf("%.1f trips", in.AvgDailyTrips))
	pdf.Ln(6)

	section(pdf, "Trip Times")
	row(pdf, "Average", fmt.Sprintf("%.1f min", in.AvgTripTime))
	row(pdf, "Fastest", fmt.Sprintf("%.1f min", in.MinTripTime))
	row(pdf, "Slowest", fmt.Sprintf("%.1f min", in.MaxTripTime))
	pdf.Ln(6)

	section(pdf, "Performance")
	row(pdf, "On-time pickup rate", fmt.Sprintf("%.1f%%", in.OnTimeRate))
	row(pdf, "Performance score", fmt.Sprintf("%.1f / 100", in.PerformanceScore))
	row(pdf, "Rating", in.Rating)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.Cell(60, 7, label)
	pdf.Cell(0, 7, value)
	pdf.Ln(7)
}
