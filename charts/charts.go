package charts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/voiceops/tripquery/types"
)

// Dark steel palette.
var (
	colorPrimary   = drawing.ColorFromHex("4682b4")
	colorSecondary = drawing.ColorFromHex("2f4f4f")
	colorSuccess   = drawing.ColorFromHex("2e8b57")
	colorWarning   = drawing.ColorFromHex("8b0000")
	colorAccent    = drawing.ColorFromHex("6a5acd")
)

var seriesColors = []drawing.Color{colorPrimary, colorSuccess, colorWarning, colorAccent, colorSecondary}

const (
	chartWidth  = 1280
	chartHeight = 720
	pieSize     = 640
)

// Renderer writes chart PNGs into a directory and hands back their
// filenames.
type Renderer struct {
	dir string
}

// NewRenderer ensures the charts directory exists.
func NewRenderer(dir string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating charts dir: %w", err)
	}
	return &Renderer{dir: dir}, nil
}

// Dir returns the directory charts are saved into.
func (r *Renderer) Dir() string {
	return r.dir
}

// List returns the saved chart PNGs, newest name ordering left to the
// caller; URLs match the analytics server's /chart route.
func (r *Renderer) List() ([]types.ChartInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("reading charts dir: %w", err)
	}
	var out []types.ChartInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		out = append(out, types.ChartInfo{
			Filename: e.Name(),
			URL:      "/chart/" + e.Name(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// NamedSeries is one labeled line on a multi-metric chart.
type NamedSeries struct {
	Name   string
	Values []float64
}

// StatusChart renders trip volume per bucket. Short spans get bars,
// longer ones a completed/cancelled line pair.
func (r *Renderer) StatusChart(labels []string, completed, cancelled []float64, line bool, name, title string) (string, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("no data to chart")
	}

	// A single point cannot be drawn as a line.
	if line && len(labels) >= 2 {
		return r.renderMulti(labels, []NamedSeries{
			{Name: "Completed", Values: completed},
			{Name: "Cancelled", Values: cancelled},
		}, name, title, "Trips")
	}

	totals := make([]float64, len(labels))
	bars := make([]chart.Value, len(labels))
	for i, l := range labels {
		totals[i] = completed[i] + cancelled[i]
		bars[i] = chart.Value{
			Value: totals[i],
			Label: l,
			Style: chart.Style{FillColor: colorPrimary, StrokeColor: colorSecondary},
		}
	}
	bc := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 48,
		Bars:     bars,
		YAxis:    chart.YAxis{Range: barRange(totals)},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("rendering bar chart: %w", err)
	}
	return r.save(name, &buf)
}

// MetricChart renders one metric per bucket as bars or a line.
func (r *Renderer) MetricChart(labels []string, values []float64, line bool, name, title, yName string) (string, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("no data to chart")
	}

	if line && len(labels) >= 2 {
		return r.renderMulti(labels, []NamedSeries{{Name: yName, Values: values}}, name, title, yName)
	}

	bars := make([]chart.Value, len(labels))
	for i, l := range labels {
		bars[i] = chart.Value{
			Value: values[i],
			Label: l,
			Style: chart.Style{FillColor: colorSuccess, StrokeColor: colorSecondary},
		}
	}
	bc := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 48,
		Bars:     bars,
		YAxis:    chart.YAxis{Name: yName, Range: barRange(values)},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("rendering bar chart: %w", err)
	}
	return r.save(name, &buf)
}

// MultiMetricChart renders several normalized metrics over the same
// buckets, used for the performance intensity view.
func (r *Renderer) MultiMetricChart(labels []string, series []NamedSeries, name, title, yName string) (string, error) {
	if len(labels) < 2 {
		// Degenerate span: fall back to bars of the first series.
		if len(series) == 0 {
			return "", fmt.Errorf("no data to chart")
		}
		return r.MetricChart(labels, series[0].Values, false, name, title, yName)
	}
	return r.renderMulti(labels, series, name, title, yName)
}

// CompletionPie renders the completed/cancelled share.
func (r *Renderer) CompletionPie(completed, cancelled int, name string) (string, error) {
	if completed+cancelled == 0 {
		return "", fmt.Errorf("no data to chart")
	}

	values := []chart.Value{}
	if completed > 0 {
		values = append(values, chart.Value{
			Value: float64(completed),
			Label: fmt.Sprintf("Completed (%d)", completed),
			Style: chart.Style{FillColor: colorSuccess},
		})
	}
	if cancelled > 0 {
		values = append(values, chart.Value{
			Value: float64(cancelled),
			Label: fmt.Sprintf("Cancelled (%d)", cancelled),
			Style: chart.Style{FillColor: colorWarning},
		})
	}

	pc := chart.PieChart{
		Width:  pieSize,
		Height: pieSize,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pc.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("rendering pie chart: %w", err)
	}
	return r.save(name, &buf)
}

// barRange pins the y-axis so rendering cannot hit a zero-delta range,
// which go-chart rejects when every bar holds the same value.
func barRange(values []float64) *chart.ContinuousRange {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: max * 1.1}
}

func (r *Renderer) renderMulti(labels []string, series []NamedSeries, name, title, yName string) (string, error) {
	xs := make([]float64, len(labels))
	ticks := make([]chart.Tick, len(labels))
	for i, l := range labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Ticks: ticks},
		YAxis:  chart.YAxis{Name: yName},
	}

	for i, s := range series {
		color := seriesColors[i%len(seriesColors)]
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 2.5,
				DotColor:    color,
				DotWidth:    4,
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return "", fmt.Errorf("rendering line chart: %w", err)
	}
	return r.save(name, &buf)
}

// save writes the PNG with a short random suffix so repeated queries
// never clobber each other.
func (r *Renderer) save(name string, buf *bytes.Buffer) (string, error) {
	filename := fmt.Sprintf("%s_%s.png", name, uuid.New().String()[:8])
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("saving chart: %w", err)
	}
	return filename, nil
}
