package analytics

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/voiceops/tripquery/charts"
	"github.com/voiceops/tripquery/report"
	"github.com/voiceops/tripquery/types"
)

// Server is the trip analytics HTTP surface.
type Server struct {
	store    *Store
	renderer *charts.Renderer
	planner  *Planner
	executor *Executor
}

// NewServer wires the store, chart renderer and LLM planner into a
// fiber app.
func NewServer(store *Store, renderer *charts.Renderer, planner *Planner) (*fiber.App, *Server) {
	s := &Server{
		store:    store,
		renderer: renderer,
		planner:  planner,
		executor: NewExecutor(store, renderer),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/health", s.handleHealth)
	app.Get("/status", s.handleStatus)
	app.Post("/process_query", s.handleProcessQuery)
	app.Get("/charts", s.handleCharts)
	app.Get("/chart/:filename", s.handleChartFile)
	app.Get("/report", s.handleReport)

	return app, s
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "Trip Analytics Server",
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"loaded":      s.store.Len() > 0,
		"csv_file":    s.store.Path(),
		"total_trips": s.store.Len(),
		"columns":     s.store.Columns(),
	})
}

func (s *Server) handleProcessQuery(c *fiber.Ctx) error {
	var req types.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.QueryResponse{
			Status: "error",
			Error:  "invalid JSON body",
		})
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.QueryResponse{
			Status: "error",
			Error:  "query is required",
		})
	}

	log.Printf("Processing query: %q", query)

	if !TripRelated(query) {
		return c.JSON(types.QueryResponse{
			Query:    query,
			Response: HelpText,
			Status:   "success",
		})
	}

	decision, err := s.planner.Plan(c.UserContext(), query)
	if err != nil {
		log.Printf("LLM planning failed, serving guidance: %v", err)
		return c.JSON(types.QueryResponse{
			Query:    query,
			Response: HelpText,
			Status:   "success",
		})
	}

	if decision.Type != types.ResponseTypeToolCall || decision.ToolCall == nil {
		return c.JSON(types.QueryResponse{
			Query:    query,
			Response: HelpText,
			Status:   "success",
		})
	}

	result, err := s.executor.Execute(decision.ToolCall, query, time.Now().UTC())
	if err != nil {
		log.Printf("Tool execution failed: %v", err)
		return c.JSON(types.QueryResponse{
			Query:    query,
			Response: HelpText,
			Status:   "success",
		})
	}

	resp := types.QueryResponse{
		Query:    query,
		Response: result.Text,
		Status:   "success",
	}
	for _, f := range result.Charts {
		resp.Charts = append(resp.Charts, types.ChartInfo{
			Filename: f,
			URL:      "/chart/" + f,
		})
	}
	return c.JSON(resp)
}

func (s *Server) handleCharts(c *fiber.Ctx) error {
	infos, err := s.renderer.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not list charts",
		})
	}
	return c.JSON(fiber.Map{
		"charts": infos,
		"count":  len(infos),
	})
}

func (s *Server) handleChartFile(c *fiber.Ctx) error {
	// Strip any path components so the route cannot escape the dir.
	name := filepath.Base(c.Params("filename"))
	if !strings.HasSuffix(name, ".png") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "only PNG charts are served",
		})
	}
	return c.SendFile(filepath.Join(s.renderer.Dir(), name))
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	trips := s.store.Trips()
	rangeDesc := "all available data"

	startParam, endParam := c.Query("start"), c.Query("end")
	if startParam != "" && endParam != "" {
		start, err1 := time.Parse("2006-01-02", startParam)
		end, err2 := time.Parse("2006-01-02", endParam)
		if err1 != nil || err2 != nil || end.Before(start) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start and end must be YYYY-MM-DD with start <= end",
			})
		}
		trips = s.store.FilterRange(start, end)
		rangeDesc = fmt.Sprintf("%s to %s", startParam, endParam)
	}

	if len(trips) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no trips in the requested range",
		})
	}

	summary := Summarize(trips)
	pdf, err := report.Build(report.Input{
		RangeDesc:        rangeDesc,
		GeneratedAt:      time.Now().UTC(),
		TotalTrips:       summary.TotalTrips,
		CompletedTrips:   summary.CompletedTrips,
		CancelledTrips:   summary.CancelledTrips,
		CompletionRate:   summary.CompletionRate,
		AvgTripTime:      summary.AvgTripTime,
		MinTripTime:      summary.MinTripTime,
		MaxTripTime:      summary.MaxTripTime,
		OnTimeRate:       summary.OnTimeRate,
		AvgDailyTrips:    summary.AvgDailyTrips,
		PerformanceScore: summary.PerformanceScore,
		Rating:           summary.Rating(),
	})
	if err != nil {
		log.Printf("Report build failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not build report",
		})
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="trip_report.pdf"`)
	return c.Send(pdf)
}
