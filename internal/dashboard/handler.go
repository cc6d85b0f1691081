// Package dashboard serves the dataset as an HTML dashboard and a small JSON API.
// Every request re-reads the dataset file; nothing is cached between requests.
package dashboard

import (
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"LaborPulse/internal/config"
	"LaborPulse/internal/dataset"
	"LaborPulse/internal/metrics"
	"LaborPulse/internal/model"
	"LaborPulse/internal/recorder"
	"LaborPulse/internal/trend"
)

const title = "U.S. Labor Market Dashboard"

type Handler struct {
	datasetPath   string
	series        []model.Series
	defaultMonths int
	recorder      recorder.Recorder
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewHandler(datasetPath string, series []model.Series, defaultMonths int, rec recorder.Recorder, m *metrics.Metrics) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if defaultMonths <= 0 {
		defaultMonths = 60
	}
	return &Handler{
		datasetPath:   datasetPath,
		series:        series,
		defaultMonths: clampMonths(defaultMonths),
		recorder:      rec,
		metrics:       m,
		now:           time.Now,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.GetDashboard)
	e.GET("/healthz", h.GetHealth)
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))
	}

	api := e.Group("/api")
	api.GET("/series", h.ListSeries)
	api.GET("/series/:code", h.GetSeries)
}

// --- HANDLERS ---

func (h *Handler) GetDashboard(c echo.Context) error {
	ds, missing, err := h.load()
	if err != nil {
		h.render("error")
		return err
	}

	months := parseMonths(c.QueryParam("months"), h.defaultMonths)
	selected := h.selectSeries(c.QueryParams()["series"])

	page := Page{
		Title:     title,
		Months:    months,
		MinMonths: config.MinMonths,
		MaxMonths: config.MaxMonths,
	}
	if latest := ds.LatestPeriod(); !latest.IsZero() {
		page.LatestPeriod = latest.Label()
	}
	if missing {
		page.Notice = "The dataset has not been created yet. Every indicator shows no data until the first update run."
	}
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s.Code] = true
		page.Widgets = append(page.Widgets, BuildWidget(s, ds.Series(s.Code), months))
	}
	for _, s := range h.series {
		page.Options = append(page.Options, Option{Series: s, Selected: chosen[s.Code]})
	}
	if runs, err := h.recorder.RecentRuns(1); err != nil {
		log.Printf("[WARN] load recent runs: %v", err)
	} else if len(runs) > 0 {
		page.LastRun = FormatRun(&runs[0], h.now())
	}

	if missing {
		h.render("no_dataset")
	} else {
		h.render("ok")
	}
	return c.Render(http.StatusOK, "index.html", page)
}

func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (h *Handler) ListSeries(c echo.Context) error {
	ds, _, err := h.load()
	if err != nil {
		return err
	}
	out := make([]SeriesSummary, 0, len(h.series))
	for _, s := range h.series {
		out = append(out, summarize(s, ds))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetSeries(c echo.Context) error {
	code := c.Param("code")
	s, ok := h.lookup(code)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown series "+code)
	}
	ds, _, err := h.load()
	if err != nil {
		return err
	}

	months := parseMonths(c.QueryParam("months"), h.defaultMonths)
	window := trend.Window(ds.Series(s.Code), months)
	status := statusOK
	if len(window) == 0 {
		status = statusNoData
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"series":       s,
		"status":       status,
		"months":       months,
		"observations": points(window),
	})
}

// load reads the dataset. A missing file is reported as an empty dataset.
func (h *Handler) load() (*dataset.Dataset, bool, error) {
	ds, err := dataset.Load(h.datasetPath)
	if errors.Is(err, os.ErrNotExist) {
		return dataset.New(), true, nil
	}
	if err != nil {
		log.Printf("[ERROR] load dataset %s: %v", h.datasetPath, err)
		return nil, false, echo.NewHTTPError(http.StatusInternalServerError, "dataset is unreadable").SetInternal(err)
	}
	return ds, false, nil
}

func (h *Handler) lookup(code string) (model.Series, bool) {
	for _, s := range h.series {
		if s.Code == code {
			return s, true
		}
	}
	return model.Series{}, false
}

// selectSeries keeps configured order and ignores unknown codes. No valid
// selection means every series.
func (h *Handler) selectSeries(codes []string) []model.Series {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []model.Series
	for _, s := range h.series {
		if want[s.Code] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return h.series
	}
	return out
}

func (h *Handler) render(outcome string) {
	if h.metrics != nil {
		h.metrics.RecordRender(outcome)
	}
}

func parseMonths(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return clampMonths(n)
}

func clampMonths(n int) int {
	if n < config.MinMonths {
		return config.MinMonths
	}
	if n > config.MaxMonths {
		return config.MaxMonths
	}
	return n
}
