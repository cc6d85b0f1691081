package dashboard

import (
	"math"

	"github.com/shopspring/decimal"

	"LaborPulse/internal/dataset"
	"LaborPulse/internal/model"
	"LaborPulse/internal/trend"
)

// rangeMonths is the window of the high/low figures on each widget.
const rangeMonths = 12

// Widget is the rendered state of one series.
type Widget struct {
	Series  model.Series
	HasData bool

	Latest        string
	Period        string
	Change        string
	PercentChange string
	Direction     string // up, down or flat
	High          string
	Low           string
	RangePosition int // latest value within [Low, High], 0-100
	Points        int
	Chart         Chart
}

// Option is one entry of the series picker.
type Option struct {
	Series   model.Series
	Selected bool
}

// Page is the view model of the dashboard.
type Page struct {
	Title        string
	Months       int
	MinMonths    int
	MaxMonths    int
	LatestPeriod string
	Notice       string
	LastRun      string
	Options      []Option
	Widgets      []Widget
}

// BuildWidget computes one widget from a series' observations. The chart
// covers the last months; the headline figures use the full series.
func BuildWidget(s model.Series, obs []model.Observation, months int) Widget {
	w := Widget{Series: s}
	last, err := trend.Latest(obs)
	if err != nil {
		return w
	}
	w.HasData = true
	w.Latest = FormatValue(last.Value, s.Unit)
	w.Period = last.Period.Label()
	w.Direction = "flat"

	if diff, err := trend.Change(obs); err == nil {
		w.Change = FormatChange(diff, s.Unit)
		switch diff.Sign() {
		case 1:
			w.Direction = "up"
		case -1:
			w.Direction = "down"
		}
	}
	if pct, err := trend.PercentChange(obs); err == nil {
		w.PercentChange = FormatPercent(pct)
	}
	if high, low, err := trend.Range(obs, rangeMonths); err == nil {
		w.High = FormatValue(high, s.Unit)
		w.Low = FormatValue(low, s.Unit)
		if pos, err := trend.Position(last.Value, high, low); err == nil {
			w.RangePosition = int(math.Round(pos * 100))
		}
	}

	window := trend.Window(obs, months)
	w.Points = len(window)
	w.Chart = NewChart(window)
	return w
}

// SeriesSummary is the JSON form of a widget.
type SeriesSummary struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Unit          string           `json:"unit"`
	Status        string           `json:"status"`
	Observations  int              `json:"observations"`
	Latest        *Point           `json:"latest,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	PercentChange *decimal.Decimal `json:"percent_change,omitempty"`
	// RangePosition places the latest value within its 12-month range (0.0~1.0).
	RangePosition *float64 `json:"range_position,omitempty"`
}

// Point is one observation in API responses.
type Point struct {
	Period string          `json:"period"`
	Value  decimal.Decimal `json:"value"`
}

const (
	statusOK     = "ok"
	statusNoData = "no_data"
)

func summarize(s model.Series, ds *dataset.Dataset) SeriesSummary {
	obs := ds.Series(s.Code)
	sum := SeriesSummary{Code: s.Code, Name: s.Name, Unit: s.Unit, Status: statusNoData, Observations: len(obs)}
	last, err := trend.Latest(obs)
	if err != nil {
		return sum
	}
	sum.Status = statusOK
	sum.Latest = &Point{Period: last.Period.String(), Value: last.Value}
	if diff, err := trend.Change(obs); err == nil {
		sum.Change = &diff
	}
	if pct, err := trend.PercentChange(obs); err == nil {
		sum.PercentChange = &pct
	}
	if high, low, err := trend.Range(obs, rangeMonths); err == nil {
		if pos, err := trend.Position(last.Value, high, low); err == nil {
			sum.RangePosition = &pos
		}
	}
	return sum
}

func points(obs []model.Observation) []Point {
	out := make([]Point, len(obs))
	for i, o := range obs {
		out[i] = Point{Period: o.Period.String(), Value: o.Value}
	}
	return out
}
