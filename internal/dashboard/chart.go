package dashboard

import (
	"strconv"
	"strings"

	"LaborPulse/internal/model"
)

const (
	chartWidth  = 480
	chartHeight = 160
	chartPad    = 4
)

// Chart is an SVG line chart of one series window.
type Chart struct {
	Width  int
	Height int
	Points string // polyline "x,y x,y ..."
	From   string
	To     string
}

// NewChart scales observations into an SVG viewport. Values are plotted by
// period, so gaps in a series stay visible as longer segments.
func NewChart(obs []model.Observation) Chart {
	c := Chart{Width: chartWidth, Height: chartHeight}
	if len(obs) == 0 {
		return c
	}
	c.From = obs[0].Period.Label()
	c.To = obs[len(obs)-1].Period.Label()

	lo, hi := obs[0].Value, obs[0].Value
	for _, o := range obs[1:] {
		if o.Value.LessThan(lo) {
			lo = o.Value
		}
		if o.Value.GreaterThan(hi) {
			hi = o.Value
		}
	}
	minV, _ := lo.Float64()
	maxV, _ := hi.Float64()
	first := obs[0].Period.Index()
	span := obs[len(obs)-1].Period.Index() - first

	innerW := float64(chartWidth - 2*chartPad)
	innerH := float64(chartHeight - 2*chartPad)
	y := func(v float64) float64 {
		if maxV == minV {
			return chartPad + innerH/2
		}
		return chartPad + innerH - (v-minV)/(maxV-minV)*innerH
	}

	pts := make([]string, 0, len(obs)+1)
	if span == 0 {
		v, _ := obs[0].Value.Float64()
		yy := coord(y(v))
		pts = append(pts, coord(chartPad)+","+yy, coord(chartPad+innerW)+","+yy)
	} else {
		for _, o := range obs {
			v, _ := o.Value.Float64()
			x := chartPad + float64(o.Period.Index()-first)/float64(span)*innerW
			pts = append(pts, coord(x)+","+coord(y(v)))
		}
	}
	c.Points = strings.Join(pts, " ")
	return c
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
