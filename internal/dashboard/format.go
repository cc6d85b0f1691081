package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"LaborPulse/internal/model"
	"LaborPulse/internal/recorder"
)

// FormatValue renders a headline value in the series' unit.
func FormatValue(v decimal.Decimal, unit string) string {
	f, _ := v.Float64()
	switch unit {
	case model.UnitPercent:
		return v.StringFixed(1) + "%"
	case model.UnitThousands:
		return humanize.CommafWithDigits(f, 1) + "K"
	default:
		return humanize.CommafWithDigits(f, 2)
	}
}

// FormatChange renders a signed point change. Percent series change in
// percentage points.
func FormatChange(v decimal.Decimal, unit string) string {
	sign := ""
	if v.IsPositive() {
		sign = "+"
	}
	f, _ := v.Float64()
	switch unit {
	case model.UnitPercent:
		return sign + v.StringFixed(1) + " pts"
	case model.UnitThousands:
		return sign + humanize.CommafWithDigits(f, 1) + "K"
	default:
		return sign + humanize.CommafWithDigits(f, 2)
	}
}

// FormatPercent renders a signed percent change.
func FormatPercent(v decimal.Decimal) string {
	if v.IsPositive() {
		return "+" + v.StringFixed(2) + "%"
	}
	return v.StringFixed(2) + "%"
}

// FormatRun summarizes a recorded updater run for the page footer.
func FormatRun(r *recorder.Run, now time.Time) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Last %s run %s (%s)", r.Kind, humanize.RelTime(r.FinishedAt, now, "ago", "from now"), r.Status))
	if r.Revision != "" {
		b.WriteString(fmt.Sprintf(", commit %s", r.Revision))
	}
	if r.Appended > 0 {
		b.WriteString(fmt.Sprintf(", %s new observations", humanize.Comma(int64(r.Appended))))
	}
	if len(r.FailedSeries) > 0 {
		b.WriteString(fmt.Sprintf(", failed: %s", strings.Join(r.FailedSeries, ", ")))
	}
	return b.String()
}
