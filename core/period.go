package core

import (
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/schema"
)

// Period is a concrete aggregation window resolved from a symbolic time range.
type Period struct {
	Start time.Time
	End   time.Time
}

// CalculatePeriod maps a symbolic time range to concrete start/end instants
// anchored at now. The "all" range starts at the GitHub epoch since no data
// can predate it. Pure function: no state, no failure modes.
func CalculatePeriod(timeRange schema.TimeRange, now time.Time) Period {
	end := now.UTC()
	if timeRange == schema.RangeAll {
		return Period{Start: schema.GitHubEpoch, End: end}
	}
	return Period{Start: end.Add(-timeRange.Duration()), End: end}
}

// Days returns the inclusive calendar-day count of the period, minimum 1.
// Velocity math divides by this, so it can never be zero.
func (p Period) Days() int {
	startDay := p.Start.UTC().Truncate(24 * time.Hour)
	endDay := p.End.UTC().Truncate(24 * time.Hour)
	days := int(endDay.Sub(startDay).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// PriorWindow returns the equal-length window immediately before the period.
// Trend baselines are summed over this window.
func (p Period) PriorWindow() Period {
	span := p.End.Sub(p.Start)
	return Period{Start: p.Start.Add(-span), End: p.Start}
}

// EachDay calls fn with every calendar day in the period, formatted per
// contract.DateOnlyFormat, from start day through end day inclusive.
func (p Period) EachDay(fn func(date string)) {
	startDay := p.Start.UTC().Truncate(24 * time.Hour)
	endDay := p.End.UTC().Truncate(24 * time.Hour)
	for d := startDay; !d.After(endDay); d = d.Add(24 * time.Hour) {
		fn(d.Format(contract.DateOnlyFormat))
	}
}
