package market

import (
	"strings"
	"time"
)

// timespanUnit is the approximate wall-clock length of one bar unit, used
// only to derive an implied window start. Months and their multiples are
// approximated in days; exactness is not needed for a fetch window.
var timespanUnit = map[string]time.Duration{
	"minute":  time.Minute,
	"hour":    time.Hour,
	"day":     24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"month":   30 * 24 * time.Hour,
	"quarter": 90 * 24 * time.Hour,
	"year":    365 * 24 * time.Hour,
}

// normalizeTimespan maps a caller-supplied timespan to a provider unit,
// falling back to day for anything unrecognized.
func normalizeTimespan(timespan string) string {
	t := strings.ToLower(timespan)
	if _, ok := timespanUnit[t]; ok {
		return t
	}
	return "day"
}

// resolveWindowStart derives the implied start of a candle window: the end
// date minus multiplier*limit units of the timespan.
func resolveWindowStart(end time.Time, timespan string, multiplier, limit int) time.Time {
	unit, ok := timespanUnit[timespan]
	if !ok {
		unit = timespanUnit["day"]
	}
	return end.Add(-time.Duration(multiplier*limit) * unit)
}
