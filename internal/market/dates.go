package market

import "time"

// DateLayout is the wire format for trading dates.
const DateLayout = "2006-01-02"

// LastTradingDay returns the most recent completed trading session before
// now: yesterday, rolled back to the preceding Friday when yesterday falls
// on a weekend. The roll-back crosses month and year boundaries naturally.
func LastTradingDay(now time.Time) time.Time {
	switch now.Weekday() {
	case time.Monday:
		return now.AddDate(0, 0, -3)
	case time.Sunday:
		return now.AddDate(0, 0, -2)
	case time.Saturday:
		return now.AddDate(0, 0, -1)
	default:
		return now.AddDate(0, 0, -1)
	}
}

// LastTradingDate is LastTradingDay formatted for the provider.
func LastTradingDate(now time.Time) string {
	return LastTradingDay(now).Format(DateLayout)
}
