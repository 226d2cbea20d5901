package market

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestLastTradingDay(t *testing.T) {
	tests := []struct {
		name string
		now  string
		want string
	}{
		{"tuesday uses monday", "2024-01-02", "2024-01-01"},
		{"wednesday uses tuesday", "2024-01-03", "2024-01-02"},
		{"friday uses thursday", "2024-01-05", "2024-01-04"},
		{"saturday rolls to friday", "2023-12-30", "2023-12-29"},
		{"sunday rolls to friday", "2023-12-31", "2023-12-29"},
		{"monday rolls to friday across year boundary", "2024-01-01", "2023-12-29"},
		{"month boundary into leap february", "2024-03-01", "2024-02-29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastTradingDate(day(tt.now)); got != tt.want {
				t.Errorf("LastTradingDate(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestNormalizeTimespan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"day", "day"},
		{"WEEK", "week"},
		{"quarter", "quarter"},
		{"fortnight", "day"},
		{"", "day"},
	}
	for _, tt := range tests {
		if got := normalizeTimespan(tt.in); got != tt.want {
			t.Errorf("normalizeTimespan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveWindowStart(t *testing.T) {
	end := day("2024-06-14")

	tests := []struct {
		timespan   string
		multiplier int
		limit      int
		want       time.Time
	}{
		{"day", 1, 10, end.Add(-10 * 24 * time.Hour)},
		{"hour", 4, 6, end.Add(-24 * time.Hour)},
		{"week", 1, 2, end.Add(-14 * 24 * time.Hour)},
		{"month", 1, 1, end.Add(-30 * 24 * time.Hour)},
		{"year", 1, 1, end.Add(-365 * 24 * time.Hour)},
	}
	for _, tt := range tests {
		got := resolveWindowStart(end, tt.timespan, tt.multiplier, tt.limit)
		if !got.Equal(tt.want) {
			t.Errorf("%s x%d limit %d: got %v, want %v", tt.timespan, tt.multiplier, tt.limit, got, tt.want)
		}
	}
}
