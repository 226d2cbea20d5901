package recorder

// OverviewSnapshot is one end-of-day record of a market's ranked view,
// kept for offline analysis of how the rankings drift day to day.
type OverviewSnapshot struct {
	Market           string
	TotalAssets      int
	TopGainer        string
	TopGainerPct     float64
	TopLoser         string
	TopLoserPct      float64
	MostActive       string
	MostActiveVolume float64
	CacheHitRate     float64
}

// Recorder persists historical snapshots.
type Recorder interface {
	RecordOverview(snap *OverviewSnapshot) error
	Close() error
}
