// Package provider abstracts the upstream market-data API. The rest of the
// system depends only on the Source contract; transport details, request
// pacing and upstream quirks stay behind it.
package provider

import (
	"context"
	"errors"
	"fmt"

	"MarketLens/internal/model"
	"MarketLens/internal/normalize"
)

// ErrNoResults reports a well-formed upstream response that carries no
// results collection at all, as opposed to an empty one.
var ErrNoResults = errors.New("upstream response has no results")

// UpstreamError is a transport or HTTP-level failure from the provider.
type UpstreamError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Endpoint, e.Message)
}

// Source fetches raw market data. Implementations pace their own outbound
// calls; callers never talk to the upstream directly.
type Source interface {
	// DailySummary returns the grouped daily records for one trading date
	// (YYYY-MM-DD). Returns ErrNoResults when the response carries no
	// results collection.
	DailySummary(ctx context.Context, date string) ([]normalize.Raw, error)
	// TickerReference returns the descriptive reference record for a
	// symbol, or nil when the provider does not know it.
	TickerReference(ctx context.Context, symbol string) (normalize.Raw, error)
	// Candles returns raw aggregate bars for the window, or nil when the
	// provider has none.
	Candles(ctx context.Context, symbol string, multiplier int, timespan, fromDate, toDate string, limit int) ([]normalize.Raw, error)
	// SearchTickers returns reference records matching the query,
	// optionally restricted to one market ("" means all).
	SearchTickers(ctx context.Context, query string, market model.MarketType) ([]normalize.Raw, error)
	Name() string
}
