// Package market orchestrates the read path: cache check, rate-governed
// fetch, normalization, aggregation, cache store. All business state lives
// in the cache; the service itself is stateless and safe for concurrent use.
package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"MarketLens/internal/aggregate"
	"MarketLens/internal/cache"
	"MarketLens/internal/model"
	"MarketLens/internal/normalize"
	"MarketLens/internal/provider"
)

// TTLs bounds the staleness of each cached view. Zero fields take the
// defaults: volatile views live 5 minutes, per-asset details 1 minute.
type TTLs struct {
	Overview     time.Duration
	AssetList    time.Duration
	Candles      time.Duration
	AssetDetails time.Duration
}

func (t *TTLs) applyDefaults() {
	if t.Overview <= 0 {
		t.Overview = cache.DefaultTTL
	}
	if t.AssetList <= 0 {
		t.AssetList = cache.DefaultTTL
	}
	if t.Candles <= 0 {
		t.Candles = cache.DefaultTTL
	}
	if t.AssetDetails <= 0 {
		t.AssetDetails = time.Minute
	}
}

// Service serves aggregated market views with bounded staleness.
type Service struct {
	source provider.Source
	cache  cache.Cache
	ttls   TTLs
	now    func() time.Time
}

// NewService wires a Service from its collaborators.
func NewService(source provider.Source, c cache.Cache, ttls TTLs) *Service {
	ttls.applyDefaults()
	return &Service{
		source: source,
		cache:  c,
		ttls:   ttls,
		now:    time.Now,
	}
}

// GetOverview returns the ranked view for one market: top gainers, top
// losers and most active, drawn from the 500 highest-volume records of the
// last completed session.
func (s *Service) GetOverview(ctx context.Context, marketType model.MarketType) (*model.MarketOverview, error) {
	key := cache.Key("market_overview", marketType)

	var cached model.MarketOverview
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	raw, err := s.fetchDaily(ctx)
	if err != nil {
		return nil, err
	}

	universe := aggregate.FilterTopByVolume(raw, aggregate.VolumeUniverse)
	summaries := make([]*model.MarketSummary, 0, len(universe))
	for _, record := range universe {
		if summary, ok := normalize.ToMarketSummary(record); ok {
			summaries = append(summaries, summary)
		}
	}

	overview := &model.MarketOverview{
		Market:      marketType,
		TotalAssets: aggregate.DistinctSymbols(summaries),
		Status:      "active",
		LastUpdated: s.now().UTC(),
		TopGainers:  aggregate.TopGainers(summaries, aggregate.DefaultRankSize),
		TopLosers:   aggregate.TopLosers(summaries, aggregate.DefaultRankSize),
		MostActive:  aggregate.MostActive(summaries, aggregate.DefaultRankSize),
	}

	s.cache.Set(ctx, key, overview, s.ttls.Overview)
	return overview, nil
}

// GetAssets returns one page of the deduplicated asset list for a market.
func (s *Service) GetAssets(ctx context.Context, marketType model.MarketType, limit, offset int) ([]*model.Asset, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	key := cache.Key("assets_list", marketType, limit, offset)

	var cached []*model.Asset
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	raw, err := s.fetchDaily(ctx)
	if err != nil {
		return nil, err
	}

	assets := aggregate.BuildAssetList(raw, marketType, limit, offset)
	s.cache.Set(ctx, key, assets, s.ttls.AssetList)
	return assets, nil
}

// GetCandles returns the candle series for a symbol, sorted ascending by
// time. An absent end date means the last completed trading session; an
// absent start date is implied by multiplier*limit units of the timespan.
// An empty upstream series yields an empty slice, not an error.
func (s *Service) GetCandles(ctx context.Context, symbol, timespan string, multiplier, limit int, startDate, endDate string) ([]*model.CandleStick, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	timespan = normalizeTimespan(timespan)
	if multiplier <= 0 {
		multiplier = 1
	}
	if limit <= 0 {
		limit = 100
	}
	if endDate == "" {
		endDate = LastTradingDate(s.now())
	}

	startArg := startDate
	if startArg == "" {
		startArg = "auto"
	}
	key := cache.Key("candles", symbol, timespan, multiplier, limit, startArg, endDate)

	var cached []*model.CandleStick
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("end date %q: %w", endDate, err)
	}
	if startDate == "" {
		startDate = resolveWindowStart(end, timespan, multiplier, limit).Format(DateLayout)
	}

	raw, err := s.source.Candles(ctx, symbol, multiplier, timespan, startDate, endDate, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}

	candles := make([]*model.CandleStick, 0, len(raw))
	for _, bar := range raw {
		if candle, ok := normalize.ToCandleStick(bar); ok {
			candles = append(candles, candle)
		}
	}
	// Upstream order is not guaranteed.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})

	s.cache.Set(ctx, key, candles, s.ttls.Candles)
	return candles, nil
}

// GetAssetDetails merges the symbol's last session price point with its
// reference record. Returns ErrNotFound when the provider knows neither.
func (s *Service) GetAssetDetails(ctx context.Context, symbol string) (*model.Asset, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrNotFound
	}
	key := cache.Key("asset_details", symbol)

	var cached model.Asset
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	ref, err := s.source.TickerReference(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch reference %s: %w", symbol, err)
	}

	session := LastTradingDay(s.now())
	bars, err := s.source.Candles(ctx, symbol, 1, "day",
		session.Format(DateLayout), session.AddDate(0, 0, 1).Format(DateLayout), 1)
	if err != nil {
		// Reference data alone is still a useful answer; log and continue.
		log.Printf("[WARN] price point for %s unavailable: %v", symbol, err)
	}

	var asset *model.Asset
	switch {
	case len(bars) > 0:
		asset, _ = normalize.ToAssetEnriched(symbol, bars[len(bars)-1], ref)
	case ref != nil:
		asset, _ = normalize.ToAsset(ref)
	}
	if asset == nil {
		return nil, ErrNotFound
	}

	s.cache.Set(ctx, key, asset, s.ttls.AssetDetails)
	return asset, nil
}

// SearchAssets returns assets matching the query. Queries shorter than two
// characters return an empty result, not an error. Search results are not
// cached; queries rarely repeat within a TTL.
func (s *Service) SearchAssets(ctx context.Context, query string, marketType model.MarketType) ([]*model.Asset, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []*model.Asset{}, nil
	}

	raw, err := s.source.SearchTickers(ctx, query, marketType)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	assets := make([]*model.Asset, 0, len(raw))
	for _, record := range raw {
		if asset, ok := normalize.ToAsset(record); ok {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

// Invalidate removes every cached view whose key contains substr and
// returns the number of entries dropped.
func (s *Service) Invalidate(ctx context.Context, substr string) int {
	return s.cache.ClearPattern(ctx, substr)
}

// CacheStats exposes the underlying cache counters.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// fetchDaily retrieves the raw grouped records for the last completed
// trading session, mapping a missing result set to ErrNoData.
func (s *Service) fetchDaily(ctx context.Context) ([]normalize.Raw, error) {
	date := LastTradingDate(s.now())
	raw, err := s.source.DailySummary(ctx, date)
	if err != nil {
		if errors.Is(err, provider.ErrNoResults) {
			return nil, fmt.Errorf("daily summary for %s: %w", date, ErrNoData)
		}
		return nil, fmt.Errorf("fetch daily summary: %w", err)
	}
	return raw, nil
}
