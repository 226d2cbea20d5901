// Package aggregate computes ranked market views from normalized entities.
// Everything here is pure: no shared state, deterministic output for a
// given input, ties broken by input order.
package aggregate

import (
	"sort"

	"MarketLens/internal/model"
	"MarketLens/internal/normalize"
)

// DefaultRankSize is the number of entries in each ranked view.
const DefaultRankSize = 10

// VolumeUniverse caps the pre-filtered universe the rankings draw from.
const VolumeUniverse = 500

// TopGainers returns the n summaries with the highest positive change
// percent, best first.
func TopGainers(records []*model.MarketSummary, n int) []*model.MarketSummary {
	gainers := make([]*model.MarketSummary, 0, len(records))
	for _, r := range records {
		if r.ChangePercent > 0 {
			gainers = append(gainers, r)
		}
	}
	sort.SliceStable(gainers, func(i, j int) bool {
		return gainers[i].ChangePercent > gainers[j].ChangePercent
	})
	return head(gainers, n)
}

// TopLosers returns the n summaries with the most negative change percent,
// worst first.
func TopLosers(records []*model.MarketSummary, n int) []*model.MarketSummary {
	losers := make([]*model.MarketSummary, 0, len(records))
	for _, r := range records {
		if r.ChangePercent < 0 {
			losers = append(losers, r)
		}
	}
	sort.SliceStable(losers, func(i, j int) bool {
		return losers[i].ChangePercent < losers[j].ChangePercent
	})
	return head(losers, n)
}

// MostActive returns the n summaries with the highest volume. Zero-change
// records participate; activity is independent of direction.
func MostActive(records []*model.MarketSummary, n int) []*model.MarketSummary {
	active := make([]*model.MarketSummary, len(records))
	copy(active, records)
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Volume > active[j].Volume
	})
	return head(active, n)
}

// FilterTopByVolume keeps the n highest-volume raw records. Records whose
// volume field is missing or non-numeric are dropped outright, never
// treated as zero-volume.
func FilterTopByVolume(records []normalize.Raw, n int) []normalize.Raw {
	type scored struct {
		raw    normalize.Raw
		volume float64
	}
	kept := make([]scored, 0, len(records))
	for _, r := range records {
		v, ok := r["v"]
		if !ok {
			continue
		}
		f, isFloat := v.(float64)
		if !isFloat {
			continue
		}
		kept = append(kept, scored{raw: r, volume: f})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].volume > kept[j].volume
	})
	if len(kept) > n {
		kept = kept[:n]
	}
	out := make([]normalize.Raw, len(kept))
	for i, s := range kept {
		out[i] = s.raw
	}
	return out
}

// DistinctSymbols counts unique symbols, not rows.
func DistinctSymbols(records []*model.MarketSummary) int {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		seen[r.Symbol] = struct{}{}
	}
	return len(seen)
}

// BuildAssetList converts raw daily records into a paginated asset list.
// Duplicate symbols keep their first occurrence, and deduplication happens
// before the [offset, offset+limit) slice so page boundaries stay stable
// across calls with identical input.
func BuildAssetList(records []normalize.Raw, market model.MarketType, limit, offset int) []*model.Asset {
	seen := make(map[string]struct{}, len(records))
	assets := make([]*model.Asset, 0, len(records))
	for _, r := range records {
		symbol, _ := r["T"].(string)
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		if asset, ok := normalize.ToAssetBasic(r, market); ok {
			assets = append(assets, asset)
		}
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(assets) {
		return []*model.Asset{}
	}
	end := offset + limit
	if limit <= 0 || end > len(assets) {
		end = len(assets)
	}
	return assets[offset:end]
}

func head(records []*model.MarketSummary, n int) []*model.MarketSummary {
	if n <= 0 {
		n = DefaultRankSize
	}
	if len(records) > n {
		return records[:n]
	}
	return records
}
