// Package normalize converts raw provider records into domain entities.
// Records arrive as decoded JSON objects and may be malformed, partial, or
// adversarial; every converter returns ok=false for a record it cannot use
// so one bad record never aborts a batch.
package normalize

import (
	"encoding/json"
	"math"
	"time"

	"MarketLens/internal/model"
)

// Raw is one decoded upstream record.
type Raw = map[string]any

// floatField extracts a numeric field, tolerating the integer shapes a JSON
// decoder or test fixture may produce. Strings and nulls are not numbers.
func floatField(raw Raw, key string) (float64, bool) {
	v, ok := raw[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func stringField(raw Raw, key string) (string, bool) {
	v, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func round(x float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(x*shift) / shift
}

// changePercent applies the zero-open rule: a zero or negative open yields
// exactly 0, never a division error or Inf.
func changePercent(change, open float64) float64 {
	if open > 0 {
		return change / open * 100
	}
	return 0
}

// ToMarketSummary builds a MarketSummary from a grouped-daily record.
// Requires symbol (T), close (c), open (o) and volume (v); high and low
// default to the close when the provider omits them.
func ToMarketSummary(raw Raw) (*model.MarketSummary, bool) {
	symbol, ok := stringField(raw, "T")
	if !ok {
		return nil, false
	}
	closePrice, ok := floatField(raw, "c")
	if !ok {
		return nil, false
	}
	openPrice, ok := floatField(raw, "o")
	if !ok {
		return nil, false
	}
	volume, ok := floatField(raw, "v")
	if !ok {
		return nil, false
	}

	high, ok := floatField(raw, "h")
	if !ok {
		high = closePrice
	}
	low, ok := floatField(raw, "l")
	if !ok {
		low = closePrice
	}

	change := closePrice - openPrice
	s := &model.MarketSummary{
		Symbol:        symbol,
		Open:          openPrice,
		High:          high,
		Low:           low,
		Close:         closePrice,
		Volume:        volume,
		Change:        round(change, 4),
		ChangePercent: round(changePercent(change, openPrice), 2),
		Timestamp:     time.Now().UTC(),
	}
	if vwap, ok := floatField(raw, "vw"); ok {
		s.VWAP = &vwap
	}
	return s, true
}

// ToAsset builds an Asset from a reference record (search results, ticker
// lookups). Unknown market strings fall back to stocks, currency defaults
// to USD and active to true.
func ToAsset(raw Raw) (*model.Asset, bool) {
	ticker, ok := stringField(raw, "ticker")
	if !ok {
		return nil, false
	}

	name, ok := stringField(raw, "name")
	if !ok {
		name = ticker
	}
	currency, ok := stringField(raw, "currency_name")
	if !ok {
		currency = "USD"
	}
	market, _ := stringField(raw, "market")

	active := true
	if v, ok := raw["active"].(bool); ok {
		active = v
	}

	return &model.Asset{
		ID:       ticker,
		Symbol:   ticker,
		Name:     name,
		Market:   model.ParseMarketType(market),
		Currency: currency,
		Active:   active,
		Details:  raw,
	}, true
}

// ToAssetBasic builds an Asset from a grouped-daily record. Only price
// context is available on this path, so the name is the symbol itself and
// the currency is assumed USD.
func ToAssetBasic(raw Raw, market model.MarketType) (*model.Asset, bool) {
	symbol, ok := stringField(raw, "T")
	if !ok {
		return nil, false
	}
	closePrice, ok := floatField(raw, "c")
	if !ok {
		return nil, false
	}
	volume, ok := floatField(raw, "v")
	if !ok {
		return nil, false
	}

	asset := &model.Asset{
		ID:       symbol,
		Symbol:   symbol,
		Name:     symbol,
		Market:   market,
		Currency: "USD",
		Active:   true,
		Price:    &closePrice,
		Details:  map[string]any{"source": "daily_summary"},
	}
	vol := int64(volume)
	asset.Volume = &vol

	if openPrice, ok := floatField(raw, "o"); ok {
		change := round(closePrice-openPrice, 4)
		pct := round(changePercent(closePrice-openPrice, openPrice), 2)
		asset.Change = &change
		asset.ChangePercent = &pct
	}
	for _, key := range []string{"o", "h", "l", "vw"} {
		if v, ok := floatField(raw, key); ok {
			asset.Details[detailName(key)] = v
		}
	}
	return asset, true
}

func detailName(key string) string {
	switch key {
	case "o":
		return "open"
	case "h":
		return "high"
	case "l":
		return "low"
	case "vw":
		return "vwap"
	default:
		return key
	}
}

// ToAssetEnriched merges a daily price point with the symbol's reference
// record. Price, change and volume come from the price point; descriptive
// fields come from the reference record and are simply omitted when the
// provider does not supply them.
func ToAssetEnriched(symbol string, price Raw, ref Raw) (*model.Asset, bool) {
	closePrice, ok := floatField(price, "c")
	if !ok {
		return nil, false
	}

	asset := &model.Asset{
		ID:       symbol,
		Symbol:   symbol,
		Name:     symbol,
		Market:   model.MarketStocks,
		Currency: "USD",
		Active:   true,
		Price:    &closePrice,
		Details:  map[string]any{},
	}

	if openPrice, ok := floatField(price, "o"); ok {
		change := round(closePrice-openPrice, 4)
		pct := round(changePercent(closePrice-openPrice, openPrice), 2)
		asset.Change = &change
		asset.ChangePercent = &pct
		asset.Details["open"] = openPrice
	}
	if volume, ok := floatField(price, "v"); ok {
		vol := int64(volume)
		asset.Volume = &vol
	}
	for _, key := range []string{"h", "l", "vw"} {
		if v, ok := floatField(price, key); ok {
			asset.Details[detailName(key)] = v
		}
	}

	if ref != nil {
		if name, ok := stringField(ref, "name"); ok {
			asset.Name = name
		}
		if currency, ok := stringField(ref, "currency_name"); ok {
			asset.Currency = currency
		}
		if market, ok := stringField(ref, "market"); ok {
			asset.Market = model.ParseMarketType(market)
		}
		if v, ok := ref["active"].(bool); ok {
			asset.Active = v
		}
		if marketCap, ok := floatField(ref, "market_cap"); ok {
			asset.Details["market_cap"] = marketCap
		}
		for _, key := range []string{"primary_exchange", "homepage_url", "description"} {
			if v, ok := stringField(ref, key); ok {
				asset.Details[key] = v
			}
		}
	}
	return asset, true
}

// ToCandleStick builds a CandleStick from an aggregate bar. The time field
// (t) is a millisecond epoch and converts to an absolute UTC instant.
func ToCandleStick(raw Raw) (*model.CandleStick, bool) {
	openPrice, ok := floatField(raw, "o")
	if !ok {
		return nil, false
	}
	high, ok := floatField(raw, "h")
	if !ok {
		return nil, false
	}
	low, ok := floatField(raw, "l")
	if !ok {
		return nil, false
	}
	closePrice, ok := floatField(raw, "c")
	if !ok {
		return nil, false
	}
	volume, ok := floatField(raw, "v")
	if !ok {
		return nil, false
	}
	millis, ok := floatField(raw, "t")
	if !ok {
		return nil, false
	}

	return &model.CandleStick{
		Timestamp: time.UnixMilli(int64(millis)).UTC(),
		Open:      openPrice,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    int64(volume),
	}, true
}
