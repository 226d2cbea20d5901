package model

import (
	"strings"
	"time"
)

// MarketType identifies the asset class an instrument trades in.
type MarketType string

const (
	MarketStocks  MarketType = "stocks"
	MarketCrypto  MarketType = "crypto"
	MarketFX      MarketType = "fx"
	MarketIndices MarketType = "indices"
)

// ParseMarketType maps an upstream market string to a MarketType.
// Unknown or empty values fall back to stocks.
func ParseMarketType(s string) MarketType {
	switch strings.ToLower(s) {
	case "crypto":
		return MarketCrypto
	case "fx":
		return MarketFX
	case "indices":
		return MarketIndices
	default:
		return MarketStocks
	}
}

// MarketSummary is one instrument's aggregate for a single trading session.
type MarketSummary struct {
	Symbol        string    `json:"symbol"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	Volume        float64   `json:"volume"`
	VWAP          *float64  `json:"vwap,omitempty"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Timestamp     time.Time `json:"timestamp"`
}

// IsPositive reports whether the session closed above its open.
func (m *MarketSummary) IsPositive() bool { return m.Change > 0 }

// PriceRange is the session's high-low spread.
func (m *MarketSummary) PriceRange() float64 { return m.High - m.Low }

// Asset is a tradable instrument with optional price context.
type Asset struct {
	ID            string         `json:"id"`
	Symbol        string         `json:"symbol"`
	Name          string         `json:"name"`
	Market        MarketType     `json:"market"`
	Currency      string         `json:"currency"`
	Active        bool           `json:"active"`
	Price         *float64       `json:"price,omitempty"`
	Change        *float64       `json:"change,omitempty"`
	ChangePercent *float64       `json:"change_percent,omitempty"`
	Volume        *int64         `json:"volume,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// IsTradable reports whether the asset is active and currently priced.
func (a *Asset) IsTradable() bool { return a.Active && a.Price != nil }

// CandleStick is one OHLCV bar.
type CandleStick struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// IsGreen reports a bullish bar (close above open).
func (c *CandleStick) IsGreen() bool { return c.Close > c.Open }

// IsRed reports a bearish bar (close below open).
func (c *CandleStick) IsRed() bool { return c.Close < c.Open }

// BodySize is the absolute open-close distance.
func (c *CandleStick) BodySize() float64 {
	if c.Close > c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// UpperWick is the shadow above the body.
func (c *CandleStick) UpperWick() float64 {
	return c.High - max(c.Open, c.Close)
}

// LowerWick is the shadow below the body.
func (c *CandleStick) LowerWick() float64 {
	return min(c.Open, c.Close) - c.Low
}

// PriceRange is the bar's total high-low spread.
func (c *CandleStick) PriceRange() float64 { return c.High - c.Low }

// MarketOverview is the ranked view served for one market.
type MarketOverview struct {
	Market      MarketType       `json:"market"`
	TotalAssets int              `json:"total_assets"`
	Status      string           `json:"status"`
	LastUpdated time.Time        `json:"last_updated"`
	TopGainers  []*MarketSummary `json:"top_gainers"`
	TopLosers   []*MarketSummary `json:"top_losers"`
	MostActive  []*MarketSummary `json:"most_active"`
}
