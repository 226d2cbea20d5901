package normalize

import (
	"testing"
	"time"

	"MarketLens/internal/model"
)

func TestToMarketSummary_Basic(t *testing.T) {
	s, ok := ToMarketSummary(Raw{
		"T": "AAPL", "o": 100.0, "c": 105.0, "h": 106.0, "l": 99.0, "v": 1_000_000.0,
	})
	if !ok {
		t.Fatal("expected valid summary")
	}
	if s.Symbol != "AAPL" {
		t.Errorf("symbol = %q", s.Symbol)
	}
	if s.Change != 5.0 {
		t.Errorf("change = %v, want 5.0", s.Change)
	}
	if s.ChangePercent != 5.0 {
		t.Errorf("change_percent = %v, want 5.0", s.ChangePercent)
	}
}

func TestToMarketSummary_ZeroOpen(t *testing.T) {
	s, ok := ToMarketSummary(Raw{"T": "X", "o": 0.0, "c": 50.0, "v": 10.0})
	if !ok {
		t.Fatal("zero open must not reject the record")
	}
	if s.ChangePercent != 0 {
		t.Errorf("change_percent = %v, want exactly 0 for zero open", s.ChangePercent)
	}
	if s.Change != 50.0 {
		t.Errorf("change = %v, want 50.0", s.Change)
	}
}

func TestToMarketSummary_HighLowDefaultToClose(t *testing.T) {
	s, ok := ToMarketSummary(Raw{"T": "X", "o": 10.0, "c": 12.0, "v": 5.0})
	if !ok {
		t.Fatal("expected valid summary")
	}
	if s.High != 12.0 || s.Low != 12.0 {
		t.Errorf("high/low = %v/%v, want close fallback 12.0", s.High, s.Low)
	}
	if s.VWAP != nil {
		t.Error("vwap should be absent when not supplied")
	}
}

func TestToMarketSummary_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
	}{
		{"missing symbol", Raw{"o": 1.0, "c": 2.0, "v": 3.0}},
		{"missing close", Raw{"T": "X", "o": 1.0, "v": 3.0}},
		{"missing open", Raw{"T": "X", "c": 2.0, "v": 3.0}},
		{"missing volume", Raw{"T": "X", "o": 1.0, "c": 2.0}},
		{"non-numeric close", Raw{"T": "X", "o": 1.0, "c": "oops", "v": 3.0}},
		{"null open", Raw{"T": "X", "o": nil, "c": 2.0, "v": 3.0}},
		{"empty record", Raw{}},
		{"symbol wrong type", Raw{"T": 42, "o": 1.0, "c": 2.0, "v": 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ToMarketSummary(tt.raw); ok {
				t.Error("malformed record should yield absent")
			}
		})
	}
}

func TestToMarketSummary_Rounding(t *testing.T) {
	s, ok := ToMarketSummary(Raw{"T": "X", "o": 3.0, "c": 4.00007, "v": 1.0})
	if !ok {
		t.Fatal("expected valid summary")
	}
	if s.Change != 1.0001 {
		t.Errorf("change = %v, want 1.0001 (4 dp)", s.Change)
	}
	if s.ChangePercent != 33.34 {
		t.Errorf("change_percent = %v, want 33.34 (2 dp)", s.ChangePercent)
	}
}

func TestToAsset_Defaults(t *testing.T) {
	a, ok := ToAsset(Raw{"ticker": "AAPL"})
	if !ok {
		t.Fatal("expected asset")
	}
	if a.Name != "AAPL" {
		t.Errorf("name = %q, want symbol fallback", a.Name)
	}
	if a.Currency != "USD" {
		t.Errorf("currency = %q, want USD default", a.Currency)
	}
	if !a.Active {
		t.Error("active should default to true")
	}
	if a.Market != model.MarketStocks {
		t.Errorf("market = %q, want stocks fallback", a.Market)
	}
}

func TestToAsset_MarketMapping(t *testing.T) {
	tests := []struct {
		in   string
		want model.MarketType
	}{
		{"stocks", model.MarketStocks},
		{"CRYPTO", model.MarketCrypto},
		{"fx", model.MarketFX},
		{"Indices", model.MarketIndices},
		{"otc", model.MarketStocks},
		{"", model.MarketStocks},
	}
	for _, tt := range tests {
		a, ok := ToAsset(Raw{"ticker": "X", "market": tt.in})
		if !ok {
			t.Fatalf("market %q: expected asset", tt.in)
		}
		if a.Market != tt.want {
			t.Errorf("market %q mapped to %q, want %q", tt.in, a.Market, tt.want)
		}
	}
}

func TestToAsset_MissingTicker(t *testing.T) {
	if _, ok := ToAsset(Raw{"name": "No Symbol Corp"}); ok {
		t.Error("asset without ticker should be absent")
	}
}

func TestToAssetBasic(t *testing.T) {
	a, ok := ToAssetBasic(Raw{"T": "MSFT", "o": 200.0, "c": 195.0, "v": 500_000.0}, model.MarketStocks)
	if !ok {
		t.Fatal("expected asset")
	}
	if a.Name != "MSFT" || a.Currency != "USD" || !a.Active {
		t.Errorf("basic defaults wrong: %+v", a)
	}
	if a.Price == nil || *a.Price != 195.0 {
		t.Errorf("price = %v, want 195.0", a.Price)
	}
	if a.Change == nil || *a.Change != -5.0 {
		t.Errorf("change = %v, want -5.0", a.Change)
	}
	if a.ChangePercent == nil || *a.ChangePercent != -2.5 {
		t.Errorf("change_percent = %v, want -2.5", a.ChangePercent)
	}
	if a.Volume == nil || *a.Volume != 500_000 {
		t.Errorf("volume = %v, want 500000", a.Volume)
	}
	if !a.IsTradable() {
		t.Error("priced active asset should be tradable")
	}
}

func TestToAssetBasic_NoOpen(t *testing.T) {
	a, ok := ToAssetBasic(Raw{"T": "X", "c": 10.0, "v": 1.0}, model.MarketCrypto)
	if !ok {
		t.Fatal("expected asset")
	}
	if a.Change != nil || a.ChangePercent != nil {
		t.Error("change fields should be absent without an open price")
	}
}

func TestToAssetEnriched(t *testing.T) {
	price := Raw{"o": 100.0, "c": 110.0, "h": 112.0, "l": 99.0, "v": 42_000.0, "vw": 105.5}
	ref := Raw{
		"name":             "Apple Inc.",
		"market":           "stocks",
		"currency_name":    "usd",
		"active":           true,
		"market_cap":       2.8e12,
		"primary_exchange": "XNAS",
		"homepage_url":     "https://www.apple.com",
	}

	a, ok := ToAssetEnriched("AAPL", price, ref)
	if !ok {
		t.Fatal("expected asset")
	}
	if a.Name != "Apple Inc." {
		t.Errorf("name = %q", a.Name)
	}
	if a.Change == nil || *a.Change != 10.0 {
		t.Errorf("change = %v, want 10.0", a.Change)
	}
	if a.ChangePercent == nil || *a.ChangePercent != 10.0 {
		t.Errorf("change_percent = %v, want 10.0", a.ChangePercent)
	}
	if a.Details["market_cap"] != 2.8e12 {
		t.Errorf("market_cap detail = %v", a.Details["market_cap"])
	}
	if a.Details["primary_exchange"] != "XNAS" {
		t.Errorf("exchange detail = %v", a.Details["primary_exchange"])
	}
	// Absent reference fields are omitted, not null placeholders.
	if _, present := a.Details["description"]; present {
		t.Error("absent description should be omitted from details")
	}
}

func TestToAssetEnriched_NoReference(t *testing.T) {
	a, ok := ToAssetEnriched("TSLA", Raw{"c": 250.0, "v": 1000.0}, nil)
	if !ok {
		t.Fatal("expected asset from price point alone")
	}
	if a.Name != "TSLA" || a.Currency != "USD" {
		t.Errorf("fallbacks wrong: %+v", a)
	}
}

func TestToAssetEnriched_NoPrice(t *testing.T) {
	if _, ok := ToAssetEnriched("X", Raw{"v": 1.0}, nil); ok {
		t.Error("price point without close should be absent")
	}
}

func TestToCandleStick(t *testing.T) {
	c, ok := ToCandleStick(Raw{
		"o": 100.0, "h": 106.0, "l": 99.0, "c": 105.0, "v": 1_000_000.0,
		"t": 1_700_000_000_000.0,
	})
	if !ok {
		t.Fatal("expected candle")
	}
	want := time.UnixMilli(1_700_000_000_000).UTC()
	if !c.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", c.Timestamp, want)
	}
	if c.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp location = %v, want UTC", c.Timestamp.Location())
	}
	if !c.IsGreen() || c.IsRed() {
		t.Error("close above open should be green")
	}
	if c.BodySize() != 5.0 {
		t.Errorf("body = %v, want 5.0", c.BodySize())
	}
	if c.UpperWick() != 1.0 {
		t.Errorf("upper wick = %v, want 1.0", c.UpperWick())
	}
	if c.LowerWick() != 1.0 {
		t.Errorf("lower wick = %v, want 1.0", c.LowerWick())
	}
	if c.PriceRange() != 7.0 {
		t.Errorf("range = %v, want 7.0", c.PriceRange())
	}
}

func TestToCandleStick_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
	}{
		{"missing time", Raw{"o": 1.0, "h": 2.0, "l": 0.5, "c": 1.5, "v": 10.0}},
		{"missing high", Raw{"o": 1.0, "l": 0.5, "c": 1.5, "v": 10.0, "t": 1.0}},
		{"string volume", Raw{"o": 1.0, "h": 2.0, "l": 0.5, "c": 1.5, "v": "x", "t": 1.0}},
		{"empty", Raw{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ToCandleStick(tt.raw); ok {
				t.Error("malformed bar should yield absent")
			}
		})
	}
}
