package aggregate

import (
	"testing"

	"MarketLens/internal/model"
	"MarketLens/internal/normalize"
)

func summary(symbol string, changePct, volume float64) *model.MarketSummary {
	return &model.MarketSummary{Symbol: symbol, ChangePercent: changePct, Volume: volume}
}

func TestTopGainers(t *testing.T) {
	records := []*model.MarketSummary{
		summary("A", 1.5, 100),
		summary("B", -2.0, 200),
		summary("C", 4.2, 300),
		summary("D", 0, 400),
		summary("E", 4.2, 500),
	}
	got := TopGainers(records, 10)
	if len(got) != 3 {
		t.Fatalf("expected 3 gainers, got %d", len(got))
	}
	// Ties broken by input order: C before E.
	want := []string{"C", "E", "A"}
	for i, w := range want {
		if got[i].Symbol != w {
			t.Errorf("gainers[%d] = %s, want %s", i, got[i].Symbol, w)
		}
	}
}

func TestTopLosers(t *testing.T) {
	records := []*model.MarketSummary{
		summary("A", -1.5, 100),
		summary("B", 2.0, 200),
		summary("C", -4.2, 300),
		summary("D", 0, 400),
	}
	got := TopLosers(records, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 losers, got %d", len(got))
	}
	if got[0].Symbol != "C" || got[1].Symbol != "A" {
		t.Errorf("losers order = [%s %s], want [C A]", got[0].Symbol, got[1].Symbol)
	}
}

func TestGainersAndLosersDisjoint(t *testing.T) {
	records := []*model.MarketSummary{
		summary("A", 1.0, 1), summary("B", -1.0, 2), summary("C", 0, 3),
		summary("D", 3.3, 4), summary("E", -0.1, 5),
	}
	gainers := TopGainers(records, 10)
	losers := TopLosers(records, 10)

	inGainers := map[string]bool{}
	for _, g := range gainers {
		inGainers[g.Symbol] = true
	}
	for _, l := range losers {
		if inGainers[l.Symbol] {
			t.Errorf("%s appears in both gainers and losers", l.Symbol)
		}
	}
	// Zero-change records belong to neither.
	for _, s := range append(gainers, losers...) {
		if s.Symbol == "C" {
			t.Error("zero-change record ranked as gainer or loser")
		}
	}
}

func TestMostActive_IncludesZeroChange(t *testing.T) {
	records := []*model.MarketSummary{
		summary("A", 1.0, 100),
		summary("B", 0, 900),
		summary("C", -1.0, 500),
	}
	got := MostActive(records, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].Symbol != "B" || got[1].Symbol != "C" {
		t.Errorf("order = [%s %s], want [B C]", got[0].Symbol, got[1].Symbol)
	}
}

func TestRankingsCapAtN(t *testing.T) {
	var records []*model.MarketSummary
	for i := 0; i < 30; i++ {
		records = append(records, summary("S", 1.0, float64(i)))
	}
	if got := TopGainers(records, 10); len(got) != 10 {
		t.Errorf("gainers len = %d, want 10", len(got))
	}
	if got := MostActive(records, 10); len(got) != 10 {
		t.Errorf("most active len = %d, want 10", len(got))
	}
}

func TestFilterTopByVolume(t *testing.T) {
	records := []normalize.Raw{
		{"T": "A", "v": 100.0},
		{"T": "B"}, // absent volume: excluded, not zero
		{"T": "C", "v": 300.0},
		{"T": "D", "v": "many"}, // non-numeric volume: excluded
		{"T": "E", "v": 200.0},
	}
	got := FilterTopByVolume(records, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0]["T"] != "C" || got[1]["T"] != "E" {
		t.Errorf("order = [%v %v], want [C E]", got[0]["T"], got[1]["T"])
	}

	all := FilterTopByVolume(records, 100)
	if len(all) != 3 {
		t.Errorf("expected 3 records with numeric volume, got %d", len(all))
	}
	for _, r := range all {
		if r["T"] == "B" || r["T"] == "D" {
			t.Errorf("record %v without numeric volume survived the filter", r["T"])
		}
	}
}

func TestDistinctSymbols(t *testing.T) {
	records := []*model.MarketSummary{
		summary("A", 0, 1), summary("B", 0, 2), summary("A", 0, 3),
	}
	if got := DistinctSymbols(records); got != 2 {
		t.Errorf("distinct = %d, want 2", got)
	}
}

func TestBuildAssetList_DedupBeforePagination(t *testing.T) {
	records := []normalize.Raw{
		{"T": "AAPL", "c": 105.0, "v": 1_000_000.0},
		{"T": "MSFT", "c": 195.0, "v": 500_000.0},
		{"T": "AAPL", "c": 104.0, "v": 900_000.0},
		{"T": "TSLA", "c": 250.0, "v": 800_000.0},
	}

	got := BuildAssetList(records, model.MarketStocks, 10, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(got))
	}
	if got[0].Symbol != "AAPL" || *got[0].Volume != 1_000_000 {
		t.Errorf("first occurrence should win: %+v", got[0])
	}

	seen := map[string]int{}
	for _, a := range got {
		seen[a.Symbol]++
	}
	if seen["AAPL"] != 1 {
		t.Errorf("AAPL appears %d times, want exactly 1", seen["AAPL"])
	}
}

func TestBuildAssetList_Idempotent(t *testing.T) {
	records := []normalize.Raw{
		{"T": "A", "c": 1.0, "v": 10.0},
		{"T": "B", "c": 2.0, "v": 20.0},
		{"T": "C", "c": 3.0, "v": 30.0},
	}
	first := BuildAssetList(records, model.MarketStocks, 2, 1)
	second := BuildAssetList(records, model.MarketStocks, 2, 1)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Symbol != second[i].Symbol {
			t.Errorf("position %d differs: %s vs %s", i, first[i].Symbol, second[i].Symbol)
		}
	}
	if len(first) != 2 || first[0].Symbol != "B" || first[1].Symbol != "C" {
		t.Errorf("page [1,3) wrong: %+v", first)
	}
}

func TestBuildAssetList_OffsetBeyondEnd(t *testing.T) {
	records := []normalize.Raw{{"T": "A", "c": 1.0, "v": 10.0}}
	if got := BuildAssetList(records, model.MarketStocks, 10, 5); len(got) != 0 {
		t.Errorf("expected empty page, got %d assets", len(got))
	}
}

func TestBuildAssetList_SkipsMalformed(t *testing.T) {
	records := []normalize.Raw{
		{"T": "A", "c": 1.0, "v": 10.0},
		{"T": "BAD"}, // no close, no volume
		{"c": 2.0, "v": 20.0}, // no symbol
		{"T": "B", "c": 3.0, "v": 30.0},
	}
	got := BuildAssetList(records, model.MarketStocks, 10, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(got))
	}
	if got[0].Symbol != "A" || got[1].Symbol != "B" {
		t.Errorf("got [%s %s], want [A B]", got[0].Symbol, got[1].Symbol)
	}
}
