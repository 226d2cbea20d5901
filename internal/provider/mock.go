package provider

import (
	"context"
	"sync"

	"MarketLens/internal/model"
	"MarketLens/internal/normalize"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Daily      []normalize.Raw
	References map[string]normalize.Raw
	Bars       []normalize.Raw
	SearchHits []normalize.Raw
	Err        error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockSource) Name() string { return "mock" }

// Calls reports how many times the named method was invoked.
func (m *MockSource) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockSource) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockSource) DailySummary(_ context.Context, _ string) ([]normalize.Raw, error) {
	m.record("DailySummary")
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Daily == nil {
		return nil, ErrNoResults
	}
	return m.Daily, nil
}

func (m *MockSource) TickerReference(_ context.Context, symbol string) (normalize.Raw, error) {
	m.record("TickerReference")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.References[symbol], nil
}

func (m *MockSource) Candles(_ context.Context, _ string, _ int, _, _, _ string, _ int) ([]normalize.Raw, error) {
	m.record("Candles")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Bars, nil
}

func (m *MockSource) SearchTickers(_ context.Context, _ string, _ model.MarketType) ([]normalize.Raw, error) {
	m.record("SearchTickers")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.SearchHits, nil
}
