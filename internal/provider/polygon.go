package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MarketLens/internal/model"
	"MarketLens/internal/normalize"
	"MarketLens/internal/ratelimit"
)

// PolygonClient implements Source against a Polygon-compatible REST API.
// Every request passes through the rate limiter before leaving the process,
// so concurrent callers jointly respect the provider's quota.
type PolygonClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Limiter *ratelimit.Limiter
}

// NewPolygonClient creates a client with optional proxy support. quota is
// the provider's allowed calls per minute.
func NewPolygonClient(baseURL, apiKey string, quota int, proxyURL string) *PolygonClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &PolygonClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: ratelimit.PerMinute(quota),
	}
}

func (p *PolygonClient) Name() string { return "polygon" }

// get performs one rate-limited request and decodes the JSON body into dest.
func (p *PolygonClient) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	if err := p.Limiter.Admit(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", p.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: fmt.Sprintf("read body: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Endpoint: endpoint, Status: resp.StatusCode, Message: excerpt(body)}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &UpstreamError{Endpoint: endpoint, Message: fmt.Sprintf("decode: %v", err)}
	}
	return nil
}

// excerpt trims an error body to a loggable size.
func excerpt(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

type batchResponse struct {
	Status       string          `json:"status"`
	ResultsCount int             `json:"resultsCount"`
	Results      []normalize.Raw `json:"results"`
}

func (p *PolygonClient) DailySummary(ctx context.Context, date string) ([]normalize.Raw, error) {
	endpoint := fmt.Sprintf("/v2/aggs/grouped/locale/us/market/stocks/%s", url.PathEscape(date))
	params := url.Values{}
	params.Set("adjusted", "true")

	var resp batchResponse
	if err := p.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, ErrNoResults
	}
	return resp.Results, nil
}

type referenceResponse struct {
	Status  string        `json:"status"`
	Results normalize.Raw `json:"results"`
}

func (p *PolygonClient) TickerReference(ctx context.Context, symbol string) (normalize.Raw, error) {
	endpoint := fmt.Sprintf("/v3/reference/tickers/%s", url.PathEscape(strings.ToUpper(symbol)))

	var resp referenceResponse
	if err := p.get(ctx, endpoint, nil, &resp); err != nil {
		// An unknown symbol is absence, not failure.
		if ue, ok := err.(*UpstreamError); ok && ue.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return resp.Results, nil
}

func (p *PolygonClient) Candles(ctx context.Context, symbol string, multiplier int, timespan, fromDate, toDate string, limit int) ([]normalize.Raw, error) {
	from, err := dateToMillis(fromDate)
	if err != nil {
		return nil, fmt.Errorf("from date: %w", err)
	}
	to, err := dateToMillis(toDate)
	if err != nil {
		return nil, fmt.Errorf("to date: %w", err)
	}

	endpoint := fmt.Sprintf("/v2/aggs/ticker/%s/range/%d/%s/%d/%d",
		url.PathEscape(strings.ToUpper(symbol)), multiplier, timespan, from, to)
	params := url.Values{}
	params.Set("adjusted", "true")
	params.Set("sort", "asc")
	params.Set("limit", fmt.Sprint(limit))

	var resp batchResponse
	if err := p.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, nil
	}
	return resp.Results, nil
}

type searchResponse struct {
	Status  string          `json:"status"`
	Results []normalize.Raw `json:"results"`
}

func (p *PolygonClient) SearchTickers(ctx context.Context, query string, market model.MarketType) ([]normalize.Raw, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", "20")
	if market != "" {
		params.Set("market", string(market))
	}

	var resp searchResponse
	if err := p.get(ctx, "/v3/reference/tickers", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// dateToMillis converts a YYYY-MM-DD date to a millisecond epoch; values
// that already look like an epoch pass through.
func dateToMillis(date string) (int64, error) {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.UnixMilli(), nil
	}
	var millis int64
	if _, err := fmt.Sscan(date, &millis); err != nil {
		return 0, fmt.Errorf("unrecognized date %q", date)
	}
	return millis, nil
}
