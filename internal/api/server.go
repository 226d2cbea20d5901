// Package api is the thin HTTP boundary over the market service. It only
// parses parameters, maps typed errors to status codes, and renders JSON;
// all business behavior lives behind market.Service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"MarketLens/internal/market"
	"MarketLens/internal/model"
	"MarketLens/internal/provider"
)

// Server exposes the query surface over HTTP.
type Server struct {
	service *market.Service
	mux     *http.ServeMux
}

// NewServer creates a Server and registers its routes.
func NewServer(svc *market.Service) *Server {
	s := &Server{service: svc, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /api/v1/markets/{market}/overview", s.handleOverview)
	s.mux.HandleFunc("GET /api/v1/markets/{market}/assets", s.handleAssets)
	s.mux.HandleFunc("GET /api/v1/assets/{symbol}", s.handleAssetDetails)
	s.mux.HandleFunc("GET /api/v1/assets/{symbol}/candles", s.handleCandles)
	s.mux.HandleFunc("GET /api/v1/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/v1/cache/stats", s.handleCacheStats)
	s.mux.HandleFunc("DELETE /api/v1/cache", s.handleCacheClear)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	marketType := model.ParseMarketType(r.PathValue("market"))
	overview, err := s.service.GetOverview(r.Context(), marketType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	marketType := model.ParseMarketType(r.PathValue("market"))
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	assets, err := s.service.GetAssets(r.Context(), marketType, limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"assets": assets,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleAssetDetails(w http.ResponseWriter, r *http.Request) {
	asset, err := s.service.GetAssetDetails(r.Context(), r.PathValue("symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) handleCandles(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")
	timespan := r.URL.Query().Get("timespan")
	multiplier := queryInt(r, "multiplier", 1)
	limit := queryInt(r, "limit", 100)
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	candles, err := s.service.GetCandles(r.Context(), symbol, timespan, multiplier, limit, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":  symbol,
		"candles": candles,
		"count":   len(candles),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	var marketType model.MarketType
	if m := r.URL.Query().Get("market"); m != "" {
		marketType = model.ParseMarketType(m)
	}

	assets, err := s.service.SearchAssets(r.Context(), query, marketType)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": assets,
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.CacheStats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "pattern query parameter is required"})
		return
	}
	removed := s.service.Invalidate(r.Context(), pattern)
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// writeError maps the service's error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var upstream *provider.UpstreamError
	switch {
	case errors.Is(err, market.ErrNotFound), errors.Is(err, market.ErrNoData):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.As(err, &upstream):
		log.Printf("[ERROR] upstream failure: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "upstream provider failure"})
	default:
		log.Printf("[ERROR] request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
