package scheduler

import (
	"context"
	"fmt"
	"log"

	"MarketLens/internal/market"
	"MarketLens/internal/model"
	"MarketLens/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the background cadence: cache warm-up so the first request
// after a quiet period is not a cold miss, invalidation at the session
// roll-over, and end-of-day snapshot recording.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *market.Service
	Recorder recorder.Recorder
	Markets  []model.MarketType
	Ctx      context.Context
}

// NewScheduler creates a Scheduler for the given markets.
func NewScheduler(ctx context.Context, svc *market.Service, rec recorder.Recorder, markets []model.MarketType) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Recorder: rec,
		Markets:  markets,
		Ctx:      ctx,
	}
}

// RegisterAll registers the warm-up, invalidation, and snapshot tasks.
func (s *Scheduler) RegisterAll(warmCron, invalidateCron, snapshotCron string) error {
	if _, err := s.Cron.AddFunc(warmCron, s.warmTask); err != nil {
		return fmt.Errorf("register warm task: %w", err)
	}
	if _, err := s.Cron.AddFunc(invalidateCron, s.invalidateTask); err != nil {
		return fmt.Errorf("register invalidate task: %w", err)
	}
	if _, err := s.Cron.AddFunc(snapshotCron, s.snapshotTask); err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// WarmNow executes the warm-up task immediately (for RUN_ON_START).
func (s *Scheduler) WarmNow() {
	s.warmTask()
}

func (s *Scheduler) warmTask() {
	log.Println("[INFO] warming overview cache")
	for _, m := range s.Markets {
		if _, err := s.Service.GetOverview(s.Ctx, m); err != nil {
			log.Printf("[WARN] warm %s overview: %v", m, err)
		}
	}
}

func (s *Scheduler) invalidateTask() {
	// New trading session: yesterday's summaries and lists are stale now,
	// not merely old.
	removed := s.Service.Invalidate(s.Ctx, "market_overview")
	removed += s.Service.Invalidate(s.Ctx, "assets_list")
	log.Printf("[INFO] session roll-over, invalidated %d cached views", removed)
}

func (s *Scheduler) snapshotTask() {
	log.Println("[INFO] recording end-of-day snapshots")
	for _, m := range s.Markets {
		overview, err := s.Service.GetOverview(s.Ctx, m)
		if err != nil {
			log.Printf("[ERROR] snapshot %s: %v", m, err)
			continue
		}
		snap := &recorder.OverviewSnapshot{
			Market:       string(m),
			TotalAssets:  overview.TotalAssets,
			CacheHitRate: s.Service.CacheStats().HitRate,
		}
		if len(overview.TopGainers) > 0 {
			snap.TopGainer = overview.TopGainers[0].Symbol
			snap.TopGainerPct = overview.TopGainers[0].ChangePercent
		}
		if len(overview.TopLosers) > 0 {
			snap.TopLoser = overview.TopLosers[0].Symbol
			snap.TopLoserPct = overview.TopLosers[0].ChangePercent
		}
		if len(overview.MostActive) > 0 {
			snap.MostActive = overview.MostActive[0].Symbol
			snap.MostActiveVolume = overview.MostActive[0].Volume
		}
		if err := s.Recorder.RecordOverview(snap); err != nil {
			log.Printf("[ERROR] record snapshot %s: %v", m, err)
		}
	}
}
