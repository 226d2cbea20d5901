package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketLens/internal/api"
	"MarketLens/internal/cache"
	"MarketLens/internal/config"
	"MarketLens/internal/market"
	"MarketLens/internal/model"
	"MarketLens/internal/provider"
	"MarketLens/internal/recorder"
	"MarketLens/internal/scheduler"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MarketLens starting...")

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init cache backend
	defaultTTL := time.Duration(cfg.Cache.DefaultTTLSeconds) * time.Second
	var store cache.Cache
	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedis(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, defaultTTL)
		if err != nil {
			log.Printf("[WARN] redis unavailable, falling back to memory cache: %v", err)
			store = cache.NewMemory(defaultTTL)
		} else {
			store = rc
		}
	} else {
		store = cache.NewMemory(defaultTTL)
	}
	defer store.Close()
	log.Printf("[INFO] cache backend: %s", store.Stats().Backend)

	// Init provider client
	source := provider.NewPolygonClient(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.RateLimit, cfg.Proxy)
	log.Printf("[INFO] data source: %s, %d calls/min", source.Name(), cfg.Provider.RateLimit)

	// Init market service
	svc := market.NewService(source, store, market.TTLs{
		Overview:     time.Duration(cfg.TTL.OverviewSeconds) * time.Second,
		AssetList:    time.Duration(cfg.TTL.AssetListSeconds) * time.Second,
		Candles:      time.Duration(cfg.TTL.CandlesSeconds) * time.Second,
		AssetDetails: time.Duration(cfg.TTL.AssetDetailsSeconds) * time.Second,
	})

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	markets := make([]model.MarketType, 0, len(cfg.Markets))
	for _, m := range cfg.Markets {
		markets = append(markets, model.ParseMarketType(m))
	}
	sched := scheduler.NewScheduler(ctx, svc, rec, markets)
	if err := sched.RegisterAll(cfg.Schedule.WarmCron, cfg.Schedule.InvalidateCron, cfg.Schedule.SnapshotCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: warm the cache immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, warming cache now")
		go sched.WarmNow()
	}

	// HTTP server
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(svc).Handler(),
	}
	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] MarketLens stopped")
}
