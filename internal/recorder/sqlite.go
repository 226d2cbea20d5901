package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists snapshots to a local SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS overview_snapshots (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp          INTEGER NOT NULL,
			market             TEXT NOT NULL,
			total_assets       INTEGER,
			top_gainer         TEXT,
			top_gainer_pct     REAL,
			top_loser          TEXT,
			top_loser_pct      REAL,
			most_active        TEXT,
			most_active_volume REAL,
			cache_hit_rate     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_overview_ts ON overview_snapshots(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_overview_market ON overview_snapshots(market)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordOverview(snap *OverviewSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO overview_snapshots
		(timestamp, market, total_assets,
		 top_gainer, top_gainer_pct, top_loser, top_loser_pct,
		 most_active, most_active_volume, cache_hit_rate)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), snap.Market, snap.TotalAssets,
		snap.TopGainer, snap.TopGainerPct, snap.TopLoser, snap.TopLoserPct,
		snap.MostActive, snap.MostActiveVolume, snap.CacheHitRate,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
