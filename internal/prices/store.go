package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/napolitain/solver-simco/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_snapshots (
	ts       INTEGER NOT NULL,
	resource TEXT    NOT NULL,
	price    REAL    NOT NULL,
	PRIMARY KEY (ts, resource)
);
CREATE TABLE IF NOT EXISTS optimization_runs (
	id              TEXT    PRIMARY KEY,
	created_at      INTEGER NOT NULL,
	objective       TEXT    NOT NULL,
	seed            INTEGER NOT NULL,
	profit_per_hour REAL    NOT NULL,
	result          TEXT    NOT NULL
);`

// Store persists price snapshots and optimization run summaries in SQLite
type Store struct {
	conn *sqlx.DB
}

type priceRow struct {
	TS       int64   `db:"ts"`
	Resource string  `db:"resource"`
	Price    float64 `db:"price"`
}

// RunRecord is a saved optimization result
type RunRecord struct {
	ID            string    `db:"id"`
	CreatedAt     time.Time `db:"-"`
	CreatedUnix   int64     `db:"created_at"`
	Objective     string    `db:"objective"`
	Seed          int64     `db:"seed"`
	ProfitPerHour float64   `db:"profit_per_hour"`
	Result        string    `db:"result"`
}

// OpenStore opens or creates a SQLite database at path
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// SaveSnapshots inserts snapshots, ignoring prices already stored for the same timestamp
func (s *Store) SaveSnapshots(ctx context.Context, snapshots []models.PriceSnapshot) (int, error) {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx,
		`INSERT OR IGNORE INTO price_snapshots (ts, resource, price) VALUES (:ts, :resource, :price)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, snap := range snapshots {
		ts := snap.Timestamp.UTC().Unix()
		for _, id := range sortedPriceIDs(snap.Prices) {
			res, err := stmt.ExecContext(ctx, priceRow{TS: ts, Resource: string(id), Price: snap.Prices[id]})
			if err != nil {
				return 0, fmt.Errorf("insert %s@%d: %w", id, ts, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				inserted++
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// LoadHistory reads all snapshots at or after since into a History
func (s *Store) LoadHistory(ctx context.Context, since time.Time) (*History, error) {
	var rows []priceRow
	err := s.conn.SelectContext(ctx, &rows,
		`SELECT ts, resource, price FROM price_snapshots WHERE ts >= ? ORDER BY ts, resource`,
		since.UTC().Unix())
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	var snapshots []models.PriceSnapshot
	for _, r := range rows {
		if len(snapshots) == 0 || snapshots[len(snapshots)-1].Timestamp.Unix() != r.TS {
			snapshots = append(snapshots, models.PriceSnapshot{
				Timestamp: time.Unix(r.TS, 0).UTC(),
				Prices:    make(map[models.ResourceID]float64),
			})
		}
		snapshots[len(snapshots)-1].Prices[models.ResourceID(r.Resource)] = r.Price
	}
	return NewHistory(snapshots), nil
}

// SaveRun stores a run summary, assigning a new id when none is set
func (s *Store) SaveRun(ctx context.Context, run RunRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedUnix = run.CreatedAt.UTC().Unix()

	_, err := s.conn.NamedExecContext(ctx,
		`INSERT INTO optimization_runs (id, created_at, objective, seed, profit_per_hour, result)
		 VALUES (:id, :created_at, :objective, :seed, :profit_per_hour, :result)`, run)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []RunRecord
	err := s.conn.SelectContext(ctx, &runs,
		`SELECT id, created_at, objective, seed, profit_per_hour, result
		 FROM optimization_runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	for i := range runs {
		runs[i].CreatedAt = time.Unix(runs[i].CreatedUnix, 0).UTC()
	}
	return runs, nil
}

func sortedPriceIDs(prices map[models.ResourceID]float64) []models.ResourceID {
	ids := make([]models.ResourceID, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	return models.SortResourceIDs(ids)
}
