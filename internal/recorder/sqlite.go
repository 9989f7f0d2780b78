package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"PeriodReturns/internal/model"
)

// SQLiteCache persists daily bars to a SQLite database.
type SQLiteCache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the HTTP surface can read while a scheduled run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite bar cache opened: %s", dbPath)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol     TEXT    NOT NULL,
			day        TEXT    NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL    NOT NULL,
			adj_close  REAL,
			volume     REAL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_bars_day ON daily_bars(day)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *SQLiteCache) Coverage(ctx context.Context, symbol string) (first, last model.Date, ok bool, err error) {
	var lo, hi sql.NullString
	err = c.db.QueryRowContext(ctx,
		`SELECT MIN(day), MAX(day) FROM daily_bars WHERE symbol = ?`, symbol,
	).Scan(&lo, &hi)
	if err != nil {
		return model.Date{}, model.Date{}, false, fmt.Errorf("query coverage %s: %w", symbol, err)
	}
	if !lo.Valid || !hi.Valid {
		return model.Date{}, model.Date{}, false, nil
	}
	if first, err = model.ParseDate(lo.String); err != nil {
		return model.Date{}, model.Date{}, false, err
	}
	if last, err = model.ParseDate(hi.String); err != nil {
		return model.Date{}, model.Date{}, false, err
	}
	return first, last, true, nil
}

func (c *SQLiteCache) SaveBars(ctx context.Context, symbol string, bars []model.OHLCV) error {
	if len(bars) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_bars
		(symbol, day, open, high, low, close, adj_close, volume, fetched_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, day) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, adj_close = excluded.adj_close,
			volume = excluded.volume, fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			symbol, model.DateOf(b.Time).String(),
			b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume, now,
		); err != nil {
			return fmt.Errorf("upsert bar %s %s: %w", symbol, model.DateOf(b.Time), err)
		}
	}
	return tx.Commit()
}

func (c *SQLiteCache) LoadBars(ctx context.Context, symbol string, from, to model.Date) ([]model.OHLCV, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT day, open, high, low, close, adj_close, volume
		FROM daily_bars WHERE symbol = ? AND day >= ? AND day <= ? ORDER BY day`,
		symbol, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query bars %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var (
			day string
			b   model.OHLCV
		)
		if err := rows.Scan(&day, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		d, err := model.ParseDate(day)
		if err != nil {
			return nil, err
		}
		b.Time = d.Time()
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func (c *SQLiteCache) Close() error {
	log.Println("[INFO] closing sqlite bar cache")
	return c.db.Close()
}
