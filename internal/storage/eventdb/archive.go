// Package eventdb archives PriceStored events in a SQL database so that
// past submissions can be queried after the in-process stream is gone.
package eventdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/LeJamon/goPriceOracle/internal/core/events"
	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

// Supported drivers, named as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects the archive database.
type Config struct {
	Driver  string        `mapstructure:"driver"`
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Validate checks the driver and DSN.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Driver)
	}
	if strings.TrimSpace(c.DSN) == "" {
		return ErrMissingDSN
	}
	return nil
}

// Record is one archived event.
type Record struct {
	ID         int64        `json:"id"`
	Height     uint64       `json:"height"`
	Price      fixed.U16F16 `json:"price"`
	Submitter  string       `json:"submitter"`
	Snapshot   bool         `json:"snapshot"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// Archive stores events in the price_events table.
type Archive struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Archive)

func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Archive) { a.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Archive) { a.metrics = m }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Archive) { a.now = now }
}

// Open connects, pings and creates the schema.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Archive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newError("open", "invalid configuration", err)
	}
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, newError("open", "failed to open database connection", err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	a := New(db, cfg.Driver, append([]Option{withTimeout(cfg.Timeout)}, opts...)...)

	pingCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, newError("open", "failed to ping database", err)
	}
	if err := a.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func withTimeout(d time.Duration) Option {
	return func(a *Archive) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New wraps an already open database. Init must be called before use.
func New(db *sql.DB, driver string, opts ...Option) *Archive {
	a := &Archive{
		db:      db,
		driver:  driver,
		timeout: 5 * time.Second,
		log:     logrus.StandardLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithField("module", "eventdb")
	return a
}

// Init creates the table and index if missing.
func (a *Archive) Init(ctx context.Context) error {
	if a.db == nil {
		return ErrArchiveClosed
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if a.driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}
	queries := []string{
		`CREATE TABLE IF NOT EXISTS price_events (
			id ` + id + `,
			height BIGINT NOT NULL,
			price BIGINT NOT NULL,
			submitter TEXT NOT NULL,
			snapshot BOOLEAN NOT NULL,
			recorded_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_events_height ON price_events(height)`,
	}
	for _, q := range queries {
		if _, err := a.db.ExecContext(ctx, q); err != nil {
			return newError("init", "failed to execute schema query", err)
		}
	}
	return nil
}

// Record inserts one event.
func (a *Archive) Record(ctx context.Context, ev events.PriceStored) error {
	if a.db == nil {
		return ErrArchiveClosed
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	q := a.rebind(`INSERT INTO price_events (height, price, submitter, snapshot, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := a.db.ExecContext(ctx, q,
		int64(ev.Height), int64(ev.Price.Bits()), ev.Submitter, ev.Snapshot, a.now().UnixMilli())
	if err != nil {
		return newError("record", "failed to insert event", err)
	}
	a.metrics.ObserveEventArchived()
	return nil
}

// Recent returns up to limit events, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Record, error) {
	if a.db == nil {
		return nil, ErrArchiveClosed
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	q := a.rebind(`SELECT id, height, price, submitter, snapshot, recorded_at FROM price_events ORDER BY id DESC LIMIT ?`)
	rows, err := a.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, newError("recent", "failed to query events", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r              Record
			height, price  int64
			recordedMillis int64
		)
		if err := rows.Scan(&r.ID, &height, &price, &r.Submitter, &r.Snapshot, &recordedMillis); err != nil {
			return nil, newError("recent", "failed to scan event", err)
		}
		r.Height = uint64(height)
		r.Price = fixed.FromBits(uint32(price))
		r.RecordedAt = time.UnixMilli(recordedMillis).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, newError("recent", "failed to iterate events", err)
	}
	return out, nil
}

// Run records events from ch until ch is closed or ctx is done. A failed
// insert is logged and the event skipped.
func (a *Archive) Run(ctx context.Context, ch <-chan events.PriceStored) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := a.Record(ctx, ev); err != nil {
				a.log.WithError(err).WithField("height", ev.Height).Error("archive event failed")
			}
		}
	}
}

// Close releases the connection pool.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		return newError("close", "failed to close database connection", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (a *Archive) rebind(q string) string {
	if a.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
