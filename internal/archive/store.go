// Package archive keeps a history of outlook runs in ClickHouse so that
// forecasts can be compared across runs.
package archive

import (
	"context"
	"fmt"
	"time"

	"forecast-go/internal/service"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 500
)

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "forecast",
		Username: "default",
	}
}

// EntryRow is one archived indicator outcome.
type EntryRow struct {
	RunID       uuid.UUID
	Position    uint16
	Name        string
	File        string
	Column      string
	Regime      string
	Current     decimal.Decimal
	Forecast    decimal.Decimal
	Target      decimal.Decimal
	Degraded    uint8
	GeneratedAt time.Time
}

// RunSummary is a row of the run history listing.
type RunSummary struct {
	ID           uuid.UUID `json:"id"`
	Country      string    `json:"country"`
	Years        int       `json:"years"`
	GeneratedAt  time.Time `json:"generated_at"`
	Entries      int       `json:"entries"`
	Problems     []string  `json:"problems"`
	AdviceStatus string    `json:"advice_status"`
}

// Store archives outlooks in ClickHouse
type Store struct {
	conn driver.Conn
	cfg  *Config
}

// NewStore opens a ClickHouse connection and verifies it
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info().Str("host", cfg.Host).Int("port", cfg.Port).Str("database", cfg.Database).Msg("Connected to ClickHouse archive")
	return &Store{conn: conn, cfg: cfg}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS outlook_runs (
		id            UUID,
		country       String,
		years         UInt16,
		generated_at  DateTime64(3, 'UTC'),
		entries       UInt16,
		problems      Array(String),
		advice_status LowCardinality(String),
		advice        String
	) ENGINE = MergeTree
	ORDER BY (generated_at, id)`,
	`CREATE TABLE IF NOT EXISTS outlook_entries (
		run_id       UUID,
		position     UInt16,
		name         String,
		file         String,
		column       String,
		regime       LowCardinality(String),
		current      Decimal(18, 4),
		forecast     Decimal(18, 4),
		target       Decimal(18, 4),
		degraded     UInt8,
		generated_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	ORDER BY (name, generated_at)`,
}

// EnsureSchema creates the archive tables if they are missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create archive schema: %w", err)
		}
	}
	return nil
}

// SaveOutlook inserts the run header and its entries
func (s *Store) SaveOutlook(ctx context.Context, o *service.Outlook) error {
	if o.ID == uuid.Nil {
		return fmt.Errorf("outlook has no run id")
	}

	err := s.conn.Exec(ctx, `
		INSERT INTO outlook_runs (
			id, country, years, generated_at, entries, problems, advice_status, advice
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		o.ID, o.Country, uint16(o.Years), o.GeneratedAt, uint16(len(o.Entries)),
		o.Problems, o.AdviceStatus, o.Advice,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outlook run: %w", err)
	}

	rows := EntryRows(o)
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO outlook_entries (
			run_id, position, name, file, column, regime,
			current, forecast, target, degraded, generated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, r := range rows {
		if err := batch.Append(
			r.RunID, r.Position, r.Name, r.File, r.Column, r.Regime,
			r.Current, r.Forecast, r.Target, r.Degraded, r.GeneratedAt,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send outlook entries: %w", err)
	}

	log.Debug().Str("run_id", o.ID.String()).Int("entries", len(rows)).Msg("Outlook archived")
	return nil
}

// ListOutlooks returns the most recent runs, newest first
func (s *Store) ListOutlooks(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, country, years, generated_at, entries, problems, advice_status
		FROM outlook_runs
		ORDER BY generated_at DESC
		LIMIT ?
	`, NormalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list outlook runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var run RunSummary
		var years, entries uint16
		if err := rows.Scan(
			&run.ID, &run.Country, &years, &run.GeneratedAt, &entries, &run.Problems, &run.AdviceStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outlook run: %w", err)
		}
		run.Years = int(years)
		run.Entries = int(entries)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// EntryRows flattens an outlook into archive rows in catalogue order
func EntryRows(o *service.Outlook) []EntryRow {
	rows := make([]EntryRow, 0, len(o.Entries))
	for i, e := range o.Entries {
		var degraded uint8
		if e.Degraded {
			degraded = 1
		}
		rows = append(rows, EntryRow{
			RunID:       o.ID,
			Position:    uint16(i),
			Name:        e.Name,
			File:        e.File,
			Column:      e.Column,
			Regime:      e.Regime,
			Current:     decimal.NewFromFloat(e.Current).Round(4),
			Forecast:    decimal.NewFromFloat(e.Forecast).Round(4),
			Target:      decimal.NewFromFloat(e.Target).Round(4),
			Degraded:    degraded,
			GeneratedAt: o.GeneratedAt,
		})
	}
	return rows
}

// NormalizeLimit clamps a requested page size into 1..MaxListLimit
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
