package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"forecast-go/internal/state"

	"github.com/lib/pq"
)

// PostgresConfig holds connection details
type PostgresConfig struct {
	DSN      string // takes precedence over the individual fields
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require"
}

func (c PostgresConfig) connString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// PostgresSource loads indicator tables from the public schema. The dataset
// ref is the table name.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens and pings a connection
func NewPostgresSource(ctx context.Context, cfg PostgresConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", cfg.connString())
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresSource{db: db}, nil
}

func (p *PostgresSource) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *PostgresSource) Location(ref string) string {
	return "postgres table " + pq.QuoteIdentifier(ref)
}

func (p *PostgresSource) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name;
	`
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, err
		}
		tables = append(tables, tableName)
	}
	return tables, rows.Err()
}

// Load reads a whole table. The table must appear in ListTables, otherwise
// ErrNotFound is returned. Rows come back in physical order.
func (p *PostgresSource) Load(ctx context.Context, ref string) (*state.DataFrame, error) {
	tables, err := p.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	found := false
	for _, t := range tables {
		if t == ref {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.Location(ref))
	}

	rows, err := p.db.QueryContext(ctx, "SELECT * FROM "+pq.QuoteIdentifier(ref))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	df := &state.DataFrame{
		Headers:  columns,
		Rows:     [][]string{},
		FilePath: p.Location(ref),
		FileName: ref,
	}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = cellString(v)
		}
		df.Rows = append(df.Rows, record)
	}

	return df, rows.Err()
}

// cellString renders a scanned driver value as a CSV-style cell
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		// Handle byte slices (common for strings in DB drivers)
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprint(val)
	}
}
