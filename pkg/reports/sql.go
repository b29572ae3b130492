package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS spa_error_reports (
	id          TEXT PRIMARY KEY,
	received    TIMESTAMPTZ NOT NULL,
	remote_addr TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL DEFAULT '',
	url         TEXT NOT NULL DEFAULT '',
	report      JSONB NOT NULL,
	raw         JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS spa_error_reports_received_idx ON spa_error_reports (received DESC);
`

// SQLStore keeps reports in PostgreSQL.
type SQLStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

// NewSQLStore connects to PostgreSQL through the pgx driver.
func NewSQLStore(dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

// NewSQLStoreDB wraps an open database handle.
func NewSQLStoreDB(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, schema)
	})
	return s.schemaErr
}

// Save implements Store.
func (s *SQLStore) Save(ctx context.Context, r Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("reports: schema: %w", err)
	}
	prepare(&r)

	rep, err := json.Marshal(r.Report)
	if err != nil {
		return fmt.Errorf("reports: encode report: %w", err)
	}
	raw := r.Raw
	if len(raw) == 0 {
		raw = rep
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO spa_error_reports (id, received, remote_addr, user_agent, type, message, url, report, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING`,
		r.ID, r.Received, r.RemoteAddr, r.UserAgent,
		string(r.Report.Type), r.Report.Message, r.Report.URL,
		string(rep), string(raw),
	)
	if err != nil {
		return fmt.Errorf("reports: insert: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, limit int) ([]Record, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("reports: schema: %w", err)
	}

	q := `SELECT id, received, remote_addr, user_agent, report, raw
		FROM spa_error_reports ORDER BY received DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r        Record
			rep, raw []byte
		)
		if err := rows.Scan(&r.ID, &r.Received, &r.RemoteAddr, &r.UserAgent, &rep, &raw); err != nil {
			return nil, fmt.Errorf("reports: scan: %w", err)
		}
		if err := json.Unmarshal(rep, &r.Report); err != nil {
			return nil, fmt.Errorf("reports: decode report %s: %w", r.ID, err)
		}
		r.Raw = json.RawMessage(raw)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
