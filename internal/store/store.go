// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists extracted canvass rows and unresolved anomalies
// in a SQLite archive for later querying and review.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/mtorrado/canvass-etl/internal/canvass"
	"github.com/mtorrado/canvass-etl/pkg/types"
)

// Store manages the results archive database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the archive at cfg.DBPath, creating the schema
// if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS results (
			precinct TEXT NOT NULL,
			method TEXT NOT NULL,
			city TEXT,
			district TEXT,
			registered INTEGER,
			cast_ballots INTEGER,
			turnout_pct TEXT,
			measure_c_yes INTEGER,
			measure_c_no INTEGER,
			measure_d_yes INTEGER,
			measure_d_no INTEGER,
			PRIMARY KEY (precinct, method)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_city ON results(city)`,
		`CREATE TABLE IF NOT EXISTS anomalies (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			fields TEXT NOT NULL,
			reason TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun replaces the archive contents with one extraction run's typed
// rows and unresolved anomalies, atomically.
func (s *Store) SaveRun(ctx context.Context, results []types.Result, anomalies []canvass.Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"results", "anomalies"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (precinct, method, city, district, registered, cast_ballots,
			turnout_pct, measure_c_yes, measure_c_no, measure_d_yes, measure_d_no)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.ExecContext(ctx,
			r.Precinct, string(r.Method), r.City, r.District,
			nullable(r.Registered), nullable(r.Cast), r.TurnoutPct,
			nullable(r.MeasureCYes), nullable(r.MeasureCNo),
			nullable(r.MeasureDYes), nullable(r.MeasureDNo),
		)
		if err != nil {
			return fmt.Errorf("inserting result %s/%s: %w", r.Precinct, r.Method, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, a := range anomalies {
		fieldsJSON, _ := json.Marshal(a.Raw)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO anomalies (fields, reason, recorded_at) VALUES (?, ?, ?)`,
			string(fieldsJSON), a.Reason, now,
		)
		if err != nil {
			return fmt.Errorf("inserting anomaly: %w", err)
		}
	}

	return tx.Commit()
}

// QueryOptions filters archive queries.
type QueryOptions struct {
	Precinct   string
	City       string
	Method     string
	MaxResults int
}

// Query returns archived rows matching the options, in precinct order.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.Result, error) {
	query := `SELECT precinct, method, city, district, registered, cast_ballots,
		turnout_pct, measure_c_yes, measure_c_no, measure_d_yes, measure_d_no
		FROM results WHERE 1=1`
	var args []any

	if opts.Precinct != "" {
		query += ` AND precinct = ?`
		args = append(args, opts.Precinct)
	}
	if opts.City != "" {
		query += ` AND city = ?`
		args = append(args, opts.City)
	}
	if opts.Method != "" {
		query += ` AND method = ?`
		args = append(args, opts.Method)
	}

	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}
	query += ` ORDER BY precinct, method LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []types.Result
	for rows.Next() {
		var r types.Result
		var method string
		var registered, cast, cYes, cNo, dYes, dNo sql.NullInt64
		if err := rows.Scan(&r.Precinct, &method, &r.City, &r.District,
			&registered, &cast, &r.TurnoutPct, &cYes, &cNo, &dYes, &dNo); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		r.Method = types.Method(method)
		r.Registered = fromNullable(registered)
		r.Cast = fromNullable(cast)
		r.MeasureCYes = fromNullable(cYes)
		r.MeasureCNo = fromNullable(cNo)
		r.MeasureDYes = fromNullable(dYes)
		r.MeasureDNo = fromNullable(dNo)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Anomaly is one archived unresolved group.
type Anomaly struct {
	Fields     []string `json:"fields" yaml:"fields"`
	Reason     string   `json:"reason" yaml:"reason"`
	RecordedAt string   `json:"recorded_at" yaml:"recorded_at"`
}

// Anomalies returns every archived anomaly, oldest first.
func (s *Store) Anomalies(ctx context.Context) ([]Anomaly, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fields, reason, recorded_at FROM anomalies ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying anomalies: %w", err)
	}
	defer rows.Close()

	var out []Anomaly
	for rows.Next() {
		var a Anomaly
		var fieldsJSON string
		if err := rows.Scan(&fieldsJSON, &a.Reason, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning anomaly: %w", err)
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &a.Fields); err != nil {
			return nil, fmt.Errorf("decoding anomaly fields: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ExportYAML writes the full archive (rows plus anomalies) to path.
func (s *Store) ExportYAML(ctx context.Context, path string) error {
	results, err := s.Query(ctx, QueryOptions{MaxResults: 1 << 20})
	if err != nil {
		return err
	}
	anomalies, err := s.Anomalies(ctx)
	if err != nil {
		return err
	}

	doc := struct {
		Results   []types.Result `yaml:"results"`
		Anomalies []Anomaly      `yaml:"anomalies"`
	}{Results: results, Anomalies: anomalies}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func nullable(c types.Count) any {
	if !c.Valid {
		return nil
	}
	return c.Value
}

func fromNullable(n sql.NullInt64) types.Count {
	if !n.Valid {
		return types.Count{}
	}
	return types.CountOf(n.Int64)
}
