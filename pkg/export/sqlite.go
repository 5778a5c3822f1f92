package export

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// sqliteSink writes one export run into a SQLite file inside a single
// transaction. Several runs can share a file.
type sqliteSink struct {
	ctx       context.Context
	db        *sql.DB
	tx        *sql.Tx
	insert    *sql.Stmt
	runID     string
	partition string
}

func newSQLiteSink(ctx context.Context, path string, run Run) (*sqliteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export database: %w", err)
	}
	db.SetMaxOpenConns(1)

	fail := func(err error) (*sqliteSink, error) {
		return nil, errors.Join(err, db.Close())
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fail(fmt.Errorf("failed to apply schema: %w", err))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to begin export: %w", err))
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO export_runs (run_id, source, engine, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, string(run.Engine), createdAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fail(errors.Join(fmt.Errorf("failed to record run: %w", err), tx.Rollback()))
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (run_id, partition, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fail(errors.Join(err, tx.Rollback()))
	}

	return &sqliteSink{ctx: ctx, db: db, tx: tx, insert: insert, runID: run.ID}, nil
}

func (s *sqliteSink) begin(partition string) error {
	s.partition = partition
	return nil
}

func (s *sqliteSink) entry(key, value []byte) error {
	// nil binds as NULL.
	_, err := s.insert.ExecContext(s.ctx, s.runID, s.partition, nonNil(key), nonNil(value))
	return err
}

func (s *sqliteSink) finish(cause error) error {
	err := s.insert.Close()
	if cause != nil {
		err = errors.Join(err, s.tx.Rollback())
	} else if cerr := s.tx.Commit(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("failed to commit export: %w", cerr))
	}
	return errors.Join(err, s.db.Close())
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
