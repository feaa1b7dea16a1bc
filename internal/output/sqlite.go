// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/arxiv-scraper/pkg/types"
)

var sqliteSchema = []string{
	`CREATE TABLE papers (
		paper_id TEXT PRIMARY KEY,
		authors TEXT NOT NULL,
		updated TEXT NOT NULL,
		published TEXT NOT NULL,
		title TEXT NOT NULL,
		abstract TEXT NOT NULL,
		categories TEXT NOT NULL
	)`,
	`CREATE INDEX idx_papers_updated ON papers(updated)`,
	`CREATE TABLE runs (
		id TEXT PRIMARY KEY,
		finished_at TEXT NOT NULL,
		paper_count INTEGER NOT NULL
	)`,
}

// WriteSQLite writes records into a fresh SQLite database at path. The
// database is built in a temporary sibling and renamed over path only
// after the transaction commits, so a failed write leaves any existing
// file untouched. The runs table records runID and the number of papers
// written.
func WriteSQLite(ctx context.Context, path string, records []types.PaperRecord, runID string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp database: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp database: %w", err)
	}
	defer func() {
		os.Remove(tmpPath)
		os.Remove(tmpPath + "-journal")
	}()

	if err := buildDatabase(ctx, tmpPath, records, runID); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}

// buildDatabase creates the schema and inserts records into the empty
// database file at path. The connection is closed before it returns.
func buildDatabase(ctx context.Context, path string, records []types.PaperRecord, runID string) error {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range sqliteSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (paper_id, authors, updated, published, title, abstract, categories)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.PaperID, r.Authors,
			r.Updated.UTC().Format(types.TimestampLayout),
			r.Published.UTC().Format(types.TimestampLayout),
			r.Title, r.Abstract, r.Categories,
		); err != nil {
			return fmt.Errorf("inserting paper %s: %w", r.PaperID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, finished_at, paper_count) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), len(records),
	); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return db.Close()
}
