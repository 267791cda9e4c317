// Package store handles SQLite persistence of upload history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gapscope/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for recent uploads and their last wizard answers.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			id INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			filename TEXT NOT NULL,
			uploaded_at TEXT NOT NULL,
			header_row INTEGER NOT NULL,
			blanks INTEGER NOT NULL,
			na INTEGER NOT NULL,
			custom INTEGER NOT NULL,
			custom_tokens TEXT NOT NULL,
			target_feature TEXT NOT NULL,
			target_type TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_path ON uploads(path);`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_uploaded_at ON uploads(uploaded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordUpload stores a validated upload with its initial configuration.
func (s *Store) RecordUpload(ctx context.Context, record model.UploadRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (path, filename, uploaded_at, header_row, blanks, na, custom, custom_tokens, target_feature, target_type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Path,
		record.Filename,
		record.UploadedAt.Format(time.RFC3339Nano),
		int(record.Config.HeaderRow),
		boolToInt(record.Config.Indicators.Blanks),
		boolToInt(record.Config.Indicators.NA),
		boolToInt(record.Config.Indicators.Custom),
		record.Config.Indicators.CustomTokens,
		record.Config.TargetFeature,
		string(record.Config.TargetType),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record upload: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read upload id: %w", err)
	}
	return id, nil
}

// SaveConfig updates the stored wizard answers for an upload.
func (s *Store) SaveConfig(ctx context.Context, id int64, cfg model.WizardConfig) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET header_row = ?, blanks = ?, na = ?, custom = ?, custom_tokens = ?, target_feature = ?, target_type = ?
		 WHERE id = ?`,
		int(cfg.HeaderRow),
		boolToInt(cfg.Indicators.Blanks),
		boolToInt(cfg.Indicators.NA),
		boolToInt(cfg.Indicators.Custom),
		cfg.Indicators.CustomTokens,
		cfg.TargetFeature,
		string(cfg.TargetType),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// LastConfigForPath returns the most recent wizard answers for a file,
// used to prefill the wizard on a repeat upload.
func (s *Store) LastConfigForPath(ctx context.Context, path string) (model.WizardConfig, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT header_row, blanks, na, custom, custom_tokens, target_feature, target_type
		 FROM uploads WHERE path = ? ORDER BY uploaded_at DESC LIMIT 1`,
		path,
	)
	var headerRow, blanks, na, custom int
	var tokens, targetFeature, targetType string
	err := row.Scan(&headerRow, &blanks, &na, &custom, &tokens, &targetFeature, &targetType)
	if err == sql.ErrNoRows {
		return model.WizardConfig{}, false, nil
	}
	if err != nil {
		return model.WizardConfig{}, false, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := model.WizardConfig{
		HeaderRow: model.HeaderChoice(headerRow),
		Indicators: model.MissingIndicators{
			Blanks:       blanks != 0,
			NA:           na != 0,
			Custom:       custom != 0,
			CustomTokens: tokens,
		},
		TargetFeature: targetFeature,
		TargetType:    model.TargetType(targetType),
	}
	return cfg, true, nil
}

// ListUploads returns recent uploads, newest first.
func (s *Store) ListUploads(ctx context.Context, limit int) ([]model.UploadRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, filename, uploaded_at, header_row, blanks, na, custom, custom_tokens, target_feature, target_type
		 FROM uploads ORDER BY uploaded_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.UploadRecord
	for rows.Next() {
		var record model.UploadRecord
		var uploadedAt string
		var headerRow, blanks, na, custom int
		var targetType string
		if err := rows.Scan(
			&record.ID,
			&record.Path,
			&record.Filename,
			&uploadedAt,
			&headerRow,
			&blanks,
			&na,
			&custom,
			&record.Config.Indicators.CustomTokens,
			&record.Config.TargetFeature,
			&targetType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload time: %w", err)
		}
		record.UploadedAt = parsed
		record.Config.HeaderRow = model.HeaderChoice(headerRow)
		record.Config.Indicators.Blanks = blanks != 0
		record.Config.Indicators.NA = na != 0
		record.Config.Indicators.Custom = custom != 0
		record.Config.TargetType = model.TargetType(targetType)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", err)
	}
	return records, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
