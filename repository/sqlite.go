package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens or creates the database file at path, creating parent
// directories as needed.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, path: path, logger: logger}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info("sqlite result store ready", "path", path)
	return store, nil
}

func (s *SQLiteStore) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loan_results (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		uploaded_at INTEGER NOT NULL,
		raw_text TEXT NOT NULL,
		fields TEXT NOT NULL,
		field_confidence TEXT,
		confidence REAL NOT NULL,
		confidence_mode TEXT,
		notes TEXT NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		warnings TEXT,
		qr_payloads TEXT,
		ocr_engine TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_loan_results_uploaded_at ON loan_results(uploaded_at);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, rec dto.LoanExtractionRecord) error {
	cols, err := encodeColumns(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO loan_results (id, file_name, uploaded_at, raw_text, fields, field_confidence,
			confidence, confidence_mode, notes, pages, warnings, qr_payloads, ocr_engine)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.FileName, rec.UploadedAt.UTC().UnixNano(), rec.RawText,
		string(cols.fields), string(cols.fieldConfidence), rec.Confidence, rec.ConfidenceMode, string(cols.notes),
		rec.Pages, string(cols.warnings), string(cols.qrPayloads), rec.OCREngine,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Debug("result saved", "id", rec.ID, "file_name", rec.FileName)
	return nil
}

const sqliteColumns = `id, file_name, uploaded_at, raw_text, fields, field_confidence,
	confidence, confidence_mode, notes, pages, warnings, qr_payloads, ocr_engine`

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (dto.LoanExtractionRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM loan_results WHERE id = ?`, id.String())

	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dto.LoanExtractionRecord{}, ErrNotFound
	}
	if err != nil {
		return dto.LoanExtractionRecord{}, fmt.Errorf("failed to load result %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]dto.LoanExtractionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM loan_results ORDER BY uploaded_at DESC, id LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	records := []dto.LoanExtractionRecord{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (dto.LoanExtractionRecord, error) {
	var (
		rec        dto.LoanExtractionRecord
		id         string
		uploadedAt int64
		fieldConf  sql.NullString
		warnings   sql.NullString
		qrPayloads sql.NullString
		engine     sql.NullString
		mode       sql.NullString
		fields     string
		notes      string
	)

	err := row.Scan(&id, &rec.FileName, &uploadedAt, &rec.RawText, &fields, &fieldConf,
		&rec.Confidence, &mode, &notes, &rec.Pages, &warnings, &qrPayloads, &engine)
	if err != nil {
		return rec, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return rec, fmt.Errorf("invalid stored id %q: %w", id, err)
	}
	rec.UploadedAt = time.Unix(0, uploadedAt).UTC()
	rec.OCREngine = engine.String
	rec.ConfidenceMode = mode.String

	cols := jsonColumns{
		fields:          []byte(fields),
		fieldConfidence: []byte(fieldConf.String),
		notes:           []byte(notes),
		warnings:        []byte(warnings.String),
		qrPayloads:      []byte(qrPayloads.String),
	}
	return rec, cols.decodeInto(&rec)
}
