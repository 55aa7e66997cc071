package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PostgresStore keeps records in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects, pings and creates the schema if needed.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "loan-ocr-extraction"

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool, logger: logger}
	if err := store.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info("postgres result store ready", "host", pc.ConnConfig.Host, "database", pc.ConnConfig.Database)
	return store, nil
}

func (s *PostgresStore) createTables(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS loan_results (
		id UUID PRIMARY KEY,
		file_name TEXT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL,
		raw_text TEXT NOT NULL,
		fields JSONB NOT NULL,
		field_confidence JSONB,
		confidence DOUBLE PRECISION NOT NULL,
		confidence_mode TEXT NOT NULL DEFAULT '',
		notes JSONB NOT NULL,
		pages INTEGER NOT NULL DEFAULT 0,
		warnings JSONB,
		qr_payloads JSONB,
		ocr_engine TEXT NOT NULL DEFAULT ''
	);
	ALTER TABLE loan_results ADD COLUMN IF NOT EXISTS confidence_mode TEXT NOT NULL DEFAULT '';
	CREATE INDEX IF NOT EXISTS idx_loan_results_uploaded_at ON loan_results(uploaded_at DESC);
	`)
	return err
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec dto.LoanExtractionRecord) error {
	cols, err := encodeColumns(rec)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO loan_results (id, file_name, uploaded_at, raw_text, fields, field_confidence,
			confidence, confidence_mode, notes, pages, warnings, qr_payloads, ocr_engine)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.FileName, rec.UploadedAt.UTC(), rec.RawText,
		string(cols.fields), string(cols.fieldConfidence), rec.Confidence, rec.ConfidenceMode, string(cols.notes),
		rec.Pages, string(cols.warnings), string(cols.qrPayloads), rec.OCREngine,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Debug("result saved", "id", rec.ID, "file_name", rec.FileName)
	return nil
}

const postgresColumns = `id, file_name, uploaded_at, raw_text, fields::text, field_confidence::text,
	confidence, confidence_mode, notes::text, pages, warnings::text, qr_payloads::text, ocr_engine`

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (dto.LoanExtractionRecord, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM loan_results WHERE id = $1`, id)

	rec, err := scanPostgresRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return dto.LoanExtractionRecord{}, ErrNotFound
	}
	if err != nil {
		return dto.LoanExtractionRecord{}, fmt.Errorf("failed to load result %s: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]dto.LoanExtractionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresColumns+` FROM loan_results ORDER BY uploaded_at DESC, id LIMIT $1`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	records := []dto.LoanExtractionRecord{}
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanPostgresRecord(row pgx.Row) (dto.LoanExtractionRecord, error) {
	var (
		rec        dto.LoanExtractionRecord
		fields     string
		notes      string
		fieldConf  *string
		warnings   *string
		qrPayloads *string
	)

	err := row.Scan(&rec.ID, &rec.FileName, &rec.UploadedAt, &rec.RawText, &fields, &fieldConf,
		&rec.Confidence, &rec.ConfidenceMode, &notes, &rec.Pages, &warnings, &qrPayloads, &rec.OCREngine)
	if err != nil {
		return rec, err
	}
	rec.UploadedAt = rec.UploadedAt.UTC()

	cols := jsonColumns{
		fields:          []byte(fields),
		fieldConfidence: bytesOf(fieldConf),
		notes:           []byte(notes),
		warnings:        bytesOf(warnings),
		qrPayloads:      bytesOf(qrPayloads),
	}
	return rec, cols.decodeInto(&rec)
}

func bytesOf(s *string) []byte {
	if s == nil {
		return nil
	}
	return []byte(*s)
}
