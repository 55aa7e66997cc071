// Package repository persists extraction records.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("result not found")

// DefaultListLimit caps List when the caller passes no positive limit.
const DefaultListLimit = 50

// ResultStore saves and reads back extraction records.
type ResultStore interface {
	Save(ctx context.Context, rec dto.LoanExtractionRecord) error
	Get(ctx context.Context, id uuid.UUID) (dto.LoanExtractionRecord, error)
	// List returns the newest records first.
	List(ctx context.Context, limit int) ([]dto.LoanExtractionRecord, error)
	Close() error
}

// Open picks the backend from the DSN: postgres:// and postgresql:// URLs
// use PostgreSQL, anything else is a SQLite file path.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (ResultStore, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		store, err := OpenPostgres(ctx, PostgresConfig{DSN: dsn}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := OpenSQLite(dsn, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// jsonColumns holds the list and map fields of a record in their stored
// JSON form.
type jsonColumns struct {
	fields          []byte
	fieldConfidence []byte
	notes           []byte
	warnings        []byte
	qrPayloads      []byte
}

func encodeColumns(rec dto.LoanExtractionRecord) (jsonColumns, error) {
	var (
		cols jsonColumns
		err  error
	)
	fields := rec.Fields
	if fields == nil {
		fields = map[dto.FieldName]float64{}
	}
	notes := rec.Notes
	if notes == nil {
		notes = []string{}
	}

	if cols.fields, err = json.Marshal(fields); err != nil {
		return cols, fmt.Errorf("failed to encode fields: %w", err)
	}
	if cols.fieldConfidence, err = json.Marshal(rec.FieldConfidence); err != nil {
		return cols, fmt.Errorf("failed to encode field confidence: %w", err)
	}
	if cols.notes, err = json.Marshal(notes); err != nil {
		return cols, fmt.Errorf("failed to encode notes: %w", err)
	}
	if cols.warnings, err = json.Marshal(rec.Warnings); err != nil {
		return cols, fmt.Errorf("failed to encode warnings: %w", err)
	}
	if cols.qrPayloads, err = json.Marshal(rec.QRPayloads); err != nil {
		return cols, fmt.Errorf("failed to encode qr payloads: %w", err)
	}
	return cols, nil
}

func (cols jsonColumns) decodeInto(rec *dto.LoanExtractionRecord) error {
	targets := []struct {
		name string
		data []byte
		dst  any
	}{
		{"fields", cols.fields, &rec.Fields},
		{"field_confidence", cols.fieldConfidence, &rec.FieldConfidence},
		{"notes", cols.notes, &rec.Notes},
		{"warnings", cols.warnings, &rec.Warnings},
		{"qr_payloads", cols.qrPayloads, &rec.QRPayloads},
	}
	for _, t := range targets {
		if len(t.data) == 0 {
			continue
		}
		if err := json.Unmarshal(t.data, t.dst); err != nil {
			return fmt.Errorf("failed to decode %s: %w", t.name, err)
		}
	}
	if rec.Fields == nil {
		rec.Fields = map[dto.FieldName]float64{}
	}
	if rec.Notes == nil {
		rec.Notes = []string{}
	}
	return nil
}
