package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportResultsXLSX(t *testing.T) {
	store := newMemoryStore()
	rec := dto.NewLoanExtractionRecord("letter.pdf", "raw", dto.ExtractionResult{
		Fields: map[dto.FieldName]float64{
			dto.FieldLoanAmount:   500000,
			dto.FieldInterestRate: 8.5,
			dto.FieldTenureMonths: 24,
		},
		Confidence: 0.36,
		Notes:      []string{"first note", "second note"},
	})
	rec.UploadedAt = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	rec.Pages = 3
	rec.OCREngine = "tesseract"
	require.NoError(t, store.Save(context.Background(), rec))

	data, err := NewExportService(store, logger.Discard()).ExportResultsXLSX(context.Background(), 100)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell := func(axis string) string {
		v, err := f.GetCellValue(ExportSheet, axis)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "ID", cell("A1"))
	assert.Equal(t, "Tenure (Months)", cell("G1"))
	assert.Equal(t, rec.ID.String(), cell("A2"))
	assert.Equal(t, "letter.pdf", cell("B2"))
	assert.Equal(t, "2026-05-04T09:30:00Z", cell("C2"))
	assert.Equal(t, "500000", cell("D2"))
	assert.Equal(t, "8.5", cell("E2"))
	assert.Equal(t, "", cell("F2"))
	assert.Equal(t, "24", cell("G2"))
	assert.Equal(t, "0.36", cell("H2"))
	assert.Equal(t, "3", cell("I2"))
	assert.Equal(t, "tesseract", cell("J2"))
	assert.Equal(t, "first note\nsecond note", cell("K2"))
	assert.Equal(t, "", cell("A3"))
}
