package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMarkdown(t *testing.T) {
	rec := dto.LoanExtractionRecord{
		FileName:   "letter.pdf",
		UploadedAt: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
		Fields: map[dto.FieldName]float64{
			dto.FieldLoanAmount:   500000,
			dto.FieldInterestRate: 8.5,
		},
		FieldConfidence: map[dto.FieldName]float64{dto.FieldLoanAmount: 0.45},
		Confidence:      0.36,
		ConfidenceMode:  "max",
		Notes:           []string{"Loan amount detected using primary phrase pattern"},
		Pages:           2,
		Warnings:        []string{"Page 2 appears unreadable or blank"},
		QRPayloads:      []string{"LOAN-REF-42"},
		OCREngine:       "tesseract",
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, rec))
	out := buf.String()

	assert.Contains(t, out, "# Loan Extraction Report")
	assert.Contains(t, out, "## Loan Terms")
	assert.Contains(t, out, "500000")
	assert.Contains(t, out, "8.5")
	assert.Contains(t, out, "0.45")
	assert.Regexp(t, `\| Confidence Mode +\| max`, out)
	assert.Contains(t, out, "Loan amount detected using primary phrase pattern")
	assert.Contains(t, out, "Page 2 appears unreadable or blank")
	assert.Contains(t, out, "LOAN-REF-42")
	assert.NotContains(t, out, "No loan terms were detected")
}

func TestWriteMarkdownEmptyResult(t *testing.T) {
	rec := dto.NewLoanExtractionRecord("blank.png", "", dto.ExtractionResult{
		Fields: map[dto.FieldName]float64{},
		Notes:  []string{dto.InvalidInputNote},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, rec))

	assert.Contains(t, buf.String(), "No loan terms were detected in blank.png.")
	assert.Contains(t, buf.String(), dto.InvalidInputNote)
	assert.NotContains(t, buf.String(), "## QR Codes")
}
