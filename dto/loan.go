package dto

import (
	"time"

	"github.com/google/uuid"
)

// FieldName identifies one extracted loan term.
type FieldName string

const (
	FieldLoanAmount   FieldName = "loan_amount"
	FieldInterestRate FieldName = "interest_rate"
	FieldEMI          FieldName = "emi"
	FieldTenureMonths FieldName = "tenure_months"
)

// FieldNames lists every field in extraction order.
var FieldNames = []FieldName{FieldLoanAmount, FieldInterestRate, FieldEMI, FieldTenureMonths}

// InvalidInputNote is the single note of a result for unusable input.
const InvalidInputNote = "Invalid OCR text received"

// ExtractionResult holds the loan terms found in one document. A field is
// absent from Fields, not zero, when it was not detected.
type ExtractionResult struct {
	Fields          map[FieldName]float64 `json:"fields" yaml:"fields"`
	FieldConfidence map[FieldName]float64 `json:"field_confidence,omitempty" yaml:"field_confidence,omitempty"`
	Confidence      float64               `json:"confidence" yaml:"confidence"`
	ConfidenceMode  string                `json:"confidence_mode,omitempty" yaml:"confidence_mode,omitempty"`
	Notes           []string              `json:"notes" yaml:"notes"`
}

// Value returns a field and whether it was detected.
func (r ExtractionResult) Value(name FieldName) (float64, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// LoanExtractionRecord is one persisted extraction.
type LoanExtractionRecord struct {
	ID              uuid.UUID             `json:"id"`
	FileName        string                `json:"file_name"`
	UploadedAt      time.Time             `json:"uploaded_at"`
	RawText         string                `json:"raw_text"`
	Fields          map[FieldName]float64 `json:"fields"`
	FieldConfidence map[FieldName]float64 `json:"field_confidence,omitempty"`
	Confidence      float64               `json:"confidence"`
	ConfidenceMode  string                `json:"confidence_mode,omitempty"`
	Notes           []string              `json:"notes"`
	Pages           int                   `json:"pages"`
	Warnings        []string              `json:"warnings,omitempty"`
	QRPayloads      []string              `json:"qr_payloads,omitempty"`
	OCREngine       string                `json:"ocr_engine,omitempty"`
}

// NewLoanExtractionRecord stamps a fresh record for an extraction result.
func NewLoanExtractionRecord(fileName, rawText string, result ExtractionResult) LoanExtractionRecord {
	return LoanExtractionRecord{
		ID:              uuid.New(),
		FileName:        fileName,
		UploadedAt:      time.Now().UTC(),
		RawText:         rawText,
		Fields:          result.Fields,
		FieldConfidence: result.FieldConfidence,
		Confidence:      result.Confidence,
		ConfidenceMode:  result.ConfidenceMode,
		Notes:           result.Notes,
	}
}

// Result rebuilds the extraction result stored in the record.
func (r LoanExtractionRecord) Result() ExtractionResult {
	return ExtractionResult{
		Fields:          r.Fields,
		FieldConfidence: r.FieldConfidence,
		Confidence:      r.Confidence,
		ConfidenceMode:  r.ConfidenceMode,
		Notes:           r.Notes,
	}
}

// OCRText is the text recovered from one uploaded document.
type OCRText struct {
	Text       string   `json:"text"`
	Pages      int      `json:"pages"`
	Warnings   []string `json:"warnings,omitempty"`
	QRPayloads []string `json:"qr_payloads,omitempty"`
	Engine     string   `json:"engine,omitempty"`
}
