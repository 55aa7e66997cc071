package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/repository"
	"github.com/Aashish23092/loan-ocr-extraction/utils/loanterms"
	"github.com/Aashish23092/loan-ocr-extraction/utils/ocrclean"
)

// DocumentReader recovers raw text from an uploaded document.
type DocumentReader interface {
	ExtractText(ctx context.Context, fileName string, data []byte, password string) (dto.OCRText, error)
}

// LoanService runs uploaded documents through OCR, normalization and field
// extraction and stores the outcome.
type LoanService struct {
	reader DocumentReader
	store  repository.ResultStore
	mode   loanterms.Mode
	logger *slog.Logger
}

// NewLoanService creates the service. store may be nil, in which case
// results are returned but not persisted.
func NewLoanService(reader DocumentReader, store repository.ResultStore, mode loanterms.Mode, logger *slog.Logger) *LoanService {
	return &LoanService{
		reader: reader,
		store:  store,
		mode:   mode,
		logger: logger,
	}
}

// Analyze extracts loan terms from raw OCR text.
func (s *LoanService) Analyze(raw string) dto.ExtractionResult {
	return loanterms.Extract(ocrclean.Normalize(raw), loanterms.WithMode(s.mode))
}

// ExtractFromFile reads a PDF or image, extracts loan terms and saves the
// record.
func (s *LoanService) ExtractFromFile(ctx context.Context, fileName string, data []byte, password string) (dto.LoanExtractionRecord, error) {
	s.logger.Info("extraction.start", "file_name", fileName, "bytes", len(data))

	ocrText, err := s.reader.ExtractText(ctx, fileName, data, password)
	if err != nil {
		return dto.LoanExtractionRecord{}, fmt.Errorf("failed to read document: %w", err)
	}

	result := s.Analyze(ocrText.Text)

	rec := dto.NewLoanExtractionRecord(fileName, ocrText.Text, result)
	rec.Pages = ocrText.Pages
	rec.Warnings = ocrText.Warnings
	rec.QRPayloads = ocrText.QRPayloads
	rec.OCREngine = ocrText.Engine

	if err := s.save(ctx, rec); err != nil {
		return dto.LoanExtractionRecord{}, err
	}

	s.logger.Info("extraction.ok",
		"id", rec.ID, "file_name", fileName, "fields", len(rec.Fields), "confidence", rec.Confidence)
	return rec, nil
}

// ExtractFromText extracts loan terms from text supplied by the caller.
// Anything other than a non-empty string yields the invalid-input result
// and no record.
func (s *LoanService) ExtractFromText(ctx context.Context, fileName string, text any) (dto.ExtractionResult, *dto.LoanExtractionRecord, error) {
	raw, ok := text.(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return loanterms.Invalid(), nil, nil
	}
	if fileName == "" {
		fileName = "text-input"
	}

	result := s.Analyze(raw)
	rec := dto.NewLoanExtractionRecord(fileName, raw, result)
	rec.Pages = 1
	rec.OCREngine = "text"

	if err := s.save(ctx, rec); err != nil {
		return dto.ExtractionResult{}, nil, err
	}
	return result, &rec, nil
}

// Get returns a stored record.
func (s *LoanService) Get(ctx context.Context, id string) (dto.LoanExtractionRecord, error) {
	parsed, err := parseID(id)
	if err != nil {
		return dto.LoanExtractionRecord{}, err
	}
	if s.store == nil {
		return dto.LoanExtractionRecord{}, repository.ErrNotFound
	}
	return s.store.Get(ctx, parsed)
}

// List returns stored records, newest first.
func (s *LoanService) List(ctx context.Context, limit int) ([]dto.LoanExtractionRecord, error) {
	if s.store == nil {
		return []dto.LoanExtractionRecord{}, nil
	}
	return s.store.List(ctx, limit)
}

func (s *LoanService) save(ctx context.Context, rec dto.LoanExtractionRecord) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}
