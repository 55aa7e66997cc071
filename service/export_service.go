package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/repository"
	"github.com/xuri/excelize/v2"
)

// ExportSheet is the worksheet holding exported results.
const ExportSheet = "Results"

// ExportService renders stored results as an XLSX workbook.
type ExportService struct {
	store  repository.ResultStore
	logger *slog.Logger
}

func NewExportService(store repository.ResultStore, logger *slog.Logger) *ExportService {
	return &ExportService{store: store, logger: logger}
}

var exportHeaders = []string{
	"ID",
	"File Name",
	"Uploaded At",
	"Loan Amount",
	"Interest Rate (%)",
	"EMI",
	"Tenure (Months)",
	"Confidence",
	"Pages",
	"OCR Engine",
	"Notes",
	"Warnings",
}

// ExportResultsXLSX returns the newest limit records, one row each. Fields
// that were not detected are left blank.
func (s *ExportService) ExportResultsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	recs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ExportSheet, cell, h)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(ExportSheet, cell, v)
		}

		write(1, r.ID.String())
		write(2, r.FileName)
		write(3, r.UploadedAt.UTC().Format(time.RFC3339))
		for col, name := range dto.FieldNames {
			if v, ok := r.Fields[name]; ok {
				write(4+col, v)
			}
		}
		write(8, r.Confidence)
		write(9, r.Pages)
		write(10, r.OCREngine)
		write(11, strings.Join(r.Notes, "\n"))
		write(12, strings.Join(r.Warnings, "\n"))
	}

	_ = f.SetColWidth(ExportSheet, "A", "A", 38) // id
	_ = f.SetColWidth(ExportSheet, "B", "C", 24) // file, time
	_ = f.SetColWidth(ExportSheet, "D", "I", 14) // numbers
	_ = f.SetColWidth(ExportSheet, "K", "L", 60) // notes, warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
