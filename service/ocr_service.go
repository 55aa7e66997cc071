package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"strings"

	"github.com/Aashish23092/loan-ocr-extraction/client"
	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"golang.org/x/sync/errgroup"
)

// EngineEmbeddedText names text taken straight from the PDF text layer.
const EngineEmbeddedText = "pdf-text"

// OCRService recovers raw text from uploaded PDFs and images.
type OCRService struct {
	pdfProcessor    PDFProcessor
	engines         []client.TextRecognizer
	qrScanner       *QRScanner
	pageConcurrency int
	minTextLength   int
	logger          *slog.Logger
}

// OCROptions tunes page handling.
type OCROptions struct {
	PageConcurrency int
	MinTextLength   int
}

// NewOCRService wires the OCR pipeline. Engines are tried in order for every
// page until one returns text.
func NewOCRService(pdfProcessor PDFProcessor, engines []client.TextRecognizer, qrScanner *QRScanner, opts OCROptions, logger *slog.Logger) *OCRService {
	if opts.PageConcurrency < 1 {
		opts.PageConcurrency = 1
	}
	return &OCRService{
		pdfProcessor:    pdfProcessor,
		engines:         engines,
		qrScanner:       qrScanner,
		pageConcurrency: opts.PageConcurrency,
		minTextLength:   opts.MinTextLength,
		logger:          logger,
	}
}

type pageResult struct {
	text   string
	engine string
	qr     string
	err    error
}

// ExtractText returns the raw text of a document. The kind of document is
// taken from the file name.
func (s *OCRService) ExtractText(ctx context.Context, fileName string, data []byte, password string) (dto.OCRText, error) {
	switch dto.DetectFileKind(fileName) {
	case dto.FileKindPDF:
		return s.fromPDF(ctx, data, password)
	case dto.FileKindImage:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return dto.OCRText{}, fmt.Errorf("failed to decode image: %w", err)
		}
		return s.fromPages(ctx, []PageImage{{Page: 1, Image: img}}, 1)
	default:
		return dto.OCRText{}, dto.ErrUnsupportedFileType
	}
}

func (s *OCRService) fromPDF(ctx context.Context, data []byte, password string) (dto.OCRText, error) {
	pageTexts, err := s.pdfProcessor.ExtractText(data, password)
	if err != nil {
		s.logger.Warn("embedded text extraction failed, falling back to OCR", "error", err)
	}

	embedded := strings.Join(pageTexts, "\n")
	if trimmed := strings.TrimSpace(embedded); trimmed != "" && len(trimmed) >= s.minTextLength {
		s.logger.Info("using embedded pdf text", "pages", len(pageTexts), "chars", len(embedded))
		return dto.OCRText{Text: embedded, Pages: len(pageTexts), Engine: EngineEmbeddedText}, nil
	}

	images, err := s.pdfProcessor.ExtractImages(ctx, data, password)
	if err != nil {
		return dto.OCRText{}, fmt.Errorf("failed to extract page images: %w", err)
	}

	totalPages := len(pageTexts)
	for _, img := range images {
		totalPages = max(totalPages, img.Page)
	}
	return s.fromPages(ctx, images, totalPages)
}

// fromPages recognizes page images concurrently and stitches the results
// back together in page order.
func (s *OCRService) fromPages(ctx context.Context, images []PageImage, totalPages int) (dto.OCRText, error) {
	results := make(map[int]*pageResult, len(images))
	for _, img := range images {
		results[img.Page] = &pageResult{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pageConcurrency)

	for _, img := range images {
		res := results[img.Page]
		g.Go(func() error {
			text, engine, err := s.recognize(gctx, img.Image)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				res.err = err
				return nil
			}
			res.text, res.engine = strings.TrimSpace(text), engine

			if s.qrScanner != nil {
				if payload, ok, err := s.qrScanner.Scan(img.Image); err == nil && ok {
					res.qr = payload
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dto.OCRText{}, fmt.Errorf("OCR cancelled: %w", err)
	}

	out := dto.OCRText{Pages: totalPages}
	var (
		text     strings.Builder
		engines  []string
		failures int
		lastErr  error
	)

	for page := 1; page <= totalPages; page++ {
		res, ok := results[page]
		if ok && res.err != nil {
			failures++
			lastErr = res.err
			s.logger.Warn("page OCR failed on every engine", "page", page, "error", res.err)
		}
		if !ok || res.text == "" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("Page %d appears unreadable or blank", page))
			continue
		}

		fmt.Fprintf(&text, "\n\n--- Page %d ---\n\n%s", page, res.text)
		if !slices.Contains(engines, res.engine) {
			engines = append(engines, res.engine)
		}
		if res.qr != "" {
			out.QRPayloads = append(out.QRPayloads, res.qr)
		}
	}

	out.Text = text.String()
	out.Engine = strings.Join(engines, ",")

	if strings.TrimSpace(out.Text) == "" {
		if failures > 0 && failures == len(images) {
			return dto.OCRText{}, fmt.Errorf("OCR failed on every page: %w", lastErr)
		}
		return dto.OCRText{}, dto.ErrEmptyDocument
	}

	s.logger.Info("document recognized",
		"pages", totalPages, "chars", len(out.Text), "engines", out.Engine, "warnings", len(out.Warnings))
	return out, nil
}

// recognize tries each engine in turn. A page that an engine reads as empty
// is blank, not failed.
func (s *OCRService) recognize(ctx context.Context, img image.Image) (string, string, error) {
	if len(s.engines) == 0 {
		return "", "", errors.New("no OCR engine configured")
	}

	var (
		lastErr   error
		responded bool
	)
	for _, engine := range s.engines {
		text, err := engine.Recognize(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			s.logger.Debug("OCR engine failed", "engine", engine.Name(), "error", err)
			lastErr = fmt.Errorf("%s: %w", engine.Name(), err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, engine.Name(), nil
		}
		responded = true
	}

	if responded {
		return "", "", nil
	}
	return "", "", lastErr
}
