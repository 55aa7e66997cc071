package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/logger"
	"github.com/Aashish23092/loan-ocr-extraction/report"
	"github.com/Aashish23092/loan-ocr-extraction/service"
	"github.com/Aashish23092/loan-ocr-extraction/utils/loanterms"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format.
const (
	formatJSON     = "json"
	formatYAML     = "yaml"
	formatMarkdown = "markdown"
)

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Extract loan terms from a document or OCR text",
		Long: `Extract runs a PDF, PNG or JPEG through OCR and prints the loan terms found
in it. With --text, FILE is read as already recognized text instead. A FILE of
"-" reads text from standard input.

Examples:
  loanocr extract sanction-letter.pdf
  loanocr extract scan.png --format markdown
  loanocr extract ocr.txt --text --mode max
  pdftotext letter.pdf - | loanocr extract - --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runExtractCmd,
	}

	cmd.Flags().BoolP("text", "t", false, "Treat FILE as OCR text")
	cmd.Flags().StringP("format", "f", formatJSON, "Output format: json, yaml or markdown")
	cmd.Flags().StringP("password", "p", "", "Password for an encrypted PDF")
	cmd.Flags().StringP("mode", "m", "", "Confidence mode: mean, max or shared (default from config)")

	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	path := args[0]

	asText, err := cmd.Flags().GetBool("text")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	password, err := cmd.Flags().GetString("password")
	if err != nil {
		return err
	}
	modeName, err := cmd.Flags().GetString("mode")
	if err != nil {
		return err
	}

	switch format {
	case formatJSON, formatYAML, formatMarkdown:
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or markdown)", format)
	}

	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	if modeName == "" {
		modeName = cfg.Extraction.ConfidenceMode
	}
	mode, err := loanterms.ParseMode(modeName)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	var (
		result dto.ExtractionResult
		rec    dto.LoanExtractionRecord
	)
	if asText || path == "-" {
		svc := service.NewLoanService(nil, nil, mode, logger.Discard())
		result = svc.Analyze(string(data))
		rec = dto.NewLoanExtractionRecord(displayName(path), string(data), result)
		rec.Pages = 1
		rec.OCREngine = "text"
	} else {
		engines, closeEngines := newEngines(cfg, log)
		defer closeEngines()

		ocrService := service.NewOCRService(
			service.NewPDFProcessor(),
			engines,
			service.NewQRScanner(),
			service.OCROptions{
				PageConcurrency: cfg.OCR.PageConcurrency,
				MinTextLength:   cfg.OCR.MinTextLength,
			},
			log,
		)
		svc := service.NewLoanService(ocrService, nil, mode, log)
		rec, err = svc.ExtractFromFile(cmd.Context(), filepath.Base(path), data, password)
		if err != nil {
			return err
		}
		result = rec.Result()
	}

	return writeResult(cmd.OutOrStdout(), format, result, rec)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return filepath.Base(path)
}

func writeResult(w io.Writer, format string, result dto.ExtractionResult, rec dto.LoanExtractionRecord) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case formatMarkdown:
		return report.WriteMarkdown(w, rec)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}
