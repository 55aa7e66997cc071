package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Aashish23092/loan-ocr-extraction/client"
	"github.com/Aashish23092/loan-ocr-extraction/config"
	"github.com/Aashish23092/loan-ocr-extraction/logger"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loanocr",
		Short: "Extract loan terms from loan documents",
		Long: `loanocr reads loan sanction letters and agreements (PDF, PNG, JPEG or plain
OCR text) and extracts the loan amount, interest rate, EMI and tenure together
with a confidence score and explanatory notes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (default ./loanocr.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewCleanCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime reads the config and builds the logger shared by subcommands.
func loadRuntime(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}

	opts := logger.FromConfig(cfg.Log.Level, cfg.Log.Format)
	opts.Output = cmd.ErrOrStderr()
	if verbose {
		opts.Debug = true
		opts.Quiet = false
	}
	return cfg, logger.New(opts), nil
}

// newEngines returns the configured OCR engines in fallback order. PaddleOCR
// comes first when its URL is set. The returned func releases Tesseract.
func newEngines(cfg *config.Config, log *slog.Logger) ([]client.TextRecognizer, func()) {
	var engines []client.TextRecognizer
	if cfg.OCR.PaddleURL != "" {
		engines = append(engines, client.NewPaddleClient(cfg.OCR.PaddleURL, cfg.OCR.PaddleTimeout, log))
	}
	tesseract := client.NewTesseractClient(cfg.OCR.TessdataPrefix, cfg.OCR.Language, log)
	engines = append(engines, tesseract)
	return engines, tesseract.Close
}
