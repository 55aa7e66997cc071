package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aashish23092/loan-ocr-extraction/handler"
	"github.com/Aashish23092/loan-ocr-extraction/repository"
	"github.com/Aashish23092/loan-ocr-extraction/service"
	"github.com/Aashish23092/loan-ocr-extraction/utils/loanterms"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the loan extraction HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	mode, err := loanterms.ParseMode(cfg.Extraction.ConfidenceMode)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Storage.DSN, log)
	if err != nil {
		return err
	}
	defer store.Close()

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
	loanService := service.NewLoanService(ocrService, store, mode, log)
	exportService := service.NewExportService(store, log)

	gin.SetMode(cfg.Server.GinMode)
	router := handler.NewRouter(
		handler.NewLoanHandler(loanService, cfg.Upload.MaxFileSize, log),
		handler.NewResultHandler(loanService, exportService, log),
		cfg.Upload.MaxMultipartMemory,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server.start", "port", cfg.Server.Port, "mode", mode, "engines", len(engines))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
