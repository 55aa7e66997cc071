package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/repository"
	"github.com/Aashish23092/loan-ocr-extraction/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ResultHandler struct {
	loanService   *service.LoanService
	exportService *service.ExportService
	logger        *slog.Logger
}

func NewResultHandler(loanService *service.LoanService, exportService *service.ExportService, logger *slog.Logger) *ResultHandler {
	return &ResultHandler{
		loanService:   loanService,
		exportService: exportService,
		logger:        logger,
	}
}

func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}

// ListResults handles GET /results
func (h *ResultHandler) ListResults(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, err.Error(), err)
		return
	}

	records, err := h.loanService.List(c.Request.Context(), limit)
	if err != nil {
		sendError(c, h.logger, http.StatusInternalServerError, dto.CodeExtractionFailed, "Failed to list results", err)
		return
	}

	c.JSON(http.StatusOK, dto.ResultListResponse{
		Success: true,
		Count:   len(records),
		Records: records,
	})
}

// GetResult handles GET /results/:id
func (h *ResultHandler) GetResult(c *gin.Context) {
	record, err := h.loanService.Get(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, service.ErrInvalidID):
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, "Invalid result id", err)
		return
	case errors.Is(err, repository.ErrNotFound):
		sendError(c, h.logger, http.StatusNotFound, dto.CodeResultNotFound, "Result not found", err)
		return
	case err != nil:
		sendError(c, h.logger, http.StatusInternalServerError, dto.CodeExtractionFailed, "Failed to load result", err)
		return
	}

	c.JSON(http.StatusOK, dto.ResultResponse{
		Success: true,
		Record:  record,
	})
}

// ExportResults handles GET /results/export
func (h *ResultHandler) ExportResults(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, err.Error(), err)
		return
	}
	if limit == 0 {
		limit = 1000
	}

	data, err := h.exportService.ExportResultsXLSX(c.Request.Context(), limit)
	if err != nil {
		sendError(c, h.logger, http.StatusInternalServerError, dto.CodeExportFailed, "Failed to export results", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="loan-results.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
