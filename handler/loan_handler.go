package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/service"

	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	loanService *service.LoanService
	maxFileSize int64
	logger      *slog.Logger
}

func NewLoanHandler(loanService *service.LoanService, maxFileSize int64, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// ExtractFile handles the POST /loan/extract endpoint
func (h *LoanHandler) ExtractFile(c *gin.Context) {
	request := &dto.ExtractFileRequest{}
	if err := c.ShouldBind(request); err != nil {
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, "File is required", err)
		return
	}
	if err := request.Validate(h.maxFileSize); err != nil {
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, err.Error(), err)
		return
	}

	data, err := readUpload(request)
	if err != nil {
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, "Failed to read uploaded file", err)
		return
	}

	fileName := request.File.Filename
	h.logger.Info("received loan document", "file_name", fileName, "bytes", len(data))

	record, err := h.loanService.ExtractFromFile(c.Request.Context(), fileName, data, request.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dto.ErrUnsupportedFileType) {
			status = http.StatusBadRequest
		}
		sendError(c, h.logger, status, dto.CodeExtractionFailed, "Failed to extract loan details", err)
		return
	}

	c.JSON(http.StatusOK, dto.LoanExtractionResponse{
		Success: true,
		Record:  record,
	})
}

// ExtractText handles the POST /loan/extract-text endpoint. Unusable text
// is answered with the zero-confidence result and is not stored.
func (h *LoanHandler) ExtractText(c *gin.Context) {
	var request dto.ExtractTextRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		sendError(c, h.logger, http.StatusBadRequest, dto.CodeInvalidRequest, "Invalid JSON body", err)
		return
	}

	result, record, err := h.loanService.ExtractFromText(c.Request.Context(), request.FileName, request.Text)
	if err != nil {
		sendError(c, h.logger, http.StatusInternalServerError, dto.CodeExtractionFailed, "Failed to extract loan details", err)
		return
	}

	if record == nil {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusOK, dto.LoanExtractionResponse{
		Success: true,
		Record:  *record,
	})
}

func readUpload(request *dto.ExtractFileRequest) ([]byte, error) {
	f, err := request.File.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// sendError sends a structured error response
func sendError(c *gin.Context, logger *slog.Logger, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		logger.Warn("request failed", "path", c.FullPath(), "status", statusCode, "message", message, "error", err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
