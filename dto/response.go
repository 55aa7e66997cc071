package dto

import "errors"

// Custom errors
var (
	ErrUnsupportedFileType = errors.New("unsupported file type: only PDF, PNG and JPEG are accepted")
	ErrEmptyDocument       = errors.New("no text could be recovered from the document")
	ErrFileTooLarge        = errors.New("uploaded file exceeds the size limit")
)

// Error codes returned in ErrorResponse.Error.
const (
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeResultNotFound   = "RESULT_NOT_FOUND"
	CodeExportFailed     = "EXPORT_FAILED"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// LoanExtractionResponse is returned by the file upload endpoint.
type LoanExtractionResponse struct {
	Success bool                 `json:"success"`
	Record  LoanExtractionRecord `json:"record"`
}

// ResultListResponse is returned by the result listing endpoint.
type ResultListResponse struct {
	Success bool                   `json:"success"`
	Count   int                    `json:"count"`
	Records []LoanExtractionRecord `json:"records"`
}

// ResultResponse is returned when a single stored result is fetched.
type ResultResponse struct {
	Success bool                 `json:"success"`
	Record  LoanExtractionRecord `json:"record"`
}
