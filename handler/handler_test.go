package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Aashish23092/loan-ocr-extraction/dto"
	"github.com/Aashish23092/loan-ocr-extraction/logger"
	"github.com/Aashish23092/loan-ocr-extraction/repository"
	"github.com/Aashish23092/loan-ocr-extraction/service"
	"github.com/Aashish23092/loan-ocr-extraction/utils/loanterms"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const letterText = "Loan Amount INR 500000 at interest rate 8.5% per annum, tenure 24 months, EMI Rs 22000"

type stubReader struct {
	text dto.OCRText
	err  error
}

func (s stubReader) ExtractText(_ context.Context, _ string, _ []byte, _ string) (dto.OCRText, error) {
	return s.text, s.err
}

func newTestRouter(t *testing.T, reader service.DocumentReader) (*gin.Engine, repository.ResultStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "results.db"), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	log := logger.Discard()
	loanService := service.NewLoanService(reader, store, loanterms.ModeMean, log)
	exportService := service.NewExportService(store, log)
	router := NewRouter(
		NewLoanHandler(loanService, 1<<20, log),
		NewResultHandler(loanService, exportService, log),
		8<<20,
	)
	return router, store
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("password", ""))
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t, stubReader{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"Loan OCR Extraction"}`, rec.Body.String())
}

func TestExtractFile(t *testing.T) {
	router, store := newTestRouter(t, stubReader{text: dto.OCRText{Text: letterText, Pages: 1, Engine: "tesseract"}})

	body, contentType := multipartUpload(t, "letter.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/loan/extract", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.LoanExtractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "letter.pdf", resp.Record.FileName)
	assert.Equal(t, 500000.0, resp.Record.Fields[dto.FieldLoanAmount])
	assert.Equal(t, 22000.0, resp.Record.Fields[dto.FieldEMI])

	stored, err := store.Get(context.Background(), resp.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Record.Fields, stored.Fields)
}

func TestExtractFileRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		reader   stubReader
		status   int
		code     string
	}{
		{name: "missing file", status: http.StatusBadRequest, code: dto.CodeInvalidRequest},
		{name: "unsupported type", fileName: "letter.docx", content: []byte("x"), status: http.StatusBadRequest, code: dto.CodeInvalidRequest},
		{name: "too large", fileName: "letter.pdf", content: make([]byte, 2<<20), status: http.StatusBadRequest, code: dto.CodeInvalidRequest},
		{
			name:     "ocr failure",
			fileName: "scan.png",
			content:  []byte("png"),
			reader:   stubReader{err: dto.ErrEmptyDocument},
			status:   http.StatusInternalServerError,
			code:     dto.CodeExtractionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, tt.reader)

			body, contentType := multipartUpload(t, tt.fileName, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/loan/extract", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestExtractText(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loan/extract-text",
		bytes.NewBufferString(`{"text":"`+letterText+`","file_name":"pasted.txt"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.LoanExtractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pasted.txt", resp.Record.FileName)
	assert.Equal(t, 8.5, resp.Record.Fields[dto.FieldInterestRate])
	assert.Equal(t, 24.0, resp.Record.Fields[dto.FieldTenureMonths])
	assert.Equal(t, "mean", resp.Record.ConfidenceMode)
}

func TestExtractTextInvalidInput(t *testing.T) {
	router, store := newTestRouter(t, nil)

	for _, body := range []string{`{"text":null}`, `{"text":42}`, `{"text":"  "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/loan/extract-text", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.JSONEq(t, `{"fields":{},"confidence":0,"notes":["Invalid OCR text received"]}`, rec.Body.String(), body)
	}

	records, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractTextMalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/loan/extract-text", bytes.NewBufferString(`{"text":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.CodeInvalidRequest, decodeError(t, rec).Error)
}

func TestResults(t *testing.T) {
	router, store := newTestRouter(t, nil)
	rec := dto.NewLoanExtractionRecord("stored.pdf", letterText, dto.ExtractionResult{
		Fields:     map[dto.FieldName]float64{dto.FieldLoanAmount: 500000},
		Confidence: 0.45,
		Notes:      []string{"Final loan amount confidence score: 0.45"},
	})
	require.NoError(t, store.Save(context.Background(), rec))

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results?limit=5", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ResultListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, rec.ID, resp.Records[0].ID)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results?limit=abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results/"+rec.ID.String(), nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "stored.pdf", resp.Record.FileName)
		assert.Equal(t, 500000.0, resp.Record.Fields[dto.FieldLoanAmount])
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results/nope", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.CodeInvalidRequest, decodeError(t, w).Error)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results/3f1c1f5e-8d5b-4c1a-9a57-0d6c1bd0c9a1", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.CodeResultNotFound, decodeError(t, w).Error)
	})

	t.Run("export", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results/export", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "loan-results.xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		name, err := f.GetCellValue(service.ExportSheet, "B2")
		require.NoError(t, err)
		assert.Equal(t, "stored.pdf", name)
	})
}
