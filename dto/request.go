package dto

import (
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// ExtractFileRequest is the multipart upload for a loan document.
type ExtractFileRequest struct {
	File     *multipart.FileHeader `form:"file" binding:"required"`
	Password string                `form:"password"`
}

// Validate checks the upload against the size limit and accepted types.
func (r *ExtractFileRequest) Validate(maxSize int64) error {
	if r.File == nil {
		return errors.New("file is required")
	}
	if maxSize > 0 && r.File.Size > maxSize {
		return ErrFileTooLarge
	}
	if DetectFileKind(r.File.Filename) == FileKindUnknown {
		return ErrUnsupportedFileType
	}
	return nil
}

// ExtractTextRequest carries already recognized text. Text is decoded as any
// value so that null and non-string payloads reach the extractor, which
// answers them with the invalid-input result.
type ExtractTextRequest struct {
	Text     any    `json:"text"`
	FileName string `json:"file_name"`
}

// FileKind is the document format inferred from a file name.
type FileKind string

const (
	FileKindPDF     FileKind = "pdf"
	FileKindImage   FileKind = "image"
	FileKindUnknown FileKind = ""
)

// DetectFileKind maps a file extension to a FileKind.
func DetectFileKind(name string) FileKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FileKindPDF
	case ".png", ".jpg", ".jpeg":
		return FileKindImage
	}
	return FileKindUnknown
}
