package client

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
)

// TextRecognizer turns one page image into raw OCR text.
type TextRecognizer interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// encodePNG serializes an image for engines that take encoded bytes.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
