package service

import (
	"fmt"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// QRScanner decodes QR codes printed on loan paperwork, typically the
// verification code on e-stamp certificates.
type QRScanner struct{}

func NewQRScanner() *QRScanner {
	return &QRScanner{}
}

// Scan returns the decoded payload of the QR code on img. ok is false when
// the image carries no readable code.
func (s *QRScanner) Scan(img image.Image) (payload string, ok bool, err error) {
	// Convert image to BinaryBitmap for QR decoding
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		// Not found, checksum and format failures all mean there is no
		// usable code on the page.
		return "", false, nil
	}

	text := strings.TrimSpace(result.GetText())
	return text, text != "", nil
}
