package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // decoders for page images written by pdfcpu
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageImage is the scanned image of one PDF page. Page is 1-based.
type PageImage struct {
	Page  int
	Image image.Image
}

type PDFProcessor interface {
	// ExtractText returns the embedded text of every page, in page order.
	ExtractText(pdfData []byte, password string) ([]string, error)
	// ExtractImages returns the largest image found on every page that has
	// one.
	ExtractImages(ctx context.Context, pdfData []byte, password string) ([]PageImage, error)
}

type pdfProcessor struct{}

func NewPDFProcessor() PDFProcessor {
	return &pdfProcessor{}
}

// decrypt removes password protection so the text reader can open the
// document. Unprotected input is returned unchanged.
func decrypt(pdfData []byte, password string) ([]byte, error) {
	if password == "" {
		return pdfData, nil
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(pdfData), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to decrypt pdf: %w", err)
	}
	return out.Bytes(), nil
}

func (p *pdfProcessor) ExtractText(pdfData []byte, password string) ([]string, error) {
	data, err := decrypt(pdfData, password)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	totalPage := r.NumPage()
	pages := make([]string, 0, totalPage)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		var textBuilder bytes.Buffer
		rows, _ := page.GetTextByRow()
		for _, row := range rows {
			for _, word := range row.Content {
				textBuilder.WriteString(word.S)
			}
			textBuilder.WriteString("\n")
		}
		pages = append(pages, textBuilder.String())
	}
	return pages, nil
}

func (p *pdfProcessor) ExtractImages(ctx context.Context, pdfData []byte, password string) ([]PageImage, error) {
	data, err := decrypt(pdfData, password)
	if err != nil {
		return nil, err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	totalPage := r.NumPage()

	// Create a temporary directory for extraction
	tempDir, err := os.MkdirTemp("", "pdf_images")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	pdfPath := filepath.Join(tempDir, "doc.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf data: %w", err)
	}

	conf := model.NewDefaultConfiguration()

	var images []PageImage
	for pageNr := 1; pageNr <= totalPage; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pageDir := filepath.Join(tempDir, "page-"+strconv.Itoa(pageNr))
		if err := os.Mkdir(pageDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create page dir: %w", err)
		}

		if err := api.ExtractImagesFile(pdfPath, pageDir, []string{strconv.Itoa(pageNr)}, conf); err != nil {
			return nil, fmt.Errorf("failed to extract images from page %d: %w", pageNr, err)
		}

		if img := largestImage(pageDir); img != nil {
			images = append(images, PageImage{Page: pageNr, Image: img})
		}
	}

	return images, nil
}

// largestImage decodes every image in dir and keeps the one with the
// biggest area, which on a scanned page is the page itself.
func largestImage(dir string) image.Image {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var best image.Image
	bestArea := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		imgFile, err := os.Open(filepath.Join(dir, file.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}

		if area := img.Bounds().Dx() * img.Bounds().Dy(); area > bestArea {
			best, bestArea = img, area
		}
	}
	return best
}
