package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrPaddleNoText is returned when the PaddleOCR service answers without
// any recognized line.
var ErrPaddleNoText = errors.New("PaddleOCR extracted no text from image")

// PaddleClient calls a PaddleOCR hub serving endpoint
// (/predict/ocr_system) with base64 encoded page images.
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPaddleClient creates a new PaddleOCR client
func NewPaddleClient(apiURL string, timeout time.Duration, logger *slog.Logger) *PaddleClient {
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (p *PaddleClient) Name() string {
	return "paddleocr"
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// Recognize sends one page image to the PaddleOCR API and joins the
// recognized lines with newlines.
func (p *PaddleClient) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	payloadBytes, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(data)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var lines []string
	if len(result.Results) > 0 {
		for _, line := range result.Results[0] {
			if text := strings.TrimSpace(line.Text); text != "" {
				lines = append(lines, text)
			}
		}
	}
	if len(lines) == 0 {
		return "", ErrPaddleNoText
	}

	text := strings.Join(lines, "\n")
	p.logger.Debug("paddleocr page recognized", "lines", len(lines), "chars", len(text))
	return text, nil
}
