// Package ocr provides the two text recognition backends: a remote
// vision-model client for general multilingual recognition and a local
// Tesseract engine for classical segmentation-based recognition.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/quizpilot/agent/internal/domain"
)

// minRegionConfidence drops low-quality recognition regions before the
// remaining text is concatenated.
const minRegionConfidence = 0.3

// VisionClient recognizes text by posting the image to a vision-OCR HTTP
// endpoint. It is the general-purpose multilingual backend.
type VisionClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	languages  []string
	debug      bool
}

// NewVisionClient creates a vision OCR client for the given endpoint.
func NewVisionClient(endpoint, apiKey string, languages []string) *VisionClient {
	return &VisionClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		languages:  languages,
	}
}

// SetDebug enables request/response logging.
func (c *VisionClient) SetDebug(debug bool) { c.debug = debug }

func (c *VisionClient) Name() string { return "vision" }

type visionRequest struct {
	Image     string   `json:"image"`
	Languages []string `json:"languages,omitempty"`
}

type visionRegion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type visionResponse struct {
	Regions []visionRegion `json:"regions"`
}

// Recognize posts the PNG-encoded image and concatenates the recognized
// regions, discarding every region at or below the confidence floor.
func (c *VisionClient) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", nil
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encode region: %w", err)
	}

	payload, err := json.Marshal(visionRequest{
		Image:     base64.StdEncoding.EncodeToString(data),
		Languages: c.languages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		body, err := c.doRequest(ctx, payload)
		if err != nil {
			if c.debug {
				log.Printf("[OCR] vision request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(exponentialBackoff(attempt)):
			}
			continue
		}

		var resp visionResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("decode vision response: %w", err)
		}

		parts := make([]string, 0, len(resp.Regions))
		for _, region := range resp.Regions {
			if region.Confidence > minRegionConfidence {
				parts = append(parts, region.Text)
			}
		}
		text := strings.Join(parts, " ")
		if c.debug {
			log.Printf("[OCR] vision recognized %d/%d regions, %d chars", len(parts), len(resp.Regions), len(text))
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %v", domain.ErrRecognizerFailure, lastErr)
}

func (c *VisionClient) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "QuizPilot/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecognizerFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrRecognizerFailure, resp.StatusCode, truncateForLog(body))
	}
	return body, nil
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<(attempt-1))) * time.Millisecond
}

func truncateForLog(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
