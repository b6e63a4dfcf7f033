package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/quizpilot/agent/internal/domain"
	"github.com/quizpilot/agent/internal/infrastructure/imaging"
)

// charWhitelist restricts Tesseract to the characters a quiz tile can
// plausibly contain, cutting down on symbol artifacts.
const charWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,?!:;-() "

// psmSingleBlock treats the region as one uniform block of text.
const psmSingleBlock = "6"

// TesseractRecognizer is the classical segmentation-based backend. Every
// image runs through the imaging preprocessing chain before recognition.
type TesseractRecognizer struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// NewTesseractRecognizer constructs the Tesseract-backed recognizer.
// Languages are Tesseract trained-data names (e.g. "eng").
func NewTesseractRecognizer(languages []string) *TesseractRecognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractRecognizer{
		clientFactory: gosseract.NewClient,
		languages:     languages,
	}
}

func (r *TesseractRecognizer) Name() string { return "tesseract" }

// Recognize preprocesses the image and runs Tesseract over the result.
func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", nil
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	prepared := imaging.Preprocess(img)
	data, err := encodePNG(prepared)
	if err != nil {
		return "", fmt.Errorf("encode preprocessed region: %w", err)
	}

	c := r.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("%w: set image: %v", domain.ErrRecognizerFailure, err)
	}
	if err := c.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("%w: set languages: %v", domain.ErrRecognizerFailure, err)
	}
	if err := c.SetVariable("tessedit_char_whitelist", charWhitelist); err != nil {
		return "", fmt.Errorf("%w: set whitelist: %v", domain.ErrRecognizerFailure, err)
	}
	if err := c.SetVariable("tessedit_pageseg_mode", psmSingleBlock); err != nil {
		return "", fmt.Errorf("%w: set psm: %v", domain.ErrRecognizerFailure, err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrRecognizerFailure, err)
	}
	return strings.TrimSpace(text), nil
}
