// Package locate implements the button localization strategies. Each
// strategy returns zero or more candidate positions; the pipeline walks an
// ordered chain until one strategy yields results.
package locate

import (
	"image"

	"github.com/quizpilot/agent/internal/domain"
)

// maxOptions is the platform's answer-tile limit.
const maxOptions = 4

// QuadrantLocator assumes the classic 2x2 tile arrangement and returns the
// geometric centers of the four image quadrants in row-major order:
// top-left, top-right, bottom-left, bottom-right.
type QuadrantLocator struct{}

func (QuadrantLocator) Name() string { return "quadrant" }

func (QuadrantLocator) Locate(img image.Image, optionCount int) []domain.ButtonPosition {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	count := optionCount
	if count > maxOptions {
		count = maxOptions
	}
	if count <= 0 {
		return nil
	}

	centers := []domain.ButtonPosition{
		{X: w / 4, Y: h / 4},
		{X: 3 * w / 4, Y: h / 4},
		{X: w / 4, Y: 3 * h / 4},
		{X: 3 * w / 4, Y: 3 * h / 4},
	}
	return centers[:count]
}
