package domain

import (
	"context"
	"image"
)

// FrameSource supplies one full frame per call. Raw pixel acquisition from
// the display lives behind this interface; the core never touches it.
type FrameSource interface {
	Frame() (image.Image, error)
}

// RegionProvider supplies the two rectangular pixel buffers the pipeline
// consumes each cycle, plus the screen offset of the options region so a
// located button can be translated to absolute coordinates.
type RegionProvider interface {
	QuestionRegion() (image.Image, error)
	OptionsRegion() (image.Image, error)
	OptionsOffset() ButtonPosition
}

// Recognizer converts a pixel buffer into recognized text. Implementations
// are selected once at construction; callers never inspect the backend type.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// EvidenceSource performs web searches and page fetches for the evidence
// gathering stage.
type EvidenceSource interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	FetchPage(ctx context.Context, pageURL string) (Snippet, error)
}

// ButtonLocator is one localization strategy. Strategies return zero or more
// positions; the pipeline tries an ordered chain until one yields results.
type ButtonLocator interface {
	Name() string
	Locate(img image.Image, optionCount int) []ButtonPosition
}

// PointerDispatcher performs a pointer click at absolute screen coordinates.
type PointerDispatcher interface {
	Click(ctx context.Context, x, y int) error
}
