// Package capture turns full display frames into the two pixel regions the
// pipeline consumes. Raw frame acquisition stays behind domain.FrameSource;
// this package only crops and optionally dumps debug images.
package capture

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/quizpilot/agent/internal/domain"
)

// questionSplit is the vertical fraction of the frame occupied by the
// question area; the options area is everything below it.
const questionSplit = 0.4

// SplitProvider implements domain.RegionProvider by cropping a full frame at
// the question/options boundary. Origin is the screen position of the frame,
// used to translate located buttons into absolute click coordinates.
type SplitProvider struct {
	source   domain.FrameSource
	originX  int
	originY  int
	debugDir string

	lastHeight int
}

// NewSplitProvider wraps a frame source. originX/originY are the screen
// coordinates of the frame's top-left corner (zero for a primary-monitor
// grab). debugDir, when non-empty, receives per-cycle region dumps.
func NewSplitProvider(source domain.FrameSource, originX, originY int, debugDir string) *SplitProvider {
	return &SplitProvider{
		source:   source,
		originX:  originX,
		originY:  originY,
		debugDir: debugDir,
	}
}

// QuestionRegion returns the top portion of a fresh frame.
func (p *SplitProvider) QuestionRegion() (image.Image, error) {
	frame, err := p.grab()
	if err != nil {
		return nil, err
	}
	b := frame.Bounds()
	region := crop(frame, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+splitLine(b.Dy())))
	p.dump("debug_question.png", region)
	return region, nil
}

// OptionsRegion returns the bottom portion of a fresh frame.
func (p *SplitProvider) OptionsRegion() (image.Image, error) {
	frame, err := p.grab()
	if err != nil {
		return nil, err
	}
	b := frame.Bounds()
	region := crop(frame, image.Rect(b.Min.X, b.Min.Y+splitLine(b.Dy()), b.Max.X, b.Max.Y))
	p.dump("debug_answers.png", region)
	return region, nil
}

// OptionsOffset is the absolute screen position of the options region's
// top-left corner, valid after the last successful capture.
func (p *SplitProvider) OptionsOffset() domain.ButtonPosition {
	return domain.ButtonPosition{X: p.originX, Y: p.originY + splitLine(p.lastHeight)}
}

func (p *SplitProvider) grab() (image.Image, error) {
	frame, err := p.source.Frame()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCaptureUnavailable, err)
	}
	if frame == nil || frame.Bounds().Empty() {
		return nil, domain.ErrCaptureUnavailable
	}
	p.lastHeight = frame.Bounds().Dy()
	return frame, nil
}

func (p *SplitProvider) dump(name string, img image.Image) {
	if p.debugDir == "" {
		return
	}
	path := filepath.Join(p.debugDir, name)
	f, err := os.Create(path)
	if err != nil {
		log.Printf("[CAPTURE] debug dump %s failed: %v", path, err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Printf("[CAPTURE] debug encode %s failed: %v", path, err)
	}
}

func splitLine(height int) int {
	return int(float64(height) * questionSplit)
}

// crop copies the rectangle into a fresh RGBA image with a zero origin.
func crop(src image.Image, r image.Rectangle) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), src, r.Min, draw.Src)
	return out
}

// FileSource reads a frame from a PNG file on every call. It exists for
// headless dry-runs and tests; live capture supplies its own FrameSource.
type FileSource struct {
	Path string
}

func (s FileSource) Frame() (image.Image, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return img, nil
}
