package locate

import (
	"image"

	"github.com/quizpilot/agent/internal/domain"
	"github.com/quizpilot/agent/internal/infrastructure/imaging"
)

// minTileArea filters out specks that cannot be an answer tile.
const minTileArea = 1000

// hueBand is an inclusive hue range in degrees. Bands that wrap through 0
// set wrap=true (red).
type hueBand struct {
	name   string
	lo, hi float64
	wrap   bool
}

// The classic quiz tile palette: red, blue, yellow, green.
var tileBands = []hueBand{
	{name: "red", lo: 340, hi: 15, wrap: true},
	{name: "blue", lo: 195, hi: 255},
	{name: "yellow", lo: 35, hi: 70},
	{name: "green", lo: 85, hi: 160},
}

const (
	minSaturation = 0.35
	minValue      = 0.25
)

// ColorMaskLocator finds answer tiles by color: for each hue band it builds
// a binary mask of saturated pixels, extracts connected components, and
// reports the centroid of the largest component if its area clears the
// minimum. Positions come out one per matched band, unordered with respect
// to display order.
type ColorMaskLocator struct{}

func (ColorMaskLocator) Name() string { return "colormask" }

func (ColorMaskLocator) Locate(img image.Image, optionCount int) []domain.ButtonPosition {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	var positions []domain.ButtonPosition
	for _, band := range tileBands {
		mask := buildMask(img, band)
		if pos, ok := largestComponentCentroid(mask, w, h); ok {
			positions = append(positions, pos)
		}
		if len(positions) == maxOptions {
			break
		}
	}
	return positions
}

func buildMask(img image.Image, band hueBand) []bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			hue, s, v := imaging.RGBToHSV(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			if s < minSaturation || v < minValue {
				continue
			}
			inBand := hue >= band.lo && hue <= band.hi
			if band.wrap {
				inBand = hue >= band.lo || hue <= band.hi
			}
			if inBand {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

// largestComponentCentroid flood-fills the mask into 4-connected components
// and returns the centroid of the largest one above the area floor.
func largestComponentCentroid(mask []bool, w, h int) (domain.ButtonPosition, bool) {
	visited := make([]bool, len(mask))
	var best struct {
		area       int
		sumX, sumY int64
	}

	var stack []int
	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		area := 0
		var sumX, sumY int64
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := idx%w, idx/w
			area++
			sumX += int64(x)
			sumY += int64(y)
			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) || visited[n] || !mask[n] {
					continue
				}
				// guard row wrap on horizontal neighbors
				if (n == idx-1 && x == 0) || (n == idx+1 && x == w-1) {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		if area > best.area {
			best.area = area
			best.sumX = sumX
			best.sumY = sumY
		}
	}

	if best.area <= minTileArea {
		return domain.ButtonPosition{}, false
	}
	return domain.ButtonPosition{
		X: int(best.sumX / int64(best.area)),
		Y: int(best.sumY / int64(best.area)),
	}, true
}
