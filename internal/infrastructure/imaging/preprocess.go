// Package imaging provides the image preparation primitives used by the
// classical OCR backend: grayscale conversion, denoising, adaptive
// thresholding, morphological cleanup and up-scaling.
package imaging

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const (
	// Tesseract accuracy degrades below ~200px of text height; regions
	// shorter than minOCRHeight are scaled up to targetOCRHeight.
	minOCRHeight    = 200
	targetOCRHeight = 250

	thresholdWindow = 11
	thresholdC      = 2
)

// Preprocess runs the full preparation chain for classical OCR:
// grayscale -> 3x3 Gaussian blur -> adaptive mean threshold ->
// 2x2 morphological close -> up-scale when the region is too short.
func Preprocess(img image.Image) *image.Gray {
	g := Grayscale(img)
	g = GaussianBlur3(g)
	g = AdaptiveThreshold(g, thresholdWindow, thresholdC)
	g = MorphologicalClose2(g)
	if g.Bounds().Dy() < minOCRHeight {
		g = ScaleToHeight(g, targetOCRHeight)
	}
	return g
}

// Grayscale converts any image to 8-bit grayscale.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return out
}

// GaussianBlur3 applies a 3x3 Gaussian kernel (1 2 1 / 2 4 2 / 1 2 1, /16)
// to reduce sensor noise before thresholding. Border pixels are copied.
func GaussianBlur3(g *image.Gray) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	copy(out.Pix, g.Pix)
	if w < 3 || h < 3 {
		return out
	}
	var kernel = [3][3]int{{1, 2, 1}, {2, 4, 2}, {1, 2, 1}}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			sum := 0
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					sum += int(g.GrayAt(x+kx, y+ky).Y) * kernel[ky+1][kx+1]
				}
			}
			out.SetGray(x, y, color.Gray{Y: uint8(sum / 16)})
		}
	}
	return out
}

// AdaptiveThreshold binarizes against the mean of a window x window
// neighborhood minus c, using an integral image so the cost is independent
// of the window size. Pixels above the local mean become white.
func AdaptiveThreshold(g *image.Gray, window, c int) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	if window < 3 {
		window = 3
	}
	half := window / 2

	// integral[y][x] = sum of pixels in [0,x) x [0,y)
	integral := make([]int64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(g.GrayAt(x, y).Y)
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half+1, y+half+1
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			area := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] -
				integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := sum / area
			if int64(g.GrayAt(x, y).Y) > mean-int64(c) {
				out.SetGray(x, y, color.Gray{Y: 255})
			} else {
				out.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return out
}

// MorphologicalClose2 performs a dilation followed by an erosion with a 2x2
// structuring element on a binary image, closing single-pixel gaps in glyph
// strokes.
func MorphologicalClose2(g *image.Gray) *image.Gray {
	return erode2(dilate2(g))
}

func dilate2(g *image.Gray) *image.Gray {
	return morph2(g, func(a, b, c, d uint8) uint8 {
		if a == 255 || b == 255 || c == 255 || d == 255 {
			return 255
		}
		return 0
	})
}

func erode2(g *image.Gray) *image.Gray {
	return morph2(g, func(a, b, c, d uint8) uint8 {
		if a == 255 && b == 255 && c == 255 && d == 255 {
			return 255
		}
		return 0
	})
}

// morph2 applies a 2x2 neighborhood reducer anchored at the top-left pixel.
// Out-of-range neighbors reuse the anchor value.
func morph2(g *image.Gray, reduce func(a, b, c, d uint8) uint8) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	at := func(x, y int) uint8 {
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return g.GrayAt(x, y).Y
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetGray(x, y, color.Gray{Y: reduce(at(x, y), at(x+1, y), at(x, y+1), at(x+1, y+1))})
		}
	}
	return out
}

// ScaleToHeight resizes to the target height, preserving aspect ratio, with
// Catmull-Rom interpolation.
func ScaleToHeight(g *image.Gray, target int) *image.Gray {
	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	if h == 0 || h == target {
		return g
	}
	scale := float64(target) / float64(h)
	out := image.NewGray(image.Rect(0, 0, int(float64(w)*scale), target))
	draw.CatmullRom.Scale(out, out.Bounds(), g, g.Bounds(), draw.Over, nil)
	return out
}
