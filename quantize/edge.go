// Sobel edge detection feeding the enhanced quantizer's edge-aware label
// smoothing, ported from original_source/src/edge_detector.rs's
// detect_edges_sobel.
package quantize

import (
	"math"

	"rastervec/core"
)

// EdgeMap is a grayscale gradient-magnitude map, one byte per pixel
// (0 = no edge; magnitudes of 255 or more are clamped to 255, not
// normalized to the image's strongest edge).
type EdgeMap struct {
	Width, Height int
	Data          []uint8
	maxMagnitude  uint8
}

var sobelX = [9]int{-1, 0, 1, -2, 0, 2, -1, 0, 1}
var sobelY = [9]int{-1, -2, -1, 0, 0, 0, 1, 2, 1}

// DetectEdges computes the Sobel gradient magnitude of the raster's
// luminance, clamped to a byte per pixel.
func DetectEdges(r *core.Raster) *EdgeMap {
	w, h := r.Width, r.Height
	gray := make([]uint8, w*h)
	for i, p := range r.Pixels {
		gray[i] = uint8(0.299*float64(p.R) + 0.587*float64(p.G) + 0.114*float64(p.B))
	}

	data := make([]uint8, w*h)
	var maxMag uint8

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var gx, gy int
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					px := x + kx - 1
					py := y + ky - 1
					pixel := int(gray[py*w+px])
					idx := ky*3 + kx
					gx += pixel * sobelX[idx]
					gy += pixel * sobelY[idx]
				}
			}
			mag := math.Sqrt(float64(gx*gx + gy*gy))
			if mag > 255 {
				mag = 255
			}
			v := uint8(mag)
			data[y*w+x] = v
			if v > maxMag {
				maxMag = v
			}
		}
	}

	return &EdgeMap{Width: w, Height: h, Data: data, maxMagnitude: maxMag}
}

// valueForFraction converts the spec's §6 "threshold" option — a fraction
// of the magnitude range in [0,1] — into an absolute byte cutoff against
// this edge map's observed maximum gradient.
func (e *EdgeMap) valueForFraction(fraction float64) uint8 {
	if fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 255
	}
	v := fraction * float64(e.maxMagnitude)
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
