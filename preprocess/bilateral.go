// Package preprocess applies the optional edge-preserving smoother and
// posterizer used ahead of quantization for photographic input (spec
// §4.1). Ported from original_source/src/preprocessor.rs's bilateral_filter
// and reduce_colors, restructured around a precomputed range-weight table
// per the spec's inner-loop requirement, and looped pixel-by-pixel the way
// video2color.SplitColors walks bounds.Min.Y..bounds.Max.Y /
// bounds.Min.X..bounds.Max.X.
package preprocess

import (
	"math"

	"rastervec/core"
)

// Options configures the bilateral filter and posterizer.
type Options struct {
	Radius     int
	ColorSigma float64
	Iterations int
	Levels     int // posterization levels; 0 disables posterization
}

// DefaultOptions matches spec §4.1's defaults: radius 2, two iterations.
func DefaultOptions() Options {
	return Options{Radius: 2, ColorSigma: 30.0, Iterations: 2, Levels: 0}
}

// Apply runs the bilateral filter (if Iterations > 0) followed by the
// posterizer (if Levels > 0). It is a pure function: borders are handled by
// clamping sample coordinates into range, never by reading outside the
// raster or depending on absolute position otherwise.
func Apply(r *core.Raster, opt Options) *core.Raster {
	out := r
	for i := 0; i < opt.Iterations; i++ {
		out = bilateralPass(out, opt.Radius, opt.ColorSigma)
	}
	if opt.Levels > 0 {
		out = posterize(out, opt.Levels)
	}
	return out
}

// rangeWeightTable precomputes the 256-entry color-similarity Gaussian
// weight indexed by color distance (spec §4.1), so the inner loop never
// calls exp. L1 distance over three channels can reach 765, so distances
// past 255 are clamped to the table's last entry by the caller.
func rangeWeightTable(colorSigma float64) [256]float64 {
	var table [256]float64
	sigmaSq2 := 2.0 * colorSigma * colorSigma
	for d := 0; d < len(table); d++ {
		table[d] = math.Exp(-float64(d*d) / sigmaSq2)
	}
	return table
}

func spatialWeightTable(radius int, colorSigma float64) [][]float64 {
	// Spatial sigma tracks radius the way the teacher's bilateral pass ties
	// its kernel support to spatialSigma (here sigma = radius, since the
	// spec's radius parameter plays that role directly).
	sigma := math.Max(float64(radius), 1.0)
	sigmaSq2 := 2.0 * sigma * sigma
	size := 2*radius + 1
	w := make([][]float64, size)
	for dy := -radius; dy <= radius; dy++ {
		row := make([]float64, size)
		for dx := -radius; dx <= radius; dx++ {
			row[dx+radius] = math.Exp(-float64(dx*dx+dy*dy) / sigmaSq2)
		}
		w[dy+radius] = row
	}
	return w
}

func bilateralPass(r *core.Raster, radius int, colorSigma float64) *core.Raster {
	out := core.NewRaster(r.Width, r.Height)
	rangeTable := rangeWeightTable(colorSigma)
	spatialTable := spatialWeightTable(radius, colorSigma)

	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			center := r.At(x, y)
			var sumW, sumR, sumG, sumB float64

			for dy := -radius; dy <= radius; dy++ {
				ny := clampInt(y+dy, 0, r.Height-1)
				for dx := -radius; dx <= radius; dx++ {
					nx := clampInt(x+dx, 0, r.Width-1)
					p := r.At(nx, ny)

					dist := l1Distance(center, p)
					if dist >= len(rangeTable) {
						dist = len(rangeTable) - 1
					}
					weight := spatialTable[dy+radius][dx+radius] * rangeTable[dist]

					sumW += weight
					sumR += weight * float64(p.R)
					sumG += weight * float64(p.G)
					sumB += weight * float64(p.B)
				}
			}

			if sumW == 0 {
				sumW = 1
			}
			out.Pixels[y*r.Width+x] = core.Pixel{
				R: clamp8(sumR / sumW),
				G: clamp8(sumG / sumW),
				B: clamp8(sumB / sumW),
				A: center.A,
			}
		}
	}

	return out
}

func l1Distance(a, b core.Pixel) int {
	return absInt(int(a.R)-int(b.R)) + absInt(int(a.G)-int(b.G)) + absInt(int(a.B)-int(b.B))
}

// posterize divides each channel by 256/levels, multiplies back, and clamps.
func posterize(r *core.Raster, levels int) *core.Raster {
	if levels < 1 {
		levels = 1
	}
	step := 256 / levels
	if step < 1 {
		step = 1
	}
	out := core.NewRaster(r.Width, r.Height)
	for i, p := range r.Pixels {
		out.Pixels[i] = core.Pixel{
			R: posterizeChannel(p.R, step),
			G: posterizeChannel(p.G, step),
			B: posterizeChannel(p.B, step),
			A: p.A,
		}
	}
	return out
}

func posterizeChannel(v uint8, step int) uint8 {
	bucket := int(v) / step
	out := bucket * step
	return clamp8(float64(out))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
