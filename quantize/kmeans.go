// Edge-aware k-means++ quantization (enhanced pipeline), ported from
// original_source/src/enhanced_quantizer.rs: perceptual-weighted k-means++
// seeding, Lloyd refinement, edge-aware majority-vote label smoothing, and
// recoloring from the original (pre-quantization) pixels.
package quantize

import (
	"math/rand"

	"rastervec/core"
)

// perceptual weights approximate luminance sensitivity (spec §4.2.2,
// §9 "Color distance weights (2,4,3)... are deliberate").
const (
	weightR = 2
	weightG = 4
	weightB = 3
)

func perceptualDistSq(a, b core.RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return weightR*dr*dr + weightG*dg*dg + weightB*db*db
}

// AdaptiveK chooses K ∈ {64, 128, 256} by image area thresholds when the
// caller doesn't specify one (spec §4.2.2 step 1).
func AdaptiveK(width, height int) int {
	pixels := width * height
	switch {
	case pixels < 10_000:
		return 64
	case pixels < 100_000:
		return 128
	default:
		return 256
	}
}

// kmeansPlusPlusInit seeds k centroids with probability proportional to
// each sample's squared perceptual distance to the nearest chosen center.
func kmeansPlusPlusInit(samples []core.RGB, k int, rng *rand.Rand) []core.RGB {
	n := len(samples)
	if n == 0 || k == 0 {
		return nil
	}

	centroids := make([]core.RGB, 0, k)
	centroids = append(centroids, samples[rng.Intn(n)])

	distances := make([]float64, n)

	for iter := 1; iter < k; iter++ {
		newCenter := centroids[len(centroids)-1]
		var total float64
		for i, s := range samples {
			d := float64(perceptualDistSq(s, newCenter))
			if iter == 1 || d < distances[i] {
				distances[i] = d
			}
			total += distances[i]
		}

		if total == 0 {
			break
		}

		randVal := rng.Float64() * total
		chosen := false
		for i, d := range distances {
			randVal -= d
			if randVal <= 0 {
				centroids = append(centroids, samples[i])
				chosen = true
				break
			}
		}
		if !chosen {
			centroids = append(centroids, samples[rng.Intn(n)])
		}
	}

	return centroids
}

// kmeansRefine runs Lloyd iterations with perceptual distance, reseeding
// empty clusters from the farthest point (spec §4.2.2 step 4).
func kmeansRefine(palette []core.RGB, samples []core.RGB, iterations int) []core.RGB {
	if len(palette) == 0 || len(samples) == 0 {
		return palette
	}

	assign := make([]int, len(samples))

	for it := 0; it < iterations; it++ {
		k := len(palette)
		var sumR, sumG, sumB, counts = make([]int64, k), make([]int64, k), make([]int64, k), make([]int64, k)

		for i, s := range samples {
			best, bestDist := 0, -1
			for j, c := range palette {
				d := perceptualDistSq(s, c)
				if bestDist < 0 || d < bestDist {
					bestDist = d
					best = j
				}
			}
			assign[i] = best
			sumR[best] += int64(s.R)
			sumG[best] += int64(s.G)
			sumB[best] += int64(s.B)
			counts[best]++
		}

		changed := false
		for j := range palette {
			if counts[j] == 0 {
				// Reseed empty clusters from the farthest sample (spec §4.2.2 step 4).
				farthest, farthestDist := 0, -1
				for i, s := range samples {
					d := 0
					for _, c := range palette {
						dd := perceptualDistSq(s, c)
						if dd > d {
							d = dd
						}
					}
					if d > farthestDist {
						farthestDist = d
						farthest = i
					}
				}
				palette[j] = samples[farthest]
				changed = true
				continue
			}
			n := counts[j]
			newC := core.RGB{R: uint8(sumR[j] / n), G: uint8(sumG[j] / n), B: uint8(sumB[j] / n)}
			if newC != palette[j] {
				changed = true
				palette[j] = newC
			}
		}

		if !changed {
			break
		}
	}

	return palette
}

// QuantizeEnhanced implements spec §4.2.2 steps 2–5: k-means++ seeding,
// 8 Lloyd iterations, and per-pixel nearest-center labeling. seed drives
// the RNG for reproducibility (spec §5 determinism requirement).
func QuantizeEnhanced(r *core.Raster, k int, seed int64) (core.Palette, *core.LabeledImage) {
	rng := rand.New(rand.NewSource(seed))

	samples := sampleColors(r, 100_000)
	initial := kmeansPlusPlusInit(samples, k, rng)
	palette := kmeansRefine(initial, samples, 8)

	labeled := core.NewLabeledImage(r.Width, r.Height)
	for i, p := range r.Pixels {
		labeled.Labels[i] = nearestPerceptualIndex(core.RGB{R: p.R, G: p.G, B: p.B}, palette)
	}

	return core.Palette(palette), labeled
}

func nearestPerceptualIndex(c core.RGB, palette []core.RGB) int {
	best, bestDist := 0, -1
	for i, p := range palette {
		d := perceptualDistSq(c, p)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func sampleColors(r *core.Raster, cap int) []core.RGB {
	n := len(r.Pixels)
	step := n / cap
	if step < 1 {
		step = 1
	}
	samples := make([]core.RGB, 0, n/step+1)
	for i := 0; i < n; i += step {
		p := r.Pixels[i]
		samples = append(samples, core.RGB{R: p.R, G: p.G, B: p.B})
	}
	return samples
}

// SmoothEdgeAware applies two passes of 3×3 majority-vote label smoothing,
// skipping pixels on the edge mask, per spec §4.2.2 step 6.
func SmoothEdgeAware(labeled *core.LabeledImage, edges *EdgeMap, threshold float64, passes int, paletteSize int) *core.LabeledImage {
	w, h := labeled.Width, labeled.Height
	cur := append([]int(nil), labeled.Labels...)
	thresholdVal := edges.valueForFraction(threshold)

	for pass := 0; pass < passes; pass++ {
		next := append([]int(nil), cur...)

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				if edges.Data[idx] >= thresholdVal {
					continue
				}

				counts := make(map[int]int, paletteSize)
				bestCount := 0
				bestIdx := cur[idx]

				for ny := y - 1; ny <= y+1; ny++ {
					if ny < 0 || ny >= h {
						continue
					}
					for nx := x - 1; nx <= x+1; nx++ {
						if nx < 0 || nx >= w {
							continue
						}
						nidx := ny*w + nx
						if edges.Data[nidx] >= thresholdVal {
							continue
						}
						ci := cur[nidx]
						counts[ci]++
						if counts[ci] > bestCount {
							bestCount = counts[ci]
							bestIdx = ci
						}
					}
				}

				next[idx] = bestIdx
			}
		}

		cur = next
	}

	return &core.LabeledImage{Width: w, Height: h, Labels: cur}
}

// RecolorFromOriginal replaces each palette entry by the mean of the
// original (pre-smoothing, pre-quantization) pixels now assigned to it,
// restoring color fidelity after label-smoothing decisions (spec §4.2.2
// step 7).
func RecolorFromOriginal(original *core.Raster, labeled *core.LabeledImage, palette core.Palette) core.Palette {
	k := len(palette)
	sumR := make([]int64, k)
	sumG := make([]int64, k)
	sumB := make([]int64, k)
	counts := make([]int64, k)

	for i, p := range original.Pixels {
		idx := labeled.Labels[i]
		sumR[idx] += int64(p.R)
		sumG[idx] += int64(p.G)
		sumB[idx] += int64(p.B)
		counts[idx]++
	}

	out := make(core.Palette, k)
	for i := range out {
		if counts[i] == 0 {
			out[i] = palette[i]
			continue
		}
		out[i] = core.RGB{
			R: uint8(sumR[i] / counts[i]),
			G: uint8(sumG[i] / counts[i]),
			B: uint8(sumB[i] / counts[i]),
		}
	}
	return out
}
