// Package quantize reduces a raster's palette to K representative colors
// and labels every pixel, via median-cut (classic) or k-means++ with
// edge-aware smoothing (enhanced). This file implements median-cut,
// generalized from video2color.medianCutQuantize's box-splitting loop
// (core/type.Box → box struct here, same widest-channel-then-median-split
// logic, same mean-of-bucket representative).
package quantize

import (
	"sort"

	"rastervec/core"
)

// box is a bucket of pixel colors, tracked with multiplicity preserved
// (one entry per pixel, matching spec §4.2.1 step 1).
type box struct {
	colors                         []core.RGB
	rMin, rMax, gMin, gMax, bMin, bMax uint8
}

func newBox(colors []core.RGB) *box {
	b := &box{colors: colors}
	b.recalcRange()
	return b
}

func (b *box) recalcRange() {
	if len(b.colors) == 0 {
		return
	}
	b.rMin, b.gMin, b.bMin = 255, 255, 255
	b.rMax, b.gMax, b.bMax = 0, 0, 0
	for _, c := range b.colors {
		if c.R < b.rMin {
			b.rMin = c.R
		}
		if c.R > b.rMax {
			b.rMax = c.R
		}
		if c.G < b.gMin {
			b.gMin = c.G
		}
		if c.G > b.gMax {
			b.gMax = c.G
		}
		if c.B < b.bMin {
			b.bMin = c.B
		}
		if c.B > b.bMax {
			b.bMax = c.B
		}
	}
}

func (b *box) ranges() (rr, gr, br int) {
	return int(b.rMax) - int(b.rMin), int(b.gMax) - int(b.gMin), int(b.bMax) - int(b.bMin)
}

func (b *box) maxRange() int {
	rr, gr, br := b.ranges()
	m := rr
	if gr > m {
		m = gr
	}
	if br > m {
		m = br
	}
	return m
}

func (b *box) average() core.RGB {
	if len(b.colors) == 0 {
		return core.RGB{}
	}
	var sr, sg, sb int
	for _, c := range b.colors {
		sr += int(c.R)
		sg += int(c.G)
		sb += int(c.B)
	}
	n := len(b.colors)
	return core.RGB{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n)}
}

// split divides the box in two at the median of its widest channel. Ties in
// channel choice break to R, G, B in that order (spec §4.2.1 determinism
// rule). Median on an odd count is the middle element after sort; on even
// count, the lower of the two middles — i.e. plain integer-division split
// index, matching video2color's `medianIndex := len / 2`.
func (b *box) split() (*box, *box) {
	rr, gr, br := b.ranges()
	colors := append([]core.RGB(nil), b.colors...)

	switch {
	case rr >= gr && rr >= br:
		sort.Slice(colors, func(i, j int) bool { return colors[i].R < colors[j].R })
	case gr >= br:
		sort.Slice(colors, func(i, j int) bool { return colors[i].G < colors[j].G })
	default:
		sort.Slice(colors, func(i, j int) bool { return colors[i].B < colors[j].B })
	}

	mid := len(colors) / 2
	return newBox(colors[:mid]), newBox(colors[mid:])
}

// MedianCut performs classic median-cut quantization per spec §4.2.1 and
// labels every pixel to its nearest representative (lowest index wins
// ties), returning the palette and the labeled image.
func MedianCut(r *core.Raster, k int) (core.Palette, *core.LabeledImage) {
	if k < 1 {
		k = 1
	}

	colors := make([]core.RGB, len(r.Pixels))
	for i, p := range r.Pixels {
		colors[i] = core.RGB{R: p.R, G: p.G, B: p.B}
	}

	boxes := []*box{newBox(colors)}
	for len(boxes) < k {
		bestIdx := -1
		bestRange := -1
		for i, bx := range boxes {
			if len(bx.colors) < 2 || bx.maxRange() == 0 {
				continue
			}
			if rng := bx.maxRange(); rng > bestRange {
				bestRange = rng
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		toSplit := boxes[bestIdx]
		a, bRight := toSplit.split()
		boxes = append(boxes[:bestIdx], boxes[bestIdx+1:]...)
		if len(a.colors) > 0 {
			boxes = append(boxes, a)
		}
		if len(bRight.colors) > 0 {
			boxes = append(boxes, bRight)
		}
	}

	palette := make(core.Palette, len(boxes))
	for i, bx := range boxes {
		palette[i] = bx.average()
	}

	labeled := core.NewLabeledImage(r.Width, r.Height)
	for i, p := range r.Pixels {
		labeled.Labels[i] = NearestIndex(core.RGB{R: p.R, G: p.G, B: p.B}, palette)
	}

	return palette, labeled
}

// NearestIndex returns the palette index nearest c under squared Euclidean
// RGB distance, with ties broken to the lowest index.
func NearestIndex(c core.RGB, palette core.Palette) int {
	best := 0
	bestDist := -1
	for i, p := range palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		dist := dr*dr + dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}
