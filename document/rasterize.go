package document

import (
	"rastervec/core"
)

// Rasterize evaluates doc at every pixel center, painting layers
// back-to-front in the order Assemble already put them in (descending
// area), and returns one core.RGB per pixel in row-major order. This is
// the machinery behind the spec §8 round-trip testable property and the
// CLI's optional -verify self-check, which runs on the in-memory document
// before it is written: it owns no test-framework
// dependency, just point-in-polygon evaluation, so it can run from
// either a unit test or -verify.
func Rasterize(doc core.Document) []core.RGB {
	out := make([]core.RGB, doc.Width*doc.Height)
	for i := range out {
		out[i] = doc.Background
	}

	for _, layer := range doc.Layers {
		polys := make([][]core.Point, 0, len(layer.Paths))
		for _, p := range layer.Paths {
			polys = append(polys, flatten(p))
		}
		for y := 0; y < doc.Height; y++ {
			cy := float64(y) + 0.5
			for x := 0; x < doc.Width; x++ {
				cx := float64(x) + 0.5
				if evenOddInside(polys, cx, cy) {
					out[y*doc.Width+x] = layer.Color
				}
			}
		}
	}

	return out
}

// Agreement compares a rasterized document against a labeled image's
// palette colors, returning the fraction of pixels whose rasterized
// color equals the labeled image's palette color at that pixel (spec §8:
// "rasterizing the output document... yields an image whose per-pixel
// labeled color equals the labeled image for ≥99%/≥90% of pixels").
func Agreement(doc core.Document, labeled *core.LabeledImage, palette core.Palette) float64 {
	if labeled.Width != doc.Width || labeled.Height != doc.Height {
		return 0
	}
	rendered := Rasterize(doc)
	total := len(rendered)
	if total == 0 {
		return 1
	}

	match := 0
	for i, idx := range labeled.Labels {
		if idx >= 0 && idx < len(palette) && rendered[i] == palette[idx] {
			match++
		}
	}
	return float64(match) / float64(total)
}

// flatten turns a ShapedPath's segments into a closed polygon, sampling
// cubic Bézier segments at a fixed resolution since the even-odd test
// only needs straight edges.
func flatten(p core.ShapedPath) []core.Point {
	poly := []core.Point{p.Start}
	cur := p.Start
	for _, seg := range p.Segments {
		switch seg.Kind {
		case core.SegmentCubic:
			const steps = 16
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				poly = append(poly, cubicPoint(cur, seg.Control1, seg.Control2, seg.To, t))
			}
		default:
			poly = append(poly, seg.To)
		}
		cur = seg.To
	}
	return poly
}

func cubicPoint(p0, p1, p2, p3 core.Point, t float64) core.Point {
	mt := 1 - t
	b0 := mt * mt * mt
	b1 := 3 * mt * mt * t
	b2 := 3 * mt * t * t
	b3 := t * t * t
	return core.Point{
		X: b0*p0.X + b1*p1.X + b2*p2.X + b3*p3.X,
		Y: b0*p0.Y + b1*p1.Y + b2*p2.Y + b3*p3.Y,
	}
}

// evenOddInside applies the even-odd fill rule across every sub-path of a
// layer at once (spec §4.6: "combines all of that color's sub-contours as
// sub-paths in a single element with an even-odd fill rule"): a point is
// inside the layer when the sum of crossings across all polygons is odd.
func evenOddInside(polys [][]core.Point, x, y float64) bool {
	crossings := 0
	for _, poly := range polys {
		crossings += crossingCount(poly, x, y)
	}
	return crossings%2 == 1
}

func crossingCount(poly []core.Point, x, y float64) int {
	n := len(poly)
	if n < 3 {
		return 0
	}
	count := 0
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		if (a.Y > y) == (b.Y > y) {
			continue
		}
		xIntersect := a.X + (y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
		if xIntersect > x {
			count++
		}
	}
	return count
}
