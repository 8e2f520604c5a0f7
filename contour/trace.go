// Package contour implements marching-squares contour tracing over a
// binary mask (spec §4.4). Ported from
// original_source/src/vectorizer.rs's marching_squares_contours: same
// padded-grid corner/case/edge-midpoint geometry and the same fixed
// saddle-case resolution (cases 5 and 10), but chained via the endpoint
// map the spec calls for instead of the Rust source's cell-walk, so that
// segment generation and chaining are separate, independently testable
// steps.
package contour

import (
	"fmt"
	"math"
	"sort"

	"rastervec/core"
)

// side indices into a marching-squares cell: 0=top, 1=right, 2=bottom, 3=left.
const (
	sideTop = iota
	sideRight
	sideBottom
	sideLeft
)

// caseEdges maps a 4-bit case index (bit3=TL,bit2=TR,bit1=BR,bit0=BL) to the
// side pairs each contributed segment connects. Cases 5 and 10 are saddles;
// the resolution below is fixed (not data-dependent) so that identical
// masks always trace identical contours (spec §9, "must be fixed
// (inside-majority) rather than undefined").
var caseEdges = map[int][][2]int{
	0:  {},
	1:  {{sideBottom, sideLeft}},
	2:  {{sideRight, sideBottom}},
	3:  {{sideRight, sideLeft}},
	4:  {{sideTop, sideRight}},
	5:  {{sideTop, sideRight}, {sideBottom, sideLeft}},
	6:  {{sideTop, sideBottom}},
	7:  {{sideTop, sideLeft}},
	8:  {{sideLeft, sideTop}},
	9:  {{sideBottom, sideTop}},
	10: {{sideLeft, sideTop}, {sideRight, sideBottom}},
	11: {{sideRight, sideTop}},
	12: {{sideLeft, sideRight}},
	13: {{sideBottom, sideRight}},
	14: {{sideLeft, sideBottom}},
	15: {},
}

type segment struct {
	a, b core.Point
}

// Trace runs marching squares over mask and returns every closed contour,
// in stable order (smallest starting coordinate first, per spec §4.4).
func Trace(mask *core.Mask) ([]core.Contour, error) {
	w, h := mask.Width, mask.Height

	cornerInside := func(gx, gy int) bool {
		if gx < 1 || gy < 1 || gx > w || gy > h {
			return false
		}
		return mask.At(gx-1, gy-1)
	}

	cellCase := func(cx, cy int) int {
		tl := b2i(cornerInside(cx, cy))
		tr := b2i(cornerInside(cx+1, cy))
		br := b2i(cornerInside(cx+1, cy+1))
		bl := b2i(cornerInside(cx, cy+1))
		return tl<<3 | tr<<2 | br<<1 | bl
	}

	edgePoint := func(cx, cy, side int) core.Point {
		var x, y float64
		switch side {
		case sideTop:
			x, y = float64(cx)+0.5, float64(cy)
		case sideRight:
			x, y = float64(cx+1), float64(cy)+0.5
		case sideBottom:
			x, y = float64(cx)+0.5, float64(cy+1)
		case sideLeft:
			x, y = float64(cx), float64(cy)+0.5
		}
		return core.Point{
			X: clampF(x-0.5, 0, float64(w)),
			Y: clampF(y-0.5, 0, float64(h)),
		}
	}

	var segments []segment
	for cy := 0; cy <= h; cy++ {
		for cx := 0; cx <= w; cx++ {
			pairs := caseEdges[cellCase(cx, cy)]
			for _, pair := range pairs {
				segments = append(segments, segment{
					a: edgePoint(cx, cy, pair[1]),
					b: edgePoint(cx, cy, pair[0]),
				})
			}
		}
	}

	return chain(segments)
}

// endpoint identifies one end of one segment: segment index + which end.
type endpoint struct {
	seg int
	end int // 0 = a, 1 = b
}

// chain connects segment endpoints that share a rounded coordinate into
// closed polylines (spec §4.4's "endpoint lookup"). Every segment must be
// consumed exactly once; a segment end with no matching partner (other
// than its own other end forming a degenerate loop) is an invariant
// violation — marching squares over a correctly padded grid always closes.
func chain(segments []segment) ([]core.Contour, error) {
	adjacency := make(map[string][]endpoint)
	addEndpoint := func(p core.Point, ep endpoint) {
		key := pointKey(p)
		adjacency[key] = append(adjacency[key], ep)
	}
	for i, s := range segments {
		addEndpoint(s.a, endpoint{seg: i, end: 0})
		addEndpoint(s.b, endpoint{seg: i, end: 1})
	}

	used := make([]bool, len(segments))
	var contours []core.Contour

	for start := range segments {
		if used[start] {
			continue
		}

		var contour core.Contour
		curSeg := start
		curEnd := 0 // we enter at `a`, so we exit via `b`

		for {
			used[curSeg] = true
			s := segments[curSeg]
			var from, to core.Point
			if curEnd == 0 {
				from, to = s.a, s.b
			} else {
				from, to = s.b, s.a
			}
			contour = append(contour, from)

			next, ok := findPartner(adjacency, to, curSeg, used)
			if !ok {
				if pointsEqual(to, segments[start].a) {
					break
				}
				return nil, core.NewError(core.Internal, "contour.Trace",
					fmt.Sprintf("unmatched segment endpoint at (%.3f, %.3f)", to.X, to.Y))
			}
			if next.seg == start && pointsEqual(to, segments[start].a) {
				break
			}

			curSeg = next.seg
			if next.end == 0 {
				curEnd = 0
			} else {
				curEnd = 1
			}
		}

		if len(contour) >= 3 {
			contours = append(contours, contour)
		}
	}

	sortContoursStable(contours)
	return contours, nil
}

// findPartner returns the unused segment endpoint co-located with p other
// than the one we just came from.
func findPartner(adjacency map[string][]endpoint, p core.Point, fromSeg int, used []bool) (endpoint, bool) {
	key := pointKey(p)
	for _, ep := range adjacency[key] {
		if ep.seg == fromSeg {
			continue
		}
		if used[ep.seg] {
			continue
		}
		return ep, true
	}
	return endpoint{}, false
}

func pointKey(p core.Point) string {
	// Grid vertices fall on a half-integer lattice; round well past that
	// precision so floating point noise never splits one vertex in two.
	return fmt.Sprintf("%d_%d", int(math.Round(p.X*1000)), int(math.Round(p.Y*1000)))
}

func pointsEqual(a, b core.Point) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

func sortContoursStable(contours []core.Contour) {
	sort.SliceStable(contours, func(i, j int) bool {
		return leadCoord(contours[i]) < leadCoord(contours[j])
	})
}

func leadCoord(c core.Contour) float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	for _, p := range c {
		if p.Y < minY || (p.Y == minY && p.X < minX) {
			minX, minY = p.X, p.Y
		}
	}
	return minY*1e6 + minX
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SignedArea returns the signed polygon area (shoelace formula); positive
// for counter-clockwise contours.
func SignedArea(c core.Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return area / 2
}
