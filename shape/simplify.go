package shape

import (
	"math"
	"sort"

	"rastervec/core"
)

// Method selects the simplification algorithm (spec §4.5 step 2): RDP for
// the classic pipeline, Visvalingam-Whyatt for enhanced.
type Method int

const (
	MethodRDP Method = iota
	MethodVisvalingamWhyatt
)

// Simplify reduces contour's vertex count while holding every locked
// corner fixed. Locked vertices split the loop into independent arcs so
// simplification never erases a corner or smooths across it.
func Simplify(contour core.Contour, locked []bool, method Method, tolerance float64) core.Contour {
	n := len(contour)
	if n < 4 {
		return append(core.Contour(nil), contour...)
	}

	anchors := lockedIndices(locked)
	switch len(anchors) {
	case 0:
		anchors = []int{0, n / 2}
	case 1:
		anchors = []int{anchors[0], (anchors[0] + n/2) % n}
	}

	var result core.Contour
	for i, start := range anchors {
		end := anchors[(i+1)%len(anchors)]
		arc := extractArc(contour, start, end)

		var simplified []core.Point
		switch method {
		case MethodVisvalingamWhyatt:
			simplified = visvalingamWhyatt(arc, tolerance)
		default:
			simplified = rdp(arc, tolerance)
		}

		if i > 0 && len(simplified) > 0 {
			simplified = simplified[1:]
		}
		// The last arc ends back at the first anchor, already stored as
		// result[0]; closure stays implicit.
		if i == len(anchors)-1 && len(simplified) > 0 {
			simplified = simplified[:len(simplified)-1]
		}
		result = append(result, simplified...)
	}
	return result
}

func lockedIndices(locked []bool) []int {
	var idx []int
	for i, v := range locked {
		if v {
			idx = append(idx, i)
		}
	}
	return idx
}

// extractArc returns the cyclic slice of points from index start to index
// end inclusive, walking forward (wrapping past the end of the slice).
func extractArc(c core.Contour, start, end int) []core.Point {
	n := len(c)
	var arc []core.Point
	i := start
	for {
		arc = append(arc, c[i])
		if i == end {
			break
		}
		i = (i + 1) % n
	}
	return arc
}

// rdp is the Ramer-Douglas-Peucker simplification of an open polyline,
// always keeping the first and last point.
func rdp(points []core.Point, epsilon float64) []core.Point {
	if len(points) < 3 {
		return points
	}

	maxDist := -1.0
	maxIdx := 0
	first, last := points[0], points[len(points)-1]
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= epsilon {
		return []core.Point{first, last}
	}

	left := rdp(points[:maxIdx+1], epsilon)
	right := rdp(points[maxIdx:], epsilon)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b core.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Hypot(dx, dy)
	return num / den
}

type vwPoint struct {
	p     core.Point
	area  float64
	alive bool
}

// visvalingamWhyatt repeatedly removes the point whose triangle (formed
// with its current neighbors) has the smallest area, stopping once every
// remaining interior point's area exceeds the threshold. First and last
// points are never removed.
func visvalingamWhyatt(points []core.Point, areaThreshold float64) []core.Point {
	n := len(points)
	if n < 3 {
		return points
	}

	nodes := make([]*vwPoint, n)
	for i, p := range points {
		nodes[i] = &vwPoint{p: p, alive: true}
	}

	prevOf := make([]int, n)
	nextOf := make([]int, n)
	for i := range nodes {
		prevOf[i] = i - 1
		nextOf[i] = i + 1
	}
	nextOf[n-1] = -1

	triArea := func(i int) float64 {
		pi, ni := prevOf[i], nextOf[i]
		if pi < 0 || ni < 0 {
			return math.Inf(1)
		}
		a, b, c := nodes[pi].p, nodes[i].p, nodes[ni].p
		return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
	}

	for i := 1; i < n-1; i++ {
		nodes[i].area = triArea(i)
	}

	for {
		minIdx := -1
		minArea := math.Inf(1)
		for i := 1; i < n-1; i++ {
			if nodes[i].alive && nodes[i].area < minArea {
				minArea = nodes[i].area
				minIdx = i
			}
		}
		if minIdx < 0 || minArea > areaThreshold {
			break
		}

		nodes[minIdx].alive = false
		pi, ni := prevOf[minIdx], nextOf[minIdx]
		nextOf[pi] = ni
		prevOf[ni] = pi
		if pi > 0 {
			nodes[pi].area = triArea(pi)
		}
		if ni < n-1 {
			nodes[ni].area = triArea(ni)
		}
	}

	var out []core.Point
	for _, nd := range nodes {
		if nd.alive {
			out = append(out, nd.p)
		}
	}
	return out
}

// SnapToBorder snaps points within 0.5px of the image border exactly onto
// it, then drops consecutive duplicates within 1e-3 (spec §4.5 step 3).
func SnapToBorder(c core.Contour, width, height float64) core.Contour {
	const snapDist = 0.5
	snapped := make(core.Contour, len(c))
	for i, p := range c {
		x, y := p.X, p.Y
		if math.Abs(x) <= snapDist {
			x = 0
		} else if math.Abs(x-width) <= snapDist {
			x = width
		}
		if math.Abs(y) <= snapDist {
			y = 0
		} else if math.Abs(y-height) <= snapDist {
			y = height
		}
		snapped[i] = core.Point{X: x, Y: y}
	}
	return dedupConsecutive(snapped)
}

func dedupConsecutive(c core.Contour) core.Contour {
	if len(c) == 0 {
		return c
	}
	out := core.Contour{c[0]}
	for i := 1; i < len(c); i++ {
		last := out[len(out)-1]
		if math.Hypot(c[i].X-last.X, c[i].Y-last.Y) > 1e-3 {
			out = append(out, c[i])
		}
	}
	if len(out) > 1 {
		first, last := out[0], out[len(out)-1]
		if math.Hypot(first.X-last.X, first.Y-last.Y) <= 1e-3 {
			out = out[:len(out)-1]
		}
	}
	return out
}

func onBorderH(p core.Point, height float64) bool {
	return p.Y == 0 || p.Y == height
}

func onBorderV(p core.Point, width float64) bool {
	return p.X == 0 || p.X == width
}

// InjectBorderCorners inserts the exact right-angle corner point wherever
// a segment jumps diagonally between a horizontal border edge and a
// vertical one, so border-hugging paths never cut a corner (spec §4.5
// step 4).
func InjectBorderCorners(c core.Contour, width, height float64) core.Contour {
	n := len(c)
	if n < 2 {
		return c
	}

	var out core.Contour
	for i := 0; i < n; i++ {
		p0 := c[i]
		p1 := c[(i+1)%n]
		out = append(out, p0)

		hOnH, hOnV := onBorderH(p0, height), onBorderV(p0, width)
		nOnH, nOnV := onBorderH(p1, height), onBorderV(p1, width)

		crossesCorner := (hOnH && !hOnV && nOnV && !nOnH) || (hOnV && !hOnH && nOnH && !nOnV)
		if crossesCorner && p0.X != p1.X && p0.Y != p1.Y {
			var corner core.Point
			if hOnH {
				corner = core.Point{X: p1.X, Y: p0.Y}
			} else {
				corner = core.Point{X: p0.X, Y: p1.Y}
			}
			out = append(out, corner)
		}
	}
	return out
}

// IsDegenerate reports whether contour's area or bounding-box side falls
// below the spec's §4.5 step 5 thresholds. Callers must check
// ThinStripeRect first, since a thin stripe is the documented exception.
func IsDegenerate(c core.Contour) bool {
	if len(c) < 3 {
		return true
	}
	area := math.Abs(signedArea(c))
	minX, minY, maxX, maxY := bbox(c)
	w, h := maxX-minX, maxY-minY
	return area < 0.5 || w < 2 || h < 2
}

// ThinStripeRect implements the spec §4.5 step 6 fast path: when a
// contour's bounding box is narrower than 2px on one axis and longer than
// 2px on the other, emit it as a clean axis-aligned rectangle instead of
// letting it fall through to degenerate filtering.
func ThinStripeRect(c core.Contour) (core.Contour, bool) {
	if len(c) < 3 {
		return nil, false
	}
	minX, minY, maxX, maxY := bbox(c)
	w, h := maxX-minX, maxY-minY

	thin := (w < 2 && h > 2) || (h < 2 && w > 2)
	if !thin {
		return nil, false
	}

	return core.Contour{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
	}, true
}

func bbox(c core.Contour) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range c {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return
}

func signedArea(c core.Contour) float64 {
	n := len(c)
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return area / 2
}

// SortByAreaDescending returns a permutation of 0..len(areas)-1 ordering
// layers by pixel area descending, ties broken by tiebreak (spec §5
// determinism requirement). Exported for document.Assemble, which needs
// the same stable area-then-tiebreak comparator to order a Document's
// layers back-to-front.
func SortByAreaDescending(areas []int, tiebreak func(i, j int) bool) []int {
	idx := make([]int, len(areas))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if areas[idx[i]] != areas[idx[j]] {
			return areas[idx[i]] > areas[idx[j]]
		}
		return tiebreak(idx[i], idx[j])
	})
	return idx
}
