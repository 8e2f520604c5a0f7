// Package shape turns a raw traced contour into the line/cubic-Bézier
// path the document emitter writes out (spec §4.5): Gaussian smoothing,
// simplification, border snapping, corner injection, degenerate
// filtering, the thin-stripe fast path, and (enhanced only) Bézier
// fitting. Grounded on color2svg.go's polyline cleanup pass, generalized
// from its single straight-line simplification into the full pipeline
// the spec requires.
package shape

import (
	"math"

	"rastervec/core"
)

// LockedCorners flags every vertex whose turning angle exceeds
// thresholdDeg; smoothing and simplification must hold these fixed
// (spec §4.5 steps 1–2).
func LockedCorners(c core.Contour, thresholdDeg float64) []bool {
	n := len(c)
	locked := make([]bool, n)
	if n < 3 {
		return locked
	}
	thresholdRad := thresholdDeg * math.Pi / 180

	for i := 0; i < n; i++ {
		prev := c[(i-1+n)%n]
		cur := c[i]
		next := c[(i+1)%n]

		v1 := core.Point{X: cur.X - prev.X, Y: cur.Y - prev.Y}
		v2 := core.Point{X: next.X - cur.X, Y: next.Y - cur.Y}

		angle := turningAngle(v1, v2)
		if angle > thresholdRad {
			locked[i] = true
		}
	}
	return locked
}

func turningAngle(v1, v2 core.Point) float64 {
	len1 := math.Hypot(v1.X, v1.Y)
	len2 := math.Hypot(v2.X, v2.Y)
	if len1 == 0 || len2 == 0 {
		return 0
	}
	dot := (v1.X*v2.X + v1.Y*v2.Y) / (len1 * len2)
	if dot > 1 {
		dot = 1
	}
	if dot < -1 {
		dot = -1
	}
	return math.Acos(dot)
}

// Smooth applies `passes` iterations of the 0.25/0.5/0.25 three-point
// Gaussian kernel to every non-locked vertex (spec §4.5 step 1). Locked
// vertices never move, but still contribute their position as a neighbor.
func Smooth(c core.Contour, passes int, locked []bool) core.Contour {
	n := len(c)
	if n < 3 || passes <= 0 {
		return append(core.Contour(nil), c...)
	}

	cur := append(core.Contour(nil), c...)
	for pass := 0; pass < passes; pass++ {
		next := append(core.Contour(nil), cur...)
		for i := 0; i < n; i++ {
			if locked[i] {
				continue
			}
			prev := cur[(i-1+n)%n]
			mid := cur[i]
			nxt := cur[(i+1)%n]
			next[i] = core.Point{
				X: 0.25*prev.X + 0.5*mid.X + 0.25*nxt.X,
				Y: 0.25*prev.Y + 0.5*mid.Y + 0.25*nxt.Y,
			}
		}
		cur = next
	}
	return cur
}
