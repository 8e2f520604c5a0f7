package shape

import (
	"math"

	"rastervec/core"
)

// FitBezier fits one or more cubic Bézier segments to the open arc
// points (spec §4.5 step 7, enhanced pipeline only). Points are assumed
// chord-length-ish sampled; bbox is the whole contour's bounding box,
// used for the overshoot clamp. Ported from the classic Schneider
// least-squares fit (chord-length parameterization, Newton-Raphson
// reparameterization, recursive split on worst error), adapted to clamp
// control points per spec rather than the textbook's unclamped version.
func FitBezier(points []core.Point, maxError float64, bboxMin, bboxMax core.Point) []core.Segment {
	if len(points) < 2 {
		return nil
	}
	if len(points) == 2 {
		return []core.Segment{{Kind: core.SegmentLine, To: points[1]}}
	}

	tangentStart := estimateTangent(points, 0, 1)
	tangentEnd := estimateTangent(points, len(points)-1, -1)

	return fitCubic(points, tangentStart, tangentEnd, maxError, bboxMin, bboxMax)
}

func estimateTangent(points []core.Point, i, dir int) core.Point {
	j := i + dir
	if j < 0 || j >= len(points) {
		return core.Point{X: 1, Y: 0}
	}
	dx := points[j].X - points[i].X
	dy := points[j].Y - points[i].Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return core.Point{X: 1, Y: 0}
	}
	return core.Point{X: dx / n, Y: dy / n}
}

func fitCubic(points []core.Point, tanStart, tanEnd core.Point, maxError float64, bboxMin, bboxMax core.Point) []core.Segment {
	if len(points) < 3 {
		return []core.Segment{{Kind: core.SegmentLine, To: points[len(points)-1]}}
	}

	u := chordLengthParameterize(points)
	ctrl := generateBezier(points, u, tanStart, tanEnd)
	clampControl(&ctrl, bboxMin, bboxMax)

	maxErr, worstIdx := computeMaxError(points, u, ctrl)
	if maxErr < maxError {
		return []core.Segment{{
			Kind:     core.SegmentCubic,
			Control1: ctrl[1],
			Control2: ctrl[2],
			To:       ctrl[3],
		}}
	}

	// Newton-Raphson reparameterization passes before giving up and splitting.
	for pass := 0; pass < 4; pass++ {
		u = reparameterize(points, u, ctrl)
		ctrl = generateBezier(points, u, tanStart, tanEnd)
		clampControl(&ctrl, bboxMin, bboxMax)
		maxErr, worstIdx = computeMaxError(points, u, ctrl)
		if maxErr < maxError {
			return []core.Segment{{
				Kind:     core.SegmentCubic,
				Control1: ctrl[1],
				Control2: ctrl[2],
				To:       ctrl[3],
			}}
		}
	}

	if worstIdx <= 0 || worstIdx >= len(points)-1 {
		worstIdx = len(points) / 2
	}
	splitTangent := estimateSplitTangent(points, worstIdx)

	left := fitCubic(points[:worstIdx+1], tanStart, negate(splitTangent), maxError, bboxMin, bboxMax)
	right := fitCubic(points[worstIdx:], splitTangent, tanEnd, maxError, bboxMin, bboxMax)
	return append(left, right...)
}

func estimateSplitTangent(points []core.Point, i int) core.Point {
	prev := points[i-1]
	next := points[i+1]
	dx := next.X - prev.X
	dy := next.Y - prev.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return core.Point{X: 1, Y: 0}
	}
	return core.Point{X: dx / n, Y: dy / n}
}

func negate(p core.Point) core.Point {
	return core.Point{X: -p.X, Y: -p.Y}
}

func chordLengthParameterize(points []core.Point) []float64 {
	u := make([]float64, len(points))
	u[0] = 0
	for i := 1; i < len(points); i++ {
		u[i] = u[i-1] + math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}
	total := u[len(u)-1]
	if total == 0 {
		return u
	}
	for i := range u {
		u[i] /= total
	}
	return u
}

// generateBezier solves the least-squares system for the two interior
// control points given fixed endpoint tangent directions.
func generateBezier(points []core.Point, u []float64, tanStart, tanEnd core.Point) [4]core.Point {
	first, last := points[0], points[len(points)-1]

	var a1sq, a2sq, a1a2 float64
	var cx1, cx2 float64
	var cy1, cy2 float64

	for i, t := range u {
		b0, b1, b2, b3 := bernstein(t)
		a1x, a1y := tanStart.X*b1, tanStart.Y*b1
		a2x, a2y := tanEnd.X*b2, tanEnd.Y*b2

		a1sq += a1x*a1x + a1y*a1y
		a2sq += a2x*a2x + a2y*a2y
		a1a2 += a1x*a2x + a1y*a2y

		px := points[i].X - (b0+b1)*first.X - (b2+b3)*last.X
		py := points[i].Y - (b0+b1)*first.Y - (b2+b3)*last.Y

		cx1 += a1x * px
		cx2 += a2x * px
		cy1 += a1y * py
		cy2 += a2y * py
	}

	c1 := cx1 + cy1
	c2 := cx2 + cy2
	det := a1sq*a2sq - a1a2*a1a2

	var alpha1, alpha2 float64
	if math.Abs(det) > 1e-9 {
		alpha1 = (c1*a2sq - c2*a1a2) / det
		alpha2 = (a1sq*c2 - a1a2*c1) / det
	}

	chordLen := math.Hypot(last.X-first.X, last.Y-first.Y)
	epsilon := chordLen * 1e-6
	if alpha1 < epsilon || alpha2 < epsilon {
		alpha1 = chordLen / 3
		alpha2 = chordLen / 3
	}

	return [4]core.Point{
		first,
		{X: first.X + tanStart.X*alpha1, Y: first.Y + tanStart.Y*alpha1},
		{X: last.X + tanEnd.X*alpha2, Y: last.Y + tanEnd.Y*alpha2},
		last,
	}
}

func bernstein(t float64) (b0, b1, b2, b3 float64) {
	mt := 1 - t
	b0 = mt * mt * mt
	b1 = 3 * mt * mt * t
	b2 = 3 * mt * t * t
	b3 = t * t * t
	return
}

func bezierPoint(ctrl [4]core.Point, t float64) core.Point {
	b0, b1, b2, b3 := bernstein(t)
	return core.Point{
		X: b0*ctrl[0].X + b1*ctrl[1].X + b2*ctrl[2].X + b3*ctrl[3].X,
		Y: b0*ctrl[0].Y + b1*ctrl[1].Y + b2*ctrl[2].Y + b3*ctrl[3].Y,
	}
}

func bezierDerivative(ctrl [4]core.Point, t float64) core.Point {
	mt := 1 - t
	return core.Point{
		X: 3*mt*mt*(ctrl[1].X-ctrl[0].X) + 6*mt*t*(ctrl[2].X-ctrl[1].X) + 3*t*t*(ctrl[3].X-ctrl[2].X),
		Y: 3*mt*mt*(ctrl[1].Y-ctrl[0].Y) + 6*mt*t*(ctrl[2].Y-ctrl[1].Y) + 3*t*t*(ctrl[3].Y-ctrl[2].Y),
	}
}

func computeMaxError(points []core.Point, u []float64, ctrl [4]core.Point) (float64, int) {
	maxErr := 0.0
	worst := -1
	for i, t := range u {
		p := bezierPoint(ctrl, t)
		d := math.Hypot(p.X-points[i].X, p.Y-points[i].Y)
		if d > maxErr {
			maxErr = d
			worst = i
		}
	}
	return maxErr, worst
}

// reparameterize runs one Newton-Raphson step per sample point, pulling
// each parameter toward the value that minimizes distance to its point.
func reparameterize(points []core.Point, u []float64, ctrl [4]core.Point) []float64 {
	out := make([]float64, len(u))
	for i, t := range u {
		p := bezierPoint(ctrl, t)
		d1 := bezierDerivative(ctrl, t)
		d2 := bezierSecondDerivative(ctrl, t)

		qx := p.X - points[i].X
		qy := p.Y - points[i].Y

		numerator := qx*d1.X + qy*d1.Y
		denominator := d1.X*d1.X + d1.Y*d1.Y + qx*d2.X + qy*d2.Y

		nt := t
		if denominator != 0 {
			nt = t - numerator/denominator
		}
		if nt < 0 {
			nt = 0
		}
		if nt > 1 {
			nt = 1
		}
		out[i] = nt
	}
	return out
}

func bezierSecondDerivative(ctrl [4]core.Point, t float64) core.Point {
	mt := 1 - t
	return core.Point{
		X: 6*mt*(ctrl[2].X-2*ctrl[1].X+ctrl[0].X) + 6*t*(ctrl[3].X-2*ctrl[2].X+ctrl[1].X),
		Y: 6*mt*(ctrl[2].Y-2*ctrl[1].Y+ctrl[0].Y) + 6*t*(ctrl[3].Y-2*ctrl[2].Y+ctrl[1].Y),
	}
}

// clampControl enforces spec §4.5 step 7's two control-point bounds: stay
// within the contour's bbox expanded by 15%, and never project a handle
// past the chord length between the segment's own endpoints (the
// bulge-prevention clamp).
func clampControl(ctrl *[4]core.Point, bboxMin, bboxMax core.Point) {
	marginX := (bboxMax.X - bboxMin.X) * 0.15
	marginY := (bboxMax.Y - bboxMin.Y) * 0.15
	loX, hiX := bboxMin.X-marginX, bboxMax.X+marginX
	loY, hiY := bboxMin.Y-marginY, bboxMax.Y+marginY

	chord := math.Hypot(ctrl[3].X-ctrl[0].X, ctrl[3].Y-ctrl[0].Y)

	clampHandle := func(anchor, handle core.Point) core.Point {
		handle.X = clamp(handle.X, loX, hiX)
		handle.Y = clamp(handle.Y, loY, hiY)
		dx, dy := handle.X-anchor.X, handle.Y-anchor.Y
		dist := math.Hypot(dx, dy)
		if chord > 0 && dist > chord {
			scale := chord / dist
			handle.X = anchor.X + dx*scale
			handle.Y = anchor.Y + dy*scale
		}
		return handle
	}

	ctrl[1] = clampHandle(ctrl[0], ctrl[1])
	ctrl[2] = clampHandle(ctrl[3], ctrl[2])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EnforceG1 rotates each non-corner join's adjacent control handles so
// they lie anti-parallel about the shared point, giving the path G1
// (tangent) continuity across the join (spec §4.5 step 7). Joins at
// locked corners are left untouched — a corner is supposed to break
// tangent continuity.
func EnforceG1(segments []core.Segment, locked []bool) {
	n := len(segments)
	if n < 2 {
		return
	}

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if segments[i].Kind != core.SegmentCubic || segments[j].Kind != core.SegmentCubic {
			continue
		}
		jointIdx := j
		if jointIdx < len(locked) && locked[jointIdx] {
			continue
		}

		joint := segments[i].To
		incoming := core.Point{X: joint.X - segments[i].Control2.X, Y: joint.Y - segments[i].Control2.Y}
		outgoing := core.Point{X: segments[j].Control1.X - joint.X, Y: segments[j].Control1.Y - joint.Y}

		inLen := math.Hypot(incoming.X, incoming.Y)
		outLen := math.Hypot(outgoing.X, outgoing.Y)
		if inLen == 0 || outLen == 0 {
			continue
		}

		avgDir := core.Point{
			X: incoming.X/inLen - outgoing.X/outLen,
			Y: incoming.Y/inLen - outgoing.Y/outLen,
		}
		dirLen := math.Hypot(avgDir.X, avgDir.Y)
		if dirLen == 0 {
			continue
		}
		avgDir.X /= dirLen
		avgDir.Y /= dirLen

		segments[i].Control2 = core.Point{X: joint.X - avgDir.X*inLen, Y: joint.Y - avgDir.Y*inLen}
		segments[j].Control1 = core.Point{X: joint.X + avgDir.X*outLen, Y: joint.Y + avgDir.Y*outLen}
	}
}
