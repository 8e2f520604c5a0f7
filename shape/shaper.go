package shape

import (
	"sync"

	"rastervec/core"
)

const (
	cornerLockAngleDeg = 30.0
	rdpEpsilon         = 2.0
	vwAreaThreshold    = 1.5
	bezierMaxError     = 1.0
)

// ShapeContour runs the full spec §4.5 pipeline over one traced contour:
// smoothing, simplification, border snap, corner injection, degenerate
// filtering, the thin-stripe fast path, and (enhanced only) Bézier
// fitting with G1 continuity.
func ShapeContour(c core.Contour, pipeline core.PipelineKind, smoothPasses int, width, height int) (core.ShapedPath, bool) {
	if stripe, ok := ThinStripeRect(c); ok {
		return rectPath(stripe), true
	}

	locked := LockedCorners(c, cornerLockAngleDeg)
	smoothed := Smooth(c, smoothPasses, locked)

	var simplified core.Contour
	if pipeline == core.PipelineEnhanced {
		simplified = Simplify(smoothed, locked, MethodVisvalingamWhyatt, vwAreaThreshold)
	} else {
		simplified = Simplify(smoothed, locked, MethodRDP, rdpEpsilon)
	}

	snapped := SnapToBorder(simplified, float64(width), float64(height))
	snapped = InjectBorderCorners(snapped, float64(width), float64(height))

	if stripe, ok := ThinStripeRect(snapped); ok {
		return rectPath(stripe), true
	}
	if IsDegenerate(snapped) {
		return core.ShapedPath{}, false
	}

	if pipeline != core.PipelineEnhanced {
		return core.ShapedPath{Start: snapped[0], Segments: linePath(snapped)}, true
	}

	minX, minY, maxX, maxY := bbox(snapped)
	bboxMin := core.Point{X: minX, Y: minY}
	bboxMax := core.Point{X: maxX, Y: maxY}

	n := len(snapped)
	var segments []core.Segment
	lockedFlags := make([]bool, n)
	for i := range lockedFlags {
		lockedFlags[i] = i < len(locked) && locked[i]
	}

	anchors := lockedIndices(lockedFlags)
	if len(anchors) < 2 {
		anchors = []int{0, n / 2}
	}
	for i, start := range anchors {
		end := anchors[(i+1)%len(anchors)]
		arc := extractArc(snapped, start, end)
		segments = append(segments, FitBezier(arc, bezierMaxError, bboxMin, bboxMax)...)
	}

	EnforceG1(segments, lockedFlags)

	return core.ShapedPath{Start: snapped[0], Segments: segments}, true
}

func linePath(c core.Contour) []core.Segment {
	segs := make([]core.Segment, 0, len(c)-1)
	for i := 1; i < len(c); i++ {
		segs = append(segs, core.Segment{Kind: core.SegmentLine, To: c[i]})
	}
	return segs
}

func rectPath(c core.Contour) core.ShapedPath {
	return core.ShapedPath{Start: c[0], Segments: linePath(c)}
}

// ShapeAll shapes every contour, preserving input order. The enhanced
// pipeline's per-contour work is independent and data-parallel (spec
// §5): workers receive and return by value over a bounded pool, writing
// into a pre-sized indexed slot so the final order never depends on
// completion order, mirroring video2color.SplitAllFramesAuto's
// semaphore-free WaitGroup-over-indexed-slice pattern generalized with a
// bounded worker count.
func ShapeAll(contours []core.Contour, pipeline core.PipelineKind, smoothPasses, width, height, workers int) []core.ShapedPath {
	if pipeline != core.PipelineEnhanced || workers <= 1 {
		var out []core.ShapedPath
		for _, c := range contours {
			if p, ok := ShapeContour(c, pipeline, smoothPasses, width, height); ok {
				out = append(out, p)
			}
		}
		return out
	}

	results := make([]*core.ShapedPath, len(contours))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, c := range contours {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, contour core.Contour) {
			defer wg.Done()
			defer func() { <-sem }()
			if p, ok := ShapeContour(contour, pipeline, smoothPasses, width, height); ok {
				results[idx] = &p
			}
		}(i, c)
	}
	wg.Wait()

	var out []core.ShapedPath
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
