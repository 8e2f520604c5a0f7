package shape

import (
	"math"
	"testing"

	"rastervec/core"
)

func TestFitBezierStraightLineStaysWithinTolerance(t *testing.T) {
	var points []core.Point
	for i := 0; i <= 10; i++ {
		points = append(points, core.Point{X: float64(i), Y: 0})
	}
	bboxMin := core.Point{X: 0, Y: 0}
	bboxMax := core.Point{X: 10, Y: 0}
	segs := FitBezier(points, 1.0, bboxMin, bboxMax)
	if len(segs) == 0 {
		t.Fatal("expected at least one segment")
	}
	last := segs[len(segs)-1]
	if last.To.X != 10 {
		t.Fatalf("final segment endpoint X = %v, want 10", last.To.X)
	}
}

func TestClampControlRespectsExpandedBBox(t *testing.T) {
	ctrl := [4]core.Point{
		{X: 0, Y: 0},
		{X: 1000, Y: 1000}, // wildly out of bounds
		{X: -1000, Y: -1000},
		{X: 10, Y: 10},
	}
	bboxMin := core.Point{X: 0, Y: 0}
	bboxMax := core.Point{X: 10, Y: 10}
	clampControl(&ctrl, bboxMin, bboxMax)

	margin := 10 * 0.15
	lo, hi := 0-margin, 10+margin
	for _, p := range []core.Point{ctrl[1], ctrl[2]} {
		if p.X < lo-1e-9 || p.X > hi+1e-9 || p.Y < lo-1e-9 || p.Y > hi+1e-9 {
			t.Fatalf("control point %v escaped the expanded bbox [%v,%v]", p, lo, hi)
		}
	}
}

func TestClampControlNeverExceedsChordLength(t *testing.T) {
	ctrl := [4]core.Point{
		{X: 0, Y: 0},
		{X: 0, Y: 100}, // way beyond the endpoint-to-endpoint chord
		{X: 10, Y: -90},
		{X: 10, Y: 0},
	}
	bboxMin := core.Point{X: 0, Y: 0}
	bboxMax := core.Point{X: 10, Y: 0}
	clampControl(&ctrl, bboxMin, bboxMax)

	chord := math.Hypot(ctrl[3].X-ctrl[0].X, ctrl[3].Y-ctrl[0].Y)
	d1 := math.Hypot(ctrl[1].X-ctrl[0].X, ctrl[1].Y-ctrl[0].Y)
	d2 := math.Hypot(ctrl[2].X-ctrl[3].X, ctrl[2].Y-ctrl[3].Y)
	if d1 > chord+1e-6 {
		t.Fatalf("control1 handle length %v exceeds chord %v", d1, chord)
	}
	if d2 > chord+1e-6 {
		t.Fatalf("control2 handle length %v exceeds chord %v", d2, chord)
	}
}

func TestEnforceG1AlignsAdjacentHandles(t *testing.T) {
	segments := []core.Segment{
		{Kind: core.SegmentCubic, Control1: core.Point{X: 1, Y: 0}, Control2: core.Point{X: 4, Y: 0}, To: core.Point{X: 5, Y: 0}},
		{Kind: core.SegmentCubic, Control1: core.Point{X: 6, Y: 1}, Control2: core.Point{X: 9, Y: 1}, To: core.Point{X: 10, Y: 0}},
	}
	locked := []bool{false, false}
	EnforceG1(segments, locked)

	joint := segments[0].To
	incoming := core.Point{X: joint.X - segments[0].Control2.X, Y: joint.Y - segments[0].Control2.Y}
	outgoing := core.Point{X: segments[1].Control1.X - joint.X, Y: segments[1].Control1.Y - joint.Y}

	inLen := math.Hypot(incoming.X, incoming.Y)
	outLen := math.Hypot(outgoing.X, outgoing.Y)
	cross := (incoming.X/inLen)*(outgoing.Y/outLen) - (incoming.Y/inLen)*(outgoing.X/outLen)
	if math.Abs(cross) > 1e-6 {
		t.Fatalf("tangent directions not colinear after EnforceG1: cross = %v", cross)
	}
}

func TestEnforceG1SkipsLockedJoints(t *testing.T) {
	segments := []core.Segment{
		{Kind: core.SegmentCubic, Control1: core.Point{X: 1, Y: 0}, Control2: core.Point{X: 4, Y: 0}, To: core.Point{X: 5, Y: 0}},
		{Kind: core.SegmentCubic, Control1: core.Point{X: 6, Y: 1}, Control2: core.Point{X: 9, Y: 1}, To: core.Point{X: 10, Y: 0}},
	}
	locked := []bool{false, true}
	original := segments[0].Control2
	EnforceG1(segments, locked)
	if segments[0].Control2 != original {
		t.Fatal("a locked joint must not have its adjacent handles rotated")
	}
}
