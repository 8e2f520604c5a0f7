package shape

import (
	"math"
	"testing"

	"rastervec/core"
)

func square(side float64) core.Contour {
	return core.Contour{
		{X: 0, Y: 0},
		{X: side, Y: 0},
		{X: side, Y: side},
		{X: 0, Y: side},
	}
}

func TestSmoothPreservesPointCount(t *testing.T) {
	c := square(10)
	locked := make([]bool, len(c))
	out := Smooth(c, 5, locked)
	if len(out) != len(c) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(c))
	}
}

func TestSmoothZeroPassesIsIdentity(t *testing.T) {
	c := square(10)
	locked := make([]bool, len(c))
	out := Smooth(c, 0, locked)
	for i := range c {
		if out[i] != c[i] {
			t.Fatalf("point %d changed with zero passes: %v != %v", i, out[i], c[i])
		}
	}
}

func TestSmoothLockedPointsDoNotMove(t *testing.T) {
	c := square(10)
	locked := []bool{true, false, true, false}
	out := Smooth(c, 3, locked)
	for i, isLocked := range locked {
		if isLocked && out[i] != c[i] {
			t.Fatalf("locked point %d moved: %v != %v", i, out[i], c[i])
		}
	}
}

func TestLockedCornersDetectsRightAngle(t *testing.T) {
	c := square(10)
	locked := LockedCorners(c, 30)
	for i, isLocked := range locked {
		if !isLocked {
			t.Fatalf("corner %d of a square should be locked at a 30-degree threshold", i)
		}
	}
}

func TestLockedCornersIgnoresNearlyStraightEdges(t *testing.T) {
	// A closed regular 16-gon: every vertex turns by 22.5 degrees, under the
	// 30-degree threshold, including where the loop wraps around.
	var c core.Contour
	for i := 0; i < 16; i++ {
		a := 2 * math.Pi * float64(i) / 16
		c = append(c, core.Point{X: 10 * math.Cos(a), Y: 10 * math.Sin(a)})
	}
	locked := LockedCorners(c, 30)
	for i, isLocked := range locked {
		if isLocked {
			t.Fatalf("point %d incorrectly locked on a near-straight contour", i)
		}
	}
}

func TestTurningAngleRightAngleIsHalfPi(t *testing.T) {
	v1 := core.Point{X: 1, Y: 0}
	v2 := core.Point{X: 0, Y: 1}
	got := turningAngle(v1, v2)
	if math.Abs(got-math.Pi/2) > 1e-9 {
		t.Fatalf("turningAngle = %v, want pi/2", got)
	}
}
