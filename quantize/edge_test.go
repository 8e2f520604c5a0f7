package quantize

import (
	"testing"

	"rastervec/core"
)

func TestDetectEdgesFlatImageHasNoGradient(t *testing.T) {
	r := solidRaster(8, 8, core.RGB{R: 128, G: 128, B: 128})
	edges := DetectEdges(r)
	for i, v := range edges.Data {
		if v != 0 {
			t.Fatalf("pixel %d: gradient magnitude %d on a flat image, want 0", i, v)
		}
	}
}

func TestDetectEdgesHalfSplitHasInteriorEdge(t *testing.T) {
	r := core.NewRaster(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := uint8(0)
			if x >= 4 {
				v = 255
			}
			r.Pixels[y*8+x] = core.Pixel{R: v, G: v, B: v, A: 255}
		}
	}
	edges := DetectEdges(r)
	if edges.Data[4*8+4] == 0 {
		t.Fatal("expected a nonzero gradient at the color boundary")
	}
}

func TestValueForFractionClampsToByteRange(t *testing.T) {
	e := &EdgeMap{maxMagnitude: 200}
	if v := e.valueForFraction(0); v != 0 {
		t.Fatalf("valueForFraction(0) = %d, want 0", v)
	}
	if v := e.valueForFraction(1); v != 255 {
		t.Fatalf("valueForFraction(1) = %d, want 255", v)
	}
	if v := e.valueForFraction(0.5); v != 100 {
		t.Fatalf("valueForFraction(0.5) = %d, want 100", v)
	}
}
