package region

import (
	"testing"

	"rastervec/core"
)

func TestAreasCountsEveryLabel(t *testing.T) {
	labeled := &core.LabeledImage{Width: 2, Height: 2, Labels: []int{0, 1, 1, 2}}
	areas := Areas(labeled, 3)
	want := []int{1, 2, 1}
	for i, w := range want {
		if areas[i] != w {
			t.Errorf("areas[%d] = %d, want %d", i, areas[i], w)
		}
	}
}

func TestBackgroundLargestAreaTieBreaksToLowestIndex(t *testing.T) {
	if got := BackgroundLargestArea([]int{5, 5, 3}); got != 0 {
		t.Fatalf("BackgroundLargestArea tie = %d, want 0", got)
	}
	if got := BackgroundLargestArea([]int{1, 9, 2}); got != 1 {
		t.Fatalf("BackgroundLargestArea = %d, want 1", got)
	}
}

func TestBackgroundBorderFrequencyCountsBorderOnly(t *testing.T) {
	// 4x4 image: border is index 0 everywhere except one corner is index 1;
	// the 2x2 interior is index 2 (must be ignored).
	labeled := core.NewLabeledImage(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			idx := 0
			if x > 0 && x < 3 && y > 0 && y < 3 {
				idx = 2
			}
			labeled.Labels[y*4+x] = idx
		}
	}
	labeled.Labels[0] = 1 // corner becomes index 1

	got := BackgroundBorderFrequency(labeled, 3)
	if got != 0 {
		t.Fatalf("BackgroundBorderFrequency = %d, want 0 (dominant border color)", got)
	}
}

func TestMaskForSelectsOnlyMatchingLabel(t *testing.T) {
	labeled := &core.LabeledImage{Width: 2, Height: 2, Labels: []int{0, 1, 1, 0}}
	mask := MaskFor(labeled, 1)
	want := []bool{false, true, true, false}
	for i, w := range want {
		if mask.Bits[i] != w {
			t.Errorf("mask.Bits[%d] = %v, want %v", i, mask.Bits[i], w)
		}
	}
}

func TestMaskForWholeImageFillsEntireMask(t *testing.T) {
	labeled := &core.LabeledImage{Width: 3, Height: 3, Labels: make([]int, 9)}
	mask := MaskFor(labeled, 0)
	for i, v := range mask.Bits {
		if !v {
			t.Fatalf("bit %d = false, want true (entire image is index 0)", i)
		}
	}
}
