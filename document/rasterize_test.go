package document

import (
	"testing"

	"rastervec/core"
)

func TestRasterizeSolidDocumentIsAllBackground(t *testing.T) {
	bg := core.RGB{R: 255, G: 0, B: 0}
	doc := core.Document{Width: 4, Height: 4, Background: bg}
	out := Rasterize(doc)
	if len(out) != 16 {
		t.Fatalf("len(out) = %d, want 16", len(out))
	}
	for i, c := range out {
		if c != bg {
			t.Fatalf("pixel %d = %+v, want background %+v", i, c, bg)
		}
	}
}

func TestRasterizeRectangleLayerPaintsOverBackground(t *testing.T) {
	red := core.RGB{R: 255}
	blue := core.RGB{B: 255}
	doc := core.Document{
		Width: 4, Height: 4, Background: red,
		Layers: []core.ColorLayer{{
			Color: blue,
			Area:  8,
			Paths: []core.ShapedPath{{
				Start: core.Point{X: 2, Y: 0},
				Segments: []core.Segment{
					{Kind: core.SegmentLine, To: core.Point{X: 4, Y: 0}},
					{Kind: core.SegmentLine, To: core.Point{X: 4, Y: 4}},
					{Kind: core.SegmentLine, To: core.Point{X: 2, Y: 4}},
				},
			}},
		}},
	}
	out := Rasterize(doc)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := red
			if x >= 2 {
				want = blue
			}
			if got := out[y*4+x]; got != want {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestAgreementIsOneForMatchingRasterAndLabels(t *testing.T) {
	bg := core.RGB{R: 10, G: 20, B: 30}
	doc := core.Document{Width: 2, Height: 2, Background: bg}
	labeled := &core.LabeledImage{Width: 2, Height: 2, Labels: []int{0, 0, 0, 0}}
	palette := core.Palette{bg}

	agreement := Agreement(doc, labeled, palette)
	if agreement != 1 {
		t.Fatalf("agreement = %v, want 1", agreement)
	}
}

func TestAgreementDropsBelowOneOnMismatch(t *testing.T) {
	bg := core.RGB{R: 10}
	doc := core.Document{Width: 2, Height: 2, Background: bg}
	labeled := &core.LabeledImage{Width: 2, Height: 2, Labels: []int{0, 1, 0, 0}}
	palette := core.Palette{bg, {R: 200}}

	agreement := Agreement(doc, labeled, palette)
	if agreement >= 1 {
		t.Fatalf("agreement = %v, want < 1", agreement)
	}
}
