package rastervec

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"rastervec/core"
)

func writeFixturePNG(t *testing.T, pixels func(x, y int) color.NRGBA, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, pixels(x, y))
		}
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// Scenario 1 (spec §8): 4x4 solid red, K=1 -> one background rect, no paths.
func TestScenarioSolid(t *testing.T) {
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 255, A: 255}
	}, 4, 4)

	opt := core.DefaultOptions()
	opt.Colors = 1
	doc, err := ConvertToDocument(context.Background(), path, opt)
	if err != nil {
		t.Fatalf("ConvertToDocument error: %v", err)
	}
	if doc.Width != 4 || doc.Height != 4 {
		t.Fatalf("viewport = %dx%d, want 4x4", doc.Width, doc.Height)
	}
	if len(doc.Layers) != 0 {
		t.Fatalf("len(doc.Layers) = %d, want 0", len(doc.Layers))
	}
	if doc.Background.R != 255 || doc.Background.G != 0 || doc.Background.B != 0 {
		t.Fatalf("background = %+v, want red", doc.Background)
	}
}

// Scenario 2 (spec §8): 4x4 left-half red, right-half blue, K=2 -> background
// red (tied area broken to lower index), one blue path covering the right
// half as a rectangle.
func TestScenarioHalfSplit(t *testing.T) {
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		if x < 2 {
			return color.NRGBA{R: 255, A: 255}
		}
		return color.NRGBA{B: 255, A: 255}
	}, 4, 4)

	opt := core.DefaultOptions()
	opt.Colors = 2
	doc, err := ConvertToDocument(context.Background(), path, opt)
	if err != nil {
		t.Fatalf("ConvertToDocument error: %v", err)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("len(doc.Layers) = %d, want 1", len(doc.Layers))
	}
	if doc.Layers[0].Color.B == 0 {
		t.Fatalf("expected the single foreground layer to be blue, got %+v", doc.Layers[0].Color)
	}
}

// Scenario 3 (spec §8): 2x2 checker of black/white corners, K=2. One of the
// two colors becomes the background rectangle, so the other appears as at
// most one path; contour tracing must not fail.
func TestScenarioChecker(t *testing.T) {
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		// corners: (0,0)=black, (1,0)=white, (0,1)=white, (1,1)=black
		if (x+y)%2 == 0 {
			return color.NRGBA{A: 255}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}, 2, 2)

	opt := core.DefaultOptions()
	opt.Colors = 2
	doc, err := ConvertToDocument(context.Background(), path, opt)
	if err != nil {
		t.Fatalf("ConvertToDocument error: %v", err)
	}
	total := len(doc.Layers) + 1 // background counts as one of the two colors too
	if total != 1 && total != 2 {
		t.Fatalf("expected the two checker colors to resolve to background + up to one path, got %d paths + background", len(doc.Layers))
	}
}

// Scenario 4 (spec §8): 10x10 white with a single red column at x=5, K=2 ->
// red emerges as a thin vertical stripe with bounding box [5,6]x[0,10].
func TestScenarioThinStripe(t *testing.T) {
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		if x == 5 {
			return color.NRGBA{R: 255, A: 255}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}, 10, 10)

	opt := core.DefaultOptions()
	opt.Colors = 2
	doc, err := ConvertToDocument(context.Background(), path, opt)
	if err != nil {
		t.Fatalf("ConvertToDocument error: %v", err)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("len(doc.Layers) = %d, want 1", len(doc.Layers))
	}
	layer := doc.Layers[0]
	if layer.Color.R == 0 {
		t.Fatalf("expected the stripe layer to be red, got %+v", layer.Color)
	}
	minX, minY, maxX, maxY := math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	for _, p := range layer.Paths {
		pts := append([]core.Point{p.Start}, segmentEndpoints(p)...)
		for _, pt := range pts {
			minX, minY = math.Min(minX, pt.X), math.Min(minY, pt.Y)
			maxX, maxY = math.Max(maxX, pt.X), math.Max(maxY, pt.Y)
		}
	}
	if minX != 5 || maxX != 6 || minY != 0 || maxY != 10 {
		t.Fatalf("stripe bbox = (%v,%v)-(%v,%v), want (5,0)-(6,10)", minX, minY, maxX, maxY)
	}
}

// Scenario 5 (spec §8): 100x100 white with a filled red disk of radius 30
// centered at (50,50), K=2, enhanced pipeline -> exactly one red path,
// at most 12 cubic segments, rasterization agreement >= 99%.
func TestScenarioDisk(t *testing.T) {
	const cx, cy, radius = 50.0, 50.0, 30.0
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
		if dx*dx+dy*dy <= radius*radius {
			return color.NRGBA{R: 255, A: 255}
		}
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}, 100, 100)

	opt := core.DefaultOptions()
	opt.Pipeline = core.PipelineEnhanced
	opt.BackgroundPolicy = core.BackgroundBorderFrequency
	opt.Colors = 2

	doc, agreement, err := VerifyAgreement(context.Background(), path, opt)
	if err != nil {
		t.Fatalf("VerifyAgreement error: %v", err)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("len(doc.Layers) = %d, want 1", len(doc.Layers))
	}
	layer := doc.Layers[0]
	if layer.Color.R == 0 {
		t.Fatalf("expected the disk layer to be red, got %+v", layer.Color)
	}
	if len(layer.Paths) != 1 {
		t.Fatalf("len(layer.Paths) = %d, want 1", len(layer.Paths))
	}
	segCount := len(layer.Paths[0].Segments)
	if segCount > 12 {
		t.Fatalf("segment count = %d, want <= 12", segCount)
	}
	for _, seg := range layer.Paths[0].Segments {
		if seg.Kind != core.SegmentCubic {
			t.Fatalf("expected every segment of the disk's path to be cubic, got kind %v", seg.Kind)
		}
	}
	if agreement < 0.99 {
		t.Fatalf("rasterization agreement = %v, want >= 0.99", agreement)
	}
}

func segmentEndpoints(p core.ShapedPath) []core.Point {
	out := make([]core.Point, 0, len(p.Segments))
	for _, s := range p.Segments {
		out = append(out, s.To)
	}
	return out
}

func TestScenarioDeterminismEnhancedPipeline(t *testing.T) {
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		v := uint8((x*31 + y*17) % 256)
		return color.NRGBA{R: v, G: 255 - v, B: v / 2, A: 255}
	}, 40, 40)

	opt := core.DefaultOptions()
	opt.Pipeline = core.PipelineEnhanced
	opt.BackgroundPolicy = core.BackgroundBorderFrequency
	opt.Seed = 42
	opt.Colors = 8

	out1 := filepath.Join(t.TempDir(), "a.svg")
	out2 := filepath.Join(t.TempDir(), "b.svg")

	if err := Convert(context.Background(), path, out1, opt); err != nil {
		t.Fatalf("first Convert error: %v", err)
	}
	if err := Convert(context.Background(), path, out2, opt); err != nil {
		t.Fatalf("second Convert error: %v", err)
	}

	b1, err := os.ReadFile(out1)
	if err != nil {
		t.Fatal(err)
	}
	b2, err := os.ReadFile(out2)
	if err != nil {
		t.Fatal(err)
	}
	if string(b1) != string(b2) {
		t.Fatal("two runs with the same seed must produce byte-identical output documents")
	}
}

func TestValidateOptionsRejectsOutOfRangeColors(t *testing.T) {
	opt := core.DefaultOptions()
	opt.Colors = 65
	if _, err := ConvertToDocument(context.Background(), "unused", opt); err == nil {
		t.Fatal("expected an error for colors exceeding the classic pipeline's range")
	}
}

func TestOneByOneImageEmitsBackgroundOnly(t *testing.T) {
	path := writeFixturePNG(t, func(x, y int) color.NRGBA {
		return color.NRGBA{R: 5, G: 6, B: 7, A: 255}
	}, 1, 1)

	opt := core.DefaultOptions()
	opt.Colors = 1
	doc, err := ConvertToDocument(context.Background(), path, opt)
	if err != nil {
		t.Fatalf("ConvertToDocument error: %v", err)
	}
	if doc.Width != 1 || doc.Height != 1 {
		t.Fatalf("viewport = %dx%d, want 1x1", doc.Width, doc.Height)
	}
	if len(doc.Layers) != 0 {
		t.Fatalf("len(doc.Layers) = %d, want 0", len(doc.Layers))
	}
}
