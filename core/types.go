// Package core holds the shared data model for the vectorization pipeline:
// the raster, palette, labeled image, and the document types the emitter
// writes out. See type/types.go in the original video2bas tree for the
// ancestor of this shape (FrameLayers/ColorLayer/Pixel/Box).
package core

// Pixel is an 8-bit RGBA color in [0,255] per channel.
type Pixel struct {
	R, G, B, A uint8
}

// Raster is an immutable width×height grid of pixels, row-major addressed.
type Raster struct {
	Width, Height int
	Pixels        []Pixel
}

// At returns the pixel at (x,y). Out-of-bounds access is a programming error.
func (r *Raster) At(x, y int) Pixel {
	return r.Pixels[y*r.Width+x]
}

// NewRaster allocates a raster of the given dimensions with zeroed pixels.
func NewRaster(width, height int) *Raster {
	return &Raster{Width: width, Height: height, Pixels: make([]Pixel, width*height)}
}

// RGB is an opaque palette color; alpha is not tracked once quantized since
// the document is always rendered opaque (spec non-goal: transparency).
type RGB struct {
	R, G, B uint8
}

// Palette is an ordered sequence of up to 256 representative colors.
type Palette []RGB

// LabeledImage has the same shape as a Raster; each cell holds an index
// into a Palette.
type LabeledImage struct {
	Width, Height int
	Labels        []int
}

func NewLabeledImage(width, height int) *LabeledImage {
	return &LabeledImage{Width: width, Height: height, Labels: make([]int, width*height)}
}

func (l *LabeledImage) At(x, y int) int {
	return l.Labels[y*l.Width+x]
}

// Mask is a binary image, true where a pixel belongs to one palette index.
type Mask struct {
	Width, Height int
	Bits          []bool
}

func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Point is a floating-point 2D coordinate in image space. The top-left
// pixel center sits at (0.5, 0.5); the image rectangle is [0,w]×[0,h].
type Point struct {
	X, Y float64
}

// Contour is an ordered, closed polyline. The first point is implicitly
// connected back to the last; no explicit duplicate is stored.
type Contour []Point

// SegmentKind distinguishes straight lines from cubic Bézier segments
// inside a ShapedPath.
type SegmentKind int

const (
	SegmentLine SegmentKind = iota
	SegmentCubic
)

// Segment is one edge of a ShapedPath: either a straight line to To, or a
// cubic Bézier to To via Control1/Control2.
type Segment struct {
	Kind               SegmentKind
	Control1, Control2 Point
	To                 Point
}

// ShapedPath is a closed sequence of segments, the output of the path
// shaper for one sub-contour.
type ShapedPath struct {
	Start    Point
	Segments []Segment
}

// ColorLayer is one palette color plus the shaped sub-paths that render it,
// and the pixel area it covers (used for z-ordering).
type ColorLayer struct {
	Color RGB
	Paths []ShapedPath
	Area  int
}

// Document is the full vector output: viewport size, background color, and
// non-background layers ordered back-to-front by descending area.
type Document struct {
	Width, Height int
	Background    RGB
	Layers        []ColorLayer
}

// PipelineKind selects between the classic (straight-line) and enhanced
// (Bézier) pipeline variants.
type PipelineKind int

const (
	PipelineClassic PipelineKind = iota
	PipelineEnhanced
)

// BackgroundPolicy selects how the region indexer nominates a background
// color.
type BackgroundPolicy int

const (
	BackgroundLargestArea BackgroundPolicy = iota
	BackgroundBorderFrequency
)

// Options configures one run of the conversion pipeline.
type Options struct {
	Colors           int
	SmoothLevel      int
	EdgeThreshold    float64
	Preprocess       bool
	Pipeline         PipelineKind
	MaxSize          int
	Seed             int64
	Parallel         int
	BackgroundPolicy BackgroundPolicy
}

// DefaultOptions mirrors the teacher's CLI defaults (video2bas's main.go
// flag defaults), generalized to the vectorizer's own knobs.
func DefaultOptions() Options {
	return Options{
		Colors:        16,
		SmoothLevel:   5,
		EdgeThreshold: 0.1,
		Preprocess:    false,
		Pipeline:      PipelineClassic,
		MaxSize:       4096,
		Seed:          1,
		Parallel:      4,
	}
}
