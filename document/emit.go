package document

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"rastervec/core"
)

// Emit writes doc as the text vector document spec §4.6 describes: an SVG
// envelope (ajstarks/svgo writes the header, viewport, and background
// rect), then one even-odd-fill path per non-background color, each
// paired with a matching ~0.5px stroke to close the anti-aliasing seam
// between neighboring fills (the "gap-filling stroke").
func Emit(w io.Writer, doc core.Document) error {
	canvas := svg.New(w)
	canvas.Startview(doc.Width, doc.Height, 0, 0, doc.Width, doc.Height)
	defer canvas.End()

	canvas.Rect(0, 0, doc.Width, doc.Height, fillStyle(doc.Background))

	for _, layer := range doc.Layers {
		d := pathData(layer.Paths)
		if d == "" {
			continue
		}
		style := fmt.Sprintf("%s;stroke:%s;stroke-width:0.5;fill-rule:evenodd", fillStyle(layer.Color), hexColor(layer.Color))
		canvas.Path(d, style)
	}
	return nil
}

func fillStyle(c core.RGB) string {
	return "fill:" + hexColor(c)
}

func hexColor(c core.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// pathData combines every sub-contour of a color into one path's `d`
// attribute, each explicitly closed, joined under a shared even-odd fill.
func pathData(paths []core.ShapedPath) string {
	var b strings.Builder
	for _, p := range paths {
		merged := mergeColinearLines(p)
		if len(merged.Segments) == 0 {
			continue
		}
		b.WriteString("M ")
		b.WriteString(formatPoint(merged.Start))
		b.WriteByte(' ')
		for _, seg := range merged.Segments {
			switch seg.Kind {
			case core.SegmentCubic:
				b.WriteString("C ")
				b.WriteString(formatPoint(seg.Control1))
				b.WriteByte(' ')
				b.WriteString(formatPoint(seg.Control2))
				b.WriteByte(' ')
				b.WriteString(formatPoint(seg.To))
				b.WriteByte(' ')
			default:
				b.WriteString("L ")
				b.WriteString(formatPoint(seg.To))
				b.WriteByte(' ')
			}
		}
		b.WriteString("Z ")
	}
	return strings.TrimSpace(b.String())
}

func formatPoint(p core.Point) string {
	return formatCoord(p.X) + "," + formatCoord(p.Y)
}

// formatCoord renders a coordinate as an integer when rounding to one
// decimal place lands on a whole number, else as a single decimal digit
// (spec §4.6 coordinate formatting rule).
func formatCoord(v float64) string {
	rounded := math.Round(v*10) / 10
	if rounded == math.Trunc(rounded) {
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64)
}

// mergeColinearLines drops an intermediate vertex from a run of straight
// line segments when it sits within 1.5px of the chord between its
// neighbors (spec §4.6). Paths containing any Bézier segment are left
// untouched — the merge only ever applies to straight runs.
func mergeColinearLines(p core.ShapedPath) core.ShapedPath {
	for _, seg := range p.Segments {
		if seg.Kind != core.SegmentLine {
			return p
		}
	}

	verts := make([]core.Point, 0, len(p.Segments)+1)
	verts = append(verts, p.Start)
	for _, seg := range p.Segments {
		verts = append(verts, seg.To)
	}
	// Closed polyline: drop the duplicate closing vertex if present.
	if len(verts) > 1 {
		first, last := verts[0], verts[len(verts)-1]
		if math.Hypot(first.X-last.X, first.Y-last.Y) < 1e-6 {
			verts = verts[:len(verts)-1]
		}
	}

	n := len(verts)
	if n < 4 {
		return p
	}

	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	changed := true
	for changed {
		changed = false
		alive := aliveIndices(keep)
		if len(alive) < 4 {
			break
		}
		for k, i := range alive {
			prev := alive[(k-1+len(alive))%len(alive)]
			next := alive[(k+1)%len(alive)]
			if perpendicularDistance(verts[i], verts[prev], verts[next]) <= 1.5 {
				keep[i] = false
				changed = true
				break
			}
		}
	}

	var out core.Contour
	for i, k := range keep {
		if k {
			out = append(out, verts[i])
		}
	}
	if len(out) < 3 {
		return p
	}

	return core.ShapedPath{Start: out[0], Segments: linePathSegments(out)}
}

func perpendicularDistance(p, a, b core.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Hypot(dx, dy)
	return num / den
}

func aliveIndices(keep []bool) []int {
	var idx []int
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return idx
}

func linePathSegments(c core.Contour) []core.Segment {
	segs := make([]core.Segment, 0, len(c))
	for i := 1; i < len(c); i++ {
		segs = append(segs, core.Segment{Kind: core.SegmentLine, To: c[i]})
	}
	return segs
}
