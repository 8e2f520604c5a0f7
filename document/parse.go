package document

import (
	"encoding/xml"
	"strconv"
	"strings"

	rsvg "github.com/rustyoz/svg"

	"rastervec/core"
)

// svgDoc mirrors svg2json.go's extractPaths technique: unmarshal just
// enough of the SVG envelope via encoding/xml to pull out each path's `d`
// attribute and fill color, skipping everything Emit doesn't produce.
type svgDoc struct {
	Width  string    `xml:"width,attr"`
	Height string    `xml:"height,attr"`
	Rects  []svgRect `xml:"rect"`
	Paths  []svgPath `xml:"path"`
}

type svgRect struct {
	Style string `xml:"style,attr"`
}

type svgPath struct {
	D     string `xml:"d,attr"`
	Style string `xml:"style,attr"`
}

// ParseViewBox extracts the document's pixel viewport the same way
// video2bas.go reads the SVG it re-parses: hand the raw document to
// rustyoz/svg's ParseSvg and split its ViewBox string into ints.
func ParseViewBox(data []byte) (width, height int, err error) {
	parsed, perr := rsvg.ParseSvg(string(data), "document", 1.0)
	if perr != nil {
		return 0, 0, core.WrapError(core.Internal, "document.ParseViewBox", "malformed svg", perr)
	}
	fields := strings.Fields(parsed.ViewBox)
	if len(fields) != 4 {
		return 0, 0, core.NewError(core.Internal, "document.ParseViewBox", "unexpected viewBox shape: "+parsed.ViewBox)
	}
	w, werr := strconv.Atoi(fields[2])
	h, herr := strconv.Atoi(fields[3])
	if werr != nil || herr != nil {
		return 0, 0, core.NewError(core.Internal, "document.ParseViewBox", "non-integer viewBox dimensions: "+parsed.ViewBox)
	}
	return w, h, nil
}

// ParsePaths extracts every path's line/cubic segments from an emitted
// SVG document, for the round-trip rasterization-agreement test property
// (spec §8): rasterizing the parsed paths should reproduce the original
// label layout within the documented tolerance.
//
// Emit only ever writes a fixed, self-controlled path grammar ("M x,y"
// once, then any run of "L x,y" / "C x,y x,y x,y", closed with "Z"), so
// unlike the envelope (parsed above via the real rustyoz/svg library),
// the per-command tokenizing is done directly against that grammar
// instead of pulled in as a dependency.
func ParsePaths(data []byte) ([][]core.Segment, error) {
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, core.WrapError(core.Internal, "document.ParsePaths", "malformed svg", err)
	}

	out := make([][]core.Segment, 0, len(doc.Paths))
	for _, p := range doc.Paths {
		segs, err := parsePathData(p.D)
		if err != nil {
			return nil, core.WrapError(core.Internal, "document.ParsePaths", "malformed path data", err)
		}
		out = append(out, segs)
	}
	return out, nil
}

func parsePathData(d string) ([]core.Segment, error) {
	tokens := strings.Fields(d)
	var segs []core.Segment
	i := 0
	for i < len(tokens) {
		switch tokens[i] {
		case "M":
			if _, err := parsePoint(tokens, i+1); err != nil {
				return nil, err
			}
			i += 2
		case "L":
			pt, err := parsePoint(tokens, i+1)
			if err != nil {
				return nil, err
			}
			segs = append(segs, core.Segment{Kind: core.SegmentLine, To: pt})
			i += 2
		case "C":
			c1, err := parsePoint(tokens, i+1)
			if err != nil {
				return nil, err
			}
			c2, err := parsePoint(tokens, i+2)
			if err != nil {
				return nil, err
			}
			to, err := parsePoint(tokens, i+3)
			if err != nil {
				return nil, err
			}
			segs = append(segs, core.Segment{Kind: core.SegmentCubic, Control1: c1, Control2: c2, To: to})
			i += 4
		case "Z":
			i++
		default:
			return nil, core.NewError(core.Internal, "document.parsePathData", "unrecognized path command: "+tokens[i])
		}
	}
	return segs, nil
}

func parsePoint(tokens []string, idx int) (core.Point, error) {
	if idx >= len(tokens) {
		return core.Point{}, core.NewError(core.Internal, "document.parsePoint", "truncated path data")
	}
	parts := strings.SplitN(tokens[idx], ",", 2)
	if len(parts) != 2 {
		return core.Point{}, core.NewError(core.Internal, "document.parsePoint", "malformed coordinate: "+tokens[idx])
	}
	x, xerr := strconv.ParseFloat(parts[0], 64)
	y, yerr := strconv.ParseFloat(parts[1], 64)
	if xerr != nil || yerr != nil {
		return core.Point{}, core.NewError(core.Internal, "document.parsePoint", "malformed coordinate: "+tokens[idx])
	}
	return core.Point{X: x, Y: y}, nil
}
