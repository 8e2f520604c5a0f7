// Package document assembles shaped paths into the final vector Document
// and writes it out as an SVG-family text format (spec §4.6), and parses
// one back for the round-trip rasterization-agreement test property.
// Grounded on color2svg.go's per-layer SVG production, replacing its
// gotrace backend with the hand-built path emission spec §4.6 requires.
package document

import (
	"rastervec/core"
	"rastervec/shape"
)

// Assemble builds a Document from a background color and the non-background
// layers, ordered back-to-front by descending pixel area (ties broken by
// the smallest leading coordinate among each layer's paths, spec §5).
func Assemble(width, height int, background core.RGB, layers []core.ColorLayer) core.Document {
	areas := make([]int, len(layers))
	for i, l := range layers {
		areas[i] = l.Area
	}
	perm := shape.SortByAreaDescending(areas, func(i, j int) bool {
		return leadingCoord(layers[i]) < leadingCoord(layers[j])
	})

	ordered := make([]core.ColorLayer, len(layers))
	for i, p := range perm {
		ordered[i] = layers[p]
	}

	return core.Document{
		Width:      width,
		Height:     height,
		Background: background,
		Layers:     ordered,
	}
}

func leadingCoord(l core.ColorLayer) float64 {
	best := make([]float64, 0, 1)
	for _, p := range l.Paths {
		best = append(best, p.Start.Y*1e6+p.Start.X)
	}
	if len(best) == 0 {
		return 0
	}
	min := best[0]
	for _, v := range best[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
