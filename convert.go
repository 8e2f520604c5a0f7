// Package rastervec converts a raster image into a vector document: a
// linear seven-stage pipeline (decode, preprocess, quantize, region
// index, contour trace, path shape, document emit) in two variants,
// classic (straight lines, median-cut) and enhanced (cubic Béziers,
// edge-aware k-means++). See SPEC_FULL.md for the full component design.
package rastervec

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"rastervec/contour"
	"rastervec/core"
	"rastervec/decode"
	"rastervec/document"
	"rastervec/downscale"
	"rastervec/preprocess"
	"rastervec/quantize"
	"rastervec/region"
	"rastervec/shape"
)

// Convert reads inputPath, runs the pipeline per opt, and writes the
// resulting document to outputPath. It is the library entry point behind
// both the CLI and the batch driver (spec §6).
func Convert(ctx context.Context, inputPath, outputPath string, opt core.Options) error {
	doc, err := ConvertToDocument(ctx, inputPath, opt)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := document.Emit(&buf, doc); err != nil {
		return core.WrapError(core.Internal, "Convert", "emitting document", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return core.WrapError(core.Internal, "Convert", "writing output file", err)
	}
	return nil
}

// ConvertToDocument runs the full pipeline and returns the in-memory
// Document without writing it anywhere, for callers (tests, the -verify
// round-trip flag) that want to inspect the result directly.
func ConvertToDocument(ctx context.Context, inputPath string, opt core.Options) (core.Document, error) {
	doc, _, _, err := convertToDocumentAndLabels(ctx, inputPath, opt)
	return doc, err
}

// VerifyAgreement reruns the pipeline and reports the fraction of pixels
// where rasterizing the resulting document reproduces the labeled image's
// palette color, the spec §8 round-trip testable property, exposed for
// the CLI's -verify flag.
func VerifyAgreement(ctx context.Context, inputPath string, opt core.Options) (core.Document, float64, error) {
	doc, labeled, palette, err := convertToDocumentAndLabels(ctx, inputPath, opt)
	if err != nil {
		return core.Document{}, 0, err
	}
	return doc, document.Agreement(doc, labeled, palette), nil
}

func convertToDocumentAndLabels(ctx context.Context, inputPath string, opt core.Options) (core.Document, *core.LabeledImage, core.Palette, error) {
	if err := validateOptions(opt); err != nil {
		return core.Document{}, nil, nil, err
	}

	raster, err := decode.Decode(ctx, inputPath)
	if err != nil {
		return core.Document{}, nil, nil, err
	}
	if raster.Width == 0 || raster.Height == 0 {
		return core.Document{}, nil, nil, core.NewError(core.InvalidInput, "decode", "image has zero dimension")
	}

	if opt.MaxSize > 0 && downscale.Needed(raster, opt.MaxSize) {
		raster = downscale.Downscale(raster, opt.MaxSize)
	}

	if opt.Preprocess {
		raster = preprocess.Apply(raster, preprocess.DefaultOptions())
	}

	select {
	case <-ctx.Done():
		return core.Document{}, nil, nil, core.WrapError(core.Internal, "pipeline", "cancelled before quantize", ctx.Err())
	default:
	}

	palette, labeled, bgPolicy := quantizeStage(raster, opt)

	areas := region.Areas(labeled, len(palette))
	var bgIndex int
	switch bgPolicy {
	case core.BackgroundBorderFrequency:
		bgIndex = region.BackgroundBorderFrequency(labeled, len(palette))
	default:
		bgIndex = region.BackgroundLargestArea(areas)
	}

	var layers []core.ColorLayer
	for idx := range palette {
		if idx == bgIndex || areas[idx] == 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return core.Document{}, nil, nil, core.WrapError(core.Internal, "pipeline", "cancelled mid-color", ctx.Err())
		default:
		}

		mask := region.MaskFor(labeled, idx)
		contours, err := contour.Trace(mask)
		if err != nil {
			return core.Document{}, nil, nil, core.WrapError(core.Internal, "contour.Trace", fmt.Sprintf("color index %d", idx), err)
		}

		var positive []core.Contour
		for _, c := range contours {
			if contour.SignedArea(c) > 0 {
				positive = append(positive, c)
			}
		}
		paths := shape.ShapeAll(positive, opt.Pipeline, opt.SmoothLevel, raster.Width, raster.Height, opt.Parallel)
		if len(paths) == 0 {
			continue
		}

		layers = append(layers, core.ColorLayer{
			Color: palette[idx],
			Paths: paths,
			Area:  areas[idx],
		})
	}

	doc := document.Assemble(raster.Width, raster.Height, palette[bgIndex], layers)
	return doc, labeled, palette, nil
}

func quantizeStage(raster *core.Raster, opt core.Options) (core.Palette, *core.LabeledImage, core.BackgroundPolicy) {
	if opt.Pipeline == core.PipelineEnhanced {
		k := opt.Colors
		if k <= 0 {
			k = quantize.AdaptiveK(raster.Width, raster.Height)
		}
		palette, labeled := quantize.QuantizeEnhanced(raster, k, opt.Seed)

		edges := quantize.DetectEdges(raster)
		labeled = quantize.SmoothEdgeAware(labeled, edges, opt.EdgeThreshold, 2, len(palette))
		palette = quantize.RecolorFromOriginal(raster, labeled, palette)

		return palette, labeled, opt.BackgroundPolicy
	}

	k := opt.Colors
	if k <= 0 {
		k = 16
	}
	palette, labeled := quantize.MedianCut(raster, k)
	return palette, labeled, core.BackgroundLargestArea
}

func validateOptions(opt core.Options) error {
	maxColors := 64
	if opt.Pipeline == core.PipelineEnhanced {
		maxColors = 256
	}
	if opt.Colors < 0 || opt.Colors > maxColors {
		return core.NewError(core.InvalidOption, "validateOptions", fmt.Sprintf("colors out of range for pipeline: %d", opt.Colors))
	}
	if opt.SmoothLevel < 0 || opt.SmoothLevel > 10 {
		return core.NewError(core.InvalidOption, "validateOptions", fmt.Sprintf("smoothing level out of range: %d", opt.SmoothLevel))
	}
	if opt.EdgeThreshold < 0 || opt.EdgeThreshold > 1 {
		return core.NewError(core.InvalidOption, "validateOptions", fmt.Sprintf("edge threshold out of range: %f", opt.EdgeThreshold))
	}
	if opt.MaxSize < 0 {
		return core.NewError(core.InvalidOption, "validateOptions", "max size must be non-negative")
	}
	return nil
}
