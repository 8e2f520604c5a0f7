package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	rastervec "rastervec"
	"rastervec/batch"
	"rastervec/core"
	"rastervec/document"
)

func main() {
	inputPath := flag.String("input", "", "input image file or directory")
	outputPath := flag.String("output", "", "output file or directory")
	colors := flag.Int("colors", 0, "palette size (0 = pipeline default / adaptive)")
	smooth := flag.Int("smooth", 5, "smoothing level, 0-10")
	threshold := flag.Float64("threshold", 0.1, "edge threshold, 0-1 (enhanced pipeline)")
	preprocess := flag.Bool("preprocess", false, "apply bilateral filter + posterize before quantizing")
	pipeline := flag.String("pipeline", "classic", "classic or enhanced")
	maxSize := flag.Int("max-size", 4096, "longest edge cap before auto-downscale; 0 disables")
	seed := flag.Int64("seed", 1, "RNG seed for the enhanced pipeline")
	parallel := flag.Int("parallel", 4, "worker count for the enhanced path shaper")
	bgPolicy := flag.String("background", "", "largest-area or border-frequency (default: pipeline's own default)")
	s3Bucket := flag.String("s3-bucket", "", "optional S3 bucket to mirror batch output into")
	verify := flag.Bool("verify", false, "report each converted document's rasterization agreement before writing it")
	help := flag.Bool("help", false, "show usage")

	flag.Parse()
	if *help || *inputPath == "" || *outputPath == "" {
		flag.Usage()
		if *help {
			return
		}
		os.Exit(2)
	}

	opt := core.DefaultOptions()
	opt.Colors = *colors
	opt.SmoothLevel = *smooth
	opt.EdgeThreshold = *threshold
	opt.Preprocess = *preprocess
	opt.MaxSize = *maxSize
	opt.Seed = *seed
	opt.Parallel = *parallel

	switch *pipeline {
	case "enhanced":
		opt.Pipeline = core.PipelineEnhanced
		opt.BackgroundPolicy = core.BackgroundBorderFrequency
	case "classic", "":
		opt.Pipeline = core.PipelineClassic
		opt.BackgroundPolicy = core.BackgroundLargestArea
	default:
		log.Fatalf("unknown pipeline %q: must be classic or enhanced", *pipeline)
	}

	switch *bgPolicy {
	case "largest-area":
		opt.BackgroundPolicy = core.BackgroundLargestArea
	case "border-frequency":
		opt.BackgroundPolicy = core.BackgroundBorderFrequency
	case "":
	default:
		log.Fatalf("unknown background policy %q: must be largest-area or border-frequency", *bgPolicy)
	}

	ctx := context.Background()

	convertOne := func(ctx context.Context, in, out string) error {
		if !*verify {
			return rastervec.Convert(ctx, in, out, opt)
		}
		doc, agreement, err := rastervec.VerifyAgreement(ctx, in, opt)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s: rasterization agreement %.2f%%\n", in, agreement*100)
		var buf bytes.Buffer
		if err := document.Emit(&buf, doc); err != nil {
			return core.WrapError(core.Internal, "main", "emitting document", err)
		}
		return os.WriteFile(out, buf.Bytes(), 0o644)
	}

	results, err := batch.Run(ctx, *inputPath, *outputPath, convertOne)
	if err != nil {
		log.Fatal(err)
	}

	var sink *batch.S3Sink
	if *s3Bucket != "" {
		sink, err = batch.NewS3Sink(*s3Bucket, "")
		if err != nil {
			log.Fatalf("s3 sink: %v", err)
		}
	}

	failed := false
	for _, r := range results {
		if r.Err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.InputPath, r.Err)
			continue
		}
		if sink != nil {
			key, relErr := filepath.Rel(*outputPath, r.OutputPath)
			if relErr != nil || key == "." {
				key = filepath.Base(r.OutputPath)
			}
			if err := sink.Upload(r.OutputPath, filepath.ToSlash(key)); err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "%s: s3 upload failed: %v\n", r.OutputPath, err)
			}
		}
	}

	if failed || batch.AnyFailed(results) {
		os.Exit(1)
	}
}
