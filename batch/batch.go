// Package batch drives directory-tree conversion: walk the input tree,
// convert every image file, mirror the tree under the output root with
// a .svg extension, and report per-file failures without aborting the
// run (spec §6 CLI surface, §7 "batch mode reports per-file and
// continues"). Grounded on video2bas.go's generateBasToFile file-size
// rollover loop, generalized from a single flat output stream into a
// mirrored directory tree.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// FileResult records one input file's outcome.
type FileResult struct {
	InputPath  string
	OutputPath string
	Err        error
}

// Convert is the one-file conversion the batch driver calls per input.
type Convert func(ctx context.Context, inputPath, outputPath string) error

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".tif": true,
	".tiff": true, ".webp": true, ".gif": true,
}

// Run walks inputRoot, converting every recognized image file into the
// mirrored path under outputRoot with a .svg extension, and returns one
// FileResult per file attempted. A single file's failure does not stop
// the walk (spec §7); the caller decides the process exit code from the
// results.
func Run(ctx context.Context, inputRoot, outputRoot string, convert Convert) ([]FileResult, error) {
	info, err := os.Stat(inputRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		outPath := outputRoot
		err := convert(ctx, inputRoot, outPath)
		return []FileResult{{InputPath: inputRoot, OutputPath: outPath, Err: err}}, nil
	}

	var results []FileResult
	walkErr := filepath.Walk(inputRoot, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			results = append(results, FileResult{InputPath: path, Err: err})
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(inputRoot, path)
		if err != nil {
			results = append(results, FileResult{InputPath: path, Err: err})
			return nil
		}
		outPath := filepath.Join(outputRoot, rel)
		outPath = outPath[:len(outPath)-len(filepath.Ext(outPath))] + ".svg"

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			results = append(results, FileResult{InputPath: path, OutputPath: outPath, Err: err})
			return nil
		}

		err = convert(ctx, path, outPath)
		results = append(results, FileResult{InputPath: path, OutputPath: outPath, Err: err})
		return nil
	})
	if walkErr != nil {
		return results, walkErr
	}
	return results, nil
}

// AnyFailed reports whether any file in results failed, the condition the
// CLI uses to choose a non-zero exit code (spec §6).
func AnyFailed(results []FileResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}
