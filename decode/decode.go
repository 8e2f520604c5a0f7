// Package decode turns an input image file into a core.Raster, dispatching
// on format (spec §6: PNG/JPEG/BMP/TIFF/WebP, alpha flattened, non-RGB
// converted, animated inputs reduced to their first frame). Grounded on
// video2color.ExtractFrames's pipe-based ffmpeg decode, kept here as the
// fallback path for any container the stdlib and x/image decoders don't
// recognize, and on video2color.SplitColors's image.Image→pixel walk for
// the raster conversion itself.
package decode

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"rastervec/core"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("webp", "RIFF", webp.Decode, webp.DecodeConfig)
}

// Decode reads path and returns its first frame as an opaque RGBA raster.
// Stdlib PNG/JPEG/GIF and golang.org/x/image's BMP/TIFF/WebP decoders are
// tried first via image.Decode's format registry; anything else falls
// back to piping the file through ffmpeg, mirroring ExtractFrames's
// pipe-based decode reduced to a single frame.
func Decode(ctx context.Context, path string) (*core.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(core.InvalidInput, "decode.Decode", "opening input file", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		img, err = decodeViaFFmpeg(ctx, path)
		if err != nil {
			return nil, core.WrapError(core.InvalidInput, "decode.Decode", fmt.Sprintf("unrecognized image format: %s", path), err)
		}
	}

	return fromImage(img), nil
}

// decodeViaFFmpeg handles exotic still formats and animated containers by
// having ffmpeg rasterize just the first frame to a PNG pipe.
func decodeViaFFmpeg(ctx context.Context, path string) (image.Image, error) {
	r, w := io.Pipe()

	cmd := ffmpeg.Input(path).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "image2pipe",
			"vcodec":  "png",
			"frames:v": "1",
		}).
		WithOutput(w).
		WithErrorOutput(os.Stderr)
	cmd.Context = ctx

	go func() {
		err := cmd.Run()
		w.CloseWithError(err)
	}()

	img, err := png.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// fromImage flattens alpha onto opaque white and converts any color model
// to 8-bit RGB (spec §1 non-goals: transparency is read but flattened,
// non-RGB colorspaces converted).
func fromImage(img image.Image) *core.Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	r := core.NewRaster(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			rr, gg, bb := flattenOverWhite(c)
			r.Pixels[y*w+x] = core.Pixel{R: rr, G: gg, B: bb, A: 255}
		}
	}
	return r
}

func flattenOverWhite(c color.NRGBA) (uint8, uint8, uint8) {
	if c.A == 255 {
		return c.R, c.G, c.B
	}
	a := float64(c.A) / 255
	blend := func(v uint8) uint8 {
		return uint8(float64(v)*a + 255*(1-a))
	}
	return blend(c.R), blend(c.G), blend(c.B)
}
