// Package graycodec implements a lossless codec for raw 8-bit grayscale
// raster images: an optional per-pixel delta (differential) pass, optional
// adaptive per-tile scan selection (row, column, or spiral linearization)
// feeding a run-length coder, and a canonical Huffman pass wrapping the
// whole container.
package graycodec

import (
	"fmt"

	"github.com/huffimg/graycodec/internal/pipeline"
	"github.com/huffimg/graycodec/internal/rasterimage"
)

// Errors returned by the codec's top-level entry points.
var (
	ErrInvalidImageSize = rasterimage.ErrInvalidImageSize
	ErrInvalidBlockSize = rasterimage.ErrInvalidBlockSize
)

// Options controls the codec's optional passes. The same Options must be
// supplied on both Compress and Decompress: the flags are never embedded
// in the compressed stream, so a mismatch is a caller error that produces
// either a decode error or silently wrong pixels.
type Options struct {
	// Delta enables the per-pixel differential pass.
	Delta bool
	// Adaptive enables per-tile scan-order selection (row, column, spiral,
	// or raw) instead of a single whole-image row-major encoding.
	Adaptive bool
	// BlockSize is the tile edge length used when Adaptive is set. Must be
	// > 0; the CLI defaults to 16.
	BlockSize int
}

func (o Options) toPipeline() pipeline.Options {
	return pipeline.Options{Adaptive: o.Adaptive, Delta: o.Delta, BlockSize: o.BlockSize}
}

// Compress encodes a width x height grayscale image (row-major, one byte
// per pixel) into the codec's compressed wire format.
func Compress(pix []byte, width, height int, opts Options) ([]byte, error) {
	img, err := rasterimage.FromBytes(pix, width, height)
	if err != nil {
		return nil, fmt.Errorf("graycodec: %w", err)
	}
	out, err := pipeline.Compress(img, opts.toPipeline())
	if err != nil {
		return nil, fmt.Errorf("graycodec: compress: %w", err)
	}
	return out, nil
}

// Decompress decodes compressed bytes produced by Compress with the same
// Options, returning the recovered row-major pixel bytes and the image's
// dimensions (as carried in the stream's header).
func Decompress(compressed []byte, opts Options) (pix []byte, width, height int, err error) {
	img, err := pipeline.Decompress(compressed, opts.toPipeline())
	if err != nil {
		return nil, 0, 0, fmt.Errorf("graycodec: decompress: %w", err)
	}
	return img.Pix, img.Width, img.Height, nil
}
