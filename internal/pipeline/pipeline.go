// Package pipeline drives the full codec: bit-packs an image's dimensions
// and (optionally tiled, optionally delta-coded) pixel data into a
// container, then Huffman-encodes the container's byte view; and inverts
// that on the way back.
package pipeline

import (
	"errors"
	"fmt"

	cerrors "cloudeng.io/errors"

	"github.com/huffimg/graycodec/internal/bitbuf"
	"github.com/huffimg/graycodec/internal/codecerr"
	"github.com/huffimg/graycodec/internal/delta"
	"github.com/huffimg/graycodec/internal/huffman"
	"github.com/huffimg/graycodec/internal/rasterimage"
	"github.com/huffimg/graycodec/internal/rle"
)

// maxDecodedPixels bounds width*height as decoded from an untrusted
// header: a corrupted or adversarial stream can claim arbitrary
// dimensions, and rasterimage.New would happily attempt to allocate
// however many bytes that implies. This is the Go-idiomatic stand-in for
// the original's malloc-failure OutOfMemory kind: refuse the allocation
// request outright rather than let it run.
const maxDecodedPixels = 1 << 28

// classifyDecodeErr maps a decode-path failure to IndexOutOfBound when it
// traces back to a bitbuf read past the end of the stream, a truncated
// RLE payload, or a Huffman stream that ended mid-code — all symptoms of
// a stream that is shorter or more corrupt than its header promises.
// Anything else is an internal error: invalid data the wire format
// itself should never produce from a well-formed compressed stream.
func classifyDecodeErr(err error) codecerr.Kind {
	if errors.Is(err, bitbuf.ErrOutOfBound) || errors.Is(err, rle.ErrTruncated) || errors.Is(err, huffman.ErrCorrupt) {
		return codecerr.IndexOutOfBound
	}
	return codecerr.InternalError
}

// Options carries the mode flags that are supplied by the caller on both
// Compress and Decompress; they are never embedded in the compressed
// stream, so a mismatch between the two sides is a caller error, not
// something the wire format can detect.
type Options struct {
	Adaptive  bool
	Delta     bool
	BlockSize int
}

// Compress encodes img into the codec's container format and returns the
// Huffman-compressed bytes.
func Compress(img *rasterimage.Image, opts Options) ([]byte, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, codecerr.New(codecerr.InvalidImageSize, fmt.Errorf("pipeline: %dx%d", img.Width, img.Height))
	}
	if img.Width > 1<<16 || img.Height > 1<<16 {
		return nil, codecerr.New(codecerr.InvalidImageSize, fmt.Errorf("pipeline: %dx%d exceeds 16-bit header range", img.Width, img.Height))
	}

	container := bitbuf.New(nil)
	_ = container.PushBits(uint64(img.Width-1), 16)
	_ = container.PushBits(uint64(img.Height-1), 16)

	if opts.Adaptive {
		if opts.BlockSize <= 0 {
			return nil, codecerr.New(codecerr.InvalidBlockSize, fmt.Errorf("pipeline: block size %d", opts.BlockSize))
		}
		if err := compressAdaptive(container, img, opts); err != nil {
			return nil, err
		}
	} else {
		payload := applyMaybeDelta(append([]byte(nil), img.Pix...), opts.Delta)
		container.Concat(rle.Encode(payload))
	}

	container.PadToByte()
	return huffman.Compress(container.Bytes()), nil
}

// compressAdaptive evaluates four candidate encodings per tile and appends
// the winning tag (to a metadata bit buffer) and payload (to a blocks bit
// buffer) to container, per spec.md §4.6 step 3.
func compressAdaptive(container *bitbuf.Buffer, img *rasterimage.Image, opts Options) error {
	tileCount, err := rasterimage.TileCount(img.Width, img.Height, opts.BlockSize)
	if err != nil {
		return codecerr.New(codecerr.InvalidBlockSize, err)
	}

	metadata := bitbuf.New(nil)
	blocks := bitbuf.New(nil)

	for i := 0; i < tileCount; i++ {
		tile, err := rasterimage.GetTile(img, i, opts.BlockSize)
		if err != nil {
			return codecerr.New(codecerr.InvalidImageSize, err)
		}

		mode, payload := chooseTileEncoding(tile, opts.Delta)
		metadata.PushBits(mode.Tag(), 2)
		if mode == rasterimage.ScanNone {
			for _, by := range tile.Pix {
				_ = blocks.PushBits(uint64(by), 8)
			}
		} else {
			blocks.Concat(payload)
		}
	}

	metadata.PadToByte()
	container.Concat(metadata)
	container.Concat(blocks)
	return nil
}

// chooseTileEncoding evaluates Row, Column, Spiral and None for one tile
// and returns the winner plus its encoded bit buffer (nil for None, whose
// payload is the tile's raw bytes, pushed directly by the caller).
func chooseTileEncoding(tile *rasterimage.Image, deltaEnabled bool) (rasterimage.ScanMode, *bitbuf.Buffer) {
	threshold := tile.Width * tile.Height * 8

	bestMode := rasterimage.ScanNone
	var bestBuf *bitbuf.Buffer
	bestLen := threshold

	for _, mode := range []rasterimage.ScanMode{rasterimage.ScanRow, rasterimage.ScanColumn, rasterimage.ScanSpiral} {
		serialized := rasterimage.Serialize(tile, mode)
		serialized = applyMaybeDelta(serialized, deltaEnabled)
		buf := rle.Encode(serialized)
		if buf.Len() < bestLen {
			bestLen = buf.Len()
			bestMode = mode
			bestBuf = buf
		}
	}

	return bestMode, bestBuf
}

func applyMaybeDelta(b []byte, enabled bool) []byte {
	if enabled {
		delta.Apply(b)
	}
	return b
}

// Decompress inverts Compress, reconstructing the image from Huffman-
// compressed bytes produced with the same Options.
func Decompress(b []byte, opts Options) (*rasterimage.Image, error) {
	decoded, err := huffman.Decompress(b)
	if err != nil {
		return nil, codecerr.New(classifyDecodeErr(err), fmt.Errorf("pipeline: huffman decode: %w", err))
	}

	header := bitbuf.New(decoded)
	widthField, err := header.ReadBits(16)
	if err != nil {
		return nil, codecerr.New(classifyDecodeErr(err), fmt.Errorf("pipeline: reading width: %w", err))
	}
	heightField, err := header.ReadBits(16)
	if err != nil {
		return nil, codecerr.New(classifyDecodeErr(err), fmt.Errorf("pipeline: reading height: %w", err))
	}
	width := int(widthField) + 1
	height := int(heightField) + 1

	if len(decoded) < 4 {
		return nil, codecerr.New(codecerr.InvalidImageSize, fmt.Errorf("pipeline: container too short for header"))
	}
	data := decoded[4:]

	if width*height > maxDecodedPixels {
		return nil, codecerr.New(codecerr.OutOfMemory, fmt.Errorf("pipeline: header-claimed image %dx%d exceeds %d-pixel allocation limit", width, height, maxDecodedPixels))
	}

	img, err := rasterimage.New(width, height)
	if err != nil {
		return nil, codecerr.New(codecerr.InvalidImageSize, err)
	}

	if opts.Adaptive {
		if err := decompressAdaptive(img, data, opts); err != nil {
			return nil, err
		}
		return img, nil
	}

	consumed, err := rle.Decode(data, img.Size(), img.Pix)
	if err != nil {
		return nil, codecerr.New(classifyDecodeErr(err), fmt.Errorf("pipeline: rle decode: %w", err))
	}
	_ = consumed
	if opts.Delta {
		delta.Undo(img.Pix)
	}
	return img, nil
}

// decompressAdaptive reads the 2-bit-per-tile metadata block, then walks
// the per-tile payloads in the same order Compress wrote them. Tile
// failures are accumulated with cloudeng.io/errors.M rather than aborting
// the whole image on the first corrupt tile, since metadata corruption in
// one tile says nothing about the rest of the stream.
func decompressAdaptive(img *rasterimage.Image, data []byte, opts Options) error {
	tileCount, err := rasterimage.TileCount(img.Width, img.Height, opts.BlockSize)
	if err != nil {
		return codecerr.New(codecerr.InvalidBlockSize, err)
	}

	metadataByteLen := (2*tileCount + 7) / 8
	if metadataByteLen > len(data) {
		return codecerr.New(codecerr.IndexOutOfBound, fmt.Errorf("pipeline: metadata block (%d bytes) exceeds available data (%d bytes)", metadataByteLen, len(data)))
	}
	metadata := bitbuf.New(data[:metadataByteLen])
	payload := data[metadataByteLen:]
	offset := 0

	errs := &cerrors.M{}
	for i := 0; i < tileCount; i++ {
		if err := decompressOneTile(img, metadata, payload, &offset, i, opts); err != nil {
			errs.Append(fmt.Errorf("tile %d: %w", i, err))
		}
	}
	return errs.Err()
}

func decompressOneTile(img *rasterimage.Image, metadata *bitbuf.Buffer, payload []byte, offset *int, index int, opts Options) error {
	tag, err := metadata.ReadBits(2)
	if err != nil {
		return codecerr.New(classifyDecodeErr(err), fmt.Errorf("reading mode tag: %w", err))
	}
	mode, err := rasterimage.ScanModeFromTag(tag)
	if err != nil {
		return codecerr.New(codecerr.InternalError, err)
	}

	_, _, w, h, err := rasterimage.TileBounds(img.Width, img.Height, opts.BlockSize, index)
	if err != nil {
		return codecerr.New(codecerr.InvalidImageSize, err)
	}
	size := w * h

	var tile *rasterimage.Image
	if mode == rasterimage.ScanNone {
		if *offset+size > len(payload) {
			return codecerr.New(codecerr.IndexOutOfBound, fmt.Errorf("raw tile payload runs past end of data"))
		}
		tile, err = rasterimage.FromBytes(append([]byte(nil), payload[*offset:*offset+size]...), w, h)
		if err != nil {
			return codecerr.New(codecerr.InternalError, err)
		}
		*offset += size
	} else {
		buf := make([]byte, size)
		consumed, err := rle.Decode(payload[*offset:], size, buf)
		if err != nil {
			return codecerr.New(classifyDecodeErr(err), fmt.Errorf("rle decode: %w", err))
		}
		*offset += consumed
		if opts.Delta {
			delta.Undo(buf)
		}
		tile, err = rasterimage.Deserialize(buf, w, h, mode)
		if err != nil {
			return codecerr.New(codecerr.InternalError, err)
		}
	}

	if err := rasterimage.InsertTile(img, tile, index, opts.BlockSize); err != nil {
		return codecerr.New(codecerr.InternalError, err)
	}
	return nil
}
