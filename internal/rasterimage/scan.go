package rasterimage

import "fmt"

// ScanMode selects how a tile's 2-D pixels are linearized into a 1-D byte
// sequence before RLE. Encoded on the wire as a 2-bit tag.
type ScanMode uint8

const (
	ScanRow ScanMode = iota
	ScanColumn
	ScanSpiral
	ScanNone
)

// Tag returns the 2-bit wire value for the mode.
func (m ScanMode) Tag() uint64 { return uint64(m) }

// ScanModeFromTag decodes a 2-bit wire tag back into a ScanMode.
func ScanModeFromTag(tag uint64) (ScanMode, error) {
	if tag > uint64(ScanNone) {
		return 0, fmt.Errorf("rasterimage: invalid scan tag %d", tag)
	}
	return ScanMode(tag), nil
}

// Serialize linearizes tile.Pix according to mode into a fresh w*h byte
// slice. ScanRow and ScanNone are both the row-major identity; the
// distinction between them only matters to the pipeline driver (ScanNone
// additionally skips RLE), not to this function.
func Serialize(tile *Image, mode ScanMode) []byte {
	switch mode {
	case ScanRow, ScanNone:
		out := make([]byte, len(tile.Pix))
		copy(out, tile.Pix)
		return out
	case ScanColumn:
		return serializeColumn(tile)
	case ScanSpiral:
		return serializeSpiral(tile)
	default:
		panic(fmt.Sprintf("rasterimage: Serialize: unknown scan mode %d", mode))
	}
}

// Deserialize inverts Serialize, reconstructing a w*h Image from bytes
// produced by Serialize(_, mode) for a tile of the given dimensions.
func Deserialize(bytes []byte, width, height int, mode ScanMode) (*Image, error) {
	img, err := New(width, height)
	if err != nil {
		return nil, err
	}
	switch mode {
	case ScanRow, ScanNone:
		copy(img.Pix, bytes)
	case ScanColumn:
		deserializeColumn(bytes, img)
	case ScanSpiral:
		deserializeSpiral(bytes, img)
	default:
		return nil, fmt.Errorf("rasterimage: Deserialize: unknown scan mode %d", mode)
	}
	return img, nil
}

// serializeColumn writes dst[i] = src[(i mod h)*w + (i div h)]: reading
// the tile column by column.
func serializeColumn(tile *Image) []byte {
	w, h := tile.Width, tile.Height
	out := make([]byte, w*h)
	for i := range out {
		x := i / h
		y := i % h
		out[i] = tile.Pix[y*w+x]
	}
	return out
}

// deserializeColumn inverts serializeColumn: dst[i] = src[(i mod w)*h + (i div w)].
func deserializeColumn(src []byte, img *Image) {
	w, h := img.Width, img.Height
	for i := range img.Pix {
		x := i / w
		y := i % w
		img.Pix[i] = src[y*h+x]
	}
}

// spiralOrder returns, for a w x h grid, the row-major pixel index visited
// at each step of a clockwise spiral starting at (0,0): right along the
// top, down the right edge, left along the bottom, up the left edge, then
// contracting inward by one pixel on every side and repeating.
func spiralOrder(w, h int) []int {
	order := make([]int, 0, w*h)
	top, bottom := 0, h-1
	left, right := 0, w-1

	idx := func(y, x int) int { return y*w + x }

	for top <= bottom && left <= right {
		for x := left; x <= right; x++ {
			order = append(order, idx(top, x))
		}
		top++

		for y := top; y <= bottom; y++ {
			order = append(order, idx(y, right))
		}
		right--

		if top <= bottom {
			for x := right; x >= left; x-- {
				order = append(order, idx(bottom, x))
			}
			bottom--
		}

		if left <= right {
			for y := bottom; y >= top; y-- {
				order = append(order, idx(y, left))
			}
			left++
		}
	}

	return order
}

func serializeSpiral(tile *Image) []byte {
	order := spiralOrder(tile.Width, tile.Height)
	out := make([]byte, len(order))
	for i, srcIdx := range order {
		out[i] = tile.Pix[srcIdx]
	}
	return out
}

func deserializeSpiral(src []byte, img *Image) {
	order := spiralOrder(img.Width, img.Height)
	for i, dstIdx := range order {
		img.Pix[dstIdx] = src[i]
	}
}
