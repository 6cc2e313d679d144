// Package rle implements the codec's run-length encoding: groups of eight
// emitted symbols preceded by a packed 8-bit flag byte indicating which of
// the eight are runs versus literals.
package rle

import (
	"errors"
	"fmt"

	"github.com/huffimg/graycodec/internal/bitbuf"
)

// ErrTruncated is returned by Decode when the input ends before a count or
// value byte that the flag byte promised, or before outLen bytes have been
// produced.
var ErrTruncated = errors.New("rle: truncated input")

// maxRun is the largest number of repeats a single run payload can encode
// (a count byte of 0xFF plus the implicit +2 offset).
const maxRun = 257

// Encode run-length encodes b, emitting one flag byte per group of up to
// eight payload units followed by that group's payloads. The flag byte is
// back-patched bit-by-bit via SetBitOne as runs are discovered, so a full
// group is never buffered before being written.
func Encode(b []byte) *bitbuf.Buffer {
	out := bitbuf.New(nil)
	if len(b) == 0 {
		return out
	}

	slotsInGroup := 0
	flagPos := -1

	startGroup := func() {
		flagPos = out.Len()
		_ = out.PushBits(0, 8)
		slotsInGroup = 0
	}

	i := 0
	for i < len(b) {
		if slotsInGroup == 0 {
			startGroup()
		}

		runStart := i
		runLen := 1
		for i+1 < len(b) && b[i+1] == b[runStart] && runLen < maxRun {
			i++
			runLen++
		}

		if runLen >= 2 {
			_ = out.SetBitOne(flagPos + slotsInGroup)
			_ = out.PushBits(uint64(runLen-2), 8)
			_ = out.PushBits(uint64(b[runStart]), 8)
		} else {
			_ = out.PushBits(uint64(b[runStart]), 8)
		}

		slotsInGroup++
		i++
		if slotsInGroup == 8 {
			slotsInGroup = 0
		}
	}

	return out
}

// Decode RLE-decodes in, writing exactly outLen bytes into out (which must
// have length >= outLen), and returns the number of input bytes consumed.
// It stops as soon as outLen output bytes have been produced, which lets
// the caller advance a cursor across a concatenation of independently
// RLE-encoded tile streams.
func Decode(in []byte, outLen int, out []byte) (consumed int, err error) {
	if len(out) < outLen {
		return 0, fmt.Errorf("rle: Decode: out buffer too small (%d < %d)", len(out), outLen)
	}
	if outLen == 0 {
		return 0, nil
	}

	outIdx := 0
	i := 0

	for i < len(in) {
		flag := in[i]
		i++

		for k := 0; k < 8; k++ {
			if i >= len(in) {
				return i, fmt.Errorf("rle: Decode: %w", ErrTruncated)
			}

			isRun := (flag>>uint(k))&1 != 0

			var count int
			if isRun {
				count = int(in[i]) + 2
				i++
				if i >= len(in) {
					return i, fmt.Errorf("rle: Decode: %w", ErrTruncated)
				}
			} else {
				count = 1
			}

			value := in[i]
			i++

			for c := 0; c < count && outIdx < outLen; c++ {
				out[outIdx] = value
				outIdx++
			}

			if outIdx >= outLen {
				return i, nil
			}
		}
	}

	if outIdx < outLen {
		return i, fmt.Errorf("rle: Decode: %w", ErrTruncated)
	}
	return i, nil
}
