// Package bitbuf implements a growable bit-level buffer with independent
// write and read cursors, used as the wire-format primitive for the rest of
// the codec: RLE payloads, the Huffman code table, and Huffman code words
// all accumulate into (or are consumed from) a Buffer.
package bitbuf

import (
	"fmt"
	"sync"
)

// byteChunk is the number of bytes the backing store grows by whenever the
// write cursor runs out of capacity.
const byteChunk = 10

// backingPool recycles the byte arrays that back growing Buffers. A Buffer
// owns its backing array exclusively and move-only (spec.md §5): whenever
// grow replaces b.data with a larger array, the old one has no remaining
// owner, so it goes back into the pool instead of to the GC. There's no
// size-class bucketing here (unlike a generic byte-buffer pool): every
// array this codec ever grows is a multiple of byteChunk reached by
// repeated small reallocations (RLE/Huffman/metadata buffers rarely exceed
// a few hundred bytes; only the whole-image non-adaptive path grows large),
// so a single pool that just checks capacity on Get fits the actual shape
// of the traffic without inventing unused size tiers.
var backingPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, byteChunk)
		return &b
	},
}

// getBacking returns a zeroed byte slice of exactly size bytes, reusing a
// pooled array when one big enough is available.
func getBacking(size int) []byte {
	bp := backingPool.Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		return make([]byte, size)
	}
	b = b[:size]
	for i := range b {
		b[i] = 0
	}
	return b
}

// putBacking returns a backing array to the pool for reuse.
func putBacking(b []byte) {
	if b == nil {
		return
	}
	backingPool.Put(&b)
}

// Buffer is an ordered sequence of bits backed by a byte slice. Bit i is
// stored in byte i/8, bit index i%8 counting from the LSB.
type Buffer struct {
	data []byte
	len  int // write cursor, in bits
	read int // read cursor, in bits
}

// New returns an empty Buffer, or one pre-loaded with the bits of b (bit 0
// of b[0] first) when b is non-empty.
func New(b []byte) *Buffer {
	buf := &Buffer{}
	if len(b) > 0 {
		buf.data = append([]byte(nil), b...)
		buf.len = len(b) * 8
	}
	return buf
}

// Len returns the number of bits written so far.
func (b *Buffer) Len() int { return b.len }

// ByteLen returns the number of bytes needed to hold Len bits, rounding up.
func (b *Buffer) ByteLen() int {
	return (b.len + 7) / 8
}

// ReadPos returns the current read cursor, in bits.
func (b *Buffer) ReadPos() int { return b.read }

// Bytes returns the byte-view of the buffer: all written bytes, including
// any partially-written trailing byte with its unused high bits zero.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.ByteLen()]
}

// grow reallocates the backing array to hold at least toBit bits. The old
// array, once copied from, has no other owner (Buffer's ownership is
// exclusive, per the pipeline's single-owner-moved-on-return model) so it
// is returned to the shared pool instead of left for the GC.
func (b *Buffer) grow(toBit int) {
	needBytes := (toBit + 7) / 8
	if needBytes <= len(b.data) {
		return
	}
	newCap := len(b.data) + byteChunk
	for newCap < needBytes {
		newCap += byteChunk
	}
	grown := getBacking(newCap)
	copy(grown, b.data)
	old := b.data
	b.data = grown
	if old != nil {
		putBacking(old)
	}
}

// PushBit appends one bit.
func (b *Buffer) PushBit(one bool) {
	b.grow(b.len + 1)
	if one {
		b.data[b.len/8] |= 1 << uint(b.len%8)
	}
	b.len++
}

// PushBits appends the low n bits of v, least-significant bit first, so
// bit 0 of v lands at the current write position, bit 1 at position+1, and
// so on. n must be at most 64.
func (b *Buffer) PushBits(v uint64, n int) error {
	if n < 0 || n > 64 {
		return fmt.Errorf("bitbuf: PushBits: n=%d out of range [0,64]", n)
	}
	if n == 0 {
		return nil
	}
	total := n
	b.grow(b.len + total)

	byteIdx := b.len / 8
	bitIdx := b.len % 8

	if bitIdx != 0 {
		avail := 8 - bitIdx
		take := avail
		if n < take {
			take = n
		}
		mask := uint64(1)<<uint(take) - 1
		b.data[byteIdx] |= byte((v & mask) << uint(bitIdx))
		v >>= uint(take)
		n -= take
		byteIdx++
	}

	for n > 0 {
		take := 8
		if n < 8 {
			take = n
		}
		mask := uint64(1)<<uint(take) - 1
		b.data[byteIdx] |= byte(v & mask)
		v >>= uint(take)
		n -= take
		byteIdx++
	}

	b.len += total
	return nil
}

// PadToByte appends zero bits until Len is a multiple of 8.
func (b *Buffer) PadToByte() {
	rem := b.len % 8
	if rem == 0 {
		return
	}
	pad := 8 - rem
	b.grow(b.len + pad)
	b.len += pad
}

// Concat appends all bits of other, from its bit 0 onward, to b. This is a
// bit-level append: if b is not byte-aligned, the appended bits straddle
// byte boundaries exactly as if they had been pushed one at a time.
func (b *Buffer) Concat(other *Buffer) {
	total := other.len
	pos := 0
	for pos < total {
		chunk := 32
		if total-pos < chunk {
			chunk = total - pos
		}
		v := other.peekBitsAt(pos, chunk)
		// PushBits cannot fail for n in [0,64].
		_ = b.PushBits(v, chunk)
		pos += chunk
	}
}

// peekBitsAt reads n bits (n<=64) starting at the given absolute bit
// position without disturbing the read cursor.
func (b *Buffer) peekBitsAt(pos, n int) uint64 {
	var result uint64
	for i := 0; i < n; i++ {
		idx := pos + i
		bit := (b.data[idx/8] >> uint(idx%8)) & 1
		result |= uint64(bit) << uint(i)
	}
	return result
}

// ReadBit returns the bit at the read cursor and advances it by one.
func (b *Buffer) ReadBit() (bool, error) {
	if b.read >= b.len {
		return false, fmt.Errorf("bitbuf: ReadBit: %w", ErrOutOfBound)
	}
	bit := (b.data[b.read/8] >> uint(b.read%8)) & 1
	b.read++
	return bit != 0, nil
}

// ReadBits reads n bits (n<=64) and assembles them into an integer whose
// bit i is the i-th bit read (LSB-first assembly, mirroring PushBits).
func (b *Buffer) ReadBits(n int) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("bitbuf: ReadBits: n=%d out of range [0,64]", n)
	}
	if b.read+n > b.len {
		return 0, fmt.Errorf("bitbuf: ReadBits: %w", ErrOutOfBound)
	}
	v := b.peekBitsAt(b.read, n)
	b.read += n
	return v, nil
}

// SetBitOne forces the bit at the given previously-written position to 1.
// Used by the RLE encoder to back-patch a group's flag byte once it learns
// which payload slots are runs.
func (b *Buffer) SetBitOne(index int) error {
	if index < 0 || index >= b.len {
		return fmt.Errorf("bitbuf: SetBitOne: index=%d: %w", index, ErrOutOfBound)
	}
	b.data[index/8] |= 1 << uint(index%8)
	return nil
}
