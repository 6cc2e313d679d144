package bitbuf

import (
	"math/rand"
	"testing"
)

func TestPushBitsReadBitsRoundTrip(t *testing.T) {
	ns := []int{1, 2, 3, 8, 15, 32, 64}
	rng := rand.New(rand.NewSource(7))

	for _, n := range ns {
		for trial := 0; trial < 20; trial++ {
			var v uint64
			if n == 64 {
				v = rng.Uint64()
			} else {
				v = rng.Uint64() & (uint64(1)<<uint(n) - 1)
			}

			b := New(nil)
			if err := b.PushBits(v, n); err != nil {
				t.Fatalf("PushBits(n=%d): %v", n, err)
			}
			got, err := b.ReadBits(n)
			if err != nil {
				t.Fatalf("ReadBits(n=%d): %v", n, err)
			}
			if got != v {
				t.Fatalf("n=%d: got %#x, want %#x", n, got, v)
			}
		}
	}
}

func TestPushBitsTooLarge(t *testing.T) {
	b := New(nil)
	if err := b.PushBits(0, 65); err == nil {
		t.Fatalf("PushBits(n=65): expected error, got nil")
	}
}

func TestPadToByte(t *testing.T) {
	b := New(nil)
	_ = b.PushBits(0b101, 3)
	b.PadToByte()
	if b.Len()%8 != 0 {
		t.Fatalf("Len()=%d not a multiple of 8", b.Len())
	}
	b.read = 0
	got, _ := b.ReadBits(3)
	if got != 0b101 {
		t.Fatalf("earlier contents not preserved: got %#x, want 0b101", got)
	}
}

func TestConcatAcrossByteBoundaries(t *testing.T) {
	values := []uint64{
		0x0123456789abcdef, 0xffffffffffffffff, 0, 1,
		0xdeadbeefcafebabe, 0x5555555555555555, 0xaaaaaaaaaaaaaaaa,
	}

	dst := New(nil)
	// Force misalignment so the first Concat straddles a byte.
	_ = dst.PushBits(0b101, 3)

	for _, v := range values {
		src := New(nil)
		_ = src.PushBits(v, 64)
		dst.Concat(src)
	}

	got, _ := dst.ReadBits(3)
	if got != 0b101 {
		t.Fatalf("misalignment prefix: got %#x want 0b101", got)
	}
	for i, want := range values {
		got, err := dst.ReadBits(64)
		if err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("value %d: got %#x, want %#x", i, got, want)
		}
	}
}

func TestSetBitOne(t *testing.T) {
	b := New(nil)
	_ = b.PushBits(0, 8)
	if err := b.SetBitOne(3); err != nil {
		t.Fatalf("SetBitOne(3): %v", err)
	}
	b.read = 0
	got, _ := b.ReadBits(8)
	if got != 0b00001000 {
		t.Fatalf("got %#b, want %#b", got, 0b00001000)
	}
}

func TestSetBitOneOutOfRange(t *testing.T) {
	b := New(nil)
	_ = b.PushBits(0, 8)
	if err := b.SetBitOne(8); err == nil {
		t.Fatalf("SetBitOne(8): expected error, got nil")
	}
}

func TestReadPastEndFails(t *testing.T) {
	b := New(nil)
	_ = b.PushBits(1, 1)
	if _, err := b.ReadBit(); err != nil {
		t.Fatalf("first ReadBit: %v", err)
	}
	if _, err := b.ReadBit(); err == nil {
		t.Fatalf("ReadBit past end: expected error, got nil")
	}
}

func TestNewFromBytes(t *testing.T) {
	b := New([]byte{0xAB, 0xCD})
	if b.Len() != 16 {
		t.Fatalf("Len()=%d, want 16", b.Len())
	}
	got, _ := b.ReadBits(16)
	if got != 0xCDAB {
		t.Fatalf("got %#x, want %#x (LSB-first assembly)", got, 0xCDAB)
	}
}
