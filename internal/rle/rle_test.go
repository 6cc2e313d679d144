package rle

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, size := range []int{0, 1, 7, 8, 9, 1024, 1920 * 1280 / 16} {
		b := make([]byte, size)
		rng.Read(b)
		// Bias toward repeats so runs actually get exercised.
		for i := 1; i < len(b); i++ {
			if rng.Intn(3) == 0 {
				b[i] = b[i-1]
			}
		}

		encoded := Encode(b).Bytes()
		out := make([]byte, size)
		consumed, err := Decode(encoded, size, out)
		if err != nil {
			t.Fatalf("size=%d: Decode: %v", size, err)
		}
		if consumed > len(encoded) {
			t.Fatalf("size=%d: consumed %d > encoded len %d", size, consumed, len(encoded))
		}
		if !bytes.Equal(out, b) {
			t.Fatalf("size=%d: round trip mismatch", size)
		}
	}
}

func TestEncodeAllZerosThousand(t *testing.T) {
	b := make([]byte, 1000)
	encoded := Encode(b).Bytes()

	// 1000 zeros collapses into runs of at most 257: ceil(1000/257) = 4
	// run payloads, each 2 bytes (count + value) with its flag bit set,
	// all inside one flag-byte group. Decode must still recover exactly.
	out := make([]byte, 1000)
	consumed, err := Decode(encoded, 1000, out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if consumed != len(encoded) {
		t.Fatalf("consumed %d, want %d (all bytes should be runs)", consumed, len(encoded))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0", i, v)
		}
	}

	if encoded[0] != 0x0f {
		t.Fatalf("first flag byte = %#x, want 0x0f (slots 0-3 are runs)", encoded[0])
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	// Flag says slot 0 is a run, but only the count byte follows, no value.
	in := []byte{0x01, 0xFF}
	out := make([]byte, 10)
	if _, err := Decode(in, 10, out); err == nil {
		t.Fatalf("expected truncation error, got nil")
	}
}

func TestDecodeStopsAtOutputLen(t *testing.T) {
	b := []byte{5, 5, 5, 5, 5, 7, 7, 9, 9, 9}
	encoded := Encode(b).Bytes()

	out := make([]byte, 5)
	consumed, err := Decode(encoded, 5, out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, []byte{5, 5, 5, 5, 5}) {
		t.Fatalf("got %v, want [5 5 5 5 5]", out)
	}
	if consumed > len(encoded) {
		t.Fatalf("consumed %d exceeds encoded length %d", consumed, len(encoded))
	}
}
