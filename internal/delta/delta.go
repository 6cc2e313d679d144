// Package delta implements the codec's invertible byte-wise previous-
// neighbor subtraction, applied before RLE so smooth image regions collapse
// into longer runs and a more skewed byte distribution for Huffman.
package delta

// Apply replaces b[i] with b[i]-b[i-1] (mod 256) for i>0, in place,
// working right to left so each subtraction uses the original b[i-1].
// b[0] is left unchanged (implicit previous value of 0).
func Apply(b []byte) {
	for i := len(b) - 1; i > 0; i-- {
		b[i] = b[i] - b[i-1]
	}
}

// Undo inverts Apply via prefix summation, in place.
func Undo(b []byte) {
	for i := 1; i < len(b); i++ {
		b[i] = b[i] + b[i-1]
	}
}
