package graycodec

import (
	"math/rand"
	"testing"
)

func loadBenchImage(b *testing.B) []byte {
	b.Helper()
	pix := make([]byte, 640*480)
	rand.New(rand.NewSource(1)).Read(pix)
	return pix
}

func BenchmarkCompressRowMajor(b *testing.B) {
	pix := loadBenchImage(b)
	opts := Options{}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := Compress(pix, 640, 480, opts)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(out)))
	}
}

func BenchmarkCompressAdaptive(b *testing.B) {
	pix := loadBenchImage(b)
	opts := Options{Adaptive: true, BlockSize: 16}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := Compress(pix, 640, 480, opts)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(out)))
	}
}

func BenchmarkCompressAdaptiveDelta(b *testing.B) {
	pix := loadBenchImage(b)
	opts := Options{Adaptive: true, Delta: true, BlockSize: 16}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		out, err := Compress(pix, 640, 480, opts)
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(int64(len(out)))
	}
}

func BenchmarkDecompressRowMajor(b *testing.B) {
	pix := loadBenchImage(b)
	opts := Options{}
	compressed, err := Compress(pix, 640, 480, opts)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, err := Decompress(compressed, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecompressAdaptive(b *testing.B) {
	pix := loadBenchImage(b)
	opts := Options{Adaptive: true, BlockSize: 16}
	compressed, err := Compress(pix, 640, 480, opts)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, err := Decompress(compressed, opts); err != nil {
			b.Fatal(err)
		}
	}
}
