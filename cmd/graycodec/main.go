// Command graycodec compresses and decompresses raw 8-bit grayscale raster
// images using the graycodec package's delta + adaptive-scan + RLE +
// canonical-Huffman pipeline.
//
// Usage:
//
//	graycodec -i <in> -o <out> (-c | -d) [-m] [-a] [-b <int>] -w <width>
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/schollz/progressbar/v2"

	"github.com/huffimg/graycodec"
	"github.com/huffimg/graycodec/internal/codecerr"
)

type flags struct {
	in, out    string
	compress   bool
	decompress bool
	delta      bool
	adaptive   bool
	blockSize  int
	width      int
	verbose    bool
	verify     bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the numeric error kind as the process exit code, per
// spec.md §6 ("Exit code is the numeric error kind (0 on success)").
func run(args []string) int {
	fl, err := parseFlags(args)
	if err != nil {
		if err == flagHelpRequested {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return int(codecerr.InvalidArgument)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFor(fl.verbose),
	}))

	opts := graycodec.Options{Delta: fl.delta, Adaptive: fl.adaptive, BlockSize: fl.blockSize}

	var opErr error
	if fl.compress {
		opErr = runCompress(fl, opts, logger)
	} else {
		opErr = runDecompress(fl, opts, logger)
	}
	if opErr != nil {
		fmt.Fprintln(os.Stderr, opErr)
		return int(codecerr.KindOf(opErr))
	}
	return 0
}

var flagHelpRequested = fmt.Errorf("help requested")

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func runCompress(fl *flags, opts graycodec.Options, logger *slog.Logger) error {
	in, err := os.ReadFile(fl.in)
	if err != nil {
		return codecerr.New(codecerr.FileNotFound, fmt.Errorf("reading %s: %w", fl.in, err))
	}
	if fl.width <= 0 {
		return codecerr.New(codecerr.InvalidArgument, fmt.Errorf("-w is required and must be positive"))
	}
	height := len(in) / fl.width // remainder silently truncated, per spec.md §6
	logger.Debug("compressing", "width", fl.width, "height", height, "bytes_in", len(in), "adaptive", opts.Adaptive, "delta", opts.Delta)

	var bar *progressbar.ProgressBar
	if opts.Adaptive && fl.verbose {
		tiles, terr := tileCount(fl.width, height, opts.BlockSize)
		if terr == nil {
			bar = progressbar.NewOptions64(int64(tiles), progressbar.OptionSetWriter(os.Stderr))
			bar.RenderBlank()
		}
	}

	compressed, err := graycodec.Compress(in[:height*fl.width], fl.width, height, opts)
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Add(int(bar.GetMax64()))
		fmt.Fprintln(os.Stderr)
	}

	if err := os.WriteFile(fl.out, compressed, 0o644); err != nil {
		return codecerr.New(codecerr.InternalError, fmt.Errorf("writing %s: %w", fl.out, err))
	}
	logger.Debug("compressed", "bytes_out", len(compressed))

	if fl.verify {
		return verifyRoundTrip(in[:height*fl.width], compressed, opts, logger)
	}
	return nil
}

func runDecompress(fl *flags, opts graycodec.Options, logger *slog.Logger) error {
	in, err := os.ReadFile(fl.in)
	if err != nil {
		return codecerr.New(codecerr.FileNotFound, fmt.Errorf("reading %s: %w", fl.in, err))
	}

	pix, width, height, err := graycodec.Decompress(in, opts)
	if err != nil {
		return err
	}
	logger.Debug("decompressed", "width", width, "height", height, "bytes_out", len(pix))

	if err := os.WriteFile(fl.out, pix, 0o644); err != nil {
		return codecerr.New(codecerr.InternalError, fmt.Errorf("writing %s: %w", fl.out, err))
	}
	return nil
}

// verifyRoundTrip decompresses what was just compressed and compares
// xxhash64 digests of the original and round-tripped bytes, mirroring
// spec.md §8's round-trip property but as an interactive CLI check rather
// than a test assertion.
func verifyRoundTrip(original []byte, compressed []byte, opts graycodec.Options, logger *slog.Logger) error {
	pix, _, _, err := graycodec.Decompress(compressed, opts)
	if err != nil {
		return codecerr.New(codecerr.InternalError, fmt.Errorf("-x verify: decompress: %w", err))
	}

	wantSum := xxhash.Sum64(original)
	gotSum := xxhash.Sum64(pix)
	logger.Debug("verify", "want_xxhash", wantSum, "got_xxhash", gotSum)
	if wantSum != gotSum {
		return codecerr.New(codecerr.InternalError, fmt.Errorf("-x verify: round-tripped content does not match (xxhash %x != %x)", gotSum, wantSum))
	}
	return nil
}

func tileCount(width, height, blockSize int) (int, error) {
	if blockSize <= 0 {
		return 0, fmt.Errorf("invalid block size %d", blockSize)
	}
	perRow := (width + blockSize - 1) / blockSize
	perCol := (height + blockSize - 1) / blockSize
	return perRow * perCol, nil
}
