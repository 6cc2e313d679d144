package main

import (
	"flag"
	"fmt"
)

// parseFlags implements the flat flag set from spec.md §6:
//
//	graycodec -i <in> -o <out> (-c | -d) [-m] [-a] [-b <int>] -w <width>
func parseFlags(args []string) (*flags, error) {
	fs := flag.NewFlagSet("graycodec", flag.ContinueOnError)

	in := fs.String("i", "", "input file path (required)")
	out := fs.String("o", "", "output file path (required)")
	compress := fs.Bool("c", true, "compress (default)")
	decompress := fs.Bool("d", false, "decompress")
	delta := fs.Bool("m", false, "enable delta (differential) coding")
	adaptive := fs.Bool("a", false, "enable adaptive per-tile scan selection")
	blockSize := fs.Int("b", 16, "tile block size for adaptive mode (must be > 0)")
	width := fs.Int("w", 0, "image width (required on compress; also required on decompress, see spec notes)")
	verbose := fs.Bool("v", false, "verbose structured logging to stderr")
	verify := fs.Bool("x", false, "after compressing, decompress and verify content identity via xxhash")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, flagHelpRequested
		}
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// -d takes precedence over -c: matches spec.md §6 listing -c as the
	// default and -d as the override.
	fl := &flags{
		in:         *in,
		out:        *out,
		compress:   *compress && !*decompress,
		decompress: *decompress,
		delta:      *delta,
		adaptive:   *adaptive,
		blockSize:  *blockSize,
		width:      *width,
		verbose:    *verbose,
		verify:     *verify,
	}

	if fl.in == "" {
		return nil, fmt.Errorf("-i is required")
	}
	if fl.out == "" {
		return nil, fmt.Errorf("-o is required")
	}
	if fl.width <= 0 {
		return nil, fmt.Errorf("-w is required and must be positive")
	}
	if fl.adaptive && fl.blockSize <= 0 {
		return nil, fmt.Errorf("-b must be > 0")
	}

	return fl, nil
}
