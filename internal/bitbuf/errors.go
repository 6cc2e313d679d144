package bitbuf

import "errors"

// ErrOutOfBound is returned by read operations that would move the read
// cursor past the number of bits written, and by SetBitOne for an index
// outside the written range.
var ErrOutOfBound = errors.New("bitbuf: index out of bound")
