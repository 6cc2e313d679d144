package codecerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfUnwrapsThroughFmtErrorf(t *testing.T) {
	base := New(InvalidBlockSize, errors.New("boom"))
	wrapped := fmt.Errorf("pipeline: %w", base)

	if got := KindOf(wrapped); got != InvalidBlockSize {
		t.Fatalf("KindOf = %v, want InvalidBlockSize", got)
	}
}

func TestKindOfNilIsNone(t *testing.T) {
	if got := KindOf(nil); got != None {
		t.Fatalf("KindOf(nil) = %v, want None", got)
	}
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != InternalError {
		t.Fatalf("KindOf(plain) = %v, want InternalError", got)
	}
}

func TestNewNilErrIsNil(t *testing.T) {
	if err := New(InvalidArgument, nil); err != nil {
		t.Fatalf("New(_, nil) = %v, want nil", err)
	}
}

func TestErrorMessageIncludesKind(t *testing.T) {
	err := New(InvalidImageSize, errors.New("0x0"))
	want := "invalid image size: 0x0"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}
