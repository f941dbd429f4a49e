package spxtrace

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
)

// TraceID is the 128-bit identifier shared by every span in a trace.
// The hex form is computed once, at construction, because identifiers
// are rendered far more often than they are made.
type TraceID struct {
	b [16]byte
	h [16 * 2]byte
}

// SpanID is the 64-bit identifier of a single span within a trace.
type SpanID struct {
	b [8]byte
	h [8 * 2]byte
}

var (
	zeroTraceIDBytes = [16]byte{}
	zeroSpanIDBytes  = [8]byte{}
	zeroTraceIDHex   = bytes.Repeat([]byte{'0'}, 16*2)
	zeroSpanIDHex    = bytes.Repeat([]byte{'0'}, 8*2)
)

// NewTraceID returns a random TraceID.  It never returns the all-zero
// (invalid) identifier: it redraws until the result is non-zero.
func NewTraceID() TraceID {
	var x TraceID
	for {
		_, _ = rand.Read(x.b[:])
		if x.b != zeroTraceIDBytes {
			break
		}
	}
	hex.Encode(x.h[:], x.b[:])
	return x
}

// NewSpanID returns a random, never all-zero SpanID.
func NewSpanID() SpanID {
	var x SpanID
	for {
		_, _ = rand.Read(x.b[:])
		if x.b != zeroSpanIDBytes {
			break
		}
	}
	hex.Encode(x.h[:], x.b[:])
	return x
}

// TraceIDFromBytes builds a TraceID from exactly 16 bytes.
func TraceIDFromBytes(b []byte) (TraceID, error) {
	var x TraceID
	if len(b) != len(x.b) {
		return x, errors.Errorf("trace id must be %d bytes, got %d", len(x.b), len(b))
	}
	copy(x.b[:], b)
	hex.Encode(x.h[:], x.b[:])
	return x, nil
}

// TraceIDFromHex builds a TraceID from exactly 32 lowercase or
// uppercase hex characters.
func TraceIDFromHex(s string) (TraceID, error) {
	var x TraceID
	if len(s) != len(x.h) {
		return x, errors.Errorf("trace id must be %d hex characters, got %d", len(x.h), len(s))
	}
	if _, err := hex.Decode(x.b[:], []byte(s)); err != nil {
		return x, errors.Wrap(err, "invalid trace id")
	}
	hex.Encode(x.h[:], x.b[:])
	return x, nil
}

// SpanIDFromBytes builds a SpanID from exactly 8 bytes.
func SpanIDFromBytes(b []byte) (SpanID, error) {
	var x SpanID
	if len(b) != len(x.b) {
		return x, errors.Errorf("span id must be %d bytes, got %d", len(x.b), len(b))
	}
	copy(x.b[:], b)
	hex.Encode(x.h[:], x.b[:])
	return x, nil
}

// SpanIDFromHex builds a SpanID from exactly 16 hex characters.
func SpanIDFromHex(s string) (SpanID, error) {
	var x SpanID
	if len(s) != len(x.h) {
		return x, errors.Errorf("span id must be %d hex characters, got %d", len(x.h), len(s))
	}
	if _, err := hex.Decode(x.b[:], []byte(s)); err != nil {
		return x, errors.Wrap(err, "invalid span id")
	}
	hex.Encode(x.h[:], x.b[:])
	return x, nil
}

func (x TraceID) IsZero() bool { return x.b == zeroTraceIDBytes }
func (x SpanID) IsZero() bool  { return x.b == zeroSpanIDBytes }

// Bytes returns the identifier as a slice over a copy of the array.
func (x TraceID) Bytes() []byte { return x.b[:] }
func (x SpanID) Bytes() []byte  { return x.b[:] }

// Array returns the underlying byte array.  Do not modify it!
func (x TraceID) Array() [16]byte { return x.b }
func (x SpanID) Array() [8]byte   { return x.b }

func (x TraceID) String() string {
	if x.h == ([16 * 2]byte{}) {
		return string(zeroTraceIDHex)
	}
	return string(x.h[:])
}

func (x SpanID) String() string {
	if x.h == ([8 * 2]byte{}) {
		return string(zeroSpanIDHex)
	}
	return string(x.h[:])
}
