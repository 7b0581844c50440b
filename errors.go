package gpath

import "errors"

// Errors returned by the tessellation pipeline.
//
// Degenerate input (a hairline pen, a zero-length segment, a cubic whose
// control points coincide) is not an error: the operation succeeds and emits
// nothing.
var (
	// ErrOutOfMemory is returned when deferred curve storage exceeds its
	// configured budget. The current draw is aborted; later draws are
	// unaffected.
	ErrOutOfMemory = errors.New("gpath: out of memory")

	// ErrUnsupportedPattern is returned for paint sources the GPU path
	// cannot shade, such as surface (image) patterns.
	ErrUnsupportedPattern = errors.New("gpath: unsupported pattern type")

	// ErrCapacityExceeded is returned when a fixed-capacity mesh cannot
	// accept another vertex without splitting a triangle across a flush.
	ErrCapacityExceeded = errors.New("gpath: mesh capacity exceeded")

	// ErrInvariant reports a violated internal precondition: an index count
	// that is not a multiple of three at render time, a stale vertex handle,
	// or a pen walk that failed to converge.
	ErrInvariant = errors.New("gpath: invariant violation")

	// ErrInvalidPath is returned by path adapters for malformed foreign
	// path data, such as a segment command without its points.
	ErrInvalidPath = errors.New("gpath: invalid path")
)
