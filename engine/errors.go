package engine

import "github.com/pkg/errors"

// The engine reports three distinct, caller-inspectable outcomes.
// An empty stream is not one of them: zero decoded frames resolve to
// a successful degenerate result, never an error.
var (
	// ErrInvalidParams marks a parameter set rejected before any frame
	// was consumed.
	ErrInvalidParams = errors.New("invalid analysis parameters")

	// ErrFrameDecode marks a frame midway through the stream that could
	// not be read or decoded. The whole analysis fails: a partial,
	// undercounted result would be worse than a visible failure, and
	// decode failures are structural, so the engine never retries.
	ErrFrameDecode = errors.New("frame decode failure")
)
