package engine

import "gocv.io/x/gocv"

// FrameSource is the pull-based stream of decoded raw frames the
// engine consumes. Container parsing and codec decode live behind it;
// the engine only ever asks for the next frame.
//
// Ownership: Next transfers ownership of the returned Mat to the
// caller, which must Close it. The engine consumes but does not own
// the source itself: the caller that opened it closes it, whether
// iteration ran to completion or was abandoned early. Close must be
// idempotent so an abandoning caller releases the underlying decode
// handle exactly once.
type FrameSource interface {
	// Next returns the next raw BGR frame, io.EOF when the stream is
	// exhausted, or an error for a frame that cannot be decoded.
	Next() (gocv.Mat, error)
	// Close releases the underlying decode handle.
	Close() error
}
