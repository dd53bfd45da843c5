// Package video - Decoding collaborator for the motion engine: a
// gocv.VideoCapture-backed frame source and a synthetic test-video
// generator. Container and codec handling stays here so the engine
// only ever sees decoded frames.
package video

import (
	"io"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/visionguard/visionguard/engine"
)

// ErrInvalidVideo marks a file that cannot be opened as a video at
// all, as opposed to a stream that breaks mid-decode.
var ErrInvalidVideo = errors.New("invalid or unreadable video file")

// File is an engine.FrameSource reading decoded frames from a video
// file. It owns the underlying capture handle; Close releases it
// exactly once no matter how many times it is called or how far
// iteration got.
type File struct {
	path   string
	cap    *gocv.VideoCapture
	closed bool
}

// Open acquires a decode handle for the given path.
//
// Arguments:
//   - path: Path to the video file.
//
// Returns:
//   - *File: The opened frame source. The caller must Close it.
//   - error: ErrInvalidVideo if the container cannot be opened.
func Open(path string) (*File, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidVideo, "open %s: %v", path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Wrapf(ErrInvalidVideo, "cannot open video file: %s", path)
	}
	return &File{path: path, cap: capture}, nil
}

// Next reads one decoded BGR frame. Ownership of the returned Mat
// passes to the caller. io.EOF signals a cleanly exhausted stream; a
// frame that decodes empty mid-stream is reported as a decode failure.
func (f *File) Next() (gocv.Mat, error) {
	if f.closed {
		return gocv.NewMat(), io.EOF
	}

	frame := gocv.NewMat()
	if ok := f.cap.Read(&frame); !ok {
		frame.Close()
		return gocv.NewMat(), io.EOF
	}
	if frame.Empty() {
		frame.Close()
		return gocv.NewMat(), errors.Wrapf(engine.ErrFrameDecode, "unreadable frame in %s", f.path)
	}
	return frame, nil
}

// Close releases the capture handle. Idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.cap.Close()
}
