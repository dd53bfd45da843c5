package engine

import (
	"image"
	"io"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// sampler walks the raw frame stream at the configured stride and
// normalizes each retained frame. It owns no cross-call state beyond
// its read counters; only the frame currently being normalized is
// alive inside it, so memory stays constant relative to video length.
type sampler struct {
	src    FrameSource
	params Params

	framesRead    int
	framesSampled int
}

func newSampler(src FrameSource, params Params) *sampler {
	return &sampler{src: src, params: params}
}

// next returns the next normalized sampled frame, or io.EOF once the
// raw stream is exhausted. Frames skipped by the stride are closed
// immediately. Any non-EOF source error fails the stream as a decode
// failure.
//
// Ownership of the returned Mat passes to the caller.
func (s *sampler) next() (gocv.Mat, error) {
	for {
		raw, err := s.src.Next()
		if err != nil {
			raw.Close()
			if errors.Is(err, io.EOF) {
				return gocv.NewMat(), io.EOF
			}
			if errors.Is(err, ErrFrameDecode) {
				return gocv.NewMat(), err
			}
			return gocv.NewMat(), errors.Wrapf(ErrFrameDecode, "reading frame %d: %v", s.framesRead, err)
		}
		if raw.Empty() {
			raw.Close()
			return gocv.NewMat(), errors.Wrapf(ErrFrameDecode, "frame %d decoded empty", s.framesRead)
		}

		keep := s.framesRead%s.params.SampleRate == 0
		s.framesRead++
		if !keep {
			raw.Close()
			continue
		}

		normalized := s.normalize(raw)
		raw.Close()
		s.framesSampled++
		return normalized, nil
	}
}

// normalize converts a raw BGR frame into the single-channel
// comparison representation: resize to the processing resolution,
// luma grayscale conversion, then Gaussian smoothing so sensor and
// compression noise does not register as pixel change.
func (s *sampler) normalize(raw gocv.Mat) gocv.Mat {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(raw, &resized, image.Pt(s.params.ProcessingWidth, s.params.ProcessingHeight), 0, 0, gocv.InterpolationLinear)

	gray := gocv.NewMat()
	defer gray.Close()
	if resized.Channels() == 1 {
		resized.CopyTo(&gray)
	} else {
		gocv.CvtColor(resized, &gray, gocv.ColorBGRToGray)
	}

	// Sigma 0 lets OpenCV derive it from the kernel size.
	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred,
		image.Pt(s.params.BlurKernelSize, s.params.BlurKernelSize),
		0, 0, gocv.BorderDefault)
	return blurred
}
