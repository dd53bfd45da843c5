package engine

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Analyzer runs motion analysis over decoded frame streams. It holds
// only immutable parameters, so a single Analyzer may serve any number
// of concurrent Analyze calls; each call owns its own accumulator.
type Analyzer struct {
	params Params
}

// New creates an Analyzer, rejecting invalid parameters up front.
//
// Arguments:
//   - params: The analysis tuning parameters (see DefaultParams).
//
// Returns:
//   - *Analyzer: The configured analyzer.
//   - error: ErrInvalidParams if any parameter is out of range.
func New(params Params) (*Analyzer, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{params: params}, nil
}

// Params returns the analyzer's parameter set.
func (a *Analyzer) Params() Params {
	return a.params
}

// Analyze consumes the frame source in a single synchronous pass and
// produces the video-level verdict.
//
// The verdict is a deterministic pure function of the sampled frame
// sequence and the thresholds: re-running on an identical stream
// yields an identical decision. Only ProcessingTime varies between
// runs.
//
// The source is borrowed, not owned: Analyze never closes it, and the
// caller must close it whether the pass completed, failed, or was
// cancelled. Cancellation is checked between frames, so a caller
// deadline abandons the stream without leaking frame buffers.
//
// Arguments:
//   - ctx: Cancellation/deadline imposed by the caller.
//   - src: The decoded frame stream.
//
// Returns:
//   - *Result: The verdict and summary statistics. An empty stream is
//     a valid degenerate input: motion false, zero frames analyzed.
//   - error: ErrFrameDecode for a mid-stream decode failure (no
//     partial result is fabricated), or the context's error on
//     cancellation.
func (a *Analyzer) Analyze(ctx context.Context, src FrameSource) (*Result, error) {
	start := time.Now()

	s := newSampler(src, a.params)
	acc := accumulator{}
	defer acc.release()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		frame, err := s.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		acc.fold(frame, a.params)
	}

	return a.summarize(s, &acc, time.Since(start)), nil
}

// summarize folds the accumulated per-frame classifications into the
// final Result. With zero or one sampled frame no comparison was
// possible, so the verdict resolves to no motion rather than an error.
func (a *Analyzer) summarize(s *sampler, acc *accumulator, elapsed time.Duration) *Result {
	result := &Result{
		FramesAnalyzed: s.framesSampled,
		TotalFrames:    s.framesRead,
		MotionFrames:   acc.motionFrames,
		ProcessingTime: elapsed,
	}

	if s.framesSampled > 0 {
		result.MotionPercentage = float64(acc.motionFrames) / float64(s.framesSampled) * 100
		result.MotionDetected = float64(acc.motionFrames)/float64(s.framesSampled) > a.params.MotionFrameFraction
	}
	if acc.motionFrames > 0 {
		result.AvgMotionIntensity = acc.totalIntensity / float64(acc.motionFrames)
	}
	return result
}
