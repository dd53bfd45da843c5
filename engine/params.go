// Package engine - Motion-detection engine: samples a decoded frame
// stream, compares consecutive normalized frames, and folds per-frame
// change ratios into a single video-level verdict.
package engine

import "github.com/pkg/errors"

// Default tuning values. These directly determine classification
// outcomes, so they are exposed as named parameters rather than
// buried in the pipeline.
const (
	// DefaultSampleRate analyzes every 5th decoded frame.
	DefaultSampleRate = 5
	// DefaultPixelChangeThreshold flags a frame as motion when more
	// than 2% of its pixels changed.
	DefaultPixelChangeThreshold = 0.02
	// DefaultMotionFrameFraction classifies a video as motion when
	// more than 10% of sampled frames are motion frames.
	DefaultMotionFrameFraction = 0.1
	// DefaultDiffIntensityCutoff binarizes the absolute-difference map
	// at 25 on the 0-255 intensity scale.
	DefaultDiffIntensityCutoff = 25
	// DefaultBlurKernelSize is the Gaussian blur kernel side length.
	DefaultBlurKernelSize = 21
	// DefaultProcessingWidth is the normalized frame width.
	DefaultProcessingWidth = 640
	// DefaultProcessingHeight is the normalized frame height.
	DefaultProcessingHeight = 480
)

// Params contains the tunable configuration for one analysis.
type Params struct {
	// SampleRate keeps every Nth decoded frame, zero-based: the frame
	// with read index i is kept iff i % SampleRate == 0. The first
	// frame is always kept, so R raw frames yield ceil(R/SampleRate)
	// sampled frames. Must be >= 1.
	SampleRate int
	// PixelChangeThreshold is the fraction of pixels, in (0,1), that
	// must differ between consecutive normalized frames for a frame
	// to count as a motion frame.
	PixelChangeThreshold float64
	// MotionFrameFraction is the fraction of sampled frames, in (0,1),
	// that must be motion frames for the whole video to be classified
	// as motion.
	MotionFrameFraction float64
	// DiffIntensityCutoff is the absolute intensity difference, on the
	// 0-255 scale, above which a pixel counts as changed.
	DiffIntensityCutoff float64
	// BlurKernelSize is the side length of the Gaussian smoothing
	// kernel applied during normalization. Must be odd and positive;
	// sigma is derived from the kernel size.
	BlurKernelSize int
	// ProcessingWidth and ProcessingHeight are the dimensions every
	// frame is resized to before comparison.
	ProcessingWidth  int
	ProcessingHeight int
}

// DefaultParams returns the default parameter set.
func DefaultParams() Params {
	return Params{
		SampleRate:           DefaultSampleRate,
		PixelChangeThreshold: DefaultPixelChangeThreshold,
		MotionFrameFraction:  DefaultMotionFrameFraction,
		DiffIntensityCutoff:  DefaultDiffIntensityCutoff,
		BlurKernelSize:       DefaultBlurKernelSize,
		ProcessingWidth:      DefaultProcessingWidth,
		ProcessingHeight:     DefaultProcessingHeight,
	}
}

// Validate rejects parameter sets that would make the analysis
// meaningless. It runs before any frame is consumed so that invalid
// input never performs partial work.
//
// Returns:
//   - error: wraps ErrInvalidParams naming the offending field, or nil.
func (p Params) Validate() error {
	if p.SampleRate <= 0 {
		return errors.Wrapf(ErrInvalidParams, "sample rate must be positive, got %d", p.SampleRate)
	}
	if p.PixelChangeThreshold <= 0 || p.PixelChangeThreshold >= 1 {
		return errors.Wrapf(ErrInvalidParams, "pixel change threshold must be in (0,1), got %g", p.PixelChangeThreshold)
	}
	if p.MotionFrameFraction <= 0 || p.MotionFrameFraction >= 1 {
		return errors.Wrapf(ErrInvalidParams, "motion frame fraction must be in (0,1), got %g", p.MotionFrameFraction)
	}
	if p.DiffIntensityCutoff <= 0 || p.DiffIntensityCutoff > 255 {
		return errors.Wrapf(ErrInvalidParams, "diff intensity cutoff must be in (0,255], got %g", p.DiffIntensityCutoff)
	}
	if p.BlurKernelSize <= 0 || p.BlurKernelSize%2 == 0 {
		return errors.Wrapf(ErrInvalidParams, "blur kernel size must be odd and positive, got %d", p.BlurKernelSize)
	}
	if p.ProcessingWidth <= 0 || p.ProcessingHeight <= 0 {
		return errors.Wrapf(ErrInvalidParams, "processing dimensions must be positive, got %dx%d", p.ProcessingWidth, p.ProcessingHeight)
	}
	return nil
}
