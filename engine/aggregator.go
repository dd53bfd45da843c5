package engine

import (
	"image"

	"gocv.io/x/gocv"
)

// FrameComparison is the outcome of diffing one sampled frame against
// its predecessor. Produced once per compared pair, never retained.
type FrameComparison struct {
	// ChangedPixels is the number of pixels whose absolute intensity
	// difference exceeded the cutoff.
	ChangedPixels int
	// TotalPixels is the pixel count of the normalized frame.
	TotalPixels int
	// ChangeRatio is ChangedPixels / TotalPixels, in [0,1].
	ChangeRatio float64
	// Intensity is the mean absolute difference normalized to [0,1].
	Intensity float64
}

// Motion marks the comparison as a motion frame when its change ratio
// exceeds the given pixel-change threshold.
func (c FrameComparison) Motion(pixelChangeThreshold float64) bool {
	return c.ChangeRatio > pixelChangeThreshold
}

// compareFrames diffs two consecutive normalized frames.
//
// The absolute per-pixel difference is binarized at the intensity
// cutoff, dilated to merge adjacent changed regions, and the surviving
// pixels are counted against the frame size. Dilation runs twice with
// a 5x5 kernel so fragmented change regions count as one.
//
// Arguments:
//   - prev: The previous normalized frame.
//   - curr: The current normalized frame, same dimensions as prev.
//   - cutoff: Absolute intensity difference above which a pixel counts
//     as changed, on the 0-255 scale.
//
// Returns:
//   - FrameComparison: Changed/total pixel counts, change ratio, and
//     mean diff intensity.
func compareFrames(prev, curr gocv.Mat, cutoff float64) FrameComparison {
	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(prev, curr, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, float32(cutoff), 255, gocv.ThresholdBinary)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(5, 5))
	defer kernel.Close()
	gocv.Dilate(thresh, &thresh, kernel)
	gocv.Dilate(thresh, &thresh, kernel)

	total := thresh.Rows() * thresh.Cols()
	changed := gocv.CountNonZero(thresh)

	return FrameComparison{
		ChangedPixels: changed,
		TotalPixels:   total,
		ChangeRatio:   float64(changed) / float64(total),
		Intensity:     diff.Mean().Val1 / 255.0,
	}
}

// accumulator is the running state of one analysis invocation. It is
// owned exclusively by that invocation and mutated sequentially, so
// concurrent analyses need no locking.
type accumulator struct {
	prev           gocv.Mat
	havePrev       bool
	motionFrames   int
	totalIntensity float64
}

// fold feeds one sampled frame into the accumulator, taking ownership
// of the Mat. The first frame only seeds the comparison window; every
// later frame is compared against its predecessor and then replaces it
// (sliding window, not a fixed background reference - this tolerates
// slow lighting drift but cannot see motion that exactly reverses
// between alternating states).
func (a *accumulator) fold(frame gocv.Mat, params Params) {
	if !a.havePrev {
		a.prev = frame
		a.havePrev = true
		return
	}

	cmp := compareFrames(a.prev, frame, params.DiffIntensityCutoff)
	if cmp.Motion(params.PixelChangeThreshold) {
		a.motionFrames++
		a.totalIntensity += cmp.Intensity
	}

	a.prev.Close()
	a.prev = frame
}

// release drops the retained comparison frame. Safe to call more than
// once.
func (a *accumulator) release() {
	if a.havePrev {
		a.prev.Close()
		a.havePrev = false
	}
}
