package engine

import "time"

// Result is the terminal, immutable outcome of one analysis.
type Result struct {
	// MotionDetected is the video-level verdict: true when the motion
	// frame fraction exceeds the configured threshold.
	MotionDetected bool `json:"motion_detected"`
	// FramesAnalyzed counts sampled frames, not raw frames read.
	FramesAnalyzed int `json:"frames_analyzed"`
	// TotalFrames counts every raw frame read from the source,
	// including frames skipped by the sampling stride.
	TotalFrames int `json:"total_frames"`
	// MotionFrames counts sampled frames individually flagged as
	// motion.
	MotionFrames int `json:"motion_frames"`
	// MotionPercentage is MotionFrames over FramesAnalyzed, as a
	// percentage.
	MotionPercentage float64 `json:"motion_percentage"`
	// AvgMotionIntensity is the mean diff intensity over motion
	// frames, in [0,1]. Zero when no motion frame was seen.
	AvgMotionIntensity float64 `json:"avg_motion_intensity"`
	// ProcessingTime is the wall-clock duration of the sampling and
	// aggregation pass. File I/O and upload handling are not included.
	ProcessingTime time.Duration `json:"processing_time"`
}

// ProcessingSeconds returns the processing time as float seconds, the
// unit persisted and reported by the service layer.
func (r *Result) ProcessingSeconds() float64 {
	return r.ProcessingTime.Seconds()
}
