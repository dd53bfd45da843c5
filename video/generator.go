package video

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// GeneratorOptions shapes the synthetic videos used by tests and the
// `generate` CLI command.
type GeneratorOptions struct {
	Width           int
	Height          int
	FPS             float64
	DurationSeconds int
}

// DefaultGeneratorOptions produces 640x480 videos at 30 FPS, three
// seconds long.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{Width: 640, Height: 480, FPS: 30, DurationSeconds: 3}
}

func (o GeneratorOptions) totalFrames() int {
	return o.DurationSeconds * int(o.FPS)
}

func openWriter(path string, o GeneratorOptions) (*gocv.VideoWriter, error) {
	writer, err := gocv.VideoWriterFile(path, "mp4v", o.FPS, o.Width, o.Height, true)
	if err != nil {
		return nil, errors.Wrapf(err, "create video writer for %s", path)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, errors.Errorf("video writer failed to open %s", path)
	}
	return writer, nil
}

// WriteStatic writes a video whose frames are all identical: a gray
// background with a caption. No comparison should flag motion.
func WriteStatic(path string, o GeneratorOptions) error {
	writer, err := openWriter(path, o)
	if err != nil {
		return err
	}
	defer writer.Close()

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(100, 100, 100, 0), o.Height, o.Width, gocv.MatTypeCV8UC3)
	defer frame.Close()
	gocv.PutText(&frame, "Static Video - No Motion", image.Pt(50, o.Height/2),
		gocv.FontHersheySimplex, 1, color.RGBA{255, 255, 255, 0}, 2)

	for i := 0; i < o.totalFrames(); i++ {
		if err := writer.Write(frame); err != nil {
			return errors.Wrapf(err, "write frame %d to %s", i, path)
		}
	}
	return nil
}

// WriteMotion writes a video with a circle sweeping across the frame,
// so nearly every comparison sees change.
func WriteMotion(path string, o GeneratorOptions) error {
	writer, err := openWriter(path, o)
	if err != nil {
		return err
	}
	defer writer.Close()

	total := o.totalFrames()
	for i := 0; i < total; i++ {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(50, 50, 50, 0), o.Height, o.Width, gocv.MatTypeCV8UC3)

		x := i * o.Width / total
		gocv.Circle(&frame, image.Pt(x, o.Height/2), 30, color.RGBA{0, 255, 0, 0}, -1)
		gocv.PutText(&frame, fmt.Sprintf("Motion Video - Frame %d", i), image.Pt(10, 30),
			gocv.FontHersheySimplex, 0.7, color.RGBA{255, 255, 255, 0}, 2)

		err := writer.Write(frame)
		frame.Close()
		if err != nil {
			return errors.Wrapf(err, "write frame %d to %s", i, path)
		}
	}
	return nil
}

// WritePartialMotion writes a video that is static for the first and
// last third, with a moving circle in the middle third.
func WritePartialMotion(path string, o GeneratorOptions) error {
	writer, err := openWriter(path, o)
	if err != nil {
		return err
	}
	defer writer.Close()

	total := o.totalFrames()
	motionStart := total / 3
	motionEnd := 2 * total / 3

	for i := 0; i < total; i++ {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(70, 70, 70, 0), o.Height, o.Width, gocv.MatTypeCV8UC3)

		caption := "Static Phase"
		if i >= motionStart && i < motionEnd {
			progress := float64(i-motionStart) / float64(motionEnd-motionStart)
			x := int(progress * float64(o.Width))
			gocv.Circle(&frame, image.Pt(x, o.Height/2), 25, color.RGBA{255, 0, 0, 0}, -1)
			caption = "Motion Active"
		}
		gocv.PutText(&frame, caption, image.Pt(10, 30),
			gocv.FontHersheySimplex, 0.8, color.RGBA{255, 255, 255, 0}, 2)

		err := writer.Write(frame)
		frame.Close()
		if err != nil {
			return errors.Wrapf(err, "write frame %d to %s", i, path)
		}
	}
	return nil
}

// WriteFixtures writes the three standard fixture videos into dir and
// returns their paths.
func WriteFixtures(dir string) ([]string, error) {
	o := DefaultGeneratorOptions()
	fixtures := []struct {
		name  string
		write func(string, GeneratorOptions) error
	}{
		{"static_video.mp4", WriteStatic},
		{"motion_video.mp4", WriteMotion},
		{"partial_motion_video.mp4", WritePartialMotion},
	}

	paths := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		path := filepath.Join(dir, f.name)
		if err := f.write(path, o); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
