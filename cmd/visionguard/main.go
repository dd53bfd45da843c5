// Command visionguard runs the video motion-analysis service and its
// supporting tools.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/visionguard/visionguard/config"
	"github.com/visionguard/visionguard/engine"
	"github.com/visionguard/visionguard/metrics"
	"github.com/visionguard/visionguard/server"
	"github.com/visionguard/visionguard/store"
	"github.com/visionguard/visionguard/video"
)

func main() {
	root := &cobra.Command{
		Use:     "visionguard",
		Short:   "Video motion analysis service",
		Version: config.AppVersion,
	}
	root.AddCommand(serveCmd(), analyzeCmd(), generateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			st, err := store.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := server.New(cfg, st, metrics.New())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Printf("[serve] %s %s starting", config.AppName, config.AppVersion)
			return srv.Run(ctx)
		},
	}
}

func analyzeCmd() *cobra.Command {
	var (
		sampleRate      int
		motionThreshold float64
	)

	cmd := &cobra.Command{
		Use:   "analyze <video-file>",
		Short: "Analyze a single video file for motion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := engine.DefaultParams()
			params.SampleRate = sampleRate
			params.PixelChangeThreshold = motionThreshold

			analyzer, err := engine.New(params)
			if err != nil {
				return err
			}

			src, err := video.Open(args[0])
			if err != nil {
				return err
			}
			defer src.Close()

			result, err := analyzer.Analyze(cmd.Context(), src)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]any{
				"motion_detected":      result.MotionDetected,
				"frames_analyzed":      result.FramesAnalyzed,
				"total_frames":         result.TotalFrames,
				"motion_frames":        result.MotionFrames,
				"motion_percentage":    result.MotionPercentage,
				"avg_motion_intensity": result.AvgMotionIntensity,
				"processing_time":      result.ProcessingSeconds(),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().IntVar(&sampleRate, "sample-rate", engine.DefaultSampleRate, "Analyze every Nth frame")
	cmd.Flags().Float64Var(&motionThreshold, "motion-threshold", engine.DefaultPixelChangeThreshold, "Pixel change fraction flagging a motion frame")
	return cmd
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <output-dir>",
		Short: "Generate synthetic test videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0o755); err != nil {
				return err
			}
			paths, err := video.WriteFixtures(args[0])
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Printf("created %s\n", path)
			}
			return nil
		},
	}
}
