// Package config - Service settings loaded from environment variables
// with sensible defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Service identity reported by the root and health endpoints.
const (
	AppName    = "VisionGuard"
	AppVersion = "0.1.0"
)

// Settings holds every tunable of the service. Zero configuration is
// a working configuration: all fields carry defaults.
type Settings struct {
	// HTTP listener.
	Host string
	Port int

	// Video processing.
	MaxVideoSizeMB   int
	FrameSampleRate  int
	MotionThreshold  float64
	ProcessingWidth  int
	ProcessingHeight int

	// Upload handling.
	UploadDir string

	// Persistence.
	DatabasePath string
}

// Default returns the stock settings.
func Default() Settings {
	return Settings{
		Host:             "0.0.0.0",
		Port:             8000,
		MaxVideoSizeMB:   100,
		FrameSampleRate:  5,
		MotionThreshold:  0.02,
		ProcessingWidth:  640,
		ProcessingHeight: 480,
		UploadDir:        "/tmp/visionguard_uploads",
		DatabasePath:     "visionguard.db",
	}
}

// Load reads settings from the environment, falling back to defaults
// for unset variables.
func Load() Settings {
	s := Default()
	s.Host = envString("APP_HOST", s.Host)
	s.Port = envInt("APP_PORT", s.Port)
	s.MaxVideoSizeMB = envInt("MAX_VIDEO_SIZE_MB", s.MaxVideoSizeMB)
	s.FrameSampleRate = envInt("FRAME_SAMPLE_RATE", s.FrameSampleRate)
	s.MotionThreshold = envFloat("MOTION_THRESHOLD", s.MotionThreshold)
	s.ProcessingWidth = envInt("PROCESSING_WIDTH", s.ProcessingWidth)
	s.ProcessingHeight = envInt("PROCESSING_HEIGHT", s.ProcessingHeight)
	s.UploadDir = envString("UPLOAD_DIR", s.UploadDir)
	s.DatabasePath = envString("DATABASE_PATH", s.DatabasePath)
	return s
}

// Addr returns the HTTP listen address.
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadSize returns the upload cap in bytes.
func (s Settings) MaxUploadSize() int64 {
	return int64(s.MaxVideoSizeMB) * 1024 * 1024
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
