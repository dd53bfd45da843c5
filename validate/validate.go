// Package validate - Upload validation for incoming video files:
// existence, size cap, extension allowlist, and container-signature
// sniffing.
package validate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Supported upload formats.
var allowedExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// TooLargeError reports an upload over the size cap.
type TooLargeError struct {
	SizeMB    float64
	MaxSizeMB int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("video file size (%.2fMB) exceeds maximum allowed size (%dMB)", e.SizeMB, e.MaxSizeMB)
}

// UnsupportedFormatError reports an extension or container type
// outside the allowlist.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported video format: %s (supported: %s)",
		e.Format, strings.Join(allowedExtensions, ", "))
}

// ErrInvalidFile marks a path that is missing, not a regular file, or
// not recognizable as a video container.
var ErrInvalidFile = errors.New("invalid video file")

// Validator checks uploaded video files before they reach the engine.
type Validator struct {
	maxSizeMB int
}

// New creates a Validator with the given size cap in megabytes.
func New(maxSizeMB int) *Validator {
	return &Validator{maxSizeMB: maxSizeMB}
}

// Validate runs the full check sequence on path. Checks are ordered
// cheapest first; the first failure wins.
func (v *Validator) Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrInvalidFile, "file does not exist: %s", path)
	}
	if !info.Mode().IsRegular() {
		return errors.Wrapf(ErrInvalidFile, "path is not a file: %s", path)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	if info.Size() > int64(v.maxSizeMB)*1024*1024 {
		return &TooLargeError{SizeMB: sizeMB, MaxSizeMB: v.maxSizeMB}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !extensionAllowed(ext) {
		return &UnsupportedFormatError{Format: ext}
	}

	return v.validateSignature(path)
}

func extensionAllowed(ext string) bool {
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// validateSignature sniffs the leading bytes for a known container
// signature: ISO BMFF (MP4/MOV), RIFF AVI, or Matroska EBML.
func (v *Validator) validateSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrInvalidFile, "cannot read file: %s", path)
	}
	defer f.Close()

	header := make([]byte, 12)
	n, err := f.Read(header)
	if err != nil || n < 12 {
		return errors.Wrapf(ErrInvalidFile, "file too short to be a video: %s", path)
	}

	switch {
	case bytes.Equal(header[4:8], []byte("ftyp")): // MP4 / MOV
		return nil
	case bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("AVI ")):
		return nil
	case bytes.Equal(header[0:4], []byte{0x1A, 0x45, 0xDF, 0xA3}): // Matroska EBML
		return nil
	case bytes.Equal(header[4:8], []byte("moov")) || bytes.Equal(header[4:8], []byte("mdat")):
		return nil
	}
	return &UnsupportedFormatError{Format: "unknown container"}
}
