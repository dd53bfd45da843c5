package validate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/visionguard/visionguard/validate"
)

// writeFile writes an mp4-looking file: the ftyp box signature padded
// to the requested size.
func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	data := make([]byte, size)
	copy(data[4:], []byte("ftypisom"))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestValidateAcceptsMP4(t *testing.T) {
	v := validate.New(100)
	require.NoError(t, v.Validate(writeFile(t, "clip.mp4", 4096)))
}

func TestValidateMissingFile(t *testing.T) {
	v := validate.New(100)
	err := v.Validate(filepath.Join(t.TempDir(), "missing.mp4"))
	require.ErrorIs(t, err, validate.ErrInvalidFile)
}

func TestValidateTooLarge(t *testing.T) {
	v := validate.New(1)
	err := v.Validate(writeFile(t, "big.mp4", 2*1024*1024))

	var tooLarge *validate.TooLargeError
	require.ErrorAs(t, err, &tooLarge)
	require.Equal(t, 1, tooLarge.MaxSizeMB)
	require.Greater(t, tooLarge.SizeMB, 1.0)
}

func TestValidateUnsupportedExtension(t *testing.T) {
	v := validate.New(100)
	err := v.Validate(writeFile(t, "clip.exe", 4096))

	var unsupported *validate.UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
	require.Equal(t, ".exe", unsupported.Format)
}

func TestValidateSignatures(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		valid  bool
	}{
		{"avi.avi", append([]byte("RIFF\x00\x00\x00\x00AVI "), make([]byte, 8)...), true},
		{"clip.mkv", append([]byte{0x1A, 0x45, 0xDF, 0xA3}, make([]byte, 12)...), true},
		{"fake.mp4", []byte("this is not a video file"), false},
	}

	v := validate.New(100)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.name)
			require.NoError(t, os.WriteFile(path, tc.header, 0o644))

			err := v.Validate(path)
			if tc.valid {
				require.NoError(t, err)
			} else {
				var unsupported *validate.UnsupportedFormatError
				require.ErrorAs(t, err, &unsupported)
			}
		})
	}
}

func TestValidateTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.mp4")
	require.NoError(t, os.WriteFile(path, []byte("ftyp"), 0o644))

	err := validate.New(100).Validate(path)
	require.ErrorIs(t, err, validate.ErrInvalidFile)
}
