package validation

import (
	"bytes"
	"fmt"
)

// MaxImageBytes is the largest accepted upload (2MB).
const MaxImageBytes = 2 * 1024 * 1024

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// ValidateImage checks upload size and sniffs the content type from the
// file header. Only JPEG and PNG are accepted. Returns the detected MIME
// type on success.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image must not exceed 2MB")
	}

	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "image/jpeg", nil
	case bytes.HasPrefix(data, pngMagic):
		return "image/png", nil
	}
	return "", fmt.Errorf("image must be JPEG or PNG")
}
