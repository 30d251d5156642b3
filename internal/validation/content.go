package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxPostContentLen is the hard limit on post content; longer input is
	// truncated rather than rejected.
	MaxPostContentLen = 280

	// MaxCommentLen is the hard limit on comment content.
	MaxCommentLen = 200

	// MaxBioLen is the hard limit on profile bios.
	MaxBioLen = 160

	// MaxLocationLen is the hard limit on profile locations.
	MaxLocationLen = 100
)

// TruncatePostContent trims whitespace and clamps content to the post limit.
func TruncatePostContent(content string) string {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) <= MaxPostContentLen {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxPostContentLen])
}

// ValidatePostContent checks that post content is present.
func ValidatePostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	return nil
}

// ValidateCommentContent checks comment content presence and length.
func ValidateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLen {
		return fmt.Errorf("comment must not exceed %d characters", MaxCommentLen)
	}
	return nil
}

// ValidateBio checks profile bio length.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLen {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLen)
	}
	return nil
}

// ValidateLocation checks profile location length.
func ValidateLocation(location string) error {
	if utf8.RuneCountInString(location) > MaxLocationLen {
		return fmt.Errorf("location must not exceed %d characters", MaxLocationLen)
	}
	return nil
}
