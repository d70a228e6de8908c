package errors

import (
	"strings"
	"unicode"
)

// MaxArtistNameLength bounds accepted artist names.
const MaxArtistNameLength = 256

// ValidateArtistName checks a seed artist name before a graph build.
// The name is trimmed first; empty or whitespace-only names are rejected,
// as are names with control characters or longer than [MaxArtistNameLength].
// It returns the trimmed name on success.
func ValidateArtistName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", New(ErrCodeInvalidInput, "artist name cannot be empty")
	}

	if len(name) > MaxArtistNameLength {
		return "", New(ErrCodeInvalidInput, "artist name too long (max %d characters)", MaxArtistNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return "", New(ErrCodeInvalidInput, "artist name contains invalid control characters")
		}
	}

	return name, nil
}
