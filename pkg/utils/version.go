package utils

import (
	"errors"
	"strings"
)

var (
	ErrVersionDots    = errors.New("version must have two dots")
	ErrVersionNumeric = errors.New("version parts must be numeric")
)

// ValidateVersion checks a release tag of the form x.y.z (a leading "v" is
// allowed) and returns it without the prefix.
func ValidateVersion(tag string) (string, error) {
	v := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return "", ErrVersionDots
	}
	for _, part := range parts {
		if part == "" {
			return "", ErrVersionNumeric
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return "", ErrVersionNumeric
			}
		}
	}
	return v, nil
}
