// Package utils provides utility functions shared by the Rescue packages.
// This file contains length limits that guard against denial of service via
// oversized inputs.

package utils

import (
	"errors"
)

// Maximum allowed lengths for various inputs.
const (
	// MaxVectorLength is the maximum number of field elements accepted by a single
	// encrypt, decrypt or hash call.
	MaxVectorLength = 1 << 20 // 1M elements

	// MaxInputFileSize is the maximum size of a file read by the CLI.
	MaxInputFileSize = 100 * 1024 * 1024 // 100 MB
)

var (
	// ErrExceedsLimit indicates a value exceeds the allowed limit.
	ErrExceedsLimit = errors.New("value exceeds allowed limit")

	// ErrInvalidLength indicates an invalid length value.
	ErrInvalidLength = errors.New("invalid length")
)

// CheckLength validates that length is within [0, maxAllowed].
func CheckLength(length, maxAllowed int) error {
	if length < 0 {
		return ErrInvalidLength
	}
	if length > maxAllowed {
		return ErrExceedsLimit
	}
	return nil
}
