package domain

import (
	"math"
	"strconv"
)

const (
	msgInvalidSizeType = "Invalid size type."
	msgNonPositiveSize = "Unable to handle non-positive reco size."
)

// ParseSize validates a requested recommendation count.
// The raw value must be made of ASCII digits only and parse to a positive int
// below math.MaxInt, so size+1 cannot overflow.
func ParseSize(raw string) (int, error) {
	if !isDigits(raw) {
		return 0, &InvalidSizeError{Raw: raw, Reason: msgInvalidSizeType}
	}

	size, err := strconv.Atoi(raw)
	if err != nil {
		// only reachable on overflow
		return 0, &InvalidSizeError{Raw: raw, Reason: msgInvalidSizeType}
	}
	if size <= 0 {
		return 0, &InvalidSizeError{Raw: raw, Reason: msgNonPositiveSize}
	}
	// callers ask the index for size+1 neighbors
	if size == math.MaxInt {
		return 0, &InvalidSizeError{Raw: raw, Reason: msgInvalidSizeType}
	}

	return size, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
