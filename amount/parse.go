package amount

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissing is returned by ParseRequired for empty input.
	ErrMissing = errors.New("amount is required")
	// ErrNotANumber is returned for text that is not a decimal number.
	ErrNotANumber = errors.New("amount is not a number")
	// ErrNotFinite is returned for NaN and infinities.
	ErrNotFinite = errors.New("amount must be finite")
	// ErrNegative is returned for amounts below zero.
	ErrNegative = errors.New("amount must not be negative")
)

// Strip removes surrounding whitespace and thousands separators.
func Strip(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// Parse converts s to a non-negative amount. Empty input parses as 0.
func Parse(s string) (float64, error) {
	clean := Strip(s)
	if clean == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: %q", ErrNotFinite, s)
		}
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotFinite, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegative, s)
	}
	if v == 0 {
		// drop negative zero
		return 0, nil
	}

	return v, nil
}

// ParseRequired is Parse but reports ErrMissing for empty input.
func ParseRequired(s string) (float64, error) {
	if Strip(s) == "" {
		return 0, ErrMissing
	}
	return Parse(s)
}
