package tax

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ErrInvalidRegime is wrapped by every validation failure
var ErrInvalidRegime = errors.New("invalid regime")

var regimeIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

const maxRegimeIDLength = 64

// ValidateRegime checks a single regime table.
// Returns an error wrapping ErrInvalidRegime if validation fails, nil if the regime is valid
func ValidateRegime(r *Regime) error {
	if r == nil {
		return fmt.Errorf("%w: regime is nil", ErrInvalidRegime)
	}

	if err := validateRegimeID(r.ID); err != nil {
		return fmt.Errorf("%w: id %q: %v", ErrInvalidRegime, r.ID, err)
	}

	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: regime %q has an empty name", ErrInvalidRegime, r.ID)
	}

	if !nonNegative(r.StandardDeduction) {
		return fmt.Errorf("%w: regime %q has invalid standard deduction %v", ErrInvalidRegime, r.ID, r.StandardDeduction)
	}

	if !nonNegative(r.Threshold) {
		return fmt.Errorf("%w: regime %q has invalid threshold %v", ErrInvalidRegime, r.ID, r.Threshold)
	}

	if r.MarginalRelief != nil && !nonNegative(r.MarginalRelief.Threshold) {
		return fmt.Errorf("%w: regime %q has invalid marginal relief threshold %v", ErrInvalidRegime, r.ID, r.MarginalRelief.Threshold)
	}

	if err := validateSlabs(r.Slabs); err != nil {
		return fmt.Errorf("%w: regime %q: %v", ErrInvalidRegime, r.ID, err)
	}

	return nil
}

// ValidateRegimes validates each regime and rejects empty sets and duplicate IDs
func ValidateRegimes(regimes []*Regime) error {
	if len(regimes) == 0 {
		return fmt.Errorf("%w: at least one regime is required", ErrInvalidRegime)
	}

	seen := make(map[string]bool, len(regimes))
	for _, r := range regimes {
		if err := ValidateRegime(r); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: duplicate regime id %q", ErrInvalidRegime, r.ID)
		}
		seen[r.ID] = true
	}

	return nil
}

// nonNegative reports whether x is a finite amount >= 0. NaN fails.
func nonNegative(x float64) bool {
	return x >= 0 && !math.IsInf(x, 1)
}

func validateRegimeID(id string) error {
	if len(id) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(id) > maxRegimeIDLength {
		return fmt.Errorf("identifier length %d exceeds maximum of %d characters", len(id), maxRegimeIDLength)
	}
	if !regimeIDPattern.MatchString(id) {
		return fmt.Errorf("must match pattern %s", regimeIDPattern)
	}
	return nil
}

// validateSlabs enforces that slabs cover all income: positive finite sizes
// followed by exactly one unbounded slab.
func validateSlabs(slabs []Slab) error {
	if len(slabs) == 0 {
		return fmt.Errorf("at least one slab is required")
	}

	last := len(slabs) - 1
	for i, slab := range slabs {
		if !(slab.Rate >= 0 && slab.Rate <= 1) {
			return fmt.Errorf("slab %d has rate %v outside [0, 1]", i, slab.Rate)
		}

		if slab.Size == nil {
			if i != last {
				return fmt.Errorf("slab %d is unbounded but is not the last slab", i)
			}
			continue
		}

		if i == last {
			return fmt.Errorf("last slab must be unbounded")
		}
		if !(*slab.Size > 0) || math.IsInf(*slab.Size, 1) {
			return fmt.Errorf("slab %d has size %v, want a positive finite amount", i, *slab.Size)
		}
	}

	return nil
}
