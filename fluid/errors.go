package fluid

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("fluid: invalid configuration")

// ErrSizeMismatch is wrapped when a stage receives grids of differing shapes.
var ErrSizeMismatch = errors.New("fluid: grid size mismatch")

// ConfigurationError reports a construction-time parameter that can never
// produce a valid step (non-positive resolution, negative dt, zero iterations).
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fluid: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) true for any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// sameShape returns a wrapped ErrSizeMismatch naming both shapes if a and b differ.
func sameShape(stage string, a, b *Grid) error {
	if a.res != b.res {
		return fmt.Errorf("%s: %w: resolution %d vs %d", stage, ErrSizeMismatch, a.res, b.res)
	}
	return nil
}

// sameLayout additionally requires equal channel counts.
func sameLayout(stage string, a, b *Grid) error {
	if err := sameShape(stage, a, b); err != nil {
		return err
	}
	if a.channels != b.channels {
		return fmt.Errorf("%s: %w: channels %d vs %d", stage, ErrSizeMismatch, a.channels, b.channels)
	}
	return nil
}

// wantChannels checks a grid carries the channel count a stage expects.
func wantChannels(stage, role string, g *Grid, n int) error {
	if g.channels != n {
		return fmt.Errorf("%s: %w: %s grid has %d channels, want %d", stage, ErrSizeMismatch, role, g.channels, n)
	}
	return nil
}

// ErrAliased is wrapped when a stage is asked to write into the buffer it reads.
var ErrAliased = errors.New("fluid: destination aliases source")

func errAliased(stage string) error {
	return fmt.Errorf("%s: %w", stage, ErrAliased)
}
