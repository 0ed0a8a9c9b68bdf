package meshcrypt

import (
	"fmt"
	gomath "math"
)

// Target count limits.
const (
	MinTargets = 1
	MaxTargets = 32
)

// DefaultKey seeds an empty key list.
const DefaultKey float32 = 25

// Layout selects how multiple targets relate to each other.
type Layout string

const (
	// LayoutChained displaces once per key. Every target reverses its own pass,
	// so all targets must play at their keys to restore the mesh.
	LayoutChained Layout = "chained"
	// LayoutShared displaces once and builds every target from that snapshot.
	// Any single target at its key restores the mesh.
	LayoutShared Layout = "shared"
)

// Config holds the parameters of one encryption run.
type Config struct {
	Code        string
	Magnitude   float32
	TargetCount int
	Keys        []float32
	Layout      Layout
}

// ClampTargetCount clamps n into [MinTargets, MaxTargets].
func ClampTargetCount(n int) int {
	return max(MinTargets, min(n, MaxTargets))
}

// ResizeKeys returns keys grown or shrunk to n entries. Growth appends a copy of
// the current last key one slot at a time; shrinking drops keys from the tail.
func ResizeKeys(keys []float32, n int) []float32 {
	out := make([]float32, len(keys), max(n, len(keys)))
	copy(out, keys)
	if len(out) == 0 && n > 0 {
		out = append(out, DefaultKey)
	}
	for len(out) < n {
		out = append(out, out[len(out)-1])
	}
	if len(out) > n {
		out = out[:max(n, 0)]
	}
	return out
}

// Normalized returns a copy with the target count clamped, the key list resized
// to match, and an empty layout defaulted to LayoutChained.
func (c Config) Normalized() Config {
	c.TargetCount = ClampTargetCount(c.TargetCount)
	c.Keys = ResizeKeys(c.Keys, c.TargetCount)
	if c.Layout == "" {
		c.Layout = LayoutChained
	}
	return c
}

// Validate checks magnitude, layout and every key.
func (c Config) Validate() error {
	m := float64(c.Magnitude)
	if c.Magnitude < 0 || gomath.IsNaN(m) || gomath.IsInf(m, 0) {
		return fmt.Errorf("%w: %v", ErrNegativeMagnitude, c.Magnitude)
	}
	switch c.Layout {
	case LayoutChained, LayoutShared, "":
	default:
		return fmt.Errorf("unknown layout %q", c.Layout)
	}
	for i, k := range c.Keys {
		if err := ValidateKey(k); err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
	}
	return nil
}
