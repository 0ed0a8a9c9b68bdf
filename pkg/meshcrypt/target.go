package meshcrypt

import (
	"fmt"
	gomath "math"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/meshveil/pkg/math"
)

// FullWeight is the blend weight at which a target's deltas apply unscaled.
const FullWeight float32 = 100

// TargetPrefix prefixes every reconstruction target name.
const TargetPrefix = "Decrypt"

// Target holds the per-vertex deltas that reverse one displacement pass.
// A target is never modified after BuildTarget returns it.
type Target struct {
	Name           string
	Key            float32
	PositionDeltas []math.Vec3
	NormalDeltas   []math.Vec3
}

// TargetName returns the name of the target with the given index.
func TargetName(index int) string {
	return TargetPrefix + strconv.Itoa(index)
}

// ValidateKey rejects keys that cannot produce a finite delta scale.
func ValidateKey(key float32) error {
	k := float64(key)
	if key == 0 || gomath.IsNaN(k) || gomath.IsInf(k, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidKey, key)
	}
	// Subnormal keys overflow the delta scale.
	if s := float64(FullWeight / key); gomath.IsInf(s, 0) || gomath.IsNaN(s) {
		return fmt.Errorf("%w: %v", ErrInvalidKey, key)
	}
	return nil
}

// BuildTarget computes the target that moves displaced back onto original when
// blended in at weight key.
//
// displaced.Normals must come from a normal recalculation over the displaced
// positions. The normal deltas are therefore an approximation of the true normal
// difference, and reconstructed normals only closely match the original ones.
func BuildTarget(original, displaced Geometry, key float32, name string) (*Target, error) {
	if err := original.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if err := displaced.Validate(); err != nil {
		return nil, fmt.Errorf("displaced geometry: %w", err)
	}
	if displaced.VertexCount() != original.VertexCount() {
		return nil, fmt.Errorf("%w: original %d, displaced %d",
			ErrVertexCountMismatch, original.VertexCount(), displaced.VertexCount())
	}

	scale := FullWeight / key
	n := original.VertexCount()
	t := &Target{
		Name:           name,
		Key:            key,
		PositionDeltas: make([]math.Vec3, n),
		NormalDeltas:   make([]math.Vec3, n),
	}
	for i := 0; i < n; i++ {
		t.PositionDeltas[i] = original.Positions[i].Sub(displaced.Positions[i]).Scale(scale)
		t.NormalDeltas[i] = original.Normals[i].Sub(displaced.Normals[i]).Scale(scale)
	}
	return t, nil
}

// BuildTargets builds one target per key from a single shared snapshot.
// Target i is named TargetName(firstIndex+i). Targets are built concurrently;
// the snapshot must not be mutated until BuildTargets returns. On any failure
// no targets are returned.
func BuildTargets(original, displaced Geometry, keys []float32, firstIndex int) ([]*Target, error) {
	for _, k := range keys {
		if err := ValidateKey(k); err != nil {
			return nil, err
		}
	}

	targets := make([]*Target, len(keys))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, k := range keys {
		g.Go(func() error {
			t, err := BuildTarget(original, displaced, k, TargetName(firstIndex+i))
			if err != nil {
				return err
			}
			targets[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return targets, nil
}

// VertexCount returns the number of vertices the target was built for.
func (t *Target) VertexCount() int {
	return len(t.PositionDeltas)
}

// Apply returns copies of positions and normals with the target blended in at
// weight (0-100 scale). normals may be nil.
func (t *Target) Apply(positions, normals []math.Vec3, weight float32) ([]math.Vec3, []math.Vec3, error) {
	if len(positions) != t.VertexCount() {
		return nil, nil, fmt.Errorf("%w: target %s has %d vertices, got %d",
			ErrVertexCountMismatch, t.Name, t.VertexCount(), len(positions))
	}
	if normals != nil && len(normals) != len(positions) {
		return nil, nil, ErrVertexCountMismatch
	}

	f := weight / FullWeight
	outPos := make([]math.Vec3, len(positions))
	for i, p := range positions {
		outPos[i] = p.Add(t.PositionDeltas[i].Scale(f))
	}

	var outNrm []math.Vec3
	if normals != nil {
		outNrm = make([]math.Vec3, len(normals))
		for i, n := range normals {
			outNrm[i] = n.Add(t.NormalDeltas[i].Scale(f))
		}
	}
	return outPos, outNrm, nil
}
