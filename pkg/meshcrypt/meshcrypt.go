// Package meshcrypt obfuscates mesh geometry with a seeded per-vertex displacement
// and builds the delta targets that undo it.
//
// A target built for key k restores the original positions when it is blended in
// at weight k on a 0-100 scale. The scheme hides geometry from casual inspection;
// it is not cryptographically secure.
package meshcrypt

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshveil/pkg/math"
)

// Errors reported by the displacement and target builders.
var (
	ErrMissingGeometry     = errors.New("missing geometry")
	ErrInvalidKey          = errors.New("invalid decryption key")
	ErrVertexCountMismatch = errors.New("vertex count mismatch")
	ErrNegativeMagnitude   = errors.New("negative offset magnitude")
)

// Geometry is an index-aligned snapshot of vertex positions and normals.
type Geometry struct {
	Positions []math.Vec3
	Normals   []math.Vec3
}

// VertexCount returns the number of vertices.
func (g Geometry) VertexCount() int {
	return len(g.Positions)
}

// Validate checks that positions exist and normals line up with them.
func (g Geometry) Validate() error {
	if len(g.Positions) == 0 {
		return ErrMissingGeometry
	}
	if len(g.Normals) != len(g.Positions) {
		return fmt.Errorf("%w: %d positions, %d normals", ErrVertexCountMismatch, len(g.Positions), len(g.Normals))
	}
	return nil
}
