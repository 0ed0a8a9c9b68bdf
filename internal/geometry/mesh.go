package geometry

import (
	"fmt"
	"slices"

	"github.com/Faultbox/meshveil/pkg/math"
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Validate checks buffer lengths, triangle indices and that positions and
// normals are finite.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if n == 0 {
		return ErrEmptyMesh
	}
	if len(m.Normals) != n {
		return fmt.Errorf("normals: %w", ErrBufferLength)
	}
	for i := range n {
		if !m.Positions[i].IsFinite() {
			return fmt.Errorf("position %d: %w", i, ErrNonFinite)
		}
		if !m.Normals[i].IsFinite() {
			return fmt.Errorf("normal %d: %w", i, ErrNonFinite)
		}
	}
	if m.Tangents != nil && len(m.Tangents) != n {
		return fmt.Errorf("tangents: %w", ErrBufferLength)
	}
	if m.UVs != nil && len(m.UVs) != n {
		return fmt.Errorf("uvs: %w", ErrBufferLength)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3: %w", len(m.Indices), ErrBufferLength)
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d = %d, %d vertices: %w", i, idx, n, ErrIndexOutOfRange)
		}
	}
	for _, bs := range m.BlendShapes {
		if len(bs.PositionDeltas) != n || len(bs.NormalDeltas) != n {
			return fmt.Errorf("blend shape %s: %w", bs.Name, ErrBufferLength)
		}
	}
	if m.Skin != nil && len(m.Skin.BoneWeights) != n {
		return fmt.Errorf("bone weights: %w", ErrBufferLength)
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:           m.Name,
		Positions:      slices.Clone(m.Positions),
		Normals:        slices.Clone(m.Normals),
		Tangents:       slices.Clone(m.Tangents),
		UVs:            slices.Clone(m.UVs),
		Indices:        slices.Clone(m.Indices),
		Bounds:         m.Bounds,
		NextShapeIndex: m.NextShapeIndex,
	}
	if m.BlendShapes != nil {
		c.BlendShapes = make([]BlendShape, len(m.BlendShapes))
		for i, bs := range m.BlendShapes {
			c.BlendShapes[i] = BlendShape{
				Name:           bs.Name,
				FrameWeight:    bs.FrameWeight,
				PositionDeltas: slices.Clone(bs.PositionDeltas),
				NormalDeltas:   slices.Clone(bs.NormalDeltas),
			}
		}
	}
	if m.Skin != nil {
		c.Skin = &Skin{
			RootBone:    m.Skin.RootBone,
			Bones:       slices.Clone(m.Skin.Bones),
			BindPoses:   slices.Clone(m.Skin.BindPoses),
			BoneWeights: slices.Clone(m.Skin.BoneWeights),
		}
	}
	return c
}

// Snapshot returns copies of the position and normal buffers.
func (m *Mesh) Snapshot() meshcrypt.Geometry {
	return meshcrypt.Geometry{
		Positions: slices.Clone(m.Positions),
		Normals:   slices.Clone(m.Normals),
	}
}

// SetPositions replaces the position buffer. Callers are expected to call
// Recalculate afterwards so normals, tangents and bounds follow.
func (m *Mesh) SetPositions(p []math.Vec3) error {
	if len(p) != len(m.Positions) {
		return fmt.Errorf("positions: got %d, want %d: %w", len(p), len(m.Positions), ErrBufferLength)
	}
	m.Positions = p
	return nil
}
