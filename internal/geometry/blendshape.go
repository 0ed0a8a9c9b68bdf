package geometry

import (
	"fmt"
	gomath "math"
	"slices"

	"github.com/Faultbox/meshveil/pkg/math"
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// NextShapeName returns the name the next generated blend shape will get.
func (m *Mesh) NextShapeName() string {
	return meshcrypt.TargetName(m.NextShapeIndex)
}

// AddBlendShape appends a target as a single-frame blend shape at full weight.
// An unnamed target gets NextShapeName. The target's key is not stored on the
// mesh. On error the blend shape list is unchanged.
func (m *Mesh) AddBlendShape(t *meshcrypt.Target) (string, error) {
	name := t.Name
	if name == "" {
		name = m.NextShapeName()
	}
	if len(t.PositionDeltas) != m.VertexCount() || len(t.NormalDeltas) != m.VertexCount() {
		return "", fmt.Errorf("blend shape %s: %d deltas, %d vertices: %w",
			name, len(t.PositionDeltas), m.VertexCount(), ErrBufferLength)
	}
	if m.shapeIndex(name) >= 0 {
		return "", fmt.Errorf("%w: %s", ErrDuplicateShape, name)
	}

	m.BlendShapes = append(m.BlendShapes, BlendShape{
		Name:           name,
		FrameWeight:    meshcrypt.FullWeight,
		PositionDeltas: slices.Clone(t.PositionDeltas),
		NormalDeltas:   slices.Clone(t.NormalDeltas),
	})
	m.NextShapeIndex++
	return name, nil
}

// BlendShape returns the named blend shape.
func (m *Mesh) BlendShape(name string) (*BlendShape, bool) {
	i := m.shapeIndex(name)
	if i < 0 {
		return nil, false
	}
	return &m.BlendShapes[i], true
}

// RemoveBlendShape deletes the named blend shape. NextShapeIndex is not rewound.
func (m *Mesh) RemoveBlendShape(name string) error {
	i := m.shapeIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrShapeNotFound, name)
	}
	m.BlendShapes = slices.Delete(m.BlendShapes, i, i+1)
	return nil
}

// ShapeNames lists blend shape names in order.
func (m *Mesh) ShapeNames() []string {
	names := make([]string, len(m.BlendShapes))
	for i, bs := range m.BlendShapes {
		names[i] = bs.Name
	}
	return names
}

// Evaluate returns a copy of the mesh with the weighted blend shapes applied to
// positions and normals. Weights use the 0-100 scale; shapes not listed stay at 0.
func (m *Mesh) Evaluate(weights map[string]float32) (*Mesh, error) {
	for name := range weights {
		if m.shapeIndex(name) < 0 {
			return nil, fmt.Errorf("%w: %s", ErrShapeNotFound, name)
		}
	}

	out := m.Clone()
	for _, bs := range m.BlendShapes {
		w, ok := weights[bs.Name]
		if !ok || w == 0 {
			continue
		}
		if bs.FrameWeight <= 0 {
			return nil, fmt.Errorf("blend shape %s: %w", bs.Name, ErrInvalidFrameWeight)
		}
		f := w / bs.FrameWeight
		for i := range out.Positions {
			out.Positions[i] = out.Positions[i].Add(bs.PositionDeltas[i].Scale(f))
			out.Normals[i] = out.Normals[i].Add(bs.NormalDeltas[i].Scale(f))
		}
	}
	out.RecalculateBounds()
	return out, nil
}

// MaxPositionError returns the largest distance between matching vertices.
// The result is NaN when any distance is NaN.
func MaxPositionError(a, b []math.Vec3) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrBufferLength
	}
	var worst float32
	for i := range a {
		d := a[i].Distance(b[i])
		if gomath.IsNaN(float64(d)) {
			return d, nil
		}
		worst = max(worst, d)
	}
	return worst, nil
}

func (m *Mesh) shapeIndex(name string) int {
	return slices.IndexFunc(m.BlendShapes, func(bs BlendShape) bool {
		return bs.Name == name
	})
}
