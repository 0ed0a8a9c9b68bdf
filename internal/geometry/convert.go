package geometry

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/Faultbox/meshveil/pkg/formats"
	"github.com/Faultbox/meshveil/pkg/math"
)

// FromOBJ builds an indexed triangle mesh from parsed OBJ data. Each distinct
// position/uv/normal corner becomes one vertex and polygons are fan
// triangulated. Normals are recalculated unless every corner carries one;
// bounds and tangents are always recalculated.
func FromOBJ(obj *formats.OBJ, opts RecalcOptions) (*Mesh, error) {
	if len(obj.Faces) == 0 {
		return nil, ErrEmptyMesh
	}

	m := &Mesh{Name: obj.Name}
	vertexOf := make(map[formats.OBJCorner]uint32)
	hasUVs, hasNormals := true, true

	vertex := func(c formats.OBJCorner) uint32 {
		if idx, ok := vertexOf[c]; ok {
			return idx
		}
		idx := uint32(len(m.Positions))
		vertexOf[c] = idx

		m.Positions = append(m.Positions, obj.Positions[c.V])
		if c.VT >= 0 {
			m.UVs = append(m.UVs, obj.UVs[c.VT])
		} else {
			m.UVs = append(m.UVs, math.Vec2{})
			hasUVs = false
		}
		if c.VN >= 0 {
			m.Normals = append(m.Normals, obj.Normals[c.VN].Normalize())
		} else {
			m.Normals = append(m.Normals, math.Vec3{})
			hasNormals = false
		}
		return idx
	}

	for _, f := range obj.Faces {
		first := vertex(f.Corners[0])
		prev := vertex(f.Corners[1])
		for _, c := range f.Corners[2:] {
			cur := vertex(c)
			m.Indices = append(m.Indices, first, prev, cur)
			prev = cur
		}
	}

	if !hasUVs {
		m.UVs = nil
	}
	m.RecalculateBounds()
	if !hasNormals {
		m.RecalculateNormals()
	}
	if opts.SmoothNormals {
		m.SmoothNormals()
	}
	m.RecalculateTangents()
	return m, nil
}

// WriteOBJ writes the mesh's current positions, UVs and normals as OBJ.
// Blend shapes and skinning are not representable and are skipped.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	return formats.WriteOBJ(w, m.Name, m.Positions, m.UVs, m.Normals, m.Indices)
}

// FromMSHX converts a decoded container into a validated mesh.
func FromMSHX(x *formats.MSHX) (*Mesh, error) {
	m := &Mesh{
		Name:           x.Name,
		Positions:      x.Positions,
		Normals:        x.Normals,
		Tangents:       x.Tangents,
		UVs:            x.UVs,
		Indices:        x.Indices,
		Bounds:         Bounds{Min: x.BoundsMin, Max: x.BoundsMax},
		NextShapeIndex: int(x.NextShapeIndex),
	}
	for _, bs := range x.BlendShapes {
		if m.shapeIndex(bs.Name) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShape, bs.Name)
		}
		m.BlendShapes = append(m.BlendShapes, BlendShape{
			Name:           bs.Name,
			FrameWeight:    bs.FrameWeight,
			PositionDeltas: bs.PositionDeltas,
			NormalDeltas:   bs.NormalDeltas,
		})
	}
	if x.Skin != nil {
		m.Skin = &Skin{
			RootBone:  x.Skin.RootBone,
			Bones:     x.Skin.Bones,
			BindPoses: x.Skin.BindPoses,
		}
		m.Skin.BoneWeights = make([]BoneWeight, len(x.Skin.BoneWeights))
		for i, bw := range x.Skin.BoneWeights {
			m.Skin.BoneWeights[i] = BoneWeight(bw)
		}
	}

	if err := m.Validate(); err != nil {
		if errors.Is(err, ErrEmptyMesh) {
			return nil, err
		}
		return nil, fmt.Errorf("mesh %s: %w", m.Name, err)
	}
	return m, nil
}

// ToMSHX converts the mesh into its container form. Buffers are copied.
func (m *Mesh) ToMSHX() *formats.MSHX {
	x := &formats.MSHX{
		Version:        formats.MSHXVersion,
		Name:           m.Name,
		Positions:      slices.Clone(m.Positions),
		Normals:        slices.Clone(m.Normals),
		Tangents:       slices.Clone(m.Tangents),
		UVs:            slices.Clone(m.UVs),
		Indices:        slices.Clone(m.Indices),
		BoundsMin:      m.Bounds.Min,
		BoundsMax:      m.Bounds.Max,
		NextShapeIndex: uint32(m.NextShapeIndex),
	}
	for _, bs := range m.BlendShapes {
		x.BlendShapes = append(x.BlendShapes, formats.MSHXBlendShape{
			Name:           bs.Name,
			FrameWeight:    bs.FrameWeight,
			PositionDeltas: slices.Clone(bs.PositionDeltas),
			NormalDeltas:   slices.Clone(bs.NormalDeltas),
		})
	}
	if m.Skin != nil {
		x.Skin = &formats.MSHXSkin{
			RootBone:  m.Skin.RootBone,
			Bones:     slices.Clone(m.Skin.Bones),
			BindPoses: slices.Clone(m.Skin.BindPoses),
		}
		x.Skin.BoneWeights = make([]formats.MSHXBoneWeight, len(m.Skin.BoneWeights))
		for i, bw := range m.Skin.BoneWeights {
			x.Skin.BoneWeights[i] = formats.MSHXBoneWeight(bw)
		}
	}
	return x
}
