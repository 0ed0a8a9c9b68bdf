package geometry

import (
	"github.com/Faultbox/meshveil/pkg/math"
)

// ConvertToSkinned turns a static mesh into a single-bone skinned mesh. Every
// vertex is bound fully to bone 0, the root, whose bind pose is the inverse of
// its local-to-world matrix.
func ConvertToSkinned(m *Mesh, root Transform) error {
	if m.VertexCount() == 0 {
		return ErrEmptyMesh
	}
	if m.Skin != nil {
		return ErrAlreadySkinned
	}

	weights := make([]BoneWeight, m.VertexCount())
	for i := range weights {
		weights[i] = BoneWeight{Weight: [4]float32{1, 0, 0, 0}}
	}

	m.Skin = &Skin{
		RootBone:    root.Name,
		Bones:       []string{root.Name},
		BindPoses:   []math.Mat4{root.WorldToLocal()},
		BoneWeights: weights,
	}
	return nil
}

// IsSkinned reports whether the mesh carries skinning data.
func (m *Mesh) IsSkinned() bool {
	return m.Skin != nil
}
