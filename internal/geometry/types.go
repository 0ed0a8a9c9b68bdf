// Package geometry owns mutable mesh buffers: vertices, normals, tangents,
// blend shapes and skinning data.
package geometry

import (
	"errors"

	"github.com/Faultbox/meshveil/pkg/math"
)

// Geometry errors.
var (
	ErrEmptyMesh          = errors.New("mesh has no vertices")
	ErrBufferLength       = errors.New("buffer length does not match vertex count")
	ErrIndexOutOfRange    = errors.New("triangle index out of range")
	ErrDuplicateShape     = errors.New("blend shape name already exists")
	ErrShapeNotFound      = errors.New("blend shape not found")
	ErrAlreadySkinned     = errors.New("mesh is already skinned")
	ErrInvalidFrameWeight = errors.New("blend shape frame weight must be positive")
	ErrNonFinite          = errors.New("vertex data is not finite")
)

// Mesh holds the vertex buffers of one mesh asset. Positions, Normals, Tangents
// and UVs (when present) are index-aligned.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Normals   []math.Vec3
	Tangents  []math.Vec4 // W holds bitangent handedness
	UVs       []math.Vec2 // Optional
	Indices   []uint32    // Triangle list
	Bounds    Bounds

	BlendShapes []BlendShape
	// NextShapeIndex numbers the next generated blend shape name. It only
	// grows, so names are never reused after a shape is removed.
	NextShapeIndex int

	Skin *Skin // Nil for static meshes
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// BlendShape is a named single-frame set of per-vertex deltas. The deltas apply
// unscaled at FrameWeight.
type BlendShape struct {
	Name           string
	FrameWeight    float32
	PositionDeltas []math.Vec3
	NormalDeltas   []math.Vec3
}

// BoneWeight binds a vertex to up to four bones.
type BoneWeight struct {
	Index  [4]uint16
	Weight [4]float32
}

// Skin holds skinning data for a deformable mesh.
type Skin struct {
	RootBone    string
	Bones       []string
	BindPoses   []math.Mat4 // World-to-bone matrix per bone
	BoneWeights []BoneWeight
}

// Transform is a node's local transform.
type Transform struct {
	Name     string
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// LocalToWorld returns the transform's TRS matrix.
func (t Transform) LocalToWorld() math.Mat4 {
	return math.TRS(t.Position, t.Rotation, t.Scale)
}

// WorldToLocal returns the inverse of LocalToWorld.
func (t Transform) WorldToLocal() math.Mat4 {
	return t.LocalToWorld().Inverse()
}
