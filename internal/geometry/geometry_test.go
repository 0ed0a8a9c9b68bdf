package geometry

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/meshveil/pkg/math"
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// quadMesh returns a unit quad in the XZ plane facing +Y, with UVs matching XZ.
func quadMesh() *Mesh {
	m := &Mesh{
		Name: "quad",
		Positions: []math.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: 1},
		},
		UVs: []math.Vec2{
			{X: 0, Y: 0},
			{X: 1, Y: 0},
			{X: 1, Y: 1},
			{X: 0, Y: 1},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
	m.Recalculate(RecalcOptions{})
	return m
}

func TestRecalculateNormals(t *testing.T) {
	m := quadMesh()
	for i, n := range m.Normals {
		if n.Distance(math.Up) > 1e-6 {
			t.Errorf("normal %d = %v, want +Y", i, n)
		}
	}
}

func TestRecalculateNormalsUnreferenced(t *testing.T) {
	m := quadMesh()
	m.Positions = append(m.Positions, math.Vec3{X: 5, Y: 5, Z: 5})
	m.Indices = []uint32{0, 2, 1}
	m.RecalculateNormals()

	if len(m.Normals) != 5 {
		t.Fatalf("expected 5 normals, got %d", len(m.Normals))
	}
	if m.Normals[3] != math.Up || m.Normals[4] != math.Up {
		t.Errorf("unreferenced vertices should get +Y, got %v %v", m.Normals[3], m.Normals[4])
	}
}

func TestRecalculateNormalsAreaWeighted(t *testing.T) {
	// Shared vertex 0 between a large +Y triangle and a small +X triangle.
	m := &Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 0, Y: 0, Z: 4},
			{X: 4, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
		Indices: []uint32{0, 1, 2, 0, 3, 4},
	}
	m.RecalculateNormals()

	n := m.Normals[0]
	if n.Y <= n.X {
		t.Errorf("larger triangle should dominate shared normal, got %v", n)
	}
}

func TestRecalculateBounds(t *testing.T) {
	m := quadMesh()
	m.Positions[1].Y = -2
	m.RecalculateBounds()

	want := Bounds{Min: math.Vec3{X: 0, Y: -2, Z: 0}, Max: math.Vec3{X: 1, Y: 0, Z: 1}}
	if m.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", m.Bounds, want)
	}
	if c := m.Bounds.Center(); c != (math.Vec3{X: 0.5, Y: -1, Z: 0.5}) {
		t.Errorf("center = %v", c)
	}
}

func TestRecalculateTangents(t *testing.T) {
	m := quadMesh()
	for i, tan := range m.Tangents {
		if tan != (math.Vec4{1, 0, 0, -1}) {
			t.Errorf("tangent %d = %v, want (1, 0, 0, -1)", i, tan)
		}
	}

	m.UVs = nil
	m.RecalculateTangents()
	for i, tan := range m.Tangents {
		if tan != (math.Vec4{1, 0, 0, 1}) {
			t.Errorf("tangent %d without UVs = %v, want (1, 0, 0, 1)", i, tan)
		}
	}
}

func TestSmoothNormals(t *testing.T) {
	// Two triangles meeting at a ridge along Z, with the ridge vertices split.
	m := &Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 1}, {X: -1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 1},
		},
		Indices: []uint32{0, 2, 1, 3, 5, 4},
	}
	m.Recalculate(RecalcOptions{SmoothNormals: true})

	if m.Normals[0] != m.Normals[3] {
		t.Errorf("split ridge normals differ: %v vs %v", m.Normals[0], m.Normals[3])
	}
	if m.Normals[0].Distance(math.Up) > 1e-5 {
		t.Errorf("ridge normal = %v, want +Y", m.Normals[0])
	}
	if m.Normals[2] == m.Normals[4] {
		t.Error("unshared vertices should keep their face normals")
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := quadMesh()
	if err := ConvertToSkinned(m, Transform{Name: "root", Rotation: math.QuatIdentity(), Scale: math.Vec3{X: 1, Y: 1, Z: 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddBlendShape(zeroTarget(m, "")); err != nil {
		t.Fatal(err)
	}

	c := m.Clone()
	c.Positions[0].X = 99
	c.BlendShapes[0].PositionDeltas[0].X = 99
	c.Skin.BoneWeights[0].Weight[0] = 0

	if m.Positions[0].X == 99 || m.BlendShapes[0].PositionDeltas[0].X == 99 || m.Skin.BoneWeights[0].Weight[0] == 0 {
		t.Error("clone shares buffers with the source")
	}
}

func TestSetPositions(t *testing.T) {
	m := quadMesh()
	if err := m.SetPositions(make([]math.Vec3, 3)); !errors.Is(err, ErrBufferLength) {
		t.Errorf("expected ErrBufferLength, got %v", err)
	}
	if err := m.SetPositions(make([]math.Vec3, 4)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Mesh)
		wantErr error
	}{
		{"valid", func(*Mesh) {}, nil},
		{"empty", func(m *Mesh) { m.Positions = nil }, ErrEmptyMesh},
		{"short normals", func(m *Mesh) { m.Normals = m.Normals[:2] }, ErrBufferLength},
		{"bad index", func(m *Mesh) { m.Indices[4] = 9 }, ErrIndexOutOfRange},
		{"partial triangle", func(m *Mesh) { m.Indices = m.Indices[:4] }, ErrBufferLength},
		{"nan position", func(m *Mesh) { m.Positions[3].X = float32(gomath.NaN()) }, ErrNonFinite},
		{"inf normal", func(m *Mesh) { m.Normals[1].Y = float32(gomath.Inf(-1)) }, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := quadMesh()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConvertToSkinned(t *testing.T) {
	m := quadMesh()
	root := Transform{
		Name:     "root",
		Position: math.Vec3{X: 2, Y: 0, Z: -1},
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}

	if err := ConvertToSkinned(m, root); err != nil {
		t.Fatalf("ConvertToSkinned: %v", err)
	}
	if !m.IsSkinned() {
		t.Fatal("mesh should be skinned")
	}
	if len(m.Skin.BoneWeights) != m.VertexCount() {
		t.Errorf("expected %d bone weights, got %d", m.VertexCount(), len(m.Skin.BoneWeights))
	}
	for i, bw := range m.Skin.BoneWeights {
		if bw.Index[0] != 0 || bw.Weight[0] != 1 {
			t.Errorf("vertex %d bone weight = %+v", i, bw)
		}
	}
	if m.Skin.RootBone != "root" || len(m.Skin.Bones) != 1 {
		t.Errorf("unexpected bones: %+v", m.Skin)
	}

	p := m.Skin.BindPoses[0].TransformPoint(math.Vec3{X: 2, Y: 0, Z: -1})
	if p.Length() > 1e-6 {
		t.Errorf("bind pose should map root position to origin, got %v", p)
	}

	if err := ConvertToSkinned(m, root); !errors.Is(err, ErrAlreadySkinned) {
		t.Errorf("expected ErrAlreadySkinned, got %v", err)
	}
	if err := ConvertToSkinned(&Mesh{}, root); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("expected ErrEmptyMesh, got %v", err)
	}
}

func zeroTarget(m *Mesh, name string) *meshcrypt.Target {
	return &meshcrypt.Target{
		Name:           name,
		Key:            25,
		PositionDeltas: make([]math.Vec3, m.VertexCount()),
		NormalDeltas:   make([]math.Vec3, m.VertexCount()),
	}
}
