package geometry

import (
	gomath "math"

	"github.com/Faultbox/meshveil/pkg/math"
)

// RecalcOptions controls Recalculate.
type RecalcOptions struct {
	// SmoothNormals averages normals of vertices that share a position.
	SmoothNormals bool
}

// Recalculate rebuilds bounds, normals and tangents from the current positions.
func (m *Mesh) Recalculate(opts RecalcOptions) {
	m.RecalculateBounds()
	m.RecalculateNormals()
	if opts.SmoothNormals {
		m.SmoothNormals()
	}
	m.RecalculateTangents()
}

// RecalculateBounds recomputes the bounding box from positions.
func (m *Mesh) RecalculateBounds() {
	if len(m.Positions) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	m.Bounds = b
}

// RecalculateNormals rebuilds vertex normals from the triangle list. Face normals
// are area-weighted and accumulated per vertex index, so split vertices keep
// separate normals. Vertices not referenced by any triangle get +Y.
func (m *Mesh) RecalculateNormals() {
	n := len(m.Positions)
	acc := make([]math.Vec3, n)

	m.forEachTriangle(func(i0, i1, i2 uint32) {
		p0 := m.Positions[i0]
		e1 := m.Positions[i1].Sub(p0)
		e2 := m.Positions[i2].Sub(p0)
		// Cross product length is twice the triangle area.
		fn := e1.Cross(e2)
		acc[i0] = acc[i0].Add(fn)
		acc[i1] = acc[i1].Add(fn)
		acc[i2] = acc[i2].Add(fn)
	})

	normals := make([]math.Vec3, n)
	for i, a := range acc {
		if a.Length() < 1e-12 {
			normals[i] = math.Up
			continue
		}
		normals[i] = a.Normalize()
	}
	m.Normals = normals
}

// SmoothNormals averages normals at shared vertex positions.
// This hides seams where vertices are split for UVs.
func (m *Mesh) SmoothNormals() {
	const epsilon float32 = 0.001

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]int32][]int)
	for i, p := range m.Positions {
		key := [3]int32{
			int32(gomath.Round(float64(p.X / epsilon))),
			int32(gomath.Round(float64(p.Y / epsilon))),
			int32(gomath.Round(float64(p.Z / epsilon))),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}

		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(m.Normals[idx])
		}

		avg := sum.Normalize()
		if avg == (math.Vec3{}) {
			avg = math.Up
		}
		for _, idx := range idxs {
			m.Normals[idx] = avg
		}
	}
}

// RecalculateTangents rebuilds tangents from positions, normals and UVs.
// Without UVs every tangent is +X with positive handedness.
func (m *Mesh) RecalculateTangents() {
	n := len(m.Positions)
	tangents := make([]math.Vec4, n)
	if len(m.UVs) != n || len(m.Normals) != n {
		for i := range tangents {
			tangents[i] = math.Vec4{1, 0, 0, 1}
		}
		m.Tangents = tangents
		return
	}

	tan1 := make([]math.Vec3, n)
	tan2 := make([]math.Vec3, n)
	m.forEachTriangle(func(i0, i1, i2 uint32) {
		e1 := m.Positions[i1].Sub(m.Positions[i0])
		e2 := m.Positions[i2].Sub(m.Positions[i0])
		d1 := m.UVs[i1].Sub(m.UVs[i0])
		d2 := m.UVs[i2].Sub(m.UVs[i0])

		det := d1.X*d2.Y - d2.X*d1.Y
		if det > -1e-12 && det < 1e-12 {
			return
		}
		r := 1 / det
		sdir := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
		tdir := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)
		for _, i := range [3]uint32{i0, i1, i2} {
			tan1[i] = tan1[i].Add(sdir)
			tan2[i] = tan2[i].Add(tdir)
		}
	})

	for i := range tangents {
		nrm := m.Normals[i]
		// Gram-Schmidt orthogonalize
		t := tan1[i].Sub(nrm.Scale(nrm.Dot(tan1[i]))).Normalize()
		if t == (math.Vec3{}) {
			tangents[i] = math.Vec4{1, 0, 0, 1}
			continue
		}
		w := float32(1)
		if nrm.Cross(t).Dot(tan2[i]) < 0 {
			w = -1
		}
		tangents[i] = math.Vec4{t.X, t.Y, t.Z, w}
	}
	m.Tangents = tangents
}

// forEachTriangle calls fn for every triangle whose indices are in range.
func (m *Mesh) forEachTriangle(fn func(i0, i1, i2 uint32)) {
	n := uint32(len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		fn(i0, i1, i2)
	}
}
