package meshcrypt

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshveil/pkg/math"
)

// testGeometry returns a small grid of vertices with up-facing normals.
func testGeometry(n int) Geometry {
	g := Geometry{
		Positions: make([]math.Vec3, n),
		Normals:   make([]math.Vec3, n),
	}
	for i := 0; i < n; i++ {
		g.Positions[i] = math.Vec3{X: float32(i%7) * 0.3, Y: float32(i%3) - 1, Z: float32(i/7) * 0.2}
		g.Normals[i] = math.Up
	}
	return g
}

func displaced(t *testing.T, g Geometry, code string, mag float32) Geometry {
	t.Helper()
	pos, err := Displace(g.Positions, GenerateOffsets(code, mag, g.VertexCount()))
	require.NoError(t, err)
	nrm := make([]math.Vec3, len(pos))
	for i := range nrm {
		// Stand-in for a recalculated normal field.
		nrm[i] = math.Vec3{X: 0.1, Y: 0.9, Z: -0.1}.Normalize()
	}
	return Geometry{Positions: pos, Normals: nrm}
}

func TestBuildTargetRoundTrip(t *testing.T) {
	orig := testGeometry(64)
	disp := displaced(t, orig, "default", 0.5)

	for _, key := range []float32{0.5, 1, 25, 57.9, 100, -40} {
		tgt, err := BuildTarget(orig, disp, key, TargetName(0))
		require.NoError(t, err)
		require.Equal(t, orig.VertexCount(), tgt.VertexCount())
		require.Len(t, tgt.NormalDeltas, orig.VertexCount())

		pos, nrm, err := tgt.Apply(disp.Positions, disp.Normals, key)
		require.NoError(t, err)
		for i := range pos {
			assert.InDelta(t, 0, pos[i].Distance(orig.Positions[i]), 1e-4, "key %v vertex %d", key, i)
			assert.InDelta(t, 0, nrm[i].Distance(orig.Normals[i]), 1e-4, "key %v vertex %d", key, i)
		}
	}
}

func TestBuildTargetScale(t *testing.T) {
	orig := Geometry{Positions: []math.Vec3{{X: 1}}, Normals: []math.Vec3{math.Up}}
	disp := Geometry{Positions: []math.Vec3{{X: 0.5}}, Normals: []math.Vec3{{X: 1}}}

	tgt, err := BuildTarget(orig, disp, 25, "Decrypt3")
	require.NoError(t, err)
	assert.Equal(t, "Decrypt3", tgt.Name)
	assert.Equal(t, float32(25), tgt.Key)
	// (1 - 0.5) * 100/25
	assert.Equal(t, math.Vec3{X: 2}, tgt.PositionDeltas[0])
	assert.Equal(t, math.Vec3{X: -4, Y: 4}, tgt.NormalDeltas[0])
}

func TestBuildTargetPartialWeight(t *testing.T) {
	orig := testGeometry(8)
	disp := displaced(t, orig, "partial", 1)

	tgt, err := BuildTarget(orig, disp, 50, TargetName(0))
	require.NoError(t, err)

	pos, nrm, err := tgt.Apply(disp.Positions, nil, 25)
	require.NoError(t, err)
	assert.Nil(t, nrm)
	for i := range pos {
		mid := disp.Positions[i].Add(orig.Positions[i].Sub(disp.Positions[i]).Scale(0.5))
		assert.InDelta(t, 0, pos[i].Distance(mid), 1e-4)
	}
}

func TestBuildTargetErrors(t *testing.T) {
	orig := testGeometry(4)
	disp := displaced(t, orig, "err", 0.5)

	tests := []struct {
		name    string
		orig    Geometry
		disp    Geometry
		key     float32
		wantErr error
	}{
		{"zero key", orig, disp, 0, ErrInvalidKey},
		{"nan key", orig, disp, float32(gomath.NaN()), ErrInvalidKey},
		{"inf key", orig, disp, float32(gomath.Inf(1)), ErrInvalidKey},
		{"subnormal key", orig, disp, 1e-39, ErrInvalidKey},
		{"negative subnormal key", orig, disp, -1e-39, ErrInvalidKey},
		{"empty original", Geometry{}, disp, 25, ErrMissingGeometry},
		{"short displaced", orig, testGeometry(3), 25, ErrVertexCountMismatch},
		{"normals missing", Geometry{Positions: orig.Positions}, disp, 25, ErrVertexCountMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt, err := BuildTarget(tt.orig, tt.disp, tt.key, TargetName(0))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tgt)
		})
	}
}

func TestBuildTargets(t *testing.T) {
	orig := testGeometry(100)
	disp := displaced(t, orig, "shared", 0.5)
	keys := []float32{10, 25, 75, 100}

	targets, err := BuildTargets(orig, disp, keys, 2)
	require.NoError(t, err)
	require.Len(t, targets, len(keys))

	for i, tgt := range targets {
		assert.Equal(t, TargetName(2+i), tgt.Name)
		assert.Equal(t, keys[i], tgt.Key)

		pos, _, err := tgt.Apply(disp.Positions, nil, keys[i])
		require.NoError(t, err)
		for v := range pos {
			assert.InDelta(t, 0, pos[v].Distance(orig.Positions[v]), 1e-4)
		}
	}
}

func TestBuildTargetsRejectsZeroKey(t *testing.T) {
	orig := testGeometry(10)
	disp := displaced(t, orig, "shared", 0.5)

	targets, err := BuildTargets(orig, disp, []float32{25, 0, 50}, 0)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Nil(t, targets)
}

func TestApplyLengthMismatch(t *testing.T) {
	orig := testGeometry(4)
	tgt, err := BuildTarget(orig, displaced(t, orig, "x", 1), 25, TargetName(0))
	require.NoError(t, err)

	_, _, err = tgt.Apply(orig.Positions[:2], nil, 25)
	assert.ErrorIs(t, err, ErrVertexCountMismatch)
}
