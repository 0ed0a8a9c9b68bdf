package geometry

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/meshveil/pkg/math"
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

func TestAddBlendShapeNaming(t *testing.T) {
	m := quadMesh()

	for want := 0; want < 3; want++ {
		name, err := m.AddBlendShape(zeroTarget(m, ""))
		if err != nil {
			t.Fatalf("AddBlendShape: %v", err)
		}
		if name != meshcrypt.TargetName(want) {
			t.Errorf("got name %s, want %s", name, meshcrypt.TargetName(want))
		}
	}

	if err := m.RemoveBlendShape("Decrypt1"); err != nil {
		t.Fatalf("RemoveBlendShape: %v", err)
	}

	// Removed indices are never reused.
	name, err := m.AddBlendShape(zeroTarget(m, ""))
	if err != nil {
		t.Fatal(err)
	}
	if name != "Decrypt3" {
		t.Errorf("expected Decrypt3 after removal, got %s", name)
	}

	got := m.ShapeNames()
	want := []string{"Decrypt0", "Decrypt2", "Decrypt3"}
	if len(got) != len(want) {
		t.Fatalf("shape names = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("shape %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestAddBlendShapeFailureLeavesListUnchanged(t *testing.T) {
	m := quadMesh()
	if _, err := m.AddBlendShape(zeroTarget(m, "Decrypt0")); err != nil {
		t.Fatal(err)
	}

	if _, err := m.AddBlendShape(zeroTarget(m, "Decrypt0")); !errors.Is(err, ErrDuplicateShape) {
		t.Errorf("expected ErrDuplicateShape, got %v", err)
	}

	short := zeroTarget(m, "")
	short.PositionDeltas = short.PositionDeltas[:1]
	if _, err := m.AddBlendShape(short); !errors.Is(err, ErrBufferLength) {
		t.Errorf("expected ErrBufferLength, got %v", err)
	}

	if len(m.BlendShapes) != 1 || m.NextShapeIndex != 1 {
		t.Errorf("failed adds changed the mesh: %d shapes, next index %d", len(m.BlendShapes), m.NextShapeIndex)
	}
}

func TestAddBlendShapeDropsKey(t *testing.T) {
	m := quadMesh()
	tgt := zeroTarget(m, "")
	tgt.PositionDeltas[0] = math.Vec3{X: 1}

	if _, err := m.AddBlendShape(tgt); err != nil {
		t.Fatal(err)
	}
	bs, ok := m.BlendShape("Decrypt0")
	if !ok {
		t.Fatal("blend shape not found")
	}
	if bs.FrameWeight != meshcrypt.FullWeight {
		t.Errorf("frame weight = %v, want %v", bs.FrameWeight, meshcrypt.FullWeight)
	}

	tgt.PositionDeltas[0] = math.Vec3{X: 7}
	if bs.PositionDeltas[0].X != 1 {
		t.Error("blend shape must copy deltas")
	}
}

func TestEvaluate(t *testing.T) {
	m := quadMesh()
	tgt := zeroTarget(m, "")
	for i := range tgt.PositionDeltas {
		tgt.PositionDeltas[i] = math.Vec3{Y: 4}
	}
	if _, err := m.AddBlendShape(tgt); err != nil {
		t.Fatal(err)
	}

	out, err := m.Evaluate(map[string]float32{"Decrypt0": 25})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for i, p := range out.Positions {
		if p.Y != 1 {
			t.Errorf("vertex %d Y = %v, want 1", i, p.Y)
		}
	}
	if out.Bounds.Max.Y != 1 {
		t.Errorf("bounds not refreshed: %+v", out.Bounds)
	}
	if m.Positions[0].Y != 0 {
		t.Error("Evaluate must not modify the source mesh")
	}

	if _, err := m.Evaluate(map[string]float32{"Decrypt9": 25}); !errors.Is(err, ErrShapeNotFound) {
		t.Errorf("expected ErrShapeNotFound, got %v", err)
	}
}

func TestMaxPositionError(t *testing.T) {
	a := []math.Vec3{{X: 0}, {X: 1}}
	b := []math.Vec3{{X: 0}, {X: 4}}

	got, err := MaxPositionError(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("MaxPositionError = %v, want 3", got)
	}
	if _, err := MaxPositionError(a, b[:1]); !errors.Is(err, ErrBufferLength) {
		t.Errorf("expected ErrBufferLength, got %v", err)
	}

	b[0].Y = float32(gomath.NaN())
	got, err = MaxPositionError(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !gomath.IsNaN(float64(got)) {
		t.Errorf("MaxPositionError with NaN vertex = %v, want NaN", got)
	}
}
