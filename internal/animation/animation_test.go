package animation

import (
	"errors"
	"testing"
)

func TestNewDecryptionClip(t *testing.T) {
	clip := NewDecryptionClip("Decrypt0", 57.9)

	if clip.GUID == "" {
		t.Error("clip should have a GUID")
	}
	if clip.FrameRate != 60 {
		t.Errorf("expected frame rate 60, got %v", clip.FrameRate)
	}
	if len(clip.Curves) != 1 {
		t.Fatalf("expected 1 curve, got %d", len(clip.Curves))
	}

	c := clip.Curves[0]
	if c.Type != "SkinnedMeshRenderer" || c.Property != "blendShape.Decrypt0" || c.Path != "" {
		t.Errorf("unexpected curve binding: %+v", c)
	}
	if len(c.Keys) != 1 || c.Keys[0] != (Keyframe{Time: 0, Value: 57.9}) {
		t.Errorf("unexpected keys: %+v", c.Keys)
	}
}

func TestCurveSample(t *testing.T) {
	c := Curve{Keys: []Keyframe{{Time: 0, Value: 10}, {Time: 1, Value: 20}, {Time: 3, Value: 0}}}

	tests := []struct {
		t    float32
		want float32
	}{
		{-1, 10},
		{0, 10},
		{0.5, 15},
		{1, 20},
		{2, 10},
		{5, 0},
	}
	for _, tt := range tests {
		if got := c.Sample(tt.t); got != tt.want {
			t.Errorf("Sample(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}

	if got := (Curve{}).Sample(1); got != 0 {
		t.Errorf("empty curve Sample = %v, want 0", got)
	}
}

func TestCurveBlendShape(t *testing.T) {
	if shape, ok := (Curve{Type: SkinnedMeshRendererType, Property: "blendShape.Decrypt4"}).BlendShape(); !ok || shape != "Decrypt4" {
		t.Errorf("got %q %v", shape, ok)
	}
	if _, ok := (Curve{Type: "Transform", Property: "blendShape.Decrypt4"}).BlendShape(); ok {
		t.Error("non-renderer curve should not drive a blend shape")
	}
	if _, ok := (Curve{Type: SkinnedMeshRendererType, Property: "material.color"}).BlendShape(); ok {
		t.Error("non-blendshape property should not drive a blend shape")
	}
}

func TestBuildController(t *testing.T) {
	layers := []LayerData{
		{ShapeName: "Decrypt0", Key: 57.9, Clip: NewDecryptionClip("Decrypt0", 57.9)},
		{ShapeName: "Decrypt1", Key: 0.5, Clip: NewDecryptionClip("Decrypt1", 0.5)},
	}

	ac, err := BuildController(DefaultControllerName, layers)
	if err != nil {
		t.Fatalf("BuildController: %v", err)
	}

	if len(ac.Parameters) != 2 || len(ac.Layers) != 2 {
		t.Fatalf("expected 2 parameters and layers, got %d/%d", len(ac.Parameters), len(ac.Layers))
	}

	p, ok := ac.Parameter("decrypt0")
	if !ok {
		t.Fatal("parameter decrypt0 missing")
	}
	if p.Type != ParameterFloat || p.DefaultFloat != 0.57 {
		t.Errorf("decrypt0 = %+v, want Float 0.57", p)
	}
	if p, _ := ac.Parameter("decrypt1"); p.DefaultFloat != 0.5 {
		t.Errorf("decrypt1 default = %v, want 0.5", p.DefaultFloat)
	}

	l := ac.Layers[1]
	if l.Name != "Layer_1" || l.DefaultWeight != 1 {
		t.Errorf("unexpected layer: %+v", l)
	}
	if l.StateMachine.DefaultState != "DecryptState_1" || l.StateMachine.States[0].Motion != layers[1].Clip.GUID {
		t.Errorf("unexpected state machine: %+v", l.StateMachine)
	}
}

func TestBuildControllerMissingClip(t *testing.T) {
	_, err := BuildController("c", []LayerData{{ShapeName: "Decrypt0", Key: 25}})
	if !errors.Is(err, ErrMissingClip) {
		t.Errorf("expected ErrMissingClip, got %v", err)
	}
}

func TestControllerEvaluate(t *testing.T) {
	c0 := NewDecryptionClip("Decrypt0", 57.9)
	c1 := NewDecryptionClip("Decrypt1", 0.5)
	ac, err := BuildController("c", []LayerData{
		{ShapeName: "Decrypt0", Key: 57.9, Clip: c0},
		{ShapeName: "Decrypt1", Key: 0.5, Clip: c1},
	})
	if err != nil {
		t.Fatal(err)
	}

	// The raw key drives the weight, not the normalized parameter.
	weights, err := ac.Evaluate(map[string]*Clip{c0.GUID: c0, c1.GUID: c1})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if weights["Decrypt0"] != 57.9 || weights["Decrypt1"] != 0.5 {
		t.Errorf("unexpected weights: %v", weights)
	}

	if _, err := ac.Evaluate(map[string]*Clip{c0.GUID: c0}); !errors.Is(err, ErrClipNotFound) {
		t.Errorf("expected ErrClipNotFound, got %v", err)
	}

	ac.Layers[0].StateMachine.DefaultState = "missing"
	if _, err := ac.Evaluate(map[string]*Clip{c0.GUID: c0, c1.GUID: c1}); !errors.Is(err, ErrUnknownState) {
		t.Errorf("expected ErrUnknownState, got %v", err)
	}

	ac.Layers[0].DefaultWeight = 0
	weights, err = ac.Evaluate(map[string]*Clip{c1.GUID: c1})
	if err != nil {
		t.Fatalf("Evaluate with disabled layer: %v", err)
	}
	if _, ok := weights["Decrypt0"]; ok {
		t.Error("disabled layer should not contribute")
	}
}

func TestBuildControllerStandbyLayer(t *testing.T) {
	c0 := NewDecryptionClip("Decrypt0", 25)
	c1 := NewDecryptionClip("Decrypt1", 40)
	ac, err := BuildController("c", []LayerData{
		{ShapeName: "Decrypt0", Key: 25, Clip: c0},
		{ShapeName: "Decrypt1", Key: 40, Clip: c1, Standby: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ac.Layers[1].DefaultWeight != 0 {
		t.Errorf("standby layer weight = %v, want 0", ac.Layers[1].DefaultWeight)
	}
	if p, ok := ac.Parameter("decrypt1"); !ok || p.DefaultFloat != 0.4 {
		t.Errorf("standby parameter = %+v, %v", p, ok)
	}

	weights, err := ac.Evaluate(map[string]*Clip{c0.GUID: c0, c1.GUID: c1})
	if err != nil {
		t.Fatal(err)
	}
	if len(weights) != 1 || weights["Decrypt0"] != 25 {
		t.Errorf("weights = %v", weights)
	}
}
