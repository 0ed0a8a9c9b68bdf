package animation

import (
	"strings"

	"github.com/google/uuid"
)

// NewDecryptionClip returns a clip that holds the named blend shape at weight.
func NewDecryptionClip(shapeName string, weight float32) *Clip {
	return &Clip{
		GUID:      uuid.NewString(),
		Name:      "MeshDecrypt_" + shapeName,
		FrameRate: DefaultFrameRate,
		Curves: []Curve{{
			Path:     "",
			Type:     SkinnedMeshRendererType,
			Property: BlendShapePropertyPrefix + shapeName,
			Keys:     []Keyframe{{Time: 0, Value: weight}},
		}},
	}
}

// Sample returns the curve value at time t, holding the end values outside the
// key range and interpolating linearly between keys.
func (c Curve) Sample(t float32) float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	if t <= c.Keys[0].Time {
		return c.Keys[0].Value
	}
	last := c.Keys[len(c.Keys)-1]
	if t >= last.Time {
		return last.Value
	}
	for i := 1; i < len(c.Keys); i++ {
		k0, k1 := c.Keys[i-1], c.Keys[i]
		if t > k1.Time {
			continue
		}
		if k1.Time == k0.Time {
			return k1.Value
		}
		f := (t - k0.Time) / (k1.Time - k0.Time)
		return k0.Value + (k1.Value-k0.Value)*f
	}
	return last.Value
}

// BlendShape returns the blend shape a curve drives, if any.
func (c Curve) BlendShape() (string, bool) {
	if c.Type != SkinnedMeshRendererType {
		return "", false
	}
	return strings.CutPrefix(c.Property, BlendShapePropertyPrefix)
}

// SampleBlendShapes returns the blend shape weights the clip sets at time t.
func (c *Clip) SampleBlendShapes(t float32) map[string]float32 {
	weights := make(map[string]float32)
	for _, curve := range c.Curves {
		if shape, ok := curve.BlendShape(); ok {
			weights[shape] = curve.Sample(t)
		}
	}
	return weights
}
