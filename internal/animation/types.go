// Package animation builds the clips and controller that drive reconstruction
// targets to their key weights.
package animation

// SkinnedMeshRendererType is the component type curves bind blend shapes on.
const SkinnedMeshRendererType = "SkinnedMeshRenderer"

// BlendShapePropertyPrefix prefixes blend shape curve properties.
const BlendShapePropertyPrefix = "blendShape."

// DefaultFrameRate is the sample rate of generated clips.
const DefaultFrameRate float32 = 60

// Keyframe is a single curve sample.
type Keyframe struct {
	Time  float32 `yaml:"time"`
	Value float32 `yaml:"value"`
}

// Curve animates one property on a component at Path.
type Curve struct {
	Path     string     `yaml:"path"`
	Type     string     `yaml:"type"`
	Property string     `yaml:"property"`
	Keys     []Keyframe `yaml:"keys"`
}

// Clip is an animation clip asset.
type Clip struct {
	GUID      string  `yaml:"guid"`
	Name      string  `yaml:"name"`
	FrameRate float32 `yaml:"frame_rate"`
	Curves    []Curve `yaml:"curves"`
}

// ParameterType is the type of a controller parameter.
type ParameterType string

// ParameterFloat is a float parameter.
const ParameterFloat ParameterType = "Float"

// Parameter is a named controller value.
type Parameter struct {
	Name         string        `yaml:"name"`
	Type         ParameterType `yaml:"type"`
	DefaultFloat float32       `yaml:"default_float"`
}

// State plays a motion referenced by clip GUID.
type State struct {
	Name   string `yaml:"name"`
	Motion string `yaml:"motion"`
}

// StateMachine holds the states of a layer.
type StateMachine struct {
	States       []State `yaml:"states"`
	DefaultState string  `yaml:"default_state"`
}

// Layer is one controller layer.
type Layer struct {
	Name          string       `yaml:"name"`
	DefaultWeight float32      `yaml:"default_weight"`
	StateMachine  StateMachine `yaml:"state_machine"`
}

// Controller is an animator controller asset.
type Controller struct {
	GUID       string      `yaml:"guid"`
	Name       string      `yaml:"name"`
	Parameters []Parameter `yaml:"parameters"`
	Layers     []Layer     `yaml:"layers"`
}

// LayerData is what the encryption pass hands over per target.
type LayerData struct {
	ShapeName string
	Key       float32
	Clip      *Clip
	// Standby layers are written with weight 0. They hold alternative
	// targets that restore the mesh on their own.
	Standby bool
}
