package animation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// Controller errors.
var (
	ErrMissingClip  = errors.New("layer has no clip")
	ErrUnknownState = errors.New("default state not found")
	ErrClipNotFound = errors.New("clip not found")
)

// DefaultControllerName names the combined decryption controller.
const DefaultControllerName = "CombinedDecryptionAnimator"

// BuildController wires one parameter and one layer per target. The parameter
// carries the normalized key; the layer's only state plays the clip that drives
// the blend shape to the raw key. The two values are set independently.
func BuildController(name string, layers []LayerData) (*Controller, error) {
	ac := &Controller{
		GUID: uuid.NewString(),
		Name: name,
	}

	for i, ld := range layers {
		if ld.Clip == nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, ld.ShapeName, ErrMissingClip)
		}

		ac.Parameters = append(ac.Parameters, Parameter{
			Name:         meshcrypt.ParameterName(i),
			Type:         ParameterFloat,
			DefaultFloat: meshcrypt.NormalizeKey(ld.Key),
		})

		weight := float32(1)
		if ld.Standby {
			weight = 0
		}
		stateName := "DecryptState_" + strconv.Itoa(i)
		ac.Layers = append(ac.Layers, Layer{
			Name:          "Layer_" + strconv.Itoa(i),
			DefaultWeight: weight,
			StateMachine: StateMachine{
				States:       []State{{Name: stateName, Motion: ld.Clip.GUID}},
				DefaultState: stateName,
			},
		})
	}
	return ac, nil
}

// Parameter returns the named parameter.
func (ac *Controller) Parameter(name string) (Parameter, bool) {
	for _, p := range ac.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Evaluate samples the default state of every active layer at t=0 and returns
// the resulting blend shape weights. clips maps GUIDs to loaded clips.
func (ac *Controller) Evaluate(clips map[string]*Clip) (map[string]float32, error) {
	weights := make(map[string]float32)
	for _, layer := range ac.Layers {
		if layer.DefaultWeight == 0 {
			continue
		}
		state, ok := layer.StateMachine.defaultState()
		if !ok {
			return nil, fmt.Errorf("layer %s: %w: %q", layer.Name, ErrUnknownState, layer.StateMachine.DefaultState)
		}
		clip, ok := clips[state.Motion]
		if !ok {
			return nil, fmt.Errorf("layer %s state %s: %w: %s", layer.Name, state.Name, ErrClipNotFound, state.Motion)
		}
		for shape, w := range clip.SampleBlendShapes(0) {
			weights[shape] = w
		}
	}
	return weights, nil
}

func (sm StateMachine) defaultState() (State, bool) {
	for _, s := range sm.States {
		if s.Name == sm.DefaultState {
			return s, true
		}
	}
	return State{}, false
}
