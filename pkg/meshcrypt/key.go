package meshcrypt

import (
	gomath "math"
	"strconv"
)

// ParameterPrefix prefixes every exposed control parameter name.
const ParameterPrefix = "decrypt"

// Parameter is the control value exposed next to a target.
type Parameter struct {
	TargetName string
	Value      float32
}

// NormalizeKey maps a key to its control-parameter value. Keys of 1 or more are
// treated as whole percentages: the fraction is truncated and the result divided
// by 100. Smaller keys are passed through unchanged.
func NormalizeKey(key float32) float32 {
	if key >= 1 {
		return float32(gomath.Floor(float64(key))) / 100
	}
	return key
}

// ParameterName returns the control parameter name for the layer at index.
func ParameterName(index int) string {
	return ParameterPrefix + strconv.Itoa(index)
}

// Parameters derives one parameter per target from its key.
func Parameters(targets []*Target) []Parameter {
	params := make([]Parameter, len(targets))
	for i, t := range targets {
		params[i] = Parameter{TargetName: t.Name, Value: NormalizeKey(t.Key)}
	}
	return params
}
