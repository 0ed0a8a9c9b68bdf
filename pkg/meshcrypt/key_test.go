package meshcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		key  float32
		want float32
	}{
		{0.5, 0.5},
		{0.999, 0.999},
		{1.0, 0.01},
		{25, 0.25},
		{57.9, 0.57},
		{99.99, 0.99},
		{100, 1.0},
		{250, 2.5},
		{-3, -3},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.key); got != tt.want {
			t.Errorf("NormalizeKey(%v) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParameters(t *testing.T) {
	targets := []*Target{
		{Name: TargetName(0), Key: 57.9},
		{Name: TargetName(1), Key: 0.25},
	}
	assert.Equal(t, []Parameter{
		{TargetName: "Decrypt0", Value: 0.57},
		{TargetName: "Decrypt1", Value: 0.25},
	}, Parameters(targets))

	// Stored keys are untouched by normalization.
	assert.Equal(t, float32(57.9), targets[0].Key)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Decrypt12", TargetName(12))
	assert.Equal(t, "decrypt3", ParameterName(3))
}
