// Package config handles meshveil configuration loading and management.
package config

import (
	"github.com/Faultbox/meshveil/internal/geometry"
	"github.com/Faultbox/meshveil/pkg/math"
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// Config holds all tool settings.
type Config struct {
	Encryption EncryptionConfig `yaml:"encryption"`
	Mesh       MeshConfig       `yaml:"mesh"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// EncryptionConfig holds the displacement and key settings.
type EncryptionConfig struct {
	Code        string    `yaml:"code"`
	Magnitude   float32   `yaml:"magnitude"`
	TargetCount int       `yaml:"target_count"` // Clamped to [1, 32]
	Keys        []float32 `yaml:"keys"`         // One per target, conventionally in (0, 100]
	Layout      string    `yaml:"layout"`       // "chained" or "shared"
}

// MeshConfig holds geometry processing settings.
type MeshConfig struct {
	SmoothNormals    bool            `yaml:"smooth_normals"`     // Weld normals across UV seams after recalculation
	ConvertToSkinned bool            `yaml:"convert_to_skinned"` // Add single-bone skinning when missing
	Root             TransformConfig `yaml:"root"`
}

// TransformConfig describes the root bone transform used for the bind pose.
type TransformConfig struct {
	Position [3]float32 `yaml:"position"`
	Rotation [4]float32 `yaml:"rotation"` // Quaternion X, Y, Z, W
	Scale    [3]float32 `yaml:"scale"`
}

// OutputConfig holds output locations.
type OutputConfig struct {
	Dir       string `yaml:"dir"`        // Encrypted mesh output directory
	AssetsDir string `yaml:"assets_dir"` // Animation asset root
	Folder    string `yaml:"folder"`     // Asset folder below AssetsDir
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Encryption: EncryptionConfig{
			Code:        "default",
			Magnitude:   0.5,
			TargetCount: 1,
			Keys:        []float32{meshcrypt.DefaultKey},
			Layout:      string(meshcrypt.LayoutChained),
		},
		Mesh: MeshConfig{
			SmoothNormals:    false,
			ConvertToSkinned: true,
			Root: TransformConfig{
				Rotation: [4]float32{0, 0, 0, 1},
				Scale:    [3]float32{1, 1, 1},
			},
		},
		Output: OutputConfig{
			Dir:       ".",
			AssetsDir: "Assets",
			Folder:    "DecryptionAnimations",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// MeshCrypt converts the encryption section into a normalized meshcrypt.Config.
func (c *Config) MeshCrypt() meshcrypt.Config {
	return meshcrypt.Config{
		Code:        c.Encryption.Code,
		Magnitude:   c.Encryption.Magnitude,
		TargetCount: c.Encryption.TargetCount,
		Keys:        c.Encryption.Keys,
		Layout:      meshcrypt.Layout(c.Encryption.Layout),
	}.Normalized()
}

// Transform returns the root transform for a bone called name. A zero rotation
// is treated as identity.
func (t TransformConfig) Transform(name string) geometry.Transform {
	rot := math.Quat{X: t.Rotation[0], Y: t.Rotation[1], Z: t.Rotation[2], W: t.Rotation[3]}
	return geometry.Transform{
		Name:     name,
		Position: math.Vec3{X: t.Position[0], Y: t.Position[1], Z: t.Position[2]},
		Rotation: rot.Normalize(),
		Scale:    math.Vec3{X: t.Scale[0], Y: t.Scale[1], Z: t.Scale[2]},
	}
}
