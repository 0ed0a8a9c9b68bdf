package config

// Flags carries command-line overrides. Nil or empty fields leave the loaded
// value untouched.
type Flags struct {
	Debug     bool
	Code      *string
	Magnitude *float32
	Targets   *int
	Keys      []float32
	Layout    string
	OutputDir string
	AssetsDir string
	Smooth    *bool
	Skin      *bool
}

// apply applies flag overrides to the config.
func (f Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Code != nil {
		cfg.Encryption.Code = *f.Code
	}
	if f.Magnitude != nil {
		cfg.Encryption.Magnitude = *f.Magnitude
	}
	if len(f.Keys) > 0 {
		cfg.Encryption.Keys = f.Keys
		cfg.Encryption.TargetCount = len(f.Keys)
	}
	if f.Targets != nil {
		cfg.Encryption.TargetCount = *f.Targets
	}
	if f.Layout != "" {
		cfg.Encryption.Layout = f.Layout
	}
	if f.OutputDir != "" {
		cfg.Output.Dir = f.OutputDir
	}
	if f.AssetsDir != "" {
		cfg.Output.AssetsDir = f.AssetsDir
	}
	if f.Smooth != nil {
		cfg.Mesh.SmoothNormals = *f.Smooth
	}
	if f.Skin != nil {
		cfg.Mesh.ConvertToSkinned = *f.Skin
	}
}
