// Package encryptor runs the mesh encryption pipeline: displacement passes,
// reconstruction targets, and the clips and controller that play them back.
package encryptor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshveil/internal/animation"
	"github.com/Faultbox/meshveil/internal/geometry"
	"github.com/Faultbox/meshveil/internal/logger"
	"github.com/Faultbox/meshveil/pkg/meshcrypt"
)

// EncryptedSuffix is appended to the name of every encrypted mesh.
const EncryptedSuffix = "_Encrypted"

// ErrVerifyFailed is returned when decryption does not restore the source
// within tolerance.
var ErrVerifyFailed = errors.New("decrypted mesh does not match source")

// Options controls mesh processing around the displacement passes.
type Options struct {
	SmoothNormals bool
	// Root, when set, converts static meshes into single-bone skinned meshes
	// bound to this transform.
	Root *geometry.Transform
}

// Encryptor encrypts meshes with one fixed configuration.
type Encryptor struct {
	cfg  meshcrypt.Config
	opts Options
	log  *zap.Logger
}

// Result is the output of one encryption run.
type Result struct {
	Mesh    *geometry.Mesh
	Targets []*meshcrypt.Target
	Layers  []animation.LayerData
}

// New returns an Encryptor for cfg. The config is normalized: the target count
// is clamped and the key list resized to match. A nil log uses the global
// logger.
func New(cfg meshcrypt.Config, opts Options, log *zap.Logger) *Encryptor {
	if log == nil {
		log = logger.Named("encryptor")
	}
	return &Encryptor{cfg: cfg.Normalized(), opts: opts, log: log}
}

// Config returns the normalized configuration.
func (e *Encryptor) Config() meshcrypt.Config {
	return e.cfg
}

// Encrypt returns an encrypted copy of src with one reconstruction target per
// key. src is never modified, and nothing is built when validation fails.
func (e *Encryptor) Encrypt(src *geometry.Mesh) (*Result, error) {
	if src == nil || src.VertexCount() == 0 {
		return nil, meshcrypt.ErrMissingGeometry
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("source mesh %s: %w", src.Name, err)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	m := src.Clone()
	m.Name = src.Name + EncryptedSuffix
	if e.opts.Root != nil && !m.IsSkinned() {
		if err := geometry.ConvertToSkinned(m, *e.opts.Root); err != nil {
			return nil, err
		}
		e.log.Debug("converted to skinned mesh", zap.String("root", e.opts.Root.Name))
	}

	e.log.Info("encrypting mesh",
		zap.String("mesh", src.Name),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("targets", len(e.cfg.Keys)),
		zap.String("layout", string(e.cfg.Layout)))

	var (
		targets []*meshcrypt.Target
		err     error
	)
	switch e.cfg.Layout {
	case meshcrypt.LayoutShared:
		targets, err = e.encryptShared(m)
	default:
		targets, err = e.encryptChained(m)
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Mesh: m, Targets: targets}
	for i, t := range targets {
		res.Layers = append(res.Layers, animation.LayerData{
			ShapeName: t.Name,
			Key:       t.Key,
			Clip:      animation.NewDecryptionClip(t.Name, t.Key),
			Standby:   e.cfg.Layout == meshcrypt.LayoutShared && i > 0,
		})
	}
	return res, nil
}

// encryptChained displaces m once per key. Target i reverses pass i, so every
// target has to play at its key to restore the source.
func (e *Encryptor) encryptChained(m *geometry.Mesh) ([]*meshcrypt.Target, error) {
	targets := make([]*meshcrypt.Target, 0, len(e.cfg.Keys))
	for i, key := range e.cfg.Keys {
		before := m.Snapshot()
		after, err := e.displace(m)
		if err != nil {
			return nil, err
		}

		t, err := meshcrypt.BuildTarget(before, after, key, m.NextShapeName())
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", i, err)
		}
		if _, err := m.AddBlendShape(t); err != nil {
			return nil, fmt.Errorf("pass %d: %w", i, err)
		}
		targets = append(targets, t)

		e.log.Debug("displacement pass",
			zap.Int("pass", i),
			zap.String("target", t.Name),
			zap.Float32("key", key))
	}
	return targets, nil
}

// encryptShared displaces m once and builds every target from that single
// snapshot. Each target restores the source on its own.
func (e *Encryptor) encryptShared(m *geometry.Mesh) ([]*meshcrypt.Target, error) {
	before := m.Snapshot()
	after, err := e.displace(m)
	if err != nil {
		return nil, err
	}

	targets, err := meshcrypt.BuildTargets(before, after, e.cfg.Keys, m.NextShapeIndex)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if _, err := m.AddBlendShape(t); err != nil {
			return nil, err
		}
	}
	e.log.Debug("shared displacement", zap.Int("targets", len(targets)))
	return targets, nil
}

// displace offsets m's positions, recalculates derived data and returns the
// new geometry.
func (e *Encryptor) displace(m *geometry.Mesh) (meshcrypt.Geometry, error) {
	offsets := meshcrypt.GenerateOffsets(e.cfg.Code, e.cfg.Magnitude, m.VertexCount())
	displaced, err := meshcrypt.Displace(m.Positions, offsets)
	if err != nil {
		return meshcrypt.Geometry{}, err
	}
	if err := m.SetPositions(displaced); err != nil {
		return meshcrypt.Geometry{}, err
	}
	m.Recalculate(geometry.RecalcOptions{SmoothNormals: e.opts.SmoothNormals})
	return m.Snapshot(), nil
}

// Weights returns the blend shape weights that restore the source: every
// active layer at its key.
func (r *Result) Weights() map[string]float32 {
	weights := make(map[string]float32, len(r.Layers))
	for _, l := range r.Layers {
		if !l.Standby {
			weights[l.ShapeName] = l.Key
		}
	}
	return weights
}

// Decrypt returns a copy of m with the blend shapes played at weights.
func Decrypt(m *geometry.Mesh, weights map[string]float32) (*geometry.Mesh, error) {
	return m.Evaluate(weights)
}

// Verify decrypts m and returns the largest position error against src. It
// fails with ErrVerifyFailed when the error exceeds tol.
func Verify(src, m *geometry.Mesh, weights map[string]float32, tol float32) (float32, error) {
	out, err := Decrypt(m, weights)
	if err != nil {
		return 0, err
	}
	worst, err := geometry.MaxPositionError(src.Positions, out.Positions)
	if err != nil {
		return 0, err
	}
	if !(worst <= tol) {
		return worst, fmt.Errorf("%w: max error %g > %g", ErrVerifyFailed, worst, tol)
	}
	return worst, nil
}
