package encryptor

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshveil/internal/animation"
	"github.com/Faultbox/meshveil/internal/assets"
	"github.com/Faultbox/meshveil/internal/logger"
)

// WriteAnimations stores one clip per layer and the combined controller in
// folder, and returns the controller path.
func (e *Encryptor) WriteAnimations(db *assets.Database, folder string, layers []animation.LayerData) (string, error) {
	if err := db.EnsureFolder(folder); err != nil {
		return "", err
	}

	for _, ld := range layers {
		if ld.Clip == nil {
			return "", fmt.Errorf("layer %s: %w", ld.ShapeName, animation.ErrMissingClip)
		}
		path := db.ClipPath(folder, ld.ShapeName)
		if err := db.CreateAsset(path, ld.Clip.GUID, ld.Clip); err != nil {
			return "", err
		}
		e.log.Debug("wrote clip", zap.String("path", path), zap.String("shape", ld.ShapeName))
	}

	ac, err := animation.BuildController(animation.DefaultControllerName, layers)
	if err != nil {
		return "", err
	}
	path := assets.ControllerPath(folder)
	if err := db.CreateAsset(path, ac.GUID, ac); err != nil {
		return "", err
	}
	e.log.Info("wrote controller",
		zap.String("path", filepath.Join(db.Root(), path)),
		zap.Int("layers", len(ac.Layers)))
	return path, nil
}

// LoadController reads a controller and every clip stored next to it. Clips
// are keyed by the GUID in their meta file.
func LoadController(db *assets.Database, path string) (*animation.Controller, map[string]*animation.Clip, error) {
	var ac animation.Controller
	if err := db.Load(path, &ac); err != nil {
		return nil, nil, err
	}

	paths, err := db.Find(filepath.Dir(path), assets.ClipExt)
	if err != nil {
		return nil, nil, err
	}
	clips := make(map[string]*animation.Clip, len(paths))
	for _, p := range paths {
		guid, err := db.GUID(p)
		if err != nil {
			return nil, nil, err
		}
		clip := &animation.Clip{}
		if err := db.Load(p, clip); err != nil {
			return nil, nil, err
		}
		clips[guid] = clip
	}

	hits, misses := db.Cache().Stats()
	logger.Debug("loaded controller",
		zap.String("path", path),
		zap.Int("clips", len(clips)),
		zap.Int("cache_hits", hits),
		zap.Int("cache_misses", misses))
	return &ac, clips, nil
}

// ControllerWeights loads the controller at path and evaluates the blend
// shape weights it sets.
func ControllerWeights(db *assets.Database, path string) (map[string]float32, error) {
	ac, clips, err := LoadController(db, path)
	if err != nil {
		return nil, err
	}
	return ac.Evaluate(clips)
}
