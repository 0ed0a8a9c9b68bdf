// Package assets stores generated animation assets as YAML files with GUID
// sidecars beneath a root directory.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// File name conventions.
const (
	MetaExt        = ".meta"
	ClipExt        = ".anim"
	ControllerExt  = ".controller"
	ControllerFile = "CombinedDecryptionAnimator" + ControllerExt
)

// ErrAssetNotFound is returned when an asset file does not exist.
var ErrAssetNotFound = errors.New("asset not found")

// Meta is the sidecar written next to every asset.
type Meta struct {
	GUID string `yaml:"guid"`
}

// Database reads and writes assets relative to a root directory.
type Database struct {
	root  string
	cache *Cache
	mu    sync.Mutex
}

// NewDatabase creates a database rooted at root.
func NewDatabase(root string) *Database {
	return &Database{
		root:  root,
		cache: NewCache(),
	}
}

// Root returns the database root directory.
func (d *Database) Root() string {
	return d.root
}

// Cache returns the read cache.
func (d *Database) Cache() *Cache {
	return d.cache
}

// IsValidFolder reports whether folder exists below the root.
func (d *Database) IsValidFolder(folder string) bool {
	info, err := os.Stat(d.abs(folder))
	return err == nil && info.IsDir()
}

// EnsureFolder creates folder below the root if it does not exist yet.
func (d *Database) EnsureFolder(folder string) error {
	if d.IsValidFolder(folder) {
		return nil
	}
	if err := os.MkdirAll(d.abs(folder), 0755); err != nil {
		return fmt.Errorf("creating folder %s: %w", folder, err)
	}
	return nil
}

// CreateAsset writes v as YAML to path and a meta sidecar holding guid.
// Existing files are overwritten.
func (d *Database) CreateAsset(path, guid string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	meta, err := yaml.Marshal(Meta{GUID: guid})
	if err != nil {
		return fmt.Errorf("encoding %s meta: %w", path, err)
	}

	if err := d.EnsureFolder(filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(d.abs(path), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(d.abs(path)+MetaExt, meta, 0644); err != nil {
		return fmt.Errorf("writing %s meta: %w", path, err)
	}

	d.cache.Set(path, data)
	return nil
}

// Load decodes the asset at path into v, reading through the cache.
func (d *Database) Load(path string, v any) error {
	data, ok := d.cache.Get(path)
	if !ok {
		var err error
		data, err = os.ReadFile(d.abs(path))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrAssetNotFound, path)
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		d.cache.Set(path, data)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// GUID returns the GUID recorded in the asset's meta sidecar.
func (d *Database) GUID(path string) (string, error) {
	data, err := os.ReadFile(d.abs(path) + MetaExt)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s%s", ErrAssetNotFound, path, MetaExt)
	}
	if err != nil {
		return "", err
	}
	var m Meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("decoding %s meta: %w", path, err)
	}
	return m.GUID, nil
}

// Find lists asset paths below folder with the given extension, sorted.
func (d *Database) Find(folder, ext string) ([]string, error) {
	entries, err := os.ReadDir(d.abs(folder))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		paths = append(paths, filepath.Join(folder, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ClipPath returns a fresh clip path for a blend shape. A random four digit
// suffix in [1000, 9999) keeps repeated runs from overwriting older clips.
func (d *Database) ClipPath(folder, shapeName string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		suffix := strconv.Itoa(1000 + rand.IntN(8999))
		path := filepath.Join(folder, "MeshDecrypt_"+shapeName+"_"+suffix+ClipExt)
		if _, err := os.Stat(d.abs(path)); errors.Is(err, fs.ErrNotExist) {
			return path
		}
	}
}

// ControllerPath returns the combined controller path in folder.
func ControllerPath(folder string) string {
	return filepath.Join(folder, ControllerFile)
}

func (d *Database) abs(path string) string {
	return filepath.Join(d.root, path)
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
