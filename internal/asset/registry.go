package asset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gatha/engine/internal/geom"
	"go.uber.org/zap"
)

var (
	// ErrUnknownAsset is returned when a name or id does not resolve.
	ErrUnknownAsset = errors.New("asset: unknown asset")
	// ErrRegistryClosed is returned by Register after Shutdown.
	ErrRegistryClosed = errors.New("asset: registry shut down")
)

// Asset is an immutable record produced by the external importer: GPU
// handles for the mesh and optional texture plus local-space bounds.
type Asset struct {
	Name        string    `yaml:"name"`
	Path        string    `yaml:"path"`
	Mesh        uint32    `yaml:"mesh"`
	Texture     uint32    `yaml:"texture"` // 0 = untextured
	Bounds      geom.AABB `yaml:"bounds"`
	VertexCount uint32    `yaml:"vertex_count"`
	IndexCount  uint32    `yaml:"index_count"`
}

func (a *Asset) HasTexture() bool { return a.Texture != 0 }

// Registry is the process-wide asset table. Ids are dense indices that
// stay valid until Shutdown. Registry is not safe for concurrent use; it is
// owned by the frame loop like the World.
type Registry struct {
	assets []Asset
	byPath map[string]uint32
	byName map[string]uint32
	closed bool
	log    *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		assets: make([]Asset, 0, 64),
		byPath: make(map[string]uint32, 64),
		byName: make(map[string]uint32, 64),
		log:    log,
	}
}

// NameFromPath returns the file name of path without directory or extension.
func NameFromPath(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Register adds a or, if an asset with the same path exists, refreshes that
// record in place and returns its existing id.
func (r *Registry) Register(a Asset) (uint32, error) {
	if r.closed {
		return 0, ErrRegistryClosed
	}
	if a.Path == "" {
		return 0, fmt.Errorf("register asset %q: empty path", a.Name)
	}
	if a.Bounds.Empty() {
		return 0, fmt.Errorf("register asset %s: bounds min exceeds max", a.Path)
	}
	if a.Name == "" {
		a.Name = NameFromPath(a.Path)
	}

	if id, ok := r.byPath[a.Path]; ok {
		old := r.assets[id].Name
		if old != a.Name && r.byName[old] == id {
			delete(r.byName, old)
		}
		r.assets[id] = a
		r.byName[a.Name] = id
		return id, nil
	}

	id := uint32(len(r.assets))
	r.assets = append(r.assets, a)
	r.byPath[a.Path] = id
	if prev, dup := r.byName[a.Name]; dup {
		r.log.Warn("asset name shadows earlier asset",
			zap.String("name", a.Name),
			zap.String("path", a.Path),
			zap.String("shadowed", r.assets[prev].Path))
	}
	r.byName[a.Name] = id
	return id, nil
}

// Resolve returns the asset for id, or false if id is unknown.
func (r *Registry) Resolve(id uint32) (*Asset, bool) {
	if int64(id) >= int64(len(r.assets)) {
		return nil, false
	}
	return &r.assets[id], true
}

// Find returns the asset registered under name.
func (r *Registry) Find(name string) (*Asset, bool) {
	id, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return &r.assets[id], true
}

// FindID returns the id registered under name.
func (r *Registry) FindID(name string) (uint32, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	return len(r.assets)
}

// Shutdown drops every record. Previously issued ids no longer resolve.
func (r *Registry) Shutdown() {
	r.log.Debug("asset registry shutdown", zap.Int("assets", len(r.assets)))
	r.assets = nil
	clear(r.byPath)
	clear(r.byName)
	r.closed = true
}
