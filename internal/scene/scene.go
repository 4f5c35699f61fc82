package scene

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/component"
	"github.com/gatha/engine/internal/core/ecs"
	"github.com/gatha/engine/internal/geom"
	"github.com/gatha/engine/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrEntityLimit is returned, wrapped, together with a partially loaded
// scene when the world's entity universe fills up during Load or Spawn.
var ErrEntityLimit = errors.New("scene: entity limit reached")

const defaultBaseName = "Entity"

// Scene records which world entities were created for one scene file so
// they can be saved and unloaded together.
type Scene struct {
	Name     string
	Path     string
	Entities []ecs.Entity
	Dirty    bool
}

// Load reads a scene file and populates w. On entity exhaustion it returns
// the entities created so far and an error wrapping ErrEntityLimit.
func Load(path string, w *world.World, assets *asset.Registry, log *zap.Logger) (*Scene, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	s := New(path)
	err = s.Populate(doc, w, assets, log)
	return s, err
}

// New returns an empty scene bound to path.
func New(path string) *Scene {
	return &Scene{Name: asset.NameFromPath(path), Path: path}
}

// ReadDocument reads and decodes a scene file without touching any world.
func ReadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return &doc, nil
}

// Populate creates one entity per description in doc.
func (s *Scene) Populate(doc *Document, w *world.World, assets *asset.Registry, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	for _, name := range doc.Assets {
		if _, ok := assets.FindID(name); !ok {
			log.Warn("scene requires unregistered asset",
				zap.String("scene", s.Name), zap.String("asset", name))
		}
	}

	created := make([]ecs.Entity, 0, len(doc.Entities))
	for i := range doc.Entities {
		desc := &doc.Entities[i]
		e := w.CreateEntity()
		if !e.Valid() {
			log.Error("scene load stopped", zap.String("scene", s.Name),
				zap.Int("loaded", i), zap.Int("described", len(doc.Entities)))
			return fmt.Errorf("load %s: %w after %d of %d entities", s.Name, ErrEntityLimit, i, len(doc.Entities))
		}
		s.Entities = append(s.Entities, e)
		created = append(created, e)

		if t := desc.Transform; t != nil {
			scale := mgl32.Vec3{1, 1, 1}
			if t.Scale != nil {
				scale = *t.Scale
			}
			w.Transforms.Add(e, component.Transform{
				Position: t.Position,
				Rotation: t.Rotation,
				Scale:    scale,
				World:    geom.Compose(t.Position, t.Rotation, scale),
			})
		}

		base := defaultBaseName
		if m := desc.MeshInstance; m != nil {
			if id, ok := assets.FindID(m.Asset); ok {
				w.MeshInstances.Add(e, component.MeshInstance{AssetID: id})
				base = m.Asset
			} else {
				log.Error("entity references unknown asset",
					zap.String("scene", s.Name), zap.Int("entity", i), zap.String("asset", m.Asset))
			}
		}

		node := component.HierarchyNode{Parent: ecs.InvalidEntity}
		if p := desc.Parent; p != nil {
			if *p >= 0 && *p < i {
				node.Parent = created[*p]
			} else {
				log.Warn("ignoring out of range parent",
					zap.String("scene", s.Name), zap.Int("entity", i), zap.Int("parent", *p))
			}
		}
		if desc.Name != "" {
			node.Name = truncateName(desc.Name)
		} else {
			node.Name = s.UniqueName(base, w)
		}
		w.Hierarchy.Add(e, node)
	}
	log.Info("scene loaded", zap.String("scene", s.Name), zap.Int("entities", len(created)))
	return nil
}

// Spawn creates an entity at position using the named asset and adopts it
// into the scene.
func (s *Scene) Spawn(w *world.World, assets *asset.Registry, assetName string, position mgl32.Vec3) (ecs.Entity, error) {
	id, ok := assets.FindID(assetName)
	if !ok {
		return ecs.InvalidEntity, fmt.Errorf("spawn %q: %w", assetName, asset.ErrUnknownAsset)
	}
	e := w.CreateEntity()
	if !e.Valid() {
		return ecs.InvalidEntity, fmt.Errorf("spawn %q: %w", assetName, ErrEntityLimit)
	}
	tr := component.NewTransform(position)
	tr.World = geom.Compose(tr.Position, tr.Rotation, tr.Scale)
	w.Transforms.Add(e, tr)
	w.MeshInstances.Add(e, component.MeshInstance{AssetID: id})
	w.Hierarchy.Add(e, component.HierarchyNode{Parent: ecs.InvalidEntity, Name: s.UniqueName(assetName, w)})
	s.Entities = append(s.Entities, e)
	s.Dirty = true
	return e, nil
}

// UniqueName returns base if no scene entity is named base or base.NNN,
// otherwise base followed by a three digit count of such entities.
func (s *Scene) UniqueName(base string, w *world.World) string {
	prefix := base + "."
	count := 0
	for _, e := range s.Entities {
		n, ok := w.Hierarchy.Get(e)
		if !ok {
			continue
		}
		if n.Name == base || strings.HasPrefix(n.Name, prefix) {
			count++
		}
	}
	if count == 0 {
		return truncateName(base)
	}
	return truncateName(fmt.Sprintf("%s.%03d", base, count))
}

func truncateName(name string) string {
	if len(name) <= component.MaxNameLen {
		return name
	}
	return name[:component.MaxNameLen]
}

// Prune drops entities that are no longer alive and duplicate entries
// left by recycled ids.
func (s *Scene) Prune(w *world.World) {
	seen := make(map[ecs.Entity]struct{}, len(s.Entities))
	kept := s.Entities[:0]
	for _, e := range s.Entities {
		if _, dup := seen[e]; dup || !w.Alive(e) {
			continue
		}
		seen[e] = struct{}{}
		kept = append(kept, e)
	}
	s.Entities = kept
}

// Unload destroys every entity of the scene.
func (s *Scene) Unload(w *world.World, log *zap.Logger) {
	s.Prune(w)
	for _, e := range s.Entities {
		w.DestroyEntity(e)
	}
	if log != nil {
		log.Info("scene unloaded", zap.String("scene", s.Name), zap.Int("entities", len(s.Entities)))
	}
	s.Entities = nil
	s.Dirty = false
}
