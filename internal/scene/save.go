package scene

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/core/ecs"
	"github.com/gatha/engine/internal/world"
	"gopkg.in/yaml.v3"
)

// Document builds the serialisable form of the scene's live entities.
// Mesh instances whose asset no longer resolves are omitted, as are parent
// links to entities outside the scene.
func (s *Scene) Document(w *world.World, assets *asset.Registry) *Document {
	s.Prune(w)
	index := make(map[ecs.Entity]int, len(s.Entities))
	for i, e := range s.Entities {
		index[e] = i
	}

	doc := &Document{Entities: make([]EntityDesc, 0, len(s.Entities))}
	seenAsset := map[string]bool{}
	for _, e := range s.Entities {
		var desc EntityDesc
		if n, ok := w.Hierarchy.Get(e); ok {
			desc.Name = n.Name
			if p, ok := index[n.Parent]; ok && n.Parent.Valid() {
				desc.Parent = &p
			}
		}
		if t, ok := w.Transforms.Get(e); ok {
			scale := t.Scale
			desc.Transform = &TransformDesc{Position: t.Position, Rotation: t.Rotation, Scale: &scale}
		}
		if mi, ok := w.MeshInstances.Get(e); ok {
			if a, ok := assets.Resolve(mi.AssetID); ok {
				desc.MeshInstance = &MeshDesc{Asset: a.Name}
				if !seenAsset[a.Name] {
					seenAsset[a.Name] = true
					doc.Assets = append(doc.Assets, a.Name)
				}
			}
		}
		doc.Entities = append(doc.Entities, desc)
	}
	return doc
}

// Save writes the scene back to its path.
func (s *Scene) Save(w *world.World, assets *asset.Registry) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s.Document(w, assets)); err != nil {
		return fmt.Errorf("encode scene %s: %w", s.Name, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode scene %s: %w", s.Name, err)
	}
	if err := os.WriteFile(s.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	s.Dirty = false
	return nil
}
