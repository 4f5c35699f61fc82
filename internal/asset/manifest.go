package asset

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadManifest registers every entry of a YAML asset manifest and returns
// how many entries were applied. Entries already registered under the same
// path are refreshed in place, so reloading a manifest keeps ids stable.
//
//	- name: crate
//	  path: models/crate.glb
//	  mesh: 3
//	  texture: 7
//	  bounds: {min: [-0.5, 0, -0.5], max: [0.5, 1, 0.5]}
func (r *Registry) LoadManifest(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read asset manifest: %w", err)
	}
	var entries []Asset
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("parse asset manifest %s: %w", path, err)
	}
	n := 0
	for i := range entries {
		id, err := r.Register(entries[i])
		if err != nil {
			r.log.Error("skip manifest entry", zap.Int("index", i), zap.Error(err))
			continue
		}
		r.log.Debug("asset registered",
			zap.Uint32("id", id),
			zap.String("name", r.assets[id].Name),
			zap.String("path", entries[i].Path))
		n++
	}
	return n, nil
}
