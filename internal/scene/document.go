package scene

import "github.com/go-gl/mathgl/mgl32"

// Document is the on-disk YAML form of a scene.
//
//	assets: [crate, tree]
//	entities:
//	  - name: Crate
//	    transform: {position: [0, 0, -5], rotation: [0, 0, 0], scale: [1, 1, 1]}
//	    mesh_instance: {asset: crate}
//	  - transform: {position: [0, 1, 0]}
//	    parent: 0
type Document struct {
	Assets   []string     `yaml:"assets,omitempty"`
	Entities []EntityDesc `yaml:"entities"`
}

type EntityDesc struct {
	Name         string         `yaml:"name,omitempty"`
	Transform    *TransformDesc `yaml:"transform,omitempty"`
	MeshInstance *MeshDesc      `yaml:"mesh_instance,omitempty"`
	Parent       *int           `yaml:"parent,omitempty"` // index of an earlier entity in this document
}

type TransformDesc struct {
	Position mgl32.Vec3  `yaml:"position"`
	Rotation mgl32.Vec3  `yaml:"rotation"`
	Scale    *mgl32.Vec3 `yaml:"scale,omitempty"` // defaults to (1, 1, 1)
}

type MeshDesc struct {
	Asset string `yaml:"asset"`
}
