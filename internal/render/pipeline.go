package render

import (
	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/component"
	"github.com/gatha/engine/internal/core/ecs"
	"github.com/gatha/engine/internal/geom"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// DefaultMaxInstances caps the instance buffer when none is configured.
const DefaultMaxInstances = 16384

// AssetResolver looks up assets by id. *asset.Registry satisfies it.
type AssetResolver interface {
	Resolve(id uint32) (*asset.Asset, bool)
}

// Stores are the world component stores extraction reads.
type Stores struct {
	MeshInstances *ecs.ComponentStore[component.MeshInstance]
	Transforms    *ecs.ComponentStore[component.Transform]
}

// worldMatrix returns e's cached world matrix, identity without a transform.
func (s Stores) worldMatrix(e ecs.Entity) mgl32.Mat4 {
	if t, ok := s.Transforms.Get(e); ok {
		return t.World
	}
	return mgl32.Ident4()
}

type group struct {
	assetID uint32
	offset  int
	count   int
	fill    int
}

// Pipeline culls mesh instances against a view frustum and lays out the
// survivors as contiguous per-asset runs in one transform buffer.
// Buffers are reused across calls.
type Pipeline struct {
	maxInstances int

	groupIndex map[uint32]int
	groups     []group
	transforms []mgl32.Mat4
	batches    []DrawBatch
	frame      Frame

	truncating bool
	log        *zap.Logger
}

func NewPipeline(maxInstances int, log *zap.Logger) *Pipeline {
	if maxInstances <= 0 {
		maxInstances = DefaultMaxInstances
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		maxInstances: maxInstances,
		groupIndex:   make(map[uint32]int, 64),
		groups:       make([]group, 0, 64),
		batches:      make([]DrawBatch, 0, 64),
		log:          log,
	}
}

func (p *Pipeline) MaxInstances() int { return p.maxInstances }

// visible resolves the instance's asset and world matrix and tests its
// world-space bounds. Instances whose asset does not resolve are skipped.
func visible(f *geom.Frustum, src Stores, assets AssetResolver, e ecs.Entity, mi *component.MeshInstance) (mgl32.Mat4, bool) {
	a, ok := assets.Resolve(mi.AssetID)
	if !ok {
		return mgl32.Mat4{}, false
	}
	m := src.worldMatrix(e)
	if !f.IntersectsAABB(a.Bounds.Transform(m)) {
		return mgl32.Mat4{}, false
	}
	return m, true
}

// Extract builds the frame for viewProj. Asset groups appear in the order
// their first visible instance is met while walking the mesh-instance
// store densely, so identical world state yields identical frames.
func (p *Pipeline) Extract(src Stores, assets AssetResolver, viewProj mgl32.Mat4) *Frame {
	frustum := geom.FrustumFromMatrix(viewProj)
	ents, meshes := src.MeshInstances.Entities(), src.MeshInstances.Data()

	clear(p.groupIndex)
	p.groups = p.groups[:0]

	// Pass 1: count visible instances per asset.
	visibleTotal := 0
	for i := range meshes {
		if _, ok := visible(&frustum, src, assets, ents[i], &meshes[i]); !ok {
			continue
		}
		id := meshes[i].AssetID
		gi, seen := p.groupIndex[id]
		if !seen {
			gi = len(p.groups)
			p.groupIndex[id] = gi
			p.groups = append(p.groups, group{assetID: id})
		}
		p.groups[gi].count++
		visibleTotal++
	}

	// Prefix sum in first-seen order, clipping at the instance cap.
	offset := 0
	for i := range p.groups {
		g := &p.groups[i]
		g.offset = offset
		if room := p.maxInstances - offset; g.count > room {
			g.count = room
		}
		offset += g.count
	}
	total := offset
	p.noteTruncation(visibleTotal, total)

	if cap(p.transforms) < total {
		p.transforms = make([]mgl32.Mat4, total, max(total, 2*cap(p.transforms)))
	}
	p.transforms = p.transforms[:total]

	// Pass 2: fill each group's run.
	if total > 0 {
		for i := range meshes {
			gi, seen := p.groupIndex[meshes[i].AssetID]
			if !seen {
				continue
			}
			g := &p.groups[gi]
			if g.fill >= g.count {
				continue
			}
			m, ok := visible(&frustum, src, assets, ents[i], &meshes[i])
			if !ok {
				continue
			}
			p.transforms[g.offset+g.fill] = m
			g.fill++
		}
	}

	p.batches = p.batches[:0]
	for _, g := range p.groups {
		if g.count == 0 {
			continue
		}
		p.batches = append(p.batches, DrawBatch{AssetID: g.assetID, Offset: g.offset, Count: g.count})
	}

	p.frame = Frame{
		ViewProj:   viewProj,
		Transforms: p.transforms,
		Batches:    p.batches,
		Considered: len(meshes),
		Visible:    visibleTotal,
		Truncated:  visibleTotal - total,
	}
	return &p.frame
}

func (p *Pipeline) noteTruncation(visible, kept int) {
	truncating := kept < visible
	if truncating == p.truncating {
		return
	}
	p.truncating = truncating
	if truncating {
		p.log.Warn("instance buffer cap reached, dropping instances",
			zap.Int("visible", visible),
			zap.Int("cap", p.maxInstances))
		return
	}
	p.log.Info("instance count back under cap", zap.Int("visible", visible))
}
