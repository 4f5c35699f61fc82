package system

import (
	"time"

	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/core/event"
	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/scene"
	"github.com/gatha/engine/internal/scripting"
	"github.com/gatha/engine/internal/watch"
	"github.com/gatha/engine/internal/world"
	"go.uber.org/zap"
)

// ReloadPaths names the files the reload system reacts to.
type ReloadPaths struct {
	Manifest string
	Scene    string
	Script   string
}

// ReloadSystem owns the loaded scene and applies file changes reported by
// the watcher on the frame loop, so reloads never race extraction.
// Phase 0 (Input).
type ReloadSystem struct {
	paths  ReloadPaths
	world  *world.World
	assets *asset.Registry
	engine *scripting.Engine // nil when scripting is disabled
	bus    *event.Bus
	log    *zap.Logger

	events <-chan string
	errs   <-chan error
	scene  *scene.Scene
}

// NewReloadSystem adopts current as the loaded scene. A nil watcher leaves
// the system as the scene owner without reacting to file changes.
func NewReloadSystem(
	paths ReloadPaths,
	w *world.World,
	assets *asset.Registry,
	current *scene.Scene,
	engine *scripting.Engine,
	watcher *watch.Watcher,
	bus *event.Bus,
	log *zap.Logger,
) *ReloadSystem {
	s := &ReloadSystem{
		paths:  paths,
		world:  w,
		assets: assets,
		engine: engine,
		bus:    bus,
		log:    log,
		scene:  current,
	}
	if watcher != nil {
		s.events = watcher.Events
		s.errs = watcher.Errors
	}
	if s.scene == nil {
		s.scene = scene.New(paths.Scene)
	}
	return s
}

func (s *ReloadSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Scene returns the currently loaded scene.
func (s *ReloadSystem) Scene() *scene.Scene { return s.scene }

func (s *ReloadSystem) Update(_ time.Duration) {
	for {
		select {
		case path, ok := <-s.events:
			if !ok {
				s.events = nil
				continue
			}
			s.Apply(path)
		case err, ok := <-s.errs:
			if !ok {
				s.errs = nil
				continue
			}
			s.log.Warn("file watcher error", zap.Error(err))
		default:
			return
		}
	}
}

// Apply reloads whichever collaborator path belongs to.
func (s *ReloadSystem) Apply(path string) {
	switch {
	case watch.SamePath(path, s.paths.Manifest):
		s.reloadAssets()
	case watch.SamePath(path, s.paths.Scene):
		s.reloadScene()
	case s.engine != nil && watch.SamePath(path, s.paths.Script):
		s.reloadScript()
	}
}

func (s *ReloadSystem) reloadAssets() {
	n, err := s.assets.LoadManifest(s.paths.Manifest)
	if err != nil {
		s.log.Error("asset manifest reload failed", zap.Error(err))
		return
	}
	s.log.Info("asset manifest reloaded", zap.String("path", s.paths.Manifest), zap.Int("assets", n))
	event.Emit(s.bus, event.AssetsReloaded{Path: s.paths.Manifest, Assets: n})
}

// reloadScene replaces the scene only once the new file parsed, so a
// half-saved file keeps the old scene on screen.
func (s *ReloadSystem) reloadScene() {
	doc, err := scene.ReadDocument(s.paths.Scene)
	if err != nil {
		s.log.Error("scene reload failed", zap.Error(err))
		return
	}
	old := s.scene
	if old.Dirty {
		s.log.Warn("discarding unsaved scene changes", zap.String("scene", old.Name))
	}
	old.Prune(s.world)
	unloaded := len(old.Entities)
	old.Unload(s.world, s.log)
	event.Emit(s.bus, event.SceneUnloaded{Name: old.Name, Entities: unloaded})

	next := scene.New(s.paths.Scene)
	// Populate only fails on entity exhaustion, which it logs; keep the
	// partial scene.
	_ = next.Populate(doc, s.world, s.assets, s.log)
	s.scene = next
	if s.engine != nil {
		s.engine.SetScene(next)
	}
	event.Emit(s.bus, event.SceneLoaded{Name: next.Name, Path: next.Path, Entities: len(next.Entities)})
}

func (s *ReloadSystem) reloadScript() {
	if err := s.engine.Reload(); err != nil {
		s.log.Error("script reload failed", zap.Error(err))
		return
	}
	event.Emit(s.bus, event.ScriptReloaded{Path: s.engine.Path()})
}
