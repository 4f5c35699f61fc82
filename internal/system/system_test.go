package system

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/camera"
	"github.com/gatha/engine/internal/component"
	"github.com/gatha/engine/internal/config"
	"github.com/gatha/engine/internal/core/event"
	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/geom"
	"github.com/gatha/engine/internal/render"
	"github.com/gatha/engine/internal/scene"
	"github.com/gatha/engine/internal/scripting"
	"github.com/gatha/engine/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap/zaptest"
)

const manifest = `
- name: crate
  path: models/crate.glb
  mesh: 1
  bounds: {min: [-1, -1, -1], max: [1, 1, 1]}
- name: tree
  path: models/tree.glb
  mesh: 2
  bounds: {min: [-1, 0, -1], max: [1, 6, 1]}
`

// recordRenderer copies what it is given, since frames alias pipeline buffers.
type recordRenderer struct {
	submits   int
	batches   []render.DrawBatch
	instances int
}

func (r *recordRenderer) Submit(f *render.Frame) {
	r.submits++
	r.batches = append(r.batches[:0], f.Batches...)
	r.instances = f.Instances()
}

type harness struct {
	dir      string
	paths    ReloadPaths
	world    *world.World
	assets   *asset.Registry
	bus      *event.Bus
	runner   *coresys.Runner
	extract  *ExtractSystem
	reload   *ReloadSystem
	renderer *recordRenderer
}

func writeFile(t *testing.T, path, src string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newHarness wires the same systems cmd/gatha registers, minus the watcher.
func newHarness(t *testing.T, sceneSrc, scriptSrc string, maxInstances int) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	dir := t.TempDir()
	h := &harness{
		dir: dir,
		paths: ReloadPaths{
			Manifest: filepath.Join(dir, "assets.yaml"),
			Scene:    filepath.Join(dir, "scene.yaml"),
		},
		world:    world.New(64),
		assets:   asset.NewRegistry(log),
		bus:      event.NewBus(),
		runner:   coresys.NewRunner(),
		renderer: &recordRenderer{},
	}
	writeFile(t, h.paths.Manifest, manifest)
	writeFile(t, h.paths.Scene, sceneSrc)
	if _, err := h.assets.LoadManifest(h.paths.Manifest); err != nil {
		t.Fatal(err)
	}
	sc, err := scene.Load(h.paths.Scene, h.world, h.assets, log)
	if err != nil {
		t.Fatal(err)
	}

	var engine *scripting.Engine
	if scriptSrc != "" {
		h.paths.Script = filepath.Join(dir, "scene.lua")
		writeFile(t, h.paths.Script, scriptSrc)
		engine, err = scripting.NewEngine(h.paths.Script, scripting.Deps{World: h.world, Assets: h.assets, Scene: sc}, log)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(engine.Close)
		h.runner.Register(NewScriptSystem(engine))
	}

	cam := camera.New(mgl32.Vec3{0, 0, 10}, 5, 0.003)
	cam.Yaw = math.Pi
	lens := config.Defaults().Render

	h.extract = NewExtractSystem(h.world, h.assets, cam, lens, render.NewPipeline(maxInstances, log), h.bus)
	h.reload = NewReloadSystem(h.paths, h.world, h.assets, sc, engine, nil, h.bus, log)
	h.runner.Register(NewEventSystem(h.bus))
	h.runner.Register(h.reload)
	h.runner.Register(NewTransformSystem(h.world))
	h.runner.Register(h.extract)
	h.runner.Register(NewRenderSystem(h.extract, h.renderer))
	h.runner.Register(NewCleanupSystem(h.world))
	return h
}

func TestResolveTransformsTranslation(t *testing.T) {
	w := world.New(4)
	e := w.CreateEntity()
	w.Transforms.Add(e, component.NewTransform(mgl32.Vec3{1, 2, 3}))
	if n := ResolveTransforms(w.Transforms); n != 1 {
		t.Fatalf("resolved %d", n)
	}

	m := w.WorldMatrix(e)
	if got := m.Col(3); !got.ApproxEqualThreshold(mgl32.Vec4{1, 2, 3, 1}, 1e-6) {
		t.Fatalf("translation column %v", got)
	}
	if !m.Mat3().ApproxEqualThreshold(mgl32.Ident3(), 1e-6) {
		t.Fatalf("linear part should be identity, got %v", m.Mat3())
	}
}

func TestResolveTransformsMatchesCompose(t *testing.T) {
	w := world.New(4)
	e := w.CreateEntity()
	tr := component.Transform{
		Position: mgl32.Vec3{-4, 0.5, 2},
		Rotation: mgl32.Vec3{0.3, -1.1, 2.0},
		Scale:    mgl32.Vec3{2, 1, 0.5},
	}
	w.Transforms.Add(e, tr)
	ResolveTransforms(w.Transforms)

	want := geom.Compose(tr.Position, tr.Rotation, tr.Scale)
	if got := w.WorldMatrix(e); !got.ApproxEqualThreshold(want, 1e-6) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestFrameRendersVisibleScene(t *testing.T) {
	h := newHarness(t, `
entities:
  - transform: {position: [0, 0, 0]}
    mesh_instance: {asset: crate}
  - transform: {position: [2, 0, 0]}
    mesh_instance: {asset: tree}
  - transform: {position: [-2, 0, 0]}
    mesh_instance: {asset: crate}
  - transform: {position: [0, 0, 50]}
    mesh_instance: {asset: crate}
`, "", 16)

	h.runner.Tick(16 * time.Millisecond)

	r := h.renderer
	if r.submits != 1 || r.instances != 3 {
		t.Fatalf("expected 3 instances in one submit, got %+v", r)
	}
	crate, _ := h.assets.FindID("crate")
	tree, _ := h.assets.FindID("tree")
	want := []render.DrawBatch{{AssetID: crate, Offset: 0, Count: 2}, {AssetID: tree, Offset: 2, Count: 1}}
	if len(r.batches) != len(want) {
		t.Fatalf("expected %v, got %v", want, r.batches)
	}
	for i := range want {
		if r.batches[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, r.batches)
		}
	}
}

func TestScriptMovesAndDestroysBetweenFrames(t *testing.T) {
	h := newHarness(t, "entities: []\n", `
function on_frame(dt, frame)
  if frame == 1 then
    mover = spawn("crate", 0, 0, 0)
    victim = spawn("tree", 1, 0, 0)
  elseif frame == 2 then
    set_position(mover, 0, 0, 100)
    destroy(victim)
  end
end
`, 16)

	h.runner.Tick(16 * time.Millisecond)
	if h.renderer.instances != 2 {
		t.Fatalf("frame 1: expected 2 instances, got %d", h.renderer.instances)
	}

	h.runner.Tick(16 * time.Millisecond)
	if h.renderer.instances != 1 {
		t.Fatalf("frame 2: only the queued entity should still render, got %d", h.renderer.instances)
	}
	if h.world.Len() != 1 {
		t.Fatalf("cleanup should have released the destroyed entity, %d alive", h.world.Len())
	}

	h.runner.Tick(16 * time.Millisecond)
	if h.renderer.instances != 0 {
		t.Fatalf("frame 3: expected nothing visible, got %d", h.renderer.instances)
	}
}

func TestTruncationEmitsOnce(t *testing.T) {
	h := newHarness(t, `
entities:
  - transform: {position: [0, 0, 0]}
    mesh_instance: {asset: crate}
  - transform: {position: [1, 0, 0]}
    mesh_instance: {asset: crate}
  - transform: {position: [2, 0, 0]}
    mesh_instance: {asset: crate}
`, "", 2)

	var got []event.InstancesTruncated
	event.Subscribe(h.bus, func(e event.InstancesTruncated) { got = append(got, e) })

	for i := 0; i < 4; i++ {
		h.runner.Tick(16 * time.Millisecond)
	}
	if h.renderer.instances != 2 {
		t.Fatalf("expected cap of 2 instances, got %d", h.renderer.instances)
	}
	if len(got) != 1 || got[0].Visible != 3 || got[0].Cap != 2 {
		t.Fatalf("expected one truncation event, got %+v", got)
	}
}

func TestReloadScene(t *testing.T) {
	h := newHarness(t, `
entities:
  - transform: {position: [0, 0, 0]}
    mesh_instance: {asset: crate}
`, "", 16)

	var loaded []event.SceneLoaded
	var unloaded []event.SceneUnloaded
	event.Subscribe(h.bus, func(e event.SceneLoaded) { loaded = append(loaded, e) })
	event.Subscribe(h.bus, func(e event.SceneUnloaded) { unloaded = append(unloaded, e) })

	writeFile(t, h.paths.Scene, `
entities:
  - transform: {position: [0, 0, 0]}
    mesh_instance: {asset: tree}
  - transform: {position: [3, 0, 0]}
    mesh_instance: {asset: tree}
`)
	h.reload.Apply(h.paths.Scene)
	h.runner.Tick(16 * time.Millisecond)

	if got := len(h.reload.Scene().Entities); got != 2 || h.world.Len() != 2 {
		t.Fatalf("expected reloaded scene with 2 entities, scene=%d world=%d", got, h.world.Len())
	}
	if len(unloaded) != 1 || unloaded[0].Entities != 1 {
		t.Fatalf("unloaded events %+v", unloaded)
	}
	if len(loaded) != 1 || loaded[0].Entities != 2 || loaded[0].Name != "scene" {
		t.Fatalf("loaded events %+v", loaded)
	}
	if h.renderer.instances != 2 {
		t.Fatalf("expected the new scene on screen, got %d instances", h.renderer.instances)
	}

	writeFile(t, h.paths.Scene, "entities: {broken")
	before := h.reload.Scene()
	h.reload.Apply(h.paths.Scene)
	if h.reload.Scene() != before || h.world.Len() != 2 {
		t.Fatalf("a broken scene file must keep the current scene")
	}
}

func TestReloadManifestKeepsIDs(t *testing.T) {
	h := newHarness(t, "entities: []\n", "", 16)
	crate, _ := h.assets.FindID("crate")

	var reloaded []event.AssetsReloaded
	event.Subscribe(h.bus, func(e event.AssetsReloaded) { reloaded = append(reloaded, e) })

	writeFile(t, h.paths.Manifest, manifest+`
- name: rock
  path: models/rock.glb
  bounds: {min: [-1, -1, -1], max: [1, 1, 1]}
`)
	h.reload.Apply(h.paths.Manifest)
	h.runner.Tick(time.Millisecond)

	if id, _ := h.assets.FindID("crate"); id != crate {
		t.Fatalf("crate id changed %d -> %d", crate, id)
	}
	if _, ok := h.assets.FindID("rock"); !ok {
		t.Fatalf("new asset not registered")
	}
	if len(reloaded) != 1 || reloaded[0].Assets != 3 {
		t.Fatalf("reload events %+v", reloaded)
	}
}

func TestReloadScriptRedirectsToNewScene(t *testing.T) {
	h := newHarness(t, "entities: []\n", "-- idle\n", 16)

	var scripts []event.ScriptReloaded
	event.Subscribe(h.bus, func(e event.ScriptReloaded) { scripts = append(scripts, e) })

	writeFile(t, h.paths.Scene, "entities: [{name: Anchor}]\n")
	h.reload.Apply(h.paths.Scene)
	writeFile(t, h.paths.Script, `spawn("crate", 0, 0, 0)`)
	h.reload.Apply(h.paths.Script)
	h.runner.Tick(time.Millisecond)

	if len(scripts) != 1 {
		t.Fatalf("script reload events %+v", scripts)
	}
	sc := h.reload.Scene()
	if len(sc.Entities) != 2 || !sc.Dirty {
		t.Fatalf("spawned entity should join the reloaded scene, got %+v", sc)
	}
}

func TestReloadIgnoresUnrelatedPaths(t *testing.T) {
	h := newHarness(t, "entities: [{name: A}]\n", "", 16)
	before := h.reload.Scene()
	h.reload.Apply(filepath.Join(h.dir, "other.yaml"))
	if h.reload.Scene() != before {
		t.Fatalf("unrelated file triggered a reload")
	}
}

func TestCleanupSystemFlushes(t *testing.T) {
	w := world.New(4)
	e := w.CreateEntity()
	w.MarkForDestruction(e)
	s := NewCleanupSystem(w)
	s.Update(0)
	if s.Destroyed() != 1 || w.Alive(e) {
		t.Fatalf("expected entity flushed")
	}
	if s.Phase() != coresys.PhaseCleanup {
		t.Fatalf("phase %v", s.Phase())
	}
}

type stillInput struct{ forward bool }

func (in stillInput) MouseDelta() (float32, float32) { return 0, 0 }
func (in stillInput) KeyDown(k camera.Key) bool { return in.forward && k == camera.KeyForward }

func TestCameraSystemMoves(t *testing.T) {
	cam := camera.New(mgl32.Vec3{0, 0, 10}, 2, 0.003)
	cam.Yaw = math.Pi
	s := NewCameraSystem(cam, stillInput{forward: true})
	s.Update(time.Second)
	if cam.Position.Sub(mgl32.Vec3{0, 0, 8}).Len() > 1e-4 {
		t.Fatalf("expected camera to move 2 units forward, at %v", cam.Position)
	}
}

func TestRenderSystemSkipsMissingFrame(t *testing.T) {
	r := &recordRenderer{}
	NewRenderSystem(&ExtractSystem{}, r).Update(0)
	if r.submits != 0 {
		t.Fatalf("nothing extracted yet, expected no submit")
	}
}
