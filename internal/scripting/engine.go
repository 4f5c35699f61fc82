package scripting

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/component"
	"github.com/gatha/engine/internal/core/ecs"
	"github.com/gatha/engine/internal/scene"
	"github.com/gatha/engine/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoScript is returned by NewEngine when no script path is configured.
var ErrNoScript = errors.New("scripting: no script configured")

const apiVersion = 1

// Deps are the collaborators scripts are allowed to touch.
type Deps struct {
	World  *world.World
	Assets *asset.Registry
	Scene  *scene.Scene // receives entities created by spawn
}

// Engine wraps a single gopher-lua VM running one scene script.
// Single-goroutine access only (frame loop). Reload swaps the VM only after
// the new script loaded cleanly.
type Engine struct {
	path string
	deps Deps
	vm   *lua.LState
	log  *zap.Logger
}

// NewEngine creates a Lua VM, registers the scene API and runs the script
// at path once.
func NewEngine(path string, deps Deps, log *zap.Logger) (*Engine, error) {
	if path == "" {
		return nil, ErrNoScript
	}
	e := &Engine{path: path, deps: deps, log: log}
	vm, err := e.load()
	if err != nil {
		return nil, err
	}
	e.vm = vm
	return e, nil
}

func (e *Engine) load() (*lua.LState, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(apiVersion))
	for name, fn := range map[string]lua.LGFunction{
		"spawn":        e.luaSpawn,
		"destroy":      e.luaDestroy,
		"set_position": e.luaSetPosition,
		"set_rotation": e.luaSetRotation,
		"set_scale":    e.luaSetScale,
		"get_position": e.luaGetPosition,
		"entity_count": e.luaEntityCount,
		"asset_id":     e.luaAssetID,
	} {
		vm.SetGlobal(name, vm.NewFunction(fn))
	}
	if err := vm.DoFile(e.path); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load script %s: %w", e.path, err)
	}
	e.log.Debug("loaded lua script", zap.String("file", e.path))
	return vm, nil
}

// Path returns the script file the engine runs.
func (e *Engine) Path() string { return e.path }

// SetScene redirects spawn to s, used after the scene is reloaded.
func (e *Engine) SetScene(s *scene.Scene) { e.deps.Scene = s }

// Reload re-runs the script in a fresh VM. On failure the previous VM stays
// active and the error is returned.
func (e *Engine) Reload() error {
	vm, err := e.load()
	if err != nil {
		return err
	}
	e.vm.Close()
	e.vm = vm
	e.log.Info("script reloaded", zap.String("file", e.path))
	return nil
}

// OnFrame calls the script's optional on_frame(dt, frame) hook. Script
// errors are logged and do not stop the frame.
func (e *Engine) OnFrame(dt time.Duration, frame uint64) {
	fn := e.vm.GetGlobal("on_frame")
	if fn.Type() != lua.LTFunction {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(dt.Seconds()), lua.LNumber(frame)); err != nil {
		e.log.Error("lua on_frame error", zap.Error(err))
	}
}

func (e *Engine) Close() {
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}

// checkEntity reads argument n as a live entity or raises a Lua error.
func (e *Engine) checkEntity(L *lua.LState, n int) ecs.Entity {
	v := L.CheckNumber(n)
	if v < 0 || v > math.MaxUint32 || v != lua.LNumber(math.Trunc(float64(v))) {
		L.ArgError(n, fmt.Sprintf("%v is not an entity", v))
		return ecs.InvalidEntity
	}
	ent := ecs.Entity(v)
	if !e.deps.World.Alive(ent) {
		L.ArgError(n, fmt.Sprintf("entity %d is not alive", ent))
	}
	return ent
}

func checkVec3(L *lua.LState, first int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.CheckNumber(first)),
		float32(L.CheckNumber(first + 1)),
		float32(L.CheckNumber(first + 2)),
	}
}

func (e *Engine) markDirty() {
	if e.deps.Scene != nil {
		e.deps.Scene.Dirty = true
	}
}

// spawn(asset, x, y, z) -> entity | nil, message
func (e *Engine) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	pos := mgl32.Vec3{float32(L.OptNumber(2, 0)), float32(L.OptNumber(3, 0)), float32(L.OptNumber(4, 0))}
	if e.deps.Scene == nil {
		L.RaiseError("spawn: no scene loaded")
		return 0
	}
	ent, err := e.deps.Scene.Spawn(e.deps.World, e.deps.Assets, name, pos)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(ent))
	return 1
}

// destroy(entity) queues the entity for removal at the end of the frame.
func (e *Engine) luaDestroy(L *lua.LState) int {
	e.deps.World.MarkForDestruction(e.checkEntity(L, 1))
	e.markDirty()
	return 0
}

func (e *Engine) setTransform(L *lua.LState, apply func(t *component.Transform, v mgl32.Vec3)) int {
	ent := e.checkEntity(L, 1)
	v := checkVec3(L, 2)
	t, ok := e.deps.World.Transforms.Get(ent)
	if !ok {
		L.ArgError(1, fmt.Sprintf("entity %d has no transform", ent))
		return 0
	}
	apply(t, v)
	e.markDirty()
	return 0
}

// set_position(entity, x, y, z)
func (e *Engine) luaSetPosition(L *lua.LState) int {
	return e.setTransform(L, func(t *component.Transform, v mgl32.Vec3) { t.Position = v })
}

// set_rotation(entity, yaw, pitch, roll) in radians
func (e *Engine) luaSetRotation(L *lua.LState) int {
	return e.setTransform(L, func(t *component.Transform, v mgl32.Vec3) { t.Rotation = v })
}

// set_scale(entity, x, y, z)
func (e *Engine) luaSetScale(L *lua.LState) int {
	return e.setTransform(L, func(t *component.Transform, v mgl32.Vec3) { t.Scale = v })
}

// get_position(entity) -> x, y, z | nil
func (e *Engine) luaGetPosition(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	t, ok := e.deps.World.Transforms.Get(ent)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(t.Position[0]))
	L.Push(lua.LNumber(t.Position[1]))
	L.Push(lua.LNumber(t.Position[2]))
	return 3
}

func (e *Engine) luaEntityCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.deps.World.Len()))
	return 1
}

// asset_id(name) -> id | nil
func (e *Engine) luaAssetID(L *lua.LState) int {
	id, ok := e.deps.Assets.FindID(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(id))
	return 1
}
