package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gatha/engine/internal/asset"
	"github.com/gatha/engine/internal/camera"
	"github.com/gatha/engine/internal/config"
	"github.com/gatha/engine/internal/core/event"
	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/preview"
	"github.com/gatha/engine/internal/render"
	"github.com/gatha/engine/internal/scene"
	"github.com/gatha/engine/internal/scripting"
	"github.com/gatha/engine/internal/system"
	"github.com/gatha/engine/internal/watch"
	"github.com/gatha/engine/internal/world"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var profileMode = flag.String("profile", "", "profile the frame loop: cpu, mem or trace")

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              gatha scene core             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/gatha.toml"
	if p := os.Getenv("GATHA_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	stopProfile, err := startProfile(*profileMode)
	if err != nil {
		return err
	}
	defer stopProfile()

	printBanner()

	// 3. Asset registry
	printSection("assets")
	assets := asset.NewRegistry(log)
	defer assets.Shutdown()

	n, err := assets.LoadManifest(cfg.Assets.Manifest)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	printStat("registered assets", n)
	fmt.Println()

	// 4. World and scene
	printSection("scene")
	w := world.New(cfg.World.MaxEntities)
	sc, err := scene.Load(cfg.Scene.Path, w, assets, log)
	switch {
	case errors.Is(err, scene.ErrEntityLimit):
		log.Warn("scene truncated to entity capacity", zap.Int("capacity", cfg.World.MaxEntities), zap.Error(err))
	case err != nil:
		return fmt.Errorf("scene: %w", err)
	}
	printStat("entities", len(sc.Entities))
	printStat("mesh instances", w.MeshInstances.Len())
	printStat("entity capacity", cfg.World.MaxEntities)

	// 5. Scripting
	engine, err := scripting.NewEngine(cfg.Scripting.Script, scripting.Deps{World: w, Assets: assets, Scene: sc}, log)
	switch {
	case errors.Is(err, scripting.ErrNoScript):
		engine = nil
	case err != nil:
		return fmt.Errorf("scripting: %w", err)
	default:
		defer engine.Close()
		printOK(fmt.Sprintf("script %s loaded", cfg.Scripting.Script))
	}

	// 6. Hot reload
	var watcher *watch.Watcher
	if cfg.Scene.HotReload {
		watcher, err = watch.NewWatcher(log, cfg.Assets.Manifest, cfg.Scene.Path, cfg.Scripting.Script)
		if err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		defer watcher.Close()
		printOK("hot reload enabled")
	}
	fmt.Println()

	bus := event.NewBus()
	subscribeLogging(bus, log)

	// 7. Camera, renderer and systems
	cc := cfg.Camera
	cam := camera.New(mgl32.Vec3(cc.Position), cc.Speed, cc.Sensitivity)
	cam.Yaw, cam.Pitch = cc.Yaw, cc.Pitch

	pipeline := render.NewPipeline(cfg.Render.MaxInstances, log)
	extract := system.NewExtractSystem(w, assets, cam, cfg.Render, pipeline, bus)
	reload := system.NewReloadSystem(system.ReloadPaths{
		Manifest: cfg.Assets.Manifest,
		Scene:    cfg.Scene.Path,
		Script:   cfg.Scripting.Script,
	}, w, assets, sc, engine, watcher, bus, log)

	defer func() {
		reload.Scene().Unload(w, log)
		w.Teardown()
	}()

	var (
		renderer render.Renderer
		window   *preview.Window
	)
	if cfg.Frame.Headless {
		renderer = render.NewLogRenderer(cfg.Render.StatsEvery, log)
	} else {
		window, err = preview.New(preview.Options{
			Width:     cfg.Render.Width,
			Height:    cfg.Render.Height,
			TickRate:  cfg.Frame.TickRate,
			MaxFrames: cfg.Frame.MaxFrames,
			OnSave: func() error {
				return reload.Scene().Save(w, assets)
			},
			OnResize: func(width, height int) {
				lens := cfg.Render
				lens.Width, lens.Height = width, height
				extract.SetLens(lens)
			},
		}, log)
		if err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		renderer = window
	}

	runner := coresys.NewRunner()
	runner.Register(system.NewEventSystem(bus))
	runner.Register(reload)
	if window != nil {
		runner.Register(system.NewCameraSystem(cam, window))
	}
	if engine != nil {
		runner.Register(system.NewScriptSystem(engine))
	}
	runner.Register(system.NewTransformSystem(w))
	runner.Register(extract)
	runner.Register(system.NewRenderSystem(extract, renderer))
	runner.Register(system.NewCleanupSystem(w))

	printSection("frame loop")
	printReady(fmt.Sprintf("%d systems (tick: %s)", runner.Len(), cfg.Frame.TickRate))
	fmt.Println()

	// 8. Run
	if window != nil {
		err := window.Run(runner)
		log.Info("preview closed", zap.Uint64("frames", runner.Frames()))
		return err
	}
	return runHeadless(runner, cfg.Frame, log)
}

// runHeadless ticks the runner until signalled or until max_frames.
func runHeadless(runner *coresys.Runner, fc config.FrameConfig, log *zap.Logger) error {
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(fc.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runner.Tick(fc.TickRate)
			if fc.MaxFrames > 0 && runner.Frames() >= fc.MaxFrames {
				log.Info("frame budget reached", zap.Uint64("frames", runner.Frames()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()),
				zap.Uint64("frames", runner.Frames()))
			return nil
		}
	}
}

func subscribeLogging(bus *event.Bus, log *zap.Logger) {
	event.Subscribe(bus, func(e event.SceneLoaded) {
		log.Info("scene ready", zap.String("scene", e.Name), zap.Int("entities", e.Entities))
	})
	event.Subscribe(bus, func(e event.SceneUnloaded) {
		log.Debug("scene released", zap.String("scene", e.Name), zap.Int("entities", e.Entities))
	})
	event.Subscribe(bus, func(e event.AssetsReloaded) {
		log.Info("assets ready", zap.String("manifest", e.Path), zap.Int("assets", e.Assets))
	})
	event.Subscribe(bus, func(e event.ScriptReloaded) {
		log.Info("script ready", zap.String("script", e.Path))
	})
	event.Subscribe(bus, func(e event.InstancesTruncated) {
		log.Warn("instance buffer full", zap.Int("visible", e.Visible), zap.Int("cap", e.Cap))
	})
}

func startProfile(mode string) (func(), error) {
	var opt func(*profile.Profile)
	switch mode {
	case "":
		return func() {}, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	case "trace":
		opt = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q", mode)
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
