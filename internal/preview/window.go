package preview

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/gatha/engine/internal/camera"
	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	background = color.RGBA{R: 0x12, G: 0x14, B: 0x18, A: 0xff}
	palette    = []color.RGBA{
		colornames.Orange,
		colornames.Skyblue,
		colornames.Yellowgreen,
		colornames.Hotpink,
		colornames.Gold,
		colornames.Mediumpurple,
		colornames.Tomato,
		colornames.Aquamarine,
	}
	keyBindings = map[camera.Key][]ebiten.Key{
		camera.KeyForward: {ebiten.KeyW, ebiten.KeyArrowUp},
		camera.KeyBack:    {ebiten.KeyS, ebiten.KeyArrowDown},
		camera.KeyLeft:    {ebiten.KeyA, ebiten.KeyArrowLeft},
		camera.KeyRight:   {ebiten.KeyD, ebiten.KeyArrowRight},
		camera.KeyUp:      {ebiten.KeySpace},
		camera.KeyDown:    {ebiten.KeyControlLeft},
	}
)

// Options configure the preview window.
type Options struct {
	Title     string
	Width     int
	Height    int
	TickRate  time.Duration
	MaxFrames uint64       // 0 runs until the window closes
	OnSave    func() error // bound to F5, optional
	OnResize  func(width, height int)
}

// Window is an ebiten game that drives the frame runner from ebiten's
// update loop, plots submitted instances as coloured markers and feeds
// mouse and keyboard state to the camera. It implements camera.Input and
// render.Renderer.
type Window struct {
	opts   Options
	runner *coresys.Runner
	log    *zap.Logger

	face   text.Face
	points []render.ScreenPoint
	stats  frameStats

	cursorX, cursorY int
	dx, dy           float32
	looking          bool
}

type frameStats struct {
	batches, instances, visible, truncated int
}

func New(opts Options, log *zap.Logger) (*Window, error) {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("load overlay font: %w", err)
	}
	if opts.Title == "" {
		opts.Title = "gatha"
	}
	return &Window{
		opts: opts,
		log:  log,
		face: &text.GoTextFace{Source: s, Size: 14},
	}, nil
}

// Run opens the window and blocks until it closes. Frames are ticked by
// runner from inside ebiten's update loop.
func (w *Window) Run(runner *coresys.Runner) error {
	w.runner = runner
	ebiten.SetWindowSize(w.opts.Width, w.opts.Height)
	ebiten.SetWindowTitle(w.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if w.opts.TickRate > 0 {
		ebiten.SetTPS(int(time.Second / w.opts.TickRate))
	}
	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("preview window: %w", err)
	}
	return nil
}

func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) && w.opts.OnSave != nil {
		if err := w.opts.OnSave(); err != nil {
			w.log.Error("scene save failed", zap.Error(err))
		} else {
			w.log.Info("scene saved")
		}
	}
	w.pollMouse()

	w.runner.Tick(time.Second / time.Duration(ebiten.TPS()))
	if w.opts.MaxFrames > 0 && w.runner.Frames() >= w.opts.MaxFrames {
		return ebiten.Termination
	}
	return nil
}

// pollMouse records cursor movement while the right button is held.
func (w *Window) pollMouse() {
	x, y := ebiten.CursorPosition()
	held := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	w.dx, w.dy = 0, 0
	if held && w.looking {
		w.dx, w.dy = float32(x-w.cursorX), float32(y-w.cursorY)
	}
	w.looking = held
	w.cursorX, w.cursorY = x, y
}

// MouseDelta implements camera.Input.
func (w *Window) MouseDelta() (float32, float32) { return w.dx, w.dy }

// KeyDown implements camera.Input.
func (w *Window) KeyDown(k camera.Key) bool {
	for _, key := range keyBindings[k] {
		if ebiten.IsKeyPressed(key) {
			return true
		}
	}
	return false
}

// Submit implements render.Renderer. It copies what Draw needs, since the
// frame is only valid until the next extraction.
func (w *Window) Submit(f *render.Frame) {
	w.points = render.ScreenPoints(f, w.opts.Width, w.opts.Height, w.points)
	w.stats = frameStats{
		batches:   len(f.Batches),
		instances: f.Instances(),
		visible:   f.Visible,
		truncated: f.Truncated,
	}
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	for _, p := range w.points {
		size := 6 - 2*p.Depth // nearer markers are larger
		vector.FillRect(screen, p.X-size/2, p.Y-size/2, size, size, palette[int(p.AssetID)%len(palette)], false)
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 8)
	op.ColorScale.ScaleWithColor(colornames.White)
	overlay := fmt.Sprintf("frame %d  batches %d  instances %d/%d  truncated %d  tps %.0f",
		w.runner.Frames(), w.stats.batches, w.stats.instances, w.stats.visible, w.stats.truncated, ebiten.ActualTPS())
	text.Draw(screen, overlay, w.face, op)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth <= 0 || outsideHeight <= 0 {
		return w.opts.Width, w.opts.Height
	}
	if outsideWidth != w.opts.Width || outsideHeight != w.opts.Height {
		w.opts.Width, w.opts.Height = outsideWidth, outsideHeight
		if w.opts.OnResize != nil {
			w.opts.OnResize(outsideWidth, outsideHeight)
		}
	}
	return w.opts.Width, w.opts.Height
}
