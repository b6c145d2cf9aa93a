package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/pursuit/sim"
	"golang.org/x/image/colornames"
)

const hudHeight = 64

type viewer struct {
	opts    sim.Options
	sim     *sim.Sim
	scale   float64
	paused  bool
	stepOne bool
	debug   bool

	pauseUI *ebitenui.UI
}

func newViewer(opts sim.Options, scale float64) (*viewer, error) {
	s, err := sim.New(opts)
	if err != nil {
		return nil, err
	}
	v := &viewer{opts: opts, sim: s, scale: scale}
	v.pauseUI = newPauseUI(v)
	return v, nil
}

func (v *viewer) resume() {
	v.paused = false
}

// requestStep advances one tick on the next update while paused.
func (v *viewer) requestStep() {
	v.stepOne = true
}

// reset rebuilds the simulation from the prefabs, keeping the pause state.
func (v *viewer) reset() {
	s, err := sim.New(v.opts)
	if err != nil {
		log.Printf("locoview: reset: %v", err)
		return
	}
	v.sim = s
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		v.debug = !v.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		v.requestStep()
	}
	if v.paused && v.pauseUI != nil {
		v.pauseUI.Update()
	}
	v.advance()
	return nil
}

// advance steps the simulation once unless paused with no step pending.
func (v *viewer) advance() {
	if v.paused && !v.stepOne {
		return
	}
	v.stepOne = false
	v.sim.Step()
}

func (v *viewer) levelSize() (float64, float64) {
	level := v.sim.Level()
	grid := v.sim.Grid()
	return float64(grid.Cols) * level.TileSize, float64(grid.Rows) * level.TileSize
}

// toScreen flips world Y (up) into screen Y (down).
func (v *viewer) toScreen(p cp.Vector) (float32, float32) {
	_, h := v.levelSize()
	return float32(p.X * v.scale), float32((h-p.Y)*v.scale) + hudHeight
}

func (v *viewer) box(screen *ebiten.Image, center cp.Vector, w, h float64, clr color.Color, fill bool) {
	x, y := v.toScreen(cp.Vector{X: center.X - w/2, Y: center.Y + h/2})
	sw, sh := float32(w*v.scale), float32(h*v.scale)
	if fill {
		vector.FillRect(screen, x, y, sw, sh, clr, false)
		return
	}
	vector.StrokeRect(screen, x, y, sw, sh, 1.5, clr, false)
}

func (v *viewer) line(screen *ebiten.Image, a, b cp.Vector, width float32, clr color.Color) {
	x0, y0 := v.toScreen(a)
	x1, y1 := v.toScreen(b)
	vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	level := v.sim.Level()
	grid := v.sim.Grid()
	tile := level.TileSize
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			if !grid.Solid[row*grid.Cols+col] {
				continue
			}
			center := cp.Vector{X: (float64(col) + 0.5) * tile, Y: (float64(row) + 0.5) * tile}
			v.box(screen, center, tile, tile, colornames.Slategray, true)
		}
	}

	snap := v.sim.Snapshot()
	if snap.HasTarget {
		v.box(screen, snap.Target.Position, snap.Target.Width, snap.Target.Height, colornames.Gold, true)
	}

	_, levelH := v.levelSize()
	for _, a := range snap.Agents {
		for i := 1; i < len(a.Path); i++ {
			v.line(screen, a.Path[i-1], a.Path[i], 2, colornames.Lightgreen)
		}
		if a.HasJump {
			clr := colornames.Orange
			if a.Jump.Armed {
				clr = colornames.Red
			}
			v.line(screen, cp.Vector{X: a.Jump.TakeoffX, Y: 0}, cp.Vector{X: a.Jump.TakeoffX, Y: levelH}, 1, clr)
		}
		if a.HasRun {
			v.line(screen, cp.Vector{X: a.RunThrough.X, Y: 0}, cp.Vector{X: a.RunThrough.X, Y: levelH}, 1, colornames.Magenta)
		}

		clr := colornames.Crimson
		if !a.Alive {
			clr = colornames.Dimgray
		} else if a.Context.JumpLocked {
			clr = colornames.Hotpink
		}
		v.box(screen, a.Position, a.Width, a.Height, clr, true)
		if a.Context.Grounded {
			v.box(screen, a.Position, a.Width, a.Height, colornames.White, false)
		}
	}

	if v.debug {
		drawPhysicsDebug(v.sim.Physics(), screen, v.toScreen)
	}

	stats := v.sim.Stats()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s  t=%.2fs  jumps=%d attacks=%d hits=%d  [space] pause [n] step [r] reset [d] debug",
		level.Name, snap.Time, stats.Jumps, stats.Attacks, stats.Hits), 4, 4)
	for i, a := range snap.Agents {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s %s state=%s dir=%.0f grounded=%v locked=%v hp=%.1f",
			a.Entity, a.Kind, a.State, a.Intent.Direction, a.Context.Grounded, a.Context.JumpLocked, a.Health), 4, 20+16*i)
	}
	if v.debug {
		drawAgentDebug(v.sim.World(), screen, 4, 20+16*len(snap.Agents))
	}
	if v.paused && v.pauseUI != nil {
		v.pauseUI.Draw(screen)
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := v.levelSize()
	return int(w * v.scale), int(h*v.scale) + hudHeight
}

func main() {
	levelName := flag.String("level", "step", "level name in prefabs/levels (basename, .yaml optional)")
	enemy := flag.String("enemy", "", "enemy prefab overriding the level's")
	target := flag.String("target", "", "target prefab overriding the level's")
	scale := flag.Float64("scale", 40, "pixels per world unit")
	verbose := flag.Bool("v", false, "log per-tick events")
	flag.Parse()

	v, err := newViewer(sim.Options{Level: *levelName, Enemy: *enemy, Target: *target, Verbose: *verbose}, *scale)
	if err != nil {
		log.Fatal(err)
	}

	w, h := v.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("locoview")
	ebiten.SetTPS(int(math.Round(1 / v.sim.Dt())))

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
