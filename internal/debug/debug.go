package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"boxworld/internal/physics"
)

const (
	fpsFontSize   = 20
	fpsPadding    = 12
	fpsLineHeight = fpsFontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
)

var statsColor = rl.NewColor(230, 230, 230, 255)

// Debug holds runtime debugging features (FPS, memory and physics counters). All overlays are off by default.
type Debug struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool
	font         rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	frameCount   uint32
	lastFpsText  string
	lastMemText  string
	lastMemStats runtime.MemStats
	statsLines   []string
}

// New returns a Debug system with all overlays hidden.
func New() *Debug {
	return &Debug{}
}

// SetShowFPS sets whether the FPS counter is drawn (top-right, green).
func (d *Debug) SetShowFPS(show bool) {
	d.ShowFPS = show
}

// SetShowMemAlloc sets whether the memory allocation counter is drawn (top-right, under FPS).
func (d *Debug) SetShowMemAlloc(show bool) {
	d.ShowMemAlloc = show
}

// SetShowStats sets whether the physics counters are drawn (top-left).
func (d *Debug) SetShowStats(show bool) {
	d.ShowStats = show
}

// SetStats records the world state shown by the stats overlay. Call once per frame after stepping.
func (d *Debug) SetStats(level string, st physics.Stats, t float64, paused bool) {
	d.statsLines = StatsLines(level, st, t, paused, d.statsLines[:0])
}

// StatsLines formats the stats overlay into dst.
func StatsLines(level string, st physics.Stats, t float64, paused bool, dst []string) []string {
	state := "running"
	if paused {
		state = "paused"
	}
	return append(dst,
		fmt.Sprintf("%s  [%s]", level, state),
		fmt.Sprintf("step %d  t=%.2fs", st.Steps, t),
		fmt.Sprintf("bodies %d dynamic, %d static", st.DynamicBodies, st.StaticBodies),
		fmt.Sprintf("joints %d", st.Joints),
		fmt.Sprintf("manifolds %d  contacts %d", st.Manifolds, st.Contacts),
	)
}

// SetFont sets the font used to draw FPS/Mem (e.g. same as UI). Zero texture ID = use raylib default.
func (d *Debug) SetFont(font rl.Font) {
	d.font = font
}

// Draw renders any enabled debug overlays. Call after scene and terminal in the draw loop.
// Physics counters are drawn at the top-left when ShowStats is true.
// FPS is drawn at the top-right in green when ShowFPS is true.
// Memory (heap alloc) is drawn under FPS when ShowMemAlloc is true.
// Text is only recomputed every updateInterval frames to limit allocations.
func (d *Debug) Draw() {
	d.frameCount++
	update := (d.frameCount % updateInterval) == 0
	if d.ShowFPS && d.lastFpsText == "" {
		update = true
	}
	if d.ShowMemAlloc && d.lastMemText == "" {
		update = true
	}

	screenW := int32(rl.GetScreenWidth())
	y := int32(fpsPadding)

	if d.ShowFPS {
		if update {
			d.lastFpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		d.drawRight(d.lastFpsText, screenW, y)
		y += fpsLineHeight
	}

	if d.ShowStats {
		for i, line := range d.statsLines {
			d.drawText(line, fpsPadding, int32(fpsPadding+i*fpsLineHeight), statsColor)
		}
	}

	if d.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&d.lastMemStats)
			mb := float64(d.lastMemStats.Alloc) / (1024 * 1024)
			d.lastMemText = fmt.Sprintf("Mem: %.2f MiB", mb)
		}
		d.drawRight(d.lastMemText, screenW, y)
	}
}

// drawRight draws text right-aligned against the screen edge in green.
func (d *Debug) drawRight(text string, screenW, y int32) {
	if text == "" {
		return
	}
	if d.font.Texture.ID != 0 {
		sz := float32(fpsFontSize)
		x := float32(screenW) - rl.MeasureTextEx(d.font, text, sz, 1).X - float32(fpsPadding)
		rl.DrawTextEx(d.font, text, rl.NewVector2(x, float32(y)), sz, 1, rl.Green)
		return
	}
	d.drawText(text, screenW-rl.MeasureText(text, fpsFontSize)-fpsPadding, y, rl.Green)
}

func (d *Debug) drawText(text string, x, y int32, c rl.Color) {
	if d.font.Texture.ID != 0 {
		rl.DrawTextEx(d.font, text, rl.NewVector2(float32(x), float32(y)), float32(fpsFontSize), 1, c)
		return
	}
	rl.DrawText(text, x, y, fpsFontSize, c)
}
