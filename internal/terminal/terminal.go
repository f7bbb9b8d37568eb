package terminal

import (
	"strings"
	"unicode/utf8"

	rl "github.com/gen2brain/raylib-go/raylib"

	"boxworld/internal/commands"
	"boxworld/internal/logger"
)

const (
	BarHeight = 40
	prompt    = "> "
	fontSize  = 20
	padding   = 8
	// Number of log lines drawn above the input bar when terminal is open.
	maxLinesOnScreen = 14
	lineHeight       = fontSize + 4
)

var (
	// Reused every frame when drawing the terminal bar to avoid per-frame color allocations.
	termBarColor    = rl.NewColor(40, 40, 40, 255)
	termLineColor   = rl.NewColor(80, 80, 80, 255)
	termChatBgColor = rl.NewColor(24, 24, 24, 240)
)

// Terminal is the console input bar at the bottom of the screen. It is shown/hidden with ESC.
// When open, it handles typing and drawing; when closed, nothing is drawn and mouse input goes to the scene.
// Submitted lines are echoed to the log and run through the command registry; errors are logged.
// Up and down walk through previously submitted lines.
type Terminal struct {
	log      *logger.Logger
	reg      *commands.Registry
	inputBuf string
	open     bool
	font     rl.Font // optional; when set, Draw uses DrawTextEx instead of default font
	history  []string
	histPos  int
	scroll   int // log lines hidden below the visible window
}

// New returns a new Terminal that logs lines and runs them through reg. It starts closed (hidden); press ESC to open.
func New(log *logger.Logger, reg *commands.Registry) *Terminal {
	return &Terminal{log: log, reg: reg}
}

// IsOpen returns true when the terminal is visible and capturing keyboard input.
func (t *Terminal) IsOpen() bool {
	return t.open
}

// SetFont sets the font used to draw the terminal bar (e.g. same as UI). Zero texture ID = use raylib default.
func (t *Terminal) SetFont(font rl.Font) {
	t.font = font
}

// Update handles ESC (toggle open/closed), and when open: typing, paste, history, backspace, enter. Call once per frame.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		t.open = !t.open
	}
	if !t.open {
		return
	}
	// Paste: Ctrl+V (Windows/Linux) or Cmd+V (macOS)
	if rl.IsKeyPressed(rl.KeyV) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) || rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)) {
		if pasted := rl.GetClipboardText(); pasted != "" {
			t.inputBuf += pasted
		}
	} else {
		for {
			c := rl.GetCharPressed()
			if c == 0 {
				break
			}
			t.inputBuf += string(rune(c))
		}
	}
	if rl.IsKeyPressed(rl.KeyPageUp) {
		t.scroll += maxLinesOnScreen / 2
	}
	if rl.IsKeyPressed(rl.KeyPageDown) {
		t.scroll -= maxLinesOnScreen / 2
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		t.scroll += int(wheel)
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		t.recall(-1)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		t.recall(1)
	}
	if (rl.IsKeyPressed(rl.KeyBackspace) || rl.IsKeyPressedRepeat(rl.KeyBackspace)) && len(t.inputBuf) > 0 {
		_, size := utf8.DecodeLastRuneInString(t.inputBuf)
		t.inputBuf = t.inputBuf[:len(t.inputBuf)-size]
	}
	if (rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter)) && t.inputBuf != "" {
		line := t.inputBuf
		t.inputBuf = ""
		t.Submit(line)
	}
}

// Submit runs one console line as if it had been typed.
func (t *Terminal) Submit(line string) {
	t.log.Log(prompt + line)
	if n := len(t.history); n == 0 || t.history[n-1] != line {
		t.history = append(t.history, line)
	}
	t.histPos = len(t.history)
	t.scroll = 0

	args, ok := commands.Parse(line)
	if !ok {
		return
	}
	if err := t.reg.Execute(args); err != nil {
		t.log.Log(err.Error())
	}
}

// recall moves through the history by dir (-1 older, +1 newer). Past the newest entry the input is cleared.
func (t *Terminal) recall(dir int) {
	if len(t.history) == 0 {
		return
	}
	t.histPos = max(0, min(len(t.history), t.histPos+dir))
	if t.histPos == len(t.history) {
		t.inputBuf = ""
		return
	}
	t.inputBuf = t.history[t.histPos]
}

// visibleRange returns the slice [start, end) of n log lines to show in rows rows when scroll lines
// are hidden below. scroll is clamped to what the log can show.
func visibleRange(n, rows, scroll int) (start, end, clamped int) {
	clamped = max(0, min(scroll, n-rows))
	end = n - clamped
	start = max(0, end-rows)
	return start, end, clamped
}

// Draw draws the terminal bar at the bottom when open, and the log lines above it.
// Echoed input lines are white, everything else light gray.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	screenW := int(rl.GetScreenWidth())
	screenH := int(rl.GetScreenHeight())
	barY := screenH - BarHeight

	logHeight := maxLinesOnScreen * lineHeight
	logY := barY - logHeight
	if logY < 0 {
		logHeight = barY
		logY = 0
	}
	if logHeight > 0 {
		rl.DrawRectangle(0, int32(logY), int32(screenW), int32(logHeight), termChatBgColor)
	}
	lines := t.log.Lines()
	var start, end int
	start, end, t.scroll = visibleRange(len(lines), maxLinesOnScreen, t.scroll)
	for i := start; i < end; i++ {
		line := lines[i]
		if len(line) > 200 {
			line = line[:197] + "..."
		}
		c := rl.LightGray
		if strings.Contains(line, "] "+prompt) {
			c = rl.White
		}
		t.drawText(line, padding, logY+(i-start)*lineHeight+padding, c)
	}
	if t.scroll > 0 {
		t.drawText("more below (PageDown)", screenW-240, barY-lineHeight, rl.Gray)
	}

	// Input bar
	rl.DrawRectangle(0, int32(barY), int32(screenW), int32(BarHeight), termBarColor)
	rl.DrawRectangle(0, int32(barY), int32(screenW), 1, termLineColor)
	t.drawText(prompt+t.inputBuf+"|", padding, barY+padding, rl.White)
}

func (t *Terminal) drawText(text string, x, y int, c rl.Color) {
	if t.font.Texture.ID != 0 {
		rl.DrawTextEx(t.font, text, rl.NewVector2(float32(x), float32(y)), float32(fontSize), 1, c)
		return
	}
	rl.DrawText(text, int32(x), int32(y), int32(fontSize), c)
}
