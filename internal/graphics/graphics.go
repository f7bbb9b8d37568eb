package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

var background = rl.NewColor(24, 26, 32, 255)

// Run opens a resizable window and runs the main loop until it is closed. setup (optional) runs once
// after the window exists, for GPU resources such as fonts. Each frame it calls update with the last
// frame's duration in seconds (physics, input), then clears the screen and calls draw.
// ESC is left to the console and does not close the window.
func Run(title string, width, height int32, setup func(), update func(frameTime float64), draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(width, height, title)
	defer rl.CloseWindow()

	if setup != nil {
		setup()
	}

	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		update(float64(rl.GetFrameTime()))

		rl.BeginDrawing()
		rl.ClearBackground(background)
		draw()
		rl.EndDrawing()
	}
}
