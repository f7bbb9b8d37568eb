// Command boxworld opens a window on a live physics world. ESC opens the console (try "help").
//
// Mouse: left click drops a box, right or middle drag pans, the wheel zooms.
// Keys: space pauses, N single-steps, R resets the level.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"

	rl "github.com/gen2brain/raylib-go/raylib"

	"boxworld/internal/commands"
	"boxworld/internal/debug"
	"boxworld/internal/engineconfig"
	"boxworld/internal/env"
	"boxworld/internal/fonts"
	"boxworld/internal/graphics"
	"boxworld/internal/logger"
	"boxworld/internal/scene"
	"boxworld/internal/session"
	"boxworld/internal/terminal"
)

func main() {
	configPath := flag.String("config", engineconfig.EngineConfigPath, "engine preferences file")
	levelName := flag.String("level", "", "built-in level or level file (overrides the preferences)")
	scale := flag.Float64("scale", 30, "pixels per meter")
	save := flag.Bool("save", false, "write the preferences back on exit")
	showMem := flag.Bool("mem", false, "show heap usage under the FPS counter")
	fontName := flag.String("font", "", "font under assets/fonts to use for text (default: first found)")
	flag.Parse()

	log := logger.New(logger.DefaultPath, logger.DefaultMaxLines)
	if err := env.Load(".env"); err != nil {
		log.Logf("env: %v", err)
	}
	prefs, err := engineconfig.Load(*configPath)
	if err != nil {
		log.Log(err.Error())
	}
	if err := prefs.ApplyEnv(); err != nil {
		log.Log(err.Error())
	}
	if *levelName != "" {
		prefs.Level = *levelName
	}
	if err := prefs.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "boxworld:", err)
		os.Exit(1)
	}

	sess := session.New(prefs, log)
	if err := sess.Load(prefs.Level); err != nil {
		fmt.Fprintln(os.Stderr, "boxworld:", err)
		os.Exit(1)
	}

	reg := commands.NewRegistry()
	commands.RegisterConsole(reg, sess, log)
	term := terminal.New(log, reg)
	scn := scene.New(mgl64.Vec2{0, 6}, float32(*scale))
	dbg := debug.New()
	dbg.SetShowMemAlloc(*showMem)
	log.Log("press ESC for the console, type help for commands")

	update := func(frameTime float64) {
		term.Update()
		if !term.IsOpen() {
			scn.Update()
			handleInput(sess, scn, log)
		}
		// Step errors are logged by the session; a degenerate constraint only skips that constraint.
		_, _ = sess.Advance(frameTime)

		scn.GridVisible = sess.Prefs.GridVisible
		scn.ShowContacts = sess.Prefs.ShowContacts
		scn.Colors = sess.Instance().Colors
		dbg.SetShowFPS(sess.Prefs.ShowFPS)
		dbg.SetShowStats(sess.Prefs.ShowStats)
		dbg.SetStats(sess.LevelName(), sess.World().Stats(), sess.World().Time(), sess.Paused())
	}
	draw := func() {
		scn.Draw(sess.World().Snapshot())
		dbg.Draw()
		term.Draw()
	}
	setup := func() {
		path, err := fonts.Find(fonts.BaseDirs(), *fontName)
		if err != nil {
			return
		}
		font := rl.LoadFontEx(path, 40, nil)
		rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
		term.SetFont(font)
		dbg.SetFont(font)
	}
	graphics.Run("boxworld", 1280, 720, setup, update, draw)

	if *save {
		if err := engineconfig.Save(*configPath, sess.Prefs); err != nil {
			fmt.Fprintln(os.Stderr, "boxworld:", err)
		}
	}
}

func handleInput(sess *session.Session, scn *scene.Scene, log *logger.Logger) {
	if rl.IsKeyPressed(rl.KeySpace) {
		sess.SetPaused(!sess.Paused())
	}
	if rl.IsKeyPressed(rl.KeyN) {
		sess.SetPaused(true)
		sess.QueueSteps(1)
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := sess.Reset(); err != nil {
			log.Log(err.Error())
		}
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		pos := scn.ScreenToWorld(rl.GetMousePosition())
		if _, err := sess.Drop("", pos, mgl64.Vec2{}, 0); err != nil {
			log.Log(err.Error())
		}
	}
}
