package commands

import (
	"flag"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"boxworld/internal/level"
	"boxworld/internal/logger"
	"boxworld/internal/session"
)

// RegisterConsole adds the viewer console commands that drive sess. Output goes to log.
func RegisterConsole(r *Registry, sess *session.Session, log *logger.Logger) {
	r.Register("help", "list commands or describe one (help drop)", flag.NewFlagSet("help", flag.ContinueOnError), func() error {
		fs := r.cmds["help"].FlagSet
		if fs.NArg() > 0 {
			log.Log(r.Usage(fs.Arg(0)))
			return nil
		}
		log.Log("commands: " + strings.Join(r.Names(), ", "))
		return nil
	})

	r.Register("pause", "toggle pause", flag.NewFlagSet("pause", flag.ContinueOnError), func() error {
		sess.SetPaused(!sess.Paused())
		if sess.Paused() {
			log.Log("paused")
		} else {
			log.Log("running")
		}
		return nil
	})

	stepFS := flag.NewFlagSet("step", flag.ContinueOnError)
	n := stepFS.Int("n", 1, "number of steps")
	r.Register("step", "pause and run fixed steps", stepFS, func() error {
		if *n < 1 {
			return fmt.Errorf("step: -n must be at least 1, got %d", *n)
		}
		sess.SetPaused(true)
		sess.QueueSteps(*n)
		return nil
	})

	dropFS := flag.NewFlagSet("drop", flag.ContinueOnError)
	shape := dropFS.String("shape", "box", "primitive template")
	x := dropFS.Float64("x", 0, "world x")
	y := dropFS.Float64("y", 10, "world y")
	w := dropFS.Float64("w", 0, "width, 0 for the template size")
	h := dropFS.Float64("h", 0, "height, 0 for the template size")
	mass := dropFS.Float64("mass", session.DefaultDropMass, "mass")
	r.Register("drop", "drop a dynamic body", dropFS, func() error {
		size := mgl64.Vec2{*w, *h}
		if *w == 0 || *h == 0 {
			size = mgl64.Vec2{}
		}
		_, err := sess.Drop(*shape, mgl64.Vec2{*x, *y}, size, *mass)
		return err
	})

	r.Register("reset", "rebuild the current level", flag.NewFlagSet("reset", flag.ContinueOnError), sess.Reset)

	loadFS := flag.NewFlagSet("load", flag.ContinueOnError)
	r.Register("load", "load a built-in level or a level file (load bridge)", loadFS, func() error {
		if loadFS.NArg() != 1 {
			return fmt.Errorf("load: want one level name or path, built-ins: %s", strings.Join(level.Names(), ", "))
		}
		return sess.Load(loadFS.Arg(0))
	})

	r.Register("levels", "list built-in levels", flag.NewFlagSet("levels", flag.ContinueOnError), func() error {
		log.Log("levels: " + strings.Join(level.Names(), ", "))
		return nil
	})

	r.Register("contacts", "toggle contact markers (or: contacts on|off)", flag.NewFlagSet("contacts", flag.ContinueOnError), func() error {
		on, err := toggle(r.cmds["contacts"].FlagSet, sess.Prefs.ShowContacts)
		if err != nil {
			return err
		}
		sess.Prefs.ShowContacts = on
		return nil
	})

	r.Register("grid", "toggle the grid (or: grid on|off)", flag.NewFlagSet("grid", flag.ContinueOnError), func() error {
		on, err := toggle(r.cmds["grid"].FlagSet, sess.Prefs.GridVisible)
		if err != nil {
			return err
		}
		sess.Prefs.GridVisible = on
		return nil
	})

	r.Register("fps", "toggle the FPS counter (or: fps on|off)", flag.NewFlagSet("fps", flag.ContinueOnError), func() error {
		on, err := toggle(r.cmds["fps"].FlagSet, sess.Prefs.ShowFPS)
		if err != nil {
			return err
		}
		sess.Prefs.ShowFPS = on
		return nil
	})

	r.Register("stats", "print world counts (stats on|off toggles the overlay)", flag.NewFlagSet("stats", flag.ContinueOnError), func() error {
		fs := r.cmds["stats"].FlagSet
		if fs.NArg() > 0 {
			on, err := toggle(fs, sess.Prefs.ShowStats)
			if err != nil {
				return err
			}
			sess.Prefs.ShowStats = on
			return nil
		}
		world := sess.World()
		if world == nil {
			return session.ErrNoLevel
		}
		st := world.Stats()
		log.Logf("level %s  step %d  t=%.2fs  bodies %d+%d  joints %d  manifolds %d  contacts %d",
			sess.LevelName(), st.Steps, world.Time(), st.DynamicBodies, st.StaticBodies, st.Joints, st.Manifolds, st.Contacts)
		return nil
	})
}

// toggle flips cur, or sets it from a positional on/off.
func toggle(fs *flag.FlagSet, cur bool) (bool, error) {
	switch fs.Arg(0) {
	case "":
		return !cur, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return cur, fmt.Errorf("%s: want on or off, got %q", fs.Name(), fs.Arg(0))
}
