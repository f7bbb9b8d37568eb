// Command boxsim runs a level without a window: a fixed number of steps (or until interrupted), with an
// optional trajectory dump, PNG render of the final state and websocket stream of every step.
//
//	boxsim -level pyramid -steps 600 -dump run.txt -png final.png
//	boxsim -level bridge -steps 0 -serve :8080     # stream to ws://localhost:8080/ws in real time
//	boxsim -level stack -steps 300 -compare run.txt # exit 1 with a diff if the trajectory changed
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxworld/internal/engineconfig"
	"boxworld/internal/env"
	"boxworld/internal/logger"
	"boxworld/internal/physics"
	"boxworld/internal/raster"
	"boxworld/internal/session"
	"boxworld/internal/stream"
	"boxworld/internal/trace"
)

type options struct {
	config  string
	level   string
	steps   int
	dt      float64
	dump    string
	compare string
	every   int
	png     string
	serve   string
	logPath string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.config, "config", engineconfig.EngineConfigPath, "engine preferences file")
	flag.StringVar(&o.level, "level", "", "built-in level or level file (default from preferences)")
	flag.IntVar(&o.steps, "steps", 600, "number of steps, 0 runs until interrupted")
	flag.Float64Var(&o.dt, "dt", 0, "fixed time step (default from preferences)")
	flag.StringVar(&o.dump, "dump", "", "write the trajectory to this file (- for stdout)")
	flag.StringVar(&o.compare, "compare", "", "compare the trajectory with a previous dump")
	flag.IntVar(&o.every, "every", 1, "record every n-th step in the trajectory")
	flag.StringVar(&o.png, "png", "", "render the final state to this PNG file")
	flag.StringVar(&o.serve, "serve", "", "serve snapshots over websocket on this address at /ws, paced in real time")
	flag.StringVar(&o.logPath, "log", "logs/boxsim.txt", "log file, empty for none")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, o); err != nil {
		fmt.Fprintln(os.Stderr, "boxsim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options) error {
	if o.every < 1 {
		return fmt.Errorf("-every must be at least 1, got %d", o.every)
	}
	log := logger.New(o.logPath, 0)
	if err := env.Load(".env"); err != nil {
		return err
	}
	prefs, err := engineconfig.Load(o.config)
	if err != nil {
		return err
	}
	if err := prefs.ApplyEnv(); err != nil {
		return err
	}
	if o.level != "" {
		prefs.Level = o.level
	}
	if o.dt != 0 {
		prefs.TimeStep = o.dt
		prefs.MaxFrameTime = max(prefs.MaxFrameTime, o.dt)
	}
	if err := prefs.Validate(); err != nil {
		return err
	}

	sess := session.New(prefs, log)
	if err := sess.Load(prefs.Level); err != nil {
		return err
	}

	var tick time.Duration
	var hub *stream.Hub
	if o.serve != "" {
		hub = stream.NewHub(log)
		defer hub.Close()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: o.serve, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Logf("serve: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		tick = time.Duration(prefs.TimeStep * float64(time.Second))
		fmt.Printf("streaming %s on ws://%s/ws\n", prefs.Level, o.serve)
	}

	record := o.dump != "" || o.compare != ""
	var traj bytes.Buffer
	each := func(s physics.Snapshot) error {
		if record && s.Step%o.every == 0 {
			if err := trace.Write(&traj, s); err != nil {
				return err
			}
		}
		if hub != nil {
			return hub.Broadcast(s)
		}
		return nil
	}

	start := time.Now()
	err = sess.Run(ctx, o.steps, tick, each)
	if errors.Is(err, context.Canceled) {
		log.Log("interrupted")
		err = nil
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := sess.World()
	st := w.Stats()
	fmt.Printf("%s: %d steps (t=%.3fs) in %v, %d dynamic / %d static bodies, %d joints, %d contacts\n",
		sess.LevelName(), st.Steps, w.Time(), elapsed.Round(time.Millisecond),
		st.DynamicBodies, st.StaticBodies, st.Joints, st.Contacts)

	if o.png != "" {
		opts := raster.DefaultOptions()
		opts.Colors = sess.Instance().Colors
		opts.DrawContacts = prefs.ShowContacts
		img, err := raster.Render(w.Snapshot(), opts)
		if err != nil {
			return err
		}
		if err := raster.Save(o.png, img); err != nil {
			return err
		}
	}

	// Read the previous trajectory before -dump can overwrite the same file.
	var prev []byte
	if o.compare != "" {
		if prev, err = os.ReadFile(o.compare); err != nil {
			return err
		}
	}

	switch o.dump {
	case "":
	case "-":
		if _, err := os.Stdout.Write(traj.Bytes()); err != nil {
			return err
		}
	default:
		if err := os.WriteFile(o.dump, traj.Bytes(), 0644); err != nil {
			return err
		}
	}

	if o.compare != "" {
		diff, err := trace.Diff(o.compare, string(prev), "this run", traj.String())
		if err != nil {
			return err
		}
		if diff != "" {
			fmt.Print(diff)
			return fmt.Errorf("trajectory differs from %s", o.compare)
		}
		fmt.Printf("trajectory matches %s\n", o.compare)
	}
	return nil
}
