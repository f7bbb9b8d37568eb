// Package session owns the live simulation driven by the viewer and the headless runner: the current
// level, its world and the pause/single-step state.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"boxworld/internal/engineconfig"
	"boxworld/internal/level"
	"boxworld/internal/logger"
	"boxworld/internal/physics"
)

// ErrNoLevel is returned by operations that need a loaded level.
var ErrNoLevel = errors.New("session: no level loaded")

// DefaultDropMass is used by Drop when no mass is given.
const DefaultDropMass = 1.0

// Session is not safe for concurrent use; drive it from the frame loop.
type Session struct {
	// Prefs are read on every Advance, so toggles take effect on the next frame.
	Prefs engineconfig.EnginePrefs

	log     *logger.Logger
	name    string
	inst    *level.Instance
	paused  bool
	pending int
}

// New returns a session with no level loaded. log may be nil.
func New(prefs engineconfig.EnginePrefs, log *logger.Logger) *Session {
	return &Session{Prefs: prefs, log: log}
}

func (s *Session) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Logf(format, args...)
	}
}

// Load builds the built-in level or level file called name, replacing the current world.
// On error the current world is kept.
func (s *Session) Load(name string) error {
	lvl, err := level.Open(name)
	if err != nil {
		return err
	}
	inst, err := level.Build(lvl, s.Prefs.Physics)
	if err != nil {
		return err
	}
	s.name, s.inst, s.pending = name, inst, 0
	st := inst.World.Stats()
	s.logf("loaded level %q: %d dynamic, %d static, %d joints", lvl.Name, st.DynamicBodies, st.StaticBodies, st.Joints)
	return nil
}

// Reset rebuilds the current level from scratch.
func (s *Session) Reset() error {
	if s.inst == nil {
		return ErrNoLevel
	}
	return s.Load(s.name)
}

// LevelName is the name last passed to Load.
func (s *Session) LevelName() string { return s.name }

// Instance returns the built level, or nil before the first Load.
func (s *Session) Instance() *level.Instance { return s.inst }

// World returns the live world, or nil before the first Load.
func (s *Session) World() *physics.World {
	if s.inst == nil {
		return nil
	}
	return s.inst.World
}

// Paused reports whether Advance only runs queued single steps.
func (s *Session) Paused() bool { return s.paused }

// SetPaused pauses or resumes the simulation. Resuming drops queued single steps.
func (s *Session) SetPaused(paused bool) {
	s.paused = paused
	if !paused {
		s.pending = 0
	}
}

// QueueSteps schedules n fixed steps to run while paused, one per Advance.
func (s *Session) QueueSteps(n int) {
	if n > 0 {
		s.pending += n
	}
}

// Advance runs at most one step for a frame that took frameTime seconds. Unpaused it steps by
// Prefs.FrameStep(frameTime); paused it runs one queued step of Prefs.TimeStep. It reports whether the
// world stepped. A degenerate constraint still counts as a step and its error is returned.
func (s *Session) Advance(frameTime float64) (bool, error) {
	if s.inst == nil {
		return false, ErrNoLevel
	}
	var dt float64
	switch {
	case !s.paused:
		dt = s.Prefs.FrameStep(frameTime)
	case s.pending > 0:
		s.pending--
		dt = s.Prefs.TimeStep
	default:
		return false, nil
	}
	if err := s.inst.World.Step(dt); err != nil {
		s.logf("step %d: %v", s.inst.World.StepCount(), err)
		return errors.Is(err, physics.ErrDegenerate), err
	}
	return true, nil
}

// Drop adds a dynamic body using a primitive template (empty means box) at pos. A zero size uses the
// template's size and mass <= 0 uses DefaultDropMass. The body gets the next free id.
func (s *Session) Drop(shape string, pos, size mgl64.Vec2, mass float64) (*physics.Body, error) {
	if s.inst == nil {
		return nil, ErrNoLevel
	}
	if mass <= 0 {
		mass = DefaultDropMass
	}
	def := level.BodyDef{
		ID:       int(s.nextID()),
		Shape:    shape,
		Position: [2]float64(pos),
		Size:     [2]float64(size),
		Mass:     mass,
	}
	b, err := s.inst.AddBody(def)
	if err != nil {
		return nil, fmt.Errorf("drop: %w", err)
	}
	s.logf("dropped %s %d at (%.2f, %.2f)", shapeName(shape), b.ID(), pos.X(), pos.Y())
	return b, nil
}

func (s *Session) nextID() physics.BodyID {
	var next physics.BodyID = 1
	for _, b := range s.inst.World.Bodies() {
		next = max(next, b.ID()+1)
	}
	return next
}

func shapeName(shape string) string {
	if shape == "" {
		return "box"
	}
	return shape
}

// Run advances the world by Prefs.TimeStep steps times (forever when steps <= 0) and calls each with a
// snapshot after every step. When tick > 0 steps are paced by a ticker, otherwise they run back to back.
// Run stops with ctx.Err() when ctx is done. Degenerate constraints are logged and the run continues.
func (s *Session) Run(ctx context.Context, steps int, tick time.Duration, each func(physics.Snapshot) error) error {
	if s.inst == nil {
		return ErrNoLevel
	}
	var tc <-chan time.Time
	if tick > 0 {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		tc = ticker.C
	}
	w := s.inst.World
	for i := 0; steps <= 0 || i < steps; i++ {
		if tc != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tc:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.Step(s.Prefs.TimeStep); err != nil {
			if !errors.Is(err, physics.ErrDegenerate) {
				return err
			}
			s.logf("step %d: %v", w.StepCount(), err)
		}
		if each != nil {
			if err := each(w.Snapshot()); err != nil {
				return err
			}
		}
	}
	return nil
}
