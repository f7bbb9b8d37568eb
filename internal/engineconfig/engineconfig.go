package engineconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"boxworld/internal/env"
	"boxworld/internal/physics"
)

// EngineConfigPath is the path to the engine config file, relative to the process working directory.
const EngineConfigPath = "config/engine.json"

// EnginePrefs holds viewer preferences and the physics tuning. Persisted across runs.
// Level files are separate and handled by the level package.
type EnginePrefs struct {
	ShowFPS      bool `json:"show_fps"`
	ShowStats    bool `json:"show_stats"`
	ShowContacts bool `json:"show_contacts"`
	GridVisible  bool `json:"grid_visible"`
	// TimeStep is the fixed dt used by the headless runner and by the viewer's single-step command.
	TimeStep float64 `json:"time_step"`
	// MaxFrameTime caps the variable dt the viewer feeds to Step.
	MaxFrameTime float64 `json:"max_frame_time"`
	// Level is a built-in level name or a path to a YAML level file.
	Level   string         `json:"level"`
	Physics physics.Params `json:"physics"`
}

// Default returns default preferences (debug overlays off, grid on, reference physics tuning).
func Default() EnginePrefs {
	return EnginePrefs{
		ShowFPS:      false,
		ShowStats:    false,
		ShowContacts: true,
		GridVisible:  true,
		TimeStep:     1.0 / 60,
		MaxFrameTime: 1.0 / 30,
		Level:        "pyramid",
		Physics:      physics.DefaultParams(),
	}
}

// Load reads preferences from path. Fields missing from the file keep their defaults. If the file is
// missing, returns Default() and does not create a file. A file that does not parse returns Default()
// together with the error.
func Load(path string) (EnginePrefs, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("engineconfig: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("engineconfig: parse %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path, creating the directory if needed.
func Save(path string, p EnginePrefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from BOXWORLD_* environment variables (see package env).
func (p *EnginePrefs) ApplyEnv() error {
	var errs []error
	float := func(key string, dst *float64) {
		v, ok, err := env.Float(key)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok, err := env.Bool(key)
		if err != nil {
			errs = append(errs, err)
		} else if ok {
			*dst = v
		}
	}

	boolean("SHOW_FPS", &p.ShowFPS)
	boolean("SHOW_STATS", &p.ShowStats)
	boolean("SHOW_CONTACTS", &p.ShowContacts)
	boolean("GRID", &p.GridVisible)
	float("DT", &p.TimeStep)
	float("MAX_FRAME_TIME", &p.MaxFrameTime)
	if s, ok := env.String("LEVEL"); ok {
		p.Level = s
	}

	float("GRAVITY_X", &p.Physics.Gravity[0])
	float("GRAVITY_Y", &p.Physics.Gravity[1])
	if n, ok, err := env.Int("ITERATIONS"); err != nil {
		errs = append(errs, err)
	} else if ok {
		p.Physics.Iterations = n
	}
	float("CONTACT_BIAS", &p.Physics.ContactBiasFactor)
	float("ALLOWED_PENETRATION", &p.Physics.AllowedPenetration)
	float("JOINT_BIAS", &p.Physics.JointBiasFactor)
	float("JOINT_SOFTNESS", &p.Physics.JointSoftness)
	float("FRICTION", &p.Physics.DefaultFriction)
	return errors.Join(errs...)
}

// Validate checks the time step settings and the physics tuning.
func (p EnginePrefs) Validate() error {
	if !(p.TimeStep > 0) {
		return fmt.Errorf("%w: time_step must be positive, got %g", physics.ErrInvalidConfig, p.TimeStep)
	}
	if !(p.MaxFrameTime >= p.TimeStep) {
		return fmt.Errorf("%w: max_frame_time %g must be at least time_step %g", physics.ErrInvalidConfig, p.MaxFrameTime, p.TimeStep)
	}
	return p.Physics.Validate()
}

// FrameStep returns the dt the viewer should use for a frame that took frameTime seconds.
func (p EnginePrefs) FrameStep(frameTime float64) float64 {
	if frameTime <= 0 {
		return p.TimeStep
	}
	return min(frameTime, p.MaxFrameTime)
}
