package physics

import "errors"

var (
	// ErrInvalidConfig is returned for bodies, joints, params or time steps that cannot be simulated.
	ErrInvalidConfig = errors.New("physics: invalid configuration")
	// ErrDegenerate is returned when a constraint's effective mass cannot be inverted.
	// The constraint is skipped for that step; the rest of the step still runs.
	ErrDegenerate = errors.New("physics: degenerate constraint")
)
