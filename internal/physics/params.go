package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Params holds the solver tuning used by a World. The defaults reproduce the reference tuning;
// they are plain numbers rather than derived values, so change them only together with the tests.
type Params struct {
	// Gravity is the acceleration applied to every dynamic body as a force of Gravity*mass.
	Gravity mgl64.Vec2 `json:"gravity"`
	// Iterations is the fixed number of relaxation sweeps per step. There is no convergence check.
	Iterations int `json:"iterations"`
	// ContactBiasFactor scales the Baumgarte velocity bias for penetrating contacts.
	ContactBiasFactor float64 `json:"contact_bias_factor"`
	// AllowedPenetration is the slop below which penetration is not corrected.
	AllowedPenetration float64 `json:"allowed_penetration"`
	// JointBiasFactor scales the Baumgarte velocity bias pulling joint anchors together.
	JointBiasFactor float64 `json:"joint_bias_factor"`
	// JointSoftness is added to the joint mass matrix diagonal and damps the accumulated impulse.
	JointSoftness float64 `json:"joint_softness"`
	// DefaultFriction is assigned to new bodies; manifold friction is sqrt(fA*fB).
	DefaultFriction float64 `json:"default_friction"`
	// SingularThreshold is the smallest effective inverse mass a contact is solved with (absolute),
	// and the smallest |det K| / (K00*K11) a joint is solved with (relative to its diagonal).
	SingularThreshold float64 `json:"singular_threshold"`
}

// DefaultParams returns the reference tuning: gravity -10, 6 iterations, contact bias 0.2 with 0.01 slop,
// joint bias 0.1 with softness 0.001, friction 0.2.
func DefaultParams() Params {
	return Params{
		Gravity:            mgl64.Vec2{0, -10},
		Iterations:         6,
		ContactBiasFactor:  0.2,
		AllowedPenetration: 0.01,
		JointBiasFactor:    0.1,
		JointSoftness:      0.001,
		DefaultFriction:    0.2,
		SingularThreshold:  1e-12,
	}
}

// Validate reports the first field that cannot drive a stable step.
func (p Params) Validate() error {
	switch {
	case !finite(p.Gravity[0]) || !finite(p.Gravity[1]):
		return fmt.Errorf("%w: gravity must be finite", ErrInvalidConfig)
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidConfig, p.Iterations)
	case p.ContactBiasFactor < 0 || !finite(p.ContactBiasFactor):
		return fmt.Errorf("%w: contact bias factor must be >= 0", ErrInvalidConfig)
	case p.AllowedPenetration < 0 || !finite(p.AllowedPenetration):
		return fmt.Errorf("%w: allowed penetration must be >= 0", ErrInvalidConfig)
	case p.JointBiasFactor < 0 || !finite(p.JointBiasFactor):
		return fmt.Errorf("%w: joint bias factor must be >= 0", ErrInvalidConfig)
	case p.JointSoftness < 0 || !finite(p.JointSoftness):
		return fmt.Errorf("%w: joint softness must be >= 0", ErrInvalidConfig)
	case p.DefaultFriction < 0 || !finite(p.DefaultFriction):
		return fmt.Errorf("%w: default friction must be >= 0", ErrInvalidConfig)
	case p.SingularThreshold <= 0 || !finite(p.SingularThreshold):
		return fmt.Errorf("%w: singular threshold must be > 0", ErrInvalidConfig)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
