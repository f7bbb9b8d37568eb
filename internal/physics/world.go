package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// World owns bodies, joints and the contact manifolds of the last step, and advances them with Step.
// A World is not safe for concurrent use: add bodies and joints, read state and call Step from one
// goroutine. Collections are iterated in insertion order, so identical inputs give identical results.
type World struct {
	params Params

	dynamic []*Body
	static  []*Body
	joints  []*Joint
	ids     map[BodyID]*Body

	// manifolds holds the last step's manifolds in detection order; byPair indexes them for the
	// warm start of the next step.
	manifolds []*Manifold
	byPair    map[PairKey]*Manifold

	steps int
	time  float64
}

// NewWorld returns an empty world using params.
func NewWorld(params Params) (*World, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &World{
		params: params,
		ids:    make(map[BodyID]*Body),
		byPair: make(map[PairKey]*Manifold),
	}, nil
}

// Params returns the world's tuning.
func (w *World) Params() Params { return w.params }

// AddDynamicBody adds a box with full extents width. mass must be positive.
func (w *World) AddDynamicBody(id BodyID, position mgl64.Vec2, rotation float64, width mgl64.Vec2, mass float64) (*Body, error) {
	if !(mass > 0) {
		return nil, fmt.Errorf("%w: dynamic body %d mass must be positive, got %g", ErrInvalidConfig, id, mass)
	}
	shape, err := Box(width)
	if err != nil {
		return nil, fmt.Errorf("body %d: %w", id, err)
	}
	return w.addBody(id, shape, position, rotation, mass)
}

// AddStaticBody adds an immovable box with full extents width.
func (w *World) AddStaticBody(id BodyID, position mgl64.Vec2, rotation float64, width mgl64.Vec2) (*Body, error) {
	shape, err := Box(width)
	if err != nil {
		return nil, fmt.Errorf("body %d: %w", id, err)
	}
	return w.addBody(id, shape, position, rotation, 0)
}

// AddDynamicPolygon adds a convex polygon body. vertices are counter-clockwise in the body frame;
// position is where the polygon's centroid is placed.
func (w *World) AddDynamicPolygon(id BodyID, position mgl64.Vec2, rotation float64, vertices []mgl64.Vec2, mass float64) (*Body, error) {
	if !(mass > 0) {
		return nil, fmt.Errorf("%w: dynamic body %d mass must be positive, got %g", ErrInvalidConfig, id, mass)
	}
	shape, err := Polygon(vertices...)
	if err != nil {
		return nil, fmt.Errorf("body %d: %w", id, err)
	}
	return w.addBody(id, shape, position, rotation, mass)
}

// AddStaticPolygon adds an immovable convex polygon body.
func (w *World) AddStaticPolygon(id BodyID, position mgl64.Vec2, rotation float64, vertices []mgl64.Vec2) (*Body, error) {
	shape, err := Polygon(vertices...)
	if err != nil {
		return nil, fmt.Errorf("body %d: %w", id, err)
	}
	return w.addBody(id, shape, position, rotation, 0)
}

func (w *World) addBody(id BodyID, shape Shape, position mgl64.Vec2, rotation, mass float64) (*Body, error) {
	if _, ok := w.ids[id]; ok {
		return nil, fmt.Errorf("%w: duplicate body id %d", ErrInvalidConfig, id)
	}
	b, err := newBody(id, shape, position, rotation, mass, w.params.DefaultFriction)
	if err != nil {
		return nil, err
	}
	w.ids[id] = b
	if b.IsStatic() {
		w.static = append(w.static, b)
	} else {
		w.dynamic = append(w.dynamic, b)
	}
	return b, nil
}

// AddJoint pins a and b together at the world point anchor. Both bodies must belong to the world,
// be distinct, and at least one must be dynamic.
func (w *World) AddJoint(a, b *Body, anchor mgl64.Vec2) (*Joint, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: joint needs two bodies", ErrInvalidConfig)
	}
	if a == b {
		return nil, fmt.Errorf("%w: joint body %d is attached to itself", ErrInvalidConfig, a.id)
	}
	if w.ids[a.id] != a || w.ids[b.id] != b {
		return nil, fmt.Errorf("%w: joint bodies %d and %d must belong to this world", ErrInvalidConfig, a.id, b.id)
	}
	if a.IsStatic() && b.IsStatic() {
		return nil, fmt.Errorf("%w: joint between static bodies %d and %d", ErrInvalidConfig, a.id, b.id)
	}
	if !finite(anchor[0]) || !finite(anchor[1]) {
		return nil, fmt.Errorf("%w: joint anchor must be finite", ErrInvalidConfig)
	}
	j := newJoint(a, b, anchor, w.params)
	w.joints = append(w.joints, j)
	return j, nil
}

// Step advances the simulation by dt seconds. The order of the stages is fixed: collision
// detection with warm start, gravity, force integration, pre-steps, the relaxation sweeps, then
// velocity integration.
//
// Constraints that turn out degenerate are skipped for this step; the step still completes and the
// returned error wraps ErrDegenerate for each of them.
func (w *World) Step(dt float64) error {
	if !(dt > 0) || !finite(dt) {
		return fmt.Errorf("%w: time step must be positive and finite, got %g", ErrInvalidConfig, dt)
	}
	invDt := 1 / dt

	w.collisionDetection()

	for _, b := range w.dynamic {
		b.ApplyForce(w.params.Gravity.Mul(b.mass))
	}
	for _, b := range w.dynamic {
		b.integrateForces(dt)
	}

	var errs []error
	for _, m := range w.manifolds {
		if err := m.PreStep(invDt, w.params); err != nil {
			errs = append(errs, err)
		}
	}
	for _, j := range w.joints {
		if err := j.PreStep(invDt); err != nil {
			errs = append(errs, err)
		}
	}

	for i := 0; i < w.params.Iterations; i++ {
		for _, m := range w.manifolds {
			m.ApplyImpulse()
		}
		for _, j := range w.joints {
			j.ApplyImpulse()
		}
	}

	for _, b := range w.dynamic {
		b.integrateVelocities(dt)
	}

	w.steps++
	w.time += dt
	return errors.Join(errs...)
}

// collisionDetection tests every dynamic-dynamic and dynamic-static pair and replaces the manifolds.
func (w *World) collisionDetection() {
	manifolds := make([]*Manifold, 0, len(w.manifolds))
	byPair := make(map[PairKey]*Manifold, len(w.byPair))

	collide := func(a, b *Body) {
		m := Collide(a, b)
		if m == nil {
			return
		}
		key := m.Key()
		m.Update(w.byPair[key])
		manifolds = append(manifolds, m)
		byPair[key] = m
	}

	for i := 0; i < len(w.dynamic); i++ {
		for j := i + 1; j < len(w.dynamic); j++ {
			collide(w.dynamic[i], w.dynamic[j])
		}
	}
	for _, d := range w.dynamic {
		for _, s := range w.static {
			collide(d, s)
		}
	}

	w.manifolds = manifolds
	w.byPair = byPair
}

// Body returns the body with the given id, or nil.
func (w *World) Body(id BodyID) *Body { return w.ids[id] }

// Bodies returns dynamic bodies followed by static bodies, each in insertion order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.dynamic)+len(w.static))
	out = append(out, w.dynamic...)
	return append(out, w.static...)
}

// DynamicBodies returns the dynamic bodies in insertion order.
func (w *World) DynamicBodies() []*Body { return append([]*Body(nil), w.dynamic...) }

// StaticBodies returns the static bodies in insertion order.
func (w *World) StaticBodies() []*Body { return append([]*Body(nil), w.static...) }

// Joints returns the joints in insertion order.
func (w *World) Joints() []*Joint { return append([]*Joint(nil), w.joints...) }

// Manifolds returns the manifolds found by the last step, in detection order.
func (w *World) Manifolds() []*Manifold { return append([]*Manifold(nil), w.manifolds...) }

// Manifold returns the last step's manifold for the pair, or nil.
func (w *World) Manifold(a, b BodyID) *Manifold { return w.byPair[MakePairKey(a, b)] }

// StepCount returns the number of completed steps.
func (w *World) StepCount() int { return w.steps }

// Time returns the simulated time in seconds.
func (w *World) Time() float64 { return w.time }
