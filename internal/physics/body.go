package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyID identifies a body for the lifetime of a World. IDs key contact manifolds across steps.
type BodyID int

// Body is a 2D rigid body with a convex polygon shape. Static bodies are ordinary bodies whose
// inverse mass and inverse inertia are zero; they collide and take part in solving but never move.
//
// World-space vertices and normals are cached and refreshed whenever the transform changes.
// A body must only be mutated between steps.
type Body struct {
	id    BodyID
	shape Shape

	position        mgl64.Vec2
	rotation        float64
	velocity        mgl64.Vec2
	angularVelocity float64
	force           mgl64.Vec2
	torque          float64

	mass        float64
	invMass     float64
	invI        float64
	friction    float64
	restitution float64

	vertices []mgl64.Vec2
	normals  []mgl64.Vec2
}

// newBody returns a body with the given shape and transform. mass == 0 makes it static;
// otherwise mass must be positive and finite.
func newBody(id BodyID, shape Shape, position mgl64.Vec2, rotation, mass, friction float64) (*Body, error) {
	if !finite(position[0]) || !finite(position[1]) || !finite(rotation) {
		return nil, fmt.Errorf("%w: body %d transform must be finite", ErrInvalidConfig, id)
	}
	if mass < 0 || !finite(mass) {
		return nil, fmt.Errorf("%w: body %d mass must be positive, got %g", ErrInvalidConfig, id, mass)
	}
	b := &Body{
		id:       id,
		shape:    shape,
		position: position,
		rotation: rotation,
		mass:     mass,
		friction: friction,
		vertices: make([]mgl64.Vec2, len(shape.vertices)),
		normals:  make([]mgl64.Vec2, len(shape.normals)),
	}
	if mass > 0 {
		b.invMass = 1 / mass
		b.invI = b.invMass / shape.inertia
	}
	b.transformShape()
	return b, nil
}

// ID returns the body's identifier.
func (b *Body) ID() BodyID { return b.id }

// IsStatic reports whether the body has infinite mass.
func (b *Body) IsStatic() bool { return b.invMass == 0 }

// Position returns the world position of the body's centroid.
func (b *Body) Position() mgl64.Vec2 { return b.position }

// Rotation returns the body's rotation in radians.
func (b *Body) Rotation() float64 { return b.rotation }

// Velocity returns the linear velocity.
func (b *Body) Velocity() mgl64.Vec2 { return b.velocity }

// AngularVelocity returns the angular velocity in radians per second.
func (b *Body) AngularVelocity() float64 { return b.angularVelocity }

// Width returns the full extent of the body's local bounding box (w0, w1 for boxes).
func (b *Body) Width() mgl64.Vec2 { return b.shape.width }

// Mass returns the mass; 0 for static bodies.
func (b *Body) Mass() float64 { return b.mass }

// InvMass returns 1/mass, or 0 for static bodies.
func (b *Body) InvMass() float64 { return b.invMass }

// InvInertia returns the inverse rotational inertia about the centroid, or 0 for static bodies.
func (b *Body) InvInertia() float64 { return b.invI }

// Friction returns the body's Coulomb friction coefficient.
func (b *Body) Friction() float64 { return b.friction }

// Restitution returns the body's restitution. It is carried for renderers and tools; the solver
// treats every contact as inelastic.
func (b *Body) Restitution() float64 { return b.restitution }

// Vertices returns a copy of the world-space polygon corners (counter-clockwise).
func (b *Body) Vertices() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(b.vertices))
	copy(out, b.vertices)
	return out
}

// Normals returns a copy of the world-space outward edge normals.
func (b *Body) Normals() []mgl64.Vec2 {
	out := make([]mgl64.Vec2, len(b.normals))
	copy(out, b.normals)
	return out
}

// SetVelocity sets the linear velocity. Ignored for static bodies.
func (b *Body) SetVelocity(v mgl64.Vec2) {
	if b.IsStatic() {
		return
	}
	b.velocity = v
}

// SetAngularVelocity sets the angular velocity. Ignored for static bodies.
func (b *Body) SetAngularVelocity(w float64) {
	if b.IsStatic() {
		return
	}
	b.angularVelocity = w
}

// SetFriction sets the friction coefficient used for manifolds created from the next step on.
func (b *Body) SetFriction(f float64) error {
	if f < 0 || !finite(f) {
		return fmt.Errorf("%w: body %d friction must be >= 0, got %g", ErrInvalidConfig, b.id, f)
	}
	b.friction = f
	return nil
}

// LocalPosition maps a world point into the body frame.
func (b *Body) LocalPosition(worldPt mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Rotate2D(-b.rotation).Mul2x1(worldPt.Sub(b.position))
}

// WorldPosition maps a body-frame point into world space.
func (b *Body) WorldPosition(localPt mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Rotate2D(b.rotation).Mul2x1(localPt).Add(b.position)
}

// RelativeVelocity returns the velocity of the body at world point pt.
func (b *Body) RelativeVelocity(pt mgl64.Vec2) mgl64.Vec2 {
	r := pt.Sub(b.position)
	return b.velocity.Add(perp(r).Mul(b.angularVelocity))
}

// ApplyForce accumulates a force through the centroid. It takes effect on the next integration.
func (b *Body) ApplyForce(f mgl64.Vec2) {
	b.force = b.force.Add(f)
}

// ApplyTorque accumulates a torque. It takes effect on the next integration.
func (b *Body) ApplyTorque(t float64) {
	b.torque += t
}

// ApplyImpulse changes velocity immediately as if impulse p acted at world point pt.
func (b *Body) ApplyImpulse(pt, p mgl64.Vec2) {
	r := pt.Sub(b.position)
	b.velocity = b.velocity.Add(p.Mul(b.invMass))
	b.angularVelocity += b.invI * cross(r, p)
}

// integrateForces advances velocity by semi-implicit Euler and clears the accumulators.
func (b *Body) integrateForces(dt float64) {
	b.velocity = b.velocity.Add(b.force.Mul(dt * b.invMass))
	b.angularVelocity += dt * b.invI * b.torque
	b.force = mgl64.Vec2{}
	b.torque = 0
}

// integrateVelocities advances the transform and refreshes the cached shape.
func (b *Body) integrateVelocities(dt float64) {
	b.position = b.position.Add(b.velocity.Mul(dt))
	b.rotation += dt * b.angularVelocity
	b.transformShape()
}

func (b *Body) transformShape() {
	q := mgl64.Rotate2D(b.rotation)
	for i, v := range b.shape.vertices {
		b.vertices[i] = q.Mul2x1(v).Add(b.position)
	}
	for i, n := range b.shape.normals {
		b.normals[i] = q.Mul2x1(n)
	}
}
