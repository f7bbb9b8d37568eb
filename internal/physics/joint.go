package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Joint pins a point of body A to a point of body B. The constraint is softened: softness is added
// to the mass matrix diagonal and feeds back the accumulated impulse, which keeps the matrix
// invertible and lets the anchors drift slightly apart under load.
//
// The impulse is not clamped and the joint never breaks.
type Joint struct {
	a, b *Body

	localAnchorA mgl64.Vec2
	localAnchorB mgl64.Vec2

	// World anchors captured in PreStep.
	anchorA mgl64.Vec2
	anchorB mgl64.Vec2

	m    mgl64.Mat2
	bias mgl64.Vec2
	p    mgl64.Vec2

	softness   float64
	biasFactor float64
	threshold  float64
	degenerate bool
}

func newJoint(a, b *Body, anchor mgl64.Vec2, params Params) *Joint {
	return &Joint{
		a:            a,
		b:            b,
		localAnchorA: a.LocalPosition(anchor),
		localAnchorB: b.LocalPosition(anchor),
		anchorA:      anchor,
		anchorB:      anchor,
		softness:     params.JointSoftness,
		biasFactor:   params.JointBiasFactor,
		threshold:    params.SingularThreshold,
	}
}

// Bodies returns the two jointed bodies.
func (j *Joint) Bodies() (a, b *Body) { return j.a, j.b }

// Anchors returns both anchors in world space for the bodies' current transforms.
func (j *Joint) Anchors() (a, b mgl64.Vec2) {
	return j.a.WorldPosition(j.localAnchorA), j.b.WorldPosition(j.localAnchorB)
}

// Impulse returns the accumulated impulse applied to body B (A receives the negation).
func (j *Joint) Impulse() mgl64.Vec2 { return j.p }

// Softness returns the constant added to the mass matrix diagonal.
func (j *Joint) Softness() float64 { return j.softness }

// PreStep builds the softened mass matrix and Baumgarte bias, then re-applies the accumulated
// impulse. If the matrix is singular the joint is skipped for the step and ErrDegenerate is returned.
func (j *Joint) PreStep(invDt float64) error {
	a, b := j.a, j.b
	j.anchorA = a.WorldPosition(j.localAnchorA)
	j.anchorB = b.WorldPosition(j.localAnchorB)
	r1 := j.anchorA.Sub(a.position)
	r2 := j.anchorB.Sub(b.position)

	invMass := a.invMass + b.invMass
	k00 := a.invI*r1[1]*r1[1] + b.invI*r2[1]*r2[1] + invMass + j.softness
	k01 := a.invI*r1[0]*r1[1] + b.invI*r2[0]*r2[1]
	k11 := a.invI*r1[0]*r1[0] + b.invI*r2[0]*r2[0] + invMass + j.softness
	k := mgl64.Mat2FromRows(mgl64.Vec2{k00, -k01}, mgl64.Vec2{-k01, k11})

	// Singularity is judged relative to the diagonal so it does not depend on the mass scale.
	det := k.Det()
	if scale := k00 * k11; !(scale > 0) || math.Abs(det) < j.threshold*scale || !finite(det) {
		j.degenerate = true
		j.m = mgl64.Mat2{}
		j.bias = mgl64.Vec2{}
		return fmt.Errorf("%w: joint between bodies %d and %d has mass matrix determinant %g",
			ErrDegenerate, a.id, b.id, det)
	}
	j.degenerate = false
	j.m = k.Inv()
	j.bias = j.anchorB.Sub(j.anchorA).Mul(-j.biasFactor * invDt)

	a.ApplyImpulse(j.anchorA, j.p.Mul(-1))
	b.ApplyImpulse(j.anchorB, j.p)
	return nil
}

// ApplyImpulse solves the 2x2 system for the impulse that drives the softened relative anchor
// velocity toward the bias, applies it and accumulates it.
func (j *Joint) ApplyImpulse() {
	if j.degenerate {
		return
	}
	a, b := j.a, j.b
	dv := b.RelativeVelocity(j.anchorB).Sub(a.RelativeVelocity(j.anchorA))
	d := j.bias.Sub(dv).Sub(j.p.Mul(j.softness))
	impulse := j.m.Mul2x1(d)

	a.ApplyImpulse(j.anchorA, impulse.Mul(-1))
	b.ApplyImpulse(j.anchorB, impulse)
	j.p = j.p.Add(impulse)
}
