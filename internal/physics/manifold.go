package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PairKey identifies an unordered body pair. The smaller ID is always stored in A.
type PairKey struct {
	A, B BodyID
}

// MakePairKey returns the key for the pair (a, b) in either order.
func MakePairKey(a, b BodyID) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Contact is one contact point of a manifold together with its solver state.
type Contact struct {
	// Separation is the signed distance to the reference face; <= 0 means touching or penetrating.
	Separation float64
	Position   mgl64.Vec2
	// Normal points from body A to body B.
	Normal mgl64.Vec2
	ID     FeatureID

	MassNormal  float64
	MassTangent float64
	Bias        float64
	// Pn and Pt are the accumulated normal and tangent impulses.
	Pn float64
	Pt float64
}

// Manifold is the contact set of one colliding body pair for one step.
type Manifold struct {
	A, B     *Body
	Contacts []Contact
	// Friction is sqrt(fA*fB).
	Friction float64
}

func newManifold(a, b *Body) *Manifold {
	return &Manifold{
		A:        a,
		B:        b,
		Contacts: make([]Contact, 0, 2),
		Friction: math.Sqrt(a.friction * b.friction),
	}
}

// Key returns the manifold's pair key.
func (m *Manifold) Key() PairKey {
	return MakePairKey(m.A.id, m.B.id)
}

// Update copies the accumulated impulses of contacts whose FeatureID also appears in old, so the
// solve starts from last step's result. Unmatched contacts keep zero impulses.
func (m *Manifold) Update(old *Manifold) {
	if old == nil {
		return
	}
	for i := range m.Contacts {
		for _, oc := range old.Contacts {
			if m.Contacts[i].ID == oc.ID {
				m.Contacts[i].Pn = oc.Pn
				m.Contacts[i].Pt = oc.Pt
			}
		}
	}
}

// tangentOf rotates a contact normal by -90 degrees.
func tangentOf(n mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{n[1], -n[0]}
}

// PreStep computes effective masses and Baumgarte bias for every contact and applies the
// accumulated impulses. A contact whose effective mass cannot be inverted is zeroed and reported
// with ErrDegenerate; the remaining contacts are still prepared.
func (m *Manifold) PreStep(invDt float64, p Params) error {
	a, b := m.A, m.B
	var errs []error
	for i := range m.Contacts {
		c := &m.Contacts[i]
		n := c.Normal
		t := tangentOf(n)
		r1 := c.Position.Sub(a.position)
		r2 := c.Position.Sub(b.position)

		rn1, rn2 := cross(r1, n), cross(r2, n)
		kNormal := a.invMass + b.invMass + a.invI*rn1*rn1 + b.invI*rn2*rn2
		rt1, rt2 := cross(r1, t), cross(r2, t)
		kTangent := a.invMass + b.invMass + a.invI*rt1*rt1 + b.invI*rt2*rt2
		if kNormal < p.SingularThreshold || kTangent < p.SingularThreshold {
			c.MassNormal, c.MassTangent, c.Bias = 0, 0, 0
			c.Pn, c.Pt = 0, 0
			errs = append(errs, fmt.Errorf("%w: contact between bodies %d and %d has effective mass %g",
				ErrDegenerate, a.id, b.id, kNormal))
			continue
		}
		c.MassNormal = 1 / kNormal
		c.MassTangent = 1 / kTangent
		c.Bias = -p.ContactBiasFactor * invDt * min(0, c.Separation+p.AllowedPenetration)

		impulse := n.Mul(c.Pn).Add(t.Mul(c.Pt))
		a.ApplyImpulse(c.Position, impulse.Mul(-1))
		b.ApplyImpulse(c.Position, impulse)
	}
	return errors.Join(errs...)
}

// ApplyImpulse runs one relaxation sweep over the contacts. Accumulated normal impulses stay
// non-negative and accumulated friction stays inside [-f*Pn, f*Pn]; only the change is applied.
func (m *Manifold) ApplyImpulse() {
	a, b := m.A, m.B
	for i := range m.Contacts {
		c := &m.Contacts[i]
		n := c.Normal
		t := tangentOf(n)

		dv := b.RelativeVelocity(c.Position).Sub(a.RelativeVelocity(c.Position))
		vn := dv.Dot(n)
		vt := dv.Dot(t)

		dPn := c.MassNormal * (-vn + c.Bias)
		dPt := c.MassTangent * (-vt)

		pn0, pt0 := c.Pn, c.Pt
		c.Pn = max(pn0+dPn, 0)
		maxPt := m.Friction * c.Pn
		c.Pt = mgl64.Clamp(pt0+dPt, -maxPt, maxPt)

		impulse := n.Mul(c.Pn - pn0).Add(t.Mul(c.Pt - pt0))
		a.ApplyImpulse(c.Position, impulse.Mul(-1))
		b.ApplyImpulse(c.Position, impulse)
	}
}
