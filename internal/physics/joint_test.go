package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func anchorGap(j *Joint) float64 {
	a, b := j.Anchors()
	return b.Sub(a).Len()
}

func TestJoint_AnchorsConverge(t *testing.T) {
	params := DefaultParams()
	params.Gravity = mgl64.Vec2{}
	w := newTestWorld(t, params)
	a := mustDynamic(t, w, 1, mgl64.Vec2{0, 0}, 0, unit, 1)
	b := mustDynamic(t, w, 2, mgl64.Vec2{2, 0}, 0, unit, 1)
	j, err := w.AddJoint(a, b, mgl64.Vec2{1, 0})
	if err != nil {
		t.Fatalf("AddJoint() error = %v", err)
	}
	if gap := anchorGap(j); gap > 1e-12 {
		t.Fatalf("initial gap = %v, want 0", gap)
	}

	// Pull b away so the anchors start half a unit apart.
	moveTo(b, mgl64.Vec2{2.5, 0})
	prev := anchorGap(j)
	if !approx(prev, 0.5, 1e-12) {
		t.Fatalf("gap after move = %v, want 0.5", prev)
	}

	for i := 0; i < 200; i++ {
		if err := w.Step(1.0 / 60); err != nil {
			t.Fatalf("Step(%d) error = %v", i, err)
		}
		gap := anchorGap(j)
		if gap > prev+1e-9 {
			t.Fatalf("step %d: gap grew from %v to %v", i, prev, gap)
		}
		prev = gap
	}
	if prev > 0.01 {
		t.Errorf("final gap = %v, want < 0.01", prev)
	}
}

func TestJoint_HangingBodyStaysPinned(t *testing.T) {
	w := newTestWorld(t, DefaultParams())
	ceiling := mustStatic(t, w, 1, mgl64.Vec2{0, 1}, 0, unit)
	bob := mustDynamic(t, w, 2, mgl64.Vec2{0, -1}, 0, unit, 1)
	j, err := w.AddJoint(ceiling, bob, mgl64.Vec2{0, 0})
	if err != nil {
		t.Fatalf("AddJoint() error = %v", err)
	}
	for i := 0; i < 120; i++ {
		if err := w.Step(1.0 / 60); err != nil {
			t.Fatalf("Step(%d) error = %v", i, err)
		}
	}
	if gap := anchorGap(j); gap > 0.01 {
		t.Errorf("anchor gap = %v, want < 0.01", gap)
	}
	if !approx(bob.Position()[1], -1, 0.05) {
		t.Errorf("bob y = %v, want about -1", bob.Position()[1])
	}
	// Holding a unit mass against gravity takes about m*g*dt per step.
	if imp := j.Impulse(); !approx(imp[1], 10.0/60, 0.02) {
		t.Errorf("Impulse() = %v, want y about %v", imp, 10.0/60)
	}
}

func TestJoint_PreStepMassMatrix(t *testing.T) {
	params := DefaultParams()
	w := newTestWorld(t, params)
	a := mustStatic(t, w, 1, mgl64.Vec2{}, 0, unit)
	b := mustDynamic(t, w, 2, mgl64.Vec2{1, 0}, 0, unit, 1)
	j, err := w.AddJoint(a, b, mgl64.Vec2{0, 0})
	if err != nil {
		t.Fatalf("AddJoint() error = %v", err)
	}
	if err := j.PreStep(60); err != nil {
		t.Fatalf("PreStep() error = %v", err)
	}
	// r2 = (-1, 0): k00 = 1 + s, k11 = 1 + 6 + s, no coupling.
	s := params.JointSoftness
	want := mgl64.Mat2FromRows(mgl64.Vec2{1 / (1 + s), 0}, mgl64.Vec2{0, 1 / (7 + s)})
	if !j.m.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("mass matrix = %v, want %v", j.m, want)
	}
	if j.bias != (mgl64.Vec2{}) {
		t.Errorf("bias = %v, want zero", j.bias)
	}
}

func TestJoint_Degenerate(t *testing.T) {
	params := DefaultParams()
	params.JointSoftness = 0
	w := newTestWorld(t, params)
	ground := mustStatic(t, w, 1, mgl64.Vec2{0, -5}, 0, unit)
	// The anchor sits on the center, so K is diag(1/m) and its diagonal product underflows.
	heavy := mustDynamic(t, w, 2, mgl64.Vec2{0, 0}, 0, unit, 1e300)
	j, err := w.AddJoint(ground, heavy, mgl64.Vec2{0, 0})
	if err != nil {
		t.Fatalf("AddJoint() error = %v", err)
	}

	err = w.Step(1.0 / 60)
	if !errors.Is(err, ErrDegenerate) {
		t.Fatalf("Step() error = %v, want ErrDegenerate", err)
	}
	if j.Impulse() != (mgl64.Vec2{}) {
		t.Errorf("Impulse() = %v, want zero", j.Impulse())
	}
	v := heavy.Velocity()
	if math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsInf(v[1], 0) {
		t.Errorf("velocity = %v, want finite", v)
	}
	if w.StepCount() != 1 {
		t.Errorf("StepCount() = %d, want 1", w.StepCount())
	}
}

func TestJoint_MassScaleIsNotDegenerate(t *testing.T) {
	for _, mass := range []float64{1e-6, 1, 1e13} {
		params := DefaultParams()
		params.JointSoftness = 0
		w := newTestWorld(t, params)
		ground := mustStatic(t, w, 1, mgl64.Vec2{0, -5}, 0, unit)
		b := mustDynamic(t, w, 2, mgl64.Vec2{1, 0}, 0, unit, mass)
		j, err := w.AddJoint(ground, b, mgl64.Vec2{0, 0})
		if err != nil {
			t.Fatalf("mass %g: AddJoint() error = %v", mass, err)
		}
		if err := j.PreStep(60); err != nil {
			t.Errorf("mass %g: PreStep() error = %v, want nil", mass, err)
			continue
		}
		// r2 = (-1, 0): K = diag(1/m, 7/m), so M = diag(m, m/7).
		want := mgl64.Mat2FromRows(mgl64.Vec2{mass, 0}, mgl64.Vec2{0, mass / 7})
		if !j.m.ApproxEqualThreshold(want, 1e-9) {
			t.Errorf("mass %g: mass matrix = %v, want %v", mass, j.m, want)
		}
	}
}
