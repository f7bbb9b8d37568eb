package physics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
)

const dt = 1.0 / 60

// groundWorld returns a world with a 100 x 20 static floor whose top face is y = 0.
func groundWorld(t *testing.T) (*World, *Body) {
	t.Helper()
	w := newTestWorld(t, DefaultParams())
	floor := mustStatic(t, w, 0, mgl64.Vec2{0, -10}, 0, mgl64.Vec2{100, 20})
	return w, floor
}

func stepN(t *testing.T, w *World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := w.Step(dt); err != nil {
			t.Fatalf("Step(%d) error = %v", i, err)
		}
	}
}

// ==========================================================================
// Construction
// ==========================================================================

func TestWorld_AddBodyErrors(t *testing.T) {
	w := newTestWorld(t, DefaultParams())
	mustDynamic(t, w, 1, mgl64.Vec2{}, 0, unit, 1)

	tests := []struct {
		name string
		add  func() error
	}{
		{"zero mass dynamic", func() error {
			_, err := w.AddDynamicBody(2, mgl64.Vec2{}, 0, unit, 0)
			return err
		}},
		{"negative mass", func() error {
			_, err := w.AddDynamicBody(2, mgl64.Vec2{}, 0, unit, -3)
			return err
		}},
		{"duplicate id", func() error {
			_, err := w.AddStaticBody(1, mgl64.Vec2{}, 0, unit)
			return err
		}},
		{"bad width", func() error {
			_, err := w.AddStaticBody(2, mgl64.Vec2{}, 0, mgl64.Vec2{0, 1})
			return err
		}},
		{"NaN rotation", func() error {
			_, err := w.AddDynamicBody(2, mgl64.Vec2{}, math.NaN(), unit, 1)
			return err
		}},
		{"clockwise polygon", func() error {
			_, err := w.AddDynamicPolygon(2, mgl64.Vec2{}, 0, []mgl64.Vec2{{0, 0}, {0, 1}, {1, 0}}, 1)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.add(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if got := len(w.Bodies()); got != 1 {
		t.Errorf("len(Bodies()) = %d, want 1", got)
	}
}

func TestWorld_AddJointErrors(t *testing.T) {
	w := newTestWorld(t, DefaultParams())
	d := mustDynamic(t, w, 1, mgl64.Vec2{}, 0, unit, 1)
	s1 := mustStatic(t, w, 2, mgl64.Vec2{0, 3}, 0, unit)
	s2 := mustStatic(t, w, 3, mgl64.Vec2{0, 6}, 0, unit)
	foreign := mustBox(t, 4, mgl64.Vec2{}, 0, unit, 1)

	tests := []struct {
		name   string
		a, b   *Body
		anchor mgl64.Vec2
	}{
		{"nil body", d, nil, mgl64.Vec2{}},
		{"same body", d, d, mgl64.Vec2{}},
		{"foreign body", d, foreign, mgl64.Vec2{}},
		{"both static", s1, s2, mgl64.Vec2{}},
		{"infinite anchor", d, s1, mgl64.Vec2{math.Inf(1), 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.AddJoint(tt.a, tt.b, tt.anchor); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("AddJoint() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if len(w.Joints()) != 0 {
		t.Errorf("len(Joints()) = %d, want 0", len(w.Joints()))
	}
}

func TestWorld_StepRejectsBadDt(t *testing.T) {
	w := newTestWorld(t, DefaultParams())
	for _, bad := range []float64{0, -dt, math.NaN(), math.Inf(1)} {
		if err := w.Step(bad); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Step(%v) error = %v, want ErrInvalidConfig", bad, err)
		}
	}
	if w.StepCount() != 0 {
		t.Errorf("StepCount() = %d, want 0", w.StepCount())
	}
}

func TestWorld_Queries(t *testing.T) {
	w := newTestWorld(t, DefaultParams())
	s := mustStatic(t, w, 10, mgl64.Vec2{0, -1}, 0, unit)
	d1 := mustDynamic(t, w, 3, mgl64.Vec2{5, 0}, 0, unit, 1)
	d2 := mustDynamic(t, w, 7, mgl64.Vec2{9, 0}, 0, unit, 1)

	if w.Body(3) != d1 || w.Body(10) != s || w.Body(99) != nil {
		t.Error("Body() lookup mismatch")
	}
	got := w.Bodies()
	want := []*Body{d1, d2, s}
	if len(got) != len(want) {
		t.Fatalf("len(Bodies()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bodies()[%d] = %d, want %d", i, got[i].ID(), want[i].ID())
		}
	}
	if len(w.DynamicBodies()) != 2 || len(w.StaticBodies()) != 1 {
		t.Errorf("DynamicBodies/StaticBodies = %d/%d", len(w.DynamicBodies()), len(w.StaticBodies()))
	}
}

// ==========================================================================
// Stepping
// ==========================================================================

func TestWorld_FreeFall(t *testing.T) {
	w := newTestWorld(t, DefaultParams())
	b := mustDynamic(t, w, 1, mgl64.Vec2{0, 100}, 0, unit, 3)
	const n = 60
	stepN(t, w, n)

	if want := -10.0 * n * dt; !approx(b.Velocity()[1], want, 1e-9) {
		t.Errorf("vy = %v, want %v", b.Velocity()[1], want)
	}
	if b.Velocity()[0] != 0 || b.AngularVelocity() != 0 {
		t.Errorf("unexpected motion v=%v w=%v", b.Velocity(), b.AngularVelocity())
	}
	// Semi-implicit Euler: y_n = y_0 - g*dt^2*n(n+1)/2.
	wantY := 100 - 10*dt*dt*n*(n+1)/2
	if !approx(b.Position()[1], wantY, 1e-9) {
		t.Errorf("y = %v, want %v", b.Position()[1], wantY)
	}
	if !approx(w.Time(), n*dt, 1e-12) || w.StepCount() != n {
		t.Errorf("Time/StepCount = %v/%d", w.Time(), w.StepCount())
	}
}

func TestWorld_BoxComesToRest(t *testing.T) {
	w, floor := groundWorld(t)
	box := mustDynamic(t, w, 1, mgl64.Vec2{0, 5}, 0, unit, 1)
	for i := 0; i < 200; i++ {
		if err := w.Step(1.0 / 60); err != nil {
			t.Fatalf("Step(%d) error = %v", i, err)
		}
		if floor.Position() != (mgl64.Vec2{0, -10}) || floor.Rotation() != 0 || floor.Velocity() != (mgl64.Vec2{}) || floor.AngularVelocity() != 0 {
			t.Fatalf("step %d: floor moved: %v %v %v", i, floor.Position(), floor.Rotation(), floor.Velocity())
		}
	}

	if vy := box.Velocity()[1]; math.Abs(vy) >= 0.01 {
		t.Errorf("vy = %v, want |vy| < 0.01", vy)
	}
	if y := box.Position()[1]; y < 0.5-0.02 || y > 0.5+1e-3 {
		t.Errorf("y = %v, want resting near 0.49", y)
	}
	m := w.Manifold(box.ID(), floor.ID())
	if m == nil || len(m.Contacts) != 2 {
		t.Fatalf("Manifold() = %+v, want 2 contacts", m)
	}
	slop := w.Params().AllowedPenetration
	for i, c := range m.Contacts {
		if c.Separation < -(slop + 0.005) {
			t.Errorf("contact %d separation = %v, want >= %v", i, c.Separation, -(slop + 0.005))
		}
	}
	if floor.InvMass() != 0 || floor.InvInertia() != 0 {
		t.Error("floor inverse mass changed")
	}
}

func TestWorld_PolygonComesToRest(t *testing.T) {
	w, floor := groundWorld(t)
	tri, err := w.AddDynamicPolygon(1, mgl64.Vec2{0, 2}, 0,
		[]mgl64.Vec2{{-0.6, 0}, {0.6, 0}, {0, 0.9}}, 1)
	if err != nil {
		t.Fatalf("AddDynamicPolygon() error = %v", err)
	}
	stepN(t, w, 240)

	if v := tri.Velocity(); v.Len() > 0.05 {
		t.Errorf("velocity = %v, want at rest", v)
	}
	if math.Abs(tri.Rotation()) > 0.05 {
		t.Errorf("rotation = %v, want upright", tri.Rotation())
	}
	if w.Manifold(tri.ID(), floor.ID()) == nil {
		t.Error("no manifold with floor")
	}
}

func TestWorld_WarmStartIDsStable(t *testing.T) {
	w, floor := groundWorld(t)
	box := mustDynamic(t, w, 1, mgl64.Vec2{0, 0.5}, 0, unit, 1)
	stepN(t, w, 120)

	before := w.Manifold(box.ID(), floor.ID())
	if before == nil {
		t.Fatal("no resting manifold")
	}
	ids := make(map[FeatureID]bool)
	for _, c := range before.Contacts {
		ids[c.ID] = true
	}
	stepN(t, w, 1)
	after := w.Manifold(floor.ID(), box.ID())
	if after == nil || after == before {
		t.Fatalf("Manifold() after step = %p, before %p", after, before)
	}
	for i, c := range after.Contacts {
		if !ids[c.ID] {
			t.Errorf("contact %d id %+v not present in previous step", i, c.ID)
		}
		if !(c.Pn > 0) {
			t.Errorf("contact %d Pn = %v, want warm started > 0", i, c.Pn)
		}
	}
}

func TestWorld_ManifoldDropsWhenSeparated(t *testing.T) {
	w, floor := groundWorld(t)
	box := mustDynamic(t, w, 1, mgl64.Vec2{0, 0.49}, 0, unit, 1)
	stepN(t, w, 1)
	if w.Manifold(box.ID(), floor.ID()) == nil {
		t.Fatal("expected a manifold while touching")
	}
	box.SetVelocity(mgl64.Vec2{0, 20})
	stepN(t, w, 2)
	if m := w.Manifold(box.ID(), floor.ID()); m != nil {
		t.Errorf("Manifold() = %+v, want nil after separation", m)
	}
	if st := w.Stats(); st.Manifolds != 0 || st.Contacts != 0 {
		t.Errorf("Stats() = %+v, want no contacts", st)
	}
}

func TestWorld_ImpulseBoundsHold(t *testing.T) {
	w, _ := groundWorld(t)
	for i := 0; i < 5; i++ {
		mustDynamic(t, w, BodyID(i+1), mgl64.Vec2{0.1 * float64(i), 0.5 + 1.05*float64(i)}, 0, unit, 1)
	}
	slider := mustDynamic(t, w, 10, mgl64.Vec2{-5, 0.5}, 0, unit, 1)
	slider.SetVelocity(mgl64.Vec2{6, 0})
	spinner := mustDynamic(t, w, 11, mgl64.Vec2{5, 2}, 0.3, mgl64.Vec2{2, 0.5}, 2)
	spinner.SetAngularVelocity(4)

	for step := 0; step < 300; step++ {
		stepN(t, w, 1)
		for _, m := range w.Manifolds() {
			for i, c := range m.Contacts {
				if c.Pn < 0 {
					t.Fatalf("step %d pair %v contact %d: Pn = %v", step, m.Key(), i, c.Pn)
				}
				if math.Abs(c.Pt) > m.Friction*c.Pn+1e-12 {
					t.Fatalf("step %d pair %v contact %d: |Pt| = %v > %v", step, m.Key(), i, math.Abs(c.Pt), m.Friction*c.Pn)
				}
			}
		}
	}
	for _, b := range w.StaticBodies() {
		if b.Velocity() != (mgl64.Vec2{}) || b.AngularVelocity() != 0 {
			t.Errorf("static body %d moved", b.ID())
		}
	}
}

// ==========================================================================
// Determinism
// ==========================================================================

func pyramidTrace(t *testing.T) string {
	t.Helper()
	w, _ := groundWorld(t)
	id := BodyID(1)
	for row := 0; row < 6; row++ {
		for col := 0; col < 6-row; col++ {
			x := -2.75 + 0.55*float64(row) + 1.1*float64(col)
			mustDynamic(t, w, id, mgl64.Vec2{x, 0.5 + 1.0*float64(row)}, 0, unit, 1)
			id++
		}
	}
	pivot := mustStatic(t, w, 100, mgl64.Vec2{8, 6}, 0, mgl64.Vec2{0.2, 0.2})
	arm := mustDynamic(t, w, 101, mgl64.Vec2{10, 6}, 0, mgl64.Vec2{1, 0.2}, 1)
	if _, err := w.AddJoint(pivot, arm, mgl64.Vec2{8, 6}); err != nil {
		t.Fatalf("AddJoint() error = %v", err)
	}

	var sb strings.Builder
	for step := 0; step < 150; step++ {
		stepN(t, w, 1)
		for _, b := range w.DynamicBodies() {
			p, v := b.Position(), b.Velocity()
			fmt.Fprintf(&sb, "%d %d %.17g %.17g %.17g %.17g %.17g\n", step, b.ID(), p[0], p[1], b.Rotation(), v[0], v[1])
		}
	}
	return sb.String()
}

func TestWorld_Deterministic(t *testing.T) {
	first := pyramidTrace(t)
	second := pyramidTrace(t)
	if first == second {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(first),
		B:        difflib.SplitLines(second),
		FromFile: "run 1",
		ToFile:   "run 2",
		Context:  1,
	})
	if err != nil {
		t.Fatalf("diff error = %v", err)
	}
	t.Errorf("identical worlds diverged:\n%s", diff)
}

func TestWorld_Snapshot(t *testing.T) {
	w, _ := groundWorld(t)
	box := mustDynamic(t, w, 1, mgl64.Vec2{0, 0.49}, 0, unit, 1)
	hanger := mustDynamic(t, w, 2, mgl64.Vec2{5, 5}, 0, unit, 1)
	if _, err := w.AddJoint(w.Body(0), hanger, mgl64.Vec2{5, 6}); err != nil {
		t.Fatalf("AddJoint() error = %v", err)
	}
	stepN(t, w, 1)

	s := w.Snapshot()
	if s.Step != 1 || len(s.Bodies) != 3 || len(s.Joints) != 1 {
		t.Fatalf("Snapshot() = step %d, %d bodies, %d joints", s.Step, len(s.Bodies), len(s.Joints))
	}
	if s.Bodies[0].ID != box.ID() || s.Bodies[2].ID != 0 || !s.Bodies[2].Static {
		t.Errorf("body order = %v, %v, %v", s.Bodies[0].ID, s.Bodies[1].ID, s.Bodies[2].ID)
	}
	if len(s.Contacts) != w.Stats().Contacts || len(s.Contacts) == 0 {
		t.Errorf("len(Contacts) = %d, Stats().Contacts = %d", len(s.Contacts), w.Stats().Contacts)
	}

	// The snapshot is detached from the world.
	s.Bodies[0].Vertices[0] = mgl64.Vec2{99, 99}
	if box.Vertices()[0] == (mgl64.Vec2{99, 99}) {
		t.Error("snapshot shares vertex storage with the body")
	}
}
