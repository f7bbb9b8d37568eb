package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func approxVec(a, b mgl64.Vec2, eps float64) bool {
	return approx(a[0], b[0], eps) && approx(a[1], b[1], eps)
}

// newTestWorld returns a world with default params or fails the test.
func newTestWorld(t *testing.T, params Params) *World {
	t.Helper()
	w, err := NewWorld(params)
	if err != nil {
		t.Fatalf("NewWorld() error = %v", err)
	}
	return w
}

func mustDynamic(t *testing.T, w *World, id BodyID, pos mgl64.Vec2, rot float64, width mgl64.Vec2, mass float64) *Body {
	t.Helper()
	b, err := w.AddDynamicBody(id, pos, rot, width, mass)
	if err != nil {
		t.Fatalf("AddDynamicBody(%d) error = %v", id, err)
	}
	return b
}

func mustStatic(t *testing.T, w *World, id BodyID, pos mgl64.Vec2, rot float64, width mgl64.Vec2) *Body {
	t.Helper()
	b, err := w.AddStaticBody(id, pos, rot, width)
	if err != nil {
		t.Fatalf("AddStaticBody(%d) error = %v", id, err)
	}
	return b
}

// mustBox builds a standalone body outside any world.
func mustBox(t *testing.T, id BodyID, pos mgl64.Vec2, rot float64, width mgl64.Vec2, mass float64) *Body {
	t.Helper()
	shape, err := Box(width)
	if err != nil {
		t.Fatalf("Box() error = %v", err)
	}
	b, err := newBody(id, shape, pos, rot, mass, DefaultParams().DefaultFriction)
	if err != nil {
		t.Fatalf("newBody() error = %v", err)
	}
	return b
}

// moveTo teleports a body; tests only.
func moveTo(b *Body, pos mgl64.Vec2) {
	b.position = pos
	b.transformShape()
}
