package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a convex polygon in body-local coordinates, centered on its centroid.
// Vertices wind counter-clockwise; normals[i] is the outward normal of the edge from vertex i to i+1.
type Shape struct {
	vertices []mgl64.Vec2
	normals  []mgl64.Vec2
	width    mgl64.Vec2
	// inertia is the rotational inertia per unit mass about the centroid.
	inertia float64
}

// Box returns a rectangle with full extents width[0] x width[1].
func Box(width mgl64.Vec2) (Shape, error) {
	if !(width[0] > 0) || !(width[1] > 0) || !finite(width[0]) || !finite(width[1]) {
		return Shape{}, fmt.Errorf("%w: box width must be positive, got (%g, %g)", ErrInvalidConfig, width[0], width[1])
	}
	cx, cy := 0.5*width[0], 0.5*width[1]
	return Shape{
		vertices: []mgl64.Vec2{{-cx, -cy}, {cx, -cy}, {cx, cy}, {-cx, cy}},
		normals:  []mgl64.Vec2{{0, -1}, {1, 0}, {0, 1}, {-1, 0}},
		width:    width,
		inertia:  (width[0]*width[0] + width[1]*width[1]) / 12,
	}, nil
}

// Polygon returns a convex polygon from counter-clockwise vertices. The vertices are shifted so their
// centroid sits at the body origin; positions passed to AddDynamicPolygon refer to that centroid.
func Polygon(vertices ...mgl64.Vec2) (Shape, error) {
	n := len(vertices)
	if n < 3 {
		return Shape{}, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidConfig, n)
	}
	if n > 255 {
		return Shape{}, fmt.Errorf("%w: polygon has %d vertices, at most 255 are supported", ErrInvalidConfig, n)
	}
	for i, v := range vertices {
		if !finite(v[0]) || !finite(v[1]) {
			return Shape{}, fmt.Errorf("%w: polygon vertex %d is not finite", ErrInvalidConfig, i)
		}
	}
	for i := 0; i < n; i++ {
		e1 := vertices[next(i, n)].Sub(vertices[i])
		e2 := vertices[next(next(i, n), n)].Sub(vertices[next(i, n)])
		if cross(e1, e2) <= 0 {
			return Shape{}, fmt.Errorf("%w: polygon must be convex and counter-clockwise (corner %d)", ErrInvalidConfig, next(i, n))
		}
	}

	// Area-weighted centroid and second moment, summing triangles fanned from vertex 0.
	var area, moment float64
	var centroid mgl64.Vec2
	origin := vertices[0]
	for i := 1; i+1 < n; i++ {
		e1 := vertices[i].Sub(origin)
		e2 := vertices[i+1].Sub(origin)
		d := cross(e1, e2)
		area += 0.5 * d
		centroid = centroid.Add(e1.Add(e2).Mul(d / 6))
	}
	centroid = origin.Add(centroid.Mul(1 / area))

	local := make([]mgl64.Vec2, n)
	lo, hi := mgl64.Vec2{}, mgl64.Vec2{}
	for i, v := range vertices {
		local[i] = v.Sub(centroid)
		lo = mgl64.Vec2{min(lo[0], local[i][0]), min(lo[1], local[i][1])}
		hi = mgl64.Vec2{max(hi[0], local[i][0]), max(hi[1], local[i][1])}
	}
	for i := 0; i < n; i++ {
		e1, e2 := local[i], local[next(i, n)]
		d := cross(e1, e2)
		moment += d * (e1.Dot(e1) + e1.Dot(e2) + e2.Dot(e2)) / 12
	}

	normals := make([]mgl64.Vec2, n)
	for i := 0; i < n; i++ {
		e := local[next(i, n)].Sub(local[i])
		normals[i] = mgl64.Vec2{e[1], -e[0]}.Normalize()
	}
	return Shape{
		vertices: local,
		normals:  normals,
		width:    hi.Sub(lo),
		inertia:  moment / area,
	}, nil
}

// VertexCount returns the number of polygon corners.
func (s Shape) VertexCount() int { return len(s.vertices) }

// Width returns the full extent of the shape's local bounding box.
func (s Shape) Width() mgl64.Vec2 { return s.width }

// next returns the index after i in a ring of n elements.
func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}
