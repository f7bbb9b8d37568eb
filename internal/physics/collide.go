package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// noFeature marks a FeatureID slot that does not refer to a polygon corner, e.g. the incident
// vertex of a point produced by clipping.
const noFeature uint8 = 0xFF

// FeatureID names the polygon features that produced a contact so the same contact can be found again
// on the next step. Fields are in body A / body B order regardless of which body supplied the
// reference face.
type FeatureID struct {
	EdgeA   uint8
	EdgeB   uint8
	VertexA uint8
	VertexB uint8
}

// flip swaps the A and B halves.
func (id FeatureID) flip() FeatureID {
	return FeatureID{EdgeA: id.EdgeB, EdgeB: id.EdgeA, VertexA: id.VertexB, VertexB: id.VertexA}
}

// clipVertex is a candidate contact point with its id in reference/incident order.
type clipVertex struct {
	v  mgl64.Vec2
	id FeatureID
}

// FindMaxSeparation returns, over every face of a, the smallest signed distance from that face to
// the vertices of b, maximized over faces, together with the winning face index. A positive result
// means the face normal is a separating axis.
func FindMaxSeparation(a, b *Body) (separation float64, edge int) {
	separation = math.Inf(-1)
	for i, n := range a.normals {
		v1 := a.vertices[i]
		si := math.Inf(1)
		for _, v2 := range b.vertices {
			if d := n.Dot(v2.Sub(v1)); d < si {
				si = d
			}
		}
		if si > separation {
			separation = si
			edge = i
		}
	}
	return separation, edge
}

// chooseReference picks the polygon whose face gave the larger separation as the reference.
// Ties keep a. flip is true when b supplies the reference face.
func chooseReference(a, b *Body, sepA float64, edgeA int, sepB float64, edgeB int) (ref, inc *Body, edge int, flip bool) {
	if sepB > sepA {
		return b, a, edgeB, true
	}
	return a, b, edgeA, false
}

// findIncidentEdge returns the two end points of the incident polygon's edge whose normal is most
// anti-parallel to the reference face normal.
func findIncidentEdge(ref *Body, refEdge int, inc *Body) [2]clipVertex {
	n1 := ref.normals[refEdge]
	i1 := 0
	minDot := math.Inf(1)
	for i, n2 := range inc.normals {
		if d := n1.Dot(n2); d < minDot {
			minDot = d
			i1 = i
		}
	}
	i2 := next(i1, len(inc.vertices))
	return [2]clipVertex{
		{v: inc.vertices[i1], id: FeatureID{EdgeA: uint8(refEdge), EdgeB: uint8(i1), VertexA: noFeature, VertexB: uint8(i1)}},
		{v: inc.vertices[i2], id: FeatureID{EdgeA: uint8(refEdge), EdgeB: uint8(i1), VertexA: noFeature, VertexB: uint8(i2)}},
	}
}

// clipToSide keeps the segment on the inner side of the plane through p with outward normal n.
// A point outside is moved to the crossing and tagged with the reference vertex on that plane.
// It returns false when both points are outside.
func clipToSide(cv *[2]clipVertex, n, p mgl64.Vec2, sideVertex int) bool {
	d0 := n.Dot(cv[0].v.Sub(p))
	d1 := n.Dot(cv[1].v.Sub(p))
	if d0 > 0 && d1 > 0 {
		return false
	}
	if d0 <= 0 && d1 <= 0 {
		return true
	}
	t := d0 / (d0 - d1)
	x := cv[0].v.Add(cv[1].v.Sub(cv[0].v).Mul(t))
	i := 0
	if d1 > 0 {
		i = 1
	}
	cv[i].v = x
	cv[i].id.VertexA = uint8(sideVertex)
	cv[i].id.VertexB = noFeature
	return true
}

// Collide runs SAT on the two bodies' current shapes. It returns nil when a separating axis exists,
// otherwise a manifold whose normal points from a to b and which holds the 0-2 penetrating points of
// the incident edge clipped to the reference face.
func Collide(a, b *Body) *Manifold {
	sepA, edgeA := FindMaxSeparation(a, b)
	if sepA > 0 {
		return nil
	}
	sepB, edgeB := FindMaxSeparation(b, a)
	if sepB > 0 {
		return nil
	}

	ref, inc, edge, flip := chooseReference(a, b, sepA, edgeA, sepB, edgeB)
	cv := findIncidentEdge(ref, edge, inc)

	iv1 := edge
	iv2 := next(edge, len(ref.vertices))
	v11 := ref.vertices[iv1]
	v12 := ref.vertices[iv2]
	normal := ref.normals[edge]
	// Runs from v11 to v12 for counter-clockwise polygons.
	side := perp(normal)

	m := newManifold(a, b)
	if !clipToSide(&cv, side.Mul(-1), v11, iv1) || !clipToSide(&cv, side, v12, iv2) {
		return m
	}

	for _, c := range cv {
		separation := normal.Dot(c.v.Sub(v11))
		if separation > 0 {
			continue
		}
		cp := Contact{Separation: separation, Position: c.v, Normal: normal, ID: c.id}
		if flip {
			cp.Normal = normal.Mul(-1)
			cp.ID = c.id.flip()
		}
		m.Contacts = append(m.Contacts, cp)
	}
	return m
}
