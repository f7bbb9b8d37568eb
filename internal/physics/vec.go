package physics

import "github.com/go-gl/mathgl/mgl64"

// cross returns the z component of the 3D cross product of a and b.
func cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// perp rotates v by +90 degrees.
func perp(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{-v[1], v[0]}
}
