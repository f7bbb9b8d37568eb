package scene

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	rl "github.com/gen2brain/raylib-go/raylib"

	"boxworld/internal/physics"
)

const (
	gridExtent     = 200
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 40
	gridMajorAlpha = 100
	axisLineAlpha  = 200

	minZoom   = 0.1
	maxZoom   = 10
	zoomSpeed = 0.1

	contactRadius = 3 // pixels, independent of zoom
	anchorRadius  = 4
)

var (
	staticFill  = rl.NewColor(107, 114, 128, 255)
	dynamicFill = rl.NewColor(217, 164, 65, 255)
	outline     = rl.NewColor(20, 20, 20, 255)
	jointColor  = rl.NewColor(90, 200, 250, 255)
	contactFill = rl.NewColor(230, 60, 60, 255)
	normalColor = rl.NewColor(250, 220, 80, 255)
)

// Scene draws a world snapshot with a 2D camera. World y points up; the camera works in render space,
// which is world space scaled by PixelsPerMeter with y flipped. Right or middle drag pans, the mouse
// wheel zooms around the cursor.
type Scene struct {
	Camera         rl.Camera2D
	PixelsPerMeter float32
	GridVisible    bool
	ShowContacts   bool
	ShowJoints     bool
	// Colors overrides the fill per body.
	Colors map[physics.BodyID]color.RGBA

	dragging bool
	fan      []rl.Vector2
}

// New returns a scene centered on center (world units) at pixelsPerMeter with zoom 1.
func New(center mgl64.Vec2, pixelsPerMeter float32) *Scene {
	s := &Scene{PixelsPerMeter: pixelsPerMeter, GridVisible: true, ShowContacts: true, ShowJoints: true}
	s.Camera.Zoom = 1
	s.Camera.Target = s.toRender(center)
	return s
}

// toRender maps a world point to render space.
func (s *Scene) toRender(p mgl64.Vec2) rl.Vector2 {
	return rl.Vector2{X: float32(p[0]) * s.PixelsPerMeter, Y: -float32(p[1]) * s.PixelsPerMeter}
}

func (s *Scene) fromRender(v rl.Vector2) mgl64.Vec2 {
	return mgl64.Vec2{float64(v.X / s.PixelsPerMeter), float64(-v.Y / s.PixelsPerMeter)}
}

// ScreenToWorld maps a screen pixel (e.g. the mouse position) to world coordinates.
func (s *Scene) ScreenToWorld(p rl.Vector2) mgl64.Vec2 {
	c := s.Camera
	return s.fromRender(rl.Vector2{
		X: (p.X-c.Offset.X)/c.Zoom + c.Target.X,
		Y: (p.Y-c.Offset.Y)/c.Zoom + c.Target.Y,
	})
}

// WorldToScreen maps a world point to a screen pixel.
func (s *Scene) WorldToScreen(p mgl64.Vec2) rl.Vector2 {
	c := s.Camera
	r := s.toRender(p)
	return rl.Vector2{
		X: (r.X-c.Target.X)*c.Zoom + c.Offset.X,
		Y: (r.Y-c.Target.Y)*c.Zoom + c.Offset.Y,
	}
}

// Pan moves the view by a screen-space delta in pixels.
func (s *Scene) Pan(delta rl.Vector2) {
	s.Camera.Target.X -= delta.X / s.Camera.Zoom
	s.Camera.Target.Y -= delta.Y / s.Camera.Zoom
}

// ZoomAt scales the zoom by (1 + steps*zoomSpeed) keeping the world point under screen pixel at fixed.
func (s *Scene) ZoomAt(at rl.Vector2, steps float32) {
	if steps == 0 {
		return
	}
	anchor := s.ScreenToWorld(at)
	zoom := s.Camera.Zoom * (1 + steps*zoomSpeed)
	s.Camera.Zoom = float32(math.Max(minZoom, math.Min(maxZoom, float64(zoom))))
	after := s.WorldToScreen(anchor)
	s.Pan(rl.Vector2{X: at.X - after.X, Y: at.Y - after.Y})
}

// Update keeps the camera centered on the window and handles pan and zoom input. Call once per frame
// when the console is closed.
func (s *Scene) Update() {
	s.Camera.Offset = rl.Vector2{X: float32(rl.GetScreenWidth()) / 2, Y: float32(rl.GetScreenHeight()) / 2}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) || rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		if s.dragging {
			s.Pan(rl.GetMouseDelta())
		}
		s.dragging = true
	} else {
		s.dragging = false
	}
	s.ZoomAt(rl.GetMousePosition(), rl.GetMouseWheelMove())
}

// Draw renders the snapshot: grid, static then dynamic bodies, joints and contacts.
// Call between BeginDrawing and EndDrawing, before 2D overlays.
func (s *Scene) Draw(snap physics.Snapshot) {
	rl.BeginMode2D(s.Camera)
	if s.GridVisible {
		s.drawGrid()
	}
	for _, static := range []bool{true, false} {
		for _, b := range snap.Bodies {
			if b.Static == static {
				s.drawBody(b)
			}
		}
	}
	if s.ShowJoints {
		s.drawJoints(snap)
	}
	if s.ShowContacts {
		s.drawContacts(snap)
	}
	rl.EndMode2D()
}

func (s *Scene) drawBody(b physics.BodyState) {
	if len(b.Vertices) < 3 {
		return
	}
	fill := dynamicFill
	if b.Static {
		fill = staticFill
	}
	if c, ok := s.Colors[b.ID]; ok {
		fill = c
	}
	s.fan = s.fanPoints(s.fan[:0], b.Vertices)
	rl.DrawTriangleFan(s.fan, fill)
	thick := 1 / s.Camera.Zoom
	for i := range s.fan {
		rl.DrawLineEx(s.fan[i], s.fan[(i+1)%len(s.fan)], thick, outline)
	}
}

// fanPoints appends verts to dst in render space, keeping their order. Counter-clockwise world
// polygons come out with the winding raylib draws as front faces.
func (s *Scene) fanPoints(dst []rl.Vector2, verts []mgl64.Vec2) []rl.Vector2 {
	for _, v := range verts {
		dst = append(dst, s.toRender(v))
	}
	return dst
}

// drawJoints draws a line from each body's center to its anchor.
func (s *Scene) drawJoints(snap physics.Snapshot) {
	centers := make(map[physics.BodyID]mgl64.Vec2, len(snap.Bodies))
	for _, b := range snap.Bodies {
		centers[b.ID] = b.Position
	}
	thick := 2 / s.Camera.Zoom
	for _, j := range snap.Joints {
		rl.DrawLineEx(s.toRender(centers[j.A]), s.toRender(j.AnchorA), thick, jointColor)
		rl.DrawLineEx(s.toRender(centers[j.B]), s.toRender(j.AnchorB), thick, jointColor)
		rl.DrawCircleV(s.toRender(j.AnchorA), anchorRadius/s.Camera.Zoom, jointColor)
	}
}

// drawContacts marks contact points and draws their normals scaled to a quarter meter.
func (s *Scene) drawContacts(snap physics.Snapshot) {
	r := contactRadius / s.Camera.Zoom
	for _, c := range snap.Contacts {
		p := s.toRender(c.Position)
		tip := s.toRender(c.Position.Add(c.Normal.Mul(0.25)))
		rl.DrawLineEx(p, tip, 1/s.Camera.Zoom, normalColor)
		rl.DrawCircleV(p, r, contactFill)
	}
}

// drawGrid draws a one meter grid in render space with major lines every ten meters and the world axes.
func (s *Scene) drawGrid() {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY := rl.NewColor(80, 220, 80, axisLineAlpha)

	ppm := s.PixelsPerMeter
	ext := float32(gridExtent) * ppm
	thick := 1 / s.Camera.Zoom
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := major
		if i%gridMajorStep != 0 {
			c = minor
		}
		v := float32(i) * ppm
		rl.DrawLineEx(rl.Vector2{X: v, Y: -ext}, rl.Vector2{X: v, Y: ext}, thick, c)
		rl.DrawLineEx(rl.Vector2{X: -ext, Y: v}, rl.Vector2{X: ext, Y: v}, thick, c)
	}
	rl.DrawLineEx(rl.Vector2{X: -ext, Y: 0}, rl.Vector2{X: ext, Y: 0}, 2*thick, axisX)
	rl.DrawLineEx(rl.Vector2{X: 0, Y: -ext}, rl.Vector2{X: 0, Y: ext}, 2*thick, axisY)
}
