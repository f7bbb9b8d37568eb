package physics

import "github.com/go-gl/mathgl/mgl64"

// BodyState is the post-step state of one body as seen by renderers.
type BodyState struct {
	ID       BodyID       `json:"id"`
	Static   bool         `json:"static"`
	Position mgl64.Vec2   `json:"position"`
	Rotation float64      `json:"rotation"`
	Velocity mgl64.Vec2   `json:"velocity"`
	Vertices []mgl64.Vec2 `json:"vertices"`
}

// JointState is the world-space anchor pair of one joint.
type JointState struct {
	A       BodyID     `json:"a"`
	B       BodyID     `json:"b"`
	AnchorA mgl64.Vec2 `json:"anchor_a"`
	AnchorB mgl64.Vec2 `json:"anchor_b"`
}

// ContactState is one contact point of the last step.
type ContactState struct {
	A          BodyID     `json:"a"`
	B          BodyID     `json:"b"`
	Position   mgl64.Vec2 `json:"position"`
	Normal     mgl64.Vec2 `json:"normal"`
	Separation float64    `json:"separation"`
	Pn         float64    `json:"pn"`
	Pt         float64    `json:"pt"`
}

// Snapshot is a deep copy of the world's visible state. It shares nothing with the World and may be
// handed to other goroutines.
type Snapshot struct {
	Step     int            `json:"step"`
	Time     float64        `json:"time"`
	Bodies   []BodyState    `json:"bodies"`
	Joints   []JointState   `json:"joints"`
	Contacts []ContactState `json:"contacts"`
}

// Stats counts what the world currently holds.
type Stats struct {
	Steps         int
	DynamicBodies int
	StaticBodies  int
	Joints        int
	Manifolds     int
	Contacts      int
}

// Snapshot copies the current state. Bodies are listed dynamic first, then static.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Step:     w.steps,
		Time:     w.time,
		Bodies:   make([]BodyState, 0, len(w.dynamic)+len(w.static)),
		Joints:   make([]JointState, 0, len(w.joints)),
		Contacts: make([]ContactState, 0, 2*len(w.manifolds)),
	}
	for _, b := range w.Bodies() {
		s.Bodies = append(s.Bodies, BodyState{
			ID:       b.id,
			Static:   b.IsStatic(),
			Position: b.position,
			Rotation: b.rotation,
			Velocity: b.velocity,
			Vertices: b.Vertices(),
		})
	}
	for _, j := range w.joints {
		pa, pb := j.Anchors()
		s.Joints = append(s.Joints, JointState{A: j.a.id, B: j.b.id, AnchorA: pa, AnchorB: pb})
	}
	for _, m := range w.manifolds {
		for _, c := range m.Contacts {
			s.Contacts = append(s.Contacts, ContactState{
				A:          m.A.id,
				B:          m.B.id,
				Position:   c.Position,
				Normal:     c.Normal,
				Separation: c.Separation,
				Pn:         c.Pn,
				Pt:         c.Pt,
			})
		}
	}
	return s
}

// Stats returns current counts.
func (w *World) Stats() Stats {
	st := Stats{
		Steps:         w.steps,
		DynamicBodies: len(w.dynamic),
		StaticBodies:  len(w.static),
		Joints:        len(w.joints),
		Manifolds:     len(w.manifolds),
	}
	for _, m := range w.manifolds {
		st.Contacts += len(m.Contacts)
	}
	return st
}
