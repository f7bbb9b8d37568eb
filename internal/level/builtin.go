package level

import (
	"sort"

	"boxworld/internal/mapgen"
)

var builtins = map[string]func() *Level{
	"rest":     Rest,
	"pyramid":  func() *Level { return Pyramid(10) },
	"stack":    func() *Level { return Stack(10) },
	"pendulum": func() *Level { return Pendulum(12) },
	"bridge":   func() *Level { return Bridge(15) },
	"terrain":  func() *Level { return Terrain(1) },
}

// Builtin returns a fresh copy of the named built-in level.
func Builtin(name string) (*Level, bool) {
	gen, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return gen(), true
}

// Names returns the built-in level names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// floorID is the id every built-in level gives its ground.
const floorID = 1

func floor() BodyDef {
	return BodyDef{ID: floorID, Static: true, Position: [2]float64{0, -10}, Size: [2]float64{100, 20}}
}

func fptr(f float64) *float64 { return &f }

// Rest drops a single box onto the floor.
func Rest() *Level {
	return &Level{
		Name:        "rest",
		Description: "A single box dropped onto the floor.",
		Bodies: []BodyDef{
			floor(),
			{ID: 2, Position: [2]float64{0, 4}, Size: [2]float64{1, 1}, Mass: 200},
		},
	}
}

// Pyramid stacks rows of unit boxes, each row half a box narrower on both sides.
func Pyramid(rows int) *Level {
	lvl := &Level{
		Name:        "pyramid",
		Description: "A pyramid of unit boxes.",
		Defaults:    BodyDef{Shape: "box", Size: [2]float64{1, 1}, Mass: 10},
		Bodies:      []BodyDef{floor()},
	}
	x0, y := -0.5625*float64(rows), 0.75
	for row := 0; row < rows; row++ {
		x := x0
		for col := row; col < rows; col++ {
			lvl.Bodies = append(lvl.Bodies, BodyDef{Position: [2]float64{x, y}})
			x += 1.125
		}
		x0 += 0.5625
		y += 2.0
	}
	return lvl
}

// Stack piles n boxes in a slightly jittered column.
func Stack(n int) *Level {
	lvl := &Level{
		Name:        "stack",
		Description: "A vertical stack of boxes.",
		Defaults:    BodyDef{Size: [2]float64{1, 1}, Mass: 1},
		Bodies:      []BodyDef{floor()},
	}
	for i := 0; i < n; i++ {
		// Deterministic jitter so the stack is not perfectly aligned.
		jitter := 0.1 * float64((i*7)%5-2) / 2
		lvl.Bodies = append(lvl.Bodies, BodyDef{Position: [2]float64{jitter, 0.51 + 1.05*float64(i)}})
	}
	return lvl
}

// Pendulum hangs a chain of links from a static pivot, starting horizontal.
func Pendulum(links int) *Level {
	const y = 12.0
	lvl := &Level{
		Name:        "pendulum",
		Description: "A chain of links swinging from a fixed pivot.",
		Defaults:    BodyDef{Shape: "plank", Size: [2]float64{0.75, 0.25}, Mass: 10, Friction: fptr(0.2)},
		Bodies:      []BodyDef{floor()},
	}
	prev := floorID
	for i := 0; i < links; i++ {
		id := 2 + i
		lvl.Bodies = append(lvl.Bodies, BodyDef{ID: id, Position: [2]float64{0.5 + float64(i), y}})
		lvl.Joints = append(lvl.Joints, JointDef{A: prev, B: id, Anchor: [2]float64{float64(i), y}})
		prev = id
	}
	return lvl
}

// Bridge spans planks between two anchors on the floor.
func Bridge(planks int) *Level {
	lvl := &Level{
		Name:        "bridge",
		Description: "A suspension bridge of jointed planks with a load on top.",
		Defaults:    BodyDef{Shape: "plank", Size: [2]float64{1, 0.25}, Mass: 50, Friction: fptr(0.2)},
		Bodies:      []BodyDef{floor()},
	}
	const spacing = 1.25
	start := -0.5 * spacing * float64(planks)
	prev := floorID
	for i := 0; i < planks; i++ {
		id := 2 + i
		x := start + spacing*float64(i)
		lvl.Bodies = append(lvl.Bodies, BodyDef{ID: id, Position: [2]float64{x + 0.5*spacing, 5}})
		lvl.Joints = append(lvl.Joints, JointDef{A: prev, B: id, Anchor: [2]float64{x, 5}})
		prev = id
	}
	lvl.Joints = append(lvl.Joints, JointDef{A: prev, B: floorID, Anchor: [2]float64{start + spacing*float64(planks), 5}})
	lvl.Bodies = append(lvl.Bodies,
		BodyDef{Shape: "box", Position: [2]float64{-1, 7}, Size: [2]float64{1, 1}, Mass: 20},
		BodyDef{Shape: "triangle", Position: [2]float64{1.5, 7.5}, Mass: 20},
	)
	return lvl
}

// Terrain scatters mixed shapes over noise-generated ground.
func Terrain(seed int64) *Level {
	opts := mapgen.DefaultTerrainOptions()
	opts.Seed = seed
	lvl := &Level{
		Name:        "terrain",
		Description: "Mixed shapes falling onto noise-generated terrain.",
		Defaults:    BodyDef{Mass: 2},
		Terrain:     &opts,
	}
	shapes := []string{"box", "triangle", "hexagon", "wedge", "plank"}
	for i := 0; i < 15; i++ {
		x := -14 + 2*float64(i)
		lvl.Bodies = append(lvl.Bodies, BodyDef{
			ID:       2 + i,
			Shape:    shapes[i%len(shapes)],
			Position: [2]float64{x, 8 + float64(i%3)},
			Rotation: 0.3 * float64(i%4),
		})
	}
	return lvl
}
