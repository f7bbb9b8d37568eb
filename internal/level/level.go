// Package level describes scenes as data: YAML level files and built-in generated levels, and builds
// them into a physics world.
package level

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"boxworld/internal/mapgen"
	"boxworld/internal/physics"
	"boxworld/internal/primitives"
)

// ShapePolygon marks a body whose corners are listed in Vertices.
const ShapePolygon = "polygon"

// BodyDef is one body of a level. Zero fields are filled from the level's defaults, so a zero value
// cannot override a non-zero default (use the Friction pointer for an explicit 0).
type BodyDef struct {
	// ID must be unique within the level. 0 assigns the next free id.
	ID int `yaml:"id"`
	// Shape is a primitive template name (box, plank, triangle, ...) or "polygon". Empty means box.
	Shape           string       `yaml:"shape"`
	Static          bool         `yaml:"static"`
	Position        [2]float64   `yaml:"position"`
	Rotation        float64      `yaml:"rotation"`
	Size            [2]float64   `yaml:"size"`
	Vertices        [][2]float64 `yaml:"vertices"`
	Mass            float64      `yaml:"mass"`
	Friction        *float64     `yaml:"friction"`
	Velocity        [2]float64   `yaml:"velocity"`
	AngularVelocity float64      `yaml:"angular_velocity"`
	Color           string       `yaml:"color"`
}

// JointDef pins bodies A and B together at a world anchor.
type JointDef struct {
	A      int        `yaml:"a"`
	B      int        `yaml:"b"`
	Anchor [2]float64 `yaml:"anchor"`
}

// Level is a scene description.
type Level struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Gravity and Iterations override the engine's physics tuning when set.
	Gravity    *[2]float64 `yaml:"gravity"`
	Iterations int         `yaml:"iterations"`

	Defaults BodyDef    `yaml:"defaults"`
	Bodies   []BodyDef  `yaml:"bodies"`
	Joints   []JointDef `yaml:"joints"`
	// Terrain adds a row of static noise-generated columns.
	Terrain *mapgen.TerrainOptions `yaml:"terrain"`
	// Primitives registers extra shape templates for this level.
	Primitives map[string]primitives.Def `yaml:"primitives"`
}

// Instance is a level built into a live world.
type Instance struct {
	Level  *Level
	World  *physics.World
	Colors map[physics.BodyID]color.RGBA
	// Primitives holds the built-in templates plus the level's own.
	Primitives *primitives.Registry
}

// Parse decodes a YAML level. Unknown keys are rejected.
func Parse(data []byte) (*Level, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var lvl Level
	if err := dec.Decode(&lvl); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("level: empty document")
		}
		return nil, fmt.Errorf("level: %w", err)
	}
	return &lvl, nil
}

// Load reads a YAML level file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if lvl.Name == "" {
		lvl.Name = path
	}
	return lvl, nil
}

// Open returns the built-in level called name, or loads name as a file path.
func Open(name string) (*Level, error) {
	if lvl, ok := Builtin(name); ok {
		return lvl, nil
	}
	return Load(name)
}

// Marshal encodes a level as YAML.
func Marshal(lvl *Level) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lvl); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("level: %w", err)
	}
	return buf.Bytes(), nil
}

// Resolve returns the bodies with defaults merged in and every ID assigned, in declaration order.
func (l *Level) Resolve() ([]BodyDef, error) {
	out := make([]BodyDef, 0, len(l.Bodies))
	used := make(map[int]bool, len(l.Bodies))
	for _, b := range l.Bodies {
		if b.ID != 0 {
			if used[b.ID] {
				return nil, fmt.Errorf("%w: level %q has duplicate body id %d", physics.ErrInvalidConfig, l.Name, b.ID)
			}
			used[b.ID] = true
		}
	}
	nextID := 1
	for i, b := range l.Bodies {
		merged := l.Defaults
		merged.ID = 0
		if merged.Friction != nil {
			f := *merged.Friction
			merged.Friction = &f
		}
		if err := copier.CopyWithOption(&merged, &b, copier.Option{IgnoreEmpty: true}); err != nil {
			return nil, fmt.Errorf("level: body %d: %w", i, err)
		}
		if merged.ID == 0 {
			for used[nextID] {
				nextID++
			}
			merged.ID = nextID
			used[nextID] = true
		}
		out = append(out, merged)
	}
	return out, nil
}

// Build creates a world from the level. Level gravity and iteration overrides are applied on top of params.
func Build(l *Level, params physics.Params) (*Instance, error) {
	if l.Gravity != nil {
		params.Gravity = mgl64.Vec2(*l.Gravity)
	}
	if l.Iterations > 0 {
		params.Iterations = l.Iterations
	}
	w, err := physics.NewWorld(params)
	if err != nil {
		return nil, err
	}

	reg := primitives.NewRegistry()
	for name, d := range l.Primitives {
		reg.Register(name, d)
	}

	bodies, err := l.Resolve()
	if err != nil {
		return nil, err
	}
	inst := &Instance{Level: l, World: w, Colors: make(map[physics.BodyID]color.RGBA, len(bodies)), Primitives: reg}
	maxID := 0
	for _, def := range bodies {
		if _, err := inst.AddBody(def); err != nil {
			return nil, fmt.Errorf("level %q: %w", l.Name, err)
		}
		maxID = max(maxID, def.ID)
	}

	if l.Terrain != nil {
		terrainColor, _ := primitives.ParseColor("#5d6d4e")
		for i, c := range mapgen.GenerateColumns(*l.Terrain) {
			id := physics.BodyID(maxID + 1 + i)
			x, y := c.Center()
			if _, err := w.AddStaticBody(id, mgl64.Vec2{float64(x), float64(y)}, 0, mgl64.Vec2{float64(c.Width), float64(c.Height)}); err != nil {
				return nil, fmt.Errorf("level %q: terrain column %d: %w", l.Name, i, err)
			}
			inst.Colors[id] = terrainColor
		}
	}

	for i, j := range l.Joints {
		a, b := w.Body(physics.BodyID(j.A)), w.Body(physics.BodyID(j.B))
		if a == nil || b == nil {
			return nil, fmt.Errorf("%w: level %q joint %d references unknown body (%d, %d)",
				physics.ErrInvalidConfig, l.Name, i, j.A, j.B)
		}
		if _, err := w.AddJoint(a, b, mgl64.Vec2(j.Anchor)); err != nil {
			return nil, fmt.Errorf("level %q: joint %d: %w", l.Name, i, err)
		}
	}
	return inst, nil
}

// AddBody adds one resolved body definition to the live world and records its color.
// Level defaults are not applied.
func (inst *Instance) AddBody(def BodyDef) (*physics.Body, error) {
	w := inst.World
	reg := inst.Primitives
	id := physics.BodyID(def.ID)
	pos := mgl64.Vec2(def.Position)

	var tmpl primitives.Def
	var vertices []mgl64.Vec2
	switch def.Shape {
	case ShapePolygon:
		if len(def.Vertices) == 0 {
			return nil, fmt.Errorf("%w: polygon body %d has no vertices", physics.ErrInvalidConfig, def.ID)
		}
		vertices = make([]mgl64.Vec2, len(def.Vertices))
		for i, v := range def.Vertices {
			vertices[i] = mgl64.Vec2(v)
		}
	default:
		name := def.Shape
		if name == "" {
			name = primitives.TypeBox
		}
		var ok bool
		tmpl, ok = reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: body %d has unknown shape %q", physics.ErrInvalidConfig, def.ID, def.Shape)
		}
		if def.Size == ([2]float64{}) {
			def.Size = tmpl.Size
		}
		var err error
		if vertices, err = primitives.Outline(tmpl, def.Size); err != nil {
			return nil, fmt.Errorf("%w: body %d: %v", physics.ErrInvalidConfig, def.ID, err)
		}
	}

	hex := def.Color
	if hex == "" {
		hex = tmpl.Color
	}
	if def.Static && def.Color == "" {
		hex = "#6b7280"
	}
	fill, err := primitives.ParseColor(hex)
	if err != nil {
		return nil, fmt.Errorf("%w: body %d: %v", physics.ErrInvalidConfig, def.ID, err)
	}

	var body *physics.Body
	switch {
	case vertices == nil && def.Static:
		body, err = w.AddStaticBody(id, pos, def.Rotation, mgl64.Vec2(def.Size))
	case vertices == nil:
		body, err = w.AddDynamicBody(id, pos, def.Rotation, mgl64.Vec2(def.Size), def.Mass)
	case def.Static:
		body, err = w.AddStaticPolygon(id, pos, def.Rotation, vertices)
	default:
		body, err = w.AddDynamicPolygon(id, pos, def.Rotation, vertices, def.Mass)
	}
	if err != nil {
		return nil, err
	}
	if def.Friction != nil {
		if err := body.SetFriction(*def.Friction); err != nil {
			return nil, err
		}
	}
	body.SetVelocity(mgl64.Vec2(def.Velocity))
	body.SetAngularVelocity(def.AngularVelocity)
	inst.Colors[id] = fill
	return body, nil
}
