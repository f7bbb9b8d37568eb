package primitives

// Def is the YAML definition of a named shape template that level files refer to by name
// (e.g. `shape: plank`). Size is the full extent; Color is "#rrggbb".
type Def struct {
	Type  string     `yaml:"type"`
	Size  [2]float64 `yaml:"size,omitempty"`
	Color string     `yaml:"color,omitempty"`
	// Sides is the corner count for the "regular" type.
	Sides int `yaml:"sides,omitempty"`
}

// Shape types understood by Outline.
const (
	TypeBox      = "box"
	TypeTriangle = "triangle"
	TypeWedge    = "wedge"
	TypeRegular  = "regular"
)
