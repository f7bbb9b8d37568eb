package primitives

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// defaultColor is the fill for templates without a color.
var defaultColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// Registry maps template names to shape definitions. The built-in templates are box, plank,
// triangle, wedge and hexagon; level files may register more.
type Registry struct {
	defs map[string]Def
}

// NewRegistry returns a registry holding the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Def)}
	r.Register("box", Def{Type: TypeBox, Size: [2]float64{1, 1}, Color: "#d9a441"})
	r.Register("plank", Def{Type: TypeBox, Size: [2]float64{2, 0.25}, Color: "#b5763c"})
	r.Register("triangle", Def{Type: TypeTriangle, Size: [2]float64{1.2, 1}, Color: "#5fa8d3"})
	r.Register("wedge", Def{Type: TypeWedge, Size: [2]float64{1.5, 0.75}, Color: "#8bc34a"})
	r.Register("hexagon", Def{Type: TypeRegular, Sides: 6, Size: [2]float64{1, 1}, Color: "#c06c84"})
	return r
}

// Register adds or replaces a template.
func (r *Registry) Register(name string, d Def) {
	r.defs[name] = d
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Outline returns counter-clockwise polygon corners for a template type scaled to size (full extent),
// centered on the origin. Boxes return nil: the physics package builds them directly.
func Outline(d Def, size [2]float64) ([]mgl64.Vec2, error) {
	if size == ([2]float64{}) {
		size = d.Size
	}
	hx, hy := size[0]*0.5, size[1]*0.5
	if !(hx > 0) || !(hy > 0) {
		return nil, fmt.Errorf("primitives: %s size must be positive, got %v", d.Type, size)
	}
	switch d.Type {
	case TypeBox, "":
		return nil, nil
	case TypeTriangle:
		return []mgl64.Vec2{{-hx, -hy}, {hx, -hy}, {0, hy}}, nil
	case TypeWedge:
		return []mgl64.Vec2{{-hx, -hy}, {hx, -hy}, {-hx, hy}}, nil
	case TypeRegular:
		n := d.Sides
		if n < 3 {
			return nil, fmt.Errorf("primitives: regular polygon needs at least 3 sides, got %d", n)
		}
		out := make([]mgl64.Vec2, n)
		for i := range out {
			a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
			out[i] = mgl64.Vec2{hx * math.Cos(a), hy * math.Sin(a)}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("primitives: unknown shape type %q", d.Type)
	}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". An empty string gives the default gray.
func ParseColor(s string) (color.RGBA, error) {
	if s == "" {
		return defaultColor, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("primitives: color %q must be #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("primitives: color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
