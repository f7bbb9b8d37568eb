package primitives

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()
	want := []string{"box", "hexagon", "plank", "triangle", "wedge"}
	got := r.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	for _, name := range want {
		d, _ := r.Lookup(name)
		if _, err := ParseColor(d.Color); err != nil {
			t.Errorf("%s color: %v", name, err)
		}
	}
	if _, ok := r.Lookup("circle"); ok {
		t.Error("Lookup(circle) ok, want missing")
	}
}

func TestOutline_CounterClockwise(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"triangle", "wedge", "hexagon"} {
		t.Run(name, func(t *testing.T) {
			d, _ := r.Lookup(name)
			pts, err := Outline(d, [2]float64{})
			if err != nil {
				t.Fatalf("Outline() error = %v", err)
			}
			var area float64
			for i := range pts {
				a, b := pts[i], pts[(i+1)%len(pts)]
				area += a[0]*b[1] - a[1]*b[0]
			}
			if area <= 0 {
				t.Errorf("signed area = %v, want counter-clockwise", area)
			}
		})
	}
}

func TestOutline_BoxAndErrors(t *testing.T) {
	pts, err := Outline(Def{Type: TypeBox}, [2]float64{2, 1})
	if err != nil || pts != nil {
		t.Errorf("Outline(box) = %v, %v, want nil, nil", pts, err)
	}
	if _, err := Outline(Def{Type: "star"}, [2]float64{1, 1}); err == nil {
		t.Error("Outline(star) error = nil")
	}
	if _, err := Outline(Def{Type: TypeTriangle}, [2]float64{0, 1}); err == nil {
		t.Error("Outline with zero width error = nil")
	}
	if _, err := Outline(Def{Type: TypeRegular, Sides: 2}, [2]float64{1, 1}); err == nil {
		t.Error("Outline with 2 sides error = nil")
	}
	tri, _ := Outline(Def{Type: TypeTriangle}, [2]float64{2, 4})
	if tri[2] != (mgl64.Vec2{0, 2}) {
		t.Errorf("triangle apex = %v, want (0,2)", tri[2])
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ff8000", color.RGBA{255, 128, 0, 255}, false},
		{"10203040", color.RGBA{0x10, 0x20, 0x30, 0x40}, false},
		{"", defaultColor, false},
		{"#fff", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
