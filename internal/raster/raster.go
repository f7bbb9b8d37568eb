// Package raster renders world snapshots to images without a window.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/vector"

	"boxworld/internal/physics"
)

// Options controls the view. Scale is pixels per world unit; Center is the world point at the image center.
type Options struct {
	Width, Height int
	Scale         float64
	Center        mgl64.Vec2

	Background color.RGBA
	Static     color.RGBA
	Dynamic    color.RGBA
	Joint      color.RGBA
	Contact    color.RGBA
	// Colors overrides the fill per body.
	Colors map[physics.BodyID]color.RGBA

	DrawJoints   bool
	DrawContacts bool
}

// DefaultOptions returns an 800x600 view of 30 px per unit centered above the origin.
func DefaultOptions() Options {
	return Options{
		Width:        800,
		Height:       600,
		Scale:        30,
		Center:       mgl64.Vec2{0, 6},
		Background:   color.RGBA{R: 24, G: 26, B: 32, A: 255},
		Static:       color.RGBA{R: 107, G: 114, B: 128, A: 255},
		Dynamic:      color.RGBA{R: 217, G: 164, B: 65, A: 255},
		Joint:        color.RGBA{R: 90, G: 200, B: 250, A: 255},
		Contact:      color.RGBA{R: 230, G: 60, B: 60, A: 255},
		DrawJoints:   true,
		DrawContacts: true,
	}
}

// Render draws the snapshot. The canvas is filled with world y pointing up and flipped once at the end.
func Render(s physics.Snapshot, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 || !(opts.Scale > 0) {
		return nil, fmt.Errorf("raster: invalid view %dx%d at scale %g", opts.Width, opts.Height, opts.Scale)
	}
	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	v := view{opts: opts}
	// Static bodies first so moving bodies stay visible where they overlap.
	for _, static := range []bool{true, false} {
		for _, b := range s.Bodies {
			if b.Static != static {
				continue
			}
			fill := opts.Dynamic
			if b.Static {
				fill = opts.Static
			}
			if c, ok := opts.Colors[b.ID]; ok {
				fill = c
			}
			v.fillPolygon(canvas, b.Vertices, fill)
		}
	}
	if opts.DrawJoints {
		for _, j := range s.Joints {
			v.fillSquare(canvas, j.AnchorA, 3, opts.Joint)
			v.fillSquare(canvas, j.AnchorB, 3, opts.Joint)
		}
	}
	if opts.DrawContacts {
		for _, c := range s.Contacts {
			v.fillSquare(canvas, c.Position, 2, opts.Contact)
		}
	}
	return transform.FlipV(canvas), nil
}

// Save writes img as a PNG file.
func Save(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("raster: save %s: %w", path, err)
	}
	return nil
}

type view struct {
	opts Options
}

// toCanvas maps a world point to canvas pixels with y up.
func (v view) toCanvas(p mgl64.Vec2) (float32, float32) {
	x := (p[0]-v.opts.Center[0])*v.opts.Scale + float64(v.opts.Width)/2
	y := (p[1]-v.opts.Center[1])*v.opts.Scale + float64(v.opts.Height)/2
	return float32(x), float32(y)
}

func (v view) fillPolygon(dst draw.Image, pts []mgl64.Vec2, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	r := vector.NewRasterizer(v.opts.Width, v.opts.Height)
	r.DrawOp = draw.Over
	x, y := v.toCanvas(pts[0])
	r.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = v.toCanvas(p)
		r.LineTo(x, y)
	}
	r.ClosePath()
	r.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// fillSquare marks a world point with a square of half-size px pixels.
func (v view) fillSquare(dst draw.Image, p mgl64.Vec2, px int, c color.RGBA) {
	x, y := v.toCanvas(p)
	rect := image.Rect(int(x)-px, int(y)-px, int(x)+px+1, int(y)+px+1)
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}
