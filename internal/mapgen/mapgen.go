package mapgen

import (
	"time"

	"github.com/chewxy/math32"
)

// TerrainOptions controls procedural terrain generation.
// Columns is the number of terrain columns; ColumnWidth is the world width of one column.
// MinHeight and HeightScale bound the column heights in world units; columns stand on Bottom.
// Seed controls randomness; Seed == 0 uses a time-based seed.
// Octaves, Frequency, Lacunarity, and Gain control the fractal noise shape.
type TerrainOptions struct {
	Columns     int     `yaml:"columns"`
	ColumnWidth float32 `yaml:"column_width"`
	MinHeight   float32 `yaml:"min_height"`
	HeightScale float32 `yaml:"height_scale"`
	Bottom      float32 `yaml:"bottom"`

	Seed       int64   `yaml:"seed"`
	Octaves    int     `yaml:"octaves"`
	Frequency  float32 `yaml:"frequency"`
	Lacunarity float32 `yaml:"lacunarity"`
	Gain       float32 `yaml:"gain"`
}

// DefaultTerrainOptions returns a sane default configuration.
func DefaultTerrainOptions() TerrainOptions {
	return TerrainOptions{
		Columns:     40,
		ColumnWidth: 1.0,
		MinHeight:   0.5,
		HeightScale: 4.0,
		Bottom:      -2.0,
		Seed:        0,
		Octaves:     4,
		Frequency:   0.12,
		Lacunarity:  2.0,
		Gain:        0.5,
	}
}

// Column is one terrain column: an axis-aligned box centered on X whose base sits on the terrain bottom.
type Column struct {
	X      float32
	Bottom float32
	Width  float32
	Height float32
}

// Center returns the column's center point.
func (c Column) Center() (x, y float32) {
	return c.X, c.Bottom + c.Height*0.5
}

// Top returns the y coordinate of the column's upper face.
func (c Column) Top() float32 {
	return c.Bottom + c.Height
}

// GenerateColumns builds a 1D height profile as a row of columns centered around x = 0.
// Each column's height is derived from fractal noise. The result is deterministic for a non-zero seed.
func GenerateColumns(opts TerrainOptions) []Column {
	if opts.Columns <= 0 {
		return nil
	}
	if opts.ColumnWidth <= 0 {
		opts.ColumnWidth = 1
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = 0.25
	}
	if opts.HeightScale < opts.MinHeight {
		opts.HeightScale = opts.MinHeight
	}
	if opts.Octaves <= 0 {
		opts.Octaves = 1
	}
	if opts.Frequency <= 0 {
		opts.Frequency = 0.05
	}
	if opts.Lacunarity <= 0 {
		opts.Lacunarity = 2.0
	}
	if opts.Gain <= 0 {
		opts.Gain = 0.5
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// First column center is at -extent + halfWidth.
	halfWidth := opts.ColumnWidth * 0.5
	startX := -float32(opts.Columns)*opts.ColumnWidth*0.5 + halfWidth

	cols := make([]Column, 0, opts.Columns)
	for i := 0; i < opts.Columns; i++ {
		// Sample along one lattice row; the second coordinate only decorrelates seeds.
		h := fractalValueNoise2D(float32(i)*opts.Frequency, 0.5, seed, opts.Octaves, opts.Lacunarity, opts.Gain)
		height := opts.MinHeight + h*(opts.HeightScale-opts.MinHeight)
		if !isFinite(height) || height <= 0 {
			height = opts.MinHeight
		}
		cols = append(cols, Column{
			X:      startX + float32(i)*opts.ColumnWidth,
			Bottom: opts.Bottom,
			Width:  opts.ColumnWidth,
			Height: height,
		})
	}
	return cols
}

// fractalValueNoise2D is simple fractal value noise: layered smooth value noise with
// configurable octaves, lacunarity, and gain. Output is in [0,1].
func fractalValueNoise2D(x, y float32, seed int64, octaves int, lacunarity, gain float32) float32 {
	var sum float32
	var amplitude float32 = 1
	var maxAmp float32 = 0
	freq := float32(1)

	for i := 0; i < octaves; i++ {
		n := valueNoise2D(x*freq, y*freq, int32(seed)+int32(i))
		sum += n * amplitude
		maxAmp += amplitude
		amplitude *= gain
		freq *= lacunarity
	}
	if maxAmp == 0 {
		return 0
	}
	return sum / maxAmp
}

// valueNoise2D is smooth value noise in [0,1] using a hash-based lattice.
func valueNoise2D(x, y float32, seed int32) float32 {
	x0 := int32(math32.Floor(x))
	y0 := int32(math32.Floor(y))
	tx := x - float32(x0)
	ty := y - float32(y0)

	v00 := hash2D(x0, y0, seed)
	v10 := hash2D(x0+1, y0, seed)
	v01 := hash2D(x0, y0+1, seed)
	v11 := hash2D(x0+1, y0+1, seed)

	sx := smoothStep(tx)
	sy := smoothStep(ty)

	ix0 := lerp(v00, v10, sx)
	ix1 := lerp(v01, v11, sx)
	return lerp(ix0, ix1, sy)
}

// hash2D maps integer lattice coordinates to a deterministic pseudo-random float in [0,1].
func hash2D(x, y, seed int32) float32 {
	n := x*374761393 + y*668265263 + seed*362437
	n = (n ^ (n >> 13)) * 1274126177
	n = n ^ (n >> 16)
	const invMaxInt = 1.0 / 2147483647.0
	return float32(n&0x7fffffff) * float32(invMaxInt)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// smoothStep is cubic easing: 3t^2 - 2t^3.
func smoothStep(t float32) float32 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

func isFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
