package gen

import (
	"math"

	"tileterrain/internal/tiles"
	"tileterrain/internal/world"
)

// Heightmap fills columns up to a value-noise surface height.
type Heightmap struct {
	Seed        int64
	Scale       float64
	Base        int
	Amplitude   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64

	// Surface is placed on the top cell of each column, Under below it.
	Surface tiles.Type
	Under   tiles.Type
	// SurfaceDepth is how many cells of Surface cap a column.
	SurfaceDepth int
}

// NewHeightmap returns a generator with rolling-hill defaults.
func NewHeightmap(seed int64, surface, under tiles.Type) *Heightmap {
	return &Heightmap{
		Seed:         seed,
		Scale:        1.0 / 32.0,
		Base:         8,
		Amplitude:    12,
		Octaves:      4,
		Persistence:  0.5,
		Lacunarity:   2.0,
		Surface:      surface,
		Under:        under,
		SurfaceDepth: 1,
	}
}

// HeightAt returns the surface height at column (x,z), never below zero.
func (h *Heightmap) HeightAt(x, z int) int {
	n := octaveNoise2D(float64(x)*h.Scale, float64(z)*h.Scale, h.Seed, h.Octaves, h.Persistence, h.Lacunarity)
	height := float64(h.Base) + n*h.Amplitude
	if height < 0 {
		height = 0
	}
	return int(math.Floor(height))
}

func (h *Heightmap) Generate(x, y, z int) *world.Grid {
	g := world.NewGrid(x, y, z)
	heights := make([]int, x*z)
	for tz := range z {
		for tx := range x {
			heights[tz*x+tx] = h.HeightAt(tx, tz)
		}
	}
	depth := max(h.SurfaceDepth, 1)
	g.Fill(func(tx, ty, tz int) tiles.Type {
		top := heights[tz*x+tx]
		switch {
		case ty > top:
			return tiles.Empty
		case ty > top-depth:
			return h.Surface
		default:
			return h.Under
		}
	})
	return g
}
