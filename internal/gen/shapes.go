package gen

import (
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"
)

// Flat fills every column up to and including Height.
type Flat struct {
	Height int
	Tile   tiles.Type
}

func (f Flat) Generate(x, y, z int) *world.Grid {
	g := world.NewGrid(x, y, z)
	g.Fill(func(_, ty, _ int) tiles.Type {
		if ty <= f.Height {
			return f.Tile
		}
		return tiles.Empty
	})
	return g
}

// Slab fills every cell with y < MaxY.
type Slab struct {
	MaxY int
	Tile tiles.Type
}

func (s Slab) Generate(x, y, z int) *world.Grid {
	return Flat{Height: s.MaxY - 1, Tile: s.Tile}.Generate(x, y, z)
}

// Cuboid fills the inclusive box [Min, Max].
type Cuboid struct {
	Min, Max [3]int
	Tile     tiles.Type
}

func (c Cuboid) Contains(x, y, z int) bool {
	return x >= c.Min[0] && x <= c.Max[0] &&
		y >= c.Min[1] && y <= c.Max[1] &&
		z >= c.Min[2] && z <= c.Max[2]
}

func (c Cuboid) Generate(x, y, z int) *world.Grid {
	g := world.NewGrid(x, y, z)
	g.Fill(func(tx, ty, tz int) tiles.Type {
		if c.Contains(tx, ty, tz) {
			return c.Tile
		}
		return tiles.Empty
	})
	return g
}
