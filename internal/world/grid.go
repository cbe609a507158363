package world

import (
	"sync"
	"sync/atomic"

	"tileterrain/internal/tiles"
)

// Grid is a dense 3D array of tile types. Writes take an exclusive lock and
// bump the version; readers that need a consistent view for a whole pass
// (mesh builds, raycasts) borrow it through Read.
type Grid struct {
	mu         sync.RWMutex
	sx, sy, sz int
	cells      []tiles.Type
	version    atomic.Uint64
}

// NewGrid allocates an empty grid. Negative dimensions are treated as zero.
func NewGrid(x, y, z int) *Grid {
	x, y, z = max(x, 0), max(y, 0), max(z, 0)
	return &Grid{
		sx:    x,
		sy:    y,
		sz:    z,
		cells: make([]tiles.Type, x*y*z),
	}
}

// Dims returns the grid size along each axis.
func (g *Grid) Dims() (x, y, z int) {
	return g.sx, g.sy, g.sz
}

// Len is the total number of cells.
func (g *Grid) Len() int { return len(g.cells) }

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.sx && y < g.sy && z < g.sz
}

func (g *Grid) index(x, y, z int) int {
	return (y*g.sz+z)*g.sx + x
}

// Get returns the tile at (x,y,z), or Empty when out of bounds.
func (g *Grid) Get(x, y, z int) tiles.Type {
	if !g.InBounds(x, y, z) {
		return tiles.Empty
	}
	g.mu.RLock()
	t := g.cells[g.index(x, y, z)]
	g.mu.RUnlock()
	return t
}

// Set writes a tile. It reports false, without touching the grid, when the
// coordinates are out of bounds.
func (g *Grid) Set(x, y, z int, t tiles.Type) bool {
	if !g.InBounds(x, y, z) {
		return false
	}
	g.mu.Lock()
	i := g.index(x, y, z)
	if g.cells[i] != t {
		g.cells[i] = t
		g.version.Add(1)
	}
	g.mu.Unlock()
	return true
}

// Fill sets every cell from fn, bumping the version once.
func (g *Grid) Fill(fn func(x, y, z int) tiles.Type) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := 0
	for y := range g.sy {
		for z := range g.sz {
			for x := range g.sx {
				g.cells[i] = fn(x, y, z)
				i++
			}
		}
	}
	g.version.Add(1)
}

// Version is a generation counter that advances on every effective write.
func (g *Grid) Version() uint64 {
	return g.version.Load()
}

// Read runs fn with a read-only view. Writers block until fn returns, so the
// view must not escape the callback.
func (g *Grid) Read(fn func(v View)) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	fn(View{g: g})
}

// Overlay copies every non-empty cell of src into g at the given offset.
// Destination cells outside the grid are skipped. It returns the number of
// cells written.
func (g *Grid) Overlay(src *Grid, ox, oy, oz int) int {
	if src == nil {
		return 0
	}
	src.mu.RLock()
	sx, sy, sz := src.sx, src.sy, src.sz
	cells := make([]tiles.Type, len(src.cells))
	copy(cells, src.cells)
	src.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	i := 0
	for y := range sy {
		for z := range sz {
			for x := range sx {
				t := cells[i]
				i++
				if t == tiles.Empty {
					continue
				}
				dx, dy, dz := x+ox, y+oy, z+oz
				if !g.InBounds(dx, dy, dz) {
					continue
				}
				g.cells[g.index(dx, dy, dz)] = t
				n++
			}
		}
	}
	if n > 0 {
		g.version.Add(1)
	}
	return n
}

// View is an unlocked accessor valid only inside Grid.Read.
type View struct {
	g *Grid
}

// ViewOf wraps a grid the caller already holds exclusive ownership of, such
// as a freshly generated grid no other goroutine can see yet.
func ViewOf(g *Grid) View { return View{g: g} }

func (v View) Dims() (x, y, z int) { return v.g.Dims() }

func (v View) InBounds(x, y, z int) bool { return v.g.InBounds(x, y, z) }

// At returns the tile at (x,y,z), or Empty when out of bounds.
func (v View) At(x, y, z int) tiles.Type {
	if !v.g.InBounds(x, y, z) {
		return tiles.Empty
	}
	return v.g.cells[v.g.index(x, y, z)]
}

// Empty reports whether the cell is air. Cells beyond the grid count as air.
func (v View) Empty(x, y, z int) bool {
	return v.At(x, y, z) == tiles.Empty
}

// Version is the grid generation the view observes.
func (v View) Version() uint64 { return v.g.Version() }
