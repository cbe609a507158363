package terrain

import (
	"context"
	"errors"
	"log"

	"tileterrain/internal/chunk"
	"tileterrain/internal/meshing"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Options configures a Terrain.
type Options struct {
	Dims         [3]int
	ChunkSize    [3]int
	Scale        float32
	ViewDistance float32
	Registry     *tiles.Registry
	Atlas        meshing.UVSource
	Listener     chunk.Listener
	Logger       *log.Logger
	Workers      int
}

// Terrain owns the tile grid and keeps its chunks in step with edits.
// Like the chunk updater it drives, it belongs to a single goroutine.
type Terrain struct {
	grid     *world.Grid
	dims     [3]int
	registry *tiles.Registry
	updater  *chunk.Updater
	logger   *log.Logger
}

// New creates an empty terrain of opts.Dims.
func New(opts Options) (*Terrain, error) {
	if opts.Registry == nil {
		return nil, errors.New("terrain: registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	u, err := chunk.NewUpdater(chunk.Options{
		ChunkSize:    opts.ChunkSize,
		Scale:        opts.Scale,
		ViewDistance: opts.ViewDistance,
		Registry:     opts.Registry,
		Atlas:        opts.Atlas,
		Listener:     opts.Listener,
		Logger:       opts.Logger,
		Workers:      opts.Workers,
	})
	if err != nil {
		return nil, err
	}
	t := &Terrain{
		dims:     opts.Dims,
		registry: opts.Registry,
		updater:  u,
		logger:   opts.Logger,
	}
	t.Generate(nil)
	return t, nil
}

// Generate replaces the grid with gen's output, or an empty grid of the
// current dimensions when gen is nil. Chunks are repartitioned either way.
func (t *Terrain) Generate(gen world.Generator) {
	var g *world.Grid
	if gen != nil {
		g = gen.Generate(t.dims[0], t.dims[1], t.dims[2])
		if g == nil {
			t.logger.Printf("terrain: generator returned no grid, using an empty one")
		}
	}
	if g == nil {
		g = world.NewGrid(t.dims[0], t.dims[1], t.dims[2])
	}
	x, y, z := g.Dims()
	t.dims = [3]int{x, y, z}
	t.grid = g
	t.updater.SetGrid(g)
}

// AddTile writes one cell and invalidates the chunks that can see it.
// Out-of-range coordinates are ignored. With queued set the rebuild waits
// for the next Update.
func (t *Terrain) AddTile(tile tiles.Type, x, y, z int, queued bool) {
	if !t.grid.Set(x, y, z, tile) {
		return
	}
	t.updater.NotifyTileChanged(x, y, z, queued)
}

// RemoveTile clears one cell. See AddTile.
func (t *Terrain) RemoveTile(x, y, z int, queued bool) {
	t.AddTile(tiles.Empty, x, y, z, queued)
}

// AddTiles overlays the non-empty cells of src at the given offset. Cells
// landing outside the grid are dropped. Affected chunks rebuild on the next
// Update. It returns how many cells were written.
func (t *Terrain) AddTiles(src *world.Grid, ox, oy, oz int) int {
	if src == nil {
		return 0
	}
	n := t.grid.Overlay(src, ox, oy, oz)
	if n == 0 {
		return 0
	}
	sx, sy, sz := src.Dims()
	t.updater.NotifyRegionChanged(
		[3]int{ox, oy, oz},
		[3]int{ox + sx - 1, oy + sy - 1, oz + sz - 1},
	)
	return n
}

// SetDimensions discards the grid and starts over with an empty one.
func (t *Terrain) SetDimensions(x, y, z int) {
	t.dims = [3]int{max(x, 0), max(y, 0), max(z, 0)}
	t.Generate(nil)
}

func (t *Terrain) Dimensions() [3]int { return t.dims }

// SetScale changes the world size of a tile and repartitions.
func (t *Terrain) SetScale(s float32) { t.updater.SetScale(s) }

func (t *Terrain) Scale() float32 { return t.updater.Scale() }

// Tiles returns the live grid. Callers share it with background builds and
// must not hold on to a Read borrow across Update.
func (t *Terrain) Tiles() *world.Grid { return t.grid }

func (t *Terrain) Registry() *tiles.Registry { return t.registry }

func (t *Terrain) Updater() *chunk.Updater { return t.updater }

// Update runs one streaming pass for a viewer at viewer.
func (t *Terrain) Update(ctx context.Context, viewer mgl32.Vec3, node chunk.Node) error {
	return t.updater.UpdateVisibility(ctx, viewer, node)
}

// Close waits for any outstanding build and releases every chunk.
func (t *Terrain) Close() {
	t.updater.Close()
}
