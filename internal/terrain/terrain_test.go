package terrain

import (
	"context"
	"io"
	"log"
	"testing"

	"tileterrain/internal/atlas"
	"tileterrain/internal/chunk"
	"tileterrain/internal/config"
	"tileterrain/internal/gen"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

type countingNode struct {
	live map[[3]int]bool
}

func (n *countingNode) AttachChunk(c *chunk.Chunk) error {
	n.live[c.Index] = true
	return nil
}

func (n *countingNode) DetachChunk(c *chunk.Chunk) { delete(n.live, c.Index) }

func newTerrain(t *testing.T, dims [3]int) (*Terrain, *chunk.EventQueue) {
	t.Helper()
	reg := tiles.NewRegistry()
	reg.Add(tiles.Definition{Name: "stone"})
	a, err := atlas.New(reg, 32, 16)
	if err != nil {
		t.Fatal(err)
	}
	events := &chunk.EventQueue{}
	tr, err := New(Options{
		Dims:         dims,
		ViewDistance: 1000,
		Registry:     reg,
		Atlas:        a,
		Listener:     events,
		Logger:       log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(tr.Close)
	return tr, events
}

func settle(t *testing.T, tr *Terrain, node chunk.Node, viewer mgl32.Vec3) {
	t.Helper()
	for range len(tr.Updater().Chunks()) + 2 {
		if err := tr.Update(context.Background(), viewer, node); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewStartsEmpty(t *testing.T) {
	tr, _ := newTerrain(t, [3]int{32, 16, 16})
	if tr.Tiles().Get(3, 3, 3) != tiles.Empty {
		t.Fatal("new terrain is not empty")
	}
	if got := tr.Updater().Counts(); got != [3]int{2, 1, 1} {
		t.Fatalf("counts: got %v", got)
	}
}

func TestGenerateReplacesGridAndRepartitions(t *testing.T) {
	tr, _ := newTerrain(t, [3]int{16, 16, 16})
	old := tr.Tiles()
	tr.Generate(gen.Slab{MaxY: 4, Tile: 1})
	if tr.Tiles() == old {
		t.Fatal("grid was not replaced")
	}
	if tr.Updater().Grid() != tr.Tiles() {
		t.Fatal("updater still reads the old grid")
	}
	if tr.Tiles().Get(0, 3, 0) != 1 || tr.Tiles().Get(0, 4, 0) != tiles.Empty {
		t.Fatal("generator output not installed")
	}

	tr.Generate(world.GeneratorFunc(func(x, y, z int) *world.Grid { return nil }))
	if tr.Tiles().Get(0, 0, 0) != tiles.Empty {
		t.Fatal("nil generator output should zero-fill")
	}
}

func TestAddRemoveTileRoundTrip(t *testing.T) {
	tr, events := newTerrain(t, [3]int{32, 16, 16})
	tr.Generate(gen.Slab{MaxY: 4, Tile: 1})
	node := &countingNode{live: make(map[[3]int]bool)}
	settle(t, tr, node, mgl32.Vec3{16, 8, 8})
	events.Drain()

	c := tr.Updater().Chunk(0, 0, 0)
	before := c.Triangles()
	tr.AddTile(1, 5, 4, 5, false)
	if c.Triangles() == before {
		t.Fatal("immediate add did not rebuild")
	}
	tr.RemoveTile(5, 4, 5, false)
	if c.Triangles() != before {
		t.Fatalf("round trip: got %d triangles, want %d", c.Triangles(), before)
	}
	if len(events.Drain()) == 0 {
		t.Fatal("expected change notifications")
	}
}

func TestOutOfBoundsEditsAreNoOps(t *testing.T) {
	tr, events := newTerrain(t, [3]int{16, 16, 16})
	v := tr.Tiles().Version()
	tr.AddTile(1, 16, 0, 0, false)
	tr.RemoveTile(-1, 0, 0, true)
	if tr.Tiles().Version() != v || events.Len() != 0 {
		t.Fatal("out-of-bounds edit touched the grid")
	}
}

func TestQueuedAddMarksDirty(t *testing.T) {
	tr, _ := newTerrain(t, [3]int{16, 16, 16})
	tr.Generate(gen.Slab{MaxY: 4, Tile: 1})
	node := &countingNode{live: make(map[[3]int]bool)}
	settle(t, tr, node, mgl32.Vec3{8, 8, 8})

	tr.AddTile(1, 2, 4, 2, true)
	c := tr.Updater().Chunk(0, 0, 0)
	if c.Built() || c.Attached() {
		t.Fatal("queued add should leave the chunk dirty and detached")
	}
	settle(t, tr, node, mgl32.Vec3{8, 8, 8})
	if !c.Attached() {
		t.Fatal("dirty chunk was not rebuilt")
	}
}

func TestAddTilesOverlay(t *testing.T) {
	tr, _ := newTerrain(t, [3]int{32, 16, 16})
	node := &countingNode{live: make(map[[3]int]bool)}
	tr.Generate(gen.Slab{MaxY: 2, Tile: 1})
	settle(t, tr, node, mgl32.Vec3{16, 8, 8})

	src := gen.Cuboid{Max: [3]int{3, 3, 3}, Tile: 1}.Generate(4, 4, 4)
	n := tr.AddTiles(src, 30, 2, 0)
	if n != 2*4*4 {
		t.Fatalf("written: got %d, want %d", n, 2*4*4)
	}
	if tr.Tiles().Get(31, 5, 3) != 1 {
		t.Fatal("overlay cell missing")
	}
	if tr.Updater().Chunk(1, 0, 0).Built() {
		t.Fatal("overlaid chunk should be dirty")
	}
	if !tr.Updater().Chunk(0, 0, 0).Built() {
		t.Fatal("untouched chunk should stay built")
	}
}

func TestSetDimensionsStartsOver(t *testing.T) {
	tr, _ := newTerrain(t, [3]int{16, 16, 16})
	tr.Generate(gen.Slab{MaxY: 4, Tile: 1})
	tr.SetDimensions(48, 16, 32)
	if got := tr.Dimensions(); got != [3]int{48, 16, 32} {
		t.Fatalf("dims: got %v", got)
	}
	if tr.Tiles().Get(0, 0, 0) != tiles.Empty {
		t.Fatal("contents should not survive a resize")
	}
	if got := tr.Updater().Counts(); got != [3]int{3, 1, 2} {
		t.Fatalf("counts: got %v", got)
	}
}

func TestSetScaleMovesChunkCentres(t *testing.T) {
	tr, _ := newTerrain(t, [3]int{16, 16, 16})
	tr.SetScale(0.5)
	if got := tr.Updater().Chunk(0, 0, 0).Center(); got != (mgl32.Vec3{4, 4, 4}) {
		t.Fatalf("centre: got %v", got)
	}
	if tr.Scale() != 0.5 {
		t.Fatalf("scale: got %v", tr.Scale())
	}
}

func TestOpenFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Grid = [3]int{32, 32, 32}
	cfg.Shading = false
	events := &chunk.EventQueue{}
	tr, a, err := Open(cfg, events, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if a.ShadingEnabled() {
		t.Fatal("shading flag not applied to the atlas")
	}
	if a.Sheet() == nil {
		t.Fatal("expected a generated sheet")
	}
	grass, _ := tr.Registry().Lookup("grass")
	if got := tr.Tiles().Get(0, 0, 0); got == tiles.Empty || got == grass {
		t.Fatalf("bedrock of a heightmap column should be the under tile, got %d", got)
	}

	node := &countingNode{live: make(map[[3]int]bool)}
	settle(t, tr, node, mgl32.Vec3{16, 16, 16})
	if len(node.live) == 0 {
		t.Fatal("nothing attached")
	}
}

func TestOpenRejectsUnknownGeneratorTile(t *testing.T) {
	cfg := config.Default()
	cfg.Generator.Surface = "lava"
	if _, _, err := Open(cfg, &chunk.EventQueue{}, log.New(io.Discard, "", 0)); err == nil {
		t.Fatal("expected an error")
	}
}
