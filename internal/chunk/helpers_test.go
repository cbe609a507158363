package chunk

import (
	"bytes"
	"context"
	"io"
	"log"
	"testing"

	"tileterrain/internal/atlas"
	"tileterrain/internal/gen"
	"tileterrain/internal/meshing"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeNode struct {
	live     map[[3]int]*meshing.Mesh
	attaches int
	detaches int
}

func newFakeNode() *fakeNode {
	return &fakeNode{live: make(map[[3]int]*meshing.Mesh)}
}

func (n *fakeNode) AttachChunk(c *Chunk) error {
	n.live[c.Index] = c.Mesh()
	n.attaches++
	return nil
}

func (n *fakeNode) DetachChunk(c *Chunk) {
	delete(n.live, c.Index)
	n.detaches++
}

type harness struct {
	grid    *world.Grid
	reg     *tiles.Registry
	atlas   *atlas.Atlas
	events  *EventQueue
	node    *fakeNode
	updater *Updater
	logs    *bytes.Buffer
}

func newHarness(t *testing.T, g *world.Grid, viewDistance float32) *harness {
	t.Helper()
	reg := tiles.NewRegistry()
	reg.Add(tiles.Definition{Name: "stone", Textures: [tiles.FaceCount]int{1, 1, 1, 1, 2, 3}})
	a, err := atlas.New(reg, 64, 16)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{
		grid:   g,
		reg:    reg,
		atlas:  a,
		events: &EventQueue{},
		node:   newFakeNode(),
		logs:   &bytes.Buffer{},
	}
	h.updater, err = NewUpdater(Options{
		ChunkSize:    [3]int{16, 16, 16},
		Scale:        1,
		ViewDistance: viewDistance,
		Registry:     reg,
		Atlas:        a,
		Listener:     h.events,
		Logger:       log.New(h.logs, "", 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	h.updater.SetGrid(g)
	t.Cleanup(h.updater.Close)
	return h
}

func (h *harness) tick(t *testing.T, viewer mgl32.Vec3) {
	t.Helper()
	if err := h.updater.UpdateVisibility(context.Background(), viewer, h.node); err != nil {
		t.Fatalf("update: %v", err)
	}
}

func (h *harness) settle(t *testing.T, viewer mgl32.Vec3) {
	t.Helper()
	for range len(h.updater.Chunks()) + 2 {
		h.tick(t, viewer)
	}
}

func slab(x, y, z, maxY int) *world.Grid {
	return gen.Slab{MaxY: maxY, Tile: 1}.Generate(x, y, z)
}

func countKind(events []Event, k EventKind) int {
	n := 0
	for _, e := range events {
		if e.Kind == k {
			n++
		}
	}
	return n
}

var quietLogger = log.New(io.Discard, "", 0)
