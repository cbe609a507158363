package chunk

import (
	"tileterrain/internal/meshing"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// State is where a chunk sits in its build lifecycle. Attachment is tracked
// separately because only built chunks can be attached.
type State int

const (
	Unbuilt State = iota
	Building
	Built
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "unbuilt"
	case Building:
		return "building"
	case Built:
		return "built"
	}
	return "unknown"
}

// Node is the scene-graph parent chunks attach their geometry to. DetachChunk
// must free whatever native resources AttachChunk created.
type Node interface {
	AttachChunk(c *Chunk) error
	DetachChunk(c *Chunk)
}

// Chunk is a fixed box of grid cells with its own mesh. A chunk is only
// touched by the goroutine driving its Updater.
type Chunk struct {
	Index  [3]int
	Range  meshing.Range
	center mgl32.Vec3

	state    State
	attached bool
	parent   Node

	// generation advances on every invalidation; a build result stamped
	// with an older generation is stale.
	generation  uint64
	gridVersion uint64
	masks       []uint8
	mesh        *meshing.Mesh
}

func newChunk(index [3]int, r meshing.Range, scale float32) *Chunk {
	sx, sy, sz := r.Size()
	return &Chunk{
		Index: index,
		Range: r,
		center: mgl32.Vec3{
			(float32(r.Min[0]) + float32(sx)/2) * scale,
			(float32(r.Min[1]) + float32(sy)/2) * scale,
			(float32(r.Min[2]) + float32(sz)/2) * scale,
		},
	}
}

// Center is the chunk's world-space midpoint.
func (c *Chunk) Center() mgl32.Vec3 { return c.center }

func (c *Chunk) State() State { return c.state }

func (c *Chunk) Built() bool { return c.state == Built }

func (c *Chunk) Attached() bool { return c.attached }

func (c *Chunk) Generation() uint64 { return c.generation }

// GridVersion is the grid version the current mesh was built from.
func (c *Chunk) GridVersion() uint64 { return c.gridVersion }

// Mesh returns the current geometry. It may be nil or empty.
func (c *Chunk) Mesh() *meshing.Mesh { return c.mesh }

// Faces is the number of visible faces in the current mesh.
func (c *Chunk) Faces() int {
	if c.mesh == nil {
		return 0
	}
	return c.mesh.Faces
}

// Triangles is the triangle count of the current mesh.
func (c *Chunk) Triangles() int {
	if c.mesh == nil {
		return 0
	}
	return c.mesh.TriangleCount()
}

// FaceMask returns the cached visibility mask of a cell. ok is false while
// the chunk is not built or the cell lies outside it.
func (c *Chunk) FaceMask(x, y, z int) (mask uint8, ok bool) {
	if c.state != Built || !c.Range.Contains(x, y, z) {
		return 0, false
	}
	if c.masks == nil {
		return 0, true
	}
	return c.masks[c.Range.Local(x, y, z)], true
}

// BuildIfNeeded meshes the chunk on the calling goroutine unless it is
// already built. It reports whether a build ran.
func (c *Chunk) BuildIfNeeded(g *world.Grid, defs meshing.Definitions, uv meshing.UVSource, scale float32) bool {
	if c.state == Built {
		return false
	}
	gen := c.begin()
	var (
		masks   []uint8
		mesh    *meshing.Mesh
		version uint64
	)
	g.Read(func(v world.View) {
		masks = meshing.ComputeFaceMasks(v, c.Range)
		mesh = meshing.Pack(v, c.Range, masks, defs, uv, scale)
		version = v.Version()
	})
	return c.finish(gen, masks, mesh, version)
}

// begin moves the chunk to Building and returns the generation the build
// must be stamped with.
func (c *Chunk) begin() uint64 {
	c.state = Building
	return c.generation
}

// finish installs a build result. A stale result is released and ignored.
func (c *Chunk) finish(gen uint64, masks []uint8, mesh *meshing.Mesh, version uint64) bool {
	if gen != c.generation {
		mesh.Release()
		return false
	}
	if c.mesh != nil && c.mesh != mesh {
		c.mesh.Release()
	}
	c.mesh = mesh
	c.masks = masks
	c.gridVersion = version
	c.state = Built
	return true
}

// fail returns a chunk whose build did not complete to Unbuilt.
func (c *Chunk) fail(gen uint64) {
	if gen == c.generation && c.state == Building {
		c.state = Unbuilt
	}
}

// markEmpty records a build that found no tiles at all.
func (c *Chunk) markEmpty(version uint64) {
	c.finish(c.generation, nil, meshing.NewMesh(0), version)
}

// Attach adds the chunk to node. It is a no-op, reporting false, unless the
// chunk is built, has geometry and is not attached yet.
func (c *Chunk) Attach(node Node) (bool, error) {
	if c.attached || c.state != Built || c.mesh.Empty() || node == nil {
		return false, nil
	}
	if err := node.AttachChunk(c); err != nil {
		return false, err
	}
	c.attached = true
	c.parent = node
	return true, nil
}

// Detach removes the chunk from its parent, which frees the native buffers.
// The CPU mesh stays so a later Attach needs no rebuild.
func (c *Chunk) Detach() bool {
	if !c.attached {
		return false
	}
	c.parent.DetachChunk(c)
	c.attached = false
	c.parent = nil
	return true
}

// SetDirty detaches the chunk and invalidates its masks. The old mesh is
// kept until the next build replaces it.
func (c *Chunk) SetDirty() {
	c.Detach()
	c.generation++
	c.masks = nil
	c.state = Unbuilt
}

// Destroy detaches and releases everything the chunk holds.
func (c *Chunk) Destroy() {
	c.Detach()
	c.generation++
	c.mesh.Release()
	c.mesh = nil
	c.masks = nil
	c.state = Unbuilt
}
