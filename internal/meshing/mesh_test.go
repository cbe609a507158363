package meshing

import (
	"testing"

	"tileterrain/internal/atlas"
	"tileterrain/internal/gen"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

type faceUVs struct{}

// FaceUV gives every face its own recognisable cell.
func (faceUVs) FaceUV(t tiles.Type, f tiles.Face) atlas.UVRect {
	u := float32(f) * 0.1
	return atlas.UVRect{U0: u, V0: 0.25, U1: u + 0.1, V1: 0.75}
}

func testRegistry() *tiles.Registry {
	reg := tiles.NewRegistry()
	reg.Add(tiles.Definition{Name: "stone"})
	return reg
}

func near(a, b float32) bool {
	d := a - b
	return d > -1e-4 && d < 1e-4
}

func vecNear(a, b mgl32.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func fullRange(g *world.Grid) Range {
	x, y, z := g.Dims()
	return Range{Max: [3]int{x - 1, y - 1, z - 1}}
}

func build(g *world.Grid, r Range, reg *tiles.Registry, scale float32) *Mesh {
	var m *Mesh
	g.Read(func(v world.View) {
		m = Build(v, r, reg, faceUVs{}, scale)
	})
	return m
}

func TestSingleTileAtCorner(t *testing.T) {
	g := world.NewGrid(4, 4, 4)
	g.Set(0, 0, 0, 1)
	r := fullRange(g)

	var masks []uint8
	g.Read(func(v world.View) { masks = ComputeFaceMasks(v, r) })
	if masks[r.Local(0, 0, 0)] != tiles.AllFaces {
		t.Fatalf("corner mask: got %#x, want %#x", masks[0], tiles.AllFaces)
	}

	m := build(g, r, testRegistry(), 1)
	if m.Faces != 6 {
		t.Fatalf("faces: got %d, want 6", m.Faces)
	}
	if m.VertexCount() != 6*QuintVertices || m.TriangleCount() != 6*QuintTriangles {
		t.Fatalf("buffers: got %d verts %d tris", m.VertexCount(), m.TriangleCount())
	}
	if m.Wide() {
		t.Fatal("small mesh should use 16-bit indices")
	}
	if !vecNear(m.Min, mgl32.Vec3{0, 0, 0}) || !vecNear(m.Max, mgl32.Vec3{1, 1, 1}) {
		t.Fatalf("bounds: got %v %v", m.Min, m.Max)
	}
}

func TestSolidCuboidInteriorIsCulled(t *testing.T) {
	const n = 5
	g := gen.Cuboid{Max: [3]int{n - 1, n - 1, n - 1}, Tile: 1}.Generate(n, n, n)
	r := fullRange(g)

	var masks []uint8
	g.Read(func(v world.View) { masks = ComputeFaceMasks(v, r) })
	for y := 1; y < n-1; y++ {
		for z := 1; z < n-1; z++ {
			for x := 1; x < n-1; x++ {
				if m := masks[r.Local(x, y, z)]; m != 0 {
					t.Fatalf("interior (%d,%d,%d): got mask %#x, want 0", x, y, z, m)
				}
			}
		}
	}
	if got, want := CountFaces(masks), 6*n*n; got != want {
		t.Fatalf("shell faces: got %d, want %d", got, want)
	}
}

func TestMasksReadNeighboursOutsideRange(t *testing.T) {
	g := gen.Cuboid{Max: [3]int{3, 0, 0}, Tile: 1}.Generate(4, 1, 1)
	r := Range{Max: [3]int{1, 0, 0}}

	var masks []uint8
	g.Read(func(v world.View) { masks = ComputeFaceMasks(v, r) })
	if masks[1]&tiles.East.Bit() != 0 {
		t.Fatal("east face of x=1 should be hidden by the tile at x=2")
	}
	if got := CountFaces(masks); got != 9 {
		t.Fatalf("faces: got %d, want 9", got)
	}
}

func TestIndexWidthThreshold(t *testing.T) {
	narrow := NewMesh(5461) // 65532 vertices
	if narrow.Wide() {
		t.Fatalf("%d vertices should fit 16-bit indices", narrow.VertexCount())
	}
	wide := NewMesh(5462) // 65544 vertices
	if !wide.Wide() {
		t.Fatalf("%d vertices need 32-bit indices", wide.VertexCount())
	}
	if wide.TriangleCount() != 5462*QuintTriangles {
		t.Fatalf("triangles: got %d", wide.TriangleCount())
	}
}

func TestFaceNormalsPointOutward(t *testing.T) {
	for _, f := range tiles.Faces {
		dx, dy, dz := f.Offset()
		want := mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
		if got := FaceNormal(f); !vecNear(got, want) {
			t.Fatalf("%s normal: got %v, want %v", f, got, want)
		}
	}
}

func TestFlatQuintLiesOnTileFace(t *testing.T) {
	g := world.NewGrid(3, 3, 3)
	g.Set(1, 1, 1, 1)
	const scale = 2
	m := build(g, fullRange(g), testRegistry(), scale)
	centre := mgl32.Vec3{3, 3, 3}

	for i, f := range tiles.Faces {
		want := FaceNormal(f)
		for k := range QuintVertices {
			v := i*QuintVertices + k
			n := mgl32.Vec3{m.Normals[v*3], m.Normals[v*3+1], m.Normals[v*3+2]}
			if !vecNear(n, want) {
				t.Fatalf("%s vertex %d normal: got %v, want %v", f, k, n, want)
			}
			p := mgl32.Vec3{m.Positions[v*3], m.Positions[v*3+1], m.Positions[v*3+2]}
			if d := p.Sub(centre).Dot(want); !near(d, scale*0.5) {
				t.Fatalf("%s vertex %d off the face plane: distance %v", f, k, d)
			}
		}
	}
	if !vecNear(m.Min, mgl32.Vec3{2, 2, 2}) || !vecNear(m.Max, mgl32.Vec3{4, 4, 4}) {
		t.Fatalf("bounds: got %v %v", m.Min, m.Max)
	}
}

func TestJitterIsBoundedAndDeterministic(t *testing.T) {
	reg := tiles.NewRegistry()
	reg.Add(tiles.Definition{
		Name:      "rough",
		JitterMin: mgl32.Vec3{-0.1, -0.1, 0.05},
		JitterMax: mgl32.Vec3{0.1, 0.1, 0.2},
	})
	g := world.NewGrid(3, 3, 3)
	g.Set(1, 1, 1, 1)
	a := build(g, fullRange(g), reg, 1)
	b := build(g, fullRange(g), reg, 1)

	centre := mgl32.Vec3{1.5, 1.5, 1.5}
	for i, f := range tiles.Faces {
		// the third vertex of every triangle is the midpoint
		v := i*QuintVertices + 2
		p := mgl32.Vec3{a.Positions[v*3], a.Positions[v*3+1], a.Positions[v*3+2]}
		bulge := p.Sub(centre).Dot(FaceNormal(f)) - 0.5
		if bulge < 0.05-1e-4 || bulge > 0.2+1e-4 {
			t.Fatalf("%s midpoint bulge %v outside [0.05, 0.2]", f, bulge)
		}
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("rebuild differs at %d: %v != %v", i, a.Positions[i], b.Positions[i])
		}
	}
}

func TestUVsComeFromFaceCell(t *testing.T) {
	g := world.NewGrid(1, 1, 1)
	g.Set(0, 0, 0, 1)
	m := build(g, fullRange(g), testRegistry(), 1)
	for i, f := range tiles.Faces {
		rect := faceUVs{}.FaceUV(1, f)
		// vertex 0 is the template's lower-left corner
		o := i * QuintVertices * 2
		u, v := m.UVs[o], m.UVs[o+1]
		if !near(u, rect.U0) || !near(v, rect.V1) {
			t.Fatalf("%s corner uv: got (%v,%v), want (%v,%v)", f, u, v, rect.U0, rect.V1)
		}
		// midpoint of an unjittered face sits at the cell centre
		o += 2 * 2
		if !near(m.UVs[o], rect.U0+0.05) || !near(m.UVs[o+1], 0.5) {
			t.Fatalf("%s midpoint uv: got (%v,%v)", f, m.UVs[o], m.UVs[o+1])
		}
	}
}

func TestIndicesAreSequential(t *testing.T) {
	g := world.NewGrid(2, 1, 1)
	g.Set(0, 0, 0, 1)
	g.Set(1, 0, 0, 1)
	m := build(g, fullRange(g), testRegistry(), 1)
	if m.Faces != 10 {
		t.Fatalf("faces: got %d, want 10", m.Faces)
	}
	for i, idx := range m.Indices16 {
		if int(idx) != i {
			t.Fatalf("index %d: got %d", i, idx)
		}
	}
}

func TestEmptyRangeBuildsEmptyMesh(t *testing.T) {
	g := world.NewGrid(4, 4, 4)
	m := build(g, fullRange(g), testRegistry(), 1)
	if !m.Empty() || m.VertexCount() != 0 {
		t.Fatalf("empty grid: got %d faces", m.Faces)
	}
	m.Release()
	m.Release()
}

func BenchmarkBuildSurfaceChunk(b *testing.B) {
	g := gen.NewHeightmap(7, 1, 1).Generate(16, 32, 16)
	reg := testRegistry()
	r := fullRange(g)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Read(func(v world.View) {
			_ = Build(v, r, reg, faceUVs{}, 1)
		})
	}
}
