package meshing

import (
	"math"

	"tileterrain/internal/atlas"
	"tileterrain/internal/profiling"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxShortIndexVertices is the first vertex count that needs 32-bit indices.
const MaxShortIndexVertices = 1 << 16

// Definitions resolves tile types to their definitions.
type Definitions interface {
	Get(t tiles.Type) tiles.Definition
}

// UVSource resolves the texture cell of a tile face.
type UVSource interface {
	FaceUV(t tiles.Type, f tiles.Face) atlas.UVRect
}

// Mesh is the packed geometry of one chunk. Exactly one of Indices16 and
// Indices32 is populated for a non-empty mesh.
type Mesh struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	UVs       []float32 // uv per vertex
	Indices16 []uint16
	Indices32 []uint32
	Faces     int
	Min, Max  mgl32.Vec3
}

// NewMesh allocates buffers sized for faces quints.
func NewMesh(faces int) *Mesh {
	verts := faces * QuintVertices
	m := &Mesh{
		Positions: make([]float32, verts*3),
		Normals:   make([]float32, verts*3),
		UVs:       make([]float32, verts*2),
		Faces:     faces,
	}
	if verts >= MaxShortIndexVertices {
		m.Indices32 = make([]uint32, faces*QuintTriangles*3)
	} else {
		m.Indices16 = make([]uint16, faces*QuintTriangles*3)
	}
	return m
}

func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

func (m *Mesh) TriangleCount() int {
	if m.Indices32 != nil {
		return len(m.Indices32) / 3
	}
	return len(m.Indices16) / 3
}

// Wide reports whether the mesh uses 32-bit indices.
func (m *Mesh) Wide() bool { return m.Indices32 != nil }

// Empty reports whether there is nothing to draw.
func (m *Mesh) Empty() bool { return m == nil || m.Faces == 0 }

// Release drops every buffer. Calling it twice is harmless.
func (m *Mesh) Release() {
	if m == nil {
		return
	}
	m.Positions, m.Normals, m.UVs = nil, nil, nil
	m.Indices16, m.Indices32 = nil, nil
	m.Faces = 0
}

// Build runs the cull, count and pack passes over r and returns the mesh.
func Build(v world.View, r Range, defs Definitions, uv UVSource, scale float32) *Mesh {
	masks := ComputeFaceMasks(v, r)
	return Pack(v, r, masks, defs, uv, scale)
}

// Pack emits one quint per set bit of masks, which must come from
// ComputeFaceMasks over the same range. Buffers are sized once up front.
func Pack(v world.View, r Range, masks []uint8, defs Definitions, uv UVSource, scale float32) *Mesh {
	defer profiling.Track("meshing.Pack")()

	m := NewMesh(CountFaces(masks))
	if m.Faces == 0 {
		return m
	}

	vert, tri := 0, 0
	i := 0
	for y := r.Min[1]; y <= r.Max[1]; y++ {
		for z := r.Min[2]; z <= r.Max[2]; z++ {
			for x := r.Min[0]; x <= r.Max[0]; x++ {
				mask := masks[i]
				i++
				if mask == 0 {
					continue
				}
				t := v.At(x, y, z)
				def := defs.Get(t)
				centre := mgl32.Vec3{
					(float32(x) + 0.5) * scale,
					(float32(y) + 0.5) * scale,
					(float32(z) + 0.5) * scale,
				}
				for _, f := range tiles.Faces {
					if mask&f.Bit() == 0 {
						continue
					}
					mid := jitter(def, x, y, z, f)
					q := placeQuint(f, centre, scale, mid, uv.FaceUV(t, f))
					m.put(&q, vert, tri)
					vert += QuintVertices
					tri += QuintTriangles
				}
			}
		}
	}
	m.computeBounds()
	return m
}

func (m *Mesh) put(q *quint, vert, tri int) {
	for k := range QuintVertices {
		p, n, uv := q.pos[k], q.nrm[k], q.uv[k]
		o := (vert + k) * 3
		m.Positions[o], m.Positions[o+1], m.Positions[o+2] = p[0], p[1], p[2]
		m.Normals[o], m.Normals[o+1], m.Normals[o+2] = n[0], n[1], n[2]
		o = (vert + k) * 2
		m.UVs[o], m.UVs[o+1] = uv[0], uv[1]
	}
	base := tri * 3
	for k := range QuintTriangles * 3 {
		if m.Indices32 != nil {
			m.Indices32[base+k] = uint32(vert + k)
		} else {
			m.Indices16[base+k] = uint16(vert + k)
		}
	}
}

func (m *Mesh) computeBounds() {
	if len(m.Positions) < 3 {
		m.Min, m.Max = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}
	lo := mgl32.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := mgl32.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for o := 0; o+2 < len(m.Positions); o += 3 {
		for a := range 3 {
			p := m.Positions[o+a]
			lo[a] = min(lo[a], p)
			hi[a] = max(hi[a], p)
		}
	}
	m.Min, m.Max = lo, hi
}

// jitter picks the midpoint of a face inside the tile's configured range.
// It is a pure function of position and face so rebuilding an unchanged
// region reproduces the same surface.
func jitter(def tiles.Definition, x, y, z int, f tiles.Face) mgl32.Vec3 {
	h := hashFace(x, y, z, f)
	var mid mgl32.Vec3
	for a := range 3 {
		u := float32((h>>(a*21))&0x1FFFFF) / float32(0x1FFFFF)
		mid[a] = def.JitterMin[a] + u*(def.JitterMax[a]-def.JitterMin[a])
	}
	return mid
}

// hashFace is a SplitMix64 finaliser over a tile face.
func hashFace(x, y, z int, f tiles.Face) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 +
		uint64(z)*0x6C62272E07BB0142 + uint64(f)*0xD6E8FEB86659FD93
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}
