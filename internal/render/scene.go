package render

import (
	"errors"

	"tileterrain/internal/atlas"
	"tileterrain/internal/camera"
	"tileterrain/internal/chunk"
	"tileterrain/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

type gpuMesh struct {
	vao       uint32
	vbos      [3]uint32
	ebo       uint32
	count     int32
	indexType uint32
	min, max  mgl32.Vec3
}

func (m *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(int32(len(m.vbos)), &m.vbos[0])
	gl.DeleteBuffers(1, &m.ebo)
	*m = gpuMesh{}
}

// Scene is the GL node chunks attach to. Attaching uploads the chunk mesh;
// detaching frees the GPU buffers. It must only be used on the GL thread.
type Scene struct {
	shader  *Shader
	texture uint32
	atlas   *atlas.Atlas
	meshes  map[[3]int]*gpuMesh

	LightDir mgl32.Vec3
	// Drawn and Culled count chunks in the last Draw.
	Drawn, Culled int
}

// NewScene compiles the terrain program and uploads the atlas sheet.
func NewScene(a *atlas.Atlas) (*Scene, error) {
	if a == nil || a.Sheet() == nil {
		return nil, errors.New("render: atlas has no sheet")
	}
	shader, err := LoadShader("terrain.vert", "terrain.frag")
	if err != nil {
		return nil, err
	}
	tex, err := UploadSheet(a.Sheet())
	if err != nil {
		shader.Delete()
		return nil, err
	}
	return &Scene{
		shader:   shader,
		texture:  tex,
		atlas:    a,
		meshes:   make(map[[3]int]*gpuMesh),
		LightDir: mgl32.Vec3{0.3, 1.0, 0.5}.Normalize(),
	}, nil
}

// AttachChunk uploads the chunk's mesh, replacing any previous upload.
func (s *Scene) AttachChunk(c *chunk.Chunk) error {
	defer profiling.Track("render.AttachChunk")()
	m := c.Mesh()
	if m.Empty() {
		return errors.New("render: chunk has no geometry")
	}
	if old, ok := s.meshes[c.Index]; ok {
		old.delete()
	}

	g := &gpuMesh{min: m.Min, max: m.Max}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	gl.GenBuffers(int32(len(g.vbos)), &g.vbos[0])

	attrib := func(loc uint32, vbo uint32, data []float32, size int32) {
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, size, gl.FLOAT, false, size*4, 0)
	}
	attrib(0, g.vbos[0], m.Positions, 3)
	attrib(1, g.vbos[1], m.Normals, 3)
	attrib(2, g.vbos[2], m.UVs, 2)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	if m.Wide() {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices32)*4, gl.Ptr(m.Indices32), gl.STATIC_DRAW)
		g.count, g.indexType = int32(len(m.Indices32)), gl.UNSIGNED_INT
	} else {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices16)*2, gl.Ptr(m.Indices16), gl.STATIC_DRAW)
		g.count, g.indexType = int32(len(m.Indices16)), gl.UNSIGNED_SHORT
	}
	gl.BindVertexArray(0)

	s.meshes[c.Index] = g
	return nil
}

func (s *Scene) DetachChunk(c *chunk.Chunk) {
	if g, ok := s.meshes[c.Index]; ok {
		g.delete()
		delete(s.meshes, c.Index)
	}
}

func (s *Scene) Len() int { return len(s.meshes) }

// Draw renders every attached chunk whose bounds intersect the camera frustum.
func (s *Scene) Draw(cam *camera.Camera) {
	defer profiling.Track("render.Draw")()
	mat := s.atlas.Material()
	if mat.Blend == atlas.BlendAlpha {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}

	s.shader.Use()
	s.shader.SetMat4("proj", cam.ProjectionMatrix())
	s.shader.SetMat4("view", cam.ViewMatrix())
	s.shader.SetBool("lit", mat.Lit)
	s.shader.SetVec4("ambient", mat.Ambient)
	s.shader.SetVec4("diffuse", mat.Diffuse)
	s.shader.SetVec4("specular", mat.Specular)
	s.shader.SetFloat("shininess", mat.Shininess)
	s.shader.SetVec3("lightDir", s.LightDir)
	s.shader.SetVec3("viewPos", cam.Position)
	s.shader.SetInt("sheet", 0)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.texture)

	frustum := cam.Frustum()
	frustum.Margin = 1
	s.Drawn, s.Culled = 0, 0
	for _, g := range s.meshes {
		if !frustum.IntersectsAABB(g.min, g.max) {
			s.Culled++
			continue
		}
		gl.BindVertexArray(g.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, g.count, g.indexType, 0)
		s.Drawn++
	}
	gl.BindVertexArray(0)
}

// Dispose frees every upload, the sheet texture and the program.
func (s *Scene) Dispose() {
	for idx, g := range s.meshes {
		g.delete()
		delete(s.meshes, idx)
	}
	if s.texture != 0 {
		gl.DeleteTextures(1, &s.texture)
		s.texture = 0
	}
	s.shader.Delete()
}
