package atlas

import (
	"errors"
	"image"
	"sync"

	"tileterrain/internal/tiles"

	"github.com/go-gl/mathgl/mgl32"
)

// UVRect is a texture-space rectangle.
type UVRect struct {
	U0, V0, U1, V1 float32
}

// Lerp maps a point in [0,1]² onto the rectangle.
func (r UVRect) Lerp(s, t float32) (u, v float32) {
	return r.U0 + s*(r.U1-r.U0), r.V0 + t*(r.V1-r.V0)
}

type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha
)

// Material is the render state a scene applies to chunk geometry.
type Material struct {
	Lit       bool
	Ambient   mgl32.Vec4
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec4
	Shininess float32
	Blend     BlendMode
}

var (
	LitMaterial = Material{
		Lit:       true,
		Ambient:   mgl32.Vec4{0.45, 0.45, 0.45, 1},
		Diffuse:   mgl32.Vec4{1, 1, 1, 1},
		Specular:  mgl32.Vec4{0.15, 0.15, 0.15, 1},
		Shininess: 8,
		Blend:     BlendAlpha,
	}
	UnlitMaterial = Material{
		Diffuse: mgl32.Vec4{1, 1, 1, 1},
		Blend:   BlendAlpha,
	}
)

// Atlas maps tile faces to cells of a single-row texture sheet.
type Atlas struct {
	reg        *tiles.Registry
	sheetWidth int
	tileWidth  int
	sheet      *image.RGBA

	mu      sync.RWMutex
	shading bool
}

// New creates an atlas for a sheet of the given pixel width with square
// cells tileWidth pixels wide. No image is attached.
func New(reg *tiles.Registry, sheetWidth, tileWidth int) (*Atlas, error) {
	if reg == nil {
		return nil, errors.New("atlas: nil registry")
	}
	if sheetWidth <= 0 || tileWidth <= 0 {
		return nil, errors.New("atlas: sheet and tile widths must be positive")
	}
	return &Atlas{reg: reg, sheetWidth: sheetWidth, tileWidth: tileWidth, shading: true}, nil
}

// NewWithSheet creates an atlas sized from an already decoded sheet.
func NewWithSheet(reg *tiles.Registry, sheet *image.RGBA, tileWidth int) (*Atlas, error) {
	if sheet == nil {
		return nil, errors.New("atlas: nil sheet")
	}
	a, err := New(reg, sheet.Bounds().Dx(), tileWidth)
	if err != nil {
		return nil, err
	}
	a.sheet = sheet
	return a, nil
}

// Cells is how many tile textures fit in the sheet row.
func (a *Atlas) Cells() float32 {
	return float32(a.sheetWidth) / float32(a.tileWidth)
}

// Cell returns the UV rectangle of the idx-th cell.
func (a *Atlas) Cell(idx int) UVRect {
	n := a.Cells()
	return UVRect{
		U0: float32(idx) / n,
		V0: 0,
		U1: float32(idx+1) / n,
		V1: 1,
	}
}

// FaceUV returns the UV rectangle for one face of a tile type.
func (a *Atlas) FaceUV(t tiles.Type, f tiles.Face) UVRect {
	return a.Cell(a.reg.Get(t).Texture(f))
}

// Sheet returns the packed image, or nil when the atlas has none.
func (a *Atlas) Sheet() *image.RGBA { return a.sheet }

func (a *Atlas) SetShadingEnabled(enabled bool) {
	a.mu.Lock()
	a.shading = enabled
	a.mu.Unlock()
}

func (a *Atlas) ShadingEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.shading
}

// Material returns the lit or unlit material depending on shading.
func (a *Atlas) Material() Material {
	if a.ShadingEnabled() {
		return LitMaterial
	}
	return UnlitMaterial
}
