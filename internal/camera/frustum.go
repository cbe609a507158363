package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type plane struct {
	a, b, c, d float32
}

func (p plane) normalize() plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// Frustum holds six inward-facing planes: left, right, bottom, top, near, far.
type Frustum struct {
	planes [6]plane
	// Margin inflates every box before testing.
	Margin float32
}

// NewFrustum extracts the planes of a combined projection*view matrix.
func NewFrustum(clip mgl32.Mat4) Frustum {
	row := func(i int) plane {
		return plane{clip[i], clip[4+i], clip[8+i], clip[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	add := func(a, b plane) plane { return plane{a.a + b.a, a.b + b.b, a.c + b.c, a.d + b.d}.normalize() }
	sub := func(a, b plane) plane { return plane{a.a - b.a, a.b - b.b, a.c - b.c, a.d - b.d}.normalize() }

	return Frustum{planes: [6]plane{
		add(r3, r0),
		sub(r3, r0),
		add(r3, r1),
		sub(r3, r1),
		add(r3, r2),
		sub(r3, r2),
	}}
}

// IntersectsAABB reports whether any part of the box may be visible.
func (f Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	m := mgl32.Vec3{f.Margin, f.Margin, f.Margin}
	min, max = min.Sub(m), max.Add(m)
	for _, p := range f.planes {
		// positive vertex
		px, py, pz := max.X(), max.Y(), max.Z()
		if p.a < 0 {
			px = min.X()
		}
		if p.b < 0 {
			py = min.Y()
		}
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}
