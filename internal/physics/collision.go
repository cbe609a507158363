package physics

import (
	"math"

	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func tileSpan(lo, hi, scale float32) (int, int) {
	return int(math.Floor(float64(lo / scale))), int(math.Ceil(float64(hi/scale))) - 1
}

// AllGroups matches every collision group.
const AllGroups = ^uint32(0)

// Collides reports whether the box [min, max] overlaps a non-empty tile whose
// collision group shares a bit with groups. With a nil registry every
// non-empty tile is solid.
func Collides(g *world.Grid, reg *tiles.Registry, groups uint32, scale float32, min, max mgl32.Vec3) bool {
	if g == nil || scale <= 0 {
		return false
	}
	x0, x1 := tileSpan(min.X(), max.X(), scale)
	y0, y1 := tileSpan(min.Y(), max.Y(), scale)
	z0, z1 := tileSpan(min.Z(), max.Z(), scale)
	hit := false
	g.Read(func(v world.View) {
		for y := y0; y <= y1 && !hit; y++ {
			for z := z0; z <= z1 && !hit; z++ {
				for x := x0; x <= x1; x++ {
					t := v.At(x, y, z)
					if t == tiles.Empty {
						continue
					}
					if reg == nil || reg.Get(t).CollisionGroup&groups != 0 {
						hit = true
						break
					}
				}
			}
		}
	})
	return hit
}

// GroundHeight returns the world-space top of the highest tile in the column
// under (x, z), or 0 when the column is empty.
func GroundHeight(g *world.Grid, scale float32, x, z float32) float32 {
	if g == nil || scale <= 0 {
		return 0
	}
	tx := int(math.Floor(float64(x / scale)))
	tz := int(math.Floor(float64(z / scale)))
	_, sy, _ := g.Dims()
	top := 0
	g.Read(func(v world.View) {
		for y := sy - 1; y >= 0; y-- {
			if !v.Empty(tx, y, tz) {
				top = y + 1
				return
			}
		}
	})
	return float32(top) * scale
}
