package physics

import (
	"math"

	"tileterrain/internal/profiling"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 64.0
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	// Face is the face of the hit tile the ray entered through.
	Face     tiles.Face
	Distance float32
	Hit      bool
}

// Raycast walks the tiles along a ray, one cell boundary at a time, and
// returns the first non-empty tile between minDist and maxDist. Tile (i,j,k)
// spans [i*scale, (i+1)*scale) on each axis.
func Raycast(g *world.Grid, scale float32, start, direction mgl32.Vec3, minDist, maxDist float32) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	result := RaycastResult{}
	if g == nil || scale <= 0 || direction.Len() == 0 {
		return result
	}
	dir := direction.Normalize()
	p := start.Mul(1 / scale)
	limit := float64(maxDist / scale)
	floor := float64(minDist / scale)

	var (
		cell   [3]int
		step   [3]int
		tMax   [3]float64
		tDelta [3]float64
	)
	for a := range 3 {
		cell[a] = int(math.Floor(float64(p[a])))
		d := float64(dir[a])
		switch {
		case d > 0:
			step[a] = 1
			tDelta[a] = 1 / d
			tMax[a] = (float64(cell[a]+1) - float64(p[a])) / d
		case d < 0:
			step[a] = -1
			tDelta[a] = -1 / d
			tMax[a] = (float64(cell[a]) - float64(p[a])) / d
		default:
			tDelta[a] = math.Inf(1)
			tMax[a] = math.Inf(1)
		}
	}

	g.Read(func(v world.View) {
		t := 0.0
		prev := cell
		face := tiles.Up
		for t <= limit {
			if t >= floor && !v.Empty(cell[0], cell[1], cell[2]) {
				result = RaycastResult{
					HitPosition:      cell,
					AdjacentPosition: prev,
					Face:             face,
					Distance:         float32(t) * scale,
					Hit:              true,
				}
				return
			}
			axis := 0
			if tMax[1] < tMax[axis] {
				axis = 1
			}
			if tMax[2] < tMax[axis] {
				axis = 2
			}
			prev = cell
			cell[axis] += step[axis]
			t = tMax[axis]
			tMax[axis] += tDelta[axis]
			face = entryFace(axis, step[axis])
		}
	})
	return result
}

func entryFace(axis, step int) tiles.Face {
	switch axis {
	case 0:
		if step > 0 {
			return tiles.West
		}
		return tiles.East
	case 1:
		if step > 0 {
			return tiles.Down
		}
		return tiles.Up
	default:
		if step > 0 {
			return tiles.North
		}
		return tiles.South
	}
}
