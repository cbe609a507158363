package meshing

import (
	"math/bits"

	"tileterrain/internal/tiles"
	"tileterrain/internal/world"
)

// ComputeFaceMasks returns one visibility mask per cell of r, indexed by
// r.Local. A face is visible when its neighbour is empty or lies outside the
// grid. Empty and fully enclosed tiles get 0.
func ComputeFaceMasks(v world.View, r Range) []uint8 {
	masks := make([]uint8, r.Volume())
	i := 0
	for y := r.Min[1]; y <= r.Max[1]; y++ {
		for z := r.Min[2]; z <= r.Max[2]; z++ {
			for x := r.Min[0]; x <= r.Max[0]; x++ {
				masks[i] = faceMask(v, x, y, z)
				i++
			}
		}
	}
	return masks
}

func faceMask(v world.View, x, y, z int) uint8 {
	if v.Empty(x, y, z) {
		return 0
	}
	var m uint8
	for _, f := range tiles.Faces {
		dx, dy, dz := f.Offset()
		// View.Empty treats cells beyond the grid as open air.
		if v.Empty(x+dx, y+dy, z+dz) {
			m |= f.Bit()
		}
	}
	return m
}

// CountFaces sums the visible faces across masks.
func CountFaces(masks []uint8) int {
	n := 0
	for _, m := range masks {
		n += bits.OnesCount8(m)
	}
	return n
}

// HasSolid reports whether any cell of r holds a tile.
func HasSolid(v world.View, r Range) bool {
	for y := r.Min[1]; y <= r.Max[1]; y++ {
		for z := r.Min[2]; z <= r.Max[2]; z++ {
			for x := r.Min[0]; x <= r.Max[0]; x++ {
				if !v.Empty(x, y, z) {
					return true
				}
			}
		}
	}
	return false
}
