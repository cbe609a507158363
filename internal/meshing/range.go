package meshing

// Range is an inclusive box of grid indices.
type Range struct {
	Min, Max [3]int
}

// Size returns the extent along each axis. An inverted range has zero size.
func (r Range) Size() (sx, sy, sz int) {
	return max(r.Max[0]-r.Min[0]+1, 0), max(r.Max[1]-r.Min[1]+1, 0), max(r.Max[2]-r.Min[2]+1, 0)
}

// Volume is the number of cells in the range.
func (r Range) Volume() int {
	sx, sy, sz := r.Size()
	return sx * sy * sz
}

func (r Range) Contains(x, y, z int) bool {
	return x >= r.Min[0] && x <= r.Max[0] &&
		y >= r.Min[1] && y <= r.Max[1] &&
		z >= r.Min[2] && z <= r.Max[2]
}

// Local returns the mask index of a cell inside the range.
func (r Range) Local(x, y, z int) int {
	sx, _, sz := r.Size()
	return ((y-r.Min[1])*sz+(z-r.Min[2]))*sx + (x - r.Min[0])
}
