package tiles

// Face identifies one of the six cardinal sides of a tile.
type Face uint8

const (
	West Face = iota
	East
	North
	South
	Up
	Down
)

// FaceCount is the number of cardinal faces.
const FaceCount = 6

// AllFaces is a face mask with every face visible.
const AllFaces uint8 = 0x3F

// Faces lists the directions in mask bit order.
var Faces = [FaceCount]Face{West, East, North, South, Up, Down}

var faceOffsets = [FaceCount][3]int{
	West:  {-1, 0, 0},
	East:  {1, 0, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	Up:    {0, 1, 0},
	Down:  {0, -1, 0},
}

var faceNames = [FaceCount]string{"west", "east", "north", "south", "up", "down"}

// Bit returns the mask bit for the face.
func (f Face) Bit() uint8 { return 1 << f }

// Offset returns the index delta to the axis neighbour on this side.
func (f Face) Offset() (dx, dy, dz int) {
	o := faceOffsets[f]
	return o[0], o[1], o[2]
}

// Opposite returns the face pointing the other way along the same axis.
func (f Face) Opposite() Face { return f ^ 1 }

func (f Face) String() string {
	if int(f) < FaceCount {
		return faceNames[f]
	}
	return "invalid"
}

// ParseFace maps a lower-case face name back to its Face.
func ParseFace(name string) (Face, bool) {
	for i, n := range faceNames {
		if n == name {
			return Face(i), true
		}
	}
	return 0, false
}
