package meshing

import (
	"tileterrain/internal/atlas"
	"tileterrain/internal/tiles"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// QuintVertices is the vertex count of one face: four triangles
	// sharing a midpoint, none of them indexed against each other.
	QuintVertices  = 12
	QuintTriangles = 4
)

// quintCorners is the template face in the z=0 plane facing +Z, wound
// counter-clockwise. Each triangle is (corner i, corner i+1, midpoint).
var quintCorners = [4]mgl32.Vec3{
	{-0.5, -0.5, 0},
	{0.5, -0.5, 0},
	{0.5, 0.5, 0},
	{-0.5, 0.5, 0},
}

// faceRotations orients the template so it faces outward on each side.
var faceRotations = [tiles.FaceCount]mgl32.Mat4{
	tiles.West:  mgl32.HomogRotate3DY(mgl32.DegToRad(270)),
	tiles.East:  mgl32.HomogRotate3DY(mgl32.DegToRad(90)),
	tiles.North: mgl32.HomogRotate3DY(mgl32.DegToRad(180)),
	tiles.South: mgl32.HomogRotate3DY(mgl32.DegToRad(0)),
	tiles.Up:    mgl32.HomogRotate3DX(mgl32.DegToRad(270)),
	tiles.Down:  mgl32.HomogRotate3DX(mgl32.DegToRad(90)),
}

// facePlacements moves the rotated template half a tile out along its normal.
var facePlacements = func() [tiles.FaceCount]mgl32.Mat4 {
	var out [tiles.FaceCount]mgl32.Mat4
	for _, f := range tiles.Faces {
		dx, dy, dz := f.Offset()
		offset := mgl32.Translate3D(float32(dx)*0.5, float32(dy)*0.5, float32(dz)*0.5)
		out[f] = offset.Mul4(faceRotations[f])
	}
	return out
}()

// FaceNormal is the outward unit normal of a placed, unjittered face.
func FaceNormal(f tiles.Face) mgl32.Vec3 {
	return faceRotations[f].Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
}

// quint is one placed face: positions, normals and UVs for its 12 vertices.
type quint struct {
	pos [QuintVertices]mgl32.Vec3
	nrm [QuintVertices]mgl32.Vec3
	uv  [QuintVertices]mgl32.Vec2
}

// placeQuint builds the face f of the tile centred at centre. mid is the
// jittered midpoint in template space and rect is the face's texture cell.
func placeQuint(f tiles.Face, centre mgl32.Vec3, scale float32, mid mgl32.Vec3, rect atlas.UVRect) quint {
	m := mgl32.Translate3D(centre.X(), centre.Y(), centre.Z()).
		Mul4(mgl32.Scale3D(scale, scale, scale)).
		Mul4(facePlacements[f])

	var corners [4]mgl32.Vec3
	var cornerUV [4]mgl32.Vec2
	for i, c := range quintCorners {
		corners[i] = mgl32.TransformCoordinate(c, m)
		cornerUV[i] = texel(rect, c.X()+0.5, c.Y()+0.5)
	}
	midPos := mgl32.TransformCoordinate(mid, m)
	midUV := texel(rect, mid.X()+0.5, mid.Y()+0.5)

	var q quint
	for t := range QuintTriangles {
		a, b := t, (t+1)%4
		base := t * 3
		q.pos[base] = corners[a]
		q.pos[base+1] = corners[b]
		q.pos[base+2] = midPos
		q.uv[base] = cornerUV[a]
		q.uv[base+1] = cornerUV[b]
		q.uv[base+2] = midUV

		n := corners[b].Sub(corners[a]).Cross(midPos.Sub(corners[a]))
		if n.Len() > 0 {
			n = n.Normalize()
		}
		q.nrm[base], q.nrm[base+1], q.nrm[base+2] = n, n, n
	}
	return q
}

// texel maps template coordinates in [0,1]² onto a texture cell. Template
// y grows upward while image rows grow downward.
func texel(rect atlas.UVRect, s, t float32) mgl32.Vec2 {
	u, v := rect.Lerp(s, 1-t)
	return mgl32.Vec2{u, v}
}
