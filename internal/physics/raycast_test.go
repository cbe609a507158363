package physics_test

import (
	"testing"

	"tileterrain/internal/physics"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRaycast(t *testing.T) {
	g := world.NewGrid(8, 8, 8)
	g.Set(5, 0, 0, 1)

	start := mgl32.Vec3{0.5, 0.5, 0.5}
	dir := mgl32.Vec3{1, 0, 0}

	result := physics.Raycast(g, 1, start, dir, 0.1, 10)
	if !result.Hit {
		t.Fatalf("Expected hit, got miss")
	}
	if result.HitPosition != [3]int{5, 0, 0} {
		t.Errorf("Expected hit at {5,0,0}, got %v", result.HitPosition)
	}
	if result.AdjacentPosition != [3]int{4, 0, 0} {
		t.Errorf("Expected adjacent at {4,0,0}, got %v", result.AdjacentPosition)
	}
	if result.Face != tiles.West {
		t.Errorf("Expected west face, got %v", result.Face)
	}
	if result.Distance < 4.49 || result.Distance > 4.51 {
		t.Errorf("Expected distance 4.5, got %f", result.Distance)
	}

	if r := physics.Raycast(g, 1, start, dir, 0.1, 4); r.Hit {
		t.Errorf("Expected miss due to maxDist, got hit at %v", r.HitPosition)
	}
	if r := physics.Raycast(g, 1, start, mgl32.Vec3{0, 1, 0}, 0.1, 10); r.Hit {
		t.Errorf("Expected miss, got hit")
	}

	g.Set(2, 2, 2, 1)
	diag := physics.Raycast(g, 1, start, mgl32.Vec3{1, 1, 1}, 0.1, 10)
	if !diag.Hit || diag.HitPosition != [3]int{2, 2, 2} {
		t.Errorf("Expected hit at {2,2,2}, got %+v", diag)
	}
}

func TestRaycastFromAbove(t *testing.T) {
	g := world.NewGrid(4, 8, 4)
	g.Set(1, 2, 1, 1)
	r := physics.Raycast(g, 1, mgl32.Vec3{1.5, 7.5, 1.5}, mgl32.Vec3{0, -1, 0}, 0, 20)
	if !r.Hit || r.HitPosition != [3]int{1, 2, 1} {
		t.Fatalf("got %+v", r)
	}
	if r.Face != tiles.Up || r.AdjacentPosition != [3]int{1, 3, 1} {
		t.Fatalf("entered through %v from %v", r.Face, r.AdjacentPosition)
	}
}

func TestRaycastScaled(t *testing.T) {
	g := world.NewGrid(8, 8, 8)
	g.Set(4, 0, 0, 1)
	r := physics.Raycast(g, 0.5, mgl32.Vec3{0.25, 0.25, 0.25}, mgl32.Vec3{1, 0, 0}, 0, 10)
	if !r.Hit || r.HitPosition != [3]int{4, 0, 0} {
		t.Fatalf("got %+v", r)
	}
	if r.Distance < 1.74 || r.Distance > 1.76 {
		t.Errorf("Expected distance 1.75, got %f", r.Distance)
	}
}

func TestRaycastZeroDirection(t *testing.T) {
	g := world.NewGrid(2, 2, 2)
	g.Set(0, 0, 0, 1)
	if r := physics.Raycast(g, 1, mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{}, 0, 10); r.Hit {
		t.Fatal("zero direction should never hit")
	}
}

func TestCollides(t *testing.T) {
	g := world.NewGrid(4, 4, 4)
	g.Set(1, 0, 1, 1)
	if !physics.Collides(g, nil, physics.AllGroups, 1, mgl32.Vec3{1.2, 0.5, 1.2}, mgl32.Vec3{1.8, 2, 1.8}) {
		t.Error("box inside the tile should collide")
	}
	if physics.Collides(g, nil, physics.AllGroups, 1, mgl32.Vec3{1.2, 1, 1.2}, mgl32.Vec3{1.8, 2, 1.8}) {
		t.Error("box resting on the tile should not collide")
	}
	if physics.Collides(g, nil, physics.AllGroups, 1, mgl32.Vec3{2, 0, 2}, mgl32.Vec3{3, 1, 3}) {
		t.Error("box touching a corner should not collide")
	}
}

func TestCollidesFiltersByGroup(t *testing.T) {
	reg := tiles.NewRegistry()
	rock := reg.Add(tiles.Definition{Name: "rock", CollisionGroup: 1})
	fern := reg.Add(tiles.Definition{Name: "fern", CollisionGroup: 2})
	ghost := reg.Add(tiles.Definition{Name: "ghost"})

	g := world.NewGrid(4, 4, 4)
	g.Set(0, 0, 0, rock)
	g.Set(2, 0, 0, fern)
	g.Set(0, 0, 2, ghost)
	box := func(x, z float32) (mgl32.Vec3, mgl32.Vec3) {
		return mgl32.Vec3{x + 0.2, 0.2, z + 0.2}, mgl32.Vec3{x + 0.8, 0.8, z + 0.8}
	}

	cases := []struct {
		name   string
		x, z   float32
		groups uint32
		want   bool
	}{
		{"rock in group 1", 0, 0, 1, true},
		{"rock outside group 2", 0, 0, 2, false},
		{"fern in group 2", 2, 0, 2, true},
		{"fern in all groups", 2, 0, physics.AllGroups, true},
		{"groupless tile never collides", 0, 2, physics.AllGroups, false},
	}
	for _, tc := range cases {
		lo, hi := box(tc.x, tc.z)
		if got := physics.Collides(g, reg, tc.groups, 1, lo, hi); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	lo, hi := box(0, 2)
	if !physics.Collides(g, nil, physics.AllGroups, 1, lo, hi) {
		t.Error("without a registry every non-empty tile is solid")
	}
}

func TestGroundHeight(t *testing.T) {
	g := world.NewGrid(4, 8, 4)
	g.Set(2, 0, 2, 1)
	g.Set(2, 3, 2, 1)
	if got := physics.GroundHeight(g, 1, 2.5, 2.5); got != 4 {
		t.Errorf("got %v, want 4", got)
	}
	if got := physics.GroundHeight(g, 2, 5, 5); got != 8 {
		t.Errorf("scaled: got %v, want 8", got)
	}
	if got := physics.GroundHeight(g, 1, 0.5, 0.5); got != 0 {
		t.Errorf("empty column: got %v", got)
	}
}
