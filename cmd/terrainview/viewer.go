package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"tileterrain/internal/atlas"
	"tileterrain/internal/camera"
	"tileterrain/internal/chunk"
	"tileterrain/internal/config"
	"tileterrain/internal/input"
	"tileterrain/internal/physics"
	"tileterrain/internal/profiling"
	"tileterrain/internal/render"
	"tileterrain/internal/terrain"
	"tileterrain/internal/tiles"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	flySpeed         = 12.0
	fastMultiplier   = 4.0
	viewDistanceStep = 16.0
	// cameraRadius is the half extent of the camera's collision box in tiles.
	cameraRadius = 0.3
	// updateBudget bounds how long one frame waits on a chunk build.
	updateBudget = 50 * time.Millisecond
)

type viewer struct {
	window   *glfw.Window
	input    *input.InputManager
	camera   *camera.Camera
	terrain  *terrain.Terrain
	atlas    *atlas.Atlas
	scene    *render.Scene
	events   *chunk.EventQueue
	settings *config.RenderSettings
	limiter  *fpsLimiter
	logger   *log.Logger

	tile      tiles.Type
	wireframe bool
	profiling bool
	captured  bool

	frames    int
	lastTitle time.Time
	changed   int
}

func (v *viewer) run() {
	v.tile = 1
	v.captured = true
	v.lastTitle = time.Now()
	v.terrain.Updater().SetViewDistance(v.settings.ViewDistance())

	last := time.Now()
	for !v.window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
		v.handleActions()
		v.fly(dt)
		v.stream()
		v.draw()

		func() { defer profiling.Track("glfw.SwapBuffers")(); v.window.SwapBuffers() }()
		v.input.PostUpdate()
		v.updateTitle()
		v.limiter.Wait()
	}
}

func (v *viewer) fly(dt float32) {
	if !v.captured {
		return
	}
	dx, dy := v.input.CursorDelta()
	v.camera.Look(float32(dx), float32(dy))

	speed := flySpeed * dt * v.terrain.Scale()
	if v.input.IsActive(input.ActionFast) {
		speed *= fastMultiplier
	}
	axis := func(pos, neg input.Action) float32 {
		var a float32
		if v.input.IsActive(pos) {
			a++
		}
		if v.input.IsActive(neg) {
			a--
		}
		return a
	}
	forward := axis(input.ActionMoveForward, input.ActionMoveBackward)
	right := axis(input.ActionMoveRight, input.ActionMoveLeft)
	up := axis(input.ActionMoveUp, input.ActionMoveDown)
	prev := v.camera.Position
	v.camera.Move(forward*speed, right*speed, up*speed)
	if v.blocked(v.camera.Position) && !v.blocked(prev) {
		v.camera.Position = prev
	}
}

// blocked reports whether a camera at pos would sit inside a solid tile.
func (v *viewer) blocked(pos mgl32.Vec3) bool {
	r := cameraRadius * v.terrain.Scale()
	ext := mgl32.Vec3{r, r, r}
	return physics.Collides(v.terrain.Tiles(), v.terrain.Registry(), physics.AllGroups,
		v.terrain.Scale(), pos.Sub(ext), pos.Add(ext))
}

func (v *viewer) handleActions() {
	im := v.input
	if im.JustPressed(input.ActionRelease) {
		v.captured = !v.captured
		mode := glfw.CursorNormal
		if v.captured {
			mode = glfw.CursorDisabled
			im.ResetCursor()
		}
		v.window.SetInputMode(glfw.CursorMode, mode)
	}
	if im.JustPressed(input.ActionToggleShading) {
		v.atlas.SetShadingEnabled(v.settings.ToggleShading())
	}
	if im.JustPressed(input.ActionToggleWireframe) {
		v.wireframe = !v.wireframe
	}
	if im.JustPressed(input.ActionToggleProfiling) {
		v.profiling = !v.profiling
	}
	if im.JustPressed(input.ActionViewDistanceUp) {
		v.settings.SetViewDistance(v.settings.ViewDistance() + viewDistanceStep)
		v.terrain.Updater().SetViewDistance(v.settings.ViewDistance())
	}
	if im.JustPressed(input.ActionViewDistanceDown) {
		v.settings.SetViewDistance(v.settings.ViewDistance() - viewDistanceStep)
		v.terrain.Updater().SetViewDistance(v.settings.ViewDistance())
	}
	if im.JustPressed(input.ActionNextTile) {
		n := v.terrain.Registry().Len()
		if n > 1 {
			v.tile = tiles.Type(int(v.tile)%(n-1) + 1)
		}
	}

	if !v.captured {
		return
	}
	add, remove := im.JustPressed(input.ActionAddTile), im.JustPressed(input.ActionRemoveTile)
	if !add && !remove {
		return
	}
	scale := v.terrain.Scale()
	hit := physics.Raycast(v.terrain.Tiles(), scale, v.camera.Position, v.camera.Front(),
		physics.MinReachDistance*scale, physics.MaxReachDistance*scale)
	if !hit.Hit {
		return
	}
	if remove {
		p := hit.HitPosition
		v.terrain.RemoveTile(p[0], p[1], p[2], false)
	} else {
		p := hit.AdjacentPosition
		v.terrain.AddTile(v.tile, p[0], p[1], p[2], false)
	}
}

func (v *viewer) stream() {
	ctx, cancel := context.WithTimeout(context.Background(), updateBudget)
	defer cancel()
	err := v.terrain.Update(ctx, v.camera.Position, v.scene)
	if err != nil && ctx.Err() == nil {
		v.logger.Printf("update: %v", err)
	}
	for _, e := range v.events.Drain() {
		if e.Kind == chunk.Changed {
			v.changed++
		}
	}
}

func (v *viewer) draw() {
	defer profiling.Track("render.frame")()
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	if v.wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	v.scene.Draw(v.camera)
}

func (v *viewer) updateTitle() {
	v.frames++
	if time.Since(v.lastTitle) < time.Second {
		return
	}
	st := v.terrain.Updater().Stats()
	title := fmt.Sprintf("terrainview | %d fps | chunks %d/%d built, %d attached, %d drawn, %d rebuilt | view %.0f | tile %s",
		v.frames, st.Built, st.Chunks, st.Attached, v.scene.Drawn, v.changed,
		v.settings.ViewDistance(), v.terrain.Registry().Get(v.tile).Name)
	if v.profiling {
		title += " | " + profiling.TopN(3)
	}
	v.window.SetTitle(title)
	v.frames = 0
	v.lastTitle = time.Now()
}
