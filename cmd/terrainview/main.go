package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"tileterrain/internal/camera"
	"tileterrain/internal/chunk"
	"tileterrain/internal/config"
	"tileterrain/internal/input"
	"tileterrain/internal/physics"
	"tileterrain/internal/render"
	"tileterrain/internal/terrain"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/xlab/closer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "terrain YAML config (defaults when empty)")
	flag.Parse()

	logger := log.New(os.Stderr, "terrainview: ", log.LstdFlags)
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal(err)
	}

	if err := glfw.Init(); err != nil {
		logger.Fatal(err)
	}
	closer.Bind(glfw.Terminate)

	window, err := setupWindow(cfg.Viewer)
	if err != nil {
		logger.Println(err)
		closer.Exit(1)
	}

	events := &chunk.EventQueue{}
	world, sheetAtlas, err := terrain.Open(cfg, events, logger)
	if err != nil {
		logger.Println(err)
		closer.Exit(1)
	}
	closer.Bind(world.Close)

	scene, err := render.NewScene(sheetAtlas)
	if err != nil {
		logger.Println(err)
		closer.Exit(1)
	}
	// Bound last so it runs first; the terrain's detaches then find nothing to free.
	closer.Bind(scene.Dispose)

	cam := camera.New(cfg.Viewer.Width, cfg.Viewer.Height, cfg.Viewer.FOV)
	cam.Position = cfg.Viewer.Start
	ground := physics.GroundHeight(world.Tiles(), world.Scale(), cam.Position.X(), cam.Position.Z())
	if cam.Position.Y() < ground+2 {
		cam.Position[1] = ground + 2
	}

	im := input.NewInputManager()
	im.Install(window)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		resizeViewport(w, h)
		cam.SetViewport(w, h)
	})

	v := &viewer{
		window:   window,
		input:    im,
		camera:   cam,
		terrain:  world,
		atlas:    sheetAtlas,
		scene:    scene,
		events:   events,
		settings: config.NewRenderSettings(cfg),
		limiter:  newFPSLimiter(cfg.Viewer.FPSLimit),
		logger:   logger,
	}
	v.run()
	closer.Close()
}
