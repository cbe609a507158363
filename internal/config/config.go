package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"tileterrain/internal/tiles"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaSource string

// Config is the on-disk terrain description.
type Config struct {
	Grid         [3]int          `yaml:"grid"`
	ChunkSize    [3]int          `yaml:"chunk_size"`
	Scale        float32         `yaml:"scale"`
	ViewDistance float32         `yaml:"view_distance"`
	Shading      bool            `yaml:"shading"`
	Workers      int             `yaml:"workers"`
	Atlas        AtlasConfig     `yaml:"atlas"`
	Tiles        []TileConfig    `yaml:"tiles"`
	Generator    GeneratorConfig `yaml:"generator"`
	Viewer       ViewerConfig    `yaml:"viewer"`
}

type AtlasConfig struct {
	// Sheet is an image path. When empty a flat-colour sheet is packed in memory.
	Sheet      string `yaml:"sheet"`
	SheetWidth int    `yaml:"sheet_width"`
	TileWidth  int    `yaml:"tile_width"`
}

type TileConfig struct {
	Name           string         `yaml:"name"`
	Friction       float32        `yaml:"friction"`
	CollisionGroup uint32         `yaml:"collision_group"`
	Textures       map[string]int `yaml:"textures"`
	JitterMin      [3]float32     `yaml:"jitter_min"`
	JitterMax      [3]float32     `yaml:"jitter_max"`
	Aligned        bool           `yaml:"aligned"`
}

type GeneratorConfig struct {
	Kind      string  `yaml:"kind"`
	Seed      int64   `yaml:"seed"`
	Height    int     `yaml:"height"`
	Tile      string  `yaml:"tile"`
	Surface   string  `yaml:"surface"`
	Under     string  `yaml:"under"`
	Scale     float64 `yaml:"scale"`
	Amplitude float64 `yaml:"amplitude"`
	Octaves   int     `yaml:"octaves"`
}

type ViewerConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FOV    float32 `yaml:"fov"`
	// FPSLimit caps the frame rate; 0 disables the cap.
	FPSLimit int        `yaml:"fps_limit"`
	Start    [3]float32 `yaml:"start"`
}

// Default returns a small heightmap terrain with two tile types.
func Default() *Config {
	return &Config{
		Grid:         [3]int{128, 32, 128},
		ChunkSize:    [3]int{16, 16, 16},
		Scale:        1,
		ViewDistance: 64,
		Shading:      true,
		Workers:      1,
		Atlas:        AtlasConfig{SheetWidth: 64, TileWidth: 16},
		Tiles: []TileConfig{
			{Name: "grass", Friction: 0.6, CollisionGroup: 1, Textures: map[string]int{"all": 1, "up": 0, "down": 2}},
			{Name: "dirt", Friction: 0.6, CollisionGroup: 1, Textures: map[string]int{"all": 2},
				JitterMin: [3]float32{-0.05, -0.05, 0}, JitterMax: [3]float32{0.05, 0.05, 0.08}},
		},
		Generator: GeneratorConfig{
			Kind:      "heightmap",
			Seed:      1,
			Surface:   "grass",
			Under:     "dirt",
			Scale:     1.0 / 32.0,
			Amplitude: 12,
			Octaves:   4,
		},
		Viewer: ViewerConfig{Width: 1280, Height: 720, FOV: 60, FPSLimit: 120, Start: [3]float32{64, 40, 64}},
	}
}

// Load reads a YAML config on top of Default. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse checks a raw YAML document against the embedded schema, decodes it
// into cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if doc != nil {
		schema, err := jsonschema.CompileString("schema.json", schemaSource)
		if err != nil {
			return fmt.Errorf("compile schema: %w", err)
		}
		if err := schema.Validate(doc); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	for i := range 3 {
		if c.Grid[i] <= 0 {
			return errors.New("grid dimensions must be positive")
		}
		if c.ChunkSize[i] <= 0 {
			return errors.New("chunk_size must be positive")
		}
	}
	if c.Scale <= 0 {
		return errors.New("scale must be positive")
	}
	if c.ViewDistance < 0 {
		return errors.New("view_distance cannot be negative")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.Atlas.TileWidth <= 0 || c.Atlas.SheetWidth < c.Atlas.TileWidth {
		return errors.New("atlas sheet_width must be >= tile_width > 0")
	}
	seen := make(map[string]bool, len(c.Tiles))
	for _, t := range c.Tiles {
		if t.Name == "" {
			return errors.New("tile name must be set")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate tile %q", t.Name)
		}
		seen[t.Name] = true
		for i := range 3 {
			if t.JitterMin[i] > t.JitterMax[i] {
				return fmt.Errorf("tile %q: jitter_min exceeds jitter_max", t.Name)
			}
		}
	}
	return nil
}

// Registry builds a tile registry from the configured tiles, in order,
// after the reserved empty tile.
func (c *Config) Registry() (*tiles.Registry, error) {
	reg := tiles.NewRegistry()
	for _, tc := range c.Tiles {
		def, err := tc.Definition()
		if err != nil {
			return nil, err
		}
		reg.Add(def)
	}
	return reg, nil
}

// Definition resolves texture keys: "all" first, then "side", then single faces.
func (tc TileConfig) Definition() (tiles.Definition, error) {
	def := tiles.Definition{
		Name:           tc.Name,
		Friction:       tc.Friction,
		CollisionGroup: tc.CollisionGroup,
		JitterMin:      mgl32.Vec3(tc.JitterMin),
		JitterMax:      mgl32.Vec3(tc.JitterMax),
		Aligned:        tc.Aligned,
	}
	if v, ok := tc.Textures["all"]; ok {
		for _, f := range tiles.Faces {
			def.Textures[f] = v
		}
	}
	if v, ok := tc.Textures["side"]; ok {
		for _, f := range []tiles.Face{tiles.West, tiles.East, tiles.North, tiles.South} {
			def.Textures[f] = v
		}
	}
	for k, v := range tc.Textures {
		if k == "all" || k == "side" {
			continue
		}
		f, ok := tiles.ParseFace(k)
		if !ok {
			return def, fmt.Errorf("tile %q: unknown face %q", tc.Name, k)
		}
		def.Textures[f] = v
	}
	return def, nil
}
