package terrain

import (
	"fmt"
	"image"
	"log"

	"tileterrain/internal/atlas"
	"tileterrain/internal/chunk"
	"tileterrain/internal/config"
	"tileterrain/internal/gen"
)

// Open builds the registry, atlas and generator a config describes and
// returns a generated terrain. Without a sheet path the atlas gets a
// flat-colour sheet.
func Open(cfg *config.Config, listener chunk.Listener, logger *log.Logger) (*Terrain, *atlas.Atlas, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, nil, fmt.Errorf("tiles: %w", err)
	}

	var sheet *image.RGBA
	if cfg.Atlas.Sheet != "" {
		sheet, err = atlas.LoadSheet(cfg.Atlas.Sheet, cfg.Atlas.TileWidth)
	} else {
		sheet, err = atlas.PaletteSheet(atlas.DefaultPalette, cfg.Atlas.TileWidth)
	}
	if err != nil {
		return nil, nil, err
	}
	a, err := atlas.NewWithSheet(reg, sheet, cfg.Atlas.TileWidth)
	if err != nil {
		return nil, nil, err
	}
	a.SetShadingEnabled(cfg.Shading)

	generator, err := gen.FromConfig(cfg.Generator, reg)
	if err != nil {
		return nil, nil, err
	}

	t, err := New(Options{
		Dims:         cfg.Grid,
		ChunkSize:    cfg.ChunkSize,
		Scale:        cfg.Scale,
		ViewDistance: cfg.ViewDistance,
		Registry:     reg,
		Atlas:        a,
		Listener:     listener,
		Logger:       logger,
		Workers:      cfg.Workers,
	})
	if err != nil {
		return nil, nil, err
	}
	t.Generate(generator)
	return t, a, nil
}
