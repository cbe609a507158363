package gen

import (
	"fmt"

	"tileterrain/internal/config"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"
)

// FromConfig builds the configured generator. Kind "none" returns nil, which
// terrain treats as an empty grid.
func FromConfig(cfg config.GeneratorConfig, reg *tiles.Registry) (world.Generator, error) {
	lookup := func(field, name string) (tiles.Type, error) {
		t, ok := reg.Lookup(name)
		if !ok || t == tiles.Empty {
			return tiles.Empty, fmt.Errorf("generator %s: unknown tile %q", field, name)
		}
		return t, nil
	}

	switch cfg.Kind {
	case "", "none":
		return nil, nil
	case "flat", "slab":
		t, err := lookup("tile", cfg.Tile)
		if err != nil {
			return nil, err
		}
		if cfg.Kind == "flat" {
			return Flat{Height: cfg.Height, Tile: t}, nil
		}
		return Slab{MaxY: cfg.Height, Tile: t}, nil
	case "heightmap":
		surface, err := lookup("surface", cfg.Surface)
		if err != nil {
			return nil, err
		}
		under, err := lookup("under", cfg.Under)
		if err != nil {
			return nil, err
		}
		h := NewHeightmap(cfg.Seed, surface, under)
		if cfg.Scale > 0 {
			h.Scale = cfg.Scale
		}
		if cfg.Amplitude > 0 {
			h.Amplitude = cfg.Amplitude
		}
		if cfg.Octaves > 0 {
			h.Octaves = cfg.Octaves
		}
		if cfg.Height > 0 {
			h.Base = cfg.Height
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unknown generator kind %q", cfg.Kind)
	}
}
