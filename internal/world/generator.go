package world

// Generator produces a freshly filled grid of the requested size.
type Generator interface {
	Generate(x, y, z int) *Grid
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(x, y, z int) *Grid

func (f GeneratorFunc) Generate(x, y, z int) *Grid { return f(x, y, z) }
