package tiles

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Type is a tile type identifier stored in the grid.
type Type uint16

// Empty is the reserved air tile.
const Empty Type = 0

// Definition describes a tile type.
type Definition struct {
	Name           string
	Friction       float32
	CollisionGroup uint32
	// Textures holds the atlas cell index for each face, indexed by Face.
	Textures [FaceCount]int
	// JitterMin and JitterMax bound the random offset of a face's midpoint vertex,
	// in face-local units (z pushes the midpoint outward).
	JitterMin mgl32.Vec3
	JitterMax mgl32.Vec3
	Aligned   bool
}

// Texture returns the atlas cell for a face.
func (d Definition) Texture(f Face) int {
	if int(f) >= FaceCount {
		return 0
	}
	return d.Textures[f]
}

// Registry is an ordered list of tile definitions. Entries are only ever appended.
type Registry struct {
	mu   sync.RWMutex
	defs []Definition
}

// NewRegistry returns a registry holding only the empty tile at index 0.
func NewRegistry() *Registry {
	return &Registry{defs: []Definition{{Name: "empty"}}}
}

// Add appends a definition and returns its type index.
func (r *Registry) Add(def Definition) Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = append(r.defs, def)
	return Type(len(r.defs) - 1)
}

// Get returns the definition for t. Unknown types resolve to index 0.
func (r *Registry) Get(t Type) Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(t) < len(r.defs) {
		return r.defs[t]
	}
	if len(r.defs) > 0 {
		return r.defs[0]
	}
	return Definition{}
}

// Lookup finds a type by name.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, d := range r.defs {
		if d.Name == name {
			return Type(i), true
		}
	}
	return Empty, false
}

// Clear drops every definition, including index 0.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.defs = r.defs[:0]
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
