package chunk

import (
	"context"
	"errors"
	"log"
	"math"
	"slices"

	"tileterrain/internal/meshing"
	"tileterrain/internal/profiling"
	"tileterrain/internal/tiles"
	"tileterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultChunkSize is used for any axis left at zero in Options.
const DefaultChunkSize = 16

var ErrClosed = errors.New("chunk: updater closed")

// Options configures an Updater. Registry, Atlas and Listener are required.
type Options struct {
	ChunkSize    [3]int
	Scale        float32
	ViewDistance float32
	Registry     meshing.Definitions
	Atlas        meshing.UVSource
	Listener     Listener
	Logger       *log.Logger
	// Workers is the size of the build pool. Only one build is ever in
	// flight; extra workers only matter to other users of the pool.
	Workers int
}

// Stats summarises the partition.
type Stats struct {
	Chunks    int
	Built     int
	Attached  int
	Faces     int
	Submitted int
	Discarded int
	Failed    int
}

// Updater partitions a grid into chunks and decides, once per tick, which
// chunks are attached and which one is built next. It is not safe for
// concurrent use; every method must be called from the driving goroutine.
type Updater struct {
	size         [3]int
	scale        float32
	viewDistance float32
	defs         meshing.Definitions
	uv           meshing.UVSource
	listener     Listener
	logger       *log.Logger
	pool         *meshing.WorkerPool

	grid   *world.Grid
	counts [3]int
	chunks []*Chunk

	pending *pendingBuild
	closed  bool

	submitted, discarded, failed int
}

// pendingBuild is the single outstanding background build. masks and
// version are written by the worker before the result is sent.
type pendingBuild struct {
	chunk      *Chunk
	generation uint64
	result     chan meshing.Result
	masks      []uint8
	version    uint64
}

// NewUpdater validates opts and starts the build pool.
func NewUpdater(opts Options) (*Updater, error) {
	if opts.Registry == nil || opts.Atlas == nil {
		return nil, errors.New("chunk: registry and atlas are required")
	}
	if opts.Listener == nil {
		return nil, errors.New("chunk: listener is required")
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	for i := range 3 {
		if opts.ChunkSize[i] <= 0 {
			opts.ChunkSize[i] = DefaultChunkSize
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Updater{
		size:         opts.ChunkSize,
		scale:        opts.Scale,
		viewDistance: opts.ViewDistance,
		defs:         opts.Registry,
		uv:           opts.Atlas,
		listener:     opts.Listener,
		logger:       opts.Logger,
		pool:         meshing.NewWorkerPool(max(opts.Workers, 1), 1),
	}, nil
}

// SetGrid replaces the grid and repartitions it into chunks.
func (u *Updater) SetGrid(g *world.Grid) {
	u.drain()
	u.grid = g
	u.partition()
}

// Grid returns the grid currently partitioned.
func (u *Updater) Grid() *world.Grid { return u.grid }

// SetScale changes the world size of a tile. Chunk centres move, so every
// chunk is rebuilt.
func (u *Updater) SetScale(s float32) {
	if s <= 0 || s == u.scale {
		return
	}
	u.drain()
	u.scale = s
	u.partition()
}

func (u *Updater) Scale() float32 { return u.scale }

// SetChunkSize changes the partition size and repartitions.
func (u *Updater) SetChunkSize(x, y, z int) {
	size := [3]int{x, y, z}
	for i := range size {
		if size[i] <= 0 {
			size[i] = DefaultChunkSize
		}
	}
	if size == u.size {
		return
	}
	u.drain()
	u.size = size
	u.partition()
}

func (u *Updater) ChunkSize() [3]int { return u.size }

func (u *Updater) SetViewDistance(d float32) { u.viewDistance = max(d, 0) }

func (u *Updater) ViewDistance() float32 { return u.viewDistance }

// Counts returns the number of chunks along each axis.
func (u *Updater) Counts() [3]int { return u.counts }

// Chunks returns every chunk in x, then y, then z order of its index.
func (u *Updater) Chunks() []*Chunk { return u.chunks }

// Chunk returns the chunk with the given chunk index, or nil.
func (u *Updater) Chunk(ix, iy, iz int) *Chunk {
	if ix < 0 || iy < 0 || iz < 0 || ix >= u.counts[0] || iy >= u.counts[1] || iz >= u.counts[2] {
		return nil
	}
	return u.chunks[(iz*u.counts[1]+iy)*u.counts[0]+ix]
}

// ChunkAt returns the chunk holding tile (x,y,z), or nil when the tile is
// outside the grid or in a remainder strip no chunk covers.
func (u *Updater) ChunkAt(x, y, z int) *Chunk {
	if x < 0 || y < 0 || z < 0 {
		return nil
	}
	return u.Chunk(x/u.size[0], y/u.size[1], z/u.size[2])
}

// Diagonal is the world-space length of a chunk's diagonal.
func (u *Updater) Diagonal() float32 {
	var sum float32
	for _, s := range u.size {
		e := float32(s) * u.scale
		sum += e * e
	}
	return float32(math.Sqrt(float64(sum)))
}

// Threshold is the distance beyond which chunks are detached.
func (u *Updater) Threshold() float32 {
	return u.viewDistance + u.Diagonal()*math.Sqrt2
}

func (u *Updater) partition() {
	for _, c := range u.chunks {
		c.Destroy()
	}
	u.chunks = nil
	u.counts = [3]int{}
	if u.grid == nil {
		return
	}

	dx, dy, dz := u.grid.Dims()
	dims := [3]int{dx, dy, dz}
	for i := range 3 {
		u.counts[i] = dims[i] / u.size[i]
		if rem := dims[i] % u.size[i]; rem != 0 {
			u.logger.Printf("chunk: grid axis %d has %d tiles, %d past the last full chunk are not meshed", i, dims[i], rem)
		}
	}

	u.chunks = make([]*Chunk, 0, u.counts[0]*u.counts[1]*u.counts[2])
	for iz := range u.counts[2] {
		for iy := range u.counts[1] {
			for ix := range u.counts[0] {
				idx := [3]int{ix, iy, iz}
				var r meshing.Range
				for a := range 3 {
					r.Min[a] = idx[a] * u.size[a]
					r.Max[a] = r.Min[a] + u.size[a] - 1
				}
				u.chunks = append(u.chunks, newChunk(idx, r, u.scale))
			}
		}
	}
}

// NotifyTileChanged invalidates the chunk holding (x,y,z) and the chunks of
// its six axis neighbours. Queued changes only mark chunks dirty for the next
// UpdateVisibility; otherwise each chunk is rebuilt now and reported changed.
func (u *Updater) NotifyTileChanged(x, y, z int, queued bool) {
	if u.closed || u.grid == nil {
		return
	}
	affected := make([]*Chunk, 0, 7)
	add := func(c *Chunk) {
		if c != nil && !slices.Contains(affected, c) {
			affected = append(affected, c)
		}
	}
	add(u.ChunkAt(x, y, z))
	for _, f := range tiles.Faces {
		dx, dy, dz := f.Offset()
		add(u.ChunkAt(x+dx, y+dy, z+dz))
	}

	if !queued {
		// A build left behind by a cancelled wait must land first.
		u.drain()
	}
	for _, c := range affected {
		if queued {
			c.SetDirty()
			continue
		}
		u.rebuildNow(c)
	}
}

// NotifyRegionChanged marks dirty every chunk within one tile of the
// inclusive box [lo, hi].
func (u *Updater) NotifyRegionChanged(lo, hi [3]int) {
	if u.closed || u.grid == nil {
		return
	}
	var clo, chi [3]int
	for a := range 3 {
		clo[a] = max(lo[a]-1, 0) / u.size[a]
		chi[a] = min(max(hi[a]+1, 0)/u.size[a], u.counts[a]-1)
	}
	for iz := clo[2]; iz <= chi[2]; iz++ {
		for iy := clo[1]; iy <= chi[1]; iy++ {
			for ix := clo[0]; ix <= chi[0]; ix++ {
				if c := u.Chunk(ix, iy, iz); c != nil {
					c.SetDirty()
				}
			}
		}
	}
}

func (u *Updater) rebuildNow(c *Chunk) {
	parent := c.parent
	c.SetDirty()
	c.BuildIfNeeded(u.grid, u.defs, u.uv, u.scale)
	if parent != nil {
		if _, err := c.Attach(parent); err != nil {
			u.logger.Printf("chunk: reattach %v: %v", c.Index, err)
		}
	}
	u.listener.ChunkChanged(c)
}

// UpdateVisibility runs one streaming pass for a viewer at viewer: chunks
// past Threshold are detached, built chunks in range are attached, and the
// nearest unbuilt chunk in range is built on the pool. The call blocks until
// that build finishes. If ctx ends first the build stays outstanding and is
// collected by the next call; no second build is started meanwhile.
func (u *Updater) UpdateVisibility(ctx context.Context, viewer mgl32.Vec3, node Node) error {
	defer profiling.Track("chunk.UpdateVisibility")()
	if u.closed {
		return ErrClosed
	}
	if err := u.await(ctx); err != nil {
		return err
	}
	if u.grid == nil {
		return nil
	}

	threshold := u.Threshold()
	type near struct {
		c    *Chunk
		dist float32
	}
	var unbuilt []near
	for _, c := range u.chunks {
		d := c.center.Sub(viewer).Len()
		if d > threshold {
			if c.Detach() {
				u.listener.ChunkRemoved(c)
			}
			continue
		}
		switch c.state {
		case Built:
			ok, err := c.Attach(node)
			if err != nil {
				u.logger.Printf("chunk: attach %v: %v", c.Index, err)
				continue
			}
			if ok {
				u.listener.ChunkAttached(c)
			}
		case Unbuilt:
			unbuilt = append(unbuilt, near{c, d})
		}
	}
	if len(unbuilt) == 0 {
		return nil
	}

	var candidate *Chunk
	best := float32(math.MaxFloat32)
	u.grid.Read(func(v world.View) {
		for _, n := range unbuilt {
			if !meshing.HasSolid(v, n.c.Range) {
				n.c.markEmpty(v.Version())
				continue
			}
			if n.dist < best {
				best, candidate = n.dist, n.c
			}
		}
	})
	if candidate == nil {
		return nil
	}
	if err := u.submit(ctx, candidate); err != nil {
		return err
	}
	return u.await(ctx)
}

func (u *Updater) submit(ctx context.Context, c *Chunk) error {
	p := &pendingBuild{
		chunk:      c,
		generation: c.begin(),
		result:     make(chan meshing.Result, 1),
	}
	g, r := u.grid, c.Range
	defs, uv, scale := u.defs, u.uv, u.scale
	job := meshing.Job{
		Key:        c.Index,
		Generation: p.generation,
		Result:     p.result,
		Run: func() (*meshing.Mesh, error) {
			defer profiling.Track("chunk.build")()
			var m *meshing.Mesh
			g.Read(func(v world.View) {
				p.masks = meshing.ComputeFaceMasks(v, r)
				m = meshing.Pack(v, r, p.masks, defs, uv, scale)
				p.version = v.Version()
			})
			return m, nil
		},
	}
	if err := u.pool.SubmitBlocking(ctx, job); err != nil {
		c.fail(p.generation)
		u.failed++
		if ctx.Err() != nil {
			return err
		}
		u.logger.Printf("chunk: submit build %v: %v", c.Index, err)
		return nil
	}
	u.submitted++
	u.pending = p
	return nil
}

// await collects the outstanding build, if any.
func (u *Updater) await(ctx context.Context) error {
	p := u.pending
	if p == nil {
		return nil
	}
	select {
	case res := <-p.result:
		u.pending = nil
		u.install(p, res)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *Updater) install(p *pendingBuild, res meshing.Result) {
	if res.Err != nil {
		u.failed++
		u.logger.Printf("chunk: build %v failed: %v", p.chunk.Index, res.Err)
		p.chunk.fail(p.generation)
		return
	}
	if !p.chunk.finish(p.generation, p.masks, res.Mesh, p.version) {
		u.discarded++
	}
}

// drain blocks until no build is outstanding.
func (u *Updater) drain() {
	if err := u.await(context.Background()); err != nil {
		u.logger.Printf("chunk: drain: %v", err)
	}
}

// Stats counts chunk states and build outcomes.
func (u *Updater) Stats() Stats {
	s := Stats{
		Chunks:    len(u.chunks),
		Submitted: u.submitted,
		Discarded: u.discarded,
		Failed:    u.failed,
	}
	for _, c := range u.chunks {
		if c.Built() {
			s.Built++
		}
		if c.attached {
			s.Attached++
		}
		s.Faces += c.Faces()
	}
	return s
}

// Close waits for the outstanding build, destroys every chunk and stops the
// pool. The grid stays untouched.
func (u *Updater) Close() {
	if u.closed {
		return
	}
	u.drain()
	for _, c := range u.chunks {
		c.Destroy()
	}
	u.chunks = nil
	u.pool.Shutdown()
	u.closed = true
}
