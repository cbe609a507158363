// Command meshstat builds every chunk of a configured terrain without a
// window and reports the resulting geometry.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"tileterrain/internal/chunk"
	"tileterrain/internal/config"
	"tileterrain/internal/profiling"
	"tileterrain/internal/terrain"

	"github.com/go-gl/mathgl/mgl32"
)

// tally is a node that only records what is attached.
type tally struct {
	attached map[[3]int]*chunk.Chunk
}

func (t *tally) AttachChunk(c *chunk.Chunk) error {
	t.attached[c.Index] = c
	return nil
}

func (t *tally) DetachChunk(c *chunk.Chunk) { delete(t.attached, c.Index) }

func main() {
	configPath := flag.String("config", "", "terrain YAML config (defaults when empty)")
	verbose := flag.Bool("v", false, "print one line per chunk")
	quiet := flag.Bool("q", false, "discard log output")
	flag.Parse()

	logger := log.New(os.Stderr, "meshstat: ", 0)
	if *quiet {
		logger.SetOutput(io.Discard)
	}
	if err := run(*configPath, *verbose, logger, os.Stdout); err != nil {
		logger.SetOutput(os.Stderr)
		logger.Fatal(err)
	}
}

func run(configPath string, verbose bool, logger *log.Logger, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	events := &chunk.EventQueue{}
	t, _, err := terrain.Open(cfg, events, logger)
	if err != nil {
		return err
	}
	defer t.Close()

	// Every chunk is in range from the grid centre once the view distance
	// covers the whole grid.
	u := t.Updater()
	var extent float32
	for _, d := range t.Dimensions() {
		extent += float32(d) * t.Scale()
	}
	u.SetViewDistance(extent)
	dims := t.Dimensions()
	centre := mgl32.Vec3{float32(dims[0]), float32(dims[1]), float32(dims[2])}.Mul(t.Scale() / 2)

	node := &tally{attached: make(map[[3]int]*chunk.Chunk)}
	start := time.Now()
	ticks := 0
	for range len(u.Chunks()) + 2 {
		if err := t.Update(context.Background(), centre, node); err != nil {
			return err
		}
		ticks++
		if s := u.Stats(); s.Built == s.Chunks {
			break
		}
	}
	// one more pass attaches the last build
	if err := t.Update(context.Background(), centre, node); err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := u.Stats()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if verbose {
		fmt.Fprintln(tw, "chunk\tfaces\ttriangles\tindex\tattached")
		for _, c := range u.Chunks() {
			width := "-"
			if m := c.Mesh(); !m.Empty() {
				width = "u16"
				if m.Wide() {
					width = "u32"
				}
			}
			fmt.Fprintf(tw, "%v\t%d\t%d\t%s\t%v\n", c.Index, c.Faces(), c.Triangles(), width, c.Attached())
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "grid\t%dx%dx%d\n", dims[0], dims[1], dims[2])
	fmt.Fprintf(tw, "chunks\t%d (%d built, %d attached)\n", st.Chunks, st.Built, st.Attached)
	fmt.Fprintf(tw, "faces\t%d\n", st.Faces)
	fmt.Fprintf(tw, "triangles\t%d\n", st.Faces*4)
	fmt.Fprintf(tw, "builds\t%d submitted, %d discarded, %d failed\n", st.Submitted, st.Discarded, st.Failed)
	fmt.Fprintf(tw, "ticks\t%d in %s\n", ticks, elapsed.Round(time.Millisecond))
	fmt.Fprintf(tw, "hot\t%s\n", profiling.TopN(3))
	return tw.Flush()
}
