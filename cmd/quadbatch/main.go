// Command quadbatch inspects serialized tile grids and layout descriptors and
// benchmarks quad expansion.
//
//	quadbatch layout [-config file.yaml]
//	quadbatch inspect [-cells] grid.bin
//	quadbatch bench [-config file.yaml] [-w 256] [-h 256] [-n 100]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/phanxgames/quadbatch"
	"github.com/schollz/progressbar/v3"
)

func loadConfig(path string) (*quadbatch.Config, error) {
	if path == "" {
		return quadbatch.DefaultConfig(), nil
	}
	return quadbatch.LoadConfig(path)
}

func runLayout(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "the layout descriptor to load (default layout if empty)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	layout, err := cfg.VariableLayout()
	if err != nil {
		return err
	}
	mode, err := cfg.UVMode()
	if err != nil {
		return err
	}
	if _, err := quadbatch.NewPropertyMapper(layout); err != nil {
		return err
	}

	fmt.Fprintf(out, "uv mode: %s\n", mode)
	fmt.Fprintf(out, "static stride: %d floats, dynamic stride: %d floats\n",
		layout.Stride(quadbatch.BufferStatic), layout.Stride(quadbatch.BufferDynamic))
	for loc, a := range layout.Attributes() {
		b, err := layout.Resolve(a.Name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  @location(%d) %-10s %-7s offset %2d components %d\n",
			loc, a.Name, b.Buffer, b.Offset, b.Components)
	}
	for i, vb := range layout.VertexBufferLayouts() {
		fmt.Fprintf(out, "buffer %d: array stride %d bytes, %d attributes\n",
			i, vb.ArrayStride, len(vb.Attributes))
	}
	return nil
}

func runInspect(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(out)
	cells := fs.Bool("cells", false, "print every cell's frame")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	if fs.NArg() != 1 {
		return errors.New("inspect needs exactly one grid file")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open grid: %w", err)
	}
	defer f.Close()

	g, err := quadbatch.ReadTileGridMap(f)
	if err != nil {
		return err
	}
	mode, comps := g.AmbientMode()
	fmt.Fprintf(out, "grid %dx%d (%d cells), ambient %s", g.Width(), g.Height(), g.Len(), mode)
	if mode != quadbatch.AmbientNone {
		fmt.Fprintf(out, " with %d components", comps)
	}
	fmt.Fprintln(out)

	used := make(map[int32]int)
	for _, fr := range g.Frames() {
		used[fr]++
	}
	fmt.Fprintf(out, "distinct frames: %d\n", len(used))

	if *cells {
		for y := 0; y < g.Height(); y++ {
			for x := 0; x < g.Width(); x++ {
				frame, _, _ := g.Cell(x, y)
				fmt.Fprintf(out, "%4d", frame)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}

func runBench(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "the layout descriptor to load (default layout if empty)")
	w := fs.Int("w", 256, "grid width in cells")
	h := fs.Int("h", 256, "grid height in cells")
	n := fs.Int("n", 100, "the number of full-grid fills to run")
	debug := fs.Bool("debug", false, "log per-pass expansion stats")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if *w <= 0 || *h <= 0 || *n < 0 {
		return fmt.Errorf("invalid bench size %dx%d with %d fills", *w, *h, *n)
	}

	if *debug {
		quadbatch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		quadbatch.SetDebug(true)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	mapper, err := cfg.PropertyMapper()
	if err != nil {
		return err
	}
	meshCfg, err := cfg.MeshConfig(nil)
	if err != nil {
		return err
	}

	grid := quadbatch.NewTileGridMap(*w, *h)
	mesh, err := quadbatch.NewPlayfieldMesh(grid, mapper, meshCfg)
	if err != nil {
		return fmt.Errorf("failed to build playfield: %w", err)
	}
	defer mesh.Destroy()

	pb := progressbar.NewOptions64(int64(*n),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("filling"),
		progressbar.OptionShowCount(),
	)
	defer pb.Close()

	start := time.Now()
	for i := range *n {
		mesh.Fill(0, 0, *w, *h, i%max(cfg.TilesPerRow, 1), 0)
		mesh.Consume()
		pb.Add(1)
	}
	elapsed := time.Since(start)

	stats := mesh.Stats()
	fmt.Fprintf(out, "\n%d fills of %dx%d: %s total, %s per fill, %d quads expanded\n",
		*n, *w, *h, elapsed, elapsed/time.Duration(max(*n, 1)), stats.Quads)
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: quadbatch <layout|inspect|bench> [flags]")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "layout":
		err = runLayout(os.Args[2:], os.Stdout)
	case "inspect":
		err = runInspect(os.Args[2:], os.Stdout)
	case "bench":
		err = runBench(os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "quadbatch %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}
