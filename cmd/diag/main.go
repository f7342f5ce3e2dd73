package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/NielsBongers/rust-orbital-debris/internal/colormap"
	"github.com/NielsBongers/rust-orbital-debris/internal/legend"
	"github.com/NielsBongers/rust-orbital-debris/internal/series"
	"github.com/NielsBongers/rust-orbital-debris/internal/window"
)

func main() {
	file := "results/data/particle 46.csv"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	s, err := loadFile(context.Background(), file)
	if err != nil {
		fmt.Println("ERROR loading data file:", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d samples for %q\n", s.Len(), s.Name)
	if rng, ok := s.Range(); ok {
		fmt.Printf("Time range: %g .. %g s\n", rng.Min, rng.Max)
	}

	w := window.Window{Start: 0, End: 5000, Period: 500}
	selected, err := window.Select(s, w)
	if err != nil {
		fmt.Println("ERROR selecting:", err)
		os.Exit(1)
	}
	fmt.Printf("Window %s keeps %d samples\n", w, selected.Len())

	tMax, ok := selected.MaxT()
	if !ok {
		return
	}
	for _, smp := range selected.Samples {
		c := colormap.ColorOf(smp.T, tMax)
		fmt.Printf("  t=%-8g x=%-14.1f y=%-14.1f ratio=%.3f color=#%02x%02x%02x\n",
			smp.T, smp.X, smp.Y, colormap.Ratio(smp.T, tMax), c.R, c.G, c.B)
	}
	fmt.Printf("Legend: %v\n", legend.Build(selected).Labels())
}

// loadFile decodes one data file with the same format detection and
// decompression the catalog uses.
func loadFile(ctx context.Context, file string) (series.Series, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return series.Series{}, err
	}
	cat := series.NewMemCatalog()
	cat.Add(filepath.Base(file), data)
	srcs, err := cat.Sources(ctx)
	if err != nil {
		return series.Series{}, err
	}
	return series.Load(srcs[0])
}
