// Package aggregate folds many entity series into a single render batch.
//
// Sources are read in parallel but always folded in the catalog's sorted
// order, so the entity that seeds a first-entity legend does not depend on
// which read finishes first.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NielsBongers/rust-orbital-debris/internal/legend"
	"github.com/NielsBongers/rust-orbital-debris/internal/metrics"
	"github.com/NielsBongers/rust-orbital-debris/internal/series"
	"github.com/NielsBongers/rust-orbital-debris/internal/window"
)

// Aggregator turns a catalog of entity series into a RenderBatch.
type Aggregator struct {
	catalog series.Catalog
	pool    *ReaderPool
	opts    Options
	logger  *slog.Logger
}

// New creates an aggregator reading from cat.
func New(cat series.Catalog, opts Options, logger *slog.Logger) *Aggregator {
	opts = opts.withDefaults()
	return &Aggregator{
		catalog: cat,
		pool:    NewReaderPool(opts.Workers, logger),
		opts:    opts,
		logger:  logger,
	}
}

// Aggregate reads, windows and colors every selected entity.
//
// An invalid window fails before any source is read. Unreadable sources are
// recorded as warnings and skipped; entities with nothing inside the window
// contribute no points and no legend labels. With Options.AllSamples the
// window is neither validated nor applied.
func (a *Aggregator) Aggregate(ctx context.Context, w window.Window) (*RenderBatch, error) {
	if !a.opts.AllSamples {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	srcs, err := a.catalog.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating sources: %w", err)
	}
	series.SortSources(srcs)
	srcs = a.filter(srcs)

	metrics.SetReadWorkers(a.opts.Workers)
	loaded, err := a.pool.LoadBatch(ctx, srcs)
	if err != nil {
		return nil, err
	}

	batch := &RenderBatch{
		Window:     w,
		LegendMode: a.opts.LegendMode,
		Scale:      a.opts.Scale,
		AllSamples: a.opts.AllSamples,
	}
	acc := legend.NewAccumulator(a.opts.LegendMode)

	for i, res := range loaded {
		src := srcs[i]
		if res.err != nil {
			batch.Warnings = append(batch.Warnings, Warning{Entity: src.Name, Path: src.Path, Err: res.err})
			metrics.IncEntity(metrics.OutcomeSkipped)
			a.logger.Warn("skipping unreadable entity", "entity", src.Name, "path", src.Path, "error", res.err)
			continue
		}
		metrics.AddSamplesRead(res.series.Len())

		var g *Group
		acc, g, err = a.fold(acc, res.series, w)
		if err != nil {
			return nil, err
		}
		if g == nil {
			batch.Empty = append(batch.Empty, src.Name)
			metrics.IncEntity(metrics.OutcomeEmpty)
			a.logger.Debug("entity has no samples in window", "entity", src.Name)
			continue
		}

		batch.Groups = append(batch.Groups, *g)
		metrics.IncEntity(metrics.OutcomePlotted)
		metrics.AddPointsSelected(len(g.Points))
	}

	batch.Legend = acc.Entry()
	batch.LegendScale = acc.Scale()

	duration := time.Since(start)
	metrics.RecordAggregation(duration)
	metrics.SetLegendLabels(batch.Legend.Len())

	a.logger.Info("aggregation complete",
		"entities", len(srcs),
		"plotted", len(batch.Groups),
		"empty", len(batch.Empty),
		"skipped", len(batch.Warnings),
		"points", batch.PointCount(),
		"legend_labels", batch.Legend.Len(),
		"duration_ms", duration.Milliseconds(),
	)

	return batch, nil
}

// fold applies the window to one series, colors what is left and advances
// the legend. It returns a nil group for an empty selection.
func (a *Aggregator) fold(acc legend.Accumulator, s series.Series, w window.Window) (legend.Accumulator, *Group, error) {
	selected := s
	if !a.opts.AllSamples {
		var err error
		if selected, err = window.Select(s, w); err != nil {
			return acc, nil, err
		}
	}
	if selected.Empty() {
		return acc, nil, nil
	}

	tMax, _ := selected.MaxT()
	g := &Group{
		Entity: s.Name,
		TMax:   tMax,
		Points: make([]ColoredPoint, 0, selected.Len()),
	}
	for _, smp := range selected.Samples {
		g.Points = append(g.Points, ColoredPoint{
			Entity: s.Name,
			T:      smp.T,
			X:      smp.X,
			Y:      smp.Y,
			Color:  a.opts.Scale.ColorOf(smp.T, tMax),
		})
	}

	return acc.Observe(selected), g, nil
}

// filter applies the entity allow-list, keeping the input order.
func (a *Aggregator) filter(srcs []series.Source) []series.Source {
	if len(a.opts.SelectedEntities) == 0 {
		return srcs
	}

	want := make(map[string]bool, len(a.opts.SelectedEntities))
	for _, name := range a.opts.SelectedEntities {
		want[name] = false
	}

	kept := srcs[:0:0]
	for _, src := range srcs {
		if _, ok := want[src.Name]; !ok {
			metrics.IncEntity(metrics.OutcomeFiltered)
			continue
		}
		want[src.Name] = true
		kept = append(kept, src)
	}

	for _, name := range a.opts.SelectedEntities {
		if !want[name] {
			a.logger.Warn("selected entity not found in catalog", "entity", name)
		}
	}
	return kept
}
