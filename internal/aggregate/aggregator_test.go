package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NielsBongers/rust-orbital-debris/internal/colormap"
	"github.com/NielsBongers/rust-orbital-debris/internal/legend"
	"github.com/NielsBongers/rust-orbital-debris/internal/series"
	"github.com/NielsBongers/rust-orbital-debris/internal/window"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const scenarioCSV = "t,x,y\n0,1,1\n250,2,2\n500,3,3\n1000,4,4\n"

var scenarioWindow = window.Window{Start: 0, End: 1000, Period: 500}

func catalogOf(files map[string]string) *series.MemCatalog {
	cat := series.NewMemCatalog()
	for name, data := range files {
		cat.Add(name, []byte(data))
	}
	return cat
}

func pointTimes(g Group) []float64 {
	out := make([]float64, 0, len(g.Points))
	for _, p := range g.Points {
		out = append(out, p.T)
	}
	return out
}

// TestAggregateScenario walks the single-entity example end to end.
func TestAggregateScenario(t *testing.T) {
	agg := New(catalogOf(map[string]string{"particle 1.csv": scenarioCSV}), Options{Workers: 2}, testLogger())

	batch, err := agg.Aggregate(context.Background(), scenarioWindow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(batch.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(batch.Groups))
	}

	g := batch.Groups[0]
	if got := pointTimes(g); !reflect.DeepEqual(got, []float64{0, 500, 1000}) {
		t.Errorf("times = %v, want [0 500 1000]", got)
	}
	if g.TMax != 1000 {
		t.Errorf("tMax = %v, want 1000", g.TMax)
	}

	var positions []float64
	for _, p := range g.Points {
		pos, ok := colormap.Jet.Position(p.Color)
		if !ok {
			t.Fatalf("color %v at t=%v not on jet scale", p.Color, p.T)
		}
		positions = append(positions, pos)
	}
	if !(positions[0] < positions[1] && positions[1] < positions[2]) {
		t.Errorf("scale positions not strictly increasing: %v", positions)
	}

	if !reflect.DeepEqual(batch.Legend, legend.Entry{0, 500, 1000}) {
		t.Errorf("legend = %v, want [0 500 1000]", batch.Legend)
	}
	if batch.LegendScale != 1000 {
		t.Errorf("legend scale = %v, want 1000", batch.LegendScale)
	}
}

// TestAggregateEmptyWindow verifies an empty selection is silent.
func TestAggregateEmptyWindow(t *testing.T) {
	agg := New(catalogOf(map[string]string{"particle 1.csv": scenarioCSV}), Options{}, testLogger())

	batch, err := agg.Aggregate(context.Background(), window.Window{Start: 2000, End: 3000, Period: 100})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if batch.PointCount() != 0 {
		t.Errorf("got %d points, want 0", batch.PointCount())
	}
	if len(batch.Legend) != 0 {
		t.Errorf("legend = %v, want empty", batch.Legend)
	}
	if len(batch.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", batch.Warnings)
	}
	if !reflect.DeepEqual(batch.Empty, []string{"particle 1"}) {
		t.Errorf("empty = %v, want [particle 1]", batch.Empty)
	}
}

// TestAggregateLegendFreeze verifies the first non-empty entity owns the legend.
func TestAggregateLegendFreeze(t *testing.T) {
	files := map[string]string{
		"a.csv": "t,x,y\n0,1,1\n500,1,1\n1000,1,1\n",
		"b.csv": "t,x,y\n250,2,2\n750,2,2\n",
	}
	w := window.Window{Start: 0, End: 1000, Period: 250}

	batch, err := New(catalogOf(files), Options{}, testLogger()).Aggregate(context.Background(), w)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !reflect.DeepEqual(batch.Legend, legend.Entry{0, 500, 1000}) {
		t.Errorf("legend = %v, want [0 500 1000]", batch.Legend)
	}
	if batch.PointCount() != 5 {
		t.Errorf("got %d points, want 5", batch.PointCount())
	}

	union, err := New(catalogOf(files), Options{LegendMode: legend.Union}, testLogger()).Aggregate(context.Background(), w)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !reflect.DeepEqual(union.Legend, legend.Entry{0, 500, 1000, 250, 750}) {
		t.Errorf("union legend = %v, want [0 500 1000 250 750]", union.Legend)
	}
}

// TestAggregateLegendSkipsEmptyFirst verifies an entity with nothing in the
// window does not claim the legend even though it sorts first.
func TestAggregateLegendSkipsEmptyFirst(t *testing.T) {
	files := map[string]string{
		"a.csv": "t,x,y\n5000,1,1\n",
		"b.csv": "t,x,y\n0,2,2\n500,2,2\n",
	}

	batch, err := New(catalogOf(files), Options{}, testLogger()).Aggregate(context.Background(), scenarioWindow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !reflect.DeepEqual(batch.Legend, legend.Entry{0, 500}) {
		t.Errorf("legend = %v, want [0 500]", batch.Legend)
	}
}

// TestAggregatePartialFailure verifies a malformed entity is skipped with one warning.
func TestAggregatePartialFailure(t *testing.T) {
	files := map[string]string{
		"a.csv":      scenarioCSV,
		"broken.csv": "t,x\n0,1\n",
		"c.csv":      scenarioCSV,
	}

	batch, err := New(catalogOf(files), Options{Workers: 3}, testLogger()).Aggregate(context.Background(), scenarioWindow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	var entities []string
	for _, g := range batch.Groups {
		entities = append(entities, g.Entity)
	}
	if !reflect.DeepEqual(entities, []string{"a", "c"}) {
		t.Errorf("plotted entities = %v, want [a c]", entities)
	}
	if len(batch.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(batch.Warnings))
	}
	if batch.Warnings[0].Entity != "broken" {
		t.Errorf("warning entity = %q, want broken", batch.Warnings[0].Entity)
	}
	var serr *series.SourceReadError
	if !errors.As(batch.Warnings[0].Err, &serr) {
		t.Errorf("warning error %T is not a *SourceReadError", batch.Warnings[0].Err)
	}
}

// TestAggregateInvalidWindow verifies the run fails before reading anything.
func TestAggregateInvalidWindow(t *testing.T) {
	agg := New(catalogOf(map[string]string{"a.csv": scenarioCSV}), Options{}, testLogger())
	var reads atomic.Int32
	agg.pool.load = func(src series.Source) (series.Series, error) {
		reads.Add(1)
		return series.Load(src)
	}

	_, err := agg.Aggregate(context.Background(), window.Window{Start: 0, End: 1000, Period: 0})
	var werr *window.InvalidWindowError
	if !errors.As(err, &werr) {
		t.Fatalf("expected *InvalidWindowError, got %v", err)
	}
	if reads.Load() != 0 {
		t.Errorf("read %d sources before failing", reads.Load())
	}
}

// TestAggregateSelectedEntities verifies the allow-list.
func TestAggregateSelectedEntities(t *testing.T) {
	files := map[string]string{
		"particle 45.csv": scenarioCSV,
		"particle 46.csv": scenarioCSV,
		"particle 47.csv": scenarioCSV,
	}
	opts := Options{SelectedEntities: []string{"particle 46", "particle 99"}}

	batch, err := New(catalogOf(files), opts, testLogger()).Aggregate(context.Background(), scenarioWindow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if len(batch.Groups) != 1 || batch.Groups[0].Entity != "particle 46" {
		t.Errorf("groups = %+v, want only particle 46", batch.Groups)
	}
}

// TestAggregateDeterministicOrder verifies the fold order ignores read completion order.
func TestAggregateDeterministicOrder(t *testing.T) {
	files := map[string]string{}
	names := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	for i, n := range names {
		// Each entity has a different set of times so the legend reveals which was first.
		files[n+".csv"] = "t,x,y\n" + []string{"0", "500", "1000"}[i%3] + ",1,1\n"
	}

	agg := New(catalogOf(files), Options{Workers: 4}, testLogger())
	agg.pool.load = func(src series.Source) (series.Series, error) {
		// Earlier entities finish last.
		delay := time.Duration(len(names)-int(src.Name[1]-'0')) * time.Millisecond
		time.Sleep(delay)
		return series.Load(src)
	}

	batch, err := agg.Aggregate(context.Background(), scenarioWindow)
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	var got []string
	for _, g := range batch.Groups {
		got = append(got, g.Entity)
	}
	if !reflect.DeepEqual(got, names) {
		t.Errorf("group order = %v, want %v", got, names)
	}
	if !reflect.DeepEqual(batch.Legend, legend.Entry{0}) {
		t.Errorf("legend = %v, want [0] from p0", batch.Legend)
	}
}

// TestAggregateCancelled verifies context cancellation aborts the run.
func TestAggregateCancelled(t *testing.T) {
	agg := New(catalogOf(map[string]string{"a.csv": scenarioCSV}), Options{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := agg.Aggregate(ctx, scenarioWindow); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPointsFlattensGroups(t *testing.T) {
	b := &RenderBatch{Groups: []Group{
		{Entity: "a", Points: []ColoredPoint{{Entity: "a", T: 0}, {Entity: "a", T: 1}}},
		{Entity: "b", Points: []ColoredPoint{{Entity: "b", T: 2}}},
	}}
	pts := b.Points()
	if len(pts) != 3 || b.PointCount() != 3 {
		t.Fatalf("got %d points (count %d), want 3", len(pts), b.PointCount())
	}
	if pts[2].Entity != "b" {
		t.Errorf("last point entity = %q, want b", pts[2].Entity)
	}
}

// driftedCSV writes n samples whose times accumulate a fixed step, the way the
// simulator advances its clock.
func driftedCSV(n int, step float64) string {
	var b strings.Builder
	b.WriteString("t,x,y\n")
	tm := 0.0
	for i := 0; i < n; i++ {
		b.WriteString(strconv.FormatFloat(tm, 'g', -1, 64))
		b.WriteString(", 7000000," + strconv.Itoa(i) + "\n")
		tm += step
	}
	return b.String()
}

func TestAggregateAllSamples(t *testing.T) {
	cat := catalogOf(map[string]string{"particle 46.csv": driftedCSV(1000, 0.01)})

	windowed, err := New(cat, Options{Workers: 1}, testLogger()).
		Aggregate(context.Background(), window.Window{Start: 0, End: 5000, Period: 0.01})
	if err != nil {
		t.Fatalf("windowed Aggregate failed: %v", err)
	}
	if n := windowed.PointCount(); n >= 1000 {
		t.Fatalf("windowed run kept %d points; drifted times should not all land on the period", n)
	}

	// The window is ignored entirely, even an invalid one.
	batch, err := New(cat, Options{Workers: 1, AllSamples: true}, testLogger()).
		Aggregate(context.Background(), window.Window{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if !batch.AllSamples {
		t.Error("batch should record AllSamples")
	}
	if len(batch.Groups) != 1 || batch.PointCount() != 1000 {
		t.Fatalf("got %d groups, %d points; want 1 group, 1000 points", len(batch.Groups), batch.PointCount())
	}

	g := batch.Groups[0]
	last := g.Points[len(g.Points)-1]
	if g.TMax != last.T {
		t.Errorf("tMax = %v, want last sample time %v", g.TMax, last.T)
	}
	if last.Color != colormap.Jet.At(1) {
		t.Errorf("last point color = %v, want top of scale", last.Color)
	}
}
