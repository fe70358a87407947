package smoothing

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"loadwatch/domain/core"
	"loadwatch/domain/timeline"
)

// Engine annotates rows with acute/chronic EWMA and their ratio for each
// tracked metric. Smoothing state is partitioned per identity and never
// crosses a player boundary.
type Engine struct {
	spans   Spans
	metrics []string
}

// NewEngine builds an engine for the given spans and tracked metrics.
func NewEngine(spans Spans, metrics []string) (*Engine, error) {
	if err := spans.Validate(); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: no tracked metrics", core.ErrInvalidConfig)
	}
	return &Engine{spans: spans, metrics: metrics}, nil
}

// Annotate computes the EWMA/ACWR annotation over the whole table. The
// computation has no cross-player dependency, so partitions run
// concurrently; each worker owns one identity's ordered series
// exclusively. The returned table is sorted by (Player, Date) for
// deterministic output.
func (e *Engine) Annotate(ctx context.Context, rows []timeline.Row) ([]timeline.Row, error) {
	order, groups := timeline.GroupByIdentity(rows)

	results := make([][]timeline.Row, len(order))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, id := range order {
		i, partition := i, groups[id]
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			annotated, err := e.annotatePartition(partition)
			if err != nil {
				return fmt.Errorf("player %s: %w", partition[0].Player, err)
			}
			results[i] = annotated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]timeline.Row, 0, len(rows))
	for _, partition := range results {
		out = append(out, partition...)
	}
	timeline.Sort(out)
	return out, nil
}

// annotatePartition smooths a single identity's series. The partition is
// sorted Date-ascending first; a duplicate date inside one partition
// breaks the ordering contract and is rejected.
func (e *Engine) annotatePartition(partition []timeline.Row) ([]timeline.Row, error) {
	rows := make([]timeline.Row, len(partition))
	for i, r := range partition {
		rows[i] = r.Clone()
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Before(rows[j].Date)
	})
	for i := 1; i < len(rows); i++ {
		if !rows[i-1].Date.Before(rows[i].Date) {
			return nil, fmt.Errorf("%w: duplicate date %s", core.ErrUnsortedSeries, rows[i].Date)
		}
	}

	for i := range rows {
		if rows[i].Acute == nil {
			rows[i].Acute = make(map[string]core.Value, len(e.metrics))
			rows[i].Chronic = make(map[string]core.Value, len(e.metrics))
			rows[i].ACWR = make(map[string]core.Value, len(e.metrics))
		}
	}

	for _, metric := range e.metrics {
		series := make([]core.Value, len(rows))
		for i, r := range rows {
			series[i] = r.Metrics[metric]
		}
		// Chronic runs on the exact same ordered series as acute; the
		// densifier already owns any gap handling.
		acute := EWMA(series, e.spans.Acute)
		chronic := EWMA(series, e.spans.Chronic)
		ratio := ACWR(acute, chronic)
		for i := range rows {
			rows[i].Acute[metric] = acute[i]
			rows[i].Chronic[metric] = chronic[i]
			rows[i].ACWR[metric] = ratio[i]
		}
	}
	return rows, nil
}
