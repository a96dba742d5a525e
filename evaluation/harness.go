// Package evaluation scores a strategy across items and historical windows
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-promoforecast/metrics"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/strategy"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoWindows     = errors.New("no evaluation windows")
	ErrDuplicateItem = errors.New("item appears more than once in batch")
)

// DefaultCutoff is the first day after the evaluated history
var DefaultCutoff = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configures the harness
type Options struct {
	Windows []Window

	// Cutoff is the last day models are fit on. A zero cutoff uses the last observed date
	// of each window.
	Cutoff time.Time

	Workers int

	// Registerer receives the harness metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer

	// OnItemDone is called after every item of a batch is evaluated
	OnItemDone func(itemID string)
}

func NewDefaultOptions() *Options {
	return &Options{
		Windows: DefaultWindows(),
		Cutoff:  DefaultCutoff,
		Workers: 1,
	}
}

// Harness runs a strategy over every configured window of an item and records the scores
type Harness struct {
	opt     *Options
	metrics *Metrics
}

func New(opt *Options) (*Harness, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if len(opt.Windows) == 0 {
		return nil, ErrNoWindows
	}
	next := *opt
	if next.Workers < 1 {
		next.Workers = 1
	}
	return &Harness{
		opt:     &next,
		metrics: NewMetrics(next.Registerer),
	}, nil
}

func (h *Harness) cutoff(windowed *series.ObservedSeries) time.Time {
	if h.opt.Cutoff.IsZero() {
		return windowed.End()
	}
	return h.opt.Cutoff
}

// Evaluate scores the strategy on every window of the item. Failures are logged and
// recorded as NaN cells and never stop the remaining windows.
func (h *Harness) Evaluate(s *series.ObservedSeries, strat strategy.Strategy, table *Table) []Result {
	results := make([]Result, 0, len(h.opt.Windows))
	for _, w := range h.opt.Windows {
		r := h.evaluateWindow(s, strat, w)
		if table != nil {
			table.Record(w, r)
		}
		results = append(results, r)
	}
	h.metrics.Items.Inc()
	return results
}

func (h *Harness) evaluateWindow(s *series.ObservedSeries, strat strategy.Strategy, w Window) Result {
	r := Result{
		ItemID:      s.ItemID,
		ModelName:   strat.Name(),
		WindowLabel: w.Label,
		RMSE:        math.NaN(),
		NRMSE:       math.NaN(),
	}

	windowed := s.Between(w.Start, w.End)
	start := time.Now()
	res, err := strat.Run(windowed, h.cutoff(windowed))
	h.metrics.RunDuration.WithLabelValues(r.ModelName, w.Label).Observe(time.Since(start).Seconds())
	if err != nil {
		r.Err = fmt.Errorf("unable to run %s on window %s, %w", r.ModelName, w.Label, err)
		h.metrics.Runs.WithLabelValues(r.ModelName, w.Label, statusError).Inc()
		slog.Warn("evaluation failed", "item", s.ItemID, "model", r.ModelName, "window", w.Label, "error", err.Error())
		return r
	}
	r.RMSE = res.RMSE

	nrmse, err := res.NRMSE()
	if err != nil {
		r.Err = fmt.Errorf("unable to normalize %s on window %s, %w", r.ModelName, w.Label, err)
		status := statusError
		if errors.Is(err, metrics.ErrUndefinedMetric) {
			status = statusUndefined
		}
		h.metrics.Runs.WithLabelValues(r.ModelName, w.Label, status).Inc()
		slog.Warn("nrmse undefined", "item", s.ItemID, "model", r.ModelName, "window", w.Label, "error", err.Error())
		return r
	}
	r.NRMSE = nrmse
	h.metrics.Runs.WithLabelValues(r.ModelName, w.Label, statusOK).Inc()
	return r
}

// EvaluateBatch evaluates every item with at most Workers items in flight. Item failures
// are recorded in the table. Only cancellation of the context, observed between items,
// returns an error.
func (h *Harness) EvaluateBatch(ctx context.Context, items []*series.ObservedSeries, strat strategy.Strategy, table *Table) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, exists := seen[item.ItemID]; exists {
			return fmt.Errorf("item %q, %w", item.ItemID, ErrDuplicateItem)
		}
		seen[item.ItemID] = struct{}{}
	}

	// item failures land in the table, never in the group
	var g errgroup.Group
	g.SetLimit(h.opt.Workers)
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			h.Evaluate(item, strat, table)
			if h.opt.OnItemDone != nil {
				h.opt.OnItemDone(item.ItemID)
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}
