package evaluation

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/aouyang1/go-promoforecast/metrics"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/strategy"
	"github.com/aouyang1/go-promoforecast/timedataset"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var historyStart = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

func generateItem(itemID string, start time.Time, n int, base float64) *series.ObservedSeries {
	dates := timedataset.GenerateDays(start, n, 1)
	mask := timedataset.GeneratePromoMask(n, 5, 0)
	y := timedataset.GenerateConstY(n, base).
		Add(timedataset.GenerateWeeklyY(dates, base/10, 1, 0)).
		Add(timedataset.GenerateNoise(n, base/40, 7)).
		ClipNonNegative()

	records := make([]series.Record, n)
	for i := range records {
		target := y[i]
		if mask[i] && base > 0 {
			target += 10
		}
		records[i] = series.Record{
			Date:     dates[i],
			Target:   target,
			IsPromo:  mask[i],
			Capacity: 10,
		}
	}
	return series.New(itemID, records)
}

func TestColumn(t *testing.T) {
	w := DefaultWindows()
	assert.Equal(t, "univariate_RMSE_2year", Column("univariate", MetricRMSE, w[0]))
	assert.Equal(t, "multivariate_log_NRMSE_1year", Column("multivariate_log", MetricNRMSE, w[1]))
}

func TestNew(t *testing.T) {
	_, err := New(&Options{})
	assert.ErrorIs(t, err, ErrNoWindows)

	h, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, h.opt.Workers)
	assert.Equal(t, DefaultCutoff, h.opt.Cutoff)
}

func TestEvaluate(t *testing.T) {
	testData := map[string]struct {
		item        *series.ObservedSeries
		expectedErr error
		nanRMSE     bool
		nanNRMSE    bool
	}{
		"two years of daily history": {
			item: generateItem("good", historyStart, 731, 40),
		},
		"too short for either partition": {
			item:        generateItem("short", time.Date(2017, 12, 20, 0, 0, 0, 0, time.UTC), 10, 40),
			expectedErr: strategy.ErrInsufficientData,
			nanRMSE:     true,
			nanNRMSE:    true,
		},
		"no sales": {
			item:        generateItem("zeros", historyStart, 731, 0),
			expectedErr: metrics.ErrUndefinedMetric,
			nanNRMSE:    true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			h, err := New(nil)
			require.NoError(t, err)

			table := NewTable()
			results := h.Evaluate(td.item, strategy.NewUnivariate(nil), table)
			require.Len(t, results, 2)

			for i, r := range results {
				w := DefaultWindows()[i]
				assert.Equal(t, w.Label, r.WindowLabel)
				assert.Equal(t, "univariate", r.ModelName)
				if td.expectedErr != nil {
					assert.ErrorIs(t, r.Err, td.expectedErr)
				} else {
					assert.NoError(t, r.Err)
				}
				assert.Equal(t, td.nanRMSE, math.IsNaN(r.RMSE), "rmse nan")
				assert.Equal(t, td.nanNRMSE, math.IsNaN(r.NRMSE), "nrmse nan")

				cell := table.Value(td.item.ItemID, Column("univariate", MetricRMSE, w))
				assert.Equal(t, math.IsNaN(r.RMSE), math.IsNaN(cell))
			}
		})
	}
}

func TestEvaluateMultivariate(t *testing.T) {
	h, err := New(&Options{
		Windows: DefaultWindows(),
	})
	require.NoError(t, err)

	item := generateItem("good", historyStart, 731, 40)
	results := h.Evaluate(item, strategy.NewMultivariate(nil), nil)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Greater(t, r.RMSE, 0.0)
		assert.Greater(t, r.NRMSE, 0.0)
	}
}

func TestEvaluateBatch(t *testing.T) {
	items := []*series.ObservedSeries{
		generateItem("a", historyStart, 731, 40),
		generateItem("b", historyStart, 731, 60),
		generateItem("short", time.Date(2017, 12, 20, 0, 0, 0, 0, time.UTC), 10, 40),
		generateItem("c", historyStart, 731, 20),
	}

	reg := prometheus.NewRegistry()
	var mu sync.Mutex
	var done []string
	h, err := New(&Options{
		Windows:    DefaultWindows(),
		Cutoff:     DefaultCutoff,
		Workers:    3,
		Registerer: reg,
		OnItemDone: func(itemID string) {
			mu.Lock()
			defer mu.Unlock()
			done = append(done, itemID)
		},
	})
	require.NoError(t, err)

	table := NewTable()
	require.NoError(t, h.EvaluateBatch(context.Background(), items, strategy.NewUnivariate(nil), table))

	assert.ElementsMatch(t, []string{"a", "b", "short", "c"}, done)
	assert.Equal(t, []string{"a", "b", "c", "short"}, table.Items())
	assert.Len(t, table.Columns(), 4)
	assert.Len(t, table.Results(), 8)

	failures := table.Failures()
	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.Equal(t, "short", f.ItemID)
		assert.ErrorIs(t, f.Err, strategy.ErrInsufficientData)
	}
	for _, item := range []string{"a", "b", "c"} {
		for _, col := range table.Columns() {
			assert.False(t, math.IsNaN(table.Value(item, col)), item+" "+col)
		}
	}

	assert.Equal(t, 4.0, testutil.ToFloat64(h.metrics.Items))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Runs.WithLabelValues("univariate", "1-year", statusError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(h.metrics.Runs.WithLabelValues("univariate", "2-year", statusOK)))
}

func TestEvaluateBatchSequentialStrategies(t *testing.T) {
	testData := map[string]struct {
		workers int
	}{
		"single worker":           {workers: 1},
		"more workers than items": {workers: 8},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			items := []*series.ObservedSeries{
				generateItem("a", historyStart, 731, 40),
				generateItem("b", historyStart, 731, 60),
			}
			h, err := New(&Options{
				Windows: DefaultWindows(),
				Cutoff:  DefaultCutoff,
				Workers: td.workers,
			})
			require.NoError(t, err)

			ctx := context.Background()
			table := NewTable()
			for _, strat := range []strategy.Strategy{strategy.NewUnivariate(nil), strategy.NewMultivariate(nil)} {
				require.NoError(t, h.EvaluateBatch(ctx, items, strat, table), strat.Name())
			}
			assert.Len(t, table.Columns(), 8)
			assert.Len(t, table.Results(), 8)
			assert.Empty(t, table.Failures())
		})
	}
}

func TestEvaluateBatchCancelled(t *testing.T) {
	h, err := New(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := NewTable()
	err = h.EvaluateBatch(ctx, []*series.ObservedSeries{generateItem("a", historyStart, 60, 40)}, strategy.NewUnivariate(nil), table)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, table.Items())
}

func TestEvaluateBatchDuplicateItem(t *testing.T) {
	h, err := New(nil)
	require.NoError(t, err)

	item := generateItem("a", historyStart, 60, 40)
	err = h.EvaluateBatch(context.Background(), []*series.ObservedSeries{item, item}, strategy.NewUnivariate(nil), NewTable())
	assert.ErrorIs(t, err, ErrDuplicateItem)
}
