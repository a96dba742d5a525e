package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-promoforecast/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2017, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestScore(t *testing.T) {
	observed := series.New("item", []series.Record{
		{Date: day(1), Target: 10},
		{Date: day(2), Target: 20, IsPromo: true},
		{Date: day(3), Target: 12},
	})
	fc := []series.ForecastRow{
		{Date: day(3), Predicted: 11},
		{Date: day(1), Predicted: 9},
		{Date: day(1), Predicted: 30, IsPromoContext: true},
		{Date: day(2), Predicted: 21, IsPromoContext: true},
		{Date: day(2), Predicted: 15},
		{Date: day(4), Predicted: 14, IsFuture: true},
		{Date: day(4), Predicted: 24, IsPromoContext: true, IsFuture: true},
	}

	rows := Score(observed, fc)
	expected := []Row{
		{Date: day(1), Actual: 10, Predicted: 9},
		{Date: day(2), Actual: 20, Predicted: 21, IsPromo: true},
		{Date: day(3), Actual: 12, Predicted: 11},
	}
	assert.Equal(t, expected, rows)

	assert.Equal(t, expected[1:], Between(rows, day(2), time.Time{}))
	assert.Equal(t, expected[:1], Between(rows, time.Time{}, day(1)))
	assert.Empty(t, Score(observed, nil))
}

func TestRMSEAndNRMSE(t *testing.T) {
	testData := map[string]struct {
		rows  []Row
		rmse  float64
		nrmse float64
		err   error
	}{
		"no rows": {
			err: ErrNoRows,
		},
		"perfect": {
			rows:  []Row{{Actual: 3, Predicted: 3}, {Actual: 5, Predicted: 5}},
			rmse:  0,
			nrmse: 0,
		},
		"constant error": {
			rows:  []Row{{Actual: 10, Predicted: 12}, {Actual: 30, Predicted: 28}},
			rmse:  2,
			nrmse: 0.1,
		},
		"zero mean": {
			rows: []Row{{Actual: 0, Predicted: 1}, {Actual: 0, Predicted: -1}},
			rmse: 1,
			err:  ErrUndefinedMetric,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			rmse, err := RMSE(td.rows)
			if td.err == ErrNoRows {
				assert.ErrorIs(t, err, ErrNoRows)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.rmse, rmse, 1e-12)

			nrmse, err := NRMSE(td.rows)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, td.nrmse, nrmse, 1e-12)
		})
	}
}

func TestMetricProperties(t *testing.T) {
	rows := make([]Row, 50)
	for i := range rows {
		actual := 20 + 5*math.Sin(float64(i))
		rows[i] = Row{Actual: actual, Predicted: actual + math.Cos(float64(i*7))}
	}

	rmse, err := RMSE(rows)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rmse, 0.0)

	nrmse, err := NRMSE(rows)
	require.NoError(t, err)

	// scaling both series by a positive constant scales rmse and leaves nrmse unchanged
	scaled := make([]Row, len(rows))
	for i, r := range rows {
		scaled[i] = Row{Actual: 4 * r.Actual, Predicted: 4 * r.Predicted}
	}
	scaledRMSE, err := RMSE(scaled)
	require.NoError(t, err)
	assert.InDelta(t, 4*rmse, scaledRMSE, 1e-9)

	scaledNRMSE, err := NRMSE(scaled)
	require.NoError(t, err)
	assert.InDelta(t, nrmse, scaledNRMSE, 1e-12)
}

func TestNewScores(t *testing.T) {
	_, err := NewScores(nil)
	assert.ErrorIs(t, err, ErrNoRows)

	scores, err := NewScores([]Row{{Actual: 1, Predicted: 1}, {Actual: 2, Predicted: 2}, {Actual: 4, Predicted: 4}})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, scores.MSE, 1e-12)
	assert.InDelta(t, 1.0, scores.R2, 1e-12)
}
