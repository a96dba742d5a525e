package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2017, 1, d, 0, 0, 0, 0, time.UTC)
}

func newTestFrame(t *testing.T, dates []time.Time, sales []float64, promo []bool, capacity []float64) *Frame {
	f := NewFrame()
	require.NoError(t, f.AddTimes(DefaultDateColumn, dates))
	require.NoError(t, f.AddFloats(DefaultTargetColumn, sales))
	require.NoError(t, f.AddBools(DefaultPromoColumn, promo))
	require.NoError(t, f.AddFloats(DefaultCapacityColumn, capacity))
	return f
}

func TestPrepare(t *testing.T) {
	f := newTestFrame(t,
		[]time.Time{day(3), time.Date(2017, 1, 1, 15, 0, 0, 0, time.UTC), day(2), day(4)},
		[]float64{30, 10, math.NaN(), 40},
		[]bool{true, false, false, false},
		[]float64{5, 5, 5, math.NaN()},
	)
	require.NoError(t, f.AddFloats("Price", []float64{1.5, 2, 2, 2}))
	require.NoError(t, f.AddStrings("Label", []string{"a", "b", "c", "d"}))

	s, err := Prepare(f, DefaultSchema("item-1"))
	require.NoError(t, err)

	assert.Equal(t, "item-1", s.ItemID)
	assert.Equal(t, []time.Time{day(1), day(3)}, s.Dates())
	assert.Equal(t, []float64{10, 30}, s.Targets())
	assert.True(t, s.Records[1].IsPromo)
	assert.Equal(t, []string{"Price"}, s.Regressors())
	assert.True(t, s.HasRegressor("Price"))
	assert.Equal(t, 1.5, s.Records[1].Regressors["Price"])
}

func TestPrepareErrors(t *testing.T) {
	testData := map[string]struct {
		build  func(t *testing.T) *Frame
		schema Schema
		err    error
	}{
		"nil frame": {
			build:  func(t *testing.T) *Frame { return nil },
			schema: DefaultSchema("a"),
			err:    ErrSchema,
		},
		"missing promo": {
			build: func(t *testing.T) *Frame {
				f := NewFrame()
				require.NoError(t, f.AddTimes(DefaultDateColumn, []time.Time{day(1)}))
				require.NoError(t, f.AddFloats(DefaultTargetColumn, []float64{1}))
				return f
			},
			schema: DefaultSchema("a"),
			err:    ErrSchema,
		},
		"missing capacity": {
			build: func(t *testing.T) *Frame {
				f := NewFrame()
				require.NoError(t, f.AddTimes(DefaultDateColumn, []time.Time{day(1)}))
				require.NoError(t, f.AddFloats(DefaultTargetColumn, []float64{1}))
				require.NoError(t, f.AddFloats(DefaultPromoColumn, []float64{0}))
				return f
			},
			schema: DefaultSchema("a"),
			err:    ErrSchema,
		},
		"negative target": {
			build: func(t *testing.T) *Frame {
				return newTestFrame(t, []time.Time{day(1)}, []float64{-1}, []bool{false}, []float64{1})
			},
			schema: DefaultSchema("a"),
			err:    ErrSchema,
		},
		"duplicate date": {
			build: func(t *testing.T) *Frame {
				return newTestFrame(t, []time.Time{day(1), day(1)}, []float64{1, 2}, []bool{false, true}, []float64{1, 1})
			},
			schema: DefaultSchema("a"),
			err:    ErrSchema,
		},
		"missing named regressor": {
			build: func(t *testing.T) *Frame {
				return newTestFrame(t, []time.Time{day(1)}, []float64{1}, []bool{false}, []float64{1})
			},
			schema: Schema{
				DateColumn:   DefaultDateColumn,
				TargetColumn: DefaultTargetColumn,
				PromoColumn:  DefaultPromoColumn,
				Regressors:   []string{"Price"},
			},
			err: ErrMissingRegressor,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Prepare(td.build(t), td.schema)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestPrepareNumericPromoWithoutCapacity(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.AddTimes("ds", []time.Time{day(1), day(2)}))
	require.NoError(t, f.AddFloats("y", []float64{1, 2}))
	require.NoError(t, f.AddFloats("promo", []float64{0, 1}))

	s, err := Prepare(f, Schema{ItemID: "x", DateColumn: "ds", TargetColumn: "y", PromoColumn: "promo"})
	require.NoError(t, err)
	assert.False(t, s.Records[0].IsPromo)
	assert.True(t, s.Records[1].IsPromo)
	assert.Empty(t, s.Regressors())
}

func TestSeriesHelpers(t *testing.T) {
	s := New("item", []Record{
		{Date: day(3), Target: 3, IsPromo: true, Regressors: map[string]float64{"Price": 1}},
		{Date: day(1), Target: 1, Regressors: map[string]float64{"Price": 2}},
		{Date: day(2), Target: 2, Regressors: map[string]float64{"Price": 2}},
	})

	assert.Equal(t, day(1), s.Start())
	assert.Equal(t, day(3), s.End())
	assert.Equal(t, []float64{1, 2}, s.Partition(NonPromo).Targets())
	assert.Equal(t, []float64{3}, s.Partition(Promo).Targets())
	assert.Equal(t, []float64{1, 2}, s.Until(day(2)).Targets())
	assert.Equal(t, []float64{2, 3}, s.Between(day(2), time.Time{}).Targets())
	assert.True(t, s.HasRegressor("Price"))
	assert.False(t, s.HasRegressor("Volume"))

	rows := s.Covariates()
	require.Len(t, rows, 3)
	rows[0].Regressors["Price"] = 100
	assert.Equal(t, 2.0, s.Records[0].Regressors["Price"])

	var empty *ObservedSeries
	assert.Zero(t, empty.Len())
	assert.True(t, empty.Start().IsZero())
}

func TestPromoState(t *testing.T) {
	assert.Equal(t, Promo, PromoStateOf(true))
	assert.Equal(t, NonPromo, PromoStateOf(false))
	assert.Equal(t, "promo", Promo.String())
	assert.Equal(t, "non_promo", NonPromo.String())
	assert.True(t, Promo.IsPromo())
}

func TestParseDates(t *testing.T) {
	testData := map[string]struct {
		values   []string
		layout   string
		workers  int
		expected []time.Time
		hasErr   bool
	}{
		"date keys": {
			values:   []string{"20170101", " 20171231 ", "20180101.0"},
			workers:  2,
			expected: []time.Time{day(1), time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		"iso layout": {
			values:   []string{"2017-01-02"},
			layout:   time.DateOnly,
			expected: []time.Time{day(2)},
		},
		"bad value": {
			values: []string{"20170101", "not-a-date"},
			hasErr: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ParseDates(td.values, td.layout, td.workers)
			if td.hasErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestParseDatesManyWorkers(t *testing.T) {
	values := make([]string, 5000)
	for i := range values {
		values[i] = day(1).AddDate(0, 0, i).Format(DefaultDateLayout)
	}
	res, err := ParseDates(values, "", 8)
	require.NoError(t, err)
	require.Len(t, res, 5000)
	assert.Equal(t, day(1).AddDate(0, 0, 4999), res[4999])
}

func TestFrame(t *testing.T) {
	f := NewFrame()
	require.NoError(t, f.AddFloats("a", []float64{1, 2, 3}))
	assert.ErrorIs(t, f.AddFloats("a", []float64{1, 2, 3}), ErrColumnExists)
	assert.ErrorIs(t, f.AddBools("b", []bool{true}), ErrColumnLength)
	require.NoError(t, f.AddBools("b", []bool{true, false, true}))

	sub := f.Take([]int{2, 0})
	assert.Equal(t, 2, sub.Len())
	vals, _ := sub.Numeric("b")
	assert.Equal(t, []float64{1, 1}, vals)
	assert.Equal(t, []string{"a", "b"}, sub.Columns())
}
