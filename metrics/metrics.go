// Package metrics aligns forecasts with observations and computes scale aware error metrics.
package metrics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-promoforecast/forecast"
	"github.com/aouyang1/go-promoforecast/series"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoRows          = errors.New("no rows to score")
	ErrUndefinedMetric = errors.New("metric is undefined when the mean of actual values is zero")
)

// Row pairs an observed value with the prediction made for the same date and promotion flag
type Row struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
	IsPromo   bool      `json:"is_promo"`
}

type joinKey struct {
	date    time.Time
	isPromo bool
}

// Score inner joins the forecast onto the observed records by date where the forecast's
// promotion context matches the observed promotion flag. Future horizon rows never join.
func Score(observed *series.ObservedSeries, fc []series.ForecastRow) []Row {
	predicted := make(map[joinKey]float64, len(fc))
	for _, r := range fc {
		if r.IsFuture {
			continue
		}
		predicted[joinKey{series.ToDay(r.Date), r.IsPromoContext}] = r.Predicted
	}

	rows := make([]Row, 0, observed.Len())
	if observed == nil {
		return rows
	}
	for _, rec := range observed.Records {
		p, exists := predicted[joinKey{rec.Date, rec.IsPromo}]
		if !exists {
			continue
		}
		rows = append(rows, Row{
			Date:      rec.Date,
			Actual:    rec.Target,
			Predicted: p,
			IsPromo:   rec.IsPromo,
		})
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return a.Date.Compare(b.Date)
	})
	return rows
}

// Between returns the rows dated within [start, end]. A zero bound is open.
func Between(rows []Row, start, end time.Time) []Row {
	res := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		res = append(res, r)
	}
	return res
}

// RMSE is the root mean squared error of the predictions
func RMSE(rows []Row) (float64, error) {
	if len(rows) == 0 {
		return 0, ErrNoRows
	}
	var sse float64
	for _, r := range rows {
		d := r.Actual - r.Predicted
		sse += d * d
	}
	return math.Sqrt(sse / float64(len(rows))), nil
}

// NRMSE is the RMSE divided by the mean of the actual values so items with different sales
// volumes can be compared
func NRMSE(rows []Row) (float64, error) {
	rmse, err := RMSE(rows)
	if err != nil {
		return 0, err
	}
	mean := stat.Mean(Actuals(rows), nil)
	if mean == 0 {
		return 0, ErrUndefinedMetric
	}
	return rmse / mean, nil
}

// NewScores computes the training fit diagnostics of the joined rows
func NewScores(rows []Row) (*forecast.Scores, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	scores, err := forecast.NewScores(Predictions(rows), Actuals(rows))
	if err != nil {
		return nil, fmt.Errorf("unable to compute fit scores, %w", err)
	}
	return scores, nil
}

func Actuals(rows []Row) []float64 {
	res := make([]float64, len(rows))
	for i, r := range rows {
		res[i] = r.Actual
	}
	return res
}

func Predictions(rows []Row) []float64 {
	res := make([]float64, len(rows))
	for i, r := range rows {
		res[i] = r.Predicted
	}
	return res
}
