// Package strategy implements the two ways an item's demand is forecast: one model per
// promotion state or a single model with the promotion flag as a regressor.
package strategy

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aouyang1/go-promoforecast/forecast"
	"github.com/aouyang1/go-promoforecast/metrics"
	"github.com/aouyang1/go-promoforecast/series"
)

const (
	// PromoRegressor is the engine covariate name of the promotion flag
	PromoRegressor = "is_promo"

	DefaultMinObservations = 7
)

var (
	ErrInsufficientData = errors.New("insufficient observations to fit")
	ErrMissingRegressor = series.ErrMissingRegressor
	ErrNoSeries         = errors.New("no series to forecast")
)

// Strategy fits models on the history of a series up to the cutoff and forecasts the
// series history plus one week past the cutoff
type Strategy interface {
	Name() string
	Run(s *series.ObservedSeries, cutoff time.Time) (*Result, error)
}

// Options shared by both strategies
type Options struct {
	// MinObservations is the fewest rows a model may be fit on
	MinObservations int `json:"min_observations"`

	// Forecast is the engine configuration every fitted model starts from
	Forecast *forecast.Options `json:"forecast"`
}

func NewDefaultOptions() *Options {
	return &Options{
		MinObservations: DefaultMinObservations,
		Forecast:        forecast.NewDefaultOptions(),
	}
}

func (o *Options) validate() *Options {
	if o == nil {
		return NewDefaultOptions()
	}
	next := *o
	if next.MinObservations <= 0 {
		next.MinObservations = DefaultMinObservations
	}
	if next.Forecast == nil {
		next.Forecast = forecast.NewDefaultOptions()
	}
	return &next
}

// engineOptions returns a private copy of the engine options for a single fit
func (o *Options) engineOptions(useLog bool) *forecast.Options {
	opt := *o.Forecast
	opt.ChangepointOptions.Changepoints = slices.Clone(o.Forecast.ChangepointOptions.Changepoints)
	opt.UseLog = useLog
	return &opt
}

// Result is the merged forecast of a strategy run and its score against the observed series
type Result struct {
	ItemID   string    `json:"item_id"`
	Strategy string    `json:"strategy"`
	Cutoff   time.Time `json:"cutoff"`

	Forecast []series.ForecastRow `json:"forecast"`
	Metrics  []metrics.Row        `json:"metrics"`
	RMSE     float64              `json:"rmse"`

	// Models summarizes each fitted model keyed by its role
	Models map[string]forecast.Model `json:"models"`
}

// NRMSE normalizes the RMSE by the mean observed value. Returns metrics.ErrUndefinedMetric
// when every joined observation is zero.
func (r *Result) NRMSE() (float64, error) {
	return metrics.NRMSE(r.Metrics)
}

// Future returns the rows past the cutoff
func (r *Result) Future() []series.ForecastRow {
	var res []series.ForecastRow
	for _, row := range r.Forecast {
		if row.IsFuture {
			res = append(res, row)
		}
	}
	return res
}

// Holdout scores only the joined rows dated after the cutoff
func (r *Result) Holdout() (float64, error) {
	return metrics.RMSE(metrics.Between(r.Metrics, r.Cutoff.AddDate(0, 0, 1), time.Time{}))
}

func newResult(s *series.ObservedSeries, name string, cutoff time.Time, fc []series.ForecastRow, models map[string]forecast.Model) (*Result, error) {
	rows := metrics.Score(s, fc)
	rmse, err := metrics.RMSE(rows)
	if err != nil {
		return nil, fmt.Errorf("unable to score forecast, %w", err)
	}
	return &Result{
		ItemID:   s.ItemID,
		Strategy: name,
		Cutoff:   cutoff,
		Forecast: fc,
		Metrics:  rows,
		RMSE:     rmse,
		Models:   models,
	}, nil
}

// fit trains a new engine and maps the engine's own data shortage error onto
// ErrInsufficientData
func fit(opt *forecast.Options, t []time.Time, y []float64, x map[string][]float64) (*forecast.Forecast, error) {
	f, err := forecast.New(opt)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(t, y, x); err != nil {
		if errors.Is(err, forecast.ErrInsufficientTrainingData) {
			return nil, errors.Join(ErrInsufficientData, err)
		}
		return nil, err
	}
	return f, nil
}

func sortForecast(rows []series.ForecastRow) {
	slices.SortStableFunc(rows, func(a, b series.ForecastRow) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.IsPromoContext == b.IsPromoContext:
			return 0
		case !a.IsPromoContext:
			return -1
		}
		return 1
	})
}
