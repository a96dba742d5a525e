package strategy

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aouyang1/go-promoforecast/covariate"
	"github.com/aouyang1/go-promoforecast/forecast"
	"github.com/aouyang1/go-promoforecast/series"
)

// Stage of a univariate run. A failure at any stage fails the whole run.
type Stage int

const (
	StageInit Stage = iota
	StageFitPromoModel
	StageFitNonPromoModel
	StageForecastBoth
	StageMergeMetrics
	StageReady
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageFitPromoModel:
		return "fit_promo_model"
	case StageFitNonPromoModel:
		return "fit_non_promo_model"
	case StageForecastBoth:
		return "forecast_both"
	case StageMergeMetrics:
		return "merge_metrics"
	case StageReady:
		return "ready"
	}
	return "unknown"
}

// Univariate fits one regressor free model per promotion state on that state's own history
type Univariate struct {
	opt *Options
}

func NewUnivariate(opt *Options) *Univariate {
	return &Univariate{opt: opt.validate()}
}

func (u *Univariate) Name() string {
	return "univariate"
}

// Run partitions the series by promotion flag, fits a model per partition on the rows dated
// on or before the cutoff and forecasts each partition's dates plus the horizon.
func (u *Univariate) Run(s *series.ObservedSeries, cutoff time.Time) (*Result, error) {
	if s.Len() == 0 {
		return nil, ErrNoSeries
	}
	run := &univariateRun{
		opt:        u.opt,
		s:          s,
		cutoff:     series.ToDay(cutoff),
		partitions: make(map[series.PromoState]*series.ObservedSeries),
		models:     make(map[series.PromoState]*forecast.Forecast),
		forecasts:  make(map[series.PromoState][]series.ForecastRow),
	}
	for run.stage != StageReady {
		stage := run.stage
		if err := run.step(); err != nil {
			return nil, fmt.Errorf("unable to run univariate strategy at stage %s, %w", stage, err)
		}
		slog.Debug("univariate stage complete", "item", s.ItemID, "stage", stage.String())
	}
	return run.result, nil
}

type univariateRun struct {
	opt    *Options
	s      *series.ObservedSeries
	cutoff time.Time
	stage  Stage

	partitions map[series.PromoState]*series.ObservedSeries
	models     map[series.PromoState]*forecast.Forecast
	forecasts  map[series.PromoState][]series.ForecastRow
	result     *Result
}

func (r *univariateRun) step() error {
	switch r.stage {
	case StageInit:
		for _, state := range series.PromoStates {
			r.partitions[state] = r.s.Partition(state)
		}
		r.stage = StageFitPromoModel
	case StageFitPromoModel:
		if err := r.fitPartition(series.Promo); err != nil {
			return err
		}
		r.stage = StageFitNonPromoModel
	case StageFitNonPromoModel:
		if err := r.fitPartition(series.NonPromo); err != nil {
			return err
		}
		r.stage = StageForecastBoth
	case StageForecastBoth:
		for _, state := range series.PromoStates {
			rows, err := r.forecastPartition(state)
			if err != nil {
				return err
			}
			r.forecasts[state] = rows
		}
		r.stage = StageMergeMetrics
	case StageMergeMetrics:
		res, err := r.merge()
		if err != nil {
			return err
		}
		r.result = res
		r.stage = StageReady
	}
	return nil
}

func (r *univariateRun) fitPartition(state series.PromoState) error {
	train := r.partitions[state].Until(r.cutoff)
	if train.Len() < r.opt.MinObservations {
		return fmt.Errorf("%s partition has %d observations up to %s, need %d, %w",
			state, train.Len(), r.cutoff.Format(time.DateOnly), r.opt.MinObservations, ErrInsufficientData)
	}
	f, err := fit(r.opt.engineOptions(false), train.Dates(), train.Targets(), nil)
	if err != nil {
		return fmt.Errorf("unable to fit %s model, %w", state, err)
	}
	r.models[state] = f
	return nil
}

func (r *univariateRun) forecastPartition(state series.PromoState) ([]series.ForecastRow, error) {
	partition := r.partitions[state]
	rows, err := covariate.ExtendResolved(partition, r.cutoff, covariate.HorizonDays, state)
	if err != nil {
		return nil, err
	}
	dates, _ := covariate.Columns(rows, "", nil)
	predicted, _, err := r.models[state].Predict(dates, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to predict %s model, %w", state, err)
	}

	res := make([]series.ForecastRow, len(rows))
	for i, row := range rows {
		res[i] = series.ForecastRow{
			Date:           row.Date,
			Predicted:      predicted[i],
			IsPromoContext: state.IsPromo(),
			IsFuture:       i >= partition.Len(),
		}
	}
	return res, nil
}

func (r *univariateRun) merge() (*Result, error) {
	var merged []series.ForecastRow
	models := make(map[string]forecast.Model, len(r.models))
	for _, state := range series.PromoStates {
		switch state {
		case series.Promo, series.NonPromo:
			merged = append(merged, r.forecasts[state]...)
			m, err := r.models[state].Model()
			if err != nil {
				return nil, err
			}
			models[state.String()] = m
		default:
			return nil, fmt.Errorf("unhandled promotion state %d", state)
		}
	}
	sortForecast(merged)
	return newResult(r.s, "univariate", r.cutoff, merged, models)
}
