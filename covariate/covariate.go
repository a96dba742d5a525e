// Package covariate builds the rows a fitted model predicts over: the historical replay of
// a series plus synthetic future days past a cutoff for each promotion scenario.
package covariate

import (
	"errors"
	"fmt"
	"time"

	"github.com/aouyang1/go-promoforecast/series"
)

// HorizonDays is the number of days forecast past the cutoff
const HorizonDays = 7

var ErrInvalidHorizon = errors.New("horizon must be positive")

// Scenarios holds the future rows keyed by promotion state
type Scenarios map[series.PromoState][]series.CovariateRow

// FutureDates returns the horizon calendar days following the cutoff
func FutureDates(cutoff time.Time, horizonDays int) ([]time.Time, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("horizon of %d days, %w", horizonDays, ErrInvalidHorizon)
	}
	start := series.ToDay(cutoff)
	dates := make([]time.Time, horizonDays)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i+1)
	}
	return dates, nil
}

// Extend returns the historical covariate rows of the series and one block of future rows
// per promotion scenario. The promo scenario sets every regressor to 1 and the non promo
// scenario sets every regressor to 0.
func Extend(s *series.ObservedSeries, cutoff time.Time, horizonDays int, regressors []string) ([]series.CovariateRow, Scenarios, error) {
	dates, err := FutureDates(cutoff, horizonDays)
	if err != nil {
		return nil, nil, err
	}

	historical := s.Covariates()
	for _, row := range historical {
		for _, name := range regressors {
			if _, exists := row.Regressors[name]; !exists {
				return nil, nil, fmt.Errorf("regressor %q on %s, %w",
					name, row.Date.Format(time.DateOnly), series.ErrMissingRegressor)
			}
		}
	}

	future := make(Scenarios, len(series.PromoStates))
	for _, state := range series.PromoStates {
		val := 0.0
		if state.IsPromo() {
			val = 1.0
		}
		rows := make([]series.CovariateRow, len(dates))
		for i, d := range dates {
			row := series.CovariateRow{Date: d, IsPromo: state.IsPromo()}
			if len(regressors) > 0 {
				row.Regressors = make(map[string]float64, len(regressors))
				for _, name := range regressors {
					row.Regressors[name] = val
				}
			}
			rows[i] = row
		}
		future[state] = rows
	}
	return historical, future, nil
}

// ExtendResolved returns date only rows for a single promotion partition: every date of
// the partition followed by the horizon days, all flagged with the partition state.
func ExtendResolved(partition *series.ObservedSeries, cutoff time.Time, horizonDays int, state series.PromoState) ([]series.CovariateRow, error) {
	dates, err := FutureDates(cutoff, horizonDays)
	if err != nil {
		return nil, err
	}

	rows := make([]series.CovariateRow, 0, partition.Len()+len(dates))
	for _, d := range partition.Dates() {
		rows = append(rows, series.CovariateRow{Date: d, IsPromo: state.IsPromo()})
	}
	for _, d := range dates {
		rows = append(rows, series.CovariateRow{Date: d, IsPromo: state.IsPromo()})
	}
	return rows, nil
}

// Concat orders rows as historical, then the promo scenario, then the non promo scenario
func Concat(historical []series.CovariateRow, future Scenarios) []series.CovariateRow {
	n := len(historical)
	for _, rows := range future {
		n += len(rows)
	}
	res := make([]series.CovariateRow, 0, n)
	res = append(res, historical...)
	for _, state := range series.PromoStates {
		res = append(res, future[state]...)
	}
	return res
}

// Columns splits covariate rows into the dates and the regressor columns the engine
// consumes. The promo flag is emitted under promoName when it is not empty.
func Columns(rows []series.CovariateRow, promoName string, regressors []string) ([]time.Time, map[string][]float64) {
	dates := make([]time.Time, len(rows))
	var cols map[string][]float64
	if promoName != "" || len(regressors) > 0 {
		cols = make(map[string][]float64, len(regressors)+1)
	}
	if promoName != "" {
		cols[promoName] = make([]float64, len(rows))
	}
	for _, name := range regressors {
		cols[name] = make([]float64, len(rows))
	}
	for i, row := range rows {
		dates[i] = row.Date
		if promoName != "" && row.IsPromo {
			cols[promoName][i] = 1
		}
		for _, name := range regressors {
			cols[name][i] = row.Regressors[name]
		}
	}
	return dates, cols
}
