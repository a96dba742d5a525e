package strategy

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/aouyang1/go-promoforecast/covariate"
	"github.com/aouyang1/go-promoforecast/event"
	"github.com/aouyang1/go-promoforecast/forecast"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/stats"
	"github.com/rickar/cal/v2"
)

// MultivariateOptions configures the single model strategy
type MultivariateOptions struct {
	Options

	// Regressors are the series covariates registered with the engine next to the promo flag
	Regressors []string `json:"regressors"`

	// UseLog fits on log1p of the target and inverts the predictions
	UseLog bool `json:"use_log"`

	// Holidays are calendar regressors computed from each row's date, including future rows
	Holidays []*cal.Holiday `json:"-"`
}

// Multivariate fits one model on the whole history with the promotion flag and every named
// regressor as covariates
type Multivariate struct {
	opt        *Options
	regressors []string
	useLog     bool
	holidays   []*cal.Holiday
}

func NewMultivariate(opt *MultivariateOptions) *Multivariate {
	if opt == nil {
		opt = &MultivariateOptions{}
	}
	return &Multivariate{
		opt:        opt.Options.validate(),
		regressors: append([]string(nil), opt.Regressors...),
		useLog:     opt.UseLog,
		holidays:   opt.Holidays,
	}
}

func (m *Multivariate) Name() string {
	if m.useLog {
		return "multivariate_log"
	}
	return "multivariate"
}

func (m *Multivariate) columns(rows []series.CovariateRow) ([]time.Time, map[string][]float64) {
	dates, cols := covariate.Columns(rows, PromoRegressor, m.regressors)
	maps.Copy(cols, event.Regressors(dates, m.holidays, 0, 0))
	return dates, cols
}

// Run fits on the rows dated on or before the cutoff and predicts the full history plus the
// horizon under both promotion scenarios in a single call
func (m *Multivariate) Run(s *series.ObservedSeries, cutoff time.Time) (*Result, error) {
	if s.Len() == 0 {
		return nil, ErrNoSeries
	}
	for _, name := range m.regressors {
		if !s.HasRegressor(name) {
			return nil, fmt.Errorf("regressor %q not in series %q, %w", name, s.ItemID, ErrMissingRegressor)
		}
	}
	cutoff = series.ToDay(cutoff)

	train := s.Until(cutoff)
	if train.Len() < m.opt.MinObservations {
		return nil, fmt.Errorf("series has %d observations up to %s, need %d, %w",
			train.Len(), cutoff.Format(time.DateOnly), m.opt.MinObservations, ErrInsufficientData)
	}

	historical, future, err := covariate.Extend(s, cutoff, covariate.HorizonDays, m.regressors)
	if err != nil {
		return nil, err
	}

	trainDates, trainCols := m.columns(train.Covariates())
	checkCollinear(s.ItemID, trainCols)
	f, err := fit(m.opt.engineOptions(m.useLog), trainDates, train.Targets(), trainCols)
	if err != nil {
		return nil, fmt.Errorf("unable to fit multivariate model, %w", err)
	}
	slog.Debug("fit multivariate model", "item", s.ItemID, "use_log", m.useLog, "regressors", len(trainCols))

	rows := covariate.Concat(historical, future)
	dates, cols := m.columns(rows)
	predicted, _, err := f.Predict(dates, cols)
	if err != nil {
		return nil, fmt.Errorf("unable to predict multivariate model, %w", err)
	}

	fc := make([]series.ForecastRow, len(rows))
	for i, row := range rows {
		fc[i] = series.ForecastRow{
			Date:           row.Date,
			Predicted:      predicted[i],
			IsPromoContext: row.IsPromo,
			IsFuture:       i >= len(historical),
		}
	}
	sortForecast(fc)

	model, err := f.Model()
	if err != nil {
		return nil, err
	}
	return newResult(s, m.Name(), cutoff, fc, map[string]forecast.Model{m.Name(): model})
}

// checkCollinear warns about regressors explained by the others since their coefficients are
// unstable even though the prediction is not
func checkCollinear(itemID string, cols map[string][]float64) {
	if len(cols) < 2 {
		return
	}
	vif, err := stats.VarianceInflationFactor(cols)
	if err != nil {
		slog.Debug("unable to compute variance inflation factors", "item", itemID, "error", err.Error())
		return
	}
	if collinear := stats.Collinear(vif, stats.CollinearVIF); len(collinear) > 0 {
		slog.Warn("collinear regressors", "item", itemID, "regressors", collinear)
	}
}
