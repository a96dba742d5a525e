package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aouyang1/go-promoforecast/feature"
	"github.com/aouyang1/go-promoforecast/linearmodel"
	"github.com/aouyang1/go-promoforecast/timedataset"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecast    = errors.New("uninitialized forecast")
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing Nans")
	ErrMismatchedDataLen        = errors.New("input data has different length than time")
	ErrMissingRegressor         = errors.New("regressor not provided")
	ErrNoModelCoefficients      = errors.New("no model coefficients from fit")
	ErrUntrainedForecast        = errors.New("forecast has not been trained yet")
	ErrAlreadyTrained           = errors.New("forecast has already been trained")
	ErrNegativeLogInput         = errors.New("log transform requires values greater than -1")
)

// Forecast represents a single forecast model of a daily time series. This is an additive
// linear model of a piecewise linear trend, weekly Fourier seasonality and external
// regressors fit with ridge regression. A forecast can only be trained once.
type Forecast struct {
	opt    *Options
	scores *Scores // score calculations after training

	// model coefficients
	fLabels *feature.Labels

	trainStartTime  time.Time
	trainEndTime    time.Time
	changepoints    []Changepoint
	weekly          bool
	regressorNames  []string
	regressorScales map[string]regressorScale

	residual        []float64
	trainComponents Components

	coef      []float64
	intercept float64
	trained   bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *Options) (*Forecast, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	return &Forecast{opt: opt}, nil
}

// Fit takes the input training data and regressor columns keyed by name and fits the
// trend, weekly seasonality, regressor weights and intercept. Observations with a NaN
// value are ignored.
func (f *Forecast) Fit(t []time.Time, y []float64, x map[string][]float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}
	if f.trained {
		return ErrAlreadyTrained
	}

	fullData, err := timedataset.NewDataset(t, y, x)
	if err != nil {
		return fmt.Errorf("unable to build training dataset, %w", err)
	}
	trainingData := fullData.DropNan()
	if len(trainingData.T) <= 1 {
		return ErrInsufficientTrainingData
	}

	tSlice := timedataset.TimeSlice(trainingData.T)
	f.trainStartTime = tSlice.StartTime()
	f.trainEndTime = tSlice.EndTime()
	f.weekly = f.opt.SeasonalityOptions.WeeklyOrders > 0 && tSlice.Span() >= 7*24*time.Hour

	f.changepoints = f.opt.ChangepointOptions.Changepoints
	if f.opt.ChangepointOptions.Auto {
		f.changepoints = generateAutoChangepoints(
			trainingData.T,
			f.opt.ChangepointOptions.AutoNumChangepoints,
			f.opt.ChangepointOptions.Range,
		)
	}

	f.regressorNames = trainingData.Labels()
	f.regressorScales = make(map[string]regressorScale, len(f.regressorNames))
	for _, name := range f.regressorNames {
		f.regressorScales[name] = newRegressorScale(trainingData.X[name])
	}

	target, err := f.transform(trainingData.Y)
	if err != nil {
		return err
	}
	yScale := floats.Norm(target, math.Inf(1))
	if yScale == 0 {
		yScale = 1
	}
	scaled := make([]float64, len(target))
	floats.ScaleTo(scaled, 1.0/yScale, target)

	feat, err := f.generateFeatures(trainingData.T, trainingData.X)
	if err != nil {
		return err
	}
	if removed := feat.RemoveZeroOnlyFeatures(); len(removed) > 0 {
		slog.Debug("removed features without signal", "count", len(removed))
	}
	f.fLabels = feat.Labels()

	intercept, coef, err := f.solve(feat, scaled)
	if err != nil {
		return err
	}
	f.intercept = intercept * yScale
	floats.Scale(yScale, coef)
	f.coef = coef
	f.trained = true

	// use input training to include NaNs
	predicted, comp, err := f.Predict(fullData.T, fullData.X)
	if err != nil {
		return err
	}
	f.trainComponents = comp

	scores, err := NewScores(predicted, fullData.Y)
	if err != nil {
		return err
	}
	f.scores = scores

	residual := make([]float64, len(fullData.T))
	floats.SubTo(residual, fullData.Y, predicted)
	f.residual = residual

	return nil
}

func (f *Forecast) solve(feat *feature.Set, y []float64) (float64, []float64, error) {
	m := len(y)
	yMx := mat.NewDense(m, 1, y)

	xMx := feat.Matrix(false)
	if xMx == nil {
		// intercept only model
		return floats.Sum(y) / float64(m), nil, nil
	}
	_, n := xMx.Dims()

	var model linearmodel.Model
	if f.opt.Regularization == 0 {
		if m < n+1 {
			return 0, nil, fmt.Errorf("%d observations for %d features, %w", m, n+1, ErrInsufficientTrainingData)
		}
		ols, err := linearmodel.NewOLSRegression(linearmodel.NewDefaultOLSOptions())
		if err != nil {
			return 0, nil, err
		}
		model = ols
	} else if f.opt.Penalty == PenaltyL1 {
		lasso, err := linearmodel.NewLassoRegression(&linearmodel.LassoOptions{
			FitIntercept: true,
			Lambda:       f.opt.Regularization,
			Iterations:   linearmodel.DefaultLassoIterations,
			Tolerance:    linearmodel.DefaultLassoTolerance,
		})
		if err != nil {
			return 0, nil, err
		}
		model = lasso
	} else {
		ridge, err := linearmodel.NewRidgeRegression(&linearmodel.RidgeOptions{
			FitIntercept: true,
			Lambda:       f.opt.Regularization,
		})
		if err != nil {
			return 0, nil, err
		}
		model = ridge
	}

	if err := model.Fit(xMx, yMx); err != nil {
		return 0, nil, fmt.Errorf("unable to fit linear model, %w", err)
	}
	return model.Intercept(), model.Coef(), nil
}

func (f *Forecast) transform(y []float64) ([]float64, error) {
	res := make([]float64, len(y))
	copy(res, y)
	if !f.opt.UseLog {
		return res, nil
	}
	for i, v := range res {
		if v <= -1 {
			return nil, fmt.Errorf("value %f at index %d, %w", v, i, ErrNegativeLogInput)
		}
		res[i] = math.Log1p(v)
	}
	return res, nil
}

func (f *Forecast) inverseTransform(y []float64) {
	if !f.opt.UseLog {
		return
	}
	for i, v := range y {
		y[i] = math.Expm1(v)
	}
}

// Predict takes a slice of times in any order, possibly repeated, along with the regressor
// values for each time and produces the predicted value for those times given a pre-trained
// model. Every regressor seen during training must be present.
func (f *Forecast) Predict(t []time.Time, x map[string][]float64) ([]float64, Components, error) {
	if f == nil {
		return nil, Components{}, ErrUninitializedForecast
	}

	if !f.trained {
		return nil, Components{}, ErrUntrainedForecast
	}

	trendFeat := f.generateTrendFeatures(t)
	seasFeat := f.generateSeasonalityFeatures(t)
	regFeat, err := f.generateRegressorFeatures(len(t), x)
	if err != nil {
		return nil, Components{}, err
	}

	comp := Components{
		Trend:       f.runInference(trendFeat, len(t), true),
		Seasonality: f.runInference(seasFeat, len(t), false),
		Regressors:  f.runInference(regFeat, len(t), false),
	}

	res := make([]float64, len(t))
	floats.Add(res, comp.Trend)
	floats.Add(res, comp.Seasonality)
	floats.Add(res, comp.Regressors)
	f.inverseTransform(res)
	return res, comp, nil
}

func (f *Forecast) runInference(x *feature.Set, n int, withIntercept bool) []float64 {
	res := make([]float64, n)
	if withIntercept {
		floats.AddConst(f.intercept, res)
	}

	for _, xFeat := range x.Labels().Labels() {
		wIdx, exists := f.fLabels.Index(xFeat)
		if !exists {
			continue
		}
		vals, _ := x.Get(xFeat)
		floats.AddScaled(res, f.coef[wIdx], vals)
	}
	return res
}

// FeatureLabels returns the slice of feature labels in the order of the coefficients
func (f *Forecast) FeatureLabels() []feature.Feature {
	if f == nil {
		return nil
	}

	return f.fLabels.Labels()
}

// Coefficients returns a forecast model map of coefficients keyed by the string
// representation of each feature label
func (f *Forecast) Coefficients() (map[string]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}

	labels := f.fLabels.Labels()
	if len(labels) == 0 || len(f.coef) == 0 {
		return nil, ErrNoModelCoefficients
	}
	coef := make(map[string]float64)
	for i := 0; i < len(f.coef); i++ {
		coef[labels[i].String()] = f.coef[i]
	}
	return coef, nil
}

// Intercept returns the intercept of the forecast model
func (f *Forecast) Intercept() float64 {
	if f == nil {
		return 0
	}
	return f.intercept
}

// Changepoints returns the changepoints used for the trend
func (f *Forecast) Changepoints() []Changepoint {
	if f == nil {
		return nil
	}
	return append([]Changepoint(nil), f.changepoints...)
}

// TrainEndTime returns the last non-NaN training time
func (f *Forecast) TrainEndTime() time.Time {
	if f == nil {
		return time.Time{}
	}
	return f.trainEndTime
}

// Trained reports whether Fit completed
func (f *Forecast) Trained() bool {
	return f != nil && f.trained
}

// ModelEq returns a string representation of the model linear equation in the format of
// y ~ b + m1x1 + m2x2 + ...
func (f *Forecast) ModelEq() (string, error) {
	if f == nil {
		return "", ErrUninitializedForecast
	}

	eq := "y ~ "
	if f.opt.UseLog {
		eq = "log1p(y) ~ "
	}

	coef, err := f.Coefficients()
	if err != nil {
		return "", err
	}

	eq += fmt.Sprintf("%.2f", f.Intercept())
	labels := f.fLabels.Labels()
	for i := 0; i < len(f.coef); i++ {
		w := coef[labels[i].String()]
		if w == 0 {
			continue
		}
		eq += fmt.Sprintf("%+.2f*%s", w, labels[i])
	}
	return eq, nil
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil {
		return Scores{}
	}
	if f.scores == nil {
		return Scores{}
	}
	return *f.scores
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.residual))
	copy(res, f.residual)
	return res
}

// TrendComponent represents the overall trend component of the model which is determined
// by the growth and changepoints.
func (f *Forecast) TrendComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Trend))
	copy(res, f.trainComponents.Trend)
	return res
}

// SeasonalityComponent represents the overall seasonal component of the model
func (f *Forecast) SeasonalityComponent() []float64 {
	if f == nil {
		return nil
	}
	res := make([]float64, len(f.trainComponents.Seasonality))
	copy(res, f.trainComponents.Seasonality)
	return res
}
