package linearmodel

import (
	"math"
	"testing"
	"time"

	mat_ "github.com/aouyang1/go-promoforecast/mat"
	"github.com/aouyang1/go-promoforecast/timedataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testModel(t *testing.T, model Model, x, y mat.Matrix, intercept float64, coef []float64, tol float64) {
	err := model.Fit(x, y)
	require.Nil(t, err)

	assert.InDelta(t, intercept, model.Intercept(), tol, "intercept")

	c := model.Coef()
	assert.InDeltaSlice(t, coef, c, tol, "coefficients")

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, tol, "score")
}

// generateWeeklyData builds a daily series with a linear trend and a weekly sine/cosine pair
func generateWeeklyData(days int) (mat.Matrix, mat.Matrix, error) {
	t := timedataset.GenerateDays(time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), days, 1)

	trend := make([]float64, days)
	sin := make([]float64, days)
	cos := make([]float64, days)
	y := make([]float64, days)
	for i, tPnt := range t {
		d := float64(tPnt.Unix()) / 86400.0
		rad := 2.0 * math.Pi * d / 7.0
		trend[i] = float64(i) / float64(days)
		sin[i] = math.Sin(rad)
		cos[i] = math.Cos(rad)
		y[i] = 40.0 + 12.0*trend[i] + 5.0*sin[i] - 3.0*cos[i]
	}

	x, err := mat_.NewDenseFromColumns([][]float64{trend, sin, cos})
	if err != nil {
		return nil, nil, err
	}
	return x, mat.NewDense(days, 1, y), nil
}

func TestOLSRegression(t *testing.T) {
	x, y, err := generateWeeklyData(120)
	require.NoError(t, err)

	model, err := NewOLSRegression(nil)
	require.NoError(t, err)
	testModel(t, model, x, y, 40.0, []float64{12.0, 5.0, -3.0}, 1e-6)
}

func TestOLSRegressionNoIntercept(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	model, err := NewOLSRegression(&OLSOptions{FitIntercept: false})
	require.NoError(t, err)
	testModel(t, model, x, y, 0.0, []float64{2.0}, 1e-9)
}

func TestRidgeRegression(t *testing.T) {
	x, y, err := generateWeeklyData(365)
	require.NoError(t, err)

	testData := map[string]struct {
		lambda float64
		tol    float64
	}{
		"no penalty matches ols": {lambda: 0, tol: 1e-6},
		"small penalty":          {lambda: 1e-4, tol: 1e-2},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewRidgeRegression(&RidgeOptions{FitIntercept: true, Lambda: td.lambda})
			require.NoError(t, err)
			testModel(t, model, x, y, 40.0, []float64{12.0, 5.0, -3.0}, td.tol)
		})
	}
}

func TestRidgeShrinksCoefficients(t *testing.T) {
	x, y, err := generateWeeklyData(120)
	require.NoError(t, err)

	weak, err := NewRidgeRegression(&RidgeOptions{FitIntercept: true, Lambda: 0.01})
	require.NoError(t, err)
	require.NoError(t, weak.Fit(x, y))

	strong, err := NewRidgeRegression(&RidgeOptions{FitIntercept: true, Lambda: 1000})
	require.NoError(t, err)
	require.NoError(t, strong.Fit(x, y))

	assert.Less(t, math.Abs(strong.Coef()[1]), math.Abs(weak.Coef()[1]))
}

func TestRidgeSingularDesign(t *testing.T) {
	// duplicated feature columns are rank deficient for ols but solvable with a penalty
	col := []float64{1, 2, 3, 4, 5}
	x, err := mat_.NewDenseFromColumns([][]float64{col, col})
	require.NoError(t, err)
	y := mat.NewDense(5, 1, []float64{3, 5, 7, 9, 11})

	model, err := NewRidgeRegression(&RidgeOptions{FitIntercept: true, Lambda: 1e-6})
	require.NoError(t, err)
	require.NoError(t, model.Fit(x, y))

	c := model.Coef()
	assert.InDelta(t, 2.0, c[0]+c[1], 1e-3)
	assert.InDelta(t, c[0], c[1], 1e-3)
}

func TestLinearModelErrors(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})

	testData := map[string]struct {
		x, y mat.Matrix
		err  error
	}{
		"no training matrix": {y: mat.NewDense(3, 1, nil), err: ErrNoTrainingMatrix},
		"no target matrix":   {x: x, err: ErrNoTargetMatrix},
		"target mismatch":    {x: x, y: mat.NewDense(2, 1, nil), err: ErrTargetLenMismatch},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ols, err := NewOLSRegression(nil)
			require.NoError(t, err)
			assert.ErrorIs(t, ols.Fit(td.x, td.y), td.err)

			ridge, err := NewRidgeRegression(nil)
			require.NoError(t, err)
			assert.ErrorIs(t, ridge.Fit(td.x, td.y), td.err)
		})
	}

	_, err := NewRidgeRegression(&RidgeOptions{Lambda: -1})
	assert.ErrorIs(t, err, ErrNegativeLambda)

	ols, err := NewOLSRegression(nil)
	require.NoError(t, err)
	require.NoError(t, ols.Fit(x, mat.NewDense(3, 1, []float64{1, 2, 3})))
	_, err = ols.Predict(mat.NewDense(3, 2, nil))
	assert.ErrorIs(t, err, ErrFeatureLenMismatch)
}

func TestLassoRegression(t *testing.T) {
	x, y, err := generateWeeklyData(365)
	require.NoError(t, err)

	model, err := NewLassoRegression(&LassoOptions{
		FitIntercept: true,
		Lambda:       0,
		Iterations:   100000,
		Tolerance:    1e-10,
	})
	require.NoError(t, err)
	testModel(t, model, x, y, 40.0, []float64{12.0, 5.0, -3.0}, 1e-3)
}

func TestLassoZeroesIrrelevantFeatures(t *testing.T) {
	days := 120
	x, y, err := generateWeeklyData(days)
	require.NoError(t, err)

	noise := timedataset.GenerateNoise(days, 1, 3)
	cols := make([][]float64, 0, 4)
	for j := 0; j < 3; j++ {
		cols = append(cols, mat.Col(nil, j, x))
	}
	cols = append(cols, noise)
	withNoise, err := mat_.NewDenseFromColumns(cols)
	require.NoError(t, err)

	model, err := NewLassoRegression(&LassoOptions{
		FitIntercept: true,
		Lambda:       50,
		Iterations:   DefaultLassoIterations,
		Tolerance:    DefaultLassoTolerance,
	})
	require.NoError(t, err)
	require.NoError(t, model.Fit(withNoise, y))

	c := model.Coef()
	require.Len(t, c, 4)
	assert.Equal(t, 0.0, c[3])
	assert.Greater(t, c[1], 0.0)
}

func TestLassoOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *LassoOptions
		err      error
		expected *LassoOptions
	}{
		"nil": {nil, nil, NewDefaultLassoOptions()},
		"valid": {
			&LassoOptions{Lambda: 1.0, Iterations: 100, Tolerance: 1e-5},
			nil,
			&LassoOptions{Lambda: 1.0, Iterations: 100, Tolerance: 1e-5},
		},
		"invalid lambda":     {&LassoOptions{Lambda: -1.0}, ErrNegativeLambda, nil},
		"invalid iterations": {&LassoOptions{Iterations: -1}, ErrNegativeIterations, nil},
		"invalid tolerance":  {&LassoOptions{Tolerance: -1.0}, ErrNegativeTolerance, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestSoftThreshold(t *testing.T) {
	testData := map[string]struct {
		x, gamma, expected float64
	}{
		"above":  {3, 1, 2},
		"below":  {-3, 1, -2},
		"inside": {0.5, 1, 0},
		"zero":   {2, 0, 2},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, SoftThreshold(td.x, td.gamma))
		})
	}
}
