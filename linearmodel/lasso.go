package linearmodel

import (
	"errors"
	"math"

	"github.com/aouyang1/go-promoforecast/floatsunrolled"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultLassoIterations = 1000
	DefaultLassoTolerance  = 1e-4
)

var (
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
)

// LassoOptions represents input options to run an L1 regularized regression
type LassoOptions struct {
	// FitIntercept adds an unpenalized constant 1.0 feature as the first column if set to true
	FitIntercept bool

	// Lambda is the L1 multiplier. 0.0 converges to ordinary least squares.
	Lambda float64

	// Iterations is the maximum number of passes over every coefficient
	Iterations int

	// Tolerance is the largest coefficient update relative to the largest coefficient at
	// which iterating stops
	Tolerance float64
}

// Validate runs basic validation on lasso options
func (l *LassoOptions) Validate() (*LassoOptions, error) {
	if l == nil {
		l = NewDefaultLassoOptions()
	}
	if l.Lambda < 0 || math.IsNaN(l.Lambda) {
		return nil, ErrNegativeLambda
	}
	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return l, nil
}

// NewDefaultLassoOptions returns a default set of lasso regression options
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		FitIntercept: true,
		Lambda:       1.0,
		Iterations:   DefaultLassoIterations,
		Tolerance:    DefaultLassoTolerance,
	}
}

// LassoRegression computes the lasso regression using coordinate descent
type LassoRegression struct {
	opt       *LassoOptions
	coef      []float64
	intercept float64
}

// NewLassoRegression initializes a lasso model ready for fitting
func NewLassoRegression(opt *LassoOptions) (*LassoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LassoRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (l *LassoRegression) Fit(x, y mat.Matrix) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	if err := validateTraining(x, y); err != nil {
		return err
	}
	if l.opt.FitIntercept {
		x = withOnes(x)
	}
	m, n := x.Dims()

	xcols := make([][]float64, n)
	xdot := make([]float64, n)
	gamma := make([]float64, n)
	for j := 0; j < n; j++ {
		xcols[j] = mat.Col(nil, j, x)
		xdot[j] = floatsunrolled.Dot(xcols[j], xcols[j])
		if xdot[j] == 0 {
			continue
		}
		gamma[j] = l.opt.Lambda / xdot[j]
	}
	if l.opt.FitIntercept {
		gamma[0] = 0
	}

	// residual tracks y - x*beta as coefficients move
	residual := mat.Col(nil, 0, y)
	if len(residual) != m {
		return ErrTargetLenMismatch
	}

	beta := make([]float64, n)
	for i := 0; i < l.opt.Iterations; i++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		for j := 0; j < n; j++ {
			betaCurr := beta[j]
			// coefficients shrunk to zero stay in the inactive set after the first pass
			if (i != 0 && betaCurr == 0) || xdot[j] == 0 {
				continue
			}

			num := floatsunrolled.Dot(xcols[j], residual)
			betaNext := SoftThreshold(num/xdot[j]+betaCurr, gamma[j])
			if diff := betaNext - betaCurr; diff != 0 {
				floatsunrolled.AddScaled(residual, -diff, xcols[j])
			}

			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
			beta[j] = betaNext
		}

		if maxUpdate <= l.opt.Tolerance*maxCoef {
			break
		}
	}

	if err := checkFinite(beta); err != nil {
		return err
	}
	if l.opt.FitIntercept {
		l.intercept = beta[0]
		l.coef = beta[1:]
		return nil
	}
	l.coef = beta
	return nil
}

// Predict using the lasso model
func (l *LassoRegression) Predict(x mat.Matrix) ([]float64, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	return predict(x, l.opt.FitIntercept, l.intercept, l.coef)
}

// Score computes the coefficient of determination of the prediction
func (l *LassoRegression) Score(x, y mat.Matrix) (float64, error) {
	if l.opt == nil {
		return 0.0, ErrNoOptions
	}
	return score(l, x, y)
}

func (l *LassoRegression) Intercept() float64 {
	return l.intercept
}

func (l *LassoRegression) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}

// SoftThreshold shrinks x towards zero by gamma, returning zero inside the band
func SoftThreshold(x, gamma float64) float64 {
	switch {
	case x > gamma:
		return x - gamma
	case x < -gamma:
		return x + gamma
	}
	return 0
}
