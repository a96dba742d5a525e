package linearmodel

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RidgeOptions represents input options to run an L2 regularized regression
type RidgeOptions struct {
	// FitIntercept adds an unpenalized constant 1.0 feature as the first column if set to true
	FitIntercept bool

	// Lambda is the L2 penalty applied to every non-intercept coefficient
	Lambda float64
}

// Validate runs basic validation on ridge options
func (r *RidgeOptions) Validate() (*RidgeOptions, error) {
	if r == nil {
		r = NewDefaultRidgeOptions()
	}
	if r.Lambda < 0 || math.IsNaN(r.Lambda) {
		return nil, ErrNegativeLambda
	}
	return r, nil
}

// NewDefaultRidgeOptions returns a default set of ridge regression options
func NewDefaultRidgeOptions() *RidgeOptions {
	return &RidgeOptions{
		FitIntercept: true,
		Lambda:       1.0,
	}
}

// RidgeRegression solves the L2 penalized least squares problem by appending sqrt(lambda)
// scaled identity rows to the design matrix and solving the augmented system with QR.
type RidgeRegression struct {
	opt       *RidgeOptions
	coef      []float64
	intercept float64
}

// NewRidgeRegression initializes a ridge regression model ready for fitting
func NewRidgeRegression(opt *RidgeOptions) (*RidgeRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RidgeRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data
func (r *RidgeRegression) Fit(x, y mat.Matrix) error {
	if r.opt == nil {
		return ErrNoOptions
	}
	if err := validateTraining(x, y); err != nil {
		return err
	}

	if r.opt.FitIntercept {
		x = withOnes(x)
	}
	m, n := x.Dims()

	start := 0
	if r.opt.FitIntercept {
		start = 1
	}
	penalty := mat.NewDense(n, n, nil)
	sqrtLambda := math.Sqrt(r.opt.Lambda)
	for j := start; j < n; j++ {
		penalty.Set(j, j, sqrtLambda)
	}

	var xAug mat.Dense
	xAug.Stack(x, penalty)

	yAug := mat.NewDense(m+n, 1, nil)
	for i := 0; i < m; i++ {
		yAug.Set(i, 0, y.At(i, 0))
	}

	c, err := solveQR(&xAug, yAug)
	if err != nil {
		return err
	}

	if r.opt.FitIntercept {
		r.intercept = c[0]
		r.coef = c[1:]
	} else {
		r.intercept = 0
		r.coef = c
	}
	return nil
}

// Predict using the ridge model
func (r *RidgeRegression) Predict(x mat.Matrix) ([]float64, error) {
	if r.opt == nil {
		return nil, ErrNoOptions
	}
	return predict(x, r.opt.FitIntercept, r.intercept, r.coef)
}

// Score computes the coefficient of determination of the prediction
func (r *RidgeRegression) Score(x, y mat.Matrix) (float64, error) {
	if r.opt == nil {
		return 0.0, ErrNoOptions
	}
	return score(r, x, y)
}

func (r *RidgeRegression) Intercept() float64 {
	return r.intercept
}

func (r *RidgeRegression) Coef() []float64 {
	c := make([]float64, len(r.coef))
	copy(c, r.coef)
	return c
}
