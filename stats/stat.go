// Package stats provides data diagnostics used to flag suspicious sales history and
// collinear regressors before fitting
package stats

import (
	"errors"
	"fmt"
	"math"
	"slices"

	mat_ "github.com/aouyang1/go-promoforecast/mat"
	"github.com/aouyang1/go-promoforecast/linearmodel"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLowerPercentile = 0.25
	DefaultUpperPercentile = 0.75
	DefaultTukeyFactor     = 1.5

	// CollinearVIF is the variance inflation factor above which a regressor is considered
	// explained by the others
	CollinearVIF = 10.0
)

var (
	ErrMinimumFeatures    = errors.New("need at least 2 features to compute VIF")
	ErrFeatureLenMismatch = errors.New("some feature length is not consistent")
	ErrFeatureLen         = errors.New("must have at least 2 points per feature")
)

// DetectOutliers returns the indexes of the values outside the Tukey fences built from the
// lower and upper percentiles. NaN values are ignored.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	slices.Sort(sorted)

	lower := stat.Quantile(lowerPerc, stat.Empirical, sorted, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, sorted, nil)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i, v := range y {
		if v > upper || v < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// VarianceInflationFactor regresses each feature on all the others and returns 1/(1-R^2)
// per feature. A feature perfectly explained by the others has an infinite factor.
func VarianceInflationFactor(features map[string][]float64) (map[string]float64, error) {
	if len(features) < 2 {
		return nil, ErrMinimumFeatures
	}
	labels := make([]string, 0, len(features))
	var m int
	for label, feature := range features {
		if len(feature) < 2 {
			return nil, fmt.Errorf("feature %q, %w", label, ErrFeatureLen)
		}
		if m != 0 && m != len(feature) {
			return nil, fmt.Errorf("feature %q, %w", label, ErrFeatureLenMismatch)
		}
		m = len(feature)
		labels = append(labels, label)
	}
	slices.Sort(labels)

	vif := make(map[string]float64, len(labels))
	for _, label := range labels {
		others := make([][]float64, 0, len(labels)-1)
		for _, other := range labels {
			if other != label {
				others = append(others, features[other])
			}
		}
		x, err := mat_.NewDenseFromColumns(others)
		if err != nil {
			return nil, err
		}
		y := mat.NewDense(m, 1, features[label])

		// a tiny penalty keeps exactly collinear features solvable
		model, err := linearmodel.NewRidgeRegression(&linearmodel.RidgeOptions{
			FitIntercept: true,
			Lambda:       1e-9,
		})
		if err != nil {
			return nil, err
		}
		if err := model.Fit(x, y); err != nil {
			return nil, fmt.Errorf("unable to regress feature %q, %w", label, err)
		}
		r2, err := model.Score(x, y)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(r2) {
			// constant feature
			vif[label] = math.Inf(1)
			continue
		}
		if r2 >= 1 {
			vif[label] = math.Inf(1)
			continue
		}
		vif[label] = 1 / (1 - r2)
	}
	return vif, nil
}

// Collinear returns the sorted labels whose factor exceeds the threshold
func Collinear(vif map[string]float64, threshold float64) []string {
	var res []string
	for label, v := range vif {
		if v > threshold {
			res = append(res, label)
		}
	}
	slices.Sort(res)
	return res
}
