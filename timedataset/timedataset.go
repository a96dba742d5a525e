package timedataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from time data")
)

// TimeDataset represents a time series storing a slice of time points, values and optional
// covariate columns keyed by name. All slices must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
	X map[string][]float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	return NewDataset(t, y, nil)
}

// NewDataset returns an instance of a TimeDataset with covariate columns. Time must be
// strictly increasing.
func NewDataset(t []time.Time, y []float64, x map[string][]float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}
	for name, col := range x {
		if len(col) != len(t) {
			return nil, fmt.Errorf(
				"covariate %q has length of %d, but time has a length of %d, %w",
				name, len(col), len(t), ErrDatasetLenMismatch,
			)
		}
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if i > 0 && (currT.Before(lastT) || currT.Equal(lastT)) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		lastT = currT
	}

	td := &TimeDataset{
		T: make([]time.Time, len(t)),
		Y: make([]float64, len(y)),
	}
	copy(td.T, t)
	copy(td.Y, y)
	if len(x) > 0 {
		td.X = make(map[string][]float64, len(x))
		for name, col := range x {
			c := make([]float64, len(col))
			copy(c, col)
			td.X[name] = c
		}
	}
	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	if td == nil {
		return nil
	}
	next := &TimeDataset{
		T: make([]time.Time, len(td.T)),
		Y: make([]float64, len(td.Y)),
	}
	copy(next.T, td.T)
	copy(next.Y, td.Y)
	if td.X != nil {
		next.X = make(map[string][]float64, len(td.X))
		for name, col := range td.X {
			c := make([]float64, len(col))
			copy(c, col)
			next.X[name] = c
		}
	}
	return next
}

// DropNan returns a new dataset without the points whose value is NaN
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}

	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	if td.X != nil {
		res.X = make(map[string][]float64, len(td.X))
		for name := range td.X {
			res.X[name] = make([]float64, 0, len(td.Y))
		}
	}
	for i := 0; i < len(td.T); i++ {
		if math.IsNaN(td.Y[i]) {
			continue
		}
		res.T = append(res.T, td.T[i])
		res.Y = append(res.Y, td.Y[i])
		for name, col := range td.X {
			res.X[name] = append(res.X[name], col[i])
		}
	}
	return res
}

// Labels returns the sorted covariate names of the dataset
func (td *TimeDataset) Labels() []string {
	if td == nil {
		return nil
	}
	labels := make([]string, 0, len(td.X))
	for name := range td.X {
		labels = append(labels, name)
	}
	sort.Strings(labels)
	return labels
}
