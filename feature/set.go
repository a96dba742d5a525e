package feature

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Set is an ordered collection of feature columns of equal length keyed by the string
// representation of the feature.
type Set struct {
	m      int
	set    map[string][]float64
	labels []Feature
}

func NewSet() *Set {
	return &Set{
		set: make(map[string][]float64),
	}
}

// Len returns the number of observations in each feature column
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.m
}

// Set adds or replaces a feature column. Columns shorter than the longest column are
// padded with zeros.
func (s *Set) Set(f Feature, data []float64) *Set {
	if s.set == nil {
		s.set = make(map[string][]float64)
	}
	label := f.String()
	if _, exists := s.set[label]; !exists {
		s.labels = append(s.labels, f)
	}
	s.set[label] = data

	if len(data) > s.m {
		s.m = len(data)
	}
	for l, vals := range s.set {
		if len(vals) < s.m {
			padded := make([]float64, s.m)
			copy(padded, vals)
			s.set[l] = padded
		}
	}
	return s
}

// Get returns the feature column if it exists
func (s *Set) Get(f Feature) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	vals, exists := s.set[f.String()]
	return vals, exists
}

// Del removes a feature column
func (s *Set) Del(f Feature) *Set {
	label := f.String()
	if _, exists := s.set[label]; !exists {
		return s
	}
	delete(s.set, label)
	s.labels = slices.DeleteFunc(s.labels, func(l Feature) bool {
		return l.String() == label
	})
	if len(s.set) == 0 {
		s.m = 0
	}
	return s
}

// Update sets every feature from the input set
func (s *Set) Update(next *Set) *Set {
	if next == nil {
		return s
	}
	for _, f := range next.labels {
		s.Set(f, next.set[f.String()])
	}
	return s
}

// Labels returns the features in insertion order
func (s *Set) Labels() *Labels {
	if s == nil {
		return nil
	}
	return NewLabels(slices.Clone(s.labels))
}

// RemoveZeroOnlyFeatures drops every feature column that has no non-zero value
func (s *Set) RemoveZeroOnlyFeatures() []Feature {
	var removed []Feature
	for _, f := range s.Labels().Labels() {
		vals := s.set[f.String()]
		if floats.Norm(vals, 1) == 0 {
			s.Del(f)
			removed = append(removed, f)
		}
	}
	return removed
}

// Matrix returns a metric representation of the feature set to be used with matrix methods
// The matrix has m rows representing the number of observations and n columns representing
// the number of features.
func (s *Set) Matrix(intercept bool) *mat.Dense {
	if s == nil || len(s.labels) == 0 || s.m == 0 {
		return nil
	}

	m := s.m
	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([]float64, m*n)

	featNum := 0
	if intercept {
		for i := 0; i < m; i++ {
			idx := n * i
			obs[idx] = 1.0
		}
		featNum += 1
	}

	for _, label := range s.labels {
		feature := s.set[label.String()]
		for i := 0; i < len(feature); i++ {
			idx := n*i + featNum
			obs[idx] = feature[i]
		}
		featNum += 1
	}
	return mat.NewDense(m, n, obs)
}

// MatrixSlice returns the feature set as a slice of slices where each element is one
// feature column. Takes an intercept input if we want to include the intercept term.
func (s *Set) MatrixSlice(intercept bool) [][]float64 {
	if s == nil || len(s.labels) == 0 {
		return nil
	}

	n := len(s.labels)
	if intercept {
		n += 1
	}

	obs := make([][]float64, 0, n)
	if intercept {
		ones := make([]float64, s.m)
		floats.AddConst(1.0, ones)
		obs = append(obs, ones)
	}

	for _, label := range s.labels {
		obs = append(obs, s.set[label.String()])
	}
	return obs
}
