package floatsunrolled

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestDot(t *testing.T) {
	testData := map[string]struct {
		a        []float64
		b        []float64
		err      error
		expected float64
	}{
		"dot length mismatch": {
			a:   []float64{1, 2, 3},
			b:   []float64{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"dot with remainder": {
			a:        []float64{1, 2, 3, 4, 5, 6},
			b:        []float64{1, 1, 1, 1, 2, 2},
			expected: 32,
		},
		"dot valid": {
			a:        []float64{1, 2, 3, 4},
			b:        []float64{4, 3, 2, 1},
			expected: 20,
		},
		"dot empty": {
			expected: 0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			if td.err != nil {
				assert.PanicsWithError(t, td.err.Error(), func() { Dot(td.a, td.b) })
				return
			}
			assert.Equal(t, td.expected, Dot(td.a, td.b))
		})
	}
}

func TestAddScaled(t *testing.T) {
	testData := map[string]struct {
		dst      []float64
		alpha    float64
		s        []float64
		err      error
		expected []float64
	}{
		"length mismatch": {
			dst: []float64{1, 2, 3},
			s:   []float64{1, 2},
			err: ErrSliceLengthMismatch,
		},
		"with remainder": {
			dst:      []float64{1, 1, 1, 1, 1},
			alpha:    -2,
			s:        []float64{1, 2, 3, 4, 5},
			expected: []float64{-1, -3, -5, -7, -9},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			if td.err != nil {
				assert.PanicsWithError(t, td.err.Error(), func() { AddScaled(td.dst, td.alpha, td.s) })
				return
			}
			assert.Equal(t, td.expected, AddScaled(td.dst, td.alpha, td.s))
		})
	}
}

func TestMatchesGonum(t *testing.T) {
	for _, size := range []int{1, 7, 64, 1001} {
		a := generateRandomSlice(size)
		b := generateRandomSlice(size)
		assert.InDelta(t, floats.Dot(a, b), Dot(a, b), 1e-9)

		expected := make([]float64, size)
		copy(expected, a)
		floats.AddScaled(expected, 0.5, b)
		assert.InDeltaSlice(t, expected, AddScaled(a, 0.5, b), 1e-12)
	}
}

func generateRandomSlice(size int) []float64 {
	a := make([]float64, size)
	for i := 0; i < len(a); i++ {
		a[i] = rand.NormFloat64()
	}
	return a
}

func BenchmarkDot(b *testing.B) {
	a := generateRandomSlice(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Dot(a, a)
	}
}

func BenchmarkNaiveDot(b *testing.B) {
	a := generateRandomSlice(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		floats.Dot(a, a)
	}
}

func BenchmarkAddScaled(b *testing.B) {
	a := generateRandomSlice(1000)
	s := generateRandomSlice(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AddScaled(a, 1e-9, s)
	}
}

func BenchmarkNaiveAddScaled(b *testing.B) {
	a := generateRandomSlice(1000)
	s := generateRandomSlice(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		floats.AddScaled(a, 1e-9, s)
	}
}
