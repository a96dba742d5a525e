package timedataset

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
)

// GenerateDays returns n calendar days at UTC midnight starting from start, spaced by step days.
func GenerateDays(start time.Time, n, step int) []time.Time {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		t = append(t, day.AddDate(0, 0, i*step))
	}
	return t
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

func (s Series) SetConst(t []time.Time, val float64, start, end time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		if (t[i].After(start) || t[i].Equal(start)) && t[i].Before(end) {
			s[i] = val
		}
	}
	return s
}

// MaskWith zeroes every point where the mask is false
func (s Series) MaskWith(mask []bool) Series {
	for i := range s {
		if !mask[i] {
			s[i] = 0.0
		}
	}
	return s
}

func (s Series) MaskWithWeekend(t []time.Time) Series {
	n := len(s)
	for i := 0; i < n; i++ {
		switch t[i].Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			s[i] = 0.0
		}
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateWeeklyY generates a weekly sine wave of the given amplitude and Fourier order,
// phase shifted by offset days.
func GenerateWeeklyY(t []time.Time, amp, order, offsetDays float64) Series {
	n := len(t)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		days := float64(t[i].Unix())/86400.0 + offsetDays
		y = append(y, amp*math.Sin(2.0*math.Pi*order/7.0*days))
	}
	return Series(y)
}

// GeneratePromoMask flags every nth point starting at offset as a promotion day
func GeneratePromoMask(n, every, offset int) []bool {
	mask := make([]bool, n)
	if every <= 0 {
		return mask
	}
	for i := 0; i < n; i++ {
		mask[i] = (i-offset)%every == 0 && i >= offset
	}
	return mask
}

// GenerateNoise generates gaussian noise with a fixed seed so simulations are repeatable
func GenerateNoise(n int, scale float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.NormFloat64()*scale)
	}
	return Series(y)
}

// ClipNonNegative floors every value at zero, matching unit sales semantics
func (s Series) ClipNonNegative() Series {
	for i, v := range s {
		if v < 0 {
			s[i] = 0
		}
	}
	return s
}
