package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-promoforecast/feature"
	"gonum.org/v1/gonum/stat"
)

const (
	secondsPerDay = 86400.0
	weeklyPeriod  = 7.0
)

// regressorScale standardizes a continuous regressor with its training statistics
type regressorScale struct {
	Binary bool    `json:"binary"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

func (r regressorScale) apply(vals []float64) []float64 {
	res := make([]float64, len(vals))
	for i, v := range vals {
		if r.Binary {
			res[i] = v
			continue
		}
		res[i] = (v - r.Mean) / r.Std
	}
	return res
}

func newRegressorScale(vals []float64) regressorScale {
	if feature.IsBinary(vals) {
		return regressorScale{Binary: true, Std: 1}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	return regressorScale{Mean: mean, Std: std}
}

// scaleTime maps t onto [0, 1] across the training window
func (f *Forecast) scaleTime(t []time.Time) []float64 {
	span := f.trainEndTime.Sub(f.trainStartTime).Seconds()
	res := make([]float64, len(t))
	for i, tPnt := range t {
		if span == 0 {
			continue
		}
		res[i] = tPnt.Sub(f.trainStartTime).Seconds() / span
	}
	return res
}

// generateAutoChangepoints places n changepoints uniformly over the first portion of the
// training history leaving at least one observation before the first changepoint.
func generateAutoChangepoints(t []time.Time, n int, cpRange float64) []Changepoint {
	histSize := int(math.Floor(float64(len(t)) * cpRange))
	if n+1 > histSize {
		n = histSize - 1
	}
	if n <= 0 {
		return nil
	}

	chpts := make([]Changepoint, 0, n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		chpt := NewChangepoint(fmt.Sprintf("auto_%02d", i-1), t[idx])
		if len(chpts) > 0 && !chpts[len(chpts)-1].T.Before(chpt.T) {
			continue
		}
		chpts = append(chpts, chpt)
	}
	return chpts
}

func (f *Forecast) generateTrendFeatures(t []time.Time) *feature.Set {
	x := feature.NewSet()
	if f.opt.GrowthType == "" || f.trainEndTime.Equal(f.trainStartTime) {
		return x
	}
	scaled := f.scaleTime(t)
	x.Set(feature.Linear(), scaled)

	for _, chpt := range f.changepoints {
		cpScaled := f.scaleTime([]time.Time{chpt.T})[0]
		ramp := make([]float64, len(scaled))
		for i, s := range scaled {
			if s > cpScaled {
				ramp[i] = s - cpScaled
			}
		}
		x.Set(feature.Slope(chpt.Name), ramp)
	}
	return x
}

func (f *Forecast) generateSeasonalityFeatures(t []time.Time) *feature.Set {
	x := feature.NewSet()
	if !f.weekly {
		return x
	}
	days := make([]float64, len(t))
	for i, tPnt := range t {
		days[i] = float64(tPnt.Unix()) / secondsPerDay
	}
	for order := 1; order <= f.opt.SeasonalityOptions.WeeklyOrders; order++ {
		omega := 2.0 * math.Pi * float64(order) / weeklyPeriod
		sin := make([]float64, len(days))
		cos := make([]float64, len(days))
		for i, d := range days {
			sin[i] = math.Sin(omega * d)
			cos[i] = math.Cos(omega * d)
		}
		sinLabel, cosLabel := feature.Weekly(order)
		x.Set(sinLabel, sin)
		x.Set(cosLabel, cos)
	}
	return x
}

func (f *Forecast) generateRegressorFeatures(n int, x map[string][]float64) (*feature.Set, error) {
	set := feature.NewSet()
	for _, name := range f.regressorNames {
		vals, exists := x[name]
		if !exists {
			return nil, fmt.Errorf("regressor %q, %w", name, ErrMissingRegressor)
		}
		if len(vals) != n {
			return nil, fmt.Errorf("regressor %q has %d values for %d times, %w", name, len(vals), n, ErrMismatchedDataLen)
		}
		scale := f.regressorScales[name]
		set.Set(feature.NewRegressor(name, scale.Binary), scale.apply(vals))
	}
	return set, nil
}

func (f *Forecast) generateFeatures(t []time.Time, x map[string][]float64) (*feature.Set, error) {
	feat := f.generateTrendFeatures(t)
	feat.Update(f.generateSeasonalityFeatures(t))

	regFeat, err := f.generateRegressorFeatures(len(t), x)
	if err != nil {
		return nil, err
	}
	feat.Update(regFeat)
	return feat, nil
}
