package timedataset

import (
	"math"
	"time"
)

// Day is the sampling interval of a retail sales series
const Day = 24 * time.Hour

// TimeSlice is a sorted run of observation dates
type TimeSlice []time.Time

// StartTime is the first date or the zero time when empty
func (t TimeSlice) StartTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[0]
}

// EndTime is the last date or the zero time when empty
func (t TimeSlice) EndTime() time.Time {
	if len(t) == 0 {
		return time.Time{}
	}
	return t[len(t)-1]
}

// Span returns the duration between the first and last dates
func (t TimeSlice) Span() time.Duration {
	if len(t) < 2 {
		return 0
	}
	return t.EndTime().Sub(t.StartTime())
}

// EstimateFreq returns the most common gap between consecutive dates. Ties go to the
// shorter gap so a series with a few missing days still reads as daily.
func (t TimeSlice) EstimateFreq() (time.Duration, error) {
	if len(t) < 2 {
		return 0, ErrCannotInferFreq
	}

	counts := make(map[time.Duration]int)
	for i := 1; i < len(t); i++ {
		counts[t[i].Sub(t[i-1])]++
	}

	var maxCnt int
	freq := time.Duration(math.MaxInt64)
	for gap, cnt := range counts {
		if cnt > maxCnt || (cnt == maxCnt && gap < freq) {
			maxCnt = cnt
			freq = gap
		}
	}
	return freq, nil
}

// Daily reports whether the dominant sampling interval is one day. Too short a slice
// to tell counts as daily.
func (t TimeSlice) Daily() bool {
	freq, err := t.EstimateFreq()
	if err != nil {
		return true
	}
	return freq == Day
}
