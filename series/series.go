package series

import (
	"slices"
	"time"
)

// ObservedSeries is the chronological daily history of one item
type ObservedSeries struct {
	ItemID  string
	Records []Record

	regressors []string
}

// New builds a series from records, sorting them by date. Regressor names are taken from
// the records.
func New(itemID string, records []Record) *ObservedSeries {
	recs := slices.Clone(records)
	slices.SortStableFunc(recs, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})

	names := make(map[string]struct{})
	for _, r := range recs {
		for name := range r.Regressors {
			names[name] = struct{}{}
		}
	}
	regressors := make([]string, 0, len(names))
	for name := range names {
		regressors = append(regressors, name)
	}
	slices.Sort(regressors)

	return &ObservedSeries{
		ItemID:     itemID,
		Records:    recs,
		regressors: regressors,
	}
}

func (s *ObservedSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Regressors returns the sorted regressor names carried by the series
func (s *ObservedSeries) Regressors() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.regressors)
}

// HasRegressor reports whether every record carries the regressor
func (s *ObservedSeries) HasRegressor(name string) bool {
	if s == nil || !slices.Contains(s.regressors, name) {
		return false
	}
	for _, r := range s.Records {
		if _, exists := r.Regressors[name]; !exists {
			return false
		}
	}
	return true
}

func (s *ObservedSeries) Start() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.Records[0].Date
}

func (s *ObservedSeries) End() time.Time {
	if s.Len() == 0 {
		return time.Time{}
	}
	return s.Records[len(s.Records)-1].Date
}

func (s *ObservedSeries) Dates() []time.Time {
	if s == nil {
		return nil
	}
	dates := make([]time.Time, len(s.Records))
	for i, r := range s.Records {
		dates[i] = r.Date
	}
	return dates
}

func (s *ObservedSeries) Targets() []float64 {
	if s == nil {
		return nil
	}
	y := make([]float64, len(s.Records))
	for i, r := range s.Records {
		y[i] = r.Target
	}
	return y
}

func (s *ObservedSeries) filter(keep func(Record) bool) *ObservedSeries {
	next := &ObservedSeries{
		ItemID:     s.ItemID,
		regressors: slices.Clone(s.regressors),
	}
	for _, r := range s.Records {
		if keep(r) {
			next.Records = append(next.Records, r)
		}
	}
	return next
}

// Partition returns the records matching the promotion state
func (s *ObservedSeries) Partition(state PromoState) *ObservedSeries {
	return s.filter(func(r Record) bool {
		return PromoStateOf(r.IsPromo) == state
	})
}

// Between returns the records dated within [start, end]. A zero bound is open.
func (s *ObservedSeries) Between(start, end time.Time) *ObservedSeries {
	return s.filter(func(r Record) bool {
		if !start.IsZero() && r.Date.Before(start) {
			return false
		}
		if !end.IsZero() && r.Date.After(end) {
			return false
		}
		return true
	})
}

// Until returns the records dated on or before the cutoff
func (s *ObservedSeries) Until(cutoff time.Time) *ObservedSeries {
	return s.Between(time.Time{}, cutoff)
}

// Covariates returns the covariate rows of every record
func (s *ObservedSeries) Covariates() []CovariateRow {
	if s == nil {
		return nil
	}
	rows := make([]CovariateRow, len(s.Records))
	for i, r := range s.Records {
		row := CovariateRow{Date: r.Date, IsPromo: r.IsPromo}
		if len(r.Regressors) > 0 {
			row.Regressors = make(map[string]float64, len(r.Regressors))
			for k, v := range r.Regressors {
				row.Regressors[k] = v
			}
		}
		rows[i] = row
	}
	return rows
}
