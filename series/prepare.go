package series

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/aouyang1/go-promoforecast/stats"
	"github.com/aouyang1/go-promoforecast/timedataset"
)

var (
	ErrSchema           = errors.New("series does not match schema")
	ErrMissingRegressor = errors.New("regressor missing from series")
)

const (
	DefaultDateColumn     = "DateKey"
	DefaultTargetColumn   = "UnitSales"
	DefaultPromoColumn    = "IsPromo"
	DefaultCapacityColumn = "ShelfCapacity"
	DefaultItemColumn     = "ItemNumber"

	// DefaultDateLayout is the yyyymmdd layout of DateKey values
	DefaultDateLayout = "20060102"
)

// Schema maps frame columns onto the canonical series fields
type Schema struct {
	ItemID         string
	DateColumn     string
	TargetColumn   string
	PromoColumn    string
	CapacityColumn string // optional

	// Regressors to carry. When empty every remaining float or bool column is carried.
	Regressors []string
}

// DefaultSchema returns the retail column names for the item
func DefaultSchema(itemID string) Schema {
	return Schema{
		ItemID:         itemID,
		DateColumn:     DefaultDateColumn,
		TargetColumn:   DefaultTargetColumn,
		PromoColumn:    DefaultPromoColumn,
		CapacityColumn: DefaultCapacityColumn,
	}
}

func (s Schema) reserved(name string) bool {
	switch name {
	case s.DateColumn, s.TargetColumn, s.PromoColumn, s.CapacityColumn:
		return true
	}
	return false
}

// Prepare normalizes a frame into a chronological ObservedSeries. Rows with a NaN target
// or NaN capacity are dropped. A missing required column, a negative target or a repeated
// date fails with ErrSchema.
func Prepare(frame *Frame, schema Schema) (*ObservedSeries, error) {
	if frame == nil {
		return nil, fmt.Errorf("no frame for item %q, %w", schema.ItemID, ErrSchema)
	}

	dates, exists := frame.Times(schema.DateColumn)
	if !exists {
		return nil, fmt.Errorf("date column %q not found, %w", schema.DateColumn, ErrSchema)
	}
	target, exists := frame.Floats(schema.TargetColumn)
	if !exists {
		return nil, fmt.Errorf("target column %q not found, %w", schema.TargetColumn, ErrSchema)
	}
	promo, exists := frame.Numeric(schema.PromoColumn)
	if !exists {
		return nil, fmt.Errorf("promo column %q not found, %w", schema.PromoColumn, ErrSchema)
	}

	var capacity []float64
	if schema.CapacityColumn != "" {
		capacity, exists = frame.Numeric(schema.CapacityColumn)
		if !exists {
			return nil, fmt.Errorf("capacity column %q not found, %w", schema.CapacityColumn, ErrSchema)
		}
	}

	regNames := schema.Regressors
	if len(regNames) == 0 {
		for _, col := range frame.Columns() {
			if schema.reserved(col) {
				continue
			}
			if kind, _ := frame.Kind(col); kind == KindFloat || kind == KindBool {
				regNames = append(regNames, col)
			}
		}
	}
	regCols := make(map[string][]float64, len(regNames))
	for _, name := range regNames {
		vals, exists := frame.Numeric(name)
		if !exists {
			return nil, fmt.Errorf("regressor column %q, %w", name, ErrMissingRegressor)
		}
		regCols[name] = vals
	}

	records := make([]Record, 0, frame.Len())
	var dropped int
	for i := 0; i < frame.Len(); i++ {
		if math.IsNaN(target[i]) || (capacity != nil && math.IsNaN(capacity[i])) {
			dropped++
			continue
		}
		if target[i] < 0 {
			return nil, fmt.Errorf("negative target %f on %s, %w", target[i], dates[i].Format(time.DateOnly), ErrSchema)
		}
		rec := Record{
			Date:    ToDay(dates[i]),
			Target:  target[i],
			IsPromo: promo[i] != 0 && !math.IsNaN(promo[i]),
		}
		if capacity != nil {
			rec.Capacity = capacity[i]
		}
		if len(regCols) > 0 {
			rec.Regressors = make(map[string]float64, len(regCols))
			for name, vals := range regCols {
				rec.Regressors[name] = vals[i]
			}
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		slog.Info("dropped rows with missing target or capacity", "item", schema.ItemID, "dropped", dropped)
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		return a.Date.Compare(b.Date)
	})
	for i := 1; i < len(records); i++ {
		if records[i].Date.Equal(records[i-1].Date) {
			return nil, fmt.Errorf("duplicate date %s, %w", records[i].Date.Format(time.DateOnly), ErrSchema)
		}
	}

	s := &ObservedSeries{
		ItemID:     schema.ItemID,
		Records:    records,
		regressors: slices.Sorted(slices.Values(regNames)),
	}
	s.checkFrequency()
	s.checkOutliers()
	return s, nil
}

// checkOutliers logs target values outside the Tukey fences. They are kept since promotions
// legitimately produce sales spikes.
func (s *ObservedSeries) checkOutliers() {
	idx := stats.DetectOutliers(s.Targets(), stats.DefaultLowerPercentile, stats.DefaultUpperPercentile, stats.DefaultTukeyFactor)
	if len(idx) == 0 {
		return
	}
	var promo int
	for _, i := range idx {
		if s.Records[i].IsPromo {
			promo++
		}
	}
	slog.Debug("target outliers", "item", s.ItemID, "outliers", len(idx), "promo_outliers", promo)
}

func (s *ObservedSeries) checkFrequency() {
	dates := timedataset.TimeSlice(s.Dates())
	if dates.Daily() {
		return
	}
	freq, _ := dates.EstimateFreq()
	slog.Warn("series is not sampled daily", "item", s.ItemID, "frequency", freq.String())
}
