package forecast

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-promoforecast/feature"
)

const (
	DefaultAutoNumChangepoints = 25
	DefaultChangepointRange    = 0.8
	DefaultWeeklyOrders        = 3
	DefaultRegularization      = 1.0

	PenaltyL2 = "l2"
	PenaltyL1 = "l1"
)

var ErrInvalidOptions = errors.New("invalid forecast options")

// Changepoint describes a point in time that will change the ongoing trend
type Changepoint struct {
	T    time.Time `json:"time"`
	Name string    `json:"name"`
}

func NewChangepoint(name string, t time.Time) Changepoint {
	return Changepoint{t, name}
}

// ChangepointOptions configures the changepoint fit to either use auto-detection
// by evenly placing N changepoints in the first portion of the training window or an
// explicit list of changepoint times.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`

	// Range is the fraction of the training history changepoints are placed in
	Range float64 `json:"range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		Auto:                true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		Range:               DefaultChangepointRange,
	}
}

func (c ChangepointOptions) tablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if c.Auto {
		_, err := fmt.Fprintf(w, "%s%sChangepoints: auto, n=%d, range=%.2f\n",
			prefix, indentExpand(indent, indentGrowth), c.AutoNumChangepoints, c.Range)
		return err
	}
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
	}
	if _, err := fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, indentExpand(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, chpt := range c.Changepoints {
		fmt.Fprintf(tbl, "%s%s%s\t%s\t\n",
			prefix, indentExpand(indent, indentGrowth+1),
			chpt.Name, chpt.T.Format(time.DateOnly))
	}
	return tbl.Flush()
}

// SeasonalityOptions configures the day of week Fourier terms
type SeasonalityOptions struct {
	WeeklyOrders int `json:"weekly_orders"`
}

// NewDefaultSeasonalityOptions only models weekly seasonality as daily data has no
// intra-day cycle and yearly cycles need more history than a typical item has.
func NewDefaultSeasonalityOptions() SeasonalityOptions {
	return SeasonalityOptions{
		WeeklyOrders: DefaultWeeklyOrders,
	}
}

// Options configures a forecast by specifying the trend, changepoints, seasonality order
// and the regularization parameter where higher values shrink the features that
// contribute the least to the fit.
type Options struct {
	// UseLog fits on log1p(y) and inverts predictions with expm1
	UseLog bool `json:"use_log"`

	// Regularization of 0 solves ordinary least squares
	Regularization float64 `json:"regularization"`

	// Penalty is either l2 for ridge or l1 for lasso. Empty uses l2.
	Penalty string `json:"penalty"`

	GrowthType         string             `json:"growth_type"`
	ChangepointOptions ChangepointOptions `json:"changepoint_options"`
	SeasonalityOptions SeasonalityOptions `json:"seasonality_options"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		Regularization:     DefaultRegularization,
		Penalty:            PenaltyL2,
		GrowthType:         feature.GrowthLinear,
		ChangepointOptions: NewDefaultChangepointOptions(),
		SeasonalityOptions: NewDefaultSeasonalityOptions(),
	}
}

// Validate returns the defaults on nil options and fills in unset auto changepoint fields
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	next := *o
	next.ChangepointOptions.Changepoints = append([]Changepoint(nil), o.ChangepointOptions.Changepoints...)

	if next.Regularization < 0 {
		return nil, fmt.Errorf("regularization of %f, %w", next.Regularization, ErrInvalidOptions)
	}
	if next.SeasonalityOptions.WeeklyOrders < 0 {
		return nil, fmt.Errorf("weekly orders of %d, %w", next.SeasonalityOptions.WeeklyOrders, ErrInvalidOptions)
	}
	switch next.Penalty {
	case "":
		next.Penalty = PenaltyL2
	case PenaltyL1, PenaltyL2:
	default:
		return nil, fmt.Errorf("unknown penalty %q, %w", next.Penalty, ErrInvalidOptions)
	}
	switch next.GrowthType {
	case "", feature.GrowthLinear:
	default:
		return nil, fmt.Errorf("unknown growth type %q, %w", next.GrowthType, ErrInvalidOptions)
	}
	if next.ChangepointOptions.Auto {
		if next.ChangepointOptions.AutoNumChangepoints == 0 {
			next.ChangepointOptions.AutoNumChangepoints = DefaultAutoNumChangepoints
		}
		if next.ChangepointOptions.Range == 0 {
			next.ChangepointOptions.Range = DefaultChangepointRange
		}
		if next.ChangepointOptions.Range < 0 || next.ChangepointOptions.Range > 1 {
			return nil, fmt.Errorf("changepoint range of %f, %w", next.ChangepointOptions.Range, ErrInvalidOptions)
		}
	}
	return &next, nil
}

// TablePrint writes a human readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sRegularization: %.3f (%s)\n", prefix, indentExpand(indent, indentGrowth), o.Regularization, o.Penalty); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sLog Transform: %t\n", prefix, indentExpand(indent, indentGrowth), o.UseLog); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sWeekly Orders: %d\n", prefix, indentExpand(indent, indentGrowth), o.SeasonalityOptions.WeeklyOrders); err != nil {
		return err
	}
	return o.ChangepointOptions.tablePrint(w, prefix, indent, indentGrowth)
}

func indentExpand(indent string, growth int) string {
	indentByte := []byte(indent)
	out := make([]byte, 0, len(indent)*growth)
	for i := 0; i < growth; i++ {
		out = append(out, indentByte...)
	}
	return string(out)
}
