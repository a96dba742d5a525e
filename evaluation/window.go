package evaluation

import (
	"fmt"
	"strings"
	"time"
)

// Window is a labeled date range of an item's history to evaluate on. A zero bound is open.
type Window struct {
	Label string    `mapstructure:"label" json:"label"`
	Start time.Time `mapstructure:"start" json:"start"`
	End   time.Time `mapstructure:"end" json:"end"`
}

// DefaultWindows evaluates on the whole history and on calendar year 2017
func DefaultWindows() []Window {
	return []Window{
		{Label: "2-year"},
		{
			Label: "1-year",
			Start: time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2017, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}
}

// ColumnLabel is the label with dashes removed, e.g. 2-year becomes 2year
func (w Window) ColumnLabel() string {
	return strings.ReplaceAll(w.Label, "-", "")
}

// Column returns the report column name of a metric for a model in this window
func Column(model, metric string, w Window) string {
	return fmt.Sprintf("%s_%s_%s", model, metric, w.ColumnLabel())
}
