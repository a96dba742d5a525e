package evaluation

import (
	"math"
	"slices"
	"sync"
)

const (
	MetricRMSE  = "RMSE"
	MetricNRMSE = "NRMSE"
)

// Result is the score of one strategy on one window of one item
type Result struct {
	ItemID      string  `json:"item_id"`
	ModelName   string  `json:"model_name"`
	WindowLabel string  `json:"window_label"`
	RMSE        float64 `json:"rmse"`
	NRMSE       float64 `json:"nrmse"`
	Err         error   `json:"-"`
}

// Table accumulates results into one row per item and one column per model, metric and
// window. It is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	columns []string
	values  map[string]map[string]float64
	results []Result
}

func NewTable() *Table {
	return &Table{
		values: make(map[string]map[string]float64),
	}
}

func (t *Table) addColumn(col string) {
	if !slices.Contains(t.columns, col) {
		t.columns = append(t.columns, col)
	}
}

// Record stores the result under its item row. Failed results are stored as NaN cells.
func (t *Table) Record(w Window, r Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, exists := t.values[r.ItemID]
	if !exists {
		row = make(map[string]float64)
		t.values[r.ItemID] = row
	}

	rmseCol := Column(r.ModelName, MetricRMSE, w)
	nrmseCol := Column(r.ModelName, MetricNRMSE, w)
	t.addColumn(rmseCol)
	t.addColumn(nrmseCol)
	row[rmseCol] = r.RMSE
	row[nrmseCol] = r.NRMSE
	t.results = append(t.results, r)
}

// Items returns the sorted item ids
func (t *Table) Items() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	items := make([]string, 0, len(t.values))
	for item := range t.values {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// Columns returns the metric columns in the order they were first recorded
func (t *Table) Columns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.columns)
}

// Value returns the cell of an item and column, NaN if it was never recorded
func (t *Table) Value(item, col string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, exists := t.values[item]
	if !exists {
		return math.NaN()
	}
	v, exists := row[col]
	if !exists {
		return math.NaN()
	}
	return v
}

// Results returns every recorded result ordered by item, model and window
func (t *Table) Results() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	res := slices.Clone(t.results)
	slices.SortStableFunc(res, func(a, b Result) int {
		if a.ItemID != b.ItemID {
			return compare(a.ItemID, b.ItemID)
		}
		if a.ModelName != b.ModelName {
			return compare(a.ModelName, b.ModelName)
		}
		return compare(a.WindowLabel, b.WindowLabel)
	})
	return res
}

// Failures returns the results that carry an error
func (t *Table) Failures() []Result {
	var res []Result
	for _, r := range t.Results() {
		if r.Err != nil {
			res = append(res, r)
		}
	}
	return res
}

func compare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
