// Package dataset loads raw retail sales tables into per-item frames
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aouyang1/go-promoforecast/series"
	"github.com/xuri/excelize/v2"
)

var (
	ErrNoHeader      = errors.New("table has no header row")
	ErrMissingColumn = errors.New("column missing from table")
	ErrNoSheet       = errors.New("sheet not found in workbook")
	ErrInvalidBool   = errors.New("value is not a boolean")
)

// Options configures how raw cells are typed and grouped
type Options struct {
	ItemColumn string
	DateColumn string
	DateLayout string

	// BoolColumns are parsed as booleans. Numeric cells are true when non-zero.
	BoolColumns []string

	// Sheet of an xlsx workbook. Empty uses the first sheet.
	Sheet string

	// Workers parsing dates per item
	Workers int
}

func NewDefaultOptions() *Options {
	return &Options{
		ItemColumn:  series.DefaultItemColumn,
		DateColumn:  series.DefaultDateColumn,
		DateLayout:  series.DefaultDateLayout,
		BoolColumns: []string{series.DefaultPromoColumn},
		Workers:     1,
	}
}

// LoadCSVFile reads a comma separated file with a header row
func LoadCSVFile(path string, opt *Options) (map[string]*series.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()
	return LoadCSV(f, opt)
}

// LoadCSV reads comma separated records with a header row and groups them by item
func LoadCSV(r io.Reader, opt *Options) (map[string]*series.Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv, %w", err)
	}
	return group(rows, opt)
}

// LoadXLSX reads a sheet of an xlsx workbook with a header row and groups it by item
func LoadXLSX(path string, opt *Options) (map[string]*series.Frame, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	defer f.Close()

	sheet := opt.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if !slices.Contains(f.GetSheetList(), sheet) {
		return nil, fmt.Errorf("sheet %q, %w", sheet, ErrNoSheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q, %w", sheet, err)
	}
	return group(rows, opt)
}

// Items returns the sorted item ids of the loaded frames
func Items(frames map[string]*series.Frame) []string {
	items := make([]string, 0, len(frames))
	for item := range frames {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// group splits the rows under the header by item id and types every column once across the
// whole table so every item frame carries the same columns
func group(rows [][]string, opt *Options) (map[string]*series.Frame, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	itemIdx := slices.Index(header, opt.ItemColumn)
	if itemIdx < 0 {
		return nil, fmt.Errorf("item column %q, %w", opt.ItemColumn, ErrMissingColumn)
	}
	if !slices.Contains(header, opt.DateColumn) {
		return nil, fmt.Errorf("date column %q, %w", opt.DateColumn, ErrMissingColumn)
	}

	// spreadsheets drop trailing empty cells
	body := rows[1:]
	for i, row := range body {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			body[i] = padded
		}
	}

	byItem := make(map[string][]int)
	var order []string
	for i, row := range body {
		item := strings.TrimSuffix(strings.TrimSpace(row[itemIdx]), ".0")
		if item == "" {
			continue
		}
		if _, exists := byItem[item]; !exists {
			order = append(order, item)
		}
		byItem[item] = append(byItem[item], i)
	}

	numeric := make([]bool, len(header))
	for c := range header {
		numeric[c] = isNumericColumn(body, c)
	}

	frames := make(map[string]*series.Frame, len(byItem))
	for _, item := range order {
		frame, err := buildFrame(header, body, byItem[item], itemIdx, numeric, opt)
		if err != nil {
			return nil, fmt.Errorf("unable to load item %q, %w", item, err)
		}
		frames[item] = frame
	}
	slog.Debug("loaded table", "rows", len(body), "items", len(frames))
	return frames, nil
}

func buildFrame(header []string, body [][]string, idx []int, itemIdx int, numeric []bool, opt *Options) (*series.Frame, error) {
	frame := series.NewFrame()
	for c, name := range header {
		if c == itemIdx || name == "" {
			continue
		}
		cells := make([]string, len(idx))
		for i, r := range idx {
			cells[i] = strings.TrimSpace(body[r][c])
		}

		var err error
		switch {
		case name == opt.DateColumn:
			var dates []time.Time
			dates, err = series.ParseDates(cells, opt.DateLayout, opt.Workers)
			if err == nil {
				err = frame.AddTimes(name, dates)
			}
		case slices.Contains(opt.BoolColumns, name):
			var vals []bool
			vals, err = parseBools(cells)
			if err == nil {
				err = frame.AddBools(name, vals)
			}
		case numeric[c]:
			err = frame.AddFloats(name, parseFloats(cells))
		default:
			err = frame.AddStrings(name, cells)
		}
		if err != nil {
			return nil, fmt.Errorf("column %q, %w", name, err)
		}
	}
	return frame, nil
}

// isNumericColumn is true when every non-empty cell parses as a float
func isNumericColumn(body [][]string, c int) bool {
	for _, row := range body {
		cell := strings.TrimSpace(row[c])
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return false
		}
	}
	return true
}

// parseFloats maps empty cells to NaN
func parseFloats(cells []string) []float64 {
	res := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			res[i] = math.NaN()
			continue
		}
		res[i] = v
	}
	return res
}

func parseBools(cells []string) ([]bool, error) {
	res := make([]bool, len(cells))
	for i, cell := range cells {
		if cell == "" {
			continue
		}
		if b, err := strconv.ParseBool(cell); err == nil {
			res[i] = b
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d value %q, %w", i, cell, ErrInvalidBool)
		}
		res[i] = v != 0
	}
	return res, nil
}
