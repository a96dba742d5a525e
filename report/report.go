// Package report writes evaluation tables and forecasts for downstream consumers
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-promoforecast/evaluation"
	"github.com/aouyang1/go-promoforecast/forecast"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/strategy"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	MetricsSheet = "Metrics"
	ErrorsSheet  = "Errors"
	ItemHeader   = "ItemNumber"
)

// WriteXLSX writes one metrics row per item with a column per model, metric and window.
// Undefined cells are left blank and every failure is listed on the errors sheet.
func WriteXLSX(path string, table *evaluation.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), MetricsSheet); err != nil {
		return fmt.Errorf("unable to name metrics sheet, %w", err)
	}
	cols := table.Columns()
	header := make([]any, 0, len(cols)+1)
	header = append(header, ItemHeader)
	for _, c := range cols {
		header = append(header, c)
	}
	if err := f.SetSheetRow(MetricsSheet, "A1", &header); err != nil {
		return fmt.Errorf("unable to write metrics header, %w", err)
	}

	for i, item := range table.Items() {
		row := make([]any, 0, len(cols)+1)
		row = append(row, item)
		for _, c := range cols {
			v := table.Value(item, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row = append(row, nil)
				continue
			}
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(MetricsSheet, cell, &row); err != nil {
			return fmt.Errorf("unable to write metrics for item %q, %w", item, err)
		}
	}

	if _, err := f.NewSheet(ErrorsSheet); err != nil {
		return fmt.Errorf("unable to create errors sheet, %w", err)
	}
	errHeader := []any{ItemHeader, "Model", "Window", "Error"}
	if err := f.SetSheetRow(ErrorsSheet, "A1", &errHeader); err != nil {
		return fmt.Errorf("unable to write errors header, %w", err)
	}
	for i, r := range table.Failures() {
		row := []any{r.ItemID, r.ModelName, r.WindowLabel, r.Err.Error()}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ErrorsSheet, cell, &row); err != nil {
			return fmt.Errorf("unable to write error row, %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("unable to save %s, %w", path, err)
	}
	return nil
}

// Run is the JSON document of one evaluation run
type Run struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Results   []ResultJSON `json:"results"`
}

// ResultJSON is an evaluation result where undefined metrics encode as null
type ResultJSON struct {
	ItemID      string   `json:"item_id"`
	ModelName   string   `json:"model_name"`
	WindowLabel string   `json:"window_label"`
	RMSE        *float64 `json:"rmse"`
	NRMSE       *float64 `json:"nrmse"`
	Error       string   `json:"error,omitempty"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func allFinite(vals ...float64) bool {
	for _, v := range vals {
		if finite(v) == nil {
			return false
		}
	}
	return true
}

// NewRun tags the table's results with a fresh run id
func NewRun(table *evaluation.Table) Run {
	results := table.Results()
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Results:   make([]ResultJSON, 0, len(results)),
	}
	for _, r := range results {
		res := ResultJSON{
			ItemID:      r.ItemID,
			ModelName:   r.ModelName,
			WindowLabel: r.WindowLabel,
			RMSE:        finite(r.RMSE),
			NRMSE:       finite(r.NRMSE),
		}
		if r.Err != nil {
			res.Error = r.Err.Error()
		}
		run.Results = append(run.Results, res)
	}
	return run
}

func WriteJSON(w io.Writer, run Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return fmt.Errorf("unable to encode run %s, %w", run.ID, err)
	}
	return nil
}

// ForecastJSON is the dump of a single strategy run
type ForecastJSON struct {
	ItemID   string                    `json:"item_id"`
	Strategy string                    `json:"strategy"`
	Cutoff   time.Time                 `json:"cutoff"`
	RMSE     *float64                  `json:"rmse"`
	NRMSE    *float64                  `json:"nrmse"`
	Forecast []series.ForecastRow       `json:"forecast"`
	Models   map[string]forecast.Model `json:"models"`
}

// WriteForecastJSON writes the forecast rows, scores and fitted model summaries of a run
func WriteForecastJSON(w io.Writer, res *strategy.Result) error {
	out := ForecastJSON{
		ItemID:   res.ItemID,
		Strategy: res.Strategy,
		Cutoff:   res.Cutoff,
		RMSE:     finite(res.RMSE),
		Forecast: res.Forecast,
		Models:   make(map[string]forecast.Model, len(res.Models)),
	}
	if nrmse, err := res.NRMSE(); err == nil {
		out.NRMSE = finite(nrmse)
	}
	// json cannot carry NaN scores, e.g. MAPE of a series with zero sales
	for name, m := range res.Models {
		if m.Scores != nil && !allFinite(m.Scores.MSE, m.Scores.MAPE, m.Scores.R2) {
			m.Scores = nil
		}
		out.Models[name] = m
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("unable to encode forecast for item %q, %w", res.ItemID, err)
	}
	return nil
}
