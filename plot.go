// Package promoforecast renders promotion aware forecasts and evaluation tables as html charts
package promoforecast

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/aouyang1/go-promoforecast/evaluation"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/strategy"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const dateLayout = time.DateOnly

// missing is rendered by echarts as a gap in the line
const missing = "-"

func lineData(vals []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(vals))
	for _, v := range vals {
		if math.IsNaN(v) {
			data = append(data, opts.LineData{Value: missing})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

func newLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(
			opts.Tooltip{
				Trigger: "axis",
			},
		),
	)
	return line
}

// LineTSeries generates an echart multi-line chart for some arbitrary date/value combination. Each
// of the y series must have the same length as the input dates and NaN values are left as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := newLine(title)

	x := make([]string, 0, len(t))
	for _, ts := range t {
		x = append(x, ts.Format(dateLayout))
	}
	line = line.SetXAxis(x)
	for i, name := range seriesName {
		line = line.AddSeries(name, lineData(y[i]))
	}
	return line
}

// forecastColumns aligns the actuals and each promotion branch of a forecast on a shared
// chronological date axis
func forecastColumns(res *strategy.Result) ([]time.Time, []float64, []float64, []float64) {
	index := make(map[time.Time]int)
	var dates []time.Time
	for _, row := range res.Forecast {
		if _, exists := index[row.Date]; !exists {
			index[row.Date] = 0
			dates = append(dates, row.Date)
		}
	}
	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})
	for i, d := range dates {
		index[d] = i
	}

	actual := nanSlice(len(dates))
	promo := nanSlice(len(dates))
	nonPromo := nanSlice(len(dates))
	for _, row := range res.Forecast {
		if row.IsPromoContext {
			promo[index[row.Date]] = row.Predicted
			continue
		}
		nonPromo[index[row.Date]] = row.Predicted
	}
	for _, row := range res.Metrics {
		if i, exists := index[row.Date]; exists {
			actual[i] = row.Actual
		}
	}
	return dates, actual, promo, nonPromo
}

func nanSlice(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}

// LineForecast plots the observed sales along with the forecast under each promotion context
func LineForecast(res *strategy.Result) *charts.Line {
	dates, actual, promo, nonPromo := forecastColumns(res)
	return LineTSeries(
		fmt.Sprintf("Item %s %s forecast, cutoff %s", res.ItemID, res.Strategy, res.Cutoff.Format(dateLayout)),
		[]string{"Actual", "Forecast " + series.Promo.String(), "Forecast " + series.NonPromo.String()},
		dates,
		[][]float64{actual, promo, nonPromo},
	)
}

// LineResidual plots the actual minus predicted value of every joined observation
func LineResidual(res *strategy.Result) *charts.Line {
	dates := make([]time.Time, 0, len(res.Metrics))
	residual := make([]float64, 0, len(res.Metrics))
	for _, row := range res.Metrics {
		dates = append(dates, row.Date)
		residual = append(residual, row.Actual-row.Predicted)
	}
	return LineTSeries("Forecast Residual", []string{"Residual"}, dates, [][]float64{residual})
}

// PlotForecast renders the forecast of a strategy run along with its residuals as an html page
func PlotForecast(w io.Writer, res *strategy.Result) error {
	if res == nil {
		return strategy.ErrNoSeries
	}
	page := components.NewPage()
	page.AddCharts(
		LineForecast(res),
		LineResidual(res),
	)
	return page.Render(w)
}

// BarMetrics plots a grouped bar per item for every metric column of the table
func BarMetrics(title string, table *evaluation.Table, cols []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	items := table.Items()
	bar = bar.SetXAxis(items)
	for _, col := range cols {
		data := make([]opts.BarData, 0, len(items))
		for _, item := range items {
			v := table.Value(item, col)
			if math.IsNaN(v) {
				data = append(data, opts.BarData{Value: missing})
				continue
			}
			data = append(data, opts.BarData{Value: v})
		}
		bar = bar.AddSeries(col, data)
	}
	return bar
}

// PlotMetrics renders one chart of RMSE columns and one of NRMSE columns across items
func PlotMetrics(w io.Writer, table *evaluation.Table) error {
	var rmse, nrmse []string
	for _, col := range table.Columns() {
		if strings.Contains(col, "_"+evaluation.MetricNRMSE+"_") {
			nrmse = append(nrmse, col)
			continue
		}
		rmse = append(rmse, col)
	}

	page := components.NewPage()
	page.AddCharts(
		BarMetrics("RMSE by item", table, rmse),
		BarMetrics("Normalized RMSE by item", table, nrmse),
	)
	return page.Render(w)
}
