package cmd

import (
	"log/slog"

	"github.com/aouyang1/go-promoforecast/config"
	"github.com/aouyang1/go-promoforecast/dataset"
	"github.com/aouyang1/go-promoforecast/series"
)

// loadSeries reads the configured input and prepares every item. Items that fail
// preparation are logged and skipped.
func loadSeries(c *config.Config) ([]*series.ObservedSeries, error) {
	var (
		frames map[string]*series.Frame
		err    error
	)
	switch c.InputFormat() {
	case config.FormatXLSX:
		frames, err = dataset.LoadXLSX(c.Input.Path, c.DatasetOptions())
	default:
		frames, err = dataset.LoadCSVFile(c.Input.Path, c.DatasetOptions())
	}
	if err != nil {
		return nil, err
	}

	items := make([]*series.ObservedSeries, 0, len(frames))
	for _, item := range dataset.Items(frames) {
		s, err := series.Prepare(frames[item], c.SeriesSchema(item))
		if err != nil {
			slog.Warn("skipping item", "item", item, "error", err.Error())
			continue
		}
		items = append(items, s)
	}
	slog.Info("prepared items", "path", c.Input.Path, "items", len(items), "skipped", len(frames)-len(items))
	return items, nil
}
