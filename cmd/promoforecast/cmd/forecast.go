package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	promoforecast "github.com/aouyang1/go-promoforecast"
	"github.com/aouyang1/go-promoforecast/report"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/strategy"
	"github.com/spf13/cobra"
)

var (
	fcInput    string
	fcStrategy string
	fcCutoff   string
	fcPlot     string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast [item]",
	Short: "Forecast one item and write the forecast as json to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if fcInput != "" {
			cfg.Input.Path = fcInput
		}
		if fcStrategy != "" {
			cfg.Evaluation.Strategies = []string{fcStrategy}
		}

		items, err := loadSeries(cfg)
		if err != nil {
			return err
		}
		var item *series.ObservedSeries
		for _, s := range items {
			if s.ItemID == args[0] {
				item = s
				break
			}
		}
		if item == nil {
			return fmt.Errorf("item %q, %w", args[0], strategy.ErrNoSeries)
		}

		cutoff := item.End()
		if fcCutoff != "" {
			cutoff, err = time.Parse(time.DateOnly, fcCutoff)
			if err != nil {
				return err
			}
		}

		strategies, err := cfg.Strategies()
		if err != nil {
			return err
		}
		res, err := strategies[0].Run(item, cutoff)
		if err != nil {
			return err
		}

		for _, role := range slices.Sorted(maps.Keys(res.Models)) {
			fmt.Fprintf(os.Stderr, "%s\n", role)
			if err := res.Models[role].TablePrint(os.Stderr, "", "  "); err != nil {
				return err
			}
		}
		if fcPlot != "" {
			if err := writeFile(fcPlot, func(f *os.File) error {
				return promoforecast.PlotForecast(f, res)
			}); err != nil {
				return err
			}
		}
		return report.WriteForecastJSON(os.Stdout, res)
	},
}

func init() {
	forecastCmd.Flags().StringVarP(&fcInput, "input", "i", "", "csv or xlsx sales file overriding the configuration")
	forecastCmd.Flags().StringVarP(&fcStrategy, "strategy", "s", "", "univariate, multivariate or multivariate_log. Defaults to the first configured strategy.")
	forecastCmd.Flags().StringVar(&fcCutoff, "cutoff", "", "last day to fit on as yyyy-mm-dd. Defaults to the last observed date.")
	forecastCmd.Flags().StringVar(&fcPlot, "plot", "", "html file to render the forecast to")
	rootCmd.AddCommand(forecastCmd)
}
