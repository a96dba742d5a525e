package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	promoforecast "github.com/aouyang1/go-promoforecast"
	"github.com/aouyang1/go-promoforecast/evaluation"
	"github.com/aouyang1/go-promoforecast/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// stopSignals end an evaluation between items
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

var (
	evalInput   string
	evalWorkers int
	evalOutDir  string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score every configured strategy on every item and window",
	RunE: func(cmd *cobra.Command, args []string) error {
		if evalInput != "" {
			cfg.Input.Path = evalInput
		}
		if evalWorkers > 0 {
			cfg.Evaluation.Workers = evalWorkers
		}
		if evalOutDir != "" {
			cfg.Output.Dir = evalOutDir
		}

		items, err := loadSeries(cfg)
		if err != nil {
			return err
		}
		strategies, err := cfg.Strategies()
		if err != nil {
			return err
		}
		windows, err := cfg.Windows()
		if err != nil {
			return err
		}
		cutoff, err := cfg.Cutoff()
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(items) * len(strategies)))
		reg := prometheus.NewRegistry()
		h, err := evaluation.New(&evaluation.Options{
			Windows:    windows,
			Cutoff:     cutoff,
			Workers:    cfg.Evaluation.Workers,
			Registerer: reg,
			OnItemDone: func(string) {
				bar.Add(1)
			},
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), stopSignals...)
		defer stop()

		table := evaluation.NewTable()
		for _, strat := range strategies {
			bar.Describe(strat.Name())
			if err := h.EvaluateBatch(ctx, items, strat, table); err != nil {
				return fmt.Errorf("evaluation of %s stopped, %w", strat.Name(), err)
			}
		}
		bar.Finish()
		slog.Info("evaluation complete", "items", len(items), "strategies", len(strategies), "failures", len(table.Failures()))

		return writeEvaluation(table, reg)
	},
}

func writeEvaluation(table *evaluation.Table, reg *prometheus.Registry) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}
	if cfg.Output.XLSX {
		path := filepath.Join(cfg.Output.Dir, "metrics.xlsx")
		if err := report.WriteXLSX(path, table); err != nil {
			return err
		}
		slog.Info("wrote metrics", "path", path)
	}
	if cfg.Output.JSON {
		if err := writeFile(filepath.Join(cfg.Output.Dir, "metrics.json"), func(f *os.File) error {
			run := report.NewRun(table)
			run.ID = runID
			return report.WriteJSON(f, run)
		}); err != nil {
			return err
		}
	}
	if cfg.Output.Plot {
		if err := writeFile(filepath.Join(cfg.Output.Dir, "metrics.html"), func(f *os.File) error {
			return promoforecast.PlotMetrics(f, table)
		}); err != nil {
			return err
		}
	}
	if cfg.Output.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.Output.MetricsFile, reg); err != nil {
			return fmt.Errorf("unable to write prometheus textfile, %w", err)
		}
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	slog.Info("wrote file", "path", path)
	return f.Close()
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalInput, "input", "i", "", "csv or xlsx sales file overriding the configuration")
	evaluateCmd.Flags().IntVarP(&evalWorkers, "workers", "w", 0, "items evaluated concurrently")
	evaluateCmd.Flags().StringVarP(&evalOutDir, "output-dir", "o", "", "directory for reports")
	rootCmd.AddCommand(evaluateCmd)
}
