package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-promoforecast/config"
	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	logLevel   string
	cpuProfile string

	cfg      *config.Config
	runID    string
	profiler interface{ Stop() }
)

var rootCmd = &cobra.Command{
	Use:   "promoforecast",
	Short: "Promotion aware daily demand forecasting",
	Long: `Forecast one week of daily unit sales per item under promotion and non promotion
scenarios and rank model strategies by RMSE across historical windows.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		runID = uuid.NewString()
		slog.SetDefault(newLogger(cfg).With("run_id", runID))

		if cpuProfile != "" {
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(cpuProfile), profile.Quiet)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

func newLogger(c *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level overriding the configuration (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "directory to write a cpu profile to")
}
