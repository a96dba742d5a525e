// Package config loads the command line configuration from yaml and PROMOFORECAST_ environment
// variables
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aouyang1/go-promoforecast/dataset"
	"github.com/aouyang1/go-promoforecast/evaluation"
	"github.com/aouyang1/go-promoforecast/event"
	"github.com/aouyang1/go-promoforecast/forecast"
	"github.com/aouyang1/go-promoforecast/series"
	"github.com/aouyang1/go-promoforecast/strategy"
	"github.com/spf13/viper"
)

const EnvPrefix = "PROMOFORECAST"

const (
	StrategyUnivariate      = "univariate"
	StrategyMultivariate    = "multivariate"
	StrategyMultivariateLog = "multivariate_log"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var (
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

type Input struct {
	Path       string `mapstructure:"path"`
	Format     string `mapstructure:"format"`
	Sheet      string `mapstructure:"sheet"`
	ItemColumn string `mapstructure:"item_column"`
	DateColumn string `mapstructure:"date_column"`
	DateLayout string `mapstructure:"date_layout"`
	Workers    int    `mapstructure:"workers"`
}

type Schema struct {
	TargetColumn   string   `mapstructure:"target_column"`
	PromoColumn    string   `mapstructure:"promo_column"`
	CapacityColumn string   `mapstructure:"capacity_column"`
	Regressors     []string `mapstructure:"regressors"`
}

type Forecast struct {
	Regularization   float64  `mapstructure:"regularization"`
	Penalty          string   `mapstructure:"penalty"`
	WeeklyOrders     int      `mapstructure:"weekly_orders"`
	Changepoints     int      `mapstructure:"changepoints"`
	ChangepointRange float64  `mapstructure:"changepoint_range"`
	MinObservations  int      `mapstructure:"min_observations"`
	Holidays         []string `mapstructure:"holidays"`
}

type Window struct {
	Label string `mapstructure:"label"`
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type Evaluation struct {
	Strategies []string `mapstructure:"strategies"`
	Windows    []Window `mapstructure:"windows"`

	// Cutoff as yyyy-mm-dd. Empty uses the last observed date of each window.
	Cutoff  string `mapstructure:"cutoff"`
	Workers int    `mapstructure:"workers"`
}

type Output struct {
	Dir         string `mapstructure:"dir"`
	XLSX        bool   `mapstructure:"xlsx"`
	JSON        bool   `mapstructure:"json"`
	Plot        bool   `mapstructure:"plot"`
	MetricsFile string `mapstructure:"metrics_file"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the full command line configuration
type Config struct {
	Input      Input      `mapstructure:"input"`
	Schema     Schema     `mapstructure:"schema"`
	Forecast   Forecast   `mapstructure:"forecast"`
	Evaluation Evaluation `mapstructure:"evaluation"`
	Output     Output     `mapstructure:"output"`
	Log        Log        `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "")
	v.SetDefault("input.format", "")
	v.SetDefault("input.sheet", "")
	v.SetDefault("input.item_column", series.DefaultItemColumn)
	v.SetDefault("input.date_column", series.DefaultDateColumn)
	v.SetDefault("input.date_layout", series.DefaultDateLayout)
	v.SetDefault("input.workers", 1)

	v.SetDefault("schema.target_column", series.DefaultTargetColumn)
	v.SetDefault("schema.promo_column", series.DefaultPromoColumn)
	v.SetDefault("schema.capacity_column", series.DefaultCapacityColumn)
	v.SetDefault("schema.regressors", []string{})

	v.SetDefault("forecast.regularization", forecast.DefaultRegularization)
	v.SetDefault("forecast.penalty", forecast.PenaltyL2)
	v.SetDefault("forecast.weekly_orders", forecast.DefaultWeeklyOrders)
	v.SetDefault("forecast.changepoints", forecast.DefaultAutoNumChangepoints)
	v.SetDefault("forecast.changepoint_range", forecast.DefaultChangepointRange)
	v.SetDefault("forecast.min_observations", strategy.DefaultMinObservations)
	v.SetDefault("forecast.holidays", []string{})

	v.SetDefault("evaluation.strategies", []string{StrategyUnivariate, StrategyMultivariate, StrategyMultivariateLog})
	v.SetDefault("evaluation.cutoff", evaluation.DefaultCutoff.Format(time.DateOnly))
	v.SetDefault("evaluation.workers", 1)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.xlsx", true)
	v.SetDefault("output.json", false)
	v.SetDefault("output.plot", false)
	v.SetDefault("output.metrics_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the optional yaml file at path layered over the defaults and the environment
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config %s, %w", path, err)
		}
		slog.Debug("loaded config", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every value that can be checked without reading the input
func (c *Config) Validate() error {
	if _, err := c.ForecastOptions().Validate(); err != nil {
		return fmt.Errorf("forecast, %w", errors.Join(ErrInvalidConfig, err))
	}
	if _, err := c.Strategies(); err != nil {
		return err
	}
	if _, err := c.Windows(); err != nil {
		return err
	}
	if _, err := c.Cutoff(); err != nil {
		return err
	}
	switch c.Input.Format {
	case "", FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("input format %q, %w", c.Input.Format, ErrInvalidConfig)
	}
	return nil
}

// InputFormat is the configured format or the one implied by the input file extension
func (c *Config) InputFormat() string {
	if c.Input.Format != "" {
		return c.Input.Format
	}
	if strings.HasSuffix(strings.ToLower(c.Input.Path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

func (c *Config) DatasetOptions() *dataset.Options {
	return &dataset.Options{
		ItemColumn:  c.Input.ItemColumn,
		DateColumn:  c.Input.DateColumn,
		DateLayout:  c.Input.DateLayout,
		BoolColumns: []string{c.Schema.PromoColumn},
		Sheet:       c.Input.Sheet,
		Workers:     c.Input.Workers,
	}
}

func (c *Config) SeriesSchema(itemID string) series.Schema {
	return series.Schema{
		ItemID:         itemID,
		DateColumn:     c.Input.DateColumn,
		TargetColumn:   c.Schema.TargetColumn,
		PromoColumn:    c.Schema.PromoColumn,
		CapacityColumn: c.Schema.CapacityColumn,
		Regressors:     c.Schema.Regressors,
	}
}

func (c *Config) ForecastOptions() *forecast.Options {
	opt := forecast.NewDefaultOptions()
	opt.Regularization = c.Forecast.Regularization
	opt.Penalty = c.Forecast.Penalty
	opt.SeasonalityOptions.WeeklyOrders = c.Forecast.WeeklyOrders
	opt.ChangepointOptions.Auto = c.Forecast.Changepoints > 0
	opt.ChangepointOptions.AutoNumChangepoints = c.Forecast.Changepoints
	opt.ChangepointOptions.Range = c.Forecast.ChangepointRange
	return opt
}

// Strategies builds the configured strategies in order
func (c *Config) Strategies() ([]strategy.Strategy, error) {
	holidays, err := event.Lookup(c.Forecast.Holidays)
	if err != nil {
		return nil, fmt.Errorf("holidays, %w", errors.Join(ErrInvalidConfig, err))
	}
	base := strategy.Options{
		MinObservations: c.Forecast.MinObservations,
		Forecast:        c.ForecastOptions(),
	}

	res := make([]strategy.Strategy, 0, len(c.Evaluation.Strategies))
	for _, name := range c.Evaluation.Strategies {
		switch name {
		case StrategyUnivariate:
			opt := base
			res = append(res, strategy.NewUnivariate(&opt))
		case StrategyMultivariate, StrategyMultivariateLog:
			res = append(res, strategy.NewMultivariate(&strategy.MultivariateOptions{
				Options:    base,
				Regressors: c.Schema.Regressors,
				UseLog:     name == StrategyMultivariateLog,
				Holidays:   holidays,
			}))
		default:
			return nil, fmt.Errorf("strategy %q, %w", name, ErrUnknownStrategy)
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no strategies, %w", ErrInvalidConfig)
	}
	return res, nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q, %w", value, errors.Join(ErrInvalidConfig, err))
	}
	return t, nil
}

// Windows returns the configured evaluation windows or the defaults when none are set
func (c *Config) Windows() ([]evaluation.Window, error) {
	if len(c.Evaluation.Windows) == 0 {
		return evaluation.DefaultWindows(), nil
	}
	res := make([]evaluation.Window, 0, len(c.Evaluation.Windows))
	for _, w := range c.Evaluation.Windows {
		if w.Label == "" {
			return nil, fmt.Errorf("window without label, %w", ErrInvalidConfig)
		}
		start, err := parseDate(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(w.End)
		if err != nil {
			return nil, err
		}
		if !start.IsZero() && !end.IsZero() && end.Before(start) {
			return nil, fmt.Errorf("window %s ends before it starts, %w", w.Label, ErrInvalidConfig)
		}
		res = append(res, evaluation.Window{Label: w.Label, Start: start, End: end})
	}
	return res, nil
}

func (c *Config) Cutoff() (time.Time, error) {
	return parseDate(c.Evaluation.Cutoff)
}

// SlogLevel maps the configured level name onto a slog level
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
