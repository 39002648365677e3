// Package backtestcfg loads an on-disk YAML run/strategy description into
// the in-memory descriptor tree the core consumes. The core itself only
// ever sees an already-parsed strategy.Descriptor.
package backtestcfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/archwright/barstate/strategy"
)

// yamlFile is the raw on-disk shape, unmarshaled before any defaulting or
// translation into the descriptor tree.
type yamlFile struct {
	Run struct {
		Instrument         string   `yaml:"instrument"`
		Timeframe          string   `yaml:"timeframe"`
		Start              string   `yaml:"start"`
		End                string   `yaml:"end"`
		InitialCapital     float64  `yaml:"initial_capital"`
		CommissionPerShare *float64 `yaml:"commission_per_share"`
	} `yaml:"run"`

	Strategy strategy.Descriptor `yaml:"strategy"`
}

// RunConfig is the fully-defaulted, parsed configuration for one run: the
// time range and instrument to query, the portfolio's starting capital
// and commission rate, and the strategy description (not yet compiled;
// strategy.Build turns it into a Strategy).
type RunConfig struct {
	Instrument         string
	Timeframe          string
	Start              time.Time
	End                time.Time
	InitialCapital     float64
	CommissionPerShare float64
	Strategy           strategy.Descriptor
}

// DefaultRunConfig is the baseline configuration: a ten-year lookback
// window and a conventional starting balance, overridden field-by-field
// by whatever the YAML file supplies.
func DefaultRunConfig() RunConfig {
	now := time.Now()
	return RunConfig{
		Timeframe:          "1d",
		Start:              now.AddDate(-10, 0, 0),
		End:                now,
		InitialCapital:     1_000_000,
		CommissionPerShare: 0.01,
	}
}

// Load reads and parses a YAML run file at path into a RunConfig,
// layering the file's fields over DefaultRunConfig.
func Load(path string) (RunConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}

	var yf yamlFile
	if err := yaml.Unmarshal(raw, &yf); err != nil {
		return RunConfig{}, fmt.Errorf("parse yaml: %w", err)
	}

	cfg := DefaultRunConfig()

	if yf.Run.Instrument != "" {
		cfg.Instrument = yf.Run.Instrument
	}
	if yf.Run.Timeframe != "" {
		cfg.Timeframe = yf.Run.Timeframe
	}
	if yf.Run.InitialCapital > 0 {
		cfg.InitialCapital = yf.Run.InitialCapital
	}
	if yf.Run.CommissionPerShare != nil && *yf.Run.CommissionPerShare >= 0 {
		cfg.CommissionPerShare = *yf.Run.CommissionPerShare
	}
	if yf.Run.Start != "" {
		t, err := time.ParseInLocation("2006-01-02", yf.Run.Start, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid run.start: %w", err)
		}
		cfg.Start = t
	}
	if yf.Run.End != "" {
		t, err := time.ParseInLocation("2006-01-02", yf.Run.End, time.Local)
		if err != nil {
			return RunConfig{}, fmt.Errorf("invalid run.end: %w", err)
		}
		cfg.End = t
	}

	cfg.Strategy = yf.Strategy
	return cfg, nil
}
