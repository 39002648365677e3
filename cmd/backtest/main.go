// Command backtest runs a single historical backtest from a YAML
// configuration file and prints a JSON report, optionally serving it
// over HTTP afterward.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"

	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/backtestcfg"
	"github.com/archwright/barstate/candle"
	"github.com/archwright/barstate/engine"
	"github.com/archwright/barstate/report"
	"github.com/archwright/barstate/strategy"
)

func main() {
	configPath := flag.String("config", "backtest.yaml", "run configuration file path (YAML)")
	outPath := flag.String("out", "", "report output JSON file path (default stdout)")
	serve := flag.Bool("serve", false, "serve the finished report over HTTP instead of exiting")
	port := flag.Int("port", 8080, "HTTP port used with -serve")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := zapcore.InfoLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	log, err := applog.New(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*configPath, *outPath, *serve, *port, log); err != nil {
		log.Error("backtest failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, outPath string, serve bool, port int, log *applog.Logger) error {
	cfg, err := backtestcfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	strat, err := strategy.Build(cfg.Strategy, log)
	if err != nil {
		return fmt.Errorf("build strategy: %w", err)
	}

	source := candle.NewHTTPSource("https://example.invalid/kline/%s?limit=%d", false)

	result, err := engine.Run(context.Background(), source, strat, engine.Config{
		Instrument:         candle.InstrumentKey(cfg.Instrument),
		Timeframe:          candle.TimeframeKey(cfg.Timeframe),
		StartInclusive:     cfg.Start,
		EndInclusive:       cfg.End,
		InitialCapital:     cfg.InitialCapital,
		CommissionPerShare: cfg.CommissionPerShare,
	}, log)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else {
		fmt.Println(string(out))
	}

	if serve {
		srv := report.NewServer(port, log)
		srv.Register("latest", result)
		return srv.Start()
	}
	return nil
}
