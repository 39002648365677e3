// Package engine drives the per-bar backtest pipeline: snapshot
// construction, strategy evaluation, signal execution, then equity
// sampling, strictly in that order for every bar.
package engine

import (
	"context"
	"time"

	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/candle"
	"github.com/archwright/barstate/indicator"
	"github.com/archwright/barstate/metrics"
	"github.com/archwright/barstate/portfolio"
	"github.com/archwright/barstate/rule"
	"github.com/archwright/barstate/strategy"
	"github.com/archwright/barstate/xerrors"
	"go.uber.org/zap"
)

// Result is everything a finished run produces.
type Result struct {
	Success bool
	Equity  []portfolio.Sample
	Trades  []portfolio.Trade
	Metrics metrics.Result
}

// Config parameterizes one run: the instrument, timeframe and inclusive
// time range of the primary series to query, and the portfolio's starting
// capital and commission model. The strategy and the candle source are
// passed to Run alongside it.
type Config struct {
	Instrument         candle.InstrumentKey
	Timeframe          candle.TimeframeKey
	StartInclusive     time.Time
	EndInclusive       time.Time
	InitialCapital     float64
	CommissionPerShare float64
}

// Run executes one backtest: loads candles, builds indicators, then walks
// the event loop. All fatal conditions (configuration, data, and indicator
// errors) are returned as an error before any bar is visited; execution
// anomalies inside the loop are logged and recovered.
func Run(ctx context.Context, source candle.Source, strat *strategy.Strategy, cfg Config, log *applog.Logger) (Result, error) {
	candles, err := source.QueryCandles(ctx, cfg.Instrument, cfg.Timeframe, cfg.StartInclusive, cfg.EndInclusive)
	if err != nil {
		return Result{}, xerrors.Wrap(xerrors.CodeNoData, "candle source query failed", err)
	}
	if len(candles) == 0 {
		return Result{}, xerrors.New(xerrors.CodeNoData, "candle source returned no candles")
	}

	pipeline := indicator.NewPipeline(log)
	instances, err := pipeline.Build(strat.IndicatorNames, candles)
	if err != nil {
		return Result{}, err
	}

	maxLookback := 0
	for _, in := range instances {
		if in.Lookback > maxLookback {
			maxLookback = in.Lookback
		}
	}
	if len(candles) <= maxLookback {
		return Result{}, xerrors.Wrap(xerrors.CodeInsufficientCandles,
			"fewer candles than the strategy's maximum indicator lookback",
			xerrors.NewInsufficientDataError(maxLookback+1, len(candles), "max_lookback"))
	}

	book := portfolio.New(string(cfg.Instrument), cfg.InitialCapital, cfg.CommissionPerShare, log)

	for i := maxLookback; i < len(candles); i++ {
		snap := barSnapshot{candle: candles[i], index: i, indicators: instances}

		action := strat.Evaluate(snap)
		if action != rule.ActionNone {
			book.Execute(candles[i].Timestamp, candles[i].Close, action, strat.Sizing)
		}

		book.RecordTimestampValue(candles[i].Timestamp, candles[i].Close, true)
	}

	log.Info("run complete",
		zap.Int("bars_visited", len(candles)-maxLookback),
		zap.Int("trades", len(book.Trades())))

	return Result{
		Success: true,
		Equity:  book.EquityCurve(),
		Trades:  book.Trades(),
		Metrics: metrics.Compute(cfg.InitialCapital, book.EquityCurve(), book.Trades()),
	}, nil
}
