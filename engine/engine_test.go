package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/candle"
	"github.com/archwright/barstate/condition"
	"github.com/archwright/barstate/rule"
	"github.com/archwright/barstate/strategy"
)

const (
	instrument = candle.InstrumentKey("X")
	timeframe  = candle.TimeframeKey("1d")
)

func buildCandles(closes []float64, start time.Time) []candle.Candle {
	out := make([]candle.Candle, len(closes))
	for i, c := range closes {
		out[i] = candle.Candle{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c, High: c, Low: c, Close: c,
			Volume: 100,
		}
	}
	return out
}

func mustStrategy(t *testing.T, entry, exit []rule.Rule, indicatorNames []string, sizing strategy.Sizing) *strategy.Strategy {
	t.Helper()
	s, err := strategy.New("test", []string{string(instrument)}, []string{string(timeframe)}, indicatorNames, entry, exit, sizing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func crossRule(name1, name2 string, ct condition.CrossType, action rule.SignalAction) rule.Rule {
	cond := condition.Condition{Kind: condition.KindIndicatorCross, Name1: name1, Name2: name2, CrossType: ct}
	r, _ := rule.New("cross", cond, action)
	return r
}

func priceVsIndicatorRule(op condition.Operator, indicatorName string, action rule.SignalAction) rule.Rule {
	cond := condition.Condition{Kind: condition.KindPriceIndicator, Field: condition.FieldClose, IndicatorName: indicatorName, Op: op}
	r, _ := rule.New("r", cond, action)
	return r
}

// Long-only SMA cross with no exit rule: the series stays flat long
// enough for SMA(3) and SMA(5) to converge, then jumps so the faster
// average crosses above the slower one.
func TestSMACrossEntersLongAndHolds(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5, 5, 5, 5, 20, 20, 20}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := crossRule("SMA(3)", "SMA(5)", condition.CrossesAbove, rule.ActionEnterLong)
	strat := mustStrategy(t, []rule.Rule{entry}, nil, []string{"SMA(3)", "SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000, CommissionPerShare: 0,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No exit rule is configured, so the entry never closes into a trade;
	// the position instead shows up as nonzero positions_value on the
	// equity curve from the entry bar onward.
	if len(result.Trades) != 0 {
		t.Fatalf("expected no closed trades without an exit rule, got %d", len(result.Trades))
	}
	if len(result.Equity) == 0 {
		t.Fatalf("expected equity samples")
	}
	last := result.Equity[len(result.Equity)-1]
	if last.PositionsValue == 0 {
		t.Fatalf("expected an open long position to contribute to positions_value, got %+v", last)
	}
}

// Entry and exit round trip: EnterLong once close crosses above SMA(5),
// ExitLong once it drops back below.
func TestEntryExitRoundTrip(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10, 15, 8}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterLong)
	exit := priceVsIndicatorRule(condition.OpLT, "SMA(5)", rule.ActionExitLong)
	strat := mustStrategy(t, []rule.Rule{entry}, []rule.Rule{exit}, []string{"SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000, CommissionPerShare: 1,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Trades) != 1 {
		t.Fatalf("expected exactly one closed trade, got %d", len(result.Trades))
	}
	wantPnL := (8.0-15.0)*1 - 2*1.0
	if math.Abs(result.Trades[0].PnL-wantPnL) > 1e-9 {
		t.Fatalf("expected pnl %v, got %v", wantPnL, result.Trades[0].PnL)
	}
}

// The entry condition stays true for several consecutive eligible bars;
// only the first opens a position.
func TestSecondEntryIgnoredWhileInPosition(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10, 20, 21, 22}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterLong)
	strat := mustStrategy(t, []rule.Rule{entry}, nil, []string{"SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000, CommissionPerShare: 0,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// no exit rule, so the position stays open; the second and third
	// eligible bars (both with close>SMA(5)) must not add to quantity.
	if len(result.Equity) == 0 {
		t.Fatalf("expected equity samples")
	}
	// one share bought at 20 and still held, marked at the final close of 22.
	if last := result.Equity[len(result.Equity)-1]; math.Abs(last.PositionsValue-22) > 1e-9 {
		t.Fatalf("expected a single share marked at 22, got positions_value %v", last.PositionsValue)
	}
}

// The strategy is Long and only an ExitShort rule's condition becomes
// true; the strategy must stay Long.
func TestMismatchedExitSuppressed(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10, 20, 21}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterLong)
	exitShort := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionExitShort)
	strat := mustStrategy(t, []rule.Rule{entry}, []rule.Rule{exitShort}, []string{"SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000, CommissionPerShare: 0,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Trades) != 0 {
		t.Fatalf("expected the mismatched ExitShort rule never to close the long position, got %d trades", len(result.Trades))
	}
}

// Exactly maxLookback+1 candles produce exactly one visited bar, and thus
// exactly one equity sample.
func TestMaxLookbackPlusOneCandlesVisitsOneBar(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterLong)
	strat := mustStrategy(t, []rule.Rule{entry}, nil, []string{"SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Equity) != 1 {
		t.Fatalf("expected exactly one equity sample, got %d", len(result.Equity))
	}
	// the visited bar is the one at index maxLookback = 4.
	if !result.Equity[0].Timestamp.Equal(start.AddDate(0, 0, 4)) {
		t.Fatalf("expected the single sample at the first eligible bar, got %v", result.Equity[0].Timestamp)
	}
}

func TestEquityCurveStrictlyIncreasingTimestamps(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10, 15, 8, 9, 16, 7}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterLong)
	exit := priceVsIndicatorRule(condition.OpLT, "SMA(5)", rule.ActionExitLong)
	strat := mustStrategy(t, []rule.Rule{entry}, []rule.Rule{exit}, []string{"SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000, CommissionPerShare: 0.5,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 1; i < len(result.Equity); i++ {
		if !result.Equity[i-1].Timestamp.Before(result.Equity[i].Timestamp) {
			t.Fatalf("equity timestamps not strictly increasing at sample %d", i)
		}
	}

	// once flat at the end, the closed trades account for the full move
	// from initial capital to final equity.
	last := result.Equity[len(result.Equity)-1]
	if last.PositionsValue != 0 {
		return
	}
	var sum float64
	for _, trade := range result.Trades {
		sum += trade.PnL
	}
	if math.Abs(sum-(last.TotalEquity-10_000)) > 1e-9 {
		t.Fatalf("sum of trade pnl %v != final equity delta %v", sum, last.TotalEquity-10_000)
	}
}

// A short round trip driven end to end: EnterShort above the average,
// ExitShort back below it.
func TestShortRoundTripThroughEngine(t *testing.T) {
	closes := []float64{10, 10, 10, 10, 10, 15, 8}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(2)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterShort)
	exit := priceVsIndicatorRule(condition.OpLT, "SMA(5)", rule.ActionExitShort)
	strat := mustStrategy(t, []rule.Rule{entry}, []rule.Rule{exit}, []string{"SMA(5)"}, sizing)

	result, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000, CommissionPerShare: 1,
	}, applog.Noop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Trades) != 1 {
		t.Fatalf("expected one closed short trade, got %d", len(result.Trades))
	}
	trade := result.Trades[0]
	if trade.EntryAction != rule.ActionEnterShort {
		t.Fatalf("expected EnterShort entry action, got %v", trade.EntryAction)
	}
	wantPnL := (15.0-8.0)*2 - 2*2*1.0
	if math.Abs(trade.PnL-wantPnL) > 1e-9 {
		t.Fatalf("expected pnl %v, got %v", wantPnL, trade.PnL)
	}
	if !trade.EntryTime.Before(trade.ExitTime) {
		t.Fatalf("expected entry_time < exit_time")
	}
}

func TestInsufficientCandlesForMaxLookbackIsFatal(t *testing.T) {
	closes := []float64{1, 2, 3}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := candle.NewSliceSource(instrument, timeframe, buildCandles(closes, start))

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(10)", rule.ActionEnterLong)
	strat := mustStrategy(t, []rule.Rule{entry}, nil, []string{"SMA(10)"}, sizing)

	_, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, len(closes)),
		InitialCapital: 10_000,
	}, applog.Noop())
	if err == nil {
		t.Fatalf("expected fatal error for insufficient candles")
	}
}

func TestEmptyCandleSourceIsFatal(t *testing.T) {
	source := candle.NewSliceSource(instrument, timeframe, nil)

	sizing, _ := strategy.NewQuantitySizing(1)
	entry := priceVsIndicatorRule(condition.OpGT, "SMA(5)", rule.ActionEnterLong)
	strat := mustStrategy(t, []rule.Rule{entry}, nil, []string{"SMA(5)"}, sizing)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := Run(context.Background(), source, strat, Config{
		Instrument: instrument, Timeframe: timeframe,
		StartInclusive: start, EndInclusive: start.AddDate(0, 0, 10),
		InitialCapital: 10_000,
	}, applog.Noop())
	if err == nil {
		t.Fatalf("expected fatal no-data error for an empty candle source")
	}
}
