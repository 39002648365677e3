package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/archwright/barstate/portfolio"
)

func sample(ts time.Time, equity float64) portfolio.Sample {
	return portfolio.Sample{Timestamp: ts, TotalEquity: equity}
}

func TestComputeTotalPnLAndReturn(t *testing.T) {
	t0 := time.Now()
	equity := []portfolio.Sample{
		sample(t0, 10_000),
		sample(t0.Add(time.Hour), 10_500),
	}
	r := Compute(10_000, equity, nil)
	if math.Abs(r.TotalPnL-500) > 1e-9 {
		t.Fatalf("expected total_pnl 500, got %v", r.TotalPnL)
	}
	if math.Abs(r.TotalReturnPct-0.05) > 1e-9 {
		t.Fatalf("expected total_return_pct 0.05, got %v", r.TotalReturnPct)
	}
}

func TestMaxDrawdownSeededAtInitialCapital(t *testing.T) {
	t0 := time.Now()
	equity := []portfolio.Sample{
		sample(t0, 9_000), // below initial capital right away
		sample(t0.Add(time.Hour), 9_500),
	}
	r := Compute(10_000, equity, nil)
	want := (10_000.0 - 9_000.0) / 10_000.0
	if math.Abs(r.MaxDrawdownPct-want) > 1e-9 {
		t.Fatalf("expected max_drawdown_pct %v, got %v", want, r.MaxDrawdownPct)
	}
}

func TestProfitFactorEdgeCases(t *testing.T) {
	onlyWins := []portfolio.Trade{{PnL: 100}, {PnL: 50}}
	r := Compute(1000, nil, onlyWins)
	if !math.IsInf(r.ProfitFactor, 1) {
		t.Fatalf("expected +Inf profit factor with zero losses and positive profit, got %v", r.ProfitFactor)
	}

	noTrades := Compute(1000, nil, nil)
	if noTrades.ProfitFactor != 0 {
		t.Fatalf("expected 0 profit factor with no trades, got %v", noTrades.ProfitFactor)
	}
	if noTrades.WinRate != 0 {
		t.Fatalf("expected 0 win rate with no trades, got %v", noTrades.WinRate)
	}
}

func TestWinRateAndAverages(t *testing.T) {
	trades := []portfolio.Trade{{PnL: 100}, {PnL: -40}, {PnL: 60}, {PnL: -10}}
	r := Compute(1000, nil, trades)
	if math.Abs(r.WinRate-0.5) > 1e-9 {
		t.Fatalf("expected win_rate 0.5, got %v", r.WinRate)
	}
	if math.Abs(r.AvgWinPnL-80) > 1e-9 {
		t.Fatalf("expected avg_win_pnl 80, got %v", r.AvgWinPnL)
	}
	if math.Abs(r.AvgLossPnL-(-25)) > 1e-9 {
		t.Fatalf("expected avg_loss_pnl -25, got %v", r.AvgLossPnL)
	}
}

func TestSharpeRatioScaffoldLeftNil(t *testing.T) {
	r := Compute(1000, nil, nil)
	if r.SharpeRatio != nil {
		t.Fatalf("expected SharpeRatio to remain nil until activated, got %v", *r.SharpeRatio)
	}
}
