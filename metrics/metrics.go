// Package metrics derives aggregate performance statistics from a
// finished run's equity curve and trade log.
package metrics

import (
	"math"

	"github.com/archwright/barstate/portfolio"
)

// Result is the performance summary computed once after the event loop
// completes.
type Result struct {
	TotalPnL        float64
	TotalReturnPct  float64
	MaxDrawdownPct  float64
	RoundTripTrades int
	WinRate         float64
	ProfitFactor    float64
	AvgWinPnL       float64
	AvgLossPnL      float64

	// SharpeRatio stays nil until activated; PerBarReturns already
	// produces the series a future activation would consume.
	SharpeRatio *float64
}

// Compute derives Result from the initial capital, the recorded equity
// curve, and the closed trade log.
func Compute(initialCapital float64, equity []portfolio.Sample, trades []portfolio.Trade) Result {
	r := Result{RoundTripTrades: len(trades)}

	finalEquity := initialCapital
	if len(equity) > 0 {
		finalEquity = equity[len(equity)-1].TotalEquity
	}
	r.TotalPnL = finalEquity - initialCapital
	if initialCapital != 0 {
		r.TotalReturnPct = r.TotalPnL / initialCapital
	}

	r.MaxDrawdownPct = maxDrawdown(initialCapital, equity)

	var grossProfit, grossLoss float64
	var wins, losses int
	for _, t := range trades {
		if t.PnL > 0 {
			grossProfit += t.PnL
			wins++
		} else if t.PnL < 0 {
			grossLoss += t.PnL
			losses++
		}
	}

	if r.RoundTripTrades > 0 {
		r.WinRate = float64(wins) / float64(r.RoundTripTrades)
	}

	absLoss := math.Abs(grossLoss)
	switch {
	case absLoss < 1e-9 && grossProfit > 0:
		r.ProfitFactor = math.Inf(1)
	case absLoss < 1e-9:
		r.ProfitFactor = 0
	default:
		r.ProfitFactor = grossProfit / absLoss
	}

	if wins > 0 {
		r.AvgWinPnL = grossProfit / float64(wins)
	}
	if losses > 0 {
		r.AvgLossPnL = grossLoss / float64(losses)
	}

	return r
}

// maxDrawdown walks the equity curve tracking the running peak (seeded at
// initialCapital) and the largest relative decline from it.
func maxDrawdown(initialCapital float64, equity []portfolio.Sample) float64 {
	peak := initialCapital
	worst := 0.0
	for _, s := range equity {
		if s.TotalEquity > peak {
			peak = s.TotalEquity
		}
		if peak <= 0 {
			continue
		}
		dd := (peak - s.TotalEquity) / peak
		if dd > worst {
			worst = dd
		}
	}
	return worst
}

// PerBarReturns computes the simple per-sample return series, the input
// a future Sharpe/Sortino activation would consume.
func PerBarReturns(equity []portfolio.Sample) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].TotalEquity
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (equity[i].TotalEquity-prev)/prev)
	}
	return out
}
