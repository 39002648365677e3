// Package indicator materializes named, lookback-bearing numeric series
// aligned to a primary candle series, once per backtest run.
package indicator

// Instance is one calculated indicator: its canonical name, the number of
// leading candles it cannot produce output for, and its result series.
// results[j] corresponds to input candle index j+Lookback.
type Instance struct {
	Name     string
	Lookback int
	Results  []float64
}

// ValueAt returns the indicator's value for candle index i, and whether it
// is present (i.e. i >= Lookback and within range).
func (in Instance) ValueAt(i int) (float64, bool) {
	if i < in.Lookback {
		return 0, false
	}
	j := i - in.Lookback
	if j >= len(in.Results) {
		return 0, false
	}
	return in.Results[j], true
}
