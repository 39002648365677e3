package candle

import (
	"context"
	"sort"
	"time"
)

// SliceSource is an in-memory Source backed by a fixed candle slice per
// (instrument, timeframe) pair, mainly for tests that hand-build a series.
type SliceSource struct {
	series map[InstrumentKey]map[TimeframeKey][]Candle
}

// NewSliceSource builds a SliceSource from one instrument/timeframe's
// candles. Candles must already be ascending by timestamp.
func NewSliceSource(instrument InstrumentKey, timeframe TimeframeKey, candles []Candle) *SliceSource {
	s := &SliceSource{series: map[InstrumentKey]map[TimeframeKey][]Candle{}}
	s.Add(instrument, timeframe, candles)
	return s
}

// Add registers (or replaces) the candle series for an instrument/timeframe.
func (s *SliceSource) Add(instrument InstrumentKey, timeframe TimeframeKey, candles []Candle) {
	if s.series[instrument] == nil {
		s.series[instrument] = map[TimeframeKey][]Candle{}
	}
	s.series[instrument][timeframe] = candles
}

func (s *SliceSource) QueryCandles(_ context.Context, instrument InstrumentKey, timeframe TimeframeKey, startInclusive, endInclusive time.Time) ([]Candle, error) {
	all := s.series[instrument][timeframe]
	idx := sort.Search(len(all), func(i int) bool {
		return !all[i].Timestamp.Before(startInclusive)
	})
	var out []Candle
	for ; idx < len(all) && !all[idx].Timestamp.After(endInclusive); idx++ {
		out = append(out, all[idx])
	}
	return out, nil
}
