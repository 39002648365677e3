package engine

import (
	"github.com/archwright/barstate/candle"
	"github.com/archwright/barstate/condition"
	"github.com/archwright/barstate/indicator"
)

// barSnapshot implements condition.Snapshot for one bar index into a
// candle series plus the indicator instances computed against it. It is
// cheap to build fresh per bar and is never retained across bars.
type barSnapshot struct {
	candle     candle.Candle
	index      int
	indicators map[string]indicator.Instance
}

func (s barSnapshot) PriceField(f condition.PriceField) float64 {
	switch f {
	case condition.FieldOpen:
		return s.candle.Open
	case condition.FieldHigh:
		return s.candle.High
	case condition.FieldLow:
		return s.candle.Low
	default:
		return s.candle.Close
	}
}

func (s barSnapshot) IndicatorValue(name string) (float64, bool) {
	in, ok := s.indicators[name]
	if !ok {
		return 0, false
	}
	return in.ValueAt(s.index)
}

func (s barSnapshot) IndicatorValuePrev(name string) (float64, bool) {
	in, ok := s.indicators[name]
	if !ok || s.index == 0 {
		return 0, false
	}
	return in.ValueAt(s.index - 1)
}
