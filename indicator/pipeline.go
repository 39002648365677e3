package indicator

import (
	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/candle"
	"github.com/archwright/barstate/xerrors"
	"go.uber.org/zap"
)

// Pipeline builds a set of named indicator instances from their string
// forms and a primary candle series, calculating each exactly once before
// the event loop starts.
type Pipeline struct {
	log *applog.Logger
}

// NewPipeline constructs a Pipeline. A nil logger is fine.
func NewPipeline(log *applog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Build calculates every named indicator against candles and returns a
// name->Instance map. Any unknown base, non-positive period, or
// insufficient-input condition is fatal and aborts the whole build.
func (p *Pipeline) Build(names []string, candles []candle.Candle) (map[string]Instance, error) {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	out := make(map[string]Instance, len(names))
	for _, name := range names {
		parsed, err := ParseName(name)
		if err != nil {
			return nil, err
		}

		lookback := parsed.Lookback()
		if len(closes) <= lookback {
			return nil, xerrors.Wrap(xerrors.CodeInsufficientData,
				"insufficient data to calculate "+name,
				xerrors.NewInsufficientDataError(lookback+1, len(closes), name))
		}

		var results []float64
		switch parsed.Base {
		case BaseSMA:
			results = computeSMA(closes, parsed.Period)
		case BaseRSI:
			results = computeRSI(closes, parsed.Period)
		default:
			return nil, xerrors.Newf(xerrors.CodeUnknownIndicator, "unhandled indicator base %q", parsed.Base)
		}

		if len(results)+lookback != len(closes) {
			return nil, xerrors.Newf(xerrors.CodeIndicatorCalcFailed,
				"%s: result length %d + lookback %d does not equal input length %d", name, len(results), lookback, len(closes))
		}

		out[name] = Instance{Name: name, Lookback: lookback, Results: results}
		p.log.Debug("indicator calculated", zap.String("name", name), zap.Int("lookback", lookback), zap.Int("results", len(results)))
	}
	return out, nil
}
