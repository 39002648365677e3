package indicator

import (
	"regexp"
	"strconv"

	"github.com/archwright/barstate/xerrors"
)

// Base is the closed set of recognized indicator algorithms.
type Base string

const (
	BaseSMA Base = "SMA"
	BaseRSI Base = "RSI"
)

var nameGrammar = regexp.MustCompile(`^([A-Za-z]+)\((\d+)\)$`)

// Parsed is a name-string decomposed into its algorithm and period.
type Parsed struct {
	Name   string // canonical serialized form, e.g. "SMA(10)"
	Base   Base
	Period int
}

// ParseName parses a "BASE(period)" name string. A malformed name or an
// unknown base yields CodeUnknownIndicator and a non-positive period yields
// CodeInvalidPeriod; the pipeline reports either before the event loop
// starts.
func ParseName(name string) (Parsed, error) {
	m := nameGrammar.FindStringSubmatch(name)
	if m == nil {
		return Parsed{}, xerrors.Newf(xerrors.CodeUnknownIndicator, "malformed indicator name %q, expected BASE(period)", name)
	}

	period, err := strconv.Atoi(m[2])
	if err != nil || period <= 0 {
		return Parsed{}, xerrors.Newf(xerrors.CodeInvalidPeriod, "indicator %q: period must be a positive integer", name)
	}

	base := Base(m[1])
	switch base {
	case BaseSMA, BaseRSI:
	default:
		return Parsed{}, xerrors.Newf(xerrors.CodeUnknownIndicator, "unknown indicator base %q in %q", m[1], name)
	}

	return Parsed{Name: name, Base: base, Period: period}, nil
}

// Lookback is a pure function of the algorithm and its period.
func (p Parsed) Lookback() int {
	switch p.Base {
	case BaseSMA:
		return p.Period - 1
	case BaseRSI:
		return p.Period
	default:
		return 0
	}
}
