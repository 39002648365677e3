// Package strategy holds the position-gated rule evaluation state machine
// and the descriptor compiler that turns an in-memory strategy description
// into one.
package strategy

import (
	"github.com/archwright/barstate/condition"
	"github.com/archwright/barstate/rule"
	"github.com/archwright/barstate/xerrors"
)

// PositionState classifies the sign of the current position quantity.
type PositionState int

const (
	Flat PositionState = iota
	Long
	Short
)

// SizingMethod is the closed set of position-sizing policies.
type SizingMethod int

const (
	SizingQuantity SizingMethod = iota
	SizingCapitalBased
)

// Sizing is a validated sizing policy: either a fixed share count, or a
// capital allocation (absolute or a percentage of initial capital).
type Sizing struct {
	Method       SizingMethod
	Quantity     int     // SizingQuantity: exact share count, >=1.
	Value        float64 // SizingCapitalBased: allocated capital or percentage, >0.
	IsPercentage bool
}

// NewQuantitySizing builds a fixed-quantity sizing policy.
func NewQuantitySizing(n int) (Sizing, error) {
	if n < 1 {
		return Sizing{}, xerrors.Newf(xerrors.CodeInvalidSizing, "quantity sizing requires n>=1, got %d", n)
	}
	return Sizing{Method: SizingQuantity, Quantity: n}, nil
}

// NewCapitalBasedSizing builds a capital-allocation sizing policy.
func NewCapitalBasedSizing(value float64, isPercentage bool) (Sizing, error) {
	if value <= 0 {
		return Sizing{}, xerrors.Newf(xerrors.CodeInvalidSizing, "capital-based sizing requires value>0, got %v", value)
	}
	if isPercentage && (value <= 0 || value > 100) {
		return Sizing{}, xerrors.Newf(xerrors.CodeInvalidSizing, "percentage sizing requires 0<value<=100, got %v", value)
	}
	return Sizing{Method: SizingCapitalBased, Value: value, IsPercentage: isPercentage}, nil
}

// Strategy holds ordered entry/exit rule lists, sizing parameters, the
// instruments/timeframes/indicator names it requires, and the current
// position it gates rule evaluation on.
type Strategy struct {
	Name           string
	Instruments    []string
	Timeframes     []string
	IndicatorNames []string
	EntryRules     []rule.Rule
	ExitRules      []rule.Rule
	Sizing         Sizing

	position PositionState
}

// New constructs a Strategy, requiring a non-empty name and at least one
// instrument, timeframe, and entry rule. Exit rules may be empty.
func New(name string, instruments, timeframes, indicatorNames []string, entryRules, exitRules []rule.Rule, sizing Sizing) (*Strategy, error) {
	if name == "" {
		return nil, xerrors.New(xerrors.CodeInvalidStrategy, "strategy name must not be empty")
	}
	if len(instruments) == 0 {
		return nil, xerrors.New(xerrors.CodeInvalidStrategy, "strategy must require at least one instrument")
	}
	if len(timeframes) == 0 {
		return nil, xerrors.New(xerrors.CodeInvalidStrategy, "strategy must require at least one timeframe")
	}
	if len(entryRules) == 0 {
		return nil, xerrors.New(xerrors.CodeInvalidStrategy, "strategy must have at least one entry rule")
	}

	return &Strategy{
		Name:           name,
		Instruments:    instruments,
		Timeframes:     timeframes,
		IndicatorNames: indicatorNames,
		EntryRules:     entryRules,
		ExitRules:      exitRules,
		Sizing:         sizing,
		position:       Flat,
	}, nil
}

// Position reports the strategy's current cached position state.
func (s *Strategy) Position() PositionState {
	return s.position
}

// Evaluate runs the position-gated rule protocol: while flat, the first
// entry rule to return EnterLong/EnterShort wins; while in a position, the
// first exit rule whose action matches the current side wins. The returned
// action, if any, synchronously updates s.position — the caller (the event
// loop) is assumed to execute it at the current bar.
func (s *Strategy) Evaluate(snap condition.Snapshot) rule.SignalAction {
	action := rule.ActionNone

	switch s.position {
	case Flat:
		for _, r := range s.EntryRules {
			a := r.Evaluate(snap)
			if a == rule.ActionEnterLong || a == rule.ActionEnterShort {
				action = a
				break
			}
		}
	case Long:
		for _, r := range s.ExitRules {
			a := r.Evaluate(snap)
			if a == rule.ActionExitLong {
				action = a
				break
			}
		}
	case Short:
		for _, r := range s.ExitRules {
			a := r.Evaluate(snap)
			if a == rule.ActionExitShort {
				action = a
				break
			}
		}
	}

	switch action {
	case rule.ActionEnterLong:
		s.position = Long
	case rule.ActionEnterShort:
		s.position = Short
	case rule.ActionExitLong, rule.ActionExitShort:
		s.position = Flat
	}

	return action
}
