// Package rule pairs a condition tree with a signal action.
package rule

import (
	"github.com/archwright/barstate/condition"
	"github.com/archwright/barstate/xerrors"
)

// SignalAction is the closed set of outcomes a rule may produce. None is
// the identity value a rule returns when its condition does not hold.
type SignalAction string

const (
	ActionNone       SignalAction = ""
	ActionEnterLong  SignalAction = "EnterLong"
	ActionExitLong   SignalAction = "ExitLong"
	ActionEnterShort SignalAction = "EnterShort"
	ActionExitShort  SignalAction = "ExitShort"
)

// Rule is (name, condition, action). Evaluate returns Action when Condition
// holds against snap, else ActionNone.
type Rule struct {
	Name      string
	Condition condition.Condition
	Action    SignalAction
}

// New constructs a Rule, rejecting an empty name or a None action at
// construction time.
func New(name string, cond condition.Condition, action SignalAction) (Rule, error) {
	if name == "" {
		return Rule{}, xerrors.New(xerrors.CodeInvalidRule, "rule name must not be empty")
	}
	switch action {
	case ActionEnterLong, ActionExitLong, ActionEnterShort, ActionExitShort:
	default:
		return Rule{}, xerrors.Newf(xerrors.CodeInvalidRule, "rule %q: invalid action %q", name, action)
	}
	return Rule{Name: name, Condition: cond, Action: action}, nil
}

// Evaluate returns r.Action if r.Condition holds against snap, else ActionNone.
func (r Rule) Evaluate(snap condition.Snapshot) SignalAction {
	if condition.Eval(r.Condition, snap) {
		return r.Action
	}
	return ActionNone
}
