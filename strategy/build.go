package strategy

import (
	"sort"

	"github.com/archwright/barstate/applog"
	"github.com/archwright/barstate/condition"
	"github.com/archwright/barstate/rule"
	"github.com/archwright/barstate/xerrors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Build validates and compiles a Descriptor into a Strategy. Rule
// descriptors compile through condition.Build, and position_sizing
// defaults to Quantity(1) with a warning when absent.
func Build(desc Descriptor, log *applog.Logger) (*Strategy, error) {
	if err := validate.Struct(desc); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInvalidStrategy, "strategy description failed validation", err)
	}

	sizing, err := buildSizing(desc.PositionSizing, log)
	if err != nil {
		return nil, err
	}

	entryRules, err := buildRules(desc.EntryRules)
	if err != nil {
		return nil, err
	}
	exitRules, err := buildRules(desc.ExitRules)
	if err != nil {
		return nil, err
	}

	return New(desc.StrategyName, desc.Instruments, desc.Timeframes, requiredIndicatorNames(desc), entryRules, exitRules, sizing)
}

func buildSizing(d *SizingDescriptor, log *applog.Logger) (Sizing, error) {
	if d == nil {
		log.Warn("position_sizing missing, defaulting to Quantity(1)")
		return NewQuantitySizing(1)
	}
	switch d.Method {
	case "Quantity":
		return NewQuantitySizing(int(d.Value))
	case "CapitalBased":
		return NewCapitalBasedSizing(d.Value, d.IsPercentage)
	default:
		return Sizing{}, xerrors.Newf(xerrors.CodeInvalidSizing, "unknown sizing method %q", d.Method)
	}
}

func buildRules(descs []RuleDescriptor) ([]rule.Rule, error) {
	out := make([]rule.Rule, 0, len(descs))
	for _, d := range descs {
		cond, err := condition.Build(d.Condition)
		if err != nil {
			return nil, xerrors.Wrapf(xerrors.CodeInvalidRule, err, "rule %q", d.RuleName)
		}
		r, err := rule.New(d.RuleName, cond, rule.SignalAction(d.Action))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// requiredIndicatorNames walks every rule's condition tree and collects the
// distinct indicator names it references, so the caller can hand exactly
// the needed set to indicator.Pipeline.Build.
func requiredIndicatorNames(desc Descriptor) []string {
	seen := map[string]struct{}{}
	var walk func(d condition.Descriptor)
	walk = func(d condition.Descriptor) {
		if d.Indicator != "" {
			seen[d.Indicator] = struct{}{}
		}
		if d.OtherIndicator != "" {
			seen[d.OtherIndicator] = struct{}{}
		}
		if d.Indicator1 != "" {
			seen[d.Indicator1] = struct{}{}
		}
		if d.Indicator2 != "" {
			seen[d.Indicator2] = struct{}{}
		}
		for _, child := range d.Children {
			walk(child)
		}
	}
	for _, r := range desc.EntryRules {
		walk(r.Condition)
	}
	for _, r := range desc.ExitRules {
		walk(r.Condition)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
