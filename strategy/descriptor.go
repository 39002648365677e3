package strategy

import "github.com/archwright/barstate/condition"

// Descriptor is the already-parsed, in-memory strategy description the
// core consumes. Parsing the on-disk representation is backtestcfg's job.
type Descriptor struct {
	StrategyName   string            `yaml:"strategy_name" json:"strategy_name" validate:"required"`
	Instruments    []string          `yaml:"instruments" json:"instruments" validate:"required,min=1,dive,required"`
	Timeframes     []string          `yaml:"timeframes" json:"timeframes" validate:"required,min=1,dive,required"`
	PositionSizing *SizingDescriptor `yaml:"position_sizing" json:"position_sizing"`
	EntryRules     []RuleDescriptor  `yaml:"entry_rules" json:"entry_rules" validate:"required,min=1,dive"`
	ExitRules      []RuleDescriptor  `yaml:"exit_rules" json:"exit_rules" validate:"dive"`
}

// SizingDescriptor is the wire shape of a Sizing policy.
type SizingDescriptor struct {
	Method       string  `yaml:"method" json:"method" validate:"required,oneof=Quantity CapitalBased"`
	Value        float64 `yaml:"value" json:"value" validate:"gt=0"`
	IsPercentage bool    `yaml:"is_percentage" json:"is_percentage"`
}

// RuleDescriptor is the wire shape of a Rule.
type RuleDescriptor struct {
	RuleName  string               `yaml:"rule_name" json:"rule_name" validate:"required"`
	Action    string               `yaml:"action" json:"action" validate:"required,oneof=EnterLong ExitLong EnterShort ExitShort"`
	Condition condition.Descriptor `yaml:"condition" json:"condition" validate:"required"`
}
