package condition

import (
	"strings"

	"github.com/archwright/barstate/xerrors"
)

// Descriptor is the wire/JSON-YAML shape of a condition, tagged by Type.
// Build recursively compiles a Descriptor tree into a Condition, rejecting
// malformed trees at construction time rather than at evaluation time.
type Descriptor struct {
	Type string `yaml:"type" json:"type" validate:"required,oneof=Price Indicator PriceIndicator CrossesAbove CrossesBelow AND OR"`

	Field        string   `yaml:"field,omitempty" json:"field,omitempty"`
	CompareField string   `yaml:"compare_field,omitempty" json:"compare_field,omitempty"`
	Value        *float64 `yaml:"value,omitempty" json:"value,omitempty"`
	Operator     string   `yaml:"operator,omitempty" json:"operator,omitempty"`

	Indicator      string `yaml:"indicator,omitempty" json:"indicator,omitempty"`
	OtherIndicator string `yaml:"other_indicator,omitempty" json:"other_indicator,omitempty"`

	Indicator1 string `yaml:"indicator1,omitempty" json:"indicator1,omitempty"`
	Indicator2 string `yaml:"indicator2,omitempty" json:"indicator2,omitempty"`

	Children []Descriptor `yaml:"children,omitempty" json:"children,omitempty"`
}

// Build compiles a Descriptor tree into a Condition, validating
// construction invariants (non-empty indicator names, distinct names in
// cross/indicator-vs-indicator comparisons, non-zero composite children)
// as it recurses.
func Build(d Descriptor) (Condition, error) {
	switch d.Type {
	case "Price":
		field, err := parseField(d.Field)
		if err != nil {
			return Condition{}, err
		}
		op, err := parseOperator(d.Operator)
		if err != nil {
			return Condition{}, err
		}
		c := Condition{Kind: KindPrice, Field: field, Op: op, Value: d.Value}
		if d.CompareField != "" {
			cf, err := parseField(d.CompareField)
			if err != nil {
				return Condition{}, err
			}
			c.CompareField = &cf
		}
		if c.Value == nil && c.CompareField == nil {
			return Condition{}, xerrors.New(xerrors.CodeInvalidCondition, "Price condition needs value or compare_field")
		}
		return c, nil

	case "Indicator":
		if d.Indicator == "" {
			return Condition{}, xerrors.New(xerrors.CodeInvalidCondition, "Indicator condition requires a non-empty indicator name")
		}
		op, err := parseOperator(d.Operator)
		if err != nil {
			return Condition{}, err
		}
		c := Condition{Kind: KindIndicator, IndicatorName: d.Indicator, Op: op, Value: d.Value}
		if d.OtherIndicator != "" {
			if d.OtherIndicator == d.Indicator {
				return Condition{}, xerrors.Newf(xerrors.CodeInvalidCondition, "Indicator condition must reference two distinct names, got %q twice", d.Indicator)
			}
			other := d.OtherIndicator
			c.OtherIndicatorName = &other
		}
		if c.Value == nil && c.OtherIndicatorName == nil {
			return Condition{}, xerrors.New(xerrors.CodeInvalidCondition, "Indicator condition needs value or other_indicator")
		}
		return c, nil

	case "PriceIndicator":
		field, err := parseField(d.Field)
		if err != nil {
			return Condition{}, err
		}
		if d.Indicator == "" {
			return Condition{}, xerrors.New(xerrors.CodeInvalidCondition, "PriceIndicator condition requires a non-empty indicator name")
		}
		op, err := parseOperator(d.Operator)
		if err != nil {
			return Condition{}, err
		}
		return Condition{Kind: KindPriceIndicator, Field: field, IndicatorName: d.Indicator, Op: op}, nil

	case "CrossesAbove", "CrossesBelow":
		if d.Indicator1 == "" || d.Indicator2 == "" {
			return Condition{}, xerrors.New(xerrors.CodeInvalidCondition, "cross condition requires indicator1 and indicator2")
		}
		if d.Indicator1 == d.Indicator2 {
			return Condition{}, xerrors.Newf(xerrors.CodeInvalidCondition, "cross condition must reference two distinct names, got %q twice", d.Indicator1)
		}
		ct := CrossesAbove
		if d.Type == "CrossesBelow" {
			ct = CrossesBelow
		}
		return Condition{Kind: KindIndicatorCross, Name1: d.Indicator1, Name2: d.Indicator2, CrossType: ct}, nil

	case "AND", "OR":
		if len(d.Children) == 0 {
			return Condition{}, xerrors.Newf(xerrors.CodeInvalidCondition, "%s condition requires at least one child", d.Type)
		}
		children := make([]Condition, 0, len(d.Children))
		for _, childDesc := range d.Children {
			child, err := Build(childDesc)
			if err != nil {
				return Condition{}, err
			}
			children = append(children, child)
		}
		kind := KindAnd
		if d.Type == "OR" {
			kind = KindOr
		}
		return Condition{Kind: kind, Children: children}, nil

	default:
		return Condition{}, xerrors.Newf(xerrors.CodeInvalidCondition, "unknown condition type %q", d.Type)
	}
}

func parseField(s string) (PriceField, error) {
	switch strings.ToLower(s) {
	case "open":
		return FieldOpen, nil
	case "high":
		return FieldHigh, nil
	case "low":
		return FieldLow, nil
	case "close":
		return FieldClose, nil
	default:
		return "", xerrors.Newf(xerrors.CodeInvalidCondition, "unknown price field %q", s)
	}
}

func parseOperator(s string) (Operator, error) {
	switch s {
	case ">", "GT":
		return OpGT, nil
	case "<", "LT":
		return OpLT, nil
	case ">=", "GTE":
		return OpGTE, nil
	case "<=", "LTE":
		return OpLTE, nil
	case "==", "EQ":
		return OpEQ, nil
	default:
		return "", xerrors.Newf(xerrors.CodeInvalidCondition, "unknown comparison operator %q", s)
	}
}
