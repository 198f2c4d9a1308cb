package evaluation

import (
	"fmt"
	"strings"
)

// Type classifies a qualitative judgment
type Type string

const (
	TypeComparison Type = "COMPARISON"
	TypeRange      Type = "RANGE"
	TypeRanking    Type = "RANKING"
	TypeThreshold  Type = "THRESHOLD"
)

// Types lists every supported evaluation type
var Types = []Type{TypeComparison, TypeRange, TypeRanking, TypeThreshold}

// ParseType accepts the canonical name in any case
func ParseType(s string) (Type, error) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown evaluation type %q", s)
}

// Operator is the relation asserted by a comparison or threshold
type Operator string

const (
	OpGreater      Operator = "GREATER"
	OpGreaterEqual Operator = "GREATER_EQUAL"
	OpLess         Operator = "LESS"
	OpLessEqual    Operator = "LESS_EQUAL"
	OpEqual        Operator = "EQUAL"
)

var operatorSymbols = map[Operator]string{
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpEqual:        "=",
}

// ParseOperator accepts operator names (GREATER) or symbols (>).
// NOT_EQUAL is recognised only to be rejected: its feasible set is not convex.
func ParseOperator(s string) (Operator, error) {
	in := strings.TrimSpace(s)
	upper := strings.ToUpper(in)
	for op, sym := range operatorSymbols {
		if upper == string(op) || in == sym {
			return op, nil
		}
	}
	if in == "==" {
		return OpEqual, nil
	}
	if upper == "NOT_EQUAL" || in == "!=" {
		return "", fmt.Errorf("operator %q cannot be expressed as a convex linear constraint", s)
	}
	return "", fmt.Errorf("unknown operator %q", s)
}

// Valid reports whether op is one of the supported operators
func (op Operator) Valid() bool {
	_, ok := operatorSymbols[op]
	return ok
}

// Symbol returns the mathematical symbol of the operator
func (op Operator) Symbol() string {
	return operatorSymbols[op]
}

// Strict reports whether the operator excludes equality
func (op Operator) Strict() bool {
	return op == OpGreater || op == OpLess
}

// Mirror returns the operator with its operands swapped (A > B <=> B < A)
func (op Operator) Mirror() Operator {
	switch op {
	case OpGreater:
		return OpLess
	case OpGreaterEqual:
		return OpLessEqual
	case OpLess:
		return OpGreater
	case OpLessEqual:
		return OpGreaterEqual
	}
	return op
}
