// Package condition models campaign and coupon eligibility rules as a small
// typed tree of groups and comparisons, and evaluates them against facts
// collected from an order.
package condition

import (
	"github.com/shopspring/decimal"
)

// Kind discriminates tree nodes
type Kind string

const (
	KindCondition Kind = "condition"
	KindGroup     Kind = "group"
)

// Logic joins the children of a group
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// Operator compares a fact with a condition value
type Operator string

const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
	OpContains Operator = "contains"
)

// Node is either a *Condition or a *Group
type Node interface {
	Kind() Kind
	sealed()
}

// Condition is a single comparison of a fact with a value
type Condition struct {
	Field    string
	Operator Operator
	Value    Value
}

func (*Condition) Kind() Kind { return KindCondition }
func (*Condition) sealed()    {}

// Group combines child nodes with a single logic operator
type Group struct {
	Logic    Logic
	Children []Node
}

func (*Group) Kind() Kind { return KindGroup }
func (*Group) sealed()    {}

// And builds an "and" group
func And(children ...Node) *Group {
	return &Group{Logic: LogicAnd, Children: children}
}

// Or builds an "or" group
func Or(children ...Node) *Group {
	return &Group{Logic: LogicOr, Children: children}
}

// Compare builds a condition
func Compare(field string, op Operator, v Value) *Condition {
	return &Condition{Field: field, Operator: op, Value: v}
}

// ValueKind is the type carried by a Value
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueString
	ValueBool
	ValueList
)

func (k ValueKind) String() string {
	switch k {
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueBool:
		return "boolean"
	case ValueList:
		return "list"
	default:
		return "null"
	}
}

// Value is a scalar or a flat list of scalars
type Value struct {
	kind ValueKind
	num  decimal.Decimal
	str  string
	b    bool
	list []Value
}

func Number(d decimal.Decimal) Value { return Value{kind: ValueNumber, num: d} }
func Int(i int64) Value              { return Number(decimal.NewFromInt(i)) }
func String(s string) Value          { return Value{kind: ValueString, str: s} }
func Bool(b bool) Value              { return Value{kind: ValueBool, b: b} }

// List builds a list value
func List(items ...Value) Value {
	return Value{kind: ValueList, list: items}
}

// Strings builds a list of string values
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return List(list...)
}

func (v Value) Kind() ValueKind      { return v.kind }
func (v Value) Num() decimal.Decimal { return v.num }
func (v Value) Str() string          { return v.str }
func (v Value) Bool() bool           { return v.b }
func (v Value) Items() []Value       { return v.list }
func (v Value) IsNull() bool         { return v.kind == ValueNull }

// equal compares two scalar values of the same kind
func (v Value) equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueNumber:
		return v.num.Equal(o.num)
	case ValueString:
		return v.str == o.str
	case ValueBool:
		return v.b == o.b
	case ValueNull:
		return true
	}
	return false
}

// Facts are the named values a tree is evaluated against
type Facts map[string]Value
