package condition

import (
	"fmt"
	"sort"
	"strings"
)

// MaxDepth is the deepest nesting of groups accepted by Validate
const MaxDepth = 5

// FieldType is the type of fact a field resolves to
type FieldType string

const (
	TypeNumber     FieldType = "number"
	TypeString     FieldType = "string"
	TypeBool       FieldType = "boolean"
	TypeStringList FieldType = "string_list"
)

// Facts available when evaluating order eligibility
const (
	FieldOrderSubtotal        = "order.subtotal"
	FieldOrderItemCount       = "order.item_count"
	FieldOrderPaymentMethod   = "order.payment_method"
	FieldOrderCategories      = "order.categories"
	FieldOrderProducts        = "order.products"
	FieldCustomerTotalOrders  = "customer.total_orders"
	FieldCustomerTotalSpent   = "customer.total_spent"
	FieldCustomerPoints       = "customer.points_balance"
	FieldCustomerTags         = "customer.tags"
	FieldCustomerMarketingOpt = "customer.accepts_marketing"
)

// Schema maps field names to their types
type Schema map[string]FieldType

// OrderSchema describes the facts built for an order
var OrderSchema = Schema{
	FieldOrderSubtotal:        TypeNumber,
	FieldOrderItemCount:       TypeNumber,
	FieldOrderPaymentMethod:   TypeString,
	FieldOrderCategories:      TypeStringList,
	FieldOrderProducts:        TypeStringList,
	FieldCustomerTotalOrders:  TypeNumber,
	FieldCustomerTotalSpent:   TypeNumber,
	FieldCustomerPoints:       TypeNumber,
	FieldCustomerTags:         TypeStringList,
	FieldCustomerMarketingOpt: TypeBool,
}

// FieldNames returns the sorted field names of the schema
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var operatorsByType = map[FieldType][]Operator{
	TypeNumber:     {OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpNotIn},
	TypeString:     {OpEq, OpNeq, OpIn, OpNotIn, OpContains},
	TypeBool:       {OpEq, OpNeq},
	TypeStringList: {OpContains, OpIn, OpNotIn},
}

// Operators returns the operators allowed for a field type
func Operators(t FieldType) []Operator {
	return operatorsByType[t]
}

// Problem is a single validation failure located by its path in the tree,
// e.g. "children[1].children[0].value".
type Problem struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError collects every problem found in a tree
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Path + ": " + p.Message
	}
	return "invalid conditions: " + strings.Join(msgs, "; ")
}

// Validate checks a tree against a schema. A nil node is valid.
func Validate(n Node, schema Schema) error {
	if n == nil {
		return nil
	}
	v := &validator{schema: schema}
	v.node(n, "root", 1)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

type validator struct {
	schema   Schema
	problems []Problem
}

func (v *validator) add(path, format string, args ...interface{}) {
	v.problems = append(v.problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) node(n Node, path string, depth int) {
	switch n := n.(type) {
	case *Group:
		v.group(n, path, depth)
	case *Condition:
		v.condition(n, path)
	default:
		v.add(path, "unsupported node")
	}
}

func (v *validator) group(g *Group, path string, depth int) {
	if depth > MaxDepth {
		v.add(path, "groups may be nested at most %d levels", MaxDepth)
		return
	}
	if g.Logic != LogicAnd && g.Logic != LogicOr {
		v.add(path+".logic", "must be %q or %q", LogicAnd, LogicOr)
	}
	if len(g.Children) == 0 {
		v.add(path+".children", "group must contain at least one rule")
	}
	for i, child := range g.Children {
		v.node(child, fmt.Sprintf("%s.children[%d]", path, i), depth+1)
	}
}

func (v *validator) condition(c *Condition, path string) {
	fieldType, ok := v.schema[c.Field]
	if !ok {
		v.add(path+".field", "unknown field %q", c.Field)
		return
	}
	if !allowed(fieldType, c.Operator) {
		v.add(path+".operator", "operator %q is not valid for %s field %q", c.Operator, fieldType, c.Field)
		return
	}

	want := scalarKind(fieldType)
	switch c.Operator {
	case OpIn, OpNotIn:
		if c.Value.Kind() != ValueList || len(c.Value.Items()) == 0 {
			v.add(path+".value", "must be a non-empty list")
			return
		}
		for i, item := range c.Value.Items() {
			if item.Kind() != want {
				v.add(fmt.Sprintf("%s.value[%d]", path, i), "must be a %s", want)
			}
		}
	default:
		if c.Value.Kind() != want {
			v.add(path+".value", "must be a %s", want)
		}
	}
}

func allowed(t FieldType, op Operator) bool {
	for _, candidate := range operatorsByType[t] {
		if candidate == op {
			return true
		}
	}
	return false
}

// scalarKind is the kind of a single element for the field type
func scalarKind(t FieldType) ValueKind {
	switch t {
	case TypeNumber:
		return ValueNumber
	case TypeBool:
		return ValueBool
	default:
		return ValueString
	}
}
