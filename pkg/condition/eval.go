package condition

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTypeMismatch        = errors.New("condition value does not match fact type")
	ErrUnsupportedOperator = errors.New("operator not supported for fact")
	ErrInvalidNode         = errors.New("invalid condition node")
)

// Evaluate reports whether facts satisfy the tree rooted at n. A nil node
// matches everything. A condition on a fact that is absent never matches.
func Evaluate(n Node, facts Facts) (bool, error) {
	switch n := n.(type) {
	case nil:
		return true, nil
	case *Group:
		return evalGroup(n, facts)
	case *Condition:
		return evalCondition(n, facts)
	default:
		return false, ErrInvalidNode
	}
}

func evalGroup(g *Group, facts Facts) (bool, error) {
	switch g.Logic {
	case LogicAnd:
		for _, child := range g.Children {
			ok, err := Evaluate(child, facts)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case LogicOr:
		for _, child := range g.Children {
			ok, err := Evaluate(child, facts)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown logic %q", ErrInvalidNode, g.Logic)
	}
}

func evalCondition(c *Condition, facts Facts) (bool, error) {
	fact, ok := facts[c.Field]
	if !ok || fact.IsNull() {
		return false, nil
	}

	if fact.Kind() == ValueList {
		return evalList(c, fact)
	}

	switch c.Operator {
	case OpIn, OpNotIn:
		if c.Value.Kind() != ValueList {
			return false, mismatch(c, fact)
		}
		found := false
		for _, item := range c.Value.Items() {
			if item.Kind() != fact.Kind() {
				return false, mismatch(c, fact)
			}
			if item.equal(fact) {
				found = true
				break
			}
		}
		return found == (c.Operator == OpIn), nil
	case OpContains:
		if fact.Kind() != ValueString || c.Value.Kind() != ValueString {
			return false, unsupported(c, fact)
		}
		return strings.Contains(strings.ToLower(fact.Str()), strings.ToLower(c.Value.Str())), nil
	}

	if c.Value.Kind() != fact.Kind() {
		return false, mismatch(c, fact)
	}

	switch c.Operator {
	case OpEq:
		return fact.equal(c.Value), nil
	case OpNeq:
		return !fact.equal(c.Value), nil
	case OpGt, OpGte, OpLt, OpLte:
		if fact.Kind() != ValueNumber {
			return false, unsupported(c, fact)
		}
		cmp := fact.Num().Cmp(c.Value.Num())
		switch c.Operator {
		case OpGt:
			return cmp > 0, nil
		case OpGte:
			return cmp >= 0, nil
		case OpLt:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	default:
		return false, unsupported(c, fact)
	}
}

// evalList handles facts that are lists, such as the categories in an order
func evalList(c *Condition, fact Value) (bool, error) {
	switch c.Operator {
	case OpContains:
		if c.Value.Kind() == ValueList {
			return false, mismatch(c, fact)
		}
		return listHas(fact, c.Value), nil
	case OpIn, OpNotIn:
		if c.Value.Kind() != ValueList {
			return false, mismatch(c, fact)
		}
		hit := false
		for _, item := range c.Value.Items() {
			if listHas(fact, item) {
				hit = true
				break
			}
		}
		return hit == (c.Operator == OpIn), nil
	default:
		return false, unsupported(c, fact)
	}
}

// listHas matches string members case-insensitively
func listHas(list, v Value) bool {
	for _, item := range list.Items() {
		if item.Kind() == ValueString && v.Kind() == ValueString {
			if strings.EqualFold(item.Str(), v.Str()) {
				return true
			}
			continue
		}
		if item.equal(v) {
			return true
		}
	}
	return false
}

func mismatch(c *Condition, fact Value) error {
	return fmt.Errorf("%w: %s is %s", ErrTypeMismatch, c.Field, fact.Kind())
}

func unsupported(c *Condition, fact Value) error {
	return fmt.Errorf("%w: %s on %s %s", ErrUnsupportedOperator, c.Operator, fact.Kind(), c.Field)
}

// Referenced returns the distinct fact names used by the tree
func Referenced(n Node) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case *Group:
			for _, c := range n.Children {
				walk(c)
			}
		case *Condition:
			if !seen[n.Field] {
				seen[n.Field] = true
				out = append(out, n.Field)
			}
		}
	}
	walk(n)
	return out
}
