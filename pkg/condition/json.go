package condition

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// maxDecodeDepth bounds recursion while decoding untrusted payloads
const maxDecodeDepth = 32

var errTooDeep = errors.New("condition tree is nested too deeply")

type nodeJSON struct {
	Type     Kind              `json:"type"`
	Logic    Logic             `json:"logic,omitempty"`
	Children []json.RawMessage `json:"children,omitempty"`
	Field    string            `json:"field,omitempty"`
	Operator Operator          `json:"operator,omitempty"`
	Value    *Value            `json:"value,omitempty"`
}

// MarshalNode encodes a node and its descendants
func MarshalNode(n Node) ([]byte, error) {
	switch n := n.(type) {
	case *Condition:
		v := n.Value
		return json.Marshal(nodeJSON{Type: KindCondition, Field: n.Field, Operator: n.Operator, Value: &v})
	case *Group:
		children := make([]json.RawMessage, 0, len(n.Children))
		for _, c := range n.Children {
			raw, err := MarshalNode(c)
			if err != nil {
				return nil, err
			}
			children = append(children, raw)
		}
		return json.Marshal(nodeJSON{Type: KindGroup, Logic: n.Logic, Children: children})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("unsupported node %T", n)
	}
}

// UnmarshalNode decodes a node. A JSON null decodes to a nil Node.
func UnmarshalNode(data []byte) (Node, error) {
	return decodeNode(data, 0)
}

func decodeNode(data []byte, depth int) (Node, error) {
	if depth > maxDecodeDepth {
		return nil, errTooDeep
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch raw.Type {
	case KindCondition:
		c := &Condition{Field: raw.Field, Operator: raw.Operator}
		if raw.Value != nil {
			c.Value = *raw.Value
		}
		return c, nil
	case KindGroup:
		g := &Group{Logic: raw.Logic, Children: make([]Node, 0, len(raw.Children))}
		for i, child := range raw.Children {
			n, err := decodeNode(child, depth+1)
			if err != nil {
				return nil, err
			}
			if n == nil {
				return nil, fmt.Errorf("group child %d is null", i)
			}
			g.Children = append(g.Children, n)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", raw.Type)
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNumber:
		return []byte(v.num.String()), nil
	case ValueString:
		return json.Marshal(v.str)
	case ValueBool:
		return json.Marshal(v.b)
	case ValueList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromRaw(raw, true)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func fromRaw(raw interface{}, allowList bool) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Value{}, nil
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Value{}, err
		}
		return Number(d), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case []interface{}:
		if !allowList {
			return Value{}, errors.New("nested lists are not supported")
		}
		items := make([]Value, 0, len(x))
		for _, item := range x {
			v, err := fromRaw(item, false)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", raw)
	}
}

// Tree wraps an optional root node for storage in a JSONB column
type Tree struct {
	Root Node
}

// IsEmpty reports whether the tree has no root. An empty tree matches everything.
func (t Tree) IsEmpty() bool {
	return t.Root == nil
}

func (t Tree) MarshalJSON() ([]byte, error) {
	return MarshalNode(t.Root)
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	n, err := UnmarshalNode(data)
	if err != nil {
		return err
	}
	t.Root = n
	return nil
}

// Scan implements the sql.Scanner interface
func (t *Tree) Scan(value interface{}) error {
	if value == nil {
		t.Root = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan condition tree: unsupported type")
	}
	return t.UnmarshalJSON(data)
}

// Value implements the driver.Valuer interface
func (t Tree) Value() (driver.Value, error) {
	if t.Root == nil {
		return nil, nil
	}
	data, err := MarshalNode(t.Root)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
