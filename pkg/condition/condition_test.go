package condition

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(s string) Value {
	return Number(decimal.RequireFromString(s))
}

func orderFacts() Facts {
	return Facts{
		FieldOrderSubtotal:        num("120.50"),
		FieldOrderItemCount:       Int(3),
		FieldOrderPaymentMethod:   String("mpesa"),
		FieldOrderCategories:      Strings("shoes", "socks"),
		FieldCustomerTotalOrders:  Int(4),
		FieldCustomerTags:         Strings("vip"),
		FieldCustomerMarketingOpt: Bool(true),
	}
}

func TestEvaluateComparisons(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"gte true", Compare(FieldOrderSubtotal, OpGte, num("120.5")), true},
		{"gt false on equal", Compare(FieldOrderSubtotal, OpGt, num("120.50")), false},
		{"lt", Compare(FieldOrderItemCount, OpLt, Int(5)), true},
		{"lte", Compare(FieldOrderItemCount, OpLte, Int(2)), false},
		{"eq string", Compare(FieldOrderPaymentMethod, OpEq, String("mpesa")), true},
		{"neq string", Compare(FieldOrderPaymentMethod, OpNeq, String("cash")), true},
		{"in scalar", Compare(FieldOrderPaymentMethod, OpIn, Strings("card", "mpesa")), true},
		{"not_in scalar", Compare(FieldOrderPaymentMethod, OpNotIn, Strings("card", "cash")), true},
		{"contains substring", Compare(FieldOrderPaymentMethod, OpContains, String("PES")), true},
		{"bool eq", Compare(FieldCustomerMarketingOpt, OpEq, Bool(true)), true},
		{"list contains", Compare(FieldOrderCategories, OpContains, String("socks")), true},
		{"list contains miss", Compare(FieldOrderCategories, OpContains, String("hats")), false},
		{"list in any", Compare(FieldOrderCategories, OpIn, Strings("hats", "shoes")), true},
		{"list not_in", Compare(FieldOrderCategories, OpNotIn, Strings("hats")), true},
		{"list contains any case", Compare(FieldCustomerTags, OpContains, String("VIP")), true},
		{"list not_in any case", Compare(FieldOrderCategories, OpNotIn, Strings("SHOES")), false},
		{"missing fact", Compare(FieldCustomerTotalSpent, OpGte, Int(0)), false},
		{"missing fact neq", Compare(FieldCustomerTotalSpent, OpNeq, Int(0)), false},
	}

	facts := orderFacts()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.node, facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateGroups(t *testing.T) {
	facts := orderFacts()

	vipOrBig := Or(
		Compare(FieldCustomerTags, OpContains, String("vip")),
		Compare(FieldOrderSubtotal, OpGte, Int(500)),
	)
	tree := And(
		Compare(FieldOrderItemCount, OpGte, Int(2)),
		vipOrBig,
	)

	ok, err := Evaluate(tree, facts)
	require.NoError(t, err)
	assert.True(t, ok)

	facts[FieldCustomerTags] = Strings()
	ok, err = Evaluate(tree, facts)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Evaluate(nil, facts)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvaluateTypeMismatch(t *testing.T) {
	_, err := Evaluate(Compare(FieldOrderSubtotal, OpGte, String("100")), orderFacts())
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = Evaluate(Compare(FieldOrderPaymentMethod, OpGt, String("a")), orderFacts())
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	_, err = Evaluate(&Group{Logic: "xor"}, orderFacts())
	assert.ErrorIs(t, err, ErrInvalidNode)
}

func TestValidate(t *testing.T) {
	t.Run("valid tree", func(t *testing.T) {
		tree := And(
			Compare(FieldOrderSubtotal, OpGte, Int(100)),
			Or(
				Compare(FieldOrderCategories, OpContains, String("shoes")),
				Compare(FieldOrderPaymentMethod, OpIn, Strings("card")),
			),
		)
		assert.NoError(t, Validate(tree, OrderSchema))
	})

	t.Run("collects every problem", func(t *testing.T) {
		tree := &Group{Logic: "xor", Children: []Node{
			Compare("order.colour", OpEq, String("red")),
			Compare(FieldOrderSubtotal, OpContains, String("1")),
			Compare(FieldOrderItemCount, OpIn, List()),
			Compare(FieldOrderSubtotal, OpGte, String("10")),
			Or(),
		}}

		err := Validate(tree, OrderSchema)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)

		paths := make([]string, 0, len(verr.Problems))
		for _, p := range verr.Problems {
			paths = append(paths, p.Path)
		}
		assert.Equal(t, []string{
			"root.logic",
			"root.children[0].field",
			"root.children[1].operator",
			"root.children[2].value",
			"root.children[3].value",
			"root.children[4].children",
		}, paths)
	})

	t.Run("depth limit", func(t *testing.T) {
		var n Node = Compare(FieldOrderItemCount, OpGt, Int(1))
		for i := 0; i < MaxDepth+1; i++ {
			n = And(n)
		}
		err := Validate(n, OrderSchema)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Problems, 1)
	})

	t.Run("nil tree", func(t *testing.T) {
		assert.NoError(t, Validate(nil, OrderSchema))
	})
}

func TestTreeJSON(t *testing.T) {
	payload := `{
		"type": "group",
		"logic": "and",
		"children": [
			{"type": "condition", "field": "order.subtotal", "operator": "gte", "value": 99.95},
			{"type": "group", "logic": "or", "children": [
				{"type": "condition", "field": "order.categories", "operator": "in", "value": ["shoes", "bags"]},
				{"type": "condition", "field": "customer.accepts_marketing", "operator": "eq", "value": true}
			]}
		]
	}`

	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(payload), &tree))
	require.NoError(t, Validate(tree.Root, OrderSchema))

	root, ok := tree.Root.(*Group)
	require.True(t, ok)
	assert.Equal(t, LogicAnd, root.Logic)
	require.Len(t, root.Children, 2)

	first := root.Children[0].(*Condition)
	assert.True(t, decimal.RequireFromString("99.95").Equal(first.Value.Num()))

	ok2, err := Evaluate(tree.Root, orderFacts())
	require.NoError(t, err)
	assert.True(t, ok2)

	out, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))

	assert.ElementsMatch(t, []string{FieldOrderSubtotal, FieldOrderCategories, FieldCustomerMarketingOpt}, Referenced(tree.Root))
}

func TestTreeDecodeErrors(t *testing.T) {
	var tree Tree
	assert.Error(t, json.Unmarshal([]byte(`{"type":"loop"}`), &tree))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"group","logic":"and","children":[null]}`), &tree))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"condition","field":"x","operator":"in","value":[[1]]}`), &tree))

	require.NoError(t, json.Unmarshal([]byte(`null`), &tree))
	assert.True(t, tree.IsEmpty())
}

func TestTreeSQL(t *testing.T) {
	tree := Tree{Root: Compare(FieldOrderItemCount, OpGt, Int(2))}
	v, err := tree.Value()
	require.NoError(t, err)

	var scanned Tree
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	c, ok := scanned.Root.(*Condition)
	require.True(t, ok)
	assert.Equal(t, FieldOrderItemCount, c.Field)

	empty, err := Tree{}.Value()
	require.NoError(t, err)
	assert.Nil(t, empty)
	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsEmpty())
}
