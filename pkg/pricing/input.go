package pricing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts raw editor input into a decimal. Empty, non-numeric
// and non-finite input yields zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromFloat converts f into a decimal, mapping NaN and infinities to zero
func FromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// Input is a lenient JSON amount. It accepts numbers, numeric strings and
// null; anything that is not a finite number decodes to zero.
type Input struct {
	value decimal.Decimal
	set   bool
}

// NewInput wraps d as an Input
func NewInput(d decimal.Decimal) Input {
	return Input{value: d, set: true}
}

// Decimal returns the coerced value
func (in Input) Decimal() decimal.Decimal {
	return in.value
}

// IsSet reports whether the field was present and non-null in the payload
func (in Input) IsSet() bool {
	return in.set
}

func (in *Input) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*in = Input{}
		return nil
	}
	in.set = true
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			in.value = decimal.Zero
			return nil
		}
		in.value = ParseAmount(s)
		return nil
	}
	in.value = ParseAmount(string(data))
	return nil
}

func (in Input) MarshalJSON() ([]byte, error) {
	if !in.set {
		return []byte("null"), nil
	}
	return []byte(in.value.String()), nil
}

// Op names a single editor mutation
type Op string

const (
	OpSetBasePrice       Op = "set_base_price"
	OpSetDiscountValue   Op = "set_discount_value"
	OpSetFinalPrice      Op = "set_final_price"
	OpSetDiscountMode    Op = "set_discount_mode"
	OpSetDiscountEnabled Op = "set_discount_enabled"
)

// ErrUnknownOp is returned by Apply for an unrecognised edit
var ErrUnknownOp = errors.New("unknown pricing edit")

// Edit is one recorded editor mutation
type Edit struct {
	Op      Op    `json:"op"`
	Value   Input `json:"value"`
	Mode    Mode  `json:"mode,omitempty"`
	Enabled bool  `json:"enabled,omitempty"`
}

// Apply performs e on s
func (s *State) Apply(e Edit) error {
	switch e.Op {
	case OpSetBasePrice:
		s.SetBasePrice(e.Value.Decimal())
	case OpSetDiscountValue:
		s.SetDiscountValue(e.Value.Decimal())
	case OpSetFinalPrice:
		s.SetFinalPrice(e.Value.Decimal())
	case OpSetDiscountMode:
		s.SetDiscountMode(ParseMode(string(e.Mode)))
	case OpSetDiscountEnabled:
		s.SetDiscountEnabled(e.Enabled)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
	return nil
}
