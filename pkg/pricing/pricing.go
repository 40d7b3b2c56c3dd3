// Package pricing keeps a product's base price, discount and final price
// consistent while any one of them is being edited.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Mode is the representation of a discount value
type Mode string

const (
	ModePercentage Mode = "percentage"
	ModeFixed      Mode = "fixed"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModePercentage || m == ModeFixed
}

// ParseMode parses a mode name, falling back to percentage
func ParseMode(s string) Mode {
	if m := Mode(s); m.Valid() {
		return m
	}
	return ModePercentage
}

// Advisory messages recorded when an input had to be clamped
const (
	WarnFinalAboveBase     = "Final price cannot exceed original price"
	WarnDiscountAboveBase  = "Discount cannot exceed original price"
	WarnPercentageAbove100 = "Percentage cannot exceed 100%"
)

var hundred = decimal.NewFromInt(100)

// Emission is the flattened value handed to the owner of a State.
// CompareAtPrice is only set while a discount is enabled.
type Emission struct {
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
}

// Snapshot is a read-only view of a State
type Snapshot struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	DiscountEnabled bool            `json:"discount_enabled"`
	DiscountMode    Mode            `json:"discount_mode"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// conversion remembers the last percentage -> fixed switch so that switching
// straight back restores the exact percentage.
type conversion struct {
	percent decimal.Decimal
	amount  decimal.Decimal
	base    decimal.Decimal
}

// State holds one pricing editor session. It is not safe for concurrent use.
type State struct {
	basePrice     decimal.Decimal
	discountValue decimal.Decimal
	finalPrice    decimal.Decimal
	enabled       bool
	mode          Mode

	warnings []string
	carry    *conversion
	onChange func(Emission)
}

// Option configures a new State
type Option func(*State)

// WithMode sets the initial discount mode
func WithMode(m Mode) Option {
	return func(s *State) {
		if m.Valid() {
			s.mode = m
		}
	}
}

// WithDiscountEnabled sets the initial discount flag
func WithDiscountEnabled(enabled bool) Option {
	return func(s *State) { s.enabled = enabled }
}

// WithOnChange registers the callback invoked after every mutation
func WithOnChange(fn func(Emission)) Option {
	return func(s *State) { s.onChange = fn }
}

// New creates a State for the given base price with no discount applied.
// The callback is not invoked for the initial value.
func New(basePrice decimal.Decimal, opts ...Option) *State {
	s := &State{mode: ModePercentage}
	for _, opt := range opts {
		opt(s)
	}
	s.basePrice = round(nonNegative(basePrice))
	s.finalPrice = s.basePrice
	return s
}

// FromPersisted rebuilds a State from a stored {price, compare_at_price}
// pair. The discount mode is not stored, so the state opens in percentage
// mode. A compare-at price above the price means a discount is active.
func FromPersisted(price decimal.Decimal, compareAt *decimal.Decimal, opts ...Option) *State {
	price = round(nonNegative(price))
	if compareAt == nil {
		s := New(price, opts...)
		s.mode = ModePercentage
		return s
	}
	base := round(*compareAt)
	if !base.GreaterThan(price) {
		s := New(price, opts...)
		s.mode = ModePercentage
		return s
	}

	s := New(base, opts...)
	s.mode = ModePercentage
	s.enabled = true
	s.applyFinalPrice(price)
	s.warnings = nil
	return s
}

// SetBasePrice changes the undiscounted price. A percentage discount scales
// with the new base; a fixed discount keeps its amount unless that now
// exceeds the base, in which case it is capped.
func (s *State) SetBasePrice(v decimal.Decimal) {
	s.begin()
	s.basePrice = round(nonNegative(v))
	if s.mode == ModeFixed && s.discountValue.GreaterThan(s.basePrice) {
		s.discountValue = s.basePrice
		s.warn(WarnDiscountAboveBase)
	}
	s.recompute()
	s.emit()
}

// SetDiscountValue changes the discount magnitude in the current mode
func (s *State) SetDiscountValue(v decimal.Decimal) {
	s.begin()
	v = nonNegative(v)
	switch s.mode {
	case ModePercentage:
		if v.GreaterThan(hundred) {
			v = hundred
			s.warn(WarnPercentageAbove100)
		}
	case ModeFixed:
		if v.GreaterThan(s.basePrice) {
			v = s.basePrice
			s.warn(WarnDiscountAboveBase)
		}
	}
	s.discountValue = round(v)
	s.recompute()
	s.emit()
}

// SetFinalPrice sets the discounted price directly and derives the discount
// value from it. Values above the base price are capped.
func (s *State) SetFinalPrice(v decimal.Decimal) {
	s.begin()
	s.applyFinalPrice(v)
	s.emit()
}

// SetDiscountMode converts the current discount amount into mode m. The final
// price does not change. Setting the current mode again is a no-op.
func (s *State) SetDiscountMode(m Mode) {
	if !m.Valid() || m == s.mode {
		return
	}
	s.warnings = nil

	amount := s.DiscountAmount()
	switch m {
	case ModeFixed:
		s.carry = &conversion{percent: s.discountValue, amount: amount, base: s.basePrice}
		s.discountValue = amount
	case ModePercentage:
		if c := s.carry; c != nil && c.amount.Equal(amount) && c.base.Equal(s.basePrice) {
			s.discountValue = c.percent
		} else {
			s.discountValue = percentOf(amount, s.basePrice)
		}
		s.carry = nil
	}
	s.mode = m
	s.emit()
}

// SetDiscountEnabled switches the discount on or off without losing the
// discount value.
func (s *State) SetDiscountEnabled(enabled bool) {
	s.begin()
	s.enabled = enabled
	s.emit()
}

// ToggleDiscount flips the discount flag
func (s *State) ToggleDiscount() {
	s.SetDiscountEnabled(!s.enabled)
}

// Emission returns the value to persist on the owning record
func (s *State) Emission() Emission {
	if !s.enabled {
		return Emission{Price: s.basePrice}
	}
	compareAt := s.basePrice
	return Emission{Price: s.finalPrice, CompareAtPrice: &compareAt}
}

// BasePrice is the undiscounted price
func (s *State) BasePrice() decimal.Decimal { return s.basePrice }

// DiscountValue is the discount in the current mode: a percentage or an amount
func (s *State) DiscountValue() decimal.Decimal { return s.discountValue }

// FinalPrice is the price after the discount, or the base price when the
// discount is off
func (s *State) FinalPrice() decimal.Decimal { return s.finalPrice }

// Mode is how DiscountValue is interpreted
func (s *State) Mode() Mode { return s.mode }

// DiscountEnabled reports whether a discount is applied
func (s *State) DiscountEnabled() bool { return s.enabled }

// DiscountAmount is the currency amount taken off the base price
func (s *State) DiscountAmount() decimal.Decimal {
	return s.basePrice.Sub(s.finalPrice)
}

// Warnings returns the advisory messages produced by the last mutation
func (s *State) Warnings() []string {
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Snapshot returns a copy of the current values
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		BasePrice:       s.basePrice,
		DiscountEnabled: s.enabled,
		DiscountMode:    s.mode,
		DiscountValue:   s.discountValue,
		DiscountAmount:  s.DiscountAmount(),
		FinalPrice:      s.finalPrice,
		Warnings:        s.Warnings(),
	}
}

func (s *State) applyFinalPrice(v decimal.Decimal) {
	v = nonNegative(v)
	if v.GreaterThan(s.basePrice) {
		v = s.basePrice
		s.warn(WarnFinalAboveBase)
	}
	s.finalPrice = round(v)

	amount := s.basePrice.Sub(s.finalPrice)
	if s.mode == ModePercentage {
		s.discountValue = percentOf(amount, s.basePrice)
	} else {
		s.discountValue = amount
	}
}

// recompute derives the final price from base price and discount value
func (s *State) recompute() {
	var amount decimal.Decimal
	switch s.mode {
	case ModePercentage:
		amount = s.basePrice.Mul(s.discountValue).Div(hundred)
	case ModeFixed:
		amount = decimal.Min(s.discountValue, s.basePrice)
	}
	s.finalPrice = round(decimal.Max(decimal.Zero, s.basePrice.Sub(amount)))
}

func (s *State) begin() {
	s.warnings = nil
	s.carry = nil
}

func (s *State) warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

func (s *State) emit() {
	if s.onChange != nil {
		s.onChange(s.Emission())
	}
}

// percentOf returns amount as a percentage of base, 0 when base is 0
func percentOf(amount, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	p := round(amount.Mul(hundred).Div(base))
	return decimal.Min(decimal.Max(p, decimal.Zero), hundred)
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
