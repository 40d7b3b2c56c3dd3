package pricing

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got.String())
}

func TestPercentageDiscount(t *testing.T) {
	s := New(d("100"))
	s.SetDiscountValue(d("20"))

	assertDec(t, "80.00", s.FinalPrice())
	assertDec(t, "20", s.DiscountAmount())
	assert.Equal(t, ModePercentage, s.Mode())
}

func TestSwitchToFixedKeepsAmount(t *testing.T) {
	s := New(d("100"))
	s.SetDiscountValue(d("20"))
	s.SetDiscountMode(ModeFixed)

	assert.Equal(t, ModeFixed, s.Mode())
	assertDec(t, "20.00", s.DiscountValue())
	assertDec(t, "80.00", s.FinalPrice())
}

func TestSwitchModeConvertsTenPercentOfFifty(t *testing.T) {
	s := New(d("50"))
	s.SetDiscountValue(d("10"))
	s.SetDiscountMode(ModeFixed)
	assertDec(t, "5", s.DiscountValue())

	s.SetDiscountValue(d("5"))
	s.SetDiscountMode(ModePercentage)
	assertDec(t, "10", s.DiscountValue())
	assertDec(t, "45", s.FinalPrice())
}

func TestFinalPriceAboveBaseIsCapped(t *testing.T) {
	s := New(d("50"))
	s.SetFinalPrice(d("60"))

	assertDec(t, "50.00", s.FinalPrice())
	assertDec(t, "0", s.DiscountValue())
	assert.Equal(t, []string{WarnFinalAboveBase}, s.Warnings())
}

func TestZeroBasePriceNeverDividesByZero(t *testing.T) {
	s := New(decimal.Zero, WithMode(ModePercentage))
	s.SetDiscountValue(d("50"))
	assertDec(t, "0.00", s.FinalPrice())

	s.SetFinalPrice(d("10"))
	assertDec(t, "0", s.FinalPrice())
	assertDec(t, "0", s.DiscountValue())

	s.SetDiscountMode(ModeFixed)
	s.SetDiscountMode(ModePercentage)
	assertDec(t, "0", s.DiscountValue())
}

func TestBasePriceIsRounded(t *testing.T) {
	s := New(decimal.Zero)
	s.SetBasePrice(d("33.333"))
	assertDec(t, "33.33", s.BasePrice())
	assertDec(t, "33.33", s.FinalPrice())

	s.SetBasePrice(d("10.005"))
	assertDec(t, "10.01", s.BasePrice())
}

func TestSetBasePrice(t *testing.T) {
	t.Run("percentage discount scales with base", func(t *testing.T) {
		s := New(d("100"))
		s.SetDiscountValue(d("25"))
		s.SetBasePrice(d("200"))

		assertDec(t, "25", s.DiscountValue())
		assertDec(t, "150", s.FinalPrice())
	})

	t.Run("fixed discount keeps its amount", func(t *testing.T) {
		s := New(d("100"), WithMode(ModeFixed))
		s.SetDiscountValue(d("30"))
		s.SetBasePrice(d("80"))

		assertDec(t, "30", s.DiscountValue())
		assertDec(t, "50", s.FinalPrice())
		assert.Empty(t, s.Warnings())
	})

	t.Run("fixed discount is capped by a lower base", func(t *testing.T) {
		s := New(d("100"), WithMode(ModeFixed))
		s.SetDiscountValue(d("30"))
		s.SetBasePrice(d("20"))

		assertDec(t, "20", s.DiscountValue())
		assertDec(t, "0", s.FinalPrice())
		assert.Equal(t, []string{WarnDiscountAboveBase}, s.Warnings())
	})

	t.Run("negative base is clamped", func(t *testing.T) {
		s := New(d("10"))
		s.SetBasePrice(d("-5"))
		assertDec(t, "0", s.BasePrice())
		assertDec(t, "0", s.FinalPrice())
	})
}

func TestSetDiscountValueClamps(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		value     string
		wantValue string
		wantFinal string
		warning   string
	}{
		{"percentage above 100", ModePercentage, "150", "100", "0", WarnPercentageAbove100},
		{"percentage negative", ModePercentage, "-3", "0", "40", ""},
		{"percentage rounds", ModePercentage, "12.345", "12.35", "35.06", ""},
		{"fixed above base", ModeFixed, "55", "40", "0", WarnDiscountAboveBase},
		{"fixed within range", ModeFixed, "15.5", "15.5", "24.5", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(d("40"), WithMode(tt.mode))
			s.SetDiscountValue(d(tt.value))

			assertDec(t, tt.wantValue, s.DiscountValue())
			assertDec(t, tt.wantFinal, s.FinalPrice())
			if tt.warning == "" {
				assert.Empty(t, s.Warnings())
			} else {
				assert.Equal(t, []string{tt.warning}, s.Warnings())
			}
		})
	}
}

func TestSetFinalPriceDerivesValue(t *testing.T) {
	s := New(d("80"))
	s.SetFinalPrice(d("60"))
	assertDec(t, "25", s.DiscountValue())

	s.SetDiscountMode(ModeFixed)
	s.SetFinalPrice(d("70"))
	assertDec(t, "10", s.DiscountValue())
	assertDec(t, "70", s.FinalPrice())
}

func TestSetDiscountModeIsIdempotent(t *testing.T) {
	var emitted int
	s := New(d("100"), WithOnChange(func(Emission) { emitted++ }))
	s.SetDiscountValue(d("12.5"))
	s.SetDiscountMode(ModeFixed)
	before := s.Snapshot()
	count := emitted

	s.SetDiscountMode(ModeFixed)

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, count, emitted)
}

func TestModeRoundTripWithinTolerance(t *testing.T) {
	tolerance := d("0.01")
	cases := []struct{ base, percent string }{
		{"100", "20"},
		{"33.33", "15"},
		{"1", "33.33"},
		{"0.03", "50"},
		{"19.99", "7.5"},
	}
	for _, tc := range cases {
		s := New(d(tc.base))
		s.SetDiscountValue(d(tc.percent))
		final := s.FinalPrice()

		s.SetDiscountMode(ModeFixed)
		s.SetDiscountMode(ModePercentage)

		diff := s.DiscountValue().Sub(d(tc.percent)).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance), "base %s: %s -> %s", tc.base, tc.percent, s.DiscountValue())
		assert.True(t, final.Equal(s.FinalPrice()))
	}
}

func TestFinalPriceStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New(d("10"))

	for i := 0; i < 2000; i++ {
		v := decimal.NewFromFloat(rng.Float64()*300 - 50)
		switch rng.Intn(5) {
		case 0:
			s.SetBasePrice(v)
		case 1:
			s.SetDiscountValue(v)
		case 2:
			s.SetFinalPrice(v)
		case 3:
			if rng.Intn(2) == 0 {
				s.SetDiscountMode(ModeFixed)
			} else {
				s.SetDiscountMode(ModePercentage)
			}
		case 4:
			s.ToggleDiscount()
		}

		require.False(t, s.FinalPrice().IsNegative(), "step %d", i)
		require.True(t, s.FinalPrice().LessThanOrEqual(s.BasePrice()), "step %d", i)
		require.True(t, s.FinalPrice().Equal(s.FinalPrice().Round(2)), "step %d", i)
		require.True(t, s.BasePrice().Equal(s.BasePrice().Round(2)), "step %d", i)
		if s.Mode() == ModePercentage {
			require.True(t, s.DiscountValue().LessThanOrEqual(hundred), "step %d", i)
		} else {
			require.True(t, s.DiscountValue().LessThanOrEqual(s.BasePrice()), "step %d", i)
		}
	}
}

func TestEmission(t *testing.T) {
	var last Emission
	s := New(d("120"), WithOnChange(func(e Emission) { last = e }))
	s.SetDiscountValue(d("25"))

	assertDec(t, "120", last.Price)
	assert.Nil(t, last.CompareAtPrice)

	s.SetDiscountEnabled(true)
	assertDec(t, "90", last.Price)
	require.NotNil(t, last.CompareAtPrice)
	assertDec(t, "120", *last.CompareAtPrice)

	s.ToggleDiscount()
	assertDec(t, "120", last.Price)
	assert.Nil(t, last.CompareAtPrice)
	assertDec(t, "25", s.DiscountValue())
}

func TestFromPersisted(t *testing.T) {
	t.Run("discounted record", func(t *testing.T) {
		compareAt := d("50")
		s := FromPersisted(d("45"), &compareAt)

		assert.True(t, s.DiscountEnabled())
		assert.Equal(t, ModePercentage, s.Mode())
		assertDec(t, "50", s.BasePrice())
		assertDec(t, "10", s.DiscountValue())
		assertDec(t, "45", s.FinalPrice())
	})

	t.Run("compare-at not above price", func(t *testing.T) {
		compareAt := d("30")
		s := FromPersisted(d("30"), &compareAt, WithMode(ModeFixed))

		assert.False(t, s.DiscountEnabled())
		assert.Equal(t, ModePercentage, s.Mode())
		assertDec(t, "30", s.BasePrice())
		assertDec(t, "30", s.FinalPrice())
	})

	t.Run("compare-at equal after rounding", func(t *testing.T) {
		compareAt := d("10.004")
		s := FromPersisted(d("10.00"), &compareAt)

		assert.False(t, s.DiscountEnabled())
		assertDec(t, "10", s.BasePrice())
		assertDec(t, "0", s.DiscountValue())
		assert.Nil(t, s.Emission().CompareAtPrice)
	})

	t.Run("plain price", func(t *testing.T) {
		s := FromPersisted(d("9.999"), nil)
		assertDec(t, "10", s.BasePrice())
		assert.Nil(t, s.Emission().CompareAtPrice)
	})
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"":      "0",
		"   ":   "0",
		"NaN":   "0",
		"-Inf":  "0",
		"abc":   "0",
		"12.5":  "12.5",
		" 7 ":   "7",
		"-3.25": "-3.25",
		"1e2":   "100",
	}
	for in, want := range tests {
		assertDec(t, want, ParseAmount(in))
	}
}

func TestInputUnmarshal(t *testing.T) {
	var payload struct {
		A Input `json:"a"`
		B Input `json:"b"`
		C Input `json:"c"`
		D Input `json:"d"`
		E Input `json:"e"`
	}
	err := json.Unmarshal([]byte(`{"a": 12.75, "b": "", "c": "NaN", "d": null, "e": "4.5"}`), &payload)
	require.NoError(t, err)

	assertDec(t, "12.75", payload.A.Decimal())
	assert.True(t, payload.B.IsSet())
	assertDec(t, "0", payload.B.Decimal())
	assertDec(t, "0", payload.C.Decimal())
	assert.False(t, payload.D.IsSet())
	assertDec(t, "4.5", payload.E.Decimal())
}

func TestApply(t *testing.T) {
	s := New(decimal.Zero)
	edits := []Edit{
		{Op: OpSetBasePrice, Value: NewInput(d("100"))},
		{Op: OpSetDiscountEnabled, Enabled: true},
		{Op: OpSetDiscountValue, Value: NewInput(d("20"))},
		{Op: OpSetDiscountMode, Mode: ModeFixed},
	}
	for _, e := range edits {
		require.NoError(t, s.Apply(e))
	}

	assertDec(t, "80", s.FinalPrice())
	assertDec(t, "20", s.DiscountValue())

	err := s.Apply(Edit{Op: "explode"})
	assert.ErrorIs(t, err, ErrUnknownOp)
}

func TestFromFloatGuardsNonFinite(t *testing.T) {
	assertDec(t, "0", FromFloat(math.NaN()))
	assertDec(t, "0", FromFloat(math.Inf(1)))
	assertDec(t, "2.5", FromFloat(2.5))
}
