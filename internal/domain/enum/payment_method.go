package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod is a way a customer can pay for an order
type PaymentMethod int

const (
	PaymentMethodCash PaymentMethod = iota
	PaymentMethodCard
	PaymentMethodMpesa
	PaymentMethodStripe
	PaymentMethodPaystack
	PaymentMethodBankTransfer
)

var paymentMethodNames = []string{"cash", "card", "mpesa", "stripe", "paystack", "bank_transfer"}

// PaymentMethods lists every supported method in display order
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentMethodNames))
	for i := range paymentMethodNames {
		out[i] = PaymentMethod(i)
	}
	return out
}

func (m PaymentMethod) String() string { return nameOf(paymentMethodNames, int(m)) }

// ParsePaymentMethod parses a method name
func ParsePaymentMethod(name string) (PaymentMethod, bool) {
	i, ok := indexOf(paymentMethodNames, name)
	return PaymentMethod(i), ok
}

// RequiresCredentials reports whether the method talks to a payment provider
func (m PaymentMethod) RequiresCredentials() bool {
	return m == PaymentMethodMpesa || m == PaymentMethodStripe || m == PaymentMethodPaystack
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, paymentMethodNames, "payment method")
	*m = PaymentMethod(i)
	return err
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	*m = PaymentMethod(scanInt(value))
	return nil
}
