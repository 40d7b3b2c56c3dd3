package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// OrderStatus represents the status of an order
type OrderStatus int

const (
	OrderStatusPending OrderStatus = iota
	OrderStatusCompleted
	OrderStatusCancelled
	OrderStatusRefunded
)

var orderStatusNames = []string{"pending", "completed", "cancelled", "refunded"}

func (s OrderStatus) String() string { return nameOf(orderStatusNames, int(s)) }

// ParseOrderStatus parses a status name
func ParseOrderStatus(name string) (OrderStatus, bool) {
	i, ok := indexOf(orderStatusNames, name)
	return OrderStatus(i), ok
}

// CanTransitionTo reports whether an order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	case OrderStatusCompleted:
		return next == OrderStatusRefunded
	default:
		return false
	}
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, orderStatusNames, "order status")
	*s = OrderStatus(i)
	return err
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	*s = OrderStatus(scanInt(value))
	return nil
}
