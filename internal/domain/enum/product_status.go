package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// ProductStatus controls whether a product is sellable
type ProductStatus int

const (
	ProductStatusDraft ProductStatus = iota
	ProductStatusActive
	ProductStatusArchived
)

var productStatusNames = []string{"draft", "active", "archived"}

func (s ProductStatus) String() string { return nameOf(productStatusNames, int(s)) }

func ParseProductStatus(name string) (ProductStatus, bool) {
	i, ok := indexOf(productStatusNames, name)
	return ProductStatus(i), ok
}

func (s ProductStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ProductStatus) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, productStatusNames, "product status")
	*s = ProductStatus(i)
	return err
}

func (s ProductStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ProductStatus) Scan(value interface{}) error {
	*s = ProductStatus(scanInt(value))
	return nil
}
