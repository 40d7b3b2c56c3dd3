package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TaxType tells whether a product price already includes tax
type TaxType int

const (
	TaxTypeExclusive TaxType = iota
	TaxTypeInclusive
)

var taxTypeNames = []string{"exclusive", "inclusive"}

func (t TaxType) String() string { return nameOf(taxTypeNames, int(t)) }

func (t TaxType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TaxType) UnmarshalJSON(data []byte) error {
	i, err := unmarshalName(data, taxTypeNames, "tax type")
	*t = TaxType(i)
	return err
}

func (t TaxType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TaxType) Scan(value interface{}) error {
	*t = TaxType(scanInt(value))
	return nil
}
