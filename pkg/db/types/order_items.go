package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderItem is a product snapshot captured at purchase time. Price is the
// unit price at order time and is never recomputed from the live catalog.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	NameLocal  string `json:"name_local"`
	PriceUnits int    `json:"price_units"`
	Quantity   int    `json:"quantity"`
}

// Subtotal returns price x quantity for the line.
func (i OrderItem) Subtotal() int {
	return i.PriceUnits * i.Quantity
}

// OrderItems persists a list of line items as a JSON column.
type OrderItems []OrderItem

// Total returns the sum of all line subtotals.
func (o OrderItems) Total() int {
	total := 0
	for _, item := range o {
		total += item.Subtotal()
	}
	return total
}

// Value implements driver.Valuer.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("order items: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("order items: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*o = nil
		return nil
	}
	return json.Unmarshal(raw, o)
}
