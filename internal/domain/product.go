package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ProductID is either numeric or textual on the wire and keeps that shape.
type ProductID struct {
	value   string
	numeric bool
}

func NumericProductID(id int64) ProductID {
	return ProductID{value: strconv.FormatInt(id, 10), numeric: true}
}

func StringProductID(id string) ProductID {
	return ProductID{value: id}
}

func (id ProductID) String() string {
	return id.value
}

func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID{value: n.String(), numeric: true}
	return nil
}

type Product struct {
	ID          ProductID
	Name        string
	Description string
	Price       decimal.Decimal
	Currency    currency.Unit
}

type productJSON struct {
	ID          ProductID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price"`
	Currency    string      `json:"currency"`
}

func (p Product) MarshalJSON() ([]byte, error) {
	out := productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
	}
	if HasCurrency(p.Currency) {
		out.Currency = p.Currency.String()
	}
	return json.Marshal(out)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var in productJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	product := Product{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
	}

	if in.Price != "" {
		price, err := decimal.NewFromString(in.Price.String())
		if err != nil {
			return fmt.Errorf("price[%s] is not valid: %w", in.Price, err)
		}
		product.Price = price
	}

	if in.Currency != "" {
		unit, err := currency.ParseISO(in.Currency)
		if err != nil {
			return fmt.Errorf("currency[%s] is not valid: %w", in.Currency, err)
		}
		product.Currency = unit
	}

	*p = product
	return nil
}
