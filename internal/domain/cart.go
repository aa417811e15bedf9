package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CartLine is one basket entry keyed by product name.
// Price and Currency are captured when the line is first added and may be absent.
type CartLine struct {
	Name     string
	Quantity int
	Price    decimal.NullDecimal
	Currency currency.Unit
}

type cartLineJSON struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price,omitempty"`
	Currency string      `json:"currency,omitempty"`
}

func (l CartLine) MarshalJSON() ([]byte, error) {
	out := cartLineJSON{
		Name:     l.Name,
		Quantity: l.Quantity,
	}
	if l.Price.Valid {
		out.Price = json.Number(l.Price.Decimal.String())
	}
	if HasCurrency(l.Currency) {
		out.Currency = l.Currency.String()
	}
	return json.Marshal(out)
}

func (l *CartLine) UnmarshalJSON(data []byte) error {
	var in cartLineJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	line := CartLine{
		Name:     in.Name,
		Quantity: in.Quantity,
	}

	if in.Price != "" {
		price, err := decimal.NewFromString(in.Price.String())
		if err != nil {
			return fmt.Errorf("price[%s] is not valid: %w", in.Price, err)
		}
		line.Price = decimal.NewNullDecimal(price)
	}

	if in.Currency != "" {
		unit, err := currency.ParseISO(in.Currency)
		if err != nil {
			return fmt.Errorf("currency[%s] is not valid: %w", in.Currency, err)
		}
		line.Currency = unit
	}

	*l = line
	return nil
}

func CloneLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return []CartLine{}
	}
	out := make([]CartLine, len(lines))
	copy(out, lines)
	return out
}
