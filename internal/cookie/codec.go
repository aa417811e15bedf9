// Package cookie mirrors cart contents into the client-held "cart" cookie and
// reads it back for server-rendered pages.
package cookie

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	Name   = "cart"
	MaxAge = int(7 * 24 * time.Hour / time.Second)
)

// Encode renders lines as URL-encoded JSON.
func Encode(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}

	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	// spaces as %20 to match encodeURIComponent readers
	return strings.ReplaceAll(url.QueryEscape(string(data)), "+", "%20"), nil
}

// New builds the cart cookie for lines.
func New(lines []domain.CartLine) (*http.Cookie, error) {
	value, err := Encode(lines)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   MaxAge,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

type rawLine struct {
	Name     *string         `json:"name"`
	Quantity json.RawMessage `json:"quantity"`
	Price    json.RawMessage `json:"price"`
	Currency json.RawMessage `json:"currency"`
}

// Decode parses a cookie value. Anything that is not a JSON array yields no
// lines; entries without a string name or a numeric quantity are skipped.
// Quantities are floored and lines that end up empty are dropped.
func Decode(value string) []domain.CartLine {
	lines := []domain.CartLine{}
	if value == "" {
		return lines
	}

	decoded, err := url.PathUnescape(value)
	if err != nil {
		return lines
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(decoded), &entries); err != nil {
		return lines
	}

	for _, entry := range entries {
		line, ok := decodeLine(entry)
		if !ok {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func decodeLine(entry json.RawMessage) (domain.CartLine, bool) {
	var raw rawLine
	if err := json.Unmarshal(entry, &raw); err != nil {
		return domain.CartLine{}, false
	}
	if raw.Name == nil {
		return domain.CartLine{}, false
	}

	// strings and nulls are not quantities
	var q float64
	if err := json.Unmarshal(raw.Quantity, &q); err != nil || !isNumber(raw.Quantity) {
		return domain.CartLine{}, false
	}
	q = math.Floor(q)
	if q < 1 || q > math.MaxInt32 {
		return domain.CartLine{}, false
	}

	line := domain.CartLine{
		Name:     *raw.Name,
		Quantity: int(q),
	}

	if isNumber(raw.Price) {
		if p, err := decimal.NewFromString(string(raw.Price)); err == nil {
			line.Price = decimal.NewNullDecimal(p)
		}
	}

	if len(raw.Currency) > 0 {
		var code string
		if json.Unmarshal(raw.Currency, &code) == nil {
			if unit, err := currency.ParseISO(code); err == nil {
				line.Currency = unit
			}
		}
	}

	return line, true
}

func isNumber(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// ReadRequest returns the cart mirrored in the request cookie.
func ReadRequest(r *http.Request) []domain.CartLine {
	c, err := r.Cookie(Name)
	if err != nil {
		return []domain.CartLine{}
	}
	return Decode(c.Value)
}
