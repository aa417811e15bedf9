package cart

import (
	"math"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// maxQuantity bounds absolute quantity sets.
const maxQuantity = math.MaxInt32

func indexOf(lines []domain.CartLine, name string) int {
	for i, line := range lines {
		if line.Name == name {
			return i
		}
	}
	return -1
}

// withQuantity returns lines with the named line set to quantity, or removed
// when quantity is not positive. Missing names leave lines untouched.
func withQuantity(lines []domain.CartLine, name string, quantity int) ([]domain.CartLine, bool) {
	i := indexOf(lines, name)
	if i == -1 {
		return lines, false
	}

	if quantity <= 0 {
		updated := make([]domain.CartLine, 0, len(lines)-1)
		updated = append(updated, lines[:i]...)
		return append(updated, lines[i+1:]...), true
	}

	if lines[i].Quantity == quantity {
		return lines, false
	}

	updated := domain.CloneLines(lines)
	updated[i].Quantity = quantity
	return updated, true
}

func addOrIncrement(lines []domain.CartLine, name string, price decimal.NullDecimal, unit currency.Unit) []domain.CartLine {
	if i := indexOf(lines, name); i != -1 {
		updated, _ := withQuantity(lines, name, lines[i].Quantity+1)
		return updated
	}

	updated := make([]domain.CartLine, 0, len(lines)+1)
	updated = append(updated, lines...)
	return append(updated, domain.CartLine{
		Name:     name,
		Quantity: 1,
		Price:    price,
		Currency: unit,
	})
}

// normalizeQuantity floors q and maps non-finite input to 0.
func normalizeQuantity(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	floored := math.Floor(q)
	if floored <= 0 {
		return 0
	}
	if floored > maxQuantity {
		return maxQuantity
	}
	return int(floored)
}

// sanitize drops restored lines with an empty name or a non-positive
// quantity and keeps the first line per name.
func sanitize(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.Name == "" || line.Quantity <= 0 {
			continue
		}
		if _, ok := seen[line.Name]; ok {
			continue
		}
		seen[line.Name] = struct{}{}
		out = append(out, line)
	}
	return out
}
