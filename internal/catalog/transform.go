package catalog

import (
	"encoding/json"
	"strconv"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// UpstreamResponse is the payload of the upstream catalog origin.
type UpstreamResponse struct {
	Success  bool              `json:"success"`
	Products []UpstreamProduct `json:"products"`
}

type UpstreamProduct struct {
	ID    *domain.ProductID `json:"id"`
	Name  *localizedName    `json:"name"`
	Price *localizedPrice   `json:"price"`
	Stock *json.Number      `json:"stock"`
}

type localizedName struct {
	UK *string `json:"uk"`
	US *string `json:"us"`
}

type localizedPrice struct {
	GBP *decimal.Decimal `json:"gbp"`
	USD *decimal.Decimal `json:"usd"`
}

// Transform flattens an upstream response into products for key. Name and
// price come from the requested locale, then the other one. An empty name
// counts as missing; a zero price does not.
func Transform(resp UpstreamResponse, kind domain.CatalogKind, key domain.CatalogKey) []domain.Product {
	if !resp.Success {
		return []domain.Product{}
	}

	unit := key.Currency()
	products := make([]domain.Product, 0, len(resp.Products))
	for i, p := range resp.Products {
		rawID := strconv.Itoa(i)
		if p.ID != nil {
			rawID = p.ID.String()
		}

		products = append(products, domain.Product{
			ID:          productID(p.ID, i, kind),
			Name:        pickName(p.Name, key, "Product "+rawID),
			Description: "Stock: " + stock(p.Stock),
			Price:       pickPrice(p.Price, key),
			Currency:    unit,
		})
	}
	return products
}

func productID(id *domain.ProductID, index int, kind domain.CatalogKind) domain.ProductID {
	if kind == domain.KindMoreProducts {
		if id == nil {
			return domain.StringProductID("more-" + strconv.Itoa(index))
		}
		return domain.StringProductID("more-" + id.String())
	}
	if id == nil {
		return domain.NumericProductID(int64(index))
	}
	return *id
}

func pickName(name *localizedName, key domain.CatalogKey, fallback string) string {
	if name == nil {
		return fallback
	}

	first, second := name.UK, name.US
	if key == domain.CatalogUS {
		first, second = name.US, name.UK
	}
	for _, candidate := range []*string{first, name.UK, second} {
		if candidate != nil && *candidate != "" {
			return *candidate
		}
	}
	return fallback
}

func pickPrice(price *localizedPrice, key domain.CatalogKey) decimal.Decimal {
	if price == nil {
		return decimal.Zero
	}

	first := price.GBP
	if key == domain.CatalogUS {
		first = price.USD
	}
	for _, candidate := range []*decimal.Decimal{first, price.GBP, price.USD} {
		if candidate != nil {
			return *candidate
		}
	}
	return decimal.Zero
}

func stock(n *json.Number) string {
	if n == nil || *n == "" {
		return "0"
	}
	return n.String()
}
