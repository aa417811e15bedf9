package port

import (
	"context"

	"github.com/nikolayk812/storefront/internal/domain"
)

// CartStorage keeps one named record holding a serialized cart collection.
type CartStorage interface {
	Load(ctx context.Context, key string) ([]domain.CartLine, error)
	Save(ctx context.Context, key string, lines []domain.CartLine) error
	Delete(ctx context.Context, key string) (bool, error)
}

// ProductSource returns the catalog for a locale key and list kind.
type ProductSource interface {
	Fetch(ctx context.Context, key domain.CatalogKey, kind domain.CatalogKind) ([]domain.Product, error)
}
