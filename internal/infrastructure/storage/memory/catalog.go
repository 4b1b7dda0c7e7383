package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Catalog is a static ProductCatalog, usually read from a JSON file.
type Catalog struct {
	mu       sync.RWMutex
	products []domain.Product
}

var _ ports.ProductCatalog = (*Catalog)(nil)

// NewCatalog copies products into a catalog.
func NewCatalog(products ...domain.Product) *Catalog {
	return &Catalog{products: append([]domain.Product(nil), products...)}
}

// LoadCatalogFile reads a JSON array of products.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return NewCatalog(products...), nil
}

// ListProducts implements ports.ProductCatalog.
func (c *Catalog) ListProducts(_ context.Context) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Product(nil), c.products...), nil
}

// Replace swaps the catalog contents.
func (c *Catalog) Replace(products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append([]domain.Product(nil), products...)
}
