package sqlstore

import (
	"context"
	"fmt"

	"ReviewScout/internal/domain"
	"ReviewScout/internal/ports"
)

// Catalog reads products from the shared products table.
type Catalog struct {
	s *Store
}

var _ ports.ProductCatalog = (*Catalog)(nil)

// ListProducts implements ports.ProductCatalog.
func (c *Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := c.s.sb.Select("code", "name", "sale_active", "detail_blob", "category").
		From("products").OrderBy("code").
		RunWith(c.s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Code, &p.Name, &p.SaleActive, &p.DetailBlob, &p.Category); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// UpsertProducts seeds or refreshes catalog rows, e.g. from a catalog file.
func (c *Catalog) UpsertProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ins := c.s.sb.Insert("products").Columns("code", "name", "sale_active", "detail_blob", "category")
	for _, p := range products {
		if p.Code == "" {
			return fmt.Errorf("%w: product code is required", domain.ErrInvalidInput)
		}
		ins = ins.Values(p.Code, p.Name, p.SaleActive, p.DetailBlob, p.Category)
	}
	_, err := ins.Suffix(`ON CONFLICT (code) DO UPDATE SET
	name = EXCLUDED.name,
	sale_active = EXCLUDED.sale_active,
	detail_blob = EXCLUDED.detail_blob,
	category = EXCLUDED.category`).
		RunWith(c.s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("upsert products: %w", err)
	}
	return nil
}
