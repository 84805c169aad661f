package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

const productSelect = `
	SELECT p.id, p.name, p.description, p.slug, p.category_id, p.brand_id,
		p.is_active, p.created_at, p.updated_at,
		c.name, c.code, b.name, b.code
	FROM catalog.products p
	JOIN catalog.categories c ON c.id = p.category_id
	JOIN catalog.brands b ON b.id = p.brand_id`

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		category domain.ParentRef
		brand    domain.ParentRef
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Slug, &p.CategoryID, &p.BrandID,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&category.Name, &category.Code, &brand.Name, &brand.Code,
	)
	if err != nil {
		return nil, err
	}
	category.ID = p.CategoryID
	brand.ID = p.BrandID
	p.Category = &category
	p.Brand = &brand
	return &p, nil
}

// CreateProduct inserts a product and returns it re-read with its category and
// brand summaries.
func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO catalog.products (id, name, description, slug, category_id, brand_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := s.q.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Slug,
		product.CategoryID, product.BrandID, product.IsActive,
	)
	if err != nil {
		values := map[string]string{
			"name":        product.Name,
			"slug":        product.Slug,
			"category_id": product.CategoryID.String(),
			"brand_id":    product.BrandID.String(),
		}
		if derr := translateWriteError(err, values); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: CreateProduct failed: %w", err)
	}
	return s.GetProductByID(ctx, product.ID, false)
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Product, error) {
	return s.getProduct(ctx, "p.id = $1", id, onlyActive)
}

func (s *PostgresStore) GetProductBySlug(ctx context.Context, slug string, onlyActive bool) (*domain.Product, error) {
	return s.getProduct(ctx, "p.slug = $1", slug, onlyActive)
}

func (s *PostgresStore) getProduct(ctx context.Context, predicate string, key interface{}, onlyActive bool) (*domain.Product, error) {
	query := productSelect + "\n\tWHERE " + predicate + ";"
	p, err := scanProduct(s.q.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "product", ID: fmt.Sprint(key)}
		}
		return nil, fmt.Errorf("store: get product failed: %w", err)
	}
	if onlyActive && !p.IsActive {
		return nil, &domain.NotFoundError{Entity: "product", ID: fmt.Sprint(key)}
	}
	return p, nil
}

// ListProducts returns one page of products, newest first, and the total
// number matching the filters.
func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) {
	var where whereBuilder
	if params.Search != nil && *params.Search != "" {
		where.add("(p.name ILIKE ? OR p.description ILIKE ?)", containsPattern(*params.Search))
	}
	if params.CategoryID != nil {
		where.add("p.category_id = ?", *params.CategoryID)
	}
	if params.BrandID != nil {
		where.add("p.brand_id = ?", *params.BrandID)
	}
	if params.IsActive != nil {
		where.add("p.is_active = ?", *params.IsActive)
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM catalog.products p" + where.String()
	if err := s.q.QueryRowContext(ctx, countQuery, where.args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}
	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	pageClause, args := where.page(params.Limit, params.Offset)
	query := productSelect + where.String() + " ORDER BY p.created_at DESC" + pageClause
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, totalCount, nil
}

// UpdateProduct applies the supplied fields and returns the refreshed product.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	var set setBuilder
	values := map[string]string{}
	if patch.Name != nil {
		set.add("name", *patch.Name)
		values["name"] = *patch.Name
	}
	if patch.Description != nil {
		set.add("description", domain.NormalizeOptionalText(patch.Description))
	}
	if patch.Slug != nil {
		set.add("slug", *patch.Slug)
		values["slug"] = *patch.Slug
	}
	if patch.CategoryID != nil {
		set.add("category_id", *patch.CategoryID)
		values["category_id"] = patch.CategoryID.String()
	}
	if patch.BrandID != nil {
		set.add("brand_id", *patch.BrandID)
		values["brand_id"] = patch.BrandID.String()
	}
	if patch.IsActive != nil {
		set.add("is_active", *patch.IsActive)
	}
	args := append(set.args, id)
	query := fmt.Sprintf(`
		UPDATE catalog.products
		SET %s
		WHERE id = $%d;
	`, set.clause(), len(args))

	result, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		if derr := translateWriteError(err, values); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: UpdateProduct failed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: UpdateProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, &domain.NotFoundError{Entity: "product", ID: id.String()}
	}
	return s.GetProductByID(ctx, id, false)
}

// DeleteProduct hard-deletes a product. It fails with *domain.NotEmptyError
// while variants still reference it.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM catalog.products WHERE id = $1;`, id)
	if err != nil {
		if derr := translateDeleteError(err, "product", id.String()); derr != nil {
			return derr
		}
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "product", ID: id.String()}
	}
	return nil
}
