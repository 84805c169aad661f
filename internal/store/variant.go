package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

const variantColumns = "id, product_id, price, stock, attributes, sku, is_active, created_at, updated_at"

func scanVariant(row rowScanner, v *domain.Variant) error {
	return row.Scan(&v.ID, &v.ProductID, &v.Price, &v.Stock, &v.Attributes, &v.SKU, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
}

func (s *PostgresStore) CreateVariant(ctx context.Context, variant *domain.Variant) (*domain.Variant, error) {
	query := `
		INSERT INTO catalog.product_variants (id, product_id, price, stock, attributes, sku, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + variantColumns + `;
	`
	row := s.q.QueryRowContext(ctx, query,
		variant.ID, variant.ProductID, variant.Price, variant.Stock,
		variant.Attributes, variant.SKU, variant.IsActive,
	)

	var created domain.Variant
	if err := scanVariant(row, &created); err != nil {
		values := map[string]string{"sku": variant.SKU, "product_id": variant.ProductID.String()}
		if derr := translateWriteError(err, values); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: CreateVariant failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetVariantByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Variant, error) {
	return s.getVariant(ctx, "id = $1", id, onlyActive)
}

func (s *PostgresStore) GetVariantBySKU(ctx context.Context, sku string, onlyActive bool) (*domain.Variant, error) {
	return s.getVariant(ctx, "sku = $1", sku, onlyActive)
}

func (s *PostgresStore) getVariant(ctx context.Context, predicate string, key interface{}, onlyActive bool) (*domain.Variant, error) {
	query := "SELECT " + variantColumns + " FROM catalog.product_variants WHERE " + predicate + ";"
	var v domain.Variant
	if err := scanVariant(s.q.QueryRowContext(ctx, query, key), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "variant", ID: fmt.Sprint(key)}
		}
		return nil, fmt.Errorf("store: get variant failed: %w", err)
	}
	if onlyActive && !v.IsActive {
		return nil, &domain.NotFoundError{Entity: "variant", ID: fmt.Sprint(key)}
	}
	return &v, nil
}

// ListVariants returns one page of variants, newest first, and the total
// number matching the filters.
func (s *PostgresStore) ListVariants(ctx context.Context, params ListVariantsParams) ([]domain.Variant, int, error) {
	var where whereBuilder
	if params.ProductID != nil {
		where.add("product_id = ?", *params.ProductID)
	}
	if params.IsActive != nil {
		where.add("is_active = ?", *params.IsActive)
	}

	var totalCount int
	countQuery := "SELECT COUNT(*) FROM catalog.product_variants" + where.String()
	if err := s.q.QueryRowContext(ctx, countQuery, where.args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListVariants failed to count variants: %w", err)
	}
	if totalCount == 0 {
		return []domain.Variant{}, 0, nil
	}

	pageClause, args := where.page(params.Limit, params.Offset)
	query := "SELECT " + variantColumns + " FROM catalog.product_variants" + where.String() + " ORDER BY created_at DESC" + pageClause
	variants, err := s.queryVariants(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListVariants failed: %w", err)
	}
	return variants, totalCount, nil
}

// ListVariantsByProduct returns every variant of a product regardless of
// activity, oldest first.
func (s *PostgresStore) ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	query := "SELECT " + variantColumns + " FROM catalog.product_variants WHERE product_id = $1 ORDER BY created_at ASC;"
	variants, err := s.queryVariants(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListVariantsByProduct failed: %w", err)
	}
	return variants, nil
}

func (s *PostgresStore) queryVariants(ctx context.Context, query string, args ...interface{}) ([]domain.Variant, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []domain.Variant{}
	for rows.Next() {
		var v domain.Variant
		if err := scanVariant(rows, &v); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

func (s *PostgresStore) UpdateVariant(ctx context.Context, id uuid.UUID, patch *domain.VariantPatch) (*domain.Variant, error) {
	var set setBuilder
	values := map[string]string{}
	if patch.Price != nil {
		set.add("price", *patch.Price)
	}
	if patch.Stock != nil {
		set.add("stock", *patch.Stock)
	}
	if patch.Attributes != nil {
		set.add("attributes", *patch.Attributes)
	}
	if patch.SKU != nil {
		set.add("sku", *patch.SKU)
		values["sku"] = *patch.SKU
	}
	if patch.IsActive != nil {
		set.add("is_active", *patch.IsActive)
	}
	args := append(set.args, id)
	query := fmt.Sprintf(`
		UPDATE catalog.product_variants
		SET %s
		WHERE id = $%d
		RETURNING %s;
	`, set.clause(), len(args), variantColumns)

	var v domain.Variant
	if err := scanVariant(s.q.QueryRowContext(ctx, query, args...), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "variant", ID: id.String()}
		}
		if derr := translateWriteError(err, values); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("store: UpdateVariant failed: %w", err)
	}
	return &v, nil
}

// DeleteVariant hard-deletes a variant. Nothing references variants yet.
func (s *PostgresStore) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM catalog.product_variants WHERE id = $1;`, id)
	if err != nil {
		if derr := translateDeleteError(err, "variant", id.String()); derr != nil {
			return derr
		}
		return fmt.Errorf("store: DeleteVariant failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteVariant failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.NotFoundError{Entity: "variant", ID: id.String()}
	}
	return nil
}
