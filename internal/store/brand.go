package store

import (
	"context"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

func (r nameCodeRecord) brand() domain.Brand {
	return domain.Brand{ID: r.ID, Name: r.Name, Code: r.Code, Audit: r.Audit}
}

func (s *PostgresStore) CreateBrand(ctx context.Context, brand *domain.Brand) (*domain.Brand, error) {
	rec, err := brandsTable.create(ctx, s.q, nameCodeRecord{
		ID: brand.ID, Name: brand.Name, Code: brand.Code, Audit: brand.Audit,
	})
	if err != nil {
		return nil, err
	}
	b := rec.brand()
	return &b, nil
}

func (s *PostgresStore) GetBrandByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Brand, error) {
	rec, err := brandsTable.get(ctx, s.q, id, onlyActive)
	if err != nil {
		return nil, err
	}
	b := rec.brand()
	return &b, nil
}

// ListBrands returns one page of brands, newest first, and the total
// number matching the filter.
func (s *PostgresStore) ListBrands(ctx context.Context, params ListBrandsParams) ([]domain.Brand, int, error) {
	recs, total, err := brandsTable.list(ctx, s.q, params)
	if err != nil {
		return nil, 0, err
	}
	brands := make([]domain.Brand, 0, len(recs))
	for _, rec := range recs {
		brands = append(brands, rec.brand())
	}
	return brands, total, nil
}

func (s *PostgresStore) UpdateBrand(ctx context.Context, id uuid.UUID, patch *domain.BrandPatch) (*domain.Brand, error) {
	rec, err := brandsTable.update(ctx, s.q, id, &patch.NameCodePatch)
	if err != nil {
		return nil, err
	}
	b := rec.brand()
	return &b, nil
}

// DeleteBrand hard-deletes a brand. It fails with *domain.NotEmptyError
// while products still reference it.
func (s *PostgresStore) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return brandsTable.delete(ctx, s.q, id)
}
