package store

import (
	"context"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

func (r nameCodeRecord) category() domain.Category {
	return domain.Category{ID: r.ID, Name: r.Name, Code: r.Code, Audit: r.Audit}
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	rec, err := categoriesTable.create(ctx, s.q, nameCodeRecord{
		ID: category.ID, Name: category.Name, Code: category.Code, Audit: category.Audit,
	})
	if err != nil {
		return nil, err
	}
	c := rec.category()
	return &c, nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Category, error) {
	rec, err := categoriesTable.get(ctx, s.q, id, onlyActive)
	if err != nil {
		return nil, err
	}
	c := rec.category()
	return &c, nil
}

// ListCategories returns one page of categories, newest first, and the total
// number matching the filter.
func (s *PostgresStore) ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error) {
	recs, total, err := categoriesTable.list(ctx, s.q, params)
	if err != nil {
		return nil, 0, err
	}
	categories := make([]domain.Category, 0, len(recs))
	for _, rec := range recs {
		categories = append(categories, rec.category())
	}
	return categories, total, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, id uuid.UUID, patch *domain.CategoryPatch) (*domain.Category, error) {
	rec, err := categoriesTable.update(ctx, s.q, id, &patch.NameCodePatch)
	if err != nil {
		return nil, err
	}
	c := rec.category()
	return &c, nil
}

// DeleteCategory hard-deletes a category. It fails with *domain.NotEmptyError
// while products still reference it.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return categoriesTable.delete(ctx, s.q, id)
}
