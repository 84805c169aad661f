package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"catalog-service/internal/domain"
	"catalog-service/internal/store"
)

func (s *CatalogService) CreateCategory(ctx context.Context, in domain.CategoryInput) (_ *domain.Category, err error) {
	ctx, span := s.start(ctx, "CreateCategory")
	defer func() { s.finish(ctx, span, "category", "create", err) }()

	in.Normalize()
	if err := domain.Validate(&in); err != nil {
		return nil, err
	}
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("service: generate category id: %w", err)
	}

	var out *domain.Category
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		out, err = repo.CreateCategory(ctx, &domain.Category{
			ID:    id,
			Name:  in.Name,
			Code:  in.Code,
			Audit: domain.Audit{IsActive: domain.ActiveOrDefault(in.IsActive)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Category, error) {
	ctx, span := s.start(ctx, "GetCategory", attribute.String("category.id", id.String()))
	defer span.End()
	return s.repo.GetCategoryByID(ctx, id, OnlyActive(caller))
}

func (s *CatalogService) ListCategories(ctx context.Context, caller *domain.User, q ListQuery) ([]domain.Category, int, error) {
	ctx, span := s.start(ctx, "ListCategories")
	defer span.End()
	page := q.Page.normalized()
	return s.repo.ListCategories(ctx, store.ListCategoriesParams{
		Limit:    page.Limit,
		Offset:   page.Offset,
		IsActive: ActiveFilter(caller, q.IsActive),
	})
}

// UpdateCategory applies a partial update. Code or name edits are not
// propagated to existing slugs and SKUs.
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (_ *domain.Category, err error) {
	ctx, span := s.start(ctx, "UpdateCategory", attribute.String("category.id", id.String()))
	defer func() { s.finish(ctx, span, "category", "update", err) }()

	patch.Normalize()
	if err := domain.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.repo.GetCategoryByID(ctx, id, false)
	}
	var out *domain.Category
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		out, err = repo.UpdateCategory(ctx, id, &patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.start(ctx, "DeleteCategory", attribute.String("category.id", id.String()))
	defer func() { s.finish(ctx, span, "category", "delete", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		return repo.DeleteCategory(ctx, id)
	})
}

func (s *CatalogService) CreateBrand(ctx context.Context, in domain.BrandInput) (_ *domain.Brand, err error) {
	ctx, span := s.start(ctx, "CreateBrand")
	defer func() { s.finish(ctx, span, "brand", "create", err) }()

	in.Normalize()
	if err := domain.Validate(&in); err != nil {
		return nil, err
	}
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("service: generate brand id: %w", err)
	}

	var out *domain.Brand
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		out, err = repo.CreateBrand(ctx, &domain.Brand{
			ID:    id,
			Name:  in.Name,
			Code:  in.Code,
			Audit: domain.Audit{IsActive: domain.ActiveOrDefault(in.IsActive)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) GetBrand(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Brand, error) {
	ctx, span := s.start(ctx, "GetBrand", attribute.String("brand.id", id.String()))
	defer span.End()
	return s.repo.GetBrandByID(ctx, id, OnlyActive(caller))
}

func (s *CatalogService) ListBrands(ctx context.Context, caller *domain.User, q ListQuery) ([]domain.Brand, int, error) {
	ctx, span := s.start(ctx, "ListBrands")
	defer span.End()
	page := q.Page.normalized()
	return s.repo.ListBrands(ctx, store.ListBrandsParams{
		Limit:    page.Limit,
		Offset:   page.Offset,
		IsActive: ActiveFilter(caller, q.IsActive),
	})
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id uuid.UUID, patch domain.BrandPatch) (_ *domain.Brand, err error) {
	ctx, span := s.start(ctx, "UpdateBrand", attribute.String("brand.id", id.String()))
	defer func() { s.finish(ctx, span, "brand", "update", err) }()

	patch.Normalize()
	if err := domain.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.repo.GetBrandByID(ctx, id, false)
	}
	var out *domain.Brand
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		out, err = repo.UpdateBrand(ctx, id, &patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) DeleteBrand(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.start(ctx, "DeleteBrand", attribute.String("brand.id", id.String()))
	defer func() { s.finish(ctx, span, "brand", "delete", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		return repo.DeleteBrand(ctx, id)
	})
}
