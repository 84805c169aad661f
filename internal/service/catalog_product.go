package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"catalog-service/internal/domain"
	"catalog-service/internal/logger"
	"catalog-service/internal/slug"
	"catalog-service/internal/store"
)

// CreateProduct resolves both parents (they must exist and be active), derives
// the slug and inserts the product.
func (s *CatalogService) CreateProduct(ctx context.Context, in domain.ProductInput) (_ *domain.Product, err error) {
	ctx, span := s.start(ctx, "CreateProduct")
	defer func() { s.finish(ctx, span, "product", "create", err) }()

	in.Normalize()
	if err := domain.Validate(&in); err != nil {
		return nil, err
	}
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("service: generate product id: %w", err)
	}

	var out *domain.Product
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		brand, err := repo.GetBrandByID(ctx, in.BrandID, true)
		if err != nil {
			return err
		}
		category, err := repo.GetCategoryByID(ctx, in.CategoryID, true)
		if err != nil {
			return err
		}
		productSlug := slug.ProductSlug(category.Code, brand.Name, in.Name)
		logger.FromContext(ctx).Debug("product slug derived", zap.String("slug", productSlug))

		out, err = repo.CreateProduct(ctx, &domain.Product{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			Slug:        productSlug,
			CategoryID:  category.ID,
			BrandID:     brand.ID,
			Audit:       domain.Audit{IsActive: domain.ActiveOrDefault(in.IsActive)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error) {
	ctx, span := s.start(ctx, "GetProduct", attribute.String("product.id", id.String()))
	defer span.End()
	return s.repo.GetProductByID(ctx, id, OnlyActive(caller))
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, caller *domain.User, productSlug string) (*domain.Product, error) {
	ctx, span := s.start(ctx, "GetProductBySlug", attribute.String("product.slug", productSlug))
	defer span.End()
	return s.repo.GetProductBySlug(ctx, productSlug, OnlyActive(caller))
}

func (s *CatalogService) ListProducts(ctx context.Context, caller *domain.User, q ProductQuery) ([]domain.Product, int, error) {
	ctx, span := s.start(ctx, "ListProducts")
	defer span.End()
	page := q.Page.normalized()
	var search *string
	if q.Search != nil {
		if v := domain.NormalizeText(*q.Search); v != "" {
			search = &v
		}
	}
	return s.repo.ListProducts(ctx, store.ListProductsParams{
		Limit:      page.Limit,
		Offset:     page.Offset,
		Search:     search,
		CategoryID: q.CategoryID,
		BrandID:    q.BrandID,
		IsActive:   ActiveFilter(caller, q.IsActive),
	})
}

// UpdateProduct applies a partial update. When the name, category or brand
// changes, the slug and the SKUs of every variant are derived again in the same
// transaction. A newly referenced parent must be active; the current ones are
// accepted as they are.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (_ *domain.Product, err error) {
	ctx, span := s.start(ctx, "UpdateProduct", attribute.String("product.id", id.String()))
	defer func() { s.finish(ctx, span, "product", "update", err) }()

	patch.Slug = nil
	patch.Normalize()
	if err := domain.Validate(&patch); err != nil {
		return nil, err
	}

	var out *domain.Product
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		current, err := repo.GetProductByID(ctx, id, false)
		if err != nil {
			return err
		}

		name, categoryID, brandID := current.Name, current.CategoryID, current.BrandID
		identityChanged := false
		if patch.TouchesIdentity() {
			if patch.Name != nil {
				name = *patch.Name
			}
			if patch.CategoryID != nil {
				categoryID = *patch.CategoryID
			}
			if patch.BrandID != nil {
				brandID = *patch.BrandID
			}
			identityChanged = name != current.Name || categoryID != current.CategoryID || brandID != current.BrandID
		}

		if identityChanged {
			categoryCode, brandName, err := resolveParents(ctx, repo, current, categoryID, brandID)
			if err != nil {
				return err
			}
			productSlug := slug.ProductSlug(categoryCode, brandName, name)
			patch.Slug = &productSlug
		}

		out, err = repo.UpdateProduct(ctx, id, &patch)
		if err != nil {
			return err
		}
		if identityChanged {
			return rederiveVariantSKUs(ctx, repo, out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveParents returns the category code and brand name used by the slug.
// Parents that did not change are taken from the current read model.
func resolveParents(ctx context.Context, repo store.Repository, current *domain.Product, categoryID, brandID uuid.UUID) (string, string, error) {
	categoryCode := current.Category.Code
	if categoryID != current.CategoryID {
		category, err := repo.GetCategoryByID(ctx, categoryID, true)
		if err != nil {
			return "", "", err
		}
		categoryCode = category.Code
	}
	brandName := current.Brand.Name
	if brandID != current.BrandID {
		brand, err := repo.GetBrandByID(ctx, brandID, true)
		if err != nil {
			return "", "", err
		}
		brandName = brand.Name
	}
	return categoryCode, brandName, nil
}

// rederiveVariantSKUs brings the SKU of every variant of product in line with
// the product's current name, category and brand.
func rederiveVariantSKUs(ctx context.Context, repo store.Repository, product *domain.Product) error {
	variants, err := repo.ListVariantsByProduct(ctx, product.ID)
	if err != nil {
		return err
	}
	for _, v := range variants {
		sku := slug.VariantSKU(product.Category.Code, product.Brand.Code, product.Name, v.Attributes)
		if sku == v.SKU {
			continue
		}
		if _, err := repo.UpdateVariant(ctx, v.ID, &domain.VariantPatch{SKU: &sku}); err != nil {
			return err
		}
		logger.FromContext(ctx).Debug("variant sku re-derived",
			zap.String("variant_id", v.ID.String()), zap.String("sku", sku))
	}
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.start(ctx, "DeleteProduct", attribute.String("product.id", id.String()))
	defer func() { s.finish(ctx, span, "product", "delete", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		return repo.DeleteProduct(ctx, id)
	})
}
