package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"catalog-service/internal/domain"
	"catalog-service/internal/slug"
	"catalog-service/internal/store"
)

// CreateVariant adds a variant to an active product and derives its SKU.
func (s *CatalogService) CreateVariant(ctx context.Context, productID uuid.UUID, in domain.VariantInput) (_ *domain.Variant, err error) {
	ctx, span := s.start(ctx, "CreateVariant", attribute.String("product.id", productID.String()))
	defer func() { s.finish(ctx, span, "variant", "create", err) }()

	in.Normalize()
	if err := domain.Validate(&in); err != nil {
		return nil, err
	}
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("service: generate variant id: %w", err)
	}

	var out *domain.Variant
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		product, err := repo.GetProductByID(ctx, productID, true)
		if err != nil {
			return err
		}
		out, err = repo.CreateVariant(ctx, &domain.Variant{
			ID:         id,
			ProductID:  product.ID,
			Price:      in.Price,
			Stock:      *in.Stock,
			Attributes: in.Attributes,
			SKU:        slug.VariantSKU(product.Category.Code, product.Brand.Code, product.Name, in.Attributes),
			Audit:      domain.Audit{IsActive: domain.ActiveOrDefault(in.IsActive)},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) GetVariant(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Variant, error) {
	ctx, span := s.start(ctx, "GetVariant", attribute.String("variant.id", id.String()))
	defer span.End()
	return s.repo.GetVariantByID(ctx, id, OnlyActive(caller))
}

func (s *CatalogService) GetVariantBySKU(ctx context.Context, caller *domain.User, sku string) (*domain.Variant, error) {
	ctx, span := s.start(ctx, "GetVariantBySKU", attribute.String("variant.sku", sku))
	defer span.End()
	return s.repo.GetVariantBySKU(ctx, sku, OnlyActive(caller))
}

func (s *CatalogService) ListVariants(ctx context.Context, caller *domain.User, q VariantQuery) ([]domain.Variant, int, error) {
	ctx, span := s.start(ctx, "ListVariants")
	defer span.End()
	page := q.Page.normalized()
	return s.repo.ListVariants(ctx, store.ListVariantsParams{
		Limit:     page.Limit,
		Offset:    page.Offset,
		ProductID: q.ProductID,
		IsActive:  ActiveFilter(caller, q.IsActive),
	})
}

// ListProductVariants lists the variants of one product. The product itself
// must be visible to caller.
func (s *CatalogService) ListProductVariants(ctx context.Context, caller *domain.User, productID uuid.UUID, q VariantQuery) (_ []domain.Variant, _ int, err error) {
	ctx, span := s.start(ctx, "ListProductVariants", attribute.String("product.id", productID.String()))
	defer func() { s.finish(ctx, span, "variant", "", err) }()

	if _, err := s.repo.GetProductByID(ctx, productID, OnlyActive(caller)); err != nil {
		return nil, 0, err
	}
	q.ProductID = &productID
	return s.ListVariants(ctx, caller, q)
}

// UpdateVariant applies a partial update. The SKU is derived again only when
// the attributes change.
func (s *CatalogService) UpdateVariant(ctx context.Context, id uuid.UUID, patch domain.VariantPatch) (_ *domain.Variant, err error) {
	ctx, span := s.start(ctx, "UpdateVariant", attribute.String("variant.id", id.String()))
	defer func() { s.finish(ctx, span, "variant", "update", err) }()

	patch.SKU = nil
	patch.Normalize()
	if err := domain.Validate(&patch); err != nil {
		return nil, err
	}

	var out *domain.Variant
	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		current, err := repo.GetVariantByID(ctx, id, false)
		if err != nil {
			return err
		}
		if patch.Attributes != nil && *patch.Attributes != current.Attributes {
			product, err := repo.GetProductByID(ctx, current.ProductID, false)
			if err != nil {
				return err
			}
			sku := slug.VariantSKU(product.Category.Code, product.Brand.Code, product.Name, *patch.Attributes)
			patch.SKU = &sku
		}
		out, err = repo.UpdateVariant(ctx, id, &patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVariant hard-deletes a variant. Once orders reference variants this
// must become blocked the same way product deletion is.
func (s *CatalogService) DeleteVariant(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := s.start(ctx, "DeleteVariant", attribute.String("variant.id", id.String()))
	defer func() { s.finish(ctx, span, "variant", "delete", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		return repo.DeleteVariant(ctx, id)
	})
}
