package store

import (
	"context"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
)

// ListCategoriesParams holds pagination and the activity filter for categories
// and brands. A nil IsActive returns both states.
type ListCategoriesParams struct {
	Limit    int
	Offset   int
	IsActive *bool
}

// ListBrandsParams mirrors ListCategoriesParams.
type ListBrandsParams = ListCategoriesParams

// ListProductsParams holds parameters for listing products.
type ListProductsParams struct {
	Limit      int
	Offset     int
	Search     *string // substring match on name or description
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	IsActive   *bool
}

// ListVariantsParams holds parameters for listing variants.
type ListVariantsParams struct {
	Limit     int
	Offset    int
	ProductID *uuid.UUID
	IsActive  *bool
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Category, error)
	ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch *domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// BrandStorer defines the database operations for brands.
type BrandStorer interface {
	CreateBrand(ctx context.Context, brand *domain.Brand) (*domain.Brand, error)
	GetBrandByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Brand, error)
	ListBrands(ctx context.Context, params ListBrandsParams) ([]domain.Brand, int, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, patch *domain.BrandPatch) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

// ProductStorer defines the database operations for products. Returned
// products always carry their category and brand summaries.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string, onlyActive bool) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// VariantStorer defines the database operations for product variants.
type VariantStorer interface {
	CreateVariant(ctx context.Context, variant *domain.Variant) (*domain.Variant, error)
	GetVariantByID(ctx context.Context, id uuid.UUID, onlyActive bool) (*domain.Variant, error)
	GetVariantBySKU(ctx context.Context, sku string, onlyActive bool) (*domain.Variant, error)
	ListVariants(ctx context.Context, params ListVariantsParams) ([]domain.Variant, int, error)
	ListVariantsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, patch *domain.VariantPatch) (*domain.Variant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// UserStorer defines the database operations for accounts.
type UserStorer interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Repository is the full persistence surface. WithTx runs fn against a
// Repository bound to one transaction; inside a transaction it reuses it.
type Repository interface {
	CategoryStorer
	BrandStorer
	ProductStorer
	VariantStorer
	UserStorer
	WithTx(ctx context.Context, fn func(Repository) error) error
}
