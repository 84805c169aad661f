package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"catalog-service/internal/auth"
	"catalog-service/internal/domain"
	"catalog-service/internal/service"
)

// MockCatalogService is a testify mock of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func result[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func listResult[T any](args mock.Arguments) ([]T, int, error) {
	var items []T
	if v := args.Get(0); v != nil {
		items = v.([]T)
	}
	return items, args.Int(1), args.Error(2)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	return result[domain.Category](m.Called(ctx, in))
}

func (m *MockCatalogService) GetCategory(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Category, error) {
	return result[domain.Category](m.Called(ctx, caller, id))
}

func (m *MockCatalogService) ListCategories(ctx context.Context, caller *domain.User, q service.ListQuery) ([]domain.Category, int, error) {
	return listResult[domain.Category](m.Called(ctx, caller, q))
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error) {
	return result[domain.Category](m.Called(ctx, id, patch))
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) CreateBrand(ctx context.Context, in domain.BrandInput) (*domain.Brand, error) {
	return result[domain.Brand](m.Called(ctx, in))
}

func (m *MockCatalogService) GetBrand(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Brand, error) {
	return result[domain.Brand](m.Called(ctx, caller, id))
}

func (m *MockCatalogService) ListBrands(ctx context.Context, caller *domain.User, q service.ListQuery) ([]domain.Brand, int, error) {
	return listResult[domain.Brand](m.Called(ctx, caller, q))
}

func (m *MockCatalogService) UpdateBrand(ctx context.Context, id uuid.UUID, patch domain.BrandPatch) (*domain.Brand, error) {
	return result[domain.Brand](m.Called(ctx, id, patch))
}

func (m *MockCatalogService) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	return result[domain.Product](m.Called(ctx, in))
}

func (m *MockCatalogService) GetProduct(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error) {
	return result[domain.Product](m.Called(ctx, caller, id))
}

func (m *MockCatalogService) GetProductBySlug(ctx context.Context, caller *domain.User, slug string) (*domain.Product, error) {
	return result[domain.Product](m.Called(ctx, caller, slug))
}

func (m *MockCatalogService) ListProducts(ctx context.Context, caller *domain.User, q service.ProductQuery) ([]domain.Product, int, error) {
	return listResult[domain.Product](m.Called(ctx, caller, q))
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	return result[domain.Product](m.Called(ctx, id, patch))
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) CreateVariant(ctx context.Context, productID uuid.UUID, in domain.VariantInput) (*domain.Variant, error) {
	return result[domain.Variant](m.Called(ctx, productID, in))
}

func (m *MockCatalogService) GetVariant(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Variant, error) {
	return result[domain.Variant](m.Called(ctx, caller, id))
}

func (m *MockCatalogService) GetVariantBySKU(ctx context.Context, caller *domain.User, sku string) (*domain.Variant, error) {
	return result[domain.Variant](m.Called(ctx, caller, sku))
}

func (m *MockCatalogService) ListVariants(ctx context.Context, caller *domain.User, q service.VariantQuery) ([]domain.Variant, int, error) {
	return listResult[domain.Variant](m.Called(ctx, caller, q))
}

func (m *MockCatalogService) ListProductVariants(ctx context.Context, caller *domain.User, productID uuid.UUID, q service.VariantQuery) ([]domain.Variant, int, error) {
	return listResult[domain.Variant](m.Called(ctx, caller, productID, q))
}

func (m *MockCatalogService) UpdateVariant(ctx context.Context, id uuid.UUID, patch domain.VariantPatch) (*domain.Variant, error) {
	return result[domain.Variant](m.Called(ctx, id, patch))
}

func (m *MockCatalogService) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// stubAuth resolves fixed tokens to users.
type stubAuth struct {
	users  map[string]*domain.User
	errs   map[string]error
	logins map[string]string // email -> password
}

func (a *stubAuth) Login(_ context.Context, creds domain.Credentials) (*auth.Token, error) {
	if pw, ok := a.logins[creds.Email]; ok && pw == creds.Password {
		return &auth.Token{AccessToken: "issued", TokenType: "bearer", ExpiresIn: 1800}, nil
	}
	return nil, auth.ErrInvalidCredentials
}

func (a *stubAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	if err, ok := a.errs[token]; ok {
		return nil, err
	}
	if u, ok := a.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrTokenInvalid
}
