package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"catalog-service/internal/domain"
	"catalog-service/internal/store"
)

// fakeRepo is an in-memory store.Repository that enforces the same unique and
// foreign key rules as the database schema.
type fakeRepo struct {
	clock      time.Time
	categories map[uuid.UUID]domain.Category
	brands     map[uuid.UUID]domain.Brand
	products   map[uuid.UUID]domain.Product
	variants   map[uuid.UUID]domain.Variant
	users      map[uuid.UUID]domain.User
	inTx       bool
	commits    int
	rollbacks  int
}

var _ store.Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		categories: map[uuid.UUID]domain.Category{},
		brands:     map[uuid.UUID]domain.Brand{},
		products:   map[uuid.UUID]domain.Product{},
		variants:   map[uuid.UUID]domain.Variant{},
		users:      map[uuid.UUID]domain.User{},
	}
}

func (f *fakeRepo) now() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(store.Repository) error) error {
	if f.inTx {
		return fn(f)
	}
	categories, brands := copyMap(f.categories), copyMap(f.brands)
	products, variants, users := copyMap(f.products), copyMap(f.variants), copyMap(f.users)

	f.inTx = true
	err := fn(f)
	f.inTx = false
	if err != nil {
		f.categories, f.brands, f.products, f.variants, f.users = categories, brands, products, variants, users
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

func notFound(entity string, id uuid.UUID) error {
	return &domain.NotFoundError{Entity: entity, ID: id.String()}
}

func applyPage[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// --- categories ---

func (f *fakeRepo) categoryConflict(id uuid.UUID, name, code string) error {
	for _, c := range f.categories {
		if c.ID == id {
			continue
		}
		if c.Code == code {
			return &domain.AlreadyExistsError{Entity: "category", Field: "code", Value: code}
		}
		if strings.EqualFold(c.Name, name) {
			return &domain.AlreadyExistsError{Entity: "category", Field: "name", Value: name}
		}
	}
	return nil
}

func (f *fakeRepo) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if err := f.categoryConflict(c.ID, c.Name, c.Code); err != nil {
		return nil, err
	}
	out := *c
	out.CreatedAt = f.now()
	out.UpdatedAt = out.CreatedAt
	f.categories[out.ID] = out
	return &out, nil
}

func (f *fakeRepo) GetCategoryByID(_ context.Context, id uuid.UUID, onlyActive bool) (*domain.Category, error) {
	c, ok := f.categories[id]
	if !ok || (onlyActive && !c.IsActive) {
		return nil, notFound("category", id)
	}
	return &c, nil
}

func (f *fakeRepo) ListCategories(_ context.Context, p store.ListCategoriesParams) ([]domain.Category, int, error) {
	var out []domain.Category
	for _, c := range f.categories {
		if p.IsActive == nil || c.IsActive == *p.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return applyPage(out, p.Limit, p.Offset), len(out), nil
}

func (f *fakeRepo) UpdateCategory(_ context.Context, id uuid.UUID, patch *domain.CategoryPatch) (*domain.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, notFound("category", id)
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Code != nil {
		c.Code = *patch.Code
	}
	if patch.IsActive != nil {
		c.IsActive = *patch.IsActive
	}
	if err := f.categoryConflict(id, c.Name, c.Code); err != nil {
		return nil, err
	}
	c.UpdatedAt = f.now()
	f.categories[id] = c
	return &c, nil
}

func (f *fakeRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	if _, ok := f.categories[id]; !ok {
		return notFound("category", id)
	}
	for _, p := range f.products {
		if p.CategoryID == id {
			return &domain.NotEmptyError{Entity: "category", ID: id.String(), Children: "products"}
		}
	}
	delete(f.categories, id)
	return nil
}

// --- brands ---

func (f *fakeRepo) brandConflict(id uuid.UUID, name, code string) error {
	for _, b := range f.brands {
		if b.ID == id {
			continue
		}
		if b.Code == code {
			return &domain.AlreadyExistsError{Entity: "brand", Field: "code", Value: code}
		}
		if strings.EqualFold(b.Name, name) {
			return &domain.AlreadyExistsError{Entity: "brand", Field: "name", Value: name}
		}
	}
	return nil
}

func (f *fakeRepo) CreateBrand(_ context.Context, b *domain.Brand) (*domain.Brand, error) {
	if err := f.brandConflict(b.ID, b.Name, b.Code); err != nil {
		return nil, err
	}
	out := *b
	out.CreatedAt = f.now()
	out.UpdatedAt = out.CreatedAt
	f.brands[out.ID] = out
	return &out, nil
}

func (f *fakeRepo) GetBrandByID(_ context.Context, id uuid.UUID, onlyActive bool) (*domain.Brand, error) {
	b, ok := f.brands[id]
	if !ok || (onlyActive && !b.IsActive) {
		return nil, notFound("brand", id)
	}
	return &b, nil
}

func (f *fakeRepo) ListBrands(_ context.Context, p store.ListBrandsParams) ([]domain.Brand, int, error) {
	var out []domain.Brand
	for _, b := range f.brands {
		if p.IsActive == nil || b.IsActive == *p.IsActive {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return applyPage(out, p.Limit, p.Offset), len(out), nil
}

func (f *fakeRepo) UpdateBrand(_ context.Context, id uuid.UUID, patch *domain.BrandPatch) (*domain.Brand, error) {
	b, ok := f.brands[id]
	if !ok {
		return nil, notFound("brand", id)
	}
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.Code != nil {
		b.Code = *patch.Code
	}
	if patch.IsActive != nil {
		b.IsActive = *patch.IsActive
	}
	if err := f.brandConflict(id, b.Name, b.Code); err != nil {
		return nil, err
	}
	b.UpdatedAt = f.now()
	f.brands[id] = b
	return &b, nil
}

func (f *fakeRepo) DeleteBrand(_ context.Context, id uuid.UUID) error {
	if _, ok := f.brands[id]; !ok {
		return notFound("brand", id)
	}
	for _, p := range f.products {
		if p.BrandID == id {
			return &domain.NotEmptyError{Entity: "brand", ID: id.String(), Children: "products"}
		}
	}
	delete(f.brands, id)
	return nil
}

// --- products ---

func (f *fakeRepo) productConflict(p domain.Product) error {
	for _, other := range f.products {
		if other.ID == p.ID {
			continue
		}
		if strings.EqualFold(other.Name, p.Name) {
			return &domain.AlreadyExistsError{Entity: "product", Field: "name", Value: p.Name}
		}
		if other.Slug == p.Slug {
			return &domain.AlreadyExistsError{Entity: "product", Field: "slug", Value: p.Slug}
		}
	}
	return nil
}

func (f *fakeRepo) checkProductParents(p domain.Product) error {
	if _, ok := f.categories[p.CategoryID]; !ok {
		return notFound("category", p.CategoryID)
	}
	if _, ok := f.brands[p.BrandID]; !ok {
		return notFound("brand", p.BrandID)
	}
	return nil
}

// readProduct attaches the category and brand summaries like the SQL join.
func (f *fakeRepo) readProduct(p domain.Product) *domain.Product {
	c := f.categories[p.CategoryID]
	b := f.brands[p.BrandID]
	p.Category = &domain.ParentRef{ID: c.ID, Name: c.Name, Code: c.Code}
	p.Brand = &domain.ParentRef{ID: b.ID, Name: b.Name, Code: b.Code}
	return &p
}

func (f *fakeRepo) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	in := *p
	if err := f.checkProductParents(in); err != nil {
		return nil, err
	}
	if err := f.productConflict(in); err != nil {
		return nil, err
	}
	in.Category, in.Brand = nil, nil
	in.CreatedAt = f.now()
	in.UpdatedAt = in.CreatedAt
	f.products[in.ID] = in
	return f.readProduct(in), nil
}

func (f *fakeRepo) GetProductByID(_ context.Context, id uuid.UUID, onlyActive bool) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok || (onlyActive && !p.IsActive) {
		return nil, notFound("product", id)
	}
	return f.readProduct(p), nil
}

func (f *fakeRepo) GetProductBySlug(_ context.Context, slug string, onlyActive bool) (*domain.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug && (!onlyActive || p.IsActive) {
			return f.readProduct(p), nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "product", ID: slug}
}

func (f *fakeRepo) ListProducts(_ context.Context, params store.ListProductsParams) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range f.products {
		if params.IsActive != nil && p.IsActive != *params.IsActive {
			continue
		}
		if params.CategoryID != nil && p.CategoryID != *params.CategoryID {
			continue
		}
		if params.BrandID != nil && p.BrandID != *params.BrandID {
			continue
		}
		if params.Search != nil {
			needle := strings.ToLower(*params.Search)
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			if !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(strings.ToLower(desc), needle) {
				continue
			}
		}
		out = append(out, *f.readProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return applyPage(out, params.Limit, params.Offset), len(out), nil
}

func (f *fakeRepo) UpdateProduct(_ context.Context, id uuid.UUID, patch *domain.ProductPatch) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = domain.NormalizeOptionalText(patch.Description)
	}
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.BrandID != nil {
		p.BrandID = *patch.BrandID
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if err := f.checkProductParents(p); err != nil {
		return nil, err
	}
	if err := f.productConflict(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = f.now()
	f.products[id] = p
	return f.readProduct(p), nil
}

func (f *fakeRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := f.products[id]; !ok {
		return notFound("product", id)
	}
	for _, v := range f.variants {
		if v.ProductID == id {
			return &domain.NotEmptyError{Entity: "product", ID: id.String(), Children: "variants"}
		}
	}
	delete(f.products, id)
	return nil
}

// --- variants ---

func (f *fakeRepo) variantConflict(v domain.Variant) error {
	for _, other := range f.variants {
		if other.ID != v.ID && other.SKU == v.SKU {
			return &domain.AlreadyExistsError{Entity: "variant", Field: "sku", Value: v.SKU}
		}
	}
	return nil
}

func (f *fakeRepo) CreateVariant(_ context.Context, v *domain.Variant) (*domain.Variant, error) {
	if _, ok := f.products[v.ProductID]; !ok {
		return nil, notFound("product", v.ProductID)
	}
	if err := f.variantConflict(*v); err != nil {
		return nil, err
	}
	out := *v
	out.CreatedAt = f.now()
	out.UpdatedAt = out.CreatedAt
	f.variants[out.ID] = out
	return &out, nil
}

func (f *fakeRepo) GetVariantByID(_ context.Context, id uuid.UUID, onlyActive bool) (*domain.Variant, error) {
	v, ok := f.variants[id]
	if !ok || (onlyActive && !v.IsActive) {
		return nil, notFound("variant", id)
	}
	return &v, nil
}

func (f *fakeRepo) GetVariantBySKU(_ context.Context, sku string, onlyActive bool) (*domain.Variant, error) {
	for _, v := range f.variants {
		if v.SKU == sku && (!onlyActive || v.IsActive) {
			out := v
			return &out, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "variant", ID: sku}
}

func (f *fakeRepo) ListVariants(_ context.Context, p store.ListVariantsParams) ([]domain.Variant, int, error) {
	var out []domain.Variant
	for _, v := range f.variants {
		if p.ProductID != nil && v.ProductID != *p.ProductID {
			continue
		}
		if p.IsActive != nil && v.IsActive != *p.IsActive {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return applyPage(out, p.Limit, p.Offset), len(out), nil
}

func (f *fakeRepo) ListVariantsByProduct(_ context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	out := []domain.Variant{}
	for _, v := range f.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRepo) UpdateVariant(_ context.Context, id uuid.UUID, patch *domain.VariantPatch) (*domain.Variant, error) {
	v, ok := f.variants[id]
	if !ok {
		return nil, notFound("variant", id)
	}
	if patch.Price != nil {
		v.Price = *patch.Price
	}
	if patch.Stock != nil {
		v.Stock = *patch.Stock
	}
	if patch.Attributes != nil {
		v.Attributes = *patch.Attributes
	}
	if patch.SKU != nil {
		v.SKU = *patch.SKU
	}
	if patch.IsActive != nil {
		v.IsActive = *patch.IsActive
	}
	if err := f.variantConflict(v); err != nil {
		return nil, err
	}
	v.UpdatedAt = f.now()
	f.variants[id] = v
	return &v, nil
}

func (f *fakeRepo) DeleteVariant(_ context.Context, id uuid.UUID) error {
	if _, ok := f.variants[id]; !ok {
		return notFound("variant", id)
	}
	delete(f.variants, id)
	return nil
}

// --- users ---

func (f *fakeRepo) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, other := range f.users {
		if other.Email == u.Email {
			return nil, &domain.AlreadyExistsError{Entity: "user", Field: "email", Value: u.Email}
		}
	}
	out := *u
	out.CreatedAt = f.now()
	out.UpdatedAt = out.CreatedAt
	f.users[out.ID] = out
	return &out, nil
}

func (f *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user"}
	}
	return &u, nil
}

func (f *fakeRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "user"}
}
