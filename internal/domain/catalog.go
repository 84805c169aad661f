package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Audit carries the soft-delete flag and the store-managed timestamps shared by
// every catalog entity. It is embedded, so its fields are flattened in JSON.
type Audit struct {
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups products by kind (e.g. "GPU"). Its code feeds slugs and SKUs.
type Category struct {
	ID   uuid.UUID `json:"category_id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
	Audit
}

// Brand is the manufacturer of a product. Same shape as Category.
type Brand struct {
	ID   uuid.UUID `json:"brand_id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
	Audit
}

// ParentRef is the summary of a category or brand embedded in product read models.
type ParentRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// Product is a sellable item. Slug is derived from the category code, the brand
// name and the product name; it is never supplied by callers.
type Product struct {
	ID          uuid.UUID  `json:"product_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Slug        string     `json:"slug"`
	CategoryID  uuid.UUID  `json:"category_id"`
	BrandID     uuid.UUID  `json:"brand_id"`
	Category    *ParentRef `json:"category,omitempty"`
	Brand       *ParentRef `json:"brand,omitempty"`
	Audit
}

// Variant is a concrete configuration of a product with its own price and stock.
type Variant struct {
	ID         uuid.UUID       `json:"variant_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Price      decimal.Decimal `json:"price"`
	Stock      int32           `json:"stock"`
	Attributes string          `json:"attributes"`
	SKU        string          `json:"sku"`
	Audit
}

// NameCode is the name/code pair shared by categories and brands.
type NameCode struct {
	Name string `json:"name" validate:"required,min=3,max=50"`
	Code string `json:"code" validate:"required,catalogcode"`
}

// Normalize trims the name and canonicalizes the code.
func (nc *NameCode) Normalize() {
	nc.Name = NormalizeText(nc.Name)
	nc.Code = NormalizeCode(nc.Code)
}

// NameCodePatch is the partial-update counterpart of NameCode.
type NameCodePatch struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=50"`
	Code     *string `json:"code" validate:"omitempty,catalogcode"`
	IsActive *bool   `json:"is_active"`
}

// Normalize trims the name and canonicalizes the code when they are supplied.
func (p *NameCodePatch) Normalize() {
	if p.Name != nil {
		v := NormalizeText(*p.Name)
		p.Name = &v
	}
	if p.Code != nil {
		v := NormalizeCode(*p.Code)
		p.Code = &v
	}
}

// Empty reports whether no field was supplied.
func (p *NameCodePatch) Empty() bool {
	return p.Name == nil && p.Code == nil && p.IsActive == nil
}

type CategoryInput struct {
	NameCode
	IsActive *bool `json:"is_active"`
}

type CategoryPatch struct {
	NameCodePatch
}

type BrandInput struct {
	NameCode
	IsActive *bool `json:"is_active"`
}

type BrandPatch struct {
	NameCodePatch
}

// ProductInput is the payload accepted when creating a product.
type ProductInput struct {
	Name        string    `json:"name" validate:"required,min=3,max=150"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	BrandID     uuid.UUID `json:"brand_id" validate:"required"`
	IsActive    *bool     `json:"is_active"`
}

func (in *ProductInput) Normalize() {
	in.Name = NormalizeText(in.Name)
	in.Description = NormalizeOptionalText(in.Description)
}

// ProductPatch carries the fields of a partial product update. Slug is filled by
// the orchestrator when a slug-contributing field changes.
type ProductPatch struct {
	Name        *string    `json:"name" validate:"omitempty,min=3,max=150"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	CategoryID  *uuid.UUID `json:"category_id"`
	BrandID     *uuid.UUID `json:"brand_id"`
	IsActive    *bool      `json:"is_active"`
	Slug        *string    `json:"-" validate:"-"`
}

func (p *ProductPatch) Normalize() {
	if p.Name != nil {
		v := NormalizeText(*p.Name)
		p.Name = &v
	}
	if p.Description != nil {
		v := NormalizeText(*p.Description)
		p.Description = &v
	}
}

// TouchesIdentity reports whether the patch supplies a field the slug depends on.
func (p *ProductPatch) TouchesIdentity() bool {
	return p.Name != nil || p.CategoryID != nil || p.BrandID != nil
}

// VariantInput is the payload accepted when creating a variant.
type VariantInput struct {
	Price      decimal.Decimal `json:"price" validate:"price"`
	Stock      *int32          `json:"stock" validate:"required,gte=0"`
	Attributes string          `json:"attributes" validate:"required,min=1,max=255"`
	IsActive   *bool           `json:"is_active"`
}

func (in *VariantInput) Normalize() {
	in.Attributes = NormalizeText(in.Attributes)
}

// VariantPatch carries the fields of a partial variant update. SKU is filled by
// the orchestrator.
type VariantPatch struct {
	Price      *decimal.Decimal `json:"price" validate:"omitempty,price"`
	Stock      *int32           `json:"stock" validate:"omitempty,gte=0"`
	Attributes *string          `json:"attributes" validate:"omitempty,min=1,max=255"`
	IsActive   *bool            `json:"is_active"`
	SKU        *string          `json:"-" validate:"-"`
}

func (p *VariantPatch) Normalize() {
	if p.Attributes != nil {
		v := NormalizeText(*p.Attributes)
		p.Attributes = &v
	}
}

// ActiveOrDefault resolves an optional is_active flag; new records are active
// unless the caller says otherwise.
func ActiveOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}
