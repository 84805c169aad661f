package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"catalog-service/internal/domain"
	"catalog-service/internal/service"
)

// --- Product Handlers ---

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input domain.ProductInput
	if !decodeJSON(w, r, &input) {
		return
	}
	created, err := h.catalog.CreateProduct(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := parsePage(query)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	q := service.ProductQuery{Page: page}
	if q.IsActive, err = parseOptionalBool(query, "is_active"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if q.CategoryID, err = parseOptionalUUID(query, "category_id"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if q.BrandID, err = parseOptionalUUID(query, "brand_id"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if search := strings.TrimSpace(query.Get("search")); search != "" {
		q.Search = &search
	}

	products, total, err := h.catalog.ListProducts(r.Context(), CallerFromContext(r.Context()), q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newListResponse(products, total, page))
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "productId", "product_id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProductBySlug(r.Context(), CallerFromContext(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "productId", "product_id")
	if !ok {
		return
	}
	var patch domain.ProductPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "productId", "product_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
