package api

import (
	"net/http"

	"catalog-service/internal/domain"
)

// --- Category Handlers ---

func (h *HTTPHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	created, err := h.catalog.CreateCategory(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	categories, total, err := h.catalog.ListCategories(r.Context(), CallerFromContext(r.Context()), q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newListResponse(categories, total, q.Page))
}

func (h *HTTPHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "categoryId", "category_id")
	if !ok {
		return
	}
	category, err := h.catalog.GetCategory(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, category)
}

func (h *HTTPHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "categoryId", "category_id")
	if !ok {
		return
	}
	var patch domain.CategoryPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateCategory(r.Context(), id, patch)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "categoryId", "category_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Brand Handlers ---

func (h *HTTPHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var input domain.BrandInput
	if !decodeJSON(w, r, &input) {
		return
	}
	created, err := h.catalog.CreateBrand(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListBrands(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	brands, total, err := h.catalog.ListBrands(r.Context(), CallerFromContext(r.Context()), q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newListResponse(brands, total, q.Page))
}

func (h *HTTPHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "brandId", "brand_id")
	if !ok {
		return
	}
	brand, err := h.catalog.GetBrand(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, brand)
}

func (h *HTTPHandler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "brandId", "brand_id")
	if !ok {
		return
	}
	var patch domain.BrandPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateBrand(r.Context(), id, patch)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "brandId", "brand_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBrand(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
