package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"catalog-service/internal/domain"
	"catalog-service/internal/service"
)

// --- Variant Handlers ---

func (h *HTTPHandler) CreateVariant(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "productId", "product_id")
	if !ok {
		return
	}
	var input domain.VariantInput
	if !decodeJSON(w, r, &input) {
		return
	}
	created, err := h.catalog.CreateVariant(r.Context(), productID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := parsePage(query)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	q := service.VariantQuery{Page: page}
	if q.IsActive, err = parseOptionalBool(query, "is_active"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if q.ProductID, err = parseOptionalUUID(query, "product_id"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	variants, total, err := h.catalog.ListVariants(r.Context(), CallerFromContext(r.Context()), q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newListResponse(variants, total, page))
}

func (h *HTTPHandler) ListProductVariants(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r, "productId", "product_id")
	if !ok {
		return
	}
	query := r.URL.Query()
	page, err := parsePage(query)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	q := service.VariantQuery{Page: page}
	if q.IsActive, err = parseOptionalBool(query, "is_active"); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	variants, total, err := h.catalog.ListProductVariants(r.Context(), CallerFromContext(r.Context()), productID, q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newListResponse(variants, total, page))
}

func (h *HTTPHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "variantId", "variant_id")
	if !ok {
		return
	}
	variant, err := h.catalog.GetVariant(r.Context(), CallerFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, variant)
}

func (h *HTTPHandler) GetVariantBySKU(w http.ResponseWriter, r *http.Request) {
	variant, err := h.catalog.GetVariantBySKU(r.Context(), CallerFromContext(r.Context()), chi.URLParam(r, "sku"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, variant)
}

func (h *HTTPHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "variantId", "variant_id")
	if !ok {
		return
	}
	var patch domain.VariantPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	updated, err := h.catalog.UpdateVariant(r.Context(), id, patch)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "variantId", "variant_id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteVariant(r.Context(), id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
