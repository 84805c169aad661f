package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalog-service/internal/auth"
	"catalog-service/internal/domain"
	"catalog-service/internal/logger"
	"catalog-service/internal/service"
)

const maxBodyBytes = 1 << 20

// CatalogService is the set of catalog operations exposed over HTTP.
type CatalogService interface {
	CreateCategory(ctx context.Context, in domain.CategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Category, error)
	ListCategories(ctx context.Context, caller *domain.User, q service.ListQuery) ([]domain.Category, int, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateBrand(ctx context.Context, in domain.BrandInput) (*domain.Brand, error)
	GetBrand(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Brand, error)
	ListBrands(ctx context.Context, caller *domain.User, q service.ListQuery) ([]domain.Brand, int, error)
	UpdateBrand(ctx context.Context, id uuid.UUID, patch domain.BrandPatch) (*domain.Brand, error)
	DeleteBrand(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, caller *domain.User, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context, caller *domain.User, q service.ProductQuery) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateVariant(ctx context.Context, productID uuid.UUID, in domain.VariantInput) (*domain.Variant, error)
	GetVariant(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.Variant, error)
	GetVariantBySKU(ctx context.Context, caller *domain.User, sku string) (*domain.Variant, error)
	ListVariants(ctx context.Context, caller *domain.User, q service.VariantQuery) ([]domain.Variant, int, error)
	ListProductVariants(ctx context.Context, caller *domain.User, productID uuid.UUID, q service.VariantQuery) ([]domain.Variant, int, error)
	UpdateVariant(ctx context.Context, id uuid.UUID, patch domain.VariantPatch) (*domain.Variant, error)
	DeleteVariant(ctx context.Context, id uuid.UUID) error
}

// Authenticator logs users in and resolves bearer tokens.
type Authenticator interface {
	Login(ctx context.Context, creds domain.Credentials) (*auth.Token, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	catalog CatalogService
	auth    Authenticator
	db      Pinger
	service string
}

// NewHTTPHandler creates a new HTTPHandler. db may be nil, in which case the
// health check skips the database probe.
func NewHTTPHandler(catalog CatalogService, authn Authenticator, db Pinger, serviceName string) *HTTPHandler {
	return &HTTPHandler{catalog: catalog, auth: authn, db: db, service: serviceName}
}

// --- Helpers ---

// ErrorResponse is the body of every error reply. Field and Violations are set
// for validation failures only.
type ErrorResponse struct {
	Error      string                  `json:"error"`
	Field      string                  `json:"field,omitempty"`
	Violations []domain.FieldViolation `json:"violations,omitempty"`
}

// Pagination echoes the window of a list response.
type Pagination struct {
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
}

// ListResponse wraps one page of results.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newListResponse[T any](items []T, total int, page service.Page) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	if page.Limit <= 0 {
		page.Limit = service.DefaultLimit
	}
	return ListResponse[T]{Data: items, Pagination: Pagination{Offset: page.Offset, Limit: page.Limit, TotalItems: total}}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			zap.L().Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

func respondUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondWithError(w, http.StatusUnauthorized, detail)
}

// respondWithServiceError translates a service or auth error into its HTTP
// status. Unexpected errors are logged and reported as 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:      verr.Error(),
			Field:      verr.Field,
			Violations: verr.Violations,
		})
	case errors.Is(err, domain.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrNotEmpty):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		respondUnauthorized(w, "Expired token")
	case errors.Is(err, auth.ErrTokenInvalid):
		respondUnauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondUnauthorized(w, "Invalid credentials")
	case errors.Is(err, auth.ErrUnauthorized):
		respondUnauthorized(w, "Not authenticated")
	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Not enough privileges")
	default:
		logger.FromContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads the request body into dst. It writes a 400 and returns false
// when the body is not valid JSON for dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// parseIDParam reads a UUID path parameter. A malformed value is a
// validation failure on that parameter.
func parseIDParam(w http.ResponseWriter, r *http.Request, param, field string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondWithServiceError(w, r, domain.NewValidationError(field, "uuid"))
		return uuid.Nil, false
	}
	return id, true
}

// parsePage reads offset and limit. Absent values fall back to the service
// defaults; out-of-range values are rejected.
func parsePage(q url.Values) (service.Page, error) {
	var page service.Page
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return page, domain.NewValidationError("offset", "int")
		}
		if v < 0 {
			return page, domain.NewValidationError("offset", "gte=0")
		}
		page.Offset = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return page, domain.NewValidationError("limit", "int")
		}
		if v < 1 {
			return page, domain.NewValidationError("limit", "gte=1")
		}
		if v > service.MaxLimit {
			return page, domain.NewValidationError("limit", "lte="+strconv.Itoa(service.MaxLimit))
		}
		page.Limit = v
	}
	return page, nil
}

func parseOptionalBool(q url.Values, key string) (*bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "bool")
	}
	return &v, nil
}

func parseOptionalUUID(q url.Values, key string) (*uuid.UUID, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "uuid")
	}
	return &v, nil
}

func parseListQuery(q url.Values) (service.ListQuery, error) {
	page, err := parsePage(q)
	if err != nil {
		return service.ListQuery{}, err
	}
	active, err := parseOptionalBool(q, "is_active")
	if err != nil {
		return service.ListQuery{}, err
	}
	return service.ListQuery{Page: page, IsActive: active}, nil
}

// --- Auth & health ---

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !decodeJSON(w, r, &creds) {
		return
	}
	token, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, token)
}

// Me returns the authenticated caller.
func (h *HTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, CallerFromContext(r.Context()))
}

func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	dbStatus := "skipped"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		dbStatus = "healthy"
		if err := h.db.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
			logger.FromContext(r.Context()).Warn("health check database ping failed", zap.Error(err))
		}
	}

	status, code := "healthy", http.StatusOK
	if dbStatus == "unhealthy" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondWithJSON(w, code, map[string]interface{}{
		"status":      status,
		"serviceName": h.service,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"database":    dbStatus,
	})
}

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/healthz", h.Healthz)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.With(OptionalAuth(h.auth), RequireAuth).Get("/me", h.Me)
	})

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(OptionalAuth(h.auth))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{categoryId}", h.GetCategory)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/", h.CreateCategory)
				r.Patch("/{categoryId}", h.UpdateCategory)
				r.Delete("/{categoryId}", h.DeleteCategory)
			})
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", h.ListBrands)
			r.Get("/{brandId}", h.GetBrand)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/", h.CreateBrand)
				r.Patch("/{brandId}", h.UpdateBrand)
				r.Delete("/{brandId}", h.DeleteBrand)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			// before {productId} so the literal segment wins
			r.Get("/slug/{slug}", h.GetProductBySlug)
			r.Get("/{productId}", h.GetProduct)
			r.Get("/{productId}/variants", h.ListProductVariants)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Post("/", h.CreateProduct)
				r.Patch("/{productId}", h.UpdateProduct)
				r.Delete("/{productId}", h.DeleteProduct)
				r.Post("/{productId}/variants", h.CreateVariant)
			})
		})

		r.Route("/variants", func(r chi.Router) {
			r.Get("/", h.ListVariants)
			r.Get("/sku/{sku}", h.GetVariantBySKU)
			r.Get("/{variantId}", h.GetVariant)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Patch("/{variantId}", h.UpdateVariant)
				r.Delete("/{variantId}", h.DeleteVariant)
			})
		})
	})
}
