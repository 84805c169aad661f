// Package service holds the catalog business rules: derived identifiers,
// parent resolution and visibility. Every write runs in one store transaction.
package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"catalog-service/internal/logger"
	"catalog-service/internal/metrics"
	"catalog-service/internal/store"
)

const tracerName = "catalog-service/internal/service"

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page selects a window of a list. Zero Limit means DefaultLimit.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) normalized() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// ListQuery filters categories and brands.
type ListQuery struct {
	Page
	IsActive *bool
}

// ProductQuery filters products.
type ProductQuery struct {
	Page
	IsActive   *bool
	Search     *string
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
}

// VariantQuery filters variants.
type VariantQuery struct {
	Page
	IsActive  *bool
	ProductID *uuid.UUID
}

// CatalogService implements the catalog operations on top of a Repository.
type CatalogService struct {
	repo    store.Repository
	newID   func() (uuid.UUID, error)
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*CatalogService)

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(fn func() (uuid.UUID, error)) Option {
	return func(s *CatalogService) { s.newID = fn }
}

// WithMetrics counts write operations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *CatalogService) { s.metrics = m }
}

// WithTracerProvider takes spans from tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *CatalogService) { s.tracer = tp.Tracer(tracerName) }
}

func NewCatalogService(repo store.Repository, opts ...Option) *CatalogService {
	s := &CatalogService{repo: repo, newID: uuid.NewV7, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CatalogService) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "CatalogService."+name, trace.WithAttributes(attrs...))
}

// finish ends a span and, for writes, counts the outcome.
func (s *CatalogService) finish(ctx context.Context, span trace.Span, entity, operation string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if operation != "" {
		s.metrics.ObserveOperation(entity, operation, err)
		if err == nil {
			logger.FromContext(ctx).Debug("catalog write", zap.String("entity", entity), zap.String("operation", operation))
		}
	}
}
