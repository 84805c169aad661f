package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"catalog-service/internal/domain"
	"catalog-service/internal/logger"
)

// CatalogLookupServiceName is the fully qualified gRPC service name.
const CatalogLookupServiceName = "catalog.v1.CatalogLookup"

const (
	lookupGetProductBySlug = "/" + CatalogLookupServiceName + "/GetProductBySlug"
	lookupGetVariantBySKU  = "/" + CatalogLookupServiceName + "/GetVariantBySKU"
)

// CatalogLookupServer is the server API for the catalog.v1.CatalogLookup
// service. Requests and replies use well-known types so no generated code is
// needed.
type CatalogLookupServer interface {
	GetProductBySlug(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetVariantBySKU(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// CatalogLookupServiceDesc describes catalog.v1.CatalogLookup for grpc.Server.
var CatalogLookupServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogLookupServiceName,
	HandlerType: (*CatalogLookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetProductBySlug", Handler: getProductBySlugHandler},
		{MethodName: "GetVariantBySKU", Handler: getVariantBySKUHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterCatalogLookupServer registers srv on s.
func RegisterCatalogLookupServer(s grpc.ServiceRegistrar, srv CatalogLookupServer) {
	s.RegisterService(&CatalogLookupServiceDesc, srv)
}

func getProductBySlugHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogLookupServer).GetProductBySlug(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: lookupGetProductBySlug}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogLookupServer).GetProductBySlug(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getVariantBySKUHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogLookupServer).GetVariantBySKU(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: lookupGetVariantBySKU}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogLookupServer).GetVariantBySKU(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogLookupClient calls catalog.v1.CatalogLookup.
type CatalogLookupClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogLookupClient(cc grpc.ClientConnInterface) *CatalogLookupClient {
	return &CatalogLookupClient{cc: cc}
}

func (c *CatalogLookupClient) GetProductBySlug(ctx context.Context, slug string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, lookupGetProductBySlug, wrapperspb.String(slug), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogLookupClient) GetVariantBySKU(ctx context.Context, sku string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, lookupGetVariantBySKU, wrapperspb.String(sku), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LookupService is the read side used by the gRPC handler.
type LookupService interface {
	GetProductBySlug(ctx context.Context, caller *domain.User, slug string) (*domain.Product, error)
	GetVariantBySKU(ctx context.Context, caller *domain.User, sku string) (*domain.Variant, error)
}

// GRPCHandler serves catalog lookups to internal consumers. Calls are
// anonymous, so only active records are visible.
type GRPCHandler struct {
	catalog LookupService
}

func NewGRPCHandler(catalog LookupService) *GRPCHandler {
	return &GRPCHandler{catalog: catalog}
}

func (s *GRPCHandler) GetProductBySlug(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	slug := strings.TrimSpace(req.GetValue())
	if slug == "" {
		return nil, status.Error(codes.InvalidArgument, "slug is required")
	}
	product, err := s.catalog.GetProductBySlug(ctx, nil, slug)
	if err != nil {
		return nil, mapErrorToGrpcStatus(ctx, err)
	}
	return toStruct(product)
}

func (s *GRPCHandler) GetVariantBySKU(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	sku := strings.TrimSpace(req.GetValue())
	if sku == "" {
		return nil, status.Error(codes.InvalidArgument, "sku is required")
	}
	variant, err := s.catalog.GetVariantBySKU(ctx, nil, sku)
	if err != nil {
		return nil, mapErrorToGrpcStatus(ctx, err)
	}
	return toStruct(variant)
}

// toStruct renders v through its JSON form so gRPC replies carry the same
// field names as the HTTP API.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return out, nil
}

func mapErrorToGrpcStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrNotEmpty):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		logger.FromContext(ctx).Error("grpc lookup failed", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}

// UnaryLoggingInterceptor logs each call with its status code and stores a
// method-scoped logger in the context.
func UnaryLoggingInterceptor(base *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		log := base.With(zap.String("grpc_method", info.FullMethod))
		ctx = logger.WithContext(ctx, log)

		defer func() {
			if p := recover(); p != nil {
				log.Error("grpc handler panic", zap.Any("panic", p), zap.Stack("stack"))
				err = status.Error(codes.Internal, "internal error")
			}
			code := status.Code(err)
			fields := []zap.Field{zap.String("code", code.String()), zap.Duration("latency", time.Since(start))}
			if code == codes.Internal || code == codes.Unknown {
				log.Error("grpc call", append(fields, zap.Error(err))...)
				return
			}
			log.Info("grpc call", fields...)
		}()

		return handler(ctx, req)
	}
}
