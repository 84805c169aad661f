package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"catalog-service/internal/auth"
	"catalog-service/internal/domain"
	"catalog-service/internal/logger"
)

type ctxKey int

const (
	callerKey ctxKey = iota
	authErrKey
)

// CallerFromContext returns the authenticated user, or nil for anonymous
// requests.
func CallerFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(callerKey).(*domain.User)
	return u
}

// WithCaller stores the authenticated user in ctx.
func WithCaller(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, callerKey, u)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// OptionalAuth resolves the bearer token, if any. A missing or bad credential
// leaves the request anonymous; the failure is kept for RequireAuth.
func OptionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			user, err := authn.Authenticate(ctx, token)
			if err != nil {
				if !isAuthFailure(err) {
					respondWithServiceError(w, r, err)
					return
				}
				ctx = context.WithValue(ctx, authErrKey, err)
			} else {
				ctx = WithCaller(ctx, user)
				ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", user.ID.String())))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, auth.ErrTokenExpired) ||
		errors.Is(err, auth.ErrTokenInvalid) ||
		errors.Is(err, auth.ErrUnauthorized)
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CallerFromContext(r.Context()) == nil {
			err, _ := r.Context().Value(authErrKey).(error)
			if err == nil {
				err = auth.ErrUnauthorized
			}
			respondWithServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !CallerFromContext(r.Context()).IsAdmin() {
			respondWithServiceError(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequestLogger logs one line per request and stores a request-scoped logger
// carrying the request id in the context.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
			}
			switch {
			case status >= 500:
				log.Error("request", fields...)
			case status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
		})
	}
}
