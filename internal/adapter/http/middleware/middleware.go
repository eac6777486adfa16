package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/kitabu/kitabu/internal/adapter/http/response"
	"github.com/kitabu/kitabu/internal/observability"
	"github.com/kitabu/kitabu/internal/ports"
	"github.com/kitabu/kitabu/internal/service/logger"
	"github.com/kitabu/kitabu/internal/service/ratelimit"
)

type contextKey string

const actorKey contextKey = "actor"

// CorrelationIDHeader is the request/response header carrying the
// correlation id.
const CorrelationIDHeader = "X-Correlation-ID"

// ActorFromContext returns the authenticated actor claims, if any.
func ActorFromContext(ctx context.Context) *ports.TokenClaims {
	claims, _ := ctx.Value(actorKey).(*ports.TokenClaims)
	return claims
}

// CorrelationID ensures every request and response carries a correlation id
// and stores it in the context for the structured logger.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = generateCorrelationID()
		}
		w.Header().Set(CorrelationIDHeader, cid)
		ctx := context.WithValue(r.Context(), logger.CorrelationIDKey, cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateCorrelationID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Metrics records request counts and latencies per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		observability.HTTPRequestsTotal.WithLabelValues(
			r.Method, route, http.StatusText(rec.status)).Inc()
		observability.HTTPRequestDuration.WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}

// Recovery turns panics into 500 responses instead of crashing the process.
func Recovery(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "panic recovered", nil, map[string]interface{}{
						"panic": rec,
						"path":  r.URL.Path,
					})
					response.WriteJSON(w, http.StatusInternalServerError, false,
						"internal server error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Auth validates the bearer token and stores the actor claims in the
// request context. Mutating handlers refuse requests with no actor.
type Auth struct {
	tokens ports.TokenService
}

// NewAuth creates the auth middleware.
func NewAuth(tokens ports.TokenService) *Auth {
	return &Auth{tokens: tokens}
}

// Require rejects requests without a valid bearer token.
func (m *Auth) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "authorization header required")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}
		claims, err := m.tokens.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), actorKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RateLimit limits mutating calls per actor (falling back to remote
// address for unauthenticated requests).
func RateLimit(limiter ratelimit.Service, calls int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if claims := ActorFromContext(r.Context()); claims != nil {
				key = claims.ActorID
			}
			allowed, err := limiter.Allow(r.Context(), "ratelimit:"+key, calls, window)
			if err != nil {
				// Never refuse a financial operation because the limiter is down.
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				response.TooManyRequests(w, "rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
