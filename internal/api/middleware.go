// internal/api/middleware.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/common/metrics"
)

type contextKey string

const contextKeyCallerEmail contextKey = "caller_email"

// CallerEmail extracts the authenticated caller's email from the context.
// Empty means anonymous; downstream authorization decides what that implies.
func CallerEmail(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyCallerEmail).(string); ok {
		return v
	}
	return ""
}

// identityMiddleware resolves the caller's email from a Bearer JWT (HS256,
// "email" claim) or, when header identity is enabled for demos, from the
// X-Admin-Email header. Identity failures never reject the request here;
// the caller proceeds as anonymous and authorization fails downstream.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := s.resolveIdentity(r)
		if email != "" {
			ctx := context.WithValue(r.Context(), contextKeyCallerEmail, email)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) resolveIdentity(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		raw := strings.TrimPrefix(header, "Bearer ")
		if email, err := s.parseToken(raw); err == nil {
			return email
		} else {
			s.logger.Debug("rejected bearer token", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if s.allowHeaderIdentity {
		return strings.TrimSpace(r.Header.Get("X-Admin-Email"))
	}
	return ""
}

func (s *Server) parseToken(raw string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("token carries no email claim")
	}
	return email, nil
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request and records the HTTP metrics.
func loggingMiddleware(log logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.Method + " " + r.URL.Path
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(wrapped.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		fields := map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     wrapped.statusCode,
			"durationMs": elapsed.Milliseconds(),
		}
		if wrapped.statusCode >= 500 {
			log.Error("http request", fields)
		} else if wrapped.statusCode >= 400 {
			log.Warn("http request", fields)
		} else {
			log.Info("http request", fields)
		}
	})
}

// corsMiddleware answers preflight requests and stamps the allowed origins.
func corsMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Admin-Email")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
