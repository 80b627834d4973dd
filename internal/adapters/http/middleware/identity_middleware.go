// Package middleware disponibiliza middlewares HTTP específicos da aplicação.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/dgeene/comment-limiter/internal/core/domain"
)

type identityKey struct{}

// Identity resolve a identidade da requisição: X-Author, depois API_KEY e por fim o IP do cliente.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := resolveIdentity(r)
		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFrom retorna a identidade resolvida pelo middleware, se houver.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(domain.Identity)
	return identity, ok && identity != ""
}

func resolveIdentity(r *http.Request) domain.Identity {
	if author := strings.TrimSpace(r.Header.Get("X-Author")); author != "" {
		return domain.Identity(author)
	}
	if token := strings.TrimSpace(r.Header.Get("API_KEY")); token != "" {
		return domain.Identity(token)
	}
	return domain.Identity(extractIP(r))
}

func extractIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	xRealIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xRealIP != "" {
		return xRealIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}

	return host
}
