package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type contextKeyClient struct{}

// Client describes the caller as seen at the HTTP edge.
type Client struct {
	IP        string
	UserAgent string
	Browser   string
	OS        string
	Mobile    bool
	Bot       bool
}

// ClientMetadata extracts the client IP and a parsed User-Agent and adds them
// to the context. Apply it before request logging.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Parse(ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), c)))
	})
}

// Parse builds a Client from raw request values. An empty User-Agent yields
// zero browser fields.
func Parse(ip, userAgent string) Client {
	c := Client{IP: ip, UserAgent: userAgent}
	if userAgent == "" {
		return c
	}
	ua := useragent.New(userAgent)
	c.Browser, _ = ua.Browser()
	c.OS = ua.OS()
	c.Mobile = ua.Mobile()
	c.Bot = ua.Bot()
	return c
}

// GetClient retrieves client metadata from the context.
func GetClient(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(contextKeyClient{}).(Client)
	return c, ok
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	c, _ := GetClient(ctx)
	return c.IP
}

// WithClient injects client metadata into a context.
// Useful for unit tests that don't run the full HTTP middleware chain.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, contextKeyClient{}, c)
}

// ClientIPFromRequest extracts the real client IP, honouring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For lists client, proxy1, proxy2, ...
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return "unknown"
}
