package audit

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const (
	HeaderRequestID    = "X-Request-ID"
	HeaderCountry      = "X-Country"
	HeaderUserID       = "X-User-ID"
	HeaderForwardedFor = "X-Forwarded-For"

	DefaultCountry = "co"
)

// Context carries per-request caller metadata. Country is the tenant tag
// forwarded to the remote services.
type Context struct {
	RequestID string
	Country   string
	UserID    string
	IP        string
}

type ctxKey struct{}

// FromRequest builds the audit context from request headers. A missing
// request id is generated and a missing country falls back to defaultCountry
// (DefaultCountry when empty).
func FromRequest(r *http.Request, defaultCountry string) Context {
	if defaultCountry == "" {
		defaultCountry = DefaultCountry
	}

	reqID := strings.TrimSpace(r.Header.Get(HeaderRequestID))
	if reqID == "" {
		reqID = uuid.NewString()
	}

	country := strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderCountry)))
	if country == "" {
		country = defaultCountry
	}

	return Context{
		RequestID: reqID,
		Country:   country,
		UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
		IP:        clientIP(r),
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get(HeaderForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func WithContext(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext returns the stored audit context, or one with the default
// country when none was stored.
func FromContext(ctx context.Context) Context {
	if ac, ok := ctx.Value(ctxKey{}).(Context); ok {
		return ac
	}
	return Context{Country: DefaultCountry}
}
