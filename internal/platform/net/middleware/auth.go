package middleware

import (
	"net/http"

	pnet "dadhumor/internal/platform/net"
)

// AuthPort authenticates a request and names the caller
type AuthPort interface {
	Parse(r *http.Request) (caller string, err error)
}

// Auth passes through when p is nil, otherwise rejects requests the port refuses
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			caller, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithCaller(r.Context(), caller)))
		})
	}
}
