package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tournaija/tournaija/internal/security"
)

const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength caps client supplied ids before they reach logs.
const maxRequestIDLength = 128

// RequestID propagates X-Request-ID or generates one, echoes it on the
// response and records it on the request's security.Caller.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		caller := security.CallerFrom(r.Context())
		caller.RequestID = id
		next.ServeHTTP(w, r.WithContext(security.WithCaller(r.Context(), caller)))
	})
}
