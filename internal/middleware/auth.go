package middleware

import (
	"net/http"

	"github.com/tournaija/tournaija/internal/models"
	"github.com/tournaija/tournaija/internal/security"
)

var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// Auth rejects requests without a configured API key. The accepted key is
// attached to the request's security.Caller for audit and cost logging.
func Auth(apiKeys []string, headerName string) func(http.Handler) http.Handler {
	keySet := make(map[string]bool, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := apiKeyFrom(r, headerName)
			if key == "" {
				models.WriteError(w, http.StatusUnauthorized, "API key required")
				return
			}
			if !keySet[key] {
				models.WriteError(w, http.StatusForbidden, "invalid API key")
				return
			}

			caller := security.CallerFrom(r.Context())
			caller.APIKey = key
			next.ServeHTTP(w, r.WithContext(security.WithCaller(r.Context(), caller)))
		})
	}
}

func apiKeyFrom(r *http.Request, headerName string) string {
	if key := r.Header.Get(headerName); key != "" {
		return key
	}
	if c, err := r.Cookie("api_key"); err == nil {
		return c.Value
	}
	return ""
}
