package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/tonghaoch/transaction-service-go/internal/api"
	"github.com/tonghaoch/transaction-service-go/internal/config"
)

// publicPaths never require an API key.
var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// Auth returns a middleware that checks incoming requests for valid API keys.
// If no API keys are configured, authentication is disabled.
// Public paths and OPTIONS requests always bypass authentication.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		keys := config.GetAPIKeys()
		if len(keys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := extractAPIKey(r)
		if apiKey == "" || !validKey(keys, apiKey) {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func validKey(keys []string, candidate string) bool {
	valid := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(candidate)) == 1 {
			valid = true
		}
	}
	return valid
}

// extractAPIKey gets the API key from x-api-key header or Authorization Bearer.
func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get("x-api-key"); key != "" {
		return key
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}

	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+api.ServiceName+`"`)
	api.WriteErrorMessage(w, http.StatusUnauthorized, api.TypeAuthentication, "Unauthorized")
}
