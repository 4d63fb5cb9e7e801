package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
)

// JobAuthMiddleware gates the job trigger routes behind a shared secret that
// only the scheduler knows. There are no end users on this surface, so no
// session handling is involved.
func JobAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := os.Getenv("JOB_SECRET")
		if secret == "" {
			http.Error(w, "Job trigger surface is not configured", http.StatusServiceUnavailable)
			return
		}

		provided := r.Header.Get("X-Job-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
