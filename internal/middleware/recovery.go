package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"field-backend/pkg/utils"
)

// PanicRecovery converts a handler panic into a 500 response instead of
// tearing down the connection. The stack goes to the log, never to the
// client.
func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[Panic] %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				utils.Error(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
