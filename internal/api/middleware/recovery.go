package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/go-pkgz/lgr"
)

// Recovery turns a panicking handler into a 500 JSON response instead
// of killing the listener goroutine.
func Recovery(logger lgr.L) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Logf("ERROR panic handling %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": "internal server error",
					"code":  http.StatusInternalServerError,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
