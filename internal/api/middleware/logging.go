// Package middleware carries the HTTP cross-cutting concerns
// (request logging, panic recovery) the teacher's internal/api/middleware
// package provides, rebuilt around core's error taxonomy instead of the
// lending domain's per-service sentinel errors.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
)

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (c *statusCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

// Logging logs method, path, status and latency for every request.
func Logging(logger lgr.L) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			cap := &statusCapture{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(cap, r)
			logger.Logf("INFO %s %s %d %s remote=%s", r.Method, r.URL.Path, cap.status, time.Since(started), r.RemoteAddr)
		})
	}
}
