package v1

import (
	"context"
	"net/http"
	"time"
)

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

// readyz verifies the snapshot store, when configured, within a short
// deadline. Without one the in-memory service is always ready.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if rc, ok := s.snap.(ReadyChecker); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		if err := rc.Ready(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
