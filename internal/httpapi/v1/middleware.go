package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tinoosan/bankcore/internal/bank"
)

type ctxKey string

const (
	ctxKeyPostAccount ctxKey = "validatedPostAccount"
	ctxKeyPostPending ctxKey = "validatedPostPending"
)

// validatePostAccount checks the POST /v1/accounts body shape and stores
// the decoded request in the context for the handler. Business rules
// (positive number, non-negative balance, uniqueness) stay in the
// service layer.
func (s *Server) validatePostAccount() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postAccountRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if req.Holder == "" {
				badRequest(w, "holder is required")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostAccount, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// validatePostPending checks the POST /v1/pending body shape, maps the
// kind text and stores the decoded request in the context.
func (s *Server) validatePostPending() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req postPendingRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			if _, ok := bank.ParseKind(req.Kind); !ok {
				unprocessable(w, "kind must be Deposit or Withdraw", "unsupported_kind")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPostPending, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
