package v1

import (
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
)

// accountNumber parses the {number} URL param. A non-integer is a 400;
// whether the account exists is the service's call.
func accountNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "number")
	number, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, "invalid account number")
		return 0, false
	}
	return number, true
}

// postAccount handles POST /v1/accounts.
func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyPostAccount).(postAccountRequest)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "missing validated request", "")
		return
	}
	acc, err := s.svc.CreateAccount(req.Number, req.Holder, req.InitialBalance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(acc))
}

// listAccounts handles GET /v1/accounts; items come back in ascending
// account number order.
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := s.svc.Accounts()
	items := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, listAccountsResponse{Items: items})
}

// getAccount handles GET /v1/accounts/{number}.
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	number, ok := accountNumber(w, r)
	if !ok {
		return
	}
	acc, err := s.svc.Account(number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(acc))
}

// getAccountHistory handles GET /v1/accounts/{number}/history; records
// come back in append order.
func (s *Server) getAccountHistory(w http.ResponseWriter, r *http.Request) {
	number, ok := accountNumber(w, r)
	if !ok {
		return
	}
	records, err := s.svc.History(number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	items := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, recordResponse{
			Kind:      rec.Kind,
			Amount:    rec.Amount,
			Timestamp: rec.Timestamp,
			Note:      rec.Note,
		})
	}
	toJSON(w, http.StatusOK, historyResponse{Number: number, Items: items})
}
