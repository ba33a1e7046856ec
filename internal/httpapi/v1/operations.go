package v1

import (
	"encoding/json"
	"net/http"
)

// postDeposit handles POST /v1/accounts/{number}/deposit.
func (s *Server) postDeposit(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	number, ok := accountNumber(w, r)
	if !ok {
		return
	}
	var req amountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	balance, err := s.svc.Deposit(number, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{Number: number, Balance: balance})
}

// postWithdraw handles POST /v1/accounts/{number}/withdraw.
func (s *Server) postWithdraw(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	number, ok := accountNumber(w, r)
	if !ok {
		return
	}
	var req amountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	balance, err := s.svc.Withdraw(number, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, balanceResponse{Number: number, Balance: balance})
}

// postInterest handles POST /v1/interest, crediting every account.
func (s *Server) postInterest(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req postInterestRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	credited, err := s.svc.ApplyInterestAll(req.Rate, req.Monthly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	toJSON(w, http.StatusOK, interestResponse{AccountsCredited: credited})
}

// getStats handles GET /v1/stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.Statistics()
	resp := statsResponse{
		Count:   stats.Count,
		Total:   stats.Total,
		Average: stats.Average,
	}
	if stats.Richest != nil {
		richest := toAccountResponse(*stats.Richest)
		resp.Richest = &richest
	}
	toJSON(w, http.StatusOK, resp)
}
