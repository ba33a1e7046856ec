package v1

import (
	"net/http"

	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/service/ledger"
)

// postPending handles POST /v1/pending: queue a deferred deposit or
// withdrawal. Whether the account exists is decided at drain time.
func (s *Server) postPending(w http.ResponseWriter, r *http.Request) {
	req, ok := r.Context().Value(ctxKeyPostPending).(postPendingRequest)
	if !ok {
		writeErr(w, http.StatusInternalServerError, "missing validated request", "")
		return
	}
	kind, _ := bank.ParseKind(req.Kind)
	entry, err := s.svc.EnqueuePending(req.AccountNumber, kind, req.Amount, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	toJSON(w, http.StatusAccepted, pendingResponse{
		ID:            entry.ID,
		AccountNumber: entry.AccountNumber,
		Kind:          entry.Kind,
		Amount:        entry.Amount,
		Note:          entry.Note,
	})
}

// getPendingSize handles GET /v1/pending.
func (s *Server) getPendingSize(w http.ResponseWriter, r *http.Request) {
	toJSON(w, http.StatusOK, queueSizeResponse{Size: s.svc.PendingSize()})
}

// processPending handles POST /v1/pending/process: drain the queue and
// report the fate of every entry.
func (s *Server) processPending(w http.ResponseWriter, r *http.Request) {
	outcomes := s.svc.ProcessPendingQueue()
	resp := processPendingResponse{
		Processed: len(outcomes),
		Outcomes:  make([]outcomeResponse, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		item := outcomeResponse{
			EntryID:       o.Entry.ID,
			AccountNumber: o.Entry.AccountNumber,
			Kind:          o.Entry.Kind,
			Amount:        o.Entry.Amount,
			Status:        string(o.Status),
		}
		if o.Status == ledger.DrainApplied {
			balance := o.Balance
			item.Balance = &balance
			resp.Applied++
		}
		resp.Outcomes = append(resp.Outcomes, item)
	}
	toJSON(w, http.StatusOK, resp)
}
