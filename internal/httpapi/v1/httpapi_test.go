package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/bankcore/internal/service/ledger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (*ledger.Service, http.Handler) {
	t.Helper()
	svc := ledger.New(testLogger(), nil, fixedClock)
	dir := t.TempDir()
	h := New(svc, nil, filepath.Join(dir, "accounts.csv"), filepath.Join(dir, "transactions.csv"), testLogger()).Handler()
	return svc, h
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func doGet(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestPostAccounts_ValidAndInvalid(t *testing.T) {
	_, h := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{
		"number": 100, "holder": "Alice", "initial_balance": "250",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var acc accountResponse
	decodeBody(t, rec, &acc)
	if acc.Number != 100 || acc.Holder != "Alice" || !acc.Balance.Equal(decimal.RequireFromString("250")) {
		t.Fatalf("account response: %+v", acc)
	}

	// duplicate number
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{
		"number": 100, "holder": "Mallory", "initial_balance": "1",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	var e errResp
	decodeBody(t, rec, &e)
	if e.Code != "duplicate" {
		t.Fatalf("duplicate code = %q", e.Code)
	}

	// missing holder
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{
		"number": 101, "initial_balance": "1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing holder status = %d", rec.Code)
	}

	// negative opening balance
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{
		"number": 101, "holder": "Bob", "initial_balance": "-5",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative balance status = %d", rec.Code)
	}

	// unknown field rejected
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts", map[string]any{
		"number": 102, "holder": "Bob", "initial_balance": "1", "bogus": true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d", rec.Code)
	}

	// wrong content type
	req := httptest.NewRequest(http.MethodPost, "/v1/accounts", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "text/plain")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("content type status = %d", rr.Code)
	}
}

func TestGetAccounts_ListAndSingle(t *testing.T) {
	svc, h := setup(t)
	mustCreate(t, svc, 42, "Carol", "10")
	mustCreate(t, svc, 7, "Dave", "20")

	rec := doGet(t, h, "/v1/accounts")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list listAccountsResponse
	decodeBody(t, rec, &list)
	if len(list.Items) != 2 || list.Items[0].Number != 7 || list.Items[1].Number != 42 {
		t.Fatalf("list not in ascending order: %+v", list.Items)
	}

	rec = doGet(t, h, "/v1/accounts/42")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var acc accountResponse
	decodeBody(t, rec, &acc)
	if acc.Holder != "Carol" {
		t.Fatalf("holder = %q", acc.Holder)
	}

	if rec := doGet(t, h, "/v1/accounts/999"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing account status = %d", rec.Code)
	}
	if rec := doGet(t, h, "/v1/accounts/abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric status = %d", rec.Code)
	}
}

func TestDepositWithdrawAndHistory(t *testing.T) {
	svc, h := setup(t)
	mustCreate(t, svc, 1, "Alice", "100")

	rec := doJSON(t, h, http.MethodPost, "/v1/accounts/1/deposit", map[string]any{"amount": "50"})
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var bal balanceResponse
	decodeBody(t, rec, &bal)
	if !bal.Balance.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("balance after deposit = %s", bal.Balance)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/accounts/1/withdraw", map[string]any{"amount": "30"})
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw status = %d", rec.Code)
	}
	decodeBody(t, rec, &bal)
	if !bal.Balance.Equal(decimal.RequireFromString("120")) {
		t.Fatalf("balance after withdraw = %s", bal.Balance)
	}

	// overdraft
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts/1/withdraw", map[string]any{"amount": "9999"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraft status = %d", rec.Code)
	}
	var e errResp
	decodeBody(t, rec, &e)
	if e.Code != "insufficient_funds" {
		t.Fatalf("overdraft code = %q", e.Code)
	}

	// non-positive amount
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts/1/deposit", map[string]any{"amount": "0"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("zero deposit status = %d", rec.Code)
	}

	// unknown account
	rec = doJSON(t, h, http.MethodPost, "/v1/accounts/9/deposit", map[string]any{"amount": "1"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown account status = %d", rec.Code)
	}

	rec = doGet(t, h, "/v1/accounts/1/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var hist historyResponse
	decodeBody(t, rec, &hist)
	if len(hist.Items) != 2 {
		t.Fatalf("history items = %d, want 2", len(hist.Items))
	}
	if hist.Items[0].Kind != "Deposit" || hist.Items[1].Kind != "Withdraw" {
		t.Fatalf("history kinds: %+v", hist.Items)
	}
	if hist.Items[0].Timestamp != "2024-03-01 12:00:00" {
		t.Fatalf("timestamp = %q", hist.Items[0].Timestamp)
	}
}

func TestPendingFlow(t *testing.T) {
	svc, h := setup(t)
	mustCreate(t, svc, 1, "Alice", "100")

	// queue against an account that does not exist yet; accepted anyway
	rec := doJSON(t, h, http.MethodPost, "/v1/pending", map[string]any{
		"account_number": 2, "kind": "Deposit", "amount": "10",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var pend pendingResponse
	decodeBody(t, rec, &pend)
	if pend.Note != "Queued deposit" {
		t.Fatalf("default note = %q", pend.Note)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/pending", map[string]any{
		"account_number": 1, "kind": "Withdrawal", "amount": "40", "note": "rent",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue legacy kind status = %d", rec.Code)
	}

	// unsupported kind
	rec = doJSON(t, h, http.MethodPost, "/v1/pending", map[string]any{
		"account_number": 1, "kind": "Transfer", "amount": "40",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad kind status = %d", rec.Code)
	}

	// non-positive amount caught at enqueue
	rec = doJSON(t, h, http.MethodPost, "/v1/pending", map[string]any{
		"account_number": 1, "kind": "Deposit", "amount": "-3",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative amount status = %d", rec.Code)
	}

	rec = doGet(t, h, "/v1/pending")
	var size queueSizeResponse
	decodeBody(t, rec, &size)
	if size.Size != 2 {
		t.Fatalf("queue size = %d, want 2", size.Size)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/pending/process", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d", rec.Code)
	}
	var proc processPendingResponse
	decodeBody(t, rec, &proc)
	if proc.Processed != 2 || proc.Applied != 1 {
		t.Fatalf("processed = %d applied = %d", proc.Processed, proc.Applied)
	}
	if proc.Outcomes[0].Status != "skipped_missing_account" {
		t.Fatalf("first outcome status = %q", proc.Outcomes[0].Status)
	}
	if proc.Outcomes[1].Status != "applied" || proc.Outcomes[1].Balance == nil {
		t.Fatalf("second outcome: %+v", proc.Outcomes[1])
	}
	if !proc.Outcomes[1].Balance.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("balance after drain = %s", proc.Outcomes[1].Balance)
	}

	rec = doGet(t, h, "/v1/pending")
	decodeBody(t, rec, &size)
	if size.Size != 0 {
		t.Fatalf("queue size after drain = %d", size.Size)
	}
}

func TestInterestAndStats(t *testing.T) {
	svc, h := setup(t)
	mustCreate(t, svc, 1, "Alice", "1000")
	mustCreate(t, svc, 2, "Bob", "0")

	rec := doJSON(t, h, http.MethodPost, "/v1/interest", map[string]any{"rate": "0.05"})
	if rec.Code != http.StatusOK {
		t.Fatalf("interest status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var credited interestResponse
	decodeBody(t, rec, &credited)
	if credited.AccountsCredited != 1 {
		t.Fatalf("credited = %d, want 1 (zero balance earns nothing)", credited.AccountsCredited)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/interest", map[string]any{"rate": "-1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative rate status = %d", rec.Code)
	}

	rec = doGet(t, h, "/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats statsResponse
	decodeBody(t, rec, &stats)
	if stats.Count != 2 {
		t.Fatalf("count = %d", stats.Count)
	}
	if !stats.Total.Equal(decimal.RequireFromString("1050")) {
		t.Fatalf("total = %s", stats.Total)
	}
	if !stats.Average.Equal(decimal.RequireFromString("525")) {
		t.Fatalf("average = %s", stats.Average)
	}
	if stats.Richest == nil || stats.Richest.Number != 1 {
		t.Fatalf("richest: %+v", stats.Richest)
	}
}

func TestStatsEmptyLedger(t *testing.T) {
	_, h := setup(t)
	rec := doGet(t, h, "/v1/stats")
	var stats statsResponse
	decodeBody(t, rec, &stats)
	if stats.Count != 0 || stats.Richest != nil {
		t.Fatalf("empty ledger stats: %+v", stats)
	}
}

func TestSnapshotSaveLoadViaFiles(t *testing.T) {
	svc, h := setup(t)
	mustCreate(t, svc, 1, "Alice", "100")
	if _, err := svc.Deposit(1, decimal.NewFromInt(25)); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	rec := doJSON(t, h, http.MethodPost, "/v1/snapshot/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var saved snapshotSaveResponse
	decodeBody(t, rec, &saved)
	if !saved.Saved {
		t.Fatalf("save not reported")
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/snapshot/load", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d", rec.Code)
	}
	var loaded snapshotLoadResponse
	decodeBody(t, rec, &loaded)
	if !loaded.Loaded {
		t.Fatalf("load reported empty snapshot")
	}
}

func TestSnapshotLoadMissingFiles(t *testing.T) {
	_, h := setup(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/snapshot/load", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d", rec.Code)
	}
	var loaded snapshotLoadResponse
	decodeBody(t, rec, &loaded)
	if loaded.Loaded {
		t.Fatalf("missing files should load nothing")
	}
}

func TestHealthz(t *testing.T) {
	_, h := setup(t)
	if rec := doGet(t, h, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	// no snapshot store configured: ready as long as the process is up
	if rec := doGet(t, h, "/readyz"); rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func mustCreate(t *testing.T, svc *ledger.Service, number int, holder, balance string) {
	t.Helper()
	if _, err := svc.CreateAccount(number, holder, decimal.RequireFromString(balance)); err != nil {
		t.Fatalf("create account %d: %v", number, err)
	}
}
