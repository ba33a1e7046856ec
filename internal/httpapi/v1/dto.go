package v1

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tinoosan/bankcore/internal/bank"
	"github.com/tinoosan/bankcore/internal/service/ledger"
)

type postAccountRequest struct {
	Number         int             `json:"number"`
	Holder         string          `json:"holder"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type accountResponse struct {
	Number  int             `json:"number"`
	Holder  string          `json:"holder"`
	Balance decimal.Decimal `json:"balance"`
}

type listAccountsResponse struct {
	Items []accountResponse `json:"items"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	Number  int             `json:"number"`
	Balance decimal.Decimal `json:"balance"`
}

type recordResponse struct {
	Kind      bank.TxKind     `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp string          `json:"timestamp"`
	Note      string          `json:"note,omitempty"`
}

type historyResponse struct {
	Number int              `json:"number"`
	Items  []recordResponse `json:"items"`
}

type postPendingRequest struct {
	AccountNumber int             `json:"account_number"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note,omitempty"`
}

type pendingResponse struct {
	ID            uuid.UUID       `json:"id"`
	AccountNumber int             `json:"account_number"`
	Kind          bank.TxKind     `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note,omitempty"`
}

type queueSizeResponse struct {
	Size int `json:"size"`
}

type outcomeResponse struct {
	EntryID       uuid.UUID        `json:"entry_id"`
	AccountNumber int              `json:"account_number"`
	Kind          bank.TxKind      `json:"kind"`
	Amount        decimal.Decimal  `json:"amount"`
	Status        string           `json:"status"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
}

type processPendingResponse struct {
	Processed int               `json:"processed"`
	Applied   int               `json:"applied"`
	Outcomes  []outcomeResponse `json:"outcomes"`
}

type postInterestRequest struct {
	Rate    decimal.Decimal `json:"rate"`
	Monthly bool            `json:"monthly"`
}

type interestResponse struct {
	AccountsCredited int `json:"accounts_credited"`
}

type statsResponse struct {
	Count   int              `json:"count"`
	Total   decimal.Decimal  `json:"total"`
	Average decimal.Decimal  `json:"average"`
	Richest *accountResponse `json:"richest,omitempty"`
}

type snapshotSaveResponse struct {
	Saved bool `json:"saved"`
}

type snapshotLoadResponse struct {
	Loaded bool `json:"loaded"`
}

func toAccountResponse(a ledger.AccountSummary) accountResponse {
	return accountResponse{Number: a.Number, Holder: a.Holder, Balance: a.Balance}
}
