package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

const dateLayout = "2006-01-02"

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.MinorUnitDigits)
}

// LimitResponse is the remaining daily cap of one channel.
type LimitResponse struct {
	Remaining   string `json:"remaining"`
	WindowStart string `json:"window_start"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"user_id"`
	CardNumber string                   `json:"card_number"`
	IBAN       string                   `json:"iban"`
	Balance    string                   `json:"balance"`
	Limits     map[string]LimitResponse `json:"limits"`
	Version    int64                    `json:"version"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	limits := make(map[string]LimitResponse, len(domain.Channels))
	for _, ch := range domain.Channels {
		w := a.Limit(ch)
		limits[ch.String()] = LimitResponse{
			Remaining:   money(w.Remaining),
			WindowStart: w.WindowStart.Format(dateLayout),
		}
	}

	return &AccountResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		CardNumber: a.CardNumber,
		IBAN:       a.IBAN,
		Balance:    money(a.Balance),
		Limits:     limits,
		Version:    a.Version,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int                `json:"total"`
}

// TransactionResponse represents a ledger record in API responses.
type TransactionResponse struct {
	ID                string    `json:"id"`
	TrackingCode      string    `json:"tracking_code"`
	SenderAccountID   string    `json:"sender_account_id"`
	ReceiverAccountID string    `json:"receiver_account_id"`
	Amount            string    `json:"amount"`
	Channel           string    `json:"channel"`
	CreatedAt         time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                t.ID,
		TrackingCode:      t.TrackingCode,
		SenderAccountID:   t.SenderAccountID,
		ReceiverAccountID: t.ReceiverAccountID,
		Amount:            money(t.Amount),
		Channel:           t.Channel.String(),
		CreatedAt:         t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// TransferResponse is the result of a committed transfer.
type TransferResponse struct {
	TrackingCode     string               `json:"tracking_code"`
	NewSenderBalance string               `json:"new_sender_balance"`
	Transaction      *TransactionResponse `json:"transaction"`
}

// TransferFromResult converts a transfer result to response.
func TransferFromResult(r *usecase.TransferResult) *TransferResponse {
	return &TransferResponse{
		TrackingCode:     r.TrackingCode,
		NewSenderBalance: money(r.NewSenderBalance),
		Transaction:      TransactionFromDomain(r.Transaction),
	}
}

// HistoryResponse is one page of an account history, newest first.
type HistoryResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	NextCursor   string                 `json:"next_cursor,omitempty"`
}

// HistoryFromPage converts a history page to response.
func HistoryFromPage(p *usecase.HistoryPage) *HistoryResponse {
	return &HistoryResponse{
		Transactions: TransactionsFromDomain(p.Transactions),
		NextCursor:   p.NextCursor,
	}
}

// SessionResponse carries the session token.
type SessionResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// SessionFromIdentity converts an identity to response.
func SessionFromIdentity(id *domain.Identity) *SessionResponse {
	return &SessionResponse{Token: id.Token, UserID: id.UserID, Username: id.Username}
}

// UserResponse represents a user without credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Username: u.Username, Active: u.Active, CreatedAt: u.CreatedAt}
}

// ConsistencyResponse is the result of the ledger-wide conservation check.
type ConsistencyResponse struct {
	Status     string `json:"status"`
	Consistent bool   `json:"consistent"`
	Message    string `json:"message,omitempty"`
}

// ReconciliationResponse is the reconciliation of one account.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	OpeningBalance    string    `json:"opening_balance"`
	Sent              string    `json:"sent"`
	Received          string    `json:"received"`
	RecordedBalance   string    `json:"recorded_balance"`
	CalculatedBalance string    `json:"calculated_balance"`
	Difference        string    `json:"difference"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		OpeningBalance:    money(r.OpeningBalance),
		Sent:              money(r.Sent),
		Received:          money(r.Received),
		RecordedBalance:   money(r.RecordedBalance),
		CalculatedBalance: money(r.CalculatedBalance),
		Difference:        money(r.Difference),
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes a reconciliation of every account.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromDomain converts a reconciliation report to response.
func ReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Remaining is set when a daily limit rejected the transfer.
	Remaining string `json:"remaining,omitempty"`
}
