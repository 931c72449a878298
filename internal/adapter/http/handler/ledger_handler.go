package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// LedgerService defines the ledger reads needed by LedgerHandler.
type LedgerService interface {
	History(ctx context.Context, input usecase.HistoryInput) (*usecase.HistoryPage, error)
	Lookup(ctx context.Context, trackingCode string) (*domain.Transaction, error)
	CheckConsistency(ctx context.Context) (bool, error)
}

// ReconciliationService defines the reconciliation needed by LedgerHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles history, lookup and ledger-wide checks.
type LedgerHandler struct {
	ledgerUC         LedgerService
	reconciliationUC ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, reconciliationUC ReconciliationService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, reconciliationUC: reconciliationUC}
}

// History lists the transactions of an account, newest first.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	page, err := h.ledgerUC.History(r.Context(), usecase.HistoryInput{
		AccountID:       chi.URLParam(r, "id"),
		Limit:           parseIntQuery(r, "limit", domain.DefaultHistorySize),
		Cursor:          r.URL.Query().Get("cursor"),
		RequesterUserID: requester(r),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromPage(page))
}

// Lookup returns the transaction with a tracking code.
func (h *LedgerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	record, err := h.ledgerUC.Lookup(r.Context(), chi.URLParam(r, "trackingCode"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(record))
}

// CheckConsistency checks if the ledger is consistent.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	consistent, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
				Status:     "inconsistent",
				Consistent: false,
				Message:    err.Error(),
			})
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		Status:     "consistent",
		Consistent: consistent,
	})
}

// Reconcile reconciles one account against its transaction history.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// Report reconciles every account.
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromDomain(report))
}
