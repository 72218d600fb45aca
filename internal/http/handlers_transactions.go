package http

import (
	"net/http"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body transactionJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	date, err := core.ParseFlexibleDate(body.Date)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.transactions.CreateTransaction(r.Context(), core.Transaction{
		ID:          body.ID,
		Date:        date,
		Description: body.Description,
		Amount:      core.Money{Cents: body.AmountCents},
		Category:    body.Category,
		Account:     body.Account,
		Cleared:     body.Cleared,
		Kind:        core.TransactionKind(body.Kind),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusCreated, toTransactionJSON(created))
}

type transferRequest struct {
	Date        string `json:"date"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	AmountCents int64  `json:"amount_cents"`
	Note        string `json:"note,omitempty"`
}

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var body transferRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	date, err := core.ParseFlexibleDate(body.Date)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	legs, err := s.transactions.CreateTransfer(r.Context(), date,
		body.Source, body.Destination, core.Money{Cents: body.AmountCents}, body.Note)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	out := make([]transactionJSON, 0, len(legs))
	for _, leg := range legs {
		out = append(out, toTransactionJSON(leg))
	}
	respondJSON(w, r, http.StatusCreated, out)
}

type clearRequest struct {
	IDs []string `json:"ids"`
}

// handleClearTransactions reconciles transactions against their account
// balances. Clearing moves money between stored balances across months,
// so the whole projection cache goes.
func (s *Server) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	var body clearRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.IDs) == 0 {
		respondError(w, r, http.StatusUnprocessableEntity, "no transaction ids given")
		return
	}
	if err := s.transactions.ClearTransactions(r.Context(), body.IDs); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromPath(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.transactions.DeleteTransaction(r.Context(), month, r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusNoContent, nil)
}

type settlementRequest struct {
	Month string `json:"month"`
}

// handleCardSettlement records the manual settlement transfer for a
// deferred-debit card. A 200 with an empty list means the billing cycle
// held nothing to settle.
func (s *Server) handleCardSettlement(w http.ResponseWriter, r *http.Request) {
	var body settlementRequest
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	month, err := core.ParseMonthKey(body.Month)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	legs, err := s.transactions.RecordCardSettlement(r.Context(), r.PathValue("name"), month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	out := make([]transactionJSON, 0, len(legs))
	for _, leg := range legs {
		out = append(out, toTransactionJSON(leg))
	}
	status := http.StatusCreated
	if len(legs) == 0 {
		status = http.StatusOK
	}
	respondJSON(w, r, status, out)
}
