package http

import (
	"net/http"
	"time"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.LoadAccounts(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// handleSaveAccount upserts the account named in the path. The name in
// the body, when present, must agree with the path.
func (s *Server) handleSaveAccount(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var body accountJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name == "" {
		body.Name = name
	}
	if body.Name != name {
		respondError(w, r, http.StatusBadRequest, "account name in body does not match path")
		return
	}

	account := body.toDomain()
	if err := account.Validate(); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	saved, err := s.store.SaveAccount(r.Context(), account)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusOK, toAccountJSON(saved))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAccount(r.Context(), r.PathValue("name")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusNoContent, nil)
}

// handleTakeSnapshot captures today's stored balances and aggregate
// wealth. Uncleared activity is deliberately excluded: snapshots record
// reconciled state, projections cover the rest.
func (s *Server) handleTakeSnapshot(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.store.LoadAccounts(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	now := time.Now()
	snap := core.Snapshot{
		TakenAt: core.NewDate(now.Year(), int(now.Month()), now.Day()),
	}
	for _, a := range accounts {
		snap.Balances = append(snap.Balances, core.SnapshotLine{
			Account: a.Name,
			Balance: a.Balance,
		})
		if a.Kind == core.AccountLiability {
			snap.TotalLiabilities = snap.TotalLiabilities.Add(a.Balance)
		} else {
			snap.TotalAssets = snap.TotalAssets.Add(a.Balance)
		}
	}
	snap.NetWorth = snap.TotalAssets.Sub(snap.TotalLiabilities)

	saved, err := s.store.SaveSnapshot(r.Context(), snap)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, toSnapshotJSON(saved))
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.ListSnapshots(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]snapshotJSON, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toSnapshotJSON(snap))
	}
	respondJSON(w, r, http.StatusOK, out)
}
