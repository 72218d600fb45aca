package http

import (
	"log/slog"
	"net/http"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromPath(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	ledger, err := s.store.LoadMonthlyLedger(r.Context(), month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, toLedgerJSON(ledger))
}

// handleSaveCategories replaces the month's planned categories, leaving
// its transactions untouched.
func (s *Server) handleSaveCategories(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromPath(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var body []categoryJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	categories := make([]core.BudgetedCategory, 0, len(body))
	for _, c := range body {
		category := c.toDomain()
		if err := category.Validate(); err != nil {
			respondError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		categories = append(categories, category)
	}

	ledger, err := s.store.LoadMonthlyLedger(r.Context(), month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	ledger.Categories = categories
	if err := s.store.SaveMonthlyLedger(r.Context(), ledger); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection(month)
	respondJSON(w, r, http.StatusOK, toLedgerJSON(ledger))
}

type materializeResponse struct {
	Month     string `json:"month"`
	Generated int    `json:"generated"`
}

func (s *Server) handleMaterialize(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromPath(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	generated, err := s.materializer.Materialize(r.Context(), month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if generated > 0 {
		s.invalidateProjection()
	}
	respondJSON(w, r, http.StatusOK, materializeResponse{
		Month:     month.Key(),
		Generated: generated,
	})
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	month, err := monthFromPath(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if cached, ok := s.projectionCache.Get(month.Key()); ok {
		slog.DebugContext(r.Context(), "Projection cache hit", applog.FieldMonth, month.Key())
		respondJSON(w, r, http.StatusOK, toProjectionJSON(cached))
		return
	}

	result, err := s.calculator.Project(r.Context(), month)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if result == nil {
		respondError(w, r, http.StatusConflict, core.ErrNoTrackedAccounts.Error())
		return
	}
	s.projectionCache.Set(month.Key(), result)
	respondJSON(w, r, http.StatusOK, toProjectionJSON(result))
}
