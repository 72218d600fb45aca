package http

import "net/http"

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.store.LoadRecurringRules(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	out := make([]ruleJSON, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleJSON(rule))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// handleSaveRule upserts the rule with the ID in the path. Editing a
// rule can reshape any future month, so the whole projection cache is
// dropped.
func (s *Server) handleSaveRule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body ruleJSON
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if body.ID == "" {
		body.ID = id
	}
	if body.ID != id {
		respondError(w, r, http.StatusBadRequest, "rule id in body does not match path")
		return
	}

	rule, err := body.toDomain()
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := rule.Validate(); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.store.SaveRecurringRule(r.Context(), rule); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusOK, toRuleJSON(rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRecurringRule(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	s.invalidateProjection()
	respondJSON(w, r, http.StatusNoContent, nil)
}
