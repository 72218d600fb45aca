package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/analysis"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/categorize"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

type suggestionResponse struct {
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// handleSuggestCategory trains the keyword map on the current ledger and
// suggests a category for the description. Training on every call keeps
// the map consistent with the data at the cost of one full scan, which
// a single-user ledger absorbs without trouble.
func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	description := strings.TrimSpace(r.URL.Query().Get("description"))
	if description == "" {
		respondError(w, r, http.StatusBadRequest, "missing description parameter")
		return
	}

	transactions, err := s.store.LoadAllTransactions(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	c := categorize.NewCategorizer()
	c.Train(transactions)

	respondJSON(w, r, http.StatusOK, suggestionResponse{
		Description: description,
		Category:    c.Suggest(description),
	})
}

type ruleCandidateJSON struct {
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	DueDay      int    `json:"due_day"`
	Category    string `json:"category,omitempty"`
	Type        string `json:"type"`
}

func (s *Server) handleRuleCandidates(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.LoadAllTransactions(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	rules, err := s.store.LoadRecurringRules(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	c := categorize.NewCategorizer()
	candidates := c.DetectRecurringCandidates(transactions, rules)
	out := make([]ruleCandidateJSON, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, ruleCandidateJSON{
			Description: cand.Description,
			AmountCents: cand.Amount.Cents,
			DueDay:      cand.DueDay,
			Category:    cand.Category,
			Type:        string(cand.Type),
		})
	}
	respondJSON(w, r, http.StatusOK, out)
}

type anomalyJSON struct {
	Category   string `json:"category"`
	Month      int    `json:"month"`
	ValueCents int64  `json:"value_cents"`
	MeanCents  int64  `json:"mean_cents"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
}

type trendJSON struct {
	Category          string `json:"category"`
	MonthlySlopeCents int64  `json:"monthly_slope_cents"`
	Rising            bool   `json:"rising"`
	ActiveMonths      int    `json:"active_months"`
	Text              string `json:"text"`
}

type analysisResponse struct {
	Year      int           `json:"year"`
	Anomalies []anomalyJSON `json:"anomalies"`
	Trends    []trendJSON   `json:"trends"`
}

// handleAnalysis runs anomaly and trend detection over one calendar
// year, defaulting to the current one.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1970 || parsed > 9999 {
			respondError(w, r, http.StatusBadRequest, "invalid year parameter")
			return
		}
		year = parsed
	}

	transactions, err := s.store.LoadAllTransactions(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	response := analysisResponse{
		Year:      year,
		Anomalies: []anomalyJSON{},
		Trends:    []trendJSON{},
	}
	expenses := analysis.SeriesByCategory(transactions, year, core.CategoryExpense)
	income := analysis.SeriesByCategory(transactions, year, core.CategoryIncome)

	for _, a := range analysis.DetectAnomalies(expenses, core.CategoryExpense) {
		response.Anomalies = append(response.Anomalies, toAnomalyJSON(a))
	}
	for _, a := range analysis.DetectAnomalies(income, core.CategoryIncome) {
		response.Anomalies = append(response.Anomalies, toAnomalyJSON(a))
	}
	for _, t := range analysis.DetectTrends(expenses) {
		response.Trends = append(response.Trends, trendJSON{
			Category:          t.Category,
			MonthlySlopeCents: t.MonthlySlope.Cents,
			Rising:            t.Rising,
			ActiveMonths:      t.ActiveMonths,
			Text:              t.String(),
		})
	}
	respondJSON(w, r, http.StatusOK, response)
}

func toAnomalyJSON(a analysis.Anomaly) anomalyJSON {
	return anomalyJSON{
		Category:   a.Category,
		Month:      a.Month,
		ValueCents: a.Value.Cents,
		MeanCents:  a.Mean.Cents,
		Kind:       string(a.Kind),
		Text:       a.String(),
	}
}
