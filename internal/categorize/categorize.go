// Package categorize suggests budget categories for new transactions by
// learning a keyword-to-category map from the existing ledger, and spots
// manual transactions that repeat regularly enough to become recurring
// rules.
package categorize

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// stopWords are filler and banking boilerplate that carry no category
// signal ("payment", "card", articles, pronouns). Keywords are whatever
// survives the filter.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {},
	"from": {}, "in": {}, "of": {}, "on": {}, "or": {}, "the": {},
	"to": {}, "with": {}, "via": {}, "my": {}, "your": {},
	"payment": {}, "purchase": {}, "invoice": {}, "bill": {},
	"card": {}, "cb": {}, "debit": {}, "direct": {}, "transfer": {},
	"wire": {}, "order": {}, "ref": {},
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

// Keywords lowercases the description, strips punctuation and drops stop
// words and purely numeric tokens.
func Keywords(description string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(description), "")
	var out []string
	for _, word := range strings.Fields(cleaned) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if isDigits(word) {
			continue
		}
		out = append(out, word)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Categorizer maps description keywords to the category they were last
// seen with. Zero value is usable; Train before Suggest.
type Categorizer struct {
	keywordMap map[string]string
}

func NewCategorizer() *Categorizer {
	return &Categorizer{keywordMap: make(map[string]string)}
}

// Train rebuilds the keyword map from categorized transactions. Transfer
// legs are skipped, their shared category is bookkeeping, not intent.
func (c *Categorizer) Train(transactions []core.Transaction) {
	keywordMap := make(map[string]string)
	for _, tx := range transactions {
		if tx.Category == "" || tx.Description == "" || tx.IsTransfer() {
			continue
		}
		for _, keyword := range Keywords(tx.Description) {
			keywordMap[keyword] = tx.Category
		}
	}
	c.keywordMap = keywordMap
}

// Suggest returns the category of the first known keyword in the
// description, or "" when nothing matches.
func (c *Categorizer) Suggest(description string) string {
	for _, keyword := range Keywords(description) {
		if category, ok := c.keywordMap[keyword]; ok {
			return category
		}
	}
	return ""
}

// RuleCandidate is a repeated manual transaction worth promoting to a
// recurring rule.
type RuleCandidate struct {
	Description string
	Amount      core.Money // average of the observed amounts
	DueDay      int        // median day of month
	Category    string
	Type        core.CategoryType
}

// maxAmountVariance caps the variance of the observed amounts, in squared
// euros. Groups that fluctuate more are one-off spending, not a rule.
const maxAmountVariance = 2.0

// DetectRecurringCandidates groups manual transactions by their leading
// keyword and promotes groups of at least three with stable amounts and a
// coherent day of month. Groups whose keyword already appears in an
// existing rule's description are skipped.
func (c *Categorizer) DetectRecurringCandidates(transactions []core.Transaction, existing []core.RecurringRule) []RuleCandidate {
	groups := make(map[string][]core.Transaction)
	var order []string
	for _, tx := range transactions {
		if tx.Origin == core.OriginRecurring {
			continue
		}
		keywords := Keywords(tx.Description)
		if len(keywords) == 0 {
			continue
		}
		key := keywords[0]
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], tx)
	}

	var candidates []RuleCandidate
	for _, key := range order {
		group := groups[key]
		if len(group) < 3 {
			continue
		}
		if coveredByRule(key, existing) {
			continue
		}

		var sum float64
		for _, tx := range group {
			sum += tx.Amount.Euros()
		}
		avg := sum / float64(len(group))
		var variance float64
		for _, tx := range group {
			d := tx.Amount.Euros() - avg
			variance += d * d
		}
		variance /= float64(len(group))
		if variance > maxAmountVariance {
			continue
		}

		days := make([]int, 0, len(group))
		for _, tx := range group {
			days = append(days, tx.Date.Day())
		}
		sort.Ints(days)
		median := days[len(days)/2]
		coherent := 0
		for _, day := range days {
			if abs(day-median) <= 3 {
				coherent++
			}
		}
		if float64(coherent)/float64(len(days)) < 0.7 {
			continue
		}

		candidateType := core.CategoryIncome
		if avg < 0 {
			candidateType = core.CategoryExpense
		}
		candidates = append(candidates, RuleCandidate{
			Description: group[0].Description,
			Amount:      core.Money{Cents: int64(math.Round(avg * 100))},
			DueDay:      median,
			Category:    group[0].Category,
			Type:        candidateType,
		})
	}
	return candidates
}

func coveredByRule(keyword string, rules []core.RecurringRule) bool {
	for _, rule := range rules {
		if strings.Contains(strings.ToLower(rule.Description), keyword) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
