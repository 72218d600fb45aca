package http

import (
	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/engine"
)

// Wire representations. Amounts travel as signed euro cents; dates as
// ISO strings.

type accountJSON struct {
	Name              string `json:"name"`
	Bank              string `json:"bank,omitempty"`
	Kind              string `json:"kind"`
	BalanceCents      int64  `json:"balance_cents"`
	TrackedInBudget   bool   `json:"tracked_in_budget"`
	OverdraftAlert    bool   `json:"overdraft_alert"`
	Liquidity         string `json:"liquidity,omitempty"`
	AssetClass        string `json:"asset_class,omitempty"`
	TermBucket        string `json:"term_bucket,omitempty"`
	BillingDay        int    `json:"billing_day,omitempty"`
	CycleStartDay     int    `json:"cycle_start_day,omitempty"`
	CycleEndDay       int    `json:"cycle_end_day,omitempty"`
	SettlementAccount string `json:"settlement_account,omitempty"`
}

func toAccountJSON(a core.Account) accountJSON {
	return accountJSON{
		Name:              a.Name,
		Bank:              a.Bank,
		Kind:              string(a.Kind),
		BalanceCents:      a.Balance.Cents,
		TrackedInBudget:   a.TrackedInBudget,
		OverdraftAlert:    a.OverdraftAlert,
		Liquidity:         a.Liquidity,
		AssetClass:        a.AssetClass,
		TermBucket:        a.TermBucket,
		BillingDay:        a.BillingDay,
		CycleStartDay:     a.CycleStartDay,
		CycleEndDay:       a.CycleEndDay,
		SettlementAccount: a.SettlementAccount,
	}
}

func (j accountJSON) toDomain() core.Account {
	return core.Account{
		Name:              j.Name,
		Bank:              j.Bank,
		Kind:              core.AccountKind(j.Kind),
		Balance:           core.Money{Cents: j.BalanceCents},
		TrackedInBudget:   j.TrackedInBudget,
		OverdraftAlert:    j.OverdraftAlert,
		Liquidity:         j.Liquidity,
		AssetClass:        j.AssetClass,
		TermBucket:        j.TermBucket,
		BillingDay:        j.BillingDay,
		CycleStartDay:     j.CycleStartDay,
		CycleEndDay:       j.CycleEndDay,
		SettlementAccount: j.SettlementAccount,
	}
}

type transactionJSON struct {
	ID              string `json:"id,omitempty"`
	Date            string `json:"date"`
	Description     string `json:"description"`
	AmountCents     int64  `json:"amount_cents"`
	Category        string `json:"category,omitempty"`
	Account         string `json:"account"`
	Cleared         bool   `json:"cleared"`
	Kind            string `json:"kind,omitempty"`
	TransferGroupID string `json:"transfer_group_id,omitempty"`
	Origin          string `json:"origin,omitempty"`
	RecurrenceID    string `json:"recurrence_id,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:              t.ID,
		Date:            t.Date.ISO(),
		Description:     t.Description,
		AmountCents:     t.Amount.Cents,
		Category:        t.Category,
		Account:         t.Account,
		Cleared:         t.Cleared,
		Kind:            string(t.Kind),
		TransferGroupID: t.TransferGroupID,
		Origin:          string(t.Origin),
		RecurrenceID:    t.RecurrenceID,
	}
}

type ruleJSON struct {
	ID          string `json:"id"`
	Active      bool   `json:"active"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category,omitempty"`
	Account     string `json:"account,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Source      string `json:"source,omitempty"`
	Destination string `json:"destination,omitempty"`
	Periodicity string `json:"periodicity"`
	DueDaySpec  string `json:"due_day_spec"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
}

func toRuleJSON(r core.RecurringRule) ruleJSON {
	j := ruleJSON{
		ID:          r.ID,
		Active:      r.Active,
		Description: r.Description,
		AmountCents: r.Amount.Cents,
		Category:    r.Category,
		Account:     r.Account,
		Kind:        string(r.Kind),
		Source:      r.Source,
		Destination: r.Destination,
		Periodicity: string(r.Periodicity),
		DueDaySpec:  r.DueDaySpec,
		StartDate:   r.StartDate.ISO(),
	}
	if !r.EndDate.IsZero() {
		j.EndDate = r.EndDate.ISO()
	}
	return j
}

func (j ruleJSON) toDomain() (core.RecurringRule, error) {
	start, err := core.ParseFlexibleDate(j.StartDate)
	if err != nil {
		return core.RecurringRule{}, err
	}
	var end core.Date
	if j.EndDate != "" {
		end, err = core.ParseFlexibleDate(j.EndDate)
		if err != nil {
			return core.RecurringRule{}, err
		}
	}
	return core.RecurringRule{
		ID:          j.ID,
		Active:      j.Active,
		Description: j.Description,
		Amount:      core.Money{Cents: j.AmountCents},
		Category:    j.Category,
		Account:     j.Account,
		Kind:        core.TransactionKind(j.Kind),
		Source:      j.Source,
		Destination: j.Destination,
		Periodicity: core.Periodicity(j.Periodicity),
		DueDaySpec:  j.DueDaySpec,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

type budgetDetailJSON struct {
	Day         int   `json:"day"`
	AmountCents int64 `json:"amount_cents"`
	Neutralized bool  `json:"neutralized"`
}

type categoryJSON struct {
	Category     string             `json:"category"`
	PlannedCents int64              `json:"planned_cents"`
	Type         string             `json:"type"`
	Account      string             `json:"account,omitempty"`
	Settled      bool               `json:"settled"`
	Details      []budgetDetailJSON `json:"details,omitempty"`
}

func toCategoryJSON(c core.BudgetedCategory) categoryJSON {
	j := categoryJSON{
		Category:     c.Category,
		PlannedCents: c.Planned.Cents,
		Type:         string(c.Type),
		Account:      c.Account,
		Settled:      c.Settled,
	}
	for _, d := range c.Details {
		j.Details = append(j.Details, budgetDetailJSON{
			Day:         d.Day,
			AmountCents: d.Amount.Cents,
			Neutralized: d.Neutralized,
		})
	}
	return j
}

func (j categoryJSON) toDomain() core.BudgetedCategory {
	c := core.BudgetedCategory{
		Category: j.Category,
		Planned:  core.Money{Cents: j.PlannedCents},
		Type:     core.CategoryType(j.Type),
		Account:  j.Account,
		Settled:  j.Settled,
	}
	for _, d := range j.Details {
		c.Details = append(c.Details, core.DailyBudgetDetail{
			Day:         d.Day,
			Amount:      core.Money{Cents: d.AmountCents},
			Neutralized: d.Neutralized,
		})
	}
	return c
}

type ledgerJSON struct {
	Month        string            `json:"month"`
	Transactions []transactionJSON `json:"transactions"`
	Categories   []categoryJSON    `json:"categories"`
}

func toLedgerJSON(l *core.MonthlyLedger) ledgerJSON {
	j := ledgerJSON{
		Month:        l.Month.Key(),
		Transactions: []transactionJSON{},
		Categories:   []categoryJSON{},
	}
	for _, t := range l.Transactions {
		j.Transactions = append(j.Transactions, toTransactionJSON(t))
	}
	for _, c := range l.Categories {
		j.Categories = append(j.Categories, toCategoryJSON(c))
	}
	return j
}

type accountProjectionJSON struct {
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	ClearedCents      int64  `json:"cleared_cents"`
	ActivityCents     int64  `json:"activity_cents"`
	VirtualCents      int64  `json:"virtual_cents"`
	BudgetImpactCents int64  `json:"budget_impact_cents"`
	ProjectedCents    int64  `json:"projected_cents"`
	OverdraftRisk     bool   `json:"overdraft_risk"`
}

type projectionJSON struct {
	Month                 string                  `json:"month"`
	Accounts              []accountProjectionJSON `json:"accounts"`
	FutureLines           []string                `json:"future_lines"`
	TotalAssetsCents      int64                   `json:"total_assets_cents"`
	TotalLiabilitiesCents int64                   `json:"total_liabilities_cents"`
	NetWorthCents         int64                   `json:"net_worth_cents"`
	TrajectoryDates       []string                `json:"trajectory_dates,omitempty"`
	Trajectories          map[string][]int64      `json:"trajectories,omitempty"`
}

func toProjectionJSON(p *engine.ProjectionResult) projectionJSON {
	j := projectionJSON{
		Month:                 p.Month.Key(),
		Accounts:              []accountProjectionJSON{},
		FutureLines:           p.FutureLines,
		TotalAssetsCents:      p.TotalAssets.Cents,
		TotalLiabilitiesCents: p.TotalLiabilities.Cents,
		NetWorthCents:         p.NetWorth.Cents,
	}
	if j.FutureLines == nil {
		j.FutureLines = []string{}
	}
	for _, a := range p.Accounts {
		j.Accounts = append(j.Accounts, accountProjectionJSON{
			Name:              a.Name,
			Kind:              string(a.Kind),
			ClearedCents:      a.Cleared.Cents,
			ActivityCents:     a.Activity.Cents,
			VirtualCents:      a.Virtual.Cents,
			BudgetImpactCents: a.BudgetImpact.Cents,
			ProjectedCents:    a.Projected.Cents,
			OverdraftRisk:     a.OverdraftRisk,
		})
	}
	for _, d := range p.TrajectoryDates {
		j.TrajectoryDates = append(j.TrajectoryDates, d.ISO())
	}
	if len(p.Trajectories) > 0 {
		j.Trajectories = make(map[string][]int64, len(p.Trajectories))
		for name, series := range p.Trajectories {
			cents := make([]int64, len(series))
			for i, m := range series {
				cents[i] = m.Cents
			}
			j.Trajectories[name] = cents
		}
	}
	return j
}

type snapshotLineJSON struct {
	Account      string `json:"account"`
	BalanceCents int64  `json:"balance_cents"`
}

type snapshotJSON struct {
	ID                    int64              `json:"id"`
	TakenAt               string             `json:"taken_at"`
	TotalAssetsCents      int64              `json:"total_assets_cents"`
	TotalLiabilitiesCents int64              `json:"total_liabilities_cents"`
	NetWorthCents         int64              `json:"net_worth_cents"`
	Balances              []snapshotLineJSON `json:"balances"`
}

func toSnapshotJSON(s core.Snapshot) snapshotJSON {
	j := snapshotJSON{
		ID:                    s.ID,
		TakenAt:               s.TakenAt.ISO(),
		TotalAssetsCents:      s.TotalAssets.Cents,
		TotalLiabilitiesCents: s.TotalLiabilities.Cents,
		NetWorthCents:         s.NetWorth.Cents,
		Balances:              []snapshotLineJSON{},
	}
	for _, line := range s.Balances {
		j.Balances = append(j.Balances, snapshotLineJSON{
			Account:      line.Account,
			BalanceCents: line.Balance.Cents,
		})
	}
	return j
}
