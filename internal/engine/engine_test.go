package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// memStore is an in-memory Store and ClearingStore used by the engine
// tests.
type memStore struct {
	accounts []core.Account
	rules    []core.RecurringRule
	ledgers  map[string]*core.MonthlyLedger
	saves    int
}

func newMemStore() *memStore {
	return &memStore{ledgers: make(map[string]*core.MonthlyLedger)}
}

func (s *memStore) LoadAccounts(ctx context.Context) ([]core.Account, error) {
	return s.accounts, nil
}

func (s *memStore) LoadRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	return s.rules, nil
}

func (s *memStore) LoadMonthlyLedger(ctx context.Context, month core.YearMonth) (*core.MonthlyLedger, error) {
	if l, ok := s.ledgers[month.Key()]; ok {
		return l, nil
	}
	l := &core.MonthlyLedger{Month: month}
	s.ledgers[month.Key()] = l
	return l, nil
}

func (s *memStore) LoadAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	keys := make([]string, 0, len(s.ledgers))
	for k := range s.ledgers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var all []core.Transaction
	for _, k := range keys {
		all = append(all, s.ledgers[k].Transactions...)
	}
	return all, nil
}

func (s *memStore) SaveMonthlyLedger(ctx context.Context, ledger *core.MonthlyLedger) error {
	s.ledgers[ledger.Month.Key()] = ledger
	s.saves++
	return nil
}

func (s *memStore) TransactionsByID(ctx context.Context, ids []string) ([]core.Transaction, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []core.Transaction
	for _, l := range s.ledgers {
		for _, t := range l.Transactions {
			if want[t.ID] {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (s *memStore) MarkTransactionCleared(ctx context.Context, id string) error {
	for _, l := range s.ledgers {
		for i, t := range l.Transactions {
			if t.ID == id {
				l.Transactions[i].Cleared = true
				return nil
			}
		}
	}
	return fmt.Errorf("transaction %q not found", id)
}

func (s *memStore) AccountByName(ctx context.Context, name string) (core.Account, error) {
	for _, a := range s.accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return core.Account{}, fmt.Errorf("account %q not found", name)
}

func (s *memStore) UpdateAccountBalance(ctx context.Context, name string, balance core.Money) error {
	for i, a := range s.accounts {
		if a.Name == name {
			s.accounts[i].Balance = balance
			return nil
		}
	}
	return fmt.Errorf("account %q not found", name)
}

// memPublisher records published events.
type memPublisher struct {
	ledgerChanges int
	created       []core.Transaction
}

func (p *memPublisher) PublishLedgerChanged(ctx context.Context, month core.YearMonth, generated int) error {
	p.ledgerChanges++
	return nil
}

func (p *memPublisher) PublishTransactionCreated(ctx context.Context, tx core.Transaction) error {
	p.created = append(p.created, tx)
	return nil
}

func euros(e int64) core.Money {
	return core.Money{Cents: e * 100}
}

func date(y, m, d int) core.Date {
	return core.NewDate(y, m, d)
}
