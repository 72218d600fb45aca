// This file implements the Strategy Pattern for recurrence scheduling.
// Each periodicity has its own scheduler that computes the candidate due
// dates inside a target month.

package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// Scheduler is the strategy interface for computing the dates a recurring
// rule falls due inside a month. Dates outside the rule's validity window
// are filtered by the caller; schedulers only apply periodicity gating and
// month-length clamping.
type Scheduler interface {
	DueDates(rule core.RecurringRule, month core.YearMonth) ([]core.Date, error)
}

// monthlyFamilyScheduler covers the periodicities that fire at most once a
// month on a fixed day: every interval months from the rule's start month,
// or on the start month's anniversary when annual is set.
type monthlyFamilyScheduler struct {
	interval int // months between occurrences; 0 means annual
}

func (s monthlyFamilyScheduler) DueDates(rule core.RecurringRule, month core.YearMonth) ([]core.Date, error) {
	day, err := parseDueDay(rule.DueDaySpec)
	if err != nil {
		return nil, err
	}

	startMonth := rule.StartDate.Month()
	switch {
	case s.interval == 0: // annual
		if month.Month != startMonth {
			return nil, nil
		}
	case s.interval > 1:
		if mod(month.Month-startMonth, s.interval) != 0 {
			return nil, nil
		}
	}

	return []core.Date{month.Date(day)}, nil
}

// biweeklyScheduler fires on two fixed days per month, each independently
// clamped to the month length.
type biweeklyScheduler struct{}

func (biweeklyScheduler) DueDates(rule core.RecurringRule, month core.YearMonth) ([]core.Date, error) {
	fields := strings.Split(rule.DueDaySpec, ",")
	dates := make([]core.Date, 0, len(fields))
	for _, f := range fields {
		day, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || day < 1 {
			return nil, fmt.Errorf("%w: %q", core.ErrMalformedRuleSpec, rule.DueDaySpec)
		}
		dates = append(dates, month.Date(day))
	}
	return dates, nil
}

// weeklyScheduler fires on every day of the month matching an ISO weekday
// (1=Monday .. 7=Sunday).
type weeklyScheduler struct{}

func (weeklyScheduler) DueDates(rule core.RecurringRule, month core.YearMonth) ([]core.Date, error) {
	target, err := strconv.Atoi(strings.TrimSpace(rule.DueDaySpec))
	if err != nil || target < 1 || target > 7 {
		return nil, fmt.Errorf("%w: %q", core.ErrMalformedRuleSpec, rule.DueDaySpec)
	}

	var dates []core.Date
	for day := 1; day <= month.LastDay(); day++ {
		d := core.NewDate(month.Year, month.Month, day)
		if isoWeekday(d) == target {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

// schedulers maps periodicities to their strategies.
var schedulers = map[core.Periodicity]Scheduler{
	core.Monthly:         monthlyFamilyScheduler{interval: 1},
	core.Quarterly:       monthlyFamilyScheduler{interval: 3},
	core.EveryFourMonths: monthlyFamilyScheduler{interval: 4},
	core.Semiannual:      monthlyFamilyScheduler{interval: 6},
	core.Annual:          monthlyFamilyScheduler{interval: 0},
	core.Biweekly:        biweeklyScheduler{},
	core.Weekly:          weeklyScheduler{},
}

// SchedulerFor returns the scheduler for a periodicity.
func SchedulerFor(p core.Periodicity) (Scheduler, error) {
	s, ok := schedulers[p]
	if !ok {
		return nil, fmt.Errorf("unknown periodicity: %s", p)
	}
	return s, nil
}

// multiplePerMonth reports whether the periodicity may legitimately
// produce more than one instance inside a single month.
func multiplePerMonth(p core.Periodicity) bool {
	return p == core.Weekly || p == core.Biweekly
}

// parseDueDay reads the day-of-month out of a monthly-family spec. Specs
// saved by the biweekly editor may carry a comma pair; the first field
// wins.
func parseDueDay(spec string) (int, error) {
	first := strings.TrimSpace(strings.Split(spec, ",")[0])
	day, err := strconv.Atoi(first)
	if err != nil || day < 1 {
		return 0, fmt.Errorf("%w: %q", core.ErrMalformedRuleSpec, spec)
	}
	return day, nil
}

// mod is the euclidean remainder: always in [0, n).
func mod(a, n int) int {
	return ((a % n) + n) % n
}

// isoWeekday returns 1 for Monday through 7 for Sunday.
func isoWeekday(d core.Date) int {
	return (int(d.Weekday())+6)%7 + 1
}
