package balance

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/walletfy/walletfy/pkg/event"
)

// MonthlyGroup aggregates the events of one calendar month. Groups are
// derived on every query and never stored.
type MonthlyGroup struct {
	Month        string
	Year         int
	Events       []event.Event
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal

	month time.Month
}

// MonthNumber returns the calendar month of the group.
func (g MonthlyGroup) MonthNumber() time.Month {
	return g.month
}

// Key identifies the group as "<Month>-<year>", e.g. "January-2025".
func (g MonthlyGroup) Key() string {
	return fmt.Sprintf("%s-%d", g.Month, g.Year)
}

// Label is the searchable "<Month> <year>" form.
func (g MonthlyGroup) Label() string {
	return fmt.Sprintf("%s %d", g.Month, g.Year)
}

type monthKey struct {
	year  int
	month time.Month
}

// GroupByMonth partitions events by calendar month and year of their date.
// Events keep their input order inside a group and groups are sorted newest
// first. The result is never nil.
func GroupByMonth(events []event.Event) []MonthlyGroup {
	groups := make(map[monthKey]*MonthlyGroup)
	for _, e := range events {
		key := monthKey{year: e.Date.Year(), month: e.Date.Month()}
		group, ok := groups[key]
		if !ok {
			group = &MonthlyGroup{
				Month:        key.month.String(),
				Year:         key.year,
				Events:       []event.Event{},
				TotalIncome:  decimal.Zero,
				TotalExpense: decimal.Zero,
				month:        key.month,
			}
			groups[key] = group
		}
		group.Events = append(group.Events, e)
		if e.Kind == event.Income {
			group.TotalIncome = group.TotalIncome.Add(e.Amount)
		} else {
			group.TotalExpense = group.TotalExpense.Add(e.Amount)
		}
	}

	result := make([]MonthlyGroup, 0, len(groups))
	for _, group := range groups {
		group.Balance = group.TotalIncome.Sub(group.TotalExpense)
		result = append(result, *group)
	}
	slices.SortFunc(result, func(a, b MonthlyGroup) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		return int(b.month) - int(a.month)
	})
	return result
}

// FilterBySearch keeps the groups whose "<month> <year>" label contains term,
// ignoring case. A blank term returns groups unchanged.
func FilterBySearch(groups []MonthlyGroup, term string) []MonthlyGroup {
	if strings.TrimSpace(term) == "" {
		return groups
	}
	needle := strings.ToLower(term)
	filtered := make([]MonthlyGroup, 0, len(groups))
	for _, group := range groups {
		if strings.Contains(strings.ToLower(group.Label()), needle) ||
			strings.Contains(strings.ToLower(group.Month), needle) {
			filtered = append(filtered, group)
		}
	}
	return filtered
}

// FindMonth returns the group for the given month, if any events fall in it.
func FindMonth(groups []MonthlyGroup, year int, month time.Month) (MonthlyGroup, bool) {
	idx := slices.IndexFunc(groups, func(g MonthlyGroup) bool {
		return g.Year == year && g.month == month
	})
	if idx < 0 {
		return MonthlyGroup{}, false
	}
	return groups[idx], true
}

type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	EventCount   int
}

// Summarize totals all events regardless of month.
func Summarize(events []event.Event) Summary {
	summary := Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		EventCount:   len(events),
	}
	for _, e := range events {
		if e.Kind == event.Income {
			summary.TotalIncome = summary.TotalIncome.Add(e.Amount)
		} else {
			summary.TotalExpense = summary.TotalExpense.Add(e.Amount)
		}
	}
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary
}
