package balance

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walletfy/walletfy/pkg/event"
)

type testRecord struct {
	kind   string
	amount string
	date   string
}

func buildEvents(t *testing.T, records ...testRecord) []event.Event {
	t.Helper()
	validator := event.NewValidator(time.UTC)
	events := make([]event.Event, 0, len(records))
	for i, record := range records {
		e, errs := validator.Validate(event.Candidate{
			Id:     fmt.Sprintf("e%d", i+1),
			Name:   fmt.Sprintf("event %d", i+1),
			Amount: record.amount,
			Date:   record.date,
			Kind:   record.kind,
		})
		require.Empty(t, errs)
		events = append(events, e)
	}
	return events
}

func ids(events []event.Event) []string {
	result := make([]string, 0, len(events))
	for _, e := range events {
		result = append(result, e.Id)
	}
	return result
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestGroupByMonth(t *testing.T) {
	t.Run("should return an empty list for no events", func(t *testing.T) {
		groups := GroupByMonth(nil)

		assert.NotNil(t, groups)
		assert.Empty(t, groups)
	})

	t.Run("should group events by month newest first", func(t *testing.T) {
		// given
		events := buildEvents(t,
			testRecord{"income", "1000", "2024-12-01"},
			testRecord{"expense", "300", "2024-12-15"},
			testRecord{"income", "500", "2025-01-02"},
		)

		// when
		groups := GroupByMonth(events)

		// then
		require.Len(t, groups, 2)
		assert.Equal(t, "January", groups[0].Month)
		assert.Equal(t, 2025, groups[0].Year)
		assertDecimal(t, "500", groups[0].TotalIncome)
		assertDecimal(t, "0", groups[0].TotalExpense)
		assertDecimal(t, "500", groups[0].Balance)
		assert.Equal(t, "December", groups[1].Month)
		assert.Equal(t, 2024, groups[1].Year)
		assertDecimal(t, "1000", groups[1].TotalIncome)
		assertDecimal(t, "300", groups[1].TotalExpense)
		assertDecimal(t, "700", groups[1].Balance)
		assert.Equal(t, []string{"e1", "e2"}, ids(groups[1].Events))
	})

	t.Run("should allow a negative balance", func(t *testing.T) {
		// given
		events := buildEvents(t,
			testRecord{"expense", "50", "2024-03-10"},
			testRecord{"expense", "25", "2024-03-01"},
		)

		// when
		groups := GroupByMonth(events)

		// then
		require.Len(t, groups, 1)
		assert.Equal(t, "March", groups[0].Month)
		assertDecimal(t, "0", groups[0].TotalIncome)
		assertDecimal(t, "75", groups[0].TotalExpense)
		assertDecimal(t, "-75", groups[0].Balance)
		assert.Equal(t, []string{"e1", "e2"}, ids(groups[0].Events), "events keep input order, not date order")
	})

	t.Run("should keep the same month of different years apart", func(t *testing.T) {
		// given
		events := buildEvents(t,
			testRecord{"income", "1", "2023-05-05"},
			testRecord{"income", "2", "2024-05-05"},
			testRecord{"income", "3", "2024-04-30"},
		)

		// when
		groups := GroupByMonth(events)

		// then
		require.Len(t, groups, 3)
		assert.Equal(t, "May-2024", groups[0].Key())
		assert.Equal(t, "April-2024", groups[1].Key())
		assert.Equal(t, "May-2023", groups[2].Key())
	})

	t.Run("should sum decimals exactly", func(t *testing.T) {
		// given
		events := buildEvents(t,
			testRecord{"income", "0.1", "2024-01-01"},
			testRecord{"income", "0.2", "2024-01-02"},
		)

		// when
		groups := GroupByMonth(events)

		// then
		assert.Equal(t, "0.3", groups[0].TotalIncome.String())
	})

	t.Run("should partition the input and conserve totals", func(t *testing.T) {
		// given
		events := buildEvents(t,
			testRecord{"income", "10", "2024-01-31"},
			testRecord{"expense", "4.5", "2024-02-01"},
			testRecord{"income", "7", "2023-12-31"},
			testRecord{"expense", "1.25", "2024-01-01"},
			testRecord{"income", "3", "2024-02-29"},
		)

		// when
		groups := GroupByMonth(events)

		// then
		seen := map[string]int{}
		income, expense := decimal.Zero, decimal.Zero
		for i, group := range groups {
			for _, e := range group.Events {
				seen[e.Id]++
				assert.Equal(t, group.Year, e.Date.Year())
				assert.Equal(t, group.MonthNumber(), e.Date.Month())
			}
			assert.True(t, group.Balance.Equal(group.TotalIncome.Sub(group.TotalExpense)))
			income = income.Add(group.TotalIncome)
			expense = expense.Add(group.TotalExpense)
			if i > 0 {
				prev := groups[i-1]
				assert.True(t, prev.Year > group.Year || (prev.Year == group.Year && prev.MonthNumber() > group.MonthNumber()))
			}
		}
		assert.Len(t, seen, len(events))
		for id, count := range seen {
			assert.Equal(t, 1, count, id)
		}
		summary := Summarize(events)
		assert.True(t, summary.TotalIncome.Equal(income))
		assert.True(t, summary.TotalExpense.Equal(expense))
	})
}

func TestFilterBySearch(t *testing.T) {
	groups := GroupByMonth(buildEventsForSearch(t))

	t.Run("should return the input for a blank term", func(t *testing.T) {
		assert.Equal(t, groups, FilterBySearch(groups, ""))
		assert.Equal(t, groups, FilterBySearch(groups, "   "))
	})

	t.Run("should match the month name ignoring case", func(t *testing.T) {
		// when
		result := FilterBySearch(groups, "jan")

		// then
		require.Len(t, result, 1)
		assert.Equal(t, "January-2025", result[0].Key())
	})

	t.Run("should match the year", func(t *testing.T) {
		// when
		result := FilterBySearch(groups, "2024")

		// then
		require.Len(t, result, 2)
		assert.Equal(t, "December-2024", result[0].Key())
		assert.Equal(t, "June-2024", result[1].Key())
	})

	t.Run("should match month and year together", func(t *testing.T) {
		result := FilterBySearch(groups, "DECEMBER 2024")

		require.Len(t, result, 1)
		assert.Equal(t, "December-2024", result[0].Key())
	})

	t.Run("should return nothing when no label matches", func(t *testing.T) {
		result := FilterBySearch(groups, "xyz")

		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("should be idempotent and preserve order", func(t *testing.T) {
		once := FilterBySearch(groups, "2")
		twice := FilterBySearch(once, "2")

		assert.Equal(t, once, twice)
		assert.Equal(t, []string{"January-2025", "December-2024", "June-2024"}, keys(once))
	})
}

func TestFindMonth(t *testing.T) {
	groups := GroupByMonth(buildEventsForSearch(t))

	group, ok := FindMonth(groups, 2024, time.June)
	require.True(t, ok)
	assert.Equal(t, "June", group.Month)

	_, ok = FindMonth(groups, 2024, time.July)
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	t.Run("should total all events", func(t *testing.T) {
		// given
		events := buildEvents(t,
			testRecord{"income", "1000", "2024-12-01"},
			testRecord{"expense", "300", "2024-12-15"},
			testRecord{"income", "500", "2025-01-02"},
		)

		// when
		summary := Summarize(events)

		// then
		assertDecimal(t, "1500", summary.TotalIncome)
		assertDecimal(t, "300", summary.TotalExpense)
		assertDecimal(t, "1200", summary.Balance)
		assert.Equal(t, 3, summary.EventCount)
	})

	t.Run("should be zero for no events", func(t *testing.T) {
		summary := Summarize(nil)

		assert.True(t, summary.Balance.IsZero())
		assert.Equal(t, 0, summary.EventCount)
	})
}

func buildEventsForSearch(t *testing.T) []event.Event {
	return buildEvents(t,
		testRecord{"income", "1", "2024-06-10"},
		testRecord{"income", "1", "2024-12-10"},
		testRecord{"expense", "1", "2025-01-10"},
	)
}

func keys(groups []MonthlyGroup) []string {
	result := make([]string, 0, len(groups))
	for _, g := range groups {
		result = append(result, g.Key())
	}
	return result
}
