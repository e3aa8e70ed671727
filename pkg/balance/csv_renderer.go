package balance

import (
	"strconv"

	"github.com/gocarina/gocsv"
	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	RenderGroups(groups []MonthlyGroup, summary Summary) (string, error)
}

type monthRow struct {
	Month        string `csv:"Month"`
	Year         string `csv:"Year"`
	Events       int    `csv:"Events"`
	TotalIncome  string `csv:"Total income"`
	TotalExpense string `csv:"Total expense"`
	Balance      string `csv:"Balance"`
}

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

// RenderGroups writes one row per month followed by a "Total" row for the
// summary. Amounts have two decimal places.
func (r *CsvRendererImpl) RenderGroups(groups []MonthlyGroup, summary Summary) (string, error) {
	rows := make([]monthRow, 0, len(groups)+1)
	for _, group := range groups {
		rows = append(rows, monthRow{
			Month:        group.Month,
			Year:         strconv.Itoa(group.Year),
			Events:       len(group.Events),
			TotalIncome:  group.TotalIncome.StringFixed(2),
			TotalExpense: group.TotalExpense.StringFixed(2),
			Balance:      group.Balance.StringFixed(2),
		})
	}
	rows = append(rows, monthRow{
		Month:        "Total",
		Events:       summary.EventCount,
		TotalIncome:  summary.TotalIncome.StringFixed(2),
		TotalExpense: summary.TotalExpense.StringFixed(2),
		Balance:      summary.Balance.StringFixed(2),
	})

	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return out, nil
}
