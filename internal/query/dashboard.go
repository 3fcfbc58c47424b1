package query

import "daara/internal/core"

// MonthPoint is one bar of the yearly chart.
type MonthPoint struct {
	Month    core.Month `json:"month"`
	Label    string     `json:"label"`
	Received core.Money `json:"received"`
	Expenses core.Money `json:"expenses"`
	Net      core.Money `json:"net"`
	Recorded bool       `json:"recorded"`
}

// Dashboard is the overview shown on the landing page.
type Dashboard struct {
	Year                    int           `json:"year"`
	Series                  []MonthPoint  `json:"series"`
	GrandTotalContributions core.Money    `json:"grandTotalContributions"`
	MemberCount             int           `json:"memberCount"`
	Balances                core.Balances `json:"balances"`
}

// YearSeries returns twelve points for year; months without a record are
// zero.
func YearSeries(records core.RecordStore, year int) []MonthPoint {
	out := make([]MonthPoint, 0, 12)
	for _, m := range core.Months() {
		p := MonthPoint{Month: m, Label: m.Short()}
		if r, ok := records.Lookup(year, m); ok {
			t := r.Totals()
			p.Received, p.Expenses, p.Net, p.Recorded = t.Received, t.Expenses, t.Net, true
		}
		out = append(out, p)
	}
	return out
}

// GrandTotalContributions sums member contributions over every record.
func GrandTotalContributions(records core.RecordStore) core.Money {
	var total core.Money
	for _, r := range records {
		total = total.Add(r.TotalContributions())
	}
	return total
}

func BuildDashboard(data core.AppData, year int) Dashboard {
	return Dashboard{
		Year:                    year,
		Series:                  YearSeries(data.Records, year),
		GrandTotalContributions: GrandTotalContributions(data.Records),
		MemberCount:             len(data.Config.Members),
		Balances:                CurrentFundBalances(data.Records),
	}
}
