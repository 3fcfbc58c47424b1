package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"daara/internal/core"
)

func sampleRecord(t *testing.T) core.MonthlyRecord {
	t.Helper()
	pct := core.Percents{Renovation: 40, Social: 30, Board: 30}
	now := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)
	r := core.NewMonthlyRecord(2024, core.March)
	edits := []core.Edit{
		core.AddContribution(core.NewContribution("Amadou", "Diop", core.NewMoney(100000))),
		core.AddOtherIncome(core.NewOtherIncome("Quête", core.NewMoney(5000))),
		core.AddExpense(core.NewExpense("Électricité", core.NewMoney(45000))),
	}
	for i, e := range edits {
		require.True(t, r.Apply(e, pct, now, i == 0))
	}
	return r
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func TestFormatAmount(t *testing.T) {
	got := FormatAmount(core.NewMoney(24000))
	assert.True(t, strings.HasSuffix(got, " FCFA"), got)
	assert.Equal(t, "24000", digits(got))

	got = FormatAmount(core.Money{Cents: 150050})
	assert.Equal(t, "15005", digits(got))
	assert.Contains(t, got, ",5")
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "N/A", FormatTime(nil))
	ts := time.Date(2024, 1, 5, 10, 7, 0, 0, time.UTC)
	assert.Equal(t, "05/01/2024 10:07", FormatTime(&ts))
}

func TestWriteMonthCSVSections(t *testing.T) {
	r := sampleRecord(t)
	var buf bytes.Buffer
	require.NoError(t, WriteMonthCSV(&buf, r, core.Configuration{Location: "Touba"}))
	out := buf.String()

	order := []string{
		"RAPPORT FINANCIER - MARS 2024",
		"Lieu: Touba",
		"Date de creation: 04/03/2024 09:30",
		"--- COTISATIONS ---",
		"Amadou,Diop,100000",
		"TOTAL COTISATIONS,,100000",
		"--- AUTRES RECETTES ---",
		"TOTAL AUTRES,,5000",
		"--- DEPENSES ---",
		"TOTAL DEPENSES,,45000",
		"--- BILAN ---",
		"Total Recu,,105000",
		"Net Mensuel,,60000",
		"--- REPARTITION DES FONDS ---",
		"Caisse Renovation,Ancien: 0,Nouveau: 24000",
		"Caisse Sociale,Ancien: 0,Nouveau: 18000",
		"Comite Directeur,Ancien: 0,Nouveau: 18000",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(out, want)
		require.GreaterOrEqual(t, i, 0, "missing %q in:\n%s", want, out)
		assert.Greater(t, i, last, "%q out of order", want)
		last = i
	}
}

func TestWriteMonthCSVUnknownLocation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonthCSV(&buf, core.NewMonthlyRecord(2023, core.December), core.Configuration{}))
	assert.Contains(t, buf.String(), "Lieu: Non spécifié")
	assert.Contains(t, buf.String(), "Derniere modification: N/A")
}

func findRow(rows [][]string, first string) []string {
	for _, row := range rows {
		if len(row) > 0 && row[0] == first {
			return row
		}
	}
	return nil
}

func TestMonthXLSX(t *testing.T) {
	b, err := MonthXLSX(sampleRecord(t), core.Configuration{Location: "Touba"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Mars 2024"}, f.GetSheetList())
	rows, err := f.GetRows("Mars 2024", excelize.Options{RawCellValue: true})
	require.NoError(t, err)

	assert.Equal(t, "100000", findRow(rows, "Total cotisations")[2])
	assert.Equal(t, "60000", findRow(rows, "Net mensuel")[1])
	reno := findRow(rows, core.FundRenovation.Label())
	require.NotNil(t, reno)
	assert.Equal(t, "24000", reno[2])
}

func TestPeriodXLSX(t *testing.T) {
	r1 := sampleRecord(t)
	r2 := core.NewMonthlyRecord(2024, core.April)
	r2.Contributions = []core.Contribution{core.NewContribution("Fatou", "Sall", core.NewMoney(2500))}
	records := []core.MonthlyRecord{r2, r1}
	totals := r1.Totals().Add(r2.Totals())

	b, err := PeriodXLSX(records, totals, core.Configuration{}, "2024")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, detailSheet}, f.GetSheetList())

	rows, err := f.GetRows(summarySheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.NotNil(t, findRow(rows, r1.Period()))
	assert.NotNil(t, findRow(rows, r2.Period()))
	total := findRow(rows, "Total")
	require.NotNil(t, total)
	assert.Equal(t, "102500", total[1])
	net := findRow(rows, "Net de la sélection")
	require.NotNil(t, net)
	assert.Equal(t, digits(FormatAmount(totals.Net)), digits(net[1]))

	detail, err := f.GetRows(detailSheet)
	require.NoError(t, err)
	assert.NotNil(t, findRow(detail, "Fatou"))
	assert.NotNil(t, findRow(detail, "Amadou"))
}
