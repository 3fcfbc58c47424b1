package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daara/internal/core"
)

var split = core.Percents{Renovation: 40, Social: 30, Board: 30}

func record(t *testing.T, year int, month core.Month, contributions []core.Contribution, expenses ...core.Expense) core.MonthlyRecord {
	t.Helper()
	r := core.NewMonthlyRecord(year, month)
	r.Contributions = append(r.Contributions, contributions...)
	r.Expenses = append(r.Expenses, expenses...)
	r.Recompute(split)
	return r
}

func fixture(t *testing.T) core.RecordStore {
	t.Helper()
	s := core.RecordStore{}
	s.Put(2023, core.December, record(t, 2023, core.December,
		[]core.Contribution{core.NewContribution("Awa", "Ndiaye", core.NewMoney(3000))}))
	s.Put(2024, core.January, record(t, 2024, core.January,
		[]core.Contribution{core.NewContribution("Amadou", "Diop", core.NewMoney(5000))},
		core.NewExpense("Eau", core.NewMoney(1000))))
	s.Put(2024, core.February, record(t, 2024, core.February,
		[]core.Contribution{core.NewContribution("Awa", "Ndiaye", core.NewMoney(2000))}))
	s.Put(2024, core.March, record(t, 2024, core.March,
		[]core.Contribution{
			core.NewContribution("amadou", "DIOP", core.NewMoney(4000)),
			core.NewContribution("Awa", "Ndiaye", core.NewMoney(1000)),
		},
		core.NewExpense("Électricité", core.NewMoney(6000))))
	return s
}

func TestSortRecords(t *testing.T) {
	sorted := SortRecords(fixture(t))
	require.Len(t, sorted, 4)
	got := make([]string, 0, len(sorted))
	for _, r := range sorted {
		got = append(got, r.Key())
	}
	assert.Equal(t, []string{"2024-Mars", "2024-Février", "2024-Janvier", "2023-Décembre"}, got)
}

func TestMemberFilter(t *testing.T) {
	sorted := SortRecords(fixture(t))
	got := FilterRecords(sorted, Filter{Year: All, Month: All, Member: "Amadou Diop"})
	require.Len(t, got, 2)
	assert.Equal(t, core.March, got[0].Month)
	assert.Equal(t, core.January, got[1].Month)

	amount, ok := MemberContribution(got[0], "amadou diop")
	assert.True(t, ok)
	assert.Equal(t, core.NewMoney(4000), amount)
}

func TestMemberFilterKeepsFullNameWhitespace(t *testing.T) {
	r := record(t, 2024, core.April,
		[]core.Contribution{core.NewContribution("Amadou", "", core.NewMoney(500))})
	assert.Equal(t, "Amadou ", r.Contributions[0].FullName())

	assert.False(t, HasContributor(r, "Amadou"))
	assert.True(t, HasContributor(r, "amadou "))

	got := FilterRecords([]core.MonthlyRecord{r}, Filter{Year: All, Month: All, Member: "Amadou"})
	assert.Empty(t, got)
}

func TestYearAndMonthFilter(t *testing.T) {
	sorted := SortRecords(fixture(t))

	assert.Len(t, FilterRecords(sorted, Filter{Year: "2024"}), 3)
	assert.Len(t, FilterRecords(sorted, Filter{Year: "2023", Month: "decembre"}), 1)
	assert.Len(t, FilterRecords(sorted, Filter{Month: "Février"}), 1)
	assert.Empty(t, FilterRecords(sorted, Filter{Month: "Brumaire"}))
	assert.Empty(t, FilterRecords(sorted, Filter{Year: "2024", Member: "Nobody"}))
}

func TestUnfilteredSelectionTotals(t *testing.T) {
	store := fixture(t)
	all := FilterRecords(SortRecords(store), DefaultFilter())
	totals := SelectionTotals(all)

	var net core.Money
	for _, r := range store {
		net = net.Add(r.NetMonthly())
	}
	assert.Equal(t, net, totals.Net)
	assert.Equal(t, core.NewMoney(15000), totals.Contributions)
	assert.Equal(t, core.NewMoney(7000), totals.Expenses)
	assert.Equal(t, totals.Received.Sub(totals.Expenses), totals.Net)
}

func TestCurrentFundBalances(t *testing.T) {
	assert.Equal(t, core.Balances{}, CurrentFundBalances(core.RecordStore{}))

	store := fixture(t)
	march, _ := store.Lookup(2024, core.March)
	assert.Equal(t, march.Allocation.NewBalances(), CurrentFundBalances(store))
	assert.Equal(t, core.NewMoney(-400), CurrentFundBalances(store).Renovation)
}

func TestAvailableYears(t *testing.T) {
	assert.Equal(t, []int{2024, 2023}, AvailableYears(fixture(t)))
	assert.Empty(t, AvailableYears(core.RecordStore{}))
}

func TestFilterNormalizeAndKey(t *testing.T) {
	assert.Equal(t, DefaultFilter(), Filter{}.Normalize())
	assert.Equal(t, Filter{Month: "Aout"}.Key(), Filter{Year: "all", Month: "AOÛT"}.Key())
}

func TestFilterCaption(t *testing.T) {
	assert.Equal(t, "Toutes les périodes", DefaultFilter().Caption())
	assert.Equal(t, "Février 2024 Awa Ndiaye", Filter{Year: "2024", Month: "fevrier", Member: "Awa Ndiaye"}.Caption())
	assert.Equal(t, "2023", Filter{Year: "2023"}.Caption())
}
