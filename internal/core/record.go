package core

import "time"

// EntryList names one of the three line-item lists of a record.
type EntryList string

const (
	ListContributions EntryList = "contributions"
	ListOtherIncome   EntryList = "other-income"
	ListExpenses      EntryList = "expenses"
)

func ParseEntryList(s string) (EntryList, bool) {
	switch l := EntryList(s); l {
	case ListContributions, ListOtherIncome, ListExpenses:
		return l, true
	}
	return "", false
}

// MonthlyRecord is one month's complete books. Allocation is derived from
// the entries, the fund prior balances and the split in force at the last
// recompute.
type MonthlyRecord struct {
	Month         Month          `json:"month"`
	Year          int            `json:"year"`
	Contributions []Contribution `json:"cotisations"`
	OtherIncome   []OtherIncome  `json:"autresSommes"`
	Expenses      []Expense      `json:"depenses"`
	Allocation    FundAllocation `json:"repartition"`
	CreatedAt     *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"`
}

// Totals is the derived money summary of a record or selection.
type Totals struct {
	Contributions Money `json:"contributions"`
	OtherIncome   Money `json:"other"`
	Received      Money `json:"received"`
	Expenses      Money `json:"expenses"`
	Net           Money `json:"net"`
}

// NewMonthlyRecord returns the zero-valued record for (year, month): empty
// lists, zero balances, no timestamps.
func NewMonthlyRecord(year int, month Month) MonthlyRecord {
	return MonthlyRecord{
		Month:         month,
		Year:          year,
		Contributions: []Contribution{},
		OtherIncome:   []OtherIncome{},
		Expenses:      []Expense{},
	}
}

func (r MonthlyRecord) Key() string {
	return RecordKey(r.Year, r.Month)
}

// Period is the "Mois Année" label shown next to search hits.
func (r MonthlyRecord) Period() string {
	return r.Month.String() + " " + itoa(r.Year)
}

func (r MonthlyRecord) TotalContributions() Money {
	return sumAmounts(r.Contributions, func(c Contribution) Money { return c.Amount })
}

func (r MonthlyRecord) TotalOtherIncome() Money {
	return sumAmounts(r.OtherIncome, func(o OtherIncome) Money { return o.Amount })
}

func (r MonthlyRecord) TotalReceived() Money {
	return r.TotalContributions().Add(r.TotalOtherIncome())
}

func (r MonthlyRecord) TotalExpenses() Money {
	return sumAmounts(r.Expenses, func(e Expense) Money { return e.Amount })
}

// NetMonthly is received minus expenses; it may be negative.
func (r MonthlyRecord) NetMonthly() Money {
	return r.TotalReceived().Sub(r.TotalExpenses())
}

func (r MonthlyRecord) Totals() Totals {
	contrib, other, expenses := r.TotalContributions(), r.TotalOtherIncome(), r.TotalExpenses()
	received := contrib.Add(other)
	return Totals{
		Contributions: contrib,
		OtherIncome:   other,
		Received:      received,
		Expenses:      expenses,
		Net:           received.Sub(expenses),
	}
}

// Add accumulates o into t.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Contributions: t.Contributions.Add(o.Contributions),
		OtherIncome:   t.OtherIncome.Add(o.OtherIncome),
		Received:      t.Received.Add(o.Received),
		Expenses:      t.Expenses.Add(o.Expenses),
		Net:           t.Net.Add(o.Net),
	}
}

// Recompute derives every fund's NewBalance from its PriorBalance and the
// current net under pct. Calling it twice yields the same record.
func (r *MonthlyRecord) Recompute(pct Percents) {
	r.Allocation.reallocate(r.NetMonthly(), pct)
}

// Touch stamps UpdatedAt. CreatedAt is stamped on first creation, and also
// when an imported record arrives without one.
func (r *MonthlyRecord) Touch(now time.Time, isFirstCreation bool) {
	ts := now
	r.UpdatedAt = &ts
	if isFirstCreation || r.CreatedAt == nil {
		created := now
		r.CreatedAt = &created
	}
}

// Clone returns a copy that shares no slices with r.
func (r MonthlyRecord) Clone() MonthlyRecord {
	out := r
	out.Contributions = append(make([]Contribution, 0, len(r.Contributions)), r.Contributions...)
	out.OtherIncome = append(make([]OtherIncome, 0, len(r.OtherIncome)), r.OtherIncome...)
	out.Expenses = append(make([]Expense, 0, len(r.Expenses)), r.Expenses...)
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		out.CreatedAt = &t
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// Edit is a change to a record's entries or prior balances. It reports
// whether anything changed; an edit aimed at a missing id reports false.
type Edit func(r *MonthlyRecord) bool

// Apply runs edit and, if it changed the record, recomputes the allocation
// under pct and touches the timestamps.
func (r *MonthlyRecord) Apply(edit Edit, pct Percents, now time.Time, isFirstCreation bool) bool {
	if !edit(r) {
		return false
	}
	r.Recompute(pct)
	r.Touch(now, isFirstCreation)
	return true
}

func AddContribution(c Contribution) Edit {
	return func(r *MonthlyRecord) bool {
		r.Contributions = append(r.Contributions, c)
		return true
	}
}

func UpdateContribution(id string, field EntryField, value string) Edit {
	return func(r *MonthlyRecord) bool {
		var ok bool
		r.Contributions, ok = updateByID(r.Contributions, id, field, value)
		return ok
	}
}

func RemoveContribution(id string) Edit {
	return func(r *MonthlyRecord) bool {
		var ok bool
		r.Contributions, ok = removeByID(r.Contributions, id)
		return ok
	}
}

func AddOtherIncome(o OtherIncome) Edit {
	return func(r *MonthlyRecord) bool {
		r.OtherIncome = append(r.OtherIncome, o)
		return true
	}
}

func UpdateOtherIncome(id string, field EntryField, value string) Edit {
	return func(r *MonthlyRecord) bool {
		var ok bool
		r.OtherIncome, ok = updateByID(r.OtherIncome, id, field, value)
		return ok
	}
}

func RemoveOtherIncome(id string) Edit {
	return func(r *MonthlyRecord) bool {
		var ok bool
		r.OtherIncome, ok = removeByID(r.OtherIncome, id)
		return ok
	}
}

func AddExpense(e Expense) Edit {
	return func(r *MonthlyRecord) bool {
		r.Expenses = append(r.Expenses, e)
		return true
	}
}

func UpdateExpense(id string, field EntryField, value string) Edit {
	return func(r *MonthlyRecord) bool {
		var ok bool
		r.Expenses, ok = updateByID(r.Expenses, id, field, value)
		return ok
	}
}

func RemoveExpense(id string) Edit {
	return func(r *MonthlyRecord) bool {
		var ok bool
		r.Expenses, ok = removeByID(r.Expenses, id)
		return ok
	}
}

// SetPriorBalance replaces a fund's prior balance. Unknown funds are a
// no-op.
func SetPriorBalance(f Fund, balance Money) Edit {
	return func(r *MonthlyRecord) bool {
		st := r.Allocation.state(f)
		if st == nil {
			return false
		}
		st.PriorBalance = balance
		return true
	}
}

// SetPriorBalances replaces all three prior balances at once.
func SetPriorBalances(b Balances) Edit {
	return func(r *MonthlyRecord) bool {
		r.Allocation.Renovation.PriorBalance = b.Renovation
		r.Allocation.Social.PriorBalance = b.Social
		r.Allocation.Board.PriorBalance = b.Board
		return true
	}
}
