package core

import (
	"testing"
	"time"
)

var defaultSplit = Percents{Renovation: 40, Social: 30, Board: 30}

func mustApply(t *testing.T, r *MonthlyRecord, e Edit, pct Percents, first bool) {
	t.Helper()
	if !r.Apply(e, pct, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), first) {
		t.Fatalf("edit reported no change")
	}
}

func TestRecordTotalsAndAllocation(t *testing.T) {
	r := NewMonthlyRecord(2024, March)
	mustApply(t, &r, AddContribution(NewContribution("Amadou", "Diop", NewMoney(100000))), defaultSplit, true)
	mustApply(t, &r, AddExpense(NewExpense("Électricité", NewMoney(40000))), defaultSplit, false)

	if got := r.TotalReceived(); got != NewMoney(100000) {
		t.Fatalf("totalReceived=%v", got)
	}
	if got := r.TotalExpenses(); got != NewMoney(40000) {
		t.Fatalf("totalExpenses=%v", got)
	}
	if got := r.NetMonthly(); got != NewMoney(60000) {
		t.Fatalf("netMonthly=%v", got)
	}
	want := Balances{Renovation: NewMoney(24000), Social: NewMoney(18000), Board: NewMoney(18000)}
	if got := r.Allocation.NewBalances(); got != want {
		t.Fatalf("new balances=%+v, want %+v", got, want)
	}
}

func TestRecordTotalIdentities(t *testing.T) {
	r := NewMonthlyRecord(2024, April)
	r.Contributions = []Contribution{
		NewContribution("A", "B", NewMoney(5000)),
		NewContribution("C", "D", Money{Cents: 250}),
	}
	r.OtherIncome = []OtherIncome{NewOtherIncome("Quête", NewMoney(1200))}
	r.Expenses = []Expense{NewExpense("Loyer", NewMoney(9000)), NewExpense("Eau", NewMoney(300))}

	if r.TotalReceived() != r.TotalContributions().Add(r.TotalOtherIncome()) {
		t.Fatalf("received identity broken")
	}
	if r.NetMonthly() != r.TotalReceived().Sub(r.TotalExpenses()) {
		t.Fatalf("net identity broken")
	}
	if !r.NetMonthly().IsNegative() {
		t.Fatalf("expected negative net, got %v", r.NetMonthly())
	}
	tot := r.Totals()
	if tot.Net != r.NetMonthly() || tot.Received != r.TotalReceived() || tot.OtherIncome != NewMoney(1200) {
		t.Fatalf("totals disagree: %+v", tot)
	}
}

func TestRecomputeFormulaAndIdempotence(t *testing.T) {
	r := NewMonthlyRecord(2024, May)
	r.Contributions = []Contribution{NewContribution("A", "B", NewMoney(12345))}
	r.Allocation.Renovation.PriorBalance = NewMoney(1000)
	r.Allocation.Social.PriorBalance = NewMoney(-200)
	r.Allocation.Board.PriorBalance = NewMoney(7)

	pct := Percents{Renovation: 33, Social: 33, Board: 34}
	r.Recompute(pct)
	for _, f := range Funds {
		st, err := r.Allocation.State(f)
		if err != nil {
			t.Fatalf("state %s: %v", f, err)
		}
		want := st.PriorBalance.Add(r.NetMonthly().Share(pct.Of(f)))
		if st.NewBalance != want {
			t.Fatalf("%s: new=%v want=%v", f, st.NewBalance, want)
		}
	}

	once := r.Clone()
	r.Recompute(pct)
	if r.Allocation != once.Allocation {
		t.Fatalf("recompute drifted: %+v vs %+v", r.Allocation, once.Allocation)
	}
}

func TestAllocateSoftConstraint(t *testing.T) {
	pct := Percents{Renovation: 40, Social: 40, Board: 30}
	if pct.Total() != 110 {
		t.Fatalf("expected 110, got %d", pct.Total())
	}
	got := Allocate(NewMoney(10000), Balances{}, pct)
	want := Balances{Renovation: NewMoney(4000), Social: NewMoney(4000), Board: NewMoney(3000)}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if got.Total() != NewMoney(11000) {
		t.Fatalf("expected shares to exceed net, total=%v", got.Total())
	}
}

func TestSetPriorBalanceRecomputes(t *testing.T) {
	r := NewMonthlyRecord(2024, June)
	mustApply(t, &r, AddContribution(NewContribution("A", "B", NewMoney(1000))), defaultSplit, true)
	mustApply(t, &r, SetPriorBalance(FundSocial, NewMoney(500)), defaultSplit, false)

	if r.Allocation.Social.PriorBalance != NewMoney(500) {
		t.Fatalf("prior not set: %v", r.Allocation.Social.PriorBalance)
	}
	if r.Allocation.Social.NewBalance != NewMoney(800) {
		t.Fatalf("expected 800, got %v", r.Allocation.Social.NewBalance)
	}
	if r.Apply(SetPriorBalance(Fund("nope"), NewMoney(1)), defaultSplit, time.Now(), false) {
		t.Fatalf("unknown fund must be a no-op")
	}
}

func TestUpdateAndRemoveEntries(t *testing.T) {
	r := NewMonthlyRecord(2024, July)
	c := NewContribution("", "", Money{})
	mustApply(t, &r, AddContribution(c), defaultSplit, true)

	mustApply(t, &r, UpdateContribution(c.ID, FieldGivenName, "Fatou"), defaultSplit, false)
	mustApply(t, &r, UpdateContribution(c.ID, FieldAmount, "2500"), defaultSplit, false)
	if r.Contributions[0].GivenName != "Fatou" || r.Contributions[0].Amount != NewMoney(2500) {
		t.Fatalf("unexpected contribution %+v", r.Contributions[0])
	}

	mustApply(t, &r, UpdateContribution(c.ID, FieldAmount, "not a number"), defaultSplit, false)
	if !r.Contributions[0].Amount.IsZero() {
		t.Fatalf("non-numeric amount should coerce to zero, got %v", r.Contributions[0].Amount)
	}

	if r.Apply(UpdateContribution("missing", FieldAmount, "5"), defaultSplit, time.Now(), false) {
		t.Fatalf("update of unknown id must be a no-op")
	}
	if r.Apply(UpdateContribution(c.ID, FieldLabel, "x"), defaultSplit, time.Now(), false) {
		t.Fatalf("field not on contributions must be a no-op")
	}
	if r.Apply(RemoveExpense("missing"), defaultSplit, time.Now(), false) {
		t.Fatalf("remove of unknown id must be a no-op")
	}

	o := NewOtherIncome("Don", NewMoney(100))
	e := NewExpense("Sucre", NewMoney(40))
	mustApply(t, &r, AddOtherIncome(o), defaultSplit, false)
	mustApply(t, &r, AddExpense(e), defaultSplit, false)
	mustApply(t, &r, UpdateOtherIncome(o.ID, FieldSource, "Don anonyme"), defaultSplit, false)
	mustApply(t, &r, UpdateExpense(e.ID, FieldLabel, "Sucre et thé"), defaultSplit, false)
	if r.OtherIncome[0].Source != "Don anonyme" || r.Expenses[0].Label != "Sucre et thé" {
		t.Fatalf("labels not updated: %+v %+v", r.OtherIncome, r.Expenses)
	}

	mustApply(t, &r, RemoveContribution(c.ID), defaultSplit, false)
	mustApply(t, &r, RemoveOtherIncome(o.ID), defaultSplit, false)
	mustApply(t, &r, RemoveExpense(e.ID), defaultSplit, false)
	if len(r.Contributions)+len(r.OtherIncome)+len(r.Expenses) != 0 {
		t.Fatalf("expected empty lists")
	}
	if !r.Allocation.NewBalances().Total().IsZero() {
		t.Fatalf("expected zero balances after removing everything")
	}
}

func TestEditsDoNotLeakIntoClones(t *testing.T) {
	r := NewMonthlyRecord(2024, August)
	c := NewContribution("A", "B", NewMoney(10))
	mustApply(t, &r, AddContribution(c), defaultSplit, true)

	before := r.Clone()
	mustApply(t, &r, UpdateContribution(c.ID, FieldAmount, "99"), defaultSplit, false)
	if before.Contributions[0].Amount != NewMoney(10) {
		t.Fatalf("clone observed edit: %v", before.Contributions[0].Amount)
	}
}

func TestTouch(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	r := NewMonthlyRecord(2024, January)
	r.Touch(t0, true)
	if !r.CreatedAt.Equal(t0) || !r.UpdatedAt.Equal(t0) {
		t.Fatalf("first touch: %v %v", r.CreatedAt, r.UpdatedAt)
	}
	r.Touch(t1, false)
	if !r.CreatedAt.Equal(t0) {
		t.Fatalf("createdAt changed to %v", r.CreatedAt)
	}
	if !r.UpdatedAt.Equal(t1) {
		t.Fatalf("updatedAt not bumped: %v", r.UpdatedAt)
	}
}

func TestNegativeAmountsClampToZero(t *testing.T) {
	if c := NewContribution("A", "B", NewMoney(-10)); !c.Amount.IsZero() {
		t.Fatalf("expected zero, got %v", c.Amount)
	}
	r := NewMonthlyRecord(2024, September)
	e := NewExpense("x", NewMoney(5))
	mustApply(t, &r, AddExpense(e), defaultSplit, true)
	mustApply(t, &r, UpdateExpense(e.ID, FieldAmount, "-30"), defaultSplit, false)
	if !r.Expenses[0].Amount.IsZero() {
		t.Fatalf("expected zero, got %v", r.Expenses[0].Amount)
	}
}
