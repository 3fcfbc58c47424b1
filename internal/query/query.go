// Package query derives the read-side views of the ledger: sorted and
// filtered record lists, selection totals, fund balances, search hits and
// the dashboard series. Every function is pure over the records it is given.
package query

import (
	"slices"
	"strconv"
	"strings"

	"daara/internal/core"
)

// All is the filter value that matches everything.
const All = "all"

// Filter narrows a record list. Empty fields behave like All. It is also
// the shape persisted in the saved browser filters slot.
type Filter struct {
	Year   string `json:"year"`
	Month  string `json:"month"`
	Member string `json:"member"`
}

// DefaultFilter matches every record.
func DefaultFilter() Filter {
	return Filter{Year: All, Month: All, Member: All}
}

// Normalize replaces empty fields with All and trims the rest.
func (f Filter) Normalize() Filter {
	norm := func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, All) {
			return All
		}
		return s
	}
	return Filter{Year: norm(f.Year), Month: norm(f.Month), Member: norm(f.Member)}
}

// Key is a stable cache key for the filter.
func (f Filter) Key() string {
	n := f.Normalize()
	return n.Year + "|" + core.FoldAccents(n.Month) + "|" + core.Fold(n.Member)
}

// Match reports whether r passes every active criterion.
func (f Filter) Match(r core.MonthlyRecord) bool {
	n := f.Normalize()
	if n.Year != All && strconv.Itoa(r.Year) != n.Year {
		return false
	}
	if n.Month != All {
		m, err := core.ParseMonth(n.Month)
		if err != nil || m != r.Month {
			return false
		}
	}
	if n.Member != All && !HasContributor(r, n.Member) {
		return false
	}
	return true
}

// Caption describes the filter for report titles, e.g. "Février 2024".
func (f Filter) Caption() string {
	n := f.Normalize()
	var parts []string
	if n.Month != All {
		if m, err := core.ParseMonth(n.Month); err == nil {
			parts = append(parts, m.String())
		}
	}
	if n.Year != All {
		parts = append(parts, n.Year)
	}
	if n.Member != All {
		parts = append(parts, n.Member)
	}
	if len(parts) == 0 {
		return "Toutes les périodes"
	}
	return strings.Join(parts, " ")
}

// SortRecords returns the records newest first: year descending, then month
// descending within a year.
func SortRecords(records core.RecordStore) []core.MonthlyRecord {
	out := records.Records()
	slices.SortFunc(out, func(a, b core.MonthlyRecord) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		return int(b.Month) - int(a.Month)
	})
	return out
}

// FilterRecords keeps the sorted records that match f, preserving order.
func FilterRecords(sorted []core.MonthlyRecord, f Filter) []core.MonthlyRecord {
	out := make([]core.MonthlyRecord, 0, len(sorted))
	for _, r := range sorted {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// CurrentFundBalances is the new balance of each fund in the most recent
// record, or zeros when there are no records.
func CurrentFundBalances(records core.RecordStore) core.Balances {
	sorted := SortRecords(records)
	if len(sorted) == 0 {
		return core.Balances{}
	}
	return sorted[0].Allocation.NewBalances()
}

// AvailableYears lists each year that has at least one record, newest first.
func AvailableYears(records core.RecordStore) []int {
	seen := make(map[int]struct{}, len(records))
	years := make([]int, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years
}

// MemberNames is the roster as "given family" strings.
func MemberNames(cfg core.Configuration) []string {
	return cfg.MemberNames()
}

// HasContributor reports whether any contribution in r was made by member,
// compared case-insensitively on the full name.
func HasContributor(r core.MonthlyRecord, member string) bool {
	_, ok := MemberContribution(r, member)
	return ok
}

// MemberContribution returns the amount of the first contribution in r
// whose full name matches member.
func MemberContribution(r core.MonthlyRecord, member string) (core.Money, bool) {
	for _, c := range r.Contributions {
		if core.FoldEqual(c.FullName(), member) {
			return c.Amount, true
		}
	}
	return core.Money{}, false
}

// SelectionTotals sums the totals of every record in the selection.
func SelectionTotals(records []core.MonthlyRecord) core.Totals {
	var t core.Totals
	for _, r := range records {
		t = t.Add(r.Totals())
	}
	return t
}
