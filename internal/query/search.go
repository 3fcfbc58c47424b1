package query

import (
	"slices"
	"strings"

	"daara/internal/core"
)

// HitType tells which list a search hit came from.
type HitType string

const (
	HitContribution HitType = "contribution"
	HitOtherIncome  HitType = "other-income"
	HitExpense      HitType = "expense"
)

// Hit is a single entry matched by Search.
type Hit struct {
	Type   HitType    `json:"type"`
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
	Period string     `json:"period"`
	Year   int        `json:"year"`
	Month  core.Month `json:"month"`
}

// Search finds entries whose names contain q, ignoring case. Contributions
// match on given or family name, other income on source and expenses on
// label. A blank query finds nothing. Hits come newest record first, and in
// list order within a record.
func Search(records core.RecordStore, q string) []Hit {
	needle := core.Fold(strings.TrimSpace(q))
	if needle == "" {
		return []Hit{}
	}
	contains := func(s string) bool { return strings.Contains(core.Fold(s), needle) }

	hits := []Hit{}
	for _, r := range SortRecords(records) {
		hit := func(t HitType, id, name string, amount core.Money) Hit {
			return Hit{Type: t, ID: id, Name: name, Amount: amount, Period: r.Period(), Year: r.Year, Month: r.Month}
		}
		for _, c := range r.Contributions {
			if contains(c.GivenName) || contains(c.FamilyName) {
				hits = append(hits, hit(HitContribution, c.ID, c.FullName(), c.Amount))
			}
		}
		for _, o := range r.OtherIncome {
			if contains(o.Source) {
				hits = append(hits, hit(HitOtherIncome, o.ID, o.Source, o.Amount))
			}
		}
		for _, e := range r.Expenses {
			if contains(e.Label) {
				hits = append(hits, hit(HitExpense, e.ID, e.Label, e.Amount))
			}
		}
	}
	return slices.Clip(hits)
}
