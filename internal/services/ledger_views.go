package services

import (
	"strconv"

	"daara/internal/core"
	"daara/internal/query"
)

// RecordView is a record with its derived totals. MemberAmount is set when
// browsing by member.
type RecordView struct {
	Key          string             `json:"key"`
	Record       core.MonthlyRecord `json:"record"`
	Totals       core.Totals        `json:"totals"`
	MemberAmount *core.Money        `json:"memberAmount,omitempty"`
}

// BrowseResult is the data browser page: the filtered records newest first
// and the totals over exactly that selection.
type BrowseResult struct {
	Filter   query.Filter  `json:"filter"`
	Records  []RecordView  `json:"records"`
	Totals   core.Totals   `json:"totals"`
	Years    []int         `json:"years"`
	Members  []string      `json:"members"`
	Balances core.Balances `json:"balances"`
	Revision uint64        `json:"revision"`
}

func (s *LedgerService) viewKey(rev uint64, view, params string) string {
	return strconv.FormatUint(rev, 10) + "|" + view + "|" + params
}

// Browse filters and totals the records. Results are cached per revision.
func (s *LedgerService) Browse(f query.Filter) BrowseResult {
	snap := s.Snapshot()
	f = f.Normalize()
	key := s.viewKey(snap.Revision, "browse", f.Key())
	return s.views.GetOrCompute(key, func() any {
		return buildBrowse(snap, f)
	}).(BrowseResult)
}

func buildBrowse(snap *Snapshot, f query.Filter) BrowseResult {
	records := query.FilterRecords(query.SortRecords(snap.Data.Records), f)
	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		v := RecordView{Key: r.Key(), Record: r, Totals: r.Totals()}
		if f.Member != query.All {
			if amount, ok := query.MemberContribution(r, f.Member); ok {
				v.MemberAmount = &amount
			}
		}
		views = append(views, v)
	}
	return BrowseResult{
		Filter:   f,
		Records:  views,
		Totals:   query.SelectionTotals(records),
		Years:    query.AvailableYears(snap.Data.Records),
		Members:  query.MemberNames(snap.Data.Config),
		Balances: query.CurrentFundBalances(snap.Data.Records),
		Revision: snap.Revision,
	}
}

// Dashboard builds the yearly overview, cached per revision.
func (s *LedgerService) Dashboard(year int) query.Dashboard {
	snap := s.Snapshot()
	key := s.viewKey(snap.Revision, "dashboard", strconv.Itoa(year))
	return s.views.GetOrCompute(key, func() any {
		return query.BuildDashboard(snap.Data, year)
	}).(query.Dashboard)
}

func (s *LedgerService) Search(q string) []query.Hit {
	return query.Search(s.Snapshot().Data.Records, q)
}

// Balances is the current balance of each fund: the newest record's new
// balances, or zeros.
func (s *LedgerService) Balances() core.Balances {
	return query.CurrentFundBalances(s.Snapshot().Data.Records)
}

func (s *LedgerService) Years() []int {
	return query.AvailableYears(s.Snapshot().Data.Records)
}

// Records returns the records matching f, newest first.
func (s *LedgerService) Records(f query.Filter) []core.MonthlyRecord {
	return query.FilterRecords(query.SortRecords(s.Snapshot().Data.Records), f)
}
