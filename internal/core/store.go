package core

import (
	"fmt"
	"strconv"
)

// RecordStore maps "<year>-<MonthName>" to exactly one record.
type RecordStore map[string]MonthlyRecord

// RecordKey builds the store key for (year, month), e.g. "2024-Janvier".
func RecordKey(year int, month Month) string {
	return itoa(year) + "-" + month.String()
}

// Get returns the stored record, or a fresh zero-valued one. The default is
// not inserted.
func (s RecordStore) Get(year int, month Month) MonthlyRecord {
	if r, ok := s[RecordKey(year, month)]; ok {
		return r
	}
	return NewMonthlyRecord(year, month)
}

// Lookup is Get with an explicit existence flag.
func (s RecordStore) Lookup(year int, month Month) (MonthlyRecord, bool) {
	r, ok := s[RecordKey(year, month)]
	return r, ok
}

func (s RecordStore) Has(year int, month Month) bool {
	_, ok := s[RecordKey(year, month)]
	return ok
}

// Put inserts or replaces the record for (year, month), forcing the
// record's own year and month to agree with the key.
func (s RecordStore) Put(year int, month Month, r MonthlyRecord) {
	r.Year, r.Month = year, month
	s[RecordKey(year, month)] = r
}

// Delete removes the record; deleting an absent key does nothing.
func (s RecordStore) Delete(year int, month Month) {
	delete(s, RecordKey(year, month))
}

// Records returns the stored records in no particular order.
func (s RecordStore) Records() []MonthlyRecord {
	out := make([]MonthlyRecord, 0, len(s))
	for _, r := range s {
		out = append(out, r)
	}
	return out
}

// Clone copies the map. Records are values and are never mutated in place
// once stored, so they are shared.
func (s RecordStore) Clone() RecordStore {
	out := make(RecordStore, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Rekey rebuilds the store from each record's own year and month, so that
// data loaded from elsewhere addresses records the same way Put does. Two
// records claiming the same period are rejected with ErrDuplicateRecord.
func (s RecordStore) Rekey() (RecordStore, error) {
	out := make(RecordStore, len(s))
	for _, r := range s {
		if err := ValidateKey(r.Year, r.Month); err != nil {
			return nil, err
		}
		if out.Has(r.Year, r.Month) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRecord, RecordKey(r.Year, r.Month))
		}
		if r.Contributions == nil {
			r.Contributions = []Contribution{}
		}
		if r.OtherIncome == nil {
			r.OtherIncome = []OtherIncome{}
		}
		if r.Expenses == nil {
			r.Expenses = []Expense{}
		}
		out.Put(r.Year, r.Month, r)
	}
	return out, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
