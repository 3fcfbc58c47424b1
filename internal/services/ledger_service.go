package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"daara/internal/cache"
	"daara/internal/core"
	"daara/internal/log"
	"daara/internal/query"
	"daara/internal/storage"
)

var (
	// ErrNoPreviousRecord is returned by CarryForward when the month before
	// has never been recorded.
	ErrNoPreviousRecord = errors.New("no record for the previous month")
	ErrMemberNotFound   = errors.New("member not found")
)

// Snapshot is an immutable view of the ledger at one revision. Callers must
// not modify it.
type Snapshot struct {
	Data     core.AppData
	Revision uint64
}

// MutationResult is the record after an edit. Changed is false when the
// edit targeted an entry that does not exist.
type MutationResult struct {
	Record  core.MonthlyRecord `json:"record"`
	Totals  core.Totals        `json:"totals"`
	Changed bool               `json:"changed"`
}

// LedgerService owns the current ledger. Writers are serialised; readers
// load the published snapshot without locking.
type LedgerService struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]

	repo   *storage.Repository
	logger *log.Logger
	views  *cache.LRU[any]
	now    func() time.Time
}

type Option func(*LedgerService)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithViewCache sizes the derived-view cache.
func WithViewCache(size int, ttl time.Duration) Option {
	return func(s *LedgerService) { s.views = cache.NewLRU[any](size, ttl) }
}

// NewLedgerService loads the persisted ledger from repo.
func NewLedgerService(ctx context.Context, repo *storage.Repository, logger *log.Logger, opts ...Option) (*LedgerService, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &LedgerService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentLedger),
		views:  cache.NewLRU[any](128, 5*time.Minute),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := repo.LoadAppData(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load ledger",
			log.NewFields().WithOperation(log.OpLoad).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	s.current.Store(&Snapshot{Data: data, Revision: 1})
	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad, "records", len(data.Records), "members", len(data.Config.Members))
	return s, nil
}

// Views exposes the view cache so it can be swept periodically.
func (s *LedgerService) Views() cache.Cleaner { return s.views }

// Snapshot returns the current immutable ledger.
func (s *LedgerService) Snapshot() *Snapshot {
	return s.current.Load()
}

// Record returns the record for (year, month), or the zero-valued default
// when none exists. The default is not stored.
func (s *LedgerService) Record(year int, month core.Month) (core.MonthlyRecord, error) {
	if err := core.ValidateKey(year, month); err != nil {
		return core.MonthlyRecord{}, err
	}
	return s.Snapshot().Data.Records.Get(year, month).Clone(), nil
}

func (s *LedgerService) RecordExists(year int, month core.Month) bool {
	return s.Snapshot().Data.Records.Has(year, month)
}

// commit persists next and publishes it. The published snapshot is left
// untouched when saving fails. Callers hold s.mu.
func (s *LedgerService) commit(ctx context.Context, op string, next core.AppData) (uint64, error) {
	if err := s.repo.SaveAppData(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		return 0, fmt.Errorf("persist ledger: %w", err)
	}
	rev := s.current.Load().Revision + 1
	s.current.Store(&Snapshot{Data: next, Revision: rev})
	s.views.Purge()
	return rev, nil
}

// mutateRecord is the single path for record edits: clone, edit,
// recompute, touch, save, swap, log.
func (s *LedgerService) mutateRecord(ctx context.Context, op string, year int, month core.Month, edit core.Edit, fields log.LogFields) (MutationResult, error) {
	return s.mutateRecordFrom(ctx, op, year, month, func(core.AppData) (core.Edit, error) { return edit, nil }, fields)
}

// mutateRecordFrom builds the edit from the snapshot it will be applied to.
func (s *LedgerService) mutateRecordFrom(ctx context.Context, op string, year int, month core.Month, build func(core.AppData) (core.Edit, error), fields log.LogFields) (MutationResult, error) {
	if err := core.ValidateKey(year, month); err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	edit, err := build(cur.Data)
	if err != nil {
		return MutationResult{}, err
	}
	existing, exists := cur.Data.Records.Lookup(year, month)
	rec := core.NewMonthlyRecord(year, month)
	if exists {
		rec = existing.Clone()
	}

	if !rec.Apply(edit, cur.Data.Config.Percents(), s.now(), !exists) {
		s.logger.DebugContext(ctx, "Edit matched nothing",
			fields.WithOperation(op).WithRecord(year, month.String(), core.RecordKey(year, month)).ToSlice()...)
		out := cur.Data.Records.Get(year, month).Clone()
		return MutationResult{Record: out, Totals: out.Totals()}, nil
	}

	next := core.AppData{Records: cur.Data.Records.Clone(), Config: cur.Data.Config}
	next.Records.Put(year, month, rec)

	rev, err := s.commit(ctx, op, next)
	if err != nil {
		return MutationResult{}, err
	}

	s.logger.InfoContext(ctx, "Ledger updated",
		fields.WithOperation(op).WithRecord(year, month.String(), rec.Key()).WithRevision(rev).ToSlice()...)
	return MutationResult{Record: rec.Clone(), Totals: rec.Totals(), Changed: true}, nil
}

func (s *LedgerService) AddContribution(ctx context.Context, year int, month core.Month, givenName, familyName string, amount core.Money) (MutationResult, error) {
	c := core.NewContribution(givenName, familyName, amount)
	return s.mutateRecord(ctx, log.OpAddEntry, year, month, core.AddContribution(c),
		log.NewFields().WithEntry(string(core.ListContributions), c.ID))
}

func (s *LedgerService) UpdateContribution(ctx context.Context, year int, month core.Month, id string, field core.EntryField, value string) (MutationResult, error) {
	return s.updateEntry(ctx, year, month, core.ListContributions, id, field, value)
}

func (s *LedgerService) RemoveContribution(ctx context.Context, year int, month core.Month, id string) (MutationResult, error) {
	return s.removeEntry(ctx, year, month, core.ListContributions, id)
}

func (s *LedgerService) AddOtherIncome(ctx context.Context, year int, month core.Month, source string, amount core.Money) (MutationResult, error) {
	o := core.NewOtherIncome(source, amount)
	return s.mutateRecord(ctx, log.OpAddEntry, year, month, core.AddOtherIncome(o),
		log.NewFields().WithEntry(string(core.ListOtherIncome), o.ID))
}

func (s *LedgerService) UpdateOtherIncome(ctx context.Context, year int, month core.Month, id string, field core.EntryField, value string) (MutationResult, error) {
	return s.updateEntry(ctx, year, month, core.ListOtherIncome, id, field, value)
}

func (s *LedgerService) RemoveOtherIncome(ctx context.Context, year int, month core.Month, id string) (MutationResult, error) {
	return s.removeEntry(ctx, year, month, core.ListOtherIncome, id)
}

func (s *LedgerService) AddExpense(ctx context.Context, year int, month core.Month, label string, amount core.Money) (MutationResult, error) {
	e := core.NewExpense(label, amount)
	return s.mutateRecord(ctx, log.OpAddEntry, year, month, core.AddExpense(e),
		log.NewFields().WithEntry(string(core.ListExpenses), e.ID))
}

func (s *LedgerService) UpdateExpense(ctx context.Context, year int, month core.Month, id string, field core.EntryField, value string) (MutationResult, error) {
	return s.updateEntry(ctx, year, month, core.ListExpenses, id, field, value)
}

func (s *LedgerService) RemoveExpense(ctx context.Context, year int, month core.Month, id string) (MutationResult, error) {
	return s.removeEntry(ctx, year, month, core.ListExpenses, id)
}

func (s *LedgerService) updateEntry(ctx context.Context, year int, month core.Month, list core.EntryList, id string, field core.EntryField, value string) (MutationResult, error) {
	if !core.ValidField(list, field) {
		return MutationResult{}, fmt.Errorf("%w: %s on %s", core.ErrUnknownField, field, list)
	}
	var edit core.Edit
	switch list {
	case core.ListContributions:
		edit = core.UpdateContribution(id, field, value)
	case core.ListOtherIncome:
		edit = core.UpdateOtherIncome(id, field, value)
	default:
		edit = core.UpdateExpense(id, field, value)
	}
	return s.mutateRecord(ctx, log.OpUpdateEntry, year, month, edit,
		log.NewFields().WithEntry(string(list), id))
}

func (s *LedgerService) removeEntry(ctx context.Context, year int, month core.Month, list core.EntryList, id string) (MutationResult, error) {
	var edit core.Edit
	switch list {
	case core.ListContributions:
		edit = core.RemoveContribution(id)
	case core.ListOtherIncome:
		edit = core.RemoveOtherIncome(id)
	default:
		edit = core.RemoveExpense(id)
	}
	return s.mutateRecord(ctx, log.OpRemoveEntry, year, month, edit,
		log.NewFields().WithEntry(string(list), id))
}

// SetPriorBalance replaces one fund's prior balance and recomputes.
func (s *LedgerService) SetPriorBalance(ctx context.Context, year int, month core.Month, fund core.Fund, balance core.Money) (MutationResult, error) {
	if _, err := core.ParseFund(string(fund)); err != nil {
		return MutationResult{}, err
	}
	return s.mutateRecord(ctx, log.OpSetPriorBalance, year, month, core.SetPriorBalance(fund, balance),
		log.NewFields().WithFund(string(fund)))
}

// CarryForward copies the previous month's new balances into this month's
// prior balances. It only runs when asked; nothing carries automatically.
func (s *LedgerService) CarryForward(ctx context.Context, year int, month core.Month) (MutationResult, error) {
	py, pm := month.Previous(year)
	return s.mutateRecordFrom(ctx, log.OpCarryForward, year, month, func(data core.AppData) (core.Edit, error) {
		prev, ok := data.Records.Lookup(py, pm)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoPreviousRecord, core.RecordKey(py, pm))
		}
		return core.SetPriorBalances(prev.Allocation.NewBalances()), nil
	}, log.NewFields())
}

// DeleteRecord removes a month entirely. It reports whether a record was
// there; deleting a missing month is a no-op.
func (s *LedgerService) DeleteRecord(ctx context.Context, year int, month core.Month) (bool, error) {
	if err := core.ValidateKey(year, month); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	if !cur.Data.Records.Has(year, month) {
		return false, nil
	}
	next := core.AppData{Records: cur.Data.Records.Clone(), Config: cur.Data.Config}
	next.Records.Delete(year, month)

	rev, err := s.commit(ctx, log.OpDeleteRecord, next)
	if err != nil {
		return false, err
	}
	s.logger.InfoContext(ctx, "Record deleted",
		log.NewFields().WithOperation(log.OpDeleteRecord).WithRecord(year, month.String(), core.RecordKey(year, month)).WithRevision(rev).ToSlice()...)
	return true, nil
}

// Config returns a copy of the organisation configuration.
func (s *LedgerService) Config() core.Configuration {
	return s.Snapshot().Data.Config.Clone()
}

func (s *LedgerService) mutateConfig(ctx context.Context, op string, edit func(*core.Configuration) error) (core.Configuration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	cfg := cur.Data.Config.Clone()
	if err := edit(&cfg); err != nil {
		return core.Configuration{}, err
	}
	cfg = cfg.Normalize()

	rev, err := s.commit(ctx, op, core.AppData{Records: cur.Data.Records, Config: cfg})
	if err != nil {
		return core.Configuration{}, err
	}
	s.logger.InfoContext(ctx, "Configuration updated",
		log.FieldOperation, op, log.FieldRevision, rev, "percent_total", int(cfg.PercentTotal()))
	return cfg.Clone(), nil
}

// UpdateConfig replaces the configuration. The split is stored as given;
// a total other than 100 is reported, never rejected. Existing records keep
// their balances until their next edit.
func (s *LedgerService) UpdateConfig(ctx context.Context, cfg core.Configuration) (core.Configuration, error) {
	return s.mutateConfig(ctx, log.OpUpdateConfig, func(c *core.Configuration) error {
		for _, m := range cfg.Members {
			if err := m.Validate(); err != nil {
				return err
			}
		}
		*c = cfg.Clone()
		if c.Members == nil {
			c.Members = []core.Member{}
		}
		return nil
	})
}

func (s *LedgerService) AddMember(ctx context.Context, m core.Member) (core.Configuration, error) {
	if err := m.Validate(); err != nil {
		return core.Configuration{}, err
	}
	return s.mutateConfig(ctx, log.OpAddMember, func(c *core.Configuration) error {
		c.Members = append(c.Members, m)
		return nil
	})
}

// RemoveMember drops the roster entry at index.
func (s *LedgerService) RemoveMember(ctx context.Context, index int) (core.Configuration, error) {
	return s.mutateConfig(ctx, log.OpRemoveMember, func(c *core.Configuration) error {
		if index < 0 || index >= len(c.Members) {
			return fmt.Errorf("%w: index %d", ErrMemberNotFound, index)
		}
		c.Members = append(c.Members[:index:index], c.Members[index+1:]...)
		return nil
	})
}

// SaveFilters persists the browser filters. Browsing never saves them.
func (s *LedgerService) SaveFilters(ctx context.Context, f query.Filter) (query.Filter, error) {
	f = f.Normalize()
	if err := s.repo.SaveFilters(ctx, f); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save filters",
			log.NewFields().WithOperation(log.OpSaveFilters).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		return query.Filter{}, fmt.Errorf("save filters: %w", err)
	}
	s.logger.InfoContext(ctx, "Filters saved", log.FieldOperation, log.OpSaveFilters)
	return f, nil
}

func (s *LedgerService) LoadFilters(ctx context.Context) (query.Filter, error) {
	f, err := s.repo.LoadFilters(ctx)
	if err != nil {
		return query.Filter{}, fmt.Errorf("load filters: %w", err)
	}
	return f, nil
}

// ExportData returns a copy of the whole ledger.
func (s *LedgerService) ExportData(ctx context.Context) core.AppData {
	snap := s.Snapshot()
	s.logger.InfoContext(ctx, "Ledger exported", log.FieldOperation, log.OpExport, log.FieldRevision, snap.Revision)
	return snap.Data.Clone()
}

// ImportData replaces the whole ledger with data.
func (s *LedgerService) ImportData(ctx context.Context, data core.AppData) error {
	if data.Records == nil {
		data.Records = core.RecordStore{}
	}
	if data.Config.Members == nil {
		data.Config.Members = []core.Member{}
	}
	next, err := data.Normalize()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rev, err := s.commit(ctx, log.OpImport, next)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Ledger imported",
		log.FieldOperation, log.OpImport, log.FieldRevision, rev, "records", len(next.Records))
	return nil
}
