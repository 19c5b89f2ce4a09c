// Package services orchestrates register sessions over the ledger
// repository: the transient in-progress sale list and shift selection, and
// the persisted shift-report, personnel and weekly-report collections.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"caja/internal/core"
	"caja/internal/ledger"
	"caja/internal/store"
)

// Register is one register session. The in-memory collections are the
// source of truth; persistence is a one-way mirror, and a failed save is
// logged but never fatal to the session.
//
// A mutex guards all session state: the flush worker calls Flush from its
// own goroutine while the session mutates the collections.
type Register struct {
	repo   *ledger.Repository
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex

	// Transient session state, not persisted until an explicit save.
	sales      []core.Sale
	shift      core.ShiftCode
	employee   string
	lastSaleID int64

	reports       []core.ShiftReport
	personnel     []core.Personnel
	weeklyReports []core.WeeklyReport
}

// NewRegister loads the persisted collections and opens a session. A store
// without a working medium yields empty collections and a degraded,
// in-memory-only session.
func NewRegister(ctx context.Context, repo *ledger.Repository, logger *slog.Logger) *Register {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Register{
		repo:   repo,
		logger: logger.With("component", "register"),
		now:    time.Now,
	}
	r.reports = repo.ShiftReports(ctx)
	r.personnel = repo.Personnel(ctx)
	r.weeklyReports = repo.WeeklyReports(ctx)
	r.logger.InfoContext(ctx, "session opened",
		"shift_reports", len(r.reports),
		"personnel", len(r.personnel),
		"weekly_reports", len(r.weeklyReports),
		"persistent", repo.Available())
	return r
}

// WithClock overrides the session clock. Used by tests and by embedders
// that need deterministic report keys.
func (r *Register) WithClock(now func() time.Time) *Register {
	r.now = now
	return r
}

// AddSale validates and records a sale in the in-progress list. Transfer
// sales keep seconds in their display time, cash sales do not.
func (r *Register) AddSale(amount int64, method core.PaymentMethod, payer string) (core.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	sale := core.Sale{
		ID:        r.nextSaleID(now),
		Amount:    amount,
		Method:    method,
		Payer:     strings.TrimSpace(payer),
		Timestamp: now.UnixMilli(),
	}
	if method == core.MethodTransfer {
		sale.Time = now.Format("15:04:05")
	} else {
		sale.Time = now.Format("15:04")
	}
	if err := sale.Validate(); err != nil {
		return core.Sale{}, err
	}
	r.sales = append(r.sales, sale)
	return sale, nil
}

// RemoveSale drops an unsaved sale by id.
func (r *Register) RemoveSale(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sales {
		if s.ID == id {
			r.sales = append(r.sales[:i], r.sales[i+1:]...)
			return true
		}
	}
	return false
}

// Sales returns a copy of the in-progress sale list.
func (r *Register) Sales() []core.Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Sale(nil), r.sales...)
}

// Totals returns the running subtotals and grand total for the in-progress
// shift.
func (r *Register) Totals() (cash, transfer, grand int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cash, transfer = core.SaleTotals(r.sales)
	return cash, transfer, core.GrandTotal(core.OpeningFloat, r.sales)
}

// SelectShift sets the shift for the in-progress report.
func (r *Register) SelectShift(shift core.ShiftCode) error {
	if !shift.Valid() {
		return core.ErrInvalidShift
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shift = shift
	return nil
}

func (r *Register) SelectedShift() core.ShiftCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shift
}

func (r *Register) SetEmployee(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employee = strings.TrimSpace(name)
}

func (r *Register) Employee() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.employee
}

// SaveShiftReport turns the in-progress state into a persisted ShiftReport,
// replacing any existing report with the same date+shift key. When the
// saved shift is the afternoon one, the day's close is derived as well.
// On validation failure nothing is mutated.
func (r *Register) SaveShiftReport(ctx context.Context) (core.ShiftReport, *core.DailyClose, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.shift.Valid() {
		return core.ShiftReport{}, nil, core.ErrMissingShift
	}
	if r.employee == "" {
		return core.ShiftReport{}, nil, core.ErrMissingEmployee
	}

	report := core.BuildShiftReport(r.now(), r.shift, r.employee, r.sales)

	replaced := false
	for i := range r.reports {
		if r.reports[i].Key == report.Key {
			r.reports[i] = report
			replaced = true
			break
		}
	}
	if !replaced {
		r.reports = append(r.reports, report)
	}
	r.persistReports(ctx)
	r.logger.InfoContext(ctx, "shift report saved",
		"key", report.Key, "replaced", replaced,
		"sales", len(report.Sales), "total", report.Total)

	var dayClose *core.DailyClose
	if report.Shift == core.ShiftAfternoon {
		if dc, ok := core.DailyCloseFor(report.Date, r.reports); ok {
			dayClose = &dc
		}
	}

	// Start the next shift clean but keep shift and employee selection.
	r.sales = nil

	return report, dayClose, nil
}

// Reports returns a copy of the persisted shift-report collection.
func (r *Register) Reports() []core.ShiftReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.ShiftReport(nil), r.reports...)
}

// DailyCloses derives the available closes from the current collection,
// most recent date first. Closes are recomputed on every call, so a morning
// report saved after its afternoon one is always reflected.
func (r *Register) DailyCloses() []core.DailyClose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return core.DailyCloses(r.reports)
}

func (r *Register) AddPersonnel(ctx context.Context, name string) (core.Personnel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := core.Personnel{
		ID:     r.now().UnixMilli(),
		Name:   strings.TrimSpace(name),
		Active: true,
	}
	if err := p.Validate(); err != nil {
		return core.Personnel{}, err
	}
	r.personnel = append(r.personnel, p)
	r.persistPersonnel(ctx)
	return p, nil
}

func (r *Register) TogglePersonnel(ctx context.Context, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.personnel {
		if r.personnel[i].ID == id {
			r.personnel[i].Active = !r.personnel[i].Active
			r.persistPersonnel(ctx)
			return true
		}
	}
	return false
}

func (r *Register) RemovePersonnel(ctx context.Context, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.personnel {
		if r.personnel[i].ID == id {
			r.personnel = append(r.personnel[:i], r.personnel[i+1:]...)
			r.persistPersonnel(ctx)
			return true
		}
	}
	return false
}

func (r *Register) Personnel() []core.Personnel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Personnel(nil), r.personnel...)
}

// GenerateWeeklyReport snapshots the current week and appends it to the
// persisted weekly-report collection. The snapshot is never updated
// retroactively.
func (r *Register) GenerateWeeklyReport(ctx context.Context) core.WeeklyReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	wr := core.BuildWeeklyReport(r.now(), r.reports)
	r.weeklyReports = append(r.weeklyReports, wr)
	r.persistWeeklyReports(ctx)
	r.logger.InfoContext(ctx, "weekly report generated",
		"week", wr.Week, "days_worked", wr.DaysWorked, "total", wr.WeekTotal)
	return wr
}

func (r *Register) WeeklyReports() []core.WeeklyReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.WeeklyReport(nil), r.weeklyReports...)
}

// ReplaceCollections swaps in freshly imported collections wholesale. Used
// by snapshot import after the repository has been updated.
func (r *Register) ReplaceCollections(reports []core.ShiftReport, personnel []core.Personnel, weekly []core.WeeklyReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = reports
	r.personnel = personnel
	r.weeklyReports = weekly
}

// ClearAll destroys every persisted and in-memory collection, including the
// unsaved session state. The caller is responsible for confirming first.
func (r *Register) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.repo.Clear(ctx); err != nil && !errors.Is(err, store.ErrUnavailable) {
		return err
	}
	r.reports = nil
	r.personnel = nil
	r.weeklyReports = nil
	r.sales = nil
	r.shift = ""
	r.employee = ""
	r.logger.InfoContext(ctx, "all data cleared")
	return nil
}

// Flush re-saves all three collections. Saves replace whole collections, so
// redundant flushes are always safe. The collections are copied under the
// lock so the encoder never sees a record mid-mutation.
func (r *Register) Flush(ctx context.Context) error {
	r.mu.Lock()
	reports := append([]core.ShiftReport(nil), r.reports...)
	personnel := append([]core.Personnel(nil), r.personnel...)
	weekly := append([]core.WeeklyReport(nil), r.weeklyReports...)
	r.mu.Unlock()

	return errors.Join(
		r.repo.SaveShiftReports(ctx, reports),
		r.repo.SavePersonnel(ctx, personnel),
		r.repo.SaveWeeklyReports(ctx, weekly),
	)
}

func (r *Register) nextSaleID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= r.lastSaleID {
		id = r.lastSaleID + 1
	}
	r.lastSaleID = id
	return id
}

func (r *Register) persistReports(ctx context.Context) {
	if err := r.repo.SaveShiftReports(ctx, r.reports); err != nil {
		r.logger.WarnContext(ctx, "failed to persist shift reports, keeping in memory", "error", err)
	}
}

func (r *Register) persistPersonnel(ctx context.Context) {
	if err := r.repo.SavePersonnel(ctx, r.personnel); err != nil {
		r.logger.WarnContext(ctx, "failed to persist personnel, keeping in memory", "error", err)
	}
}

func (r *Register) persistWeeklyReports(ctx context.Context) {
	if err := r.repo.SaveWeeklyReports(ctx, r.weeklyReports); err != nil {
		r.logger.WarnContext(ctx, "failed to persist weekly reports, keeping in memory", "error", err)
	}
}
