// Package ledger is the typed repository over the durable store for the
// three persisted collections: shift reports, personnel and weekly reports.
// Collections are replaced wholesale on save; upsert logic belongs to the
// caller.
package ledger

import (
	"context"
	"time"

	"caja/internal/core"
	"caja/internal/store"
)

// Persisted collection keys, one per collection. Backup copies derive their
// keys from these.
const (
	KeyShiftReports  = "control-caja-reportes-diarios"
	KeyPersonnel     = "control-caja-personal"
	KeyWeeklyReports = "control-caja-reportes-semanales"
)

type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Available reports whether the underlying store has a working medium.
func (r *Repository) Available() bool {
	return r.store.Available()
}

func (r *Repository) ShiftReports(ctx context.Context) []core.ShiftReport {
	var reports []core.ShiftReport
	r.store.Load(ctx, KeyShiftReports, &reports)
	return reports
}

func (r *Repository) SaveShiftReports(ctx context.Context, reports []core.ShiftReport) error {
	return r.store.Save(ctx, KeyShiftReports, reports)
}

func (r *Repository) Personnel(ctx context.Context) []core.Personnel {
	var personnel []core.Personnel
	r.store.Load(ctx, KeyPersonnel, &personnel)
	return personnel
}

func (r *Repository) SavePersonnel(ctx context.Context, personnel []core.Personnel) error {
	return r.store.Save(ctx, KeyPersonnel, personnel)
}

func (r *Repository) WeeklyReports(ctx context.Context) []core.WeeklyReport {
	var reports []core.WeeklyReport
	r.store.Load(ctx, KeyWeeklyReports, &reports)
	return reports
}

func (r *Repository) SaveWeeklyReports(ctx context.Context, reports []core.WeeklyReport) error {
	return r.store.Save(ctx, KeyWeeklyReports, reports)
}

// LastBackup returns the time of the most recent backed-up save.
func (r *Repository) LastBackup(ctx context.Context) (time.Time, bool) {
	return r.store.LastBackup(ctx)
}

// Clear wipes every persisted collection and all backups.
func (r *Repository) Clear(ctx context.Context) error {
	return r.store.Clear(ctx)
}
