// Package snapshot implements whole-state export and import: the three
// persisted collections serialized into a single versioned document, handed
// to the user as a manual backup independent of the store's internal backup
// rotation.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caja/internal/core"
	"caja/internal/ledger"
)

// Version identifies the document format.
const Version = "1.0"

// Document is the export file shape. Collections absent from an imported
// document are left untouched.
type Document struct {
	DailyReports  []core.ShiftReport  `json:"dailyReports"`
	Personnel     []core.Personnel    `json:"personnel"`
	WeeklyReports []core.WeeklyReport `json:"weeklyReports"`
	Timestamp     int64               `json:"timestamp"`
	Version       string              `json:"version"`
}

// Filename is the conventional export file name for a given day.
func Filename(now time.Time) string {
	return "backup-control-caja-" + now.Format("2006-01-02") + ".json"
}

// Export reads all three collections into a document.
func Export(ctx context.Context, repo *ledger.Repository, now time.Time) Document {
	return Document{
		DailyReports:  repo.ShiftReports(ctx),
		Personnel:     repo.Personnel(ctx),
		WeeklyReports: repo.WeeklyReports(ctx),
		Timestamp:     now.UnixMilli(),
		Version:       Version,
	}
}

// Marshal renders the document as indented JSON, the form handed to the
// user.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Import replaces each collection present in data wholesale, last import
// wins. A malformed document fails before any collection is touched;
// per-collection replacement is atomic, cross-collection it is not.
func Import(ctx context.Context, repo *ledger.Repository, data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("malformed snapshot document: %w", err)
	}

	if doc.DailyReports != nil {
		if err := repo.SaveShiftReports(ctx, doc.DailyReports); err != nil {
			return Document{}, fmt.Errorf("import shift reports: %w", err)
		}
	}
	if doc.Personnel != nil {
		if err := repo.SavePersonnel(ctx, doc.Personnel); err != nil {
			return Document{}, fmt.Errorf("import personnel: %w", err)
		}
	}
	if doc.WeeklyReports != nil {
		if err := repo.SaveWeeklyReports(ctx, doc.WeeklyReports); err != nil {
			return Document{}, fmt.Errorf("import weekly reports: %w", err)
		}
	}
	return doc, nil
}
