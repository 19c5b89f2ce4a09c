// Package core holds the ledger's entity model and the pure aggregation
// functions that derive shift totals, daily closes and weekly reports from
// raw shift records. Nothing in this package performs I/O.
package core

import (
	"sort"
	"strings"
	"time"
)

// SaleTotals sums the sale amounts per payment method.
func SaleTotals(sales []Sale) (cash, transfer int64) {
	for _, s := range sales {
		switch s.Method {
		case MethodCash:
			cash += s.Amount
		case MethodTransfer:
			transfer += s.Amount
		}
	}
	return cash, transfer
}

// GrandTotal is the register total at shift end: the opening float plus
// every sale amount regardless of method.
func GrandTotal(openingFloat int64, sales []Sale) int64 {
	total := openingFloat
	for _, s := range sales {
		total += s.Amount
	}
	return total
}

// BuildShiftReport assembles the persistent record for a shift from the
// in-progress sale list. Derived totals are computed here so the stored
// report is self-contained.
func BuildShiftReport(now time.Time, shift ShiftCode, employee string, sales []Sale) ShiftReport {
	date := FormatDate(now)
	start, end := shift.Window()
	cash, transfer := SaleTotals(sales)
	return ShiftReport{
		Key:           ReportKey(date, shift),
		Date:          date,
		Shift:         shift,
		StartAt:       date + " " + start,
		EndAt:         date + " " + end,
		Employee:      strings.TrimSpace(employee),
		OpeningFloat:  OpeningFloat,
		Sales:         append([]Sale(nil), sales...),
		CashTotal:     cash,
		TransferTotal: transfer,
		Total:         GrandTotal(OpeningFloat, sales),
		Timestamp:     now.UnixMilli(),
	}
}

// DailyCloseFor derives the close for one date from the full report set.
// The afternoon report is required; without it there is no close.
func DailyCloseFor(date string, reports []ShiftReport) (DailyClose, bool) {
	var morning, afternoon *ShiftReport
	for i := range reports {
		r := &reports[i]
		if r.Date != date {
			continue
		}
		switch r.Shift {
		case ShiftMorning:
			morning = r
		case ShiftAfternoon:
			afternoon = r
		}
	}
	if afternoon == nil {
		return DailyClose{}, false
	}
	dc := DailyClose{Date: date, Afternoon: *afternoon, DayTotal: afternoon.Total}
	if morning != nil {
		m := *morning
		dc.Morning = &m
		dc.DayTotal += m.Total
	}
	return dc, true
}

// DailyCloses derives every available close, most recent date first.
func DailyCloses(reports []ShiftReport) []DailyClose {
	seen := make(map[string]bool)
	var dates []string
	for _, r := range reports {
		if !seen[r.Date] {
			seen[r.Date] = true
			dates = append(dates, r.Date)
		}
	}

	var closes []DailyClose
	for _, d := range dates {
		if dc, ok := DailyCloseFor(d, reports); ok {
			closes = append(closes, dc)
		}
	}
	sort.SliceStable(closes, func(i, j int) bool {
		di, erri := ParseDate(closes[i].Date)
		dj, errj := ParseDate(closes[j].Date)
		if erri != nil || errj != nil {
			return false
		}
		return di.After(dj)
	})
	return closes
}

// WeekWindow computes the Monday..Saturday span of the week containing now.
// Sunday counts as the tail of the previous business week.
func WeekWindow(now time.Time) (monday, saturday time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(today.Weekday()) + 6) % 7
	monday = today.AddDate(0, 0, -offset)
	saturday = monday.AddDate(0, 0, 5)
	return monday, saturday
}

// BuildWeeklyReport snapshots the reports that fall in the current week's
// Monday..Saturday window. The window is always relative to now; past weeks
// cannot be regenerated once the week has advanced.
func BuildWeeklyReport(now time.Time, reports []ShiftReport) WeeklyReport {
	monday, saturday := WeekWindow(now)

	var inWeek []ShiftReport
	days := make(map[string]bool)
	var total, morning, afternoon int64
	for _, r := range reports {
		d, err := ParseDate(r.Date)
		if err != nil {
			continue
		}
		if d.Before(monday) || d.After(saturday) {
			continue
		}
		inWeek = append(inWeek, r)
		days[r.Date] = true
		total += r.Total
		switch r.Shift {
		case ShiftMorning:
			morning += r.Total
		case ShiftAfternoon:
			afternoon += r.Total
		}
	}

	return WeeklyReport{
		Week:           FormatDate(monday) + " - " + FormatDate(saturday),
		WeekTotal:      total,
		MorningTotal:   morning,
		AfternoonTotal: afternoon,
		DaysWorked:     len(days),
		Reports:        inWeek,
		Timestamp:      now.UnixMilli(),
	}
}
