package core

import (
	"testing"
	"time"
)

func report(date string, shift ShiftCode, total int64) ShiftReport {
	return ShiftReport{
		Key:          ReportKey(date, shift),
		Date:         date,
		Shift:        shift,
		Employee:     "Ana",
		OpeningFloat: OpeningFloat,
		Total:        total,
	}
}

func TestSaleTotals(t *testing.T) {
	tests := []struct {
		name         string
		sales        []Sale
		wantCash     int64
		wantTransfer int64
	}{
		{
			name: "empty list",
		},
		{
			name: "mixed methods",
			sales: []Sale{
				{ID: 1, Amount: 5000, Method: MethodCash},
				{ID: 2, Amount: 3000, Method: MethodTransfer, Payer: "Ana"},
				{ID: 3, Amount: 1500, Method: MethodCash},
			},
			wantCash:     6500,
			wantTransfer: 3000,
		},
		{
			name: "transfers only",
			sales: []Sale{
				{ID: 1, Amount: 2000, Method: MethodTransfer, Payer: "Luis"},
			},
			wantTransfer: 2000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cash, transfer := SaleTotals(tt.sales)
			if cash != tt.wantCash || transfer != tt.wantTransfer {
				t.Errorf("SaleTotals() = (%d, %d), want (%d, %d)",
					cash, transfer, tt.wantCash, tt.wantTransfer)
			}
		})
	}
}

// The register identity: cash + transfer + opening float always equals the
// grand total, including for an empty shift.
func TestGrandTotal_Identity(t *testing.T) {
	saleSets := [][]Sale{
		nil,
		{{ID: 1, Amount: 5000, Method: MethodCash}},
		{
			{ID: 1, Amount: 5000, Method: MethodCash},
			{ID: 2, Amount: 3000, Method: MethodTransfer, Payer: "Ana"},
			{ID: 3, Amount: 750, Method: MethodCash},
			{ID: 4, Amount: 125, Method: MethodTransfer, Payer: "Luis"},
		},
	}

	for _, sales := range saleSets {
		cash, transfer := SaleTotals(sales)
		if got := GrandTotal(OpeningFloat, sales); got != cash+transfer+OpeningFloat {
			t.Errorf("GrandTotal() = %d, want %d", got, cash+transfer+OpeningFloat)
		}
	}

	if got := GrandTotal(OpeningFloat, nil); got != OpeningFloat {
		t.Errorf("empty shift grand total = %d, want opening float %d", got, OpeningFloat)
	}
}

func TestBuildShiftReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 21, 45, 0, 0, time.UTC)
	sales := []Sale{
		{ID: 1, Amount: 5000, Method: MethodCash},
		{ID: 2, Amount: 3000, Method: MethodTransfer, Payer: "Ana"},
	}

	r := BuildShiftReport(now, ShiftAfternoon, "  Ana  ", sales)

	if r.Key != "10/03/2025-15-22" {
		t.Errorf("Key = %q", r.Key)
	}
	if r.Date != "10/03/2025" {
		t.Errorf("Date = %q", r.Date)
	}
	if r.StartAt != "10/03/2025 15:00" || r.EndAt != "10/03/2025 22:00" {
		t.Errorf("window = %q .. %q", r.StartAt, r.EndAt)
	}
	if r.Employee != "Ana" {
		t.Errorf("Employee = %q, want trimmed name", r.Employee)
	}
	if r.CashTotal != 5000 || r.TransferTotal != 3000 {
		t.Errorf("subtotals = (%d, %d), want (5000, 3000)", r.CashTotal, r.TransferTotal)
	}
	if r.Total != 38000 {
		t.Errorf("Total = %d, want 38000", r.Total)
	}
	if r.Timestamp != now.UnixMilli() {
		t.Errorf("Timestamp = %d", r.Timestamp)
	}

	// The report owns its own copy of the sale list.
	sales[0].Amount = 999999
	if r.Sales[0].Amount != 5000 {
		t.Error("report shares backing array with caller's sale list")
	}
}

func TestDailyCloseFor(t *testing.T) {
	morning := report("10/03/2025", ShiftMorning, 35000)
	afternoon := report("10/03/2025", ShiftAfternoon, 38000)

	t.Run("afternoon only", func(t *testing.T) {
		dc, ok := DailyCloseFor("10/03/2025", []ShiftReport{afternoon})
		if !ok {
			t.Fatal("expected a close")
		}
		if dc.Morning != nil {
			t.Error("Morning should be nil")
		}
		if dc.DayTotal != 38000 {
			t.Errorf("DayTotal = %d, want afternoon total alone", dc.DayTotal)
		}
	})

	t.Run("both shifts", func(t *testing.T) {
		dc, ok := DailyCloseFor("10/03/2025", []ShiftReport{morning, afternoon})
		if !ok {
			t.Fatal("expected a close")
		}
		if dc.Morning == nil || dc.Morning.Total != 35000 {
			t.Errorf("Morning = %+v", dc.Morning)
		}
		if dc.DayTotal != 73000 {
			t.Errorf("DayTotal = %d, want 73000", dc.DayTotal)
		}
	})

	t.Run("morning only produces no close", func(t *testing.T) {
		if _, ok := DailyCloseFor("10/03/2025", []ShiftReport{morning}); ok {
			t.Error("close without an afternoon report")
		}
	})

	t.Run("other dates ignored", func(t *testing.T) {
		other := report("11/03/2025", ShiftAfternoon, 40000)
		dc, ok := DailyCloseFor("10/03/2025", []ShiftReport{afternoon, other})
		if !ok || dc.DayTotal != 38000 {
			t.Errorf("close = %+v, ok = %v", dc, ok)
		}
	})
}

func TestDailyCloses_Order(t *testing.T) {
	reports := []ShiftReport{
		report("09/03/2025", ShiftAfternoon, 31000),
		report("11/03/2025", ShiftAfternoon, 32000),
		report("10/03/2025", ShiftAfternoon, 30000),
		report("12/03/2025", ShiftMorning, 35000), // no afternoon, no close
	}

	closes := DailyCloses(reports)
	if len(closes) != 3 {
		t.Fatalf("got %d closes, want 3", len(closes))
	}
	want := []string{"11/03/2025", "10/03/2025", "09/03/2025"}
	for i, w := range want {
		if closes[i].Date != w {
			t.Errorf("closes[%d].Date = %q, want %q", i, closes[i].Date, w)
		}
	}
}

func TestWeekWindow(t *testing.T) {
	tests := []struct {
		name         string
		now          time.Time
		wantMonday   string
		wantSaturday string
	}{
		{
			name:         "wednesday",
			now:          time.Date(2025, 3, 12, 14, 30, 0, 0, time.UTC),
			wantMonday:   "10/03/2025",
			wantSaturday: "15/03/2025",
		},
		{
			name:         "monday",
			now:          time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			wantMonday:   "10/03/2025",
			wantSaturday: "15/03/2025",
		},
		{
			name:         "sunday belongs to previous business week",
			now:          time.Date(2025, 3, 16, 12, 0, 0, 0, time.UTC),
			wantMonday:   "10/03/2025",
			wantSaturday: "15/03/2025",
		},
		{
			name:         "saturday",
			now:          time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC),
			wantMonday:   "10/03/2025",
			wantSaturday: "15/03/2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monday, saturday := WeekWindow(tt.now)
			if FormatDate(monday) != tt.wantMonday || FormatDate(saturday) != tt.wantSaturday {
				t.Errorf("WeekWindow() = (%s, %s), want (%s, %s)",
					FormatDate(monday), FormatDate(saturday), tt.wantMonday, tt.wantSaturday)
			}
		})
	}
}

func TestBuildWeeklyReport(t *testing.T) {
	// Week of Mon 10/03/2025 .. Sat 15/03/2025, Wednesday absent.
	now := time.Date(2025, 3, 15, 22, 30, 0, 0, time.UTC)
	reports := []ShiftReport{
		report("10/03/2025", ShiftMorning, 30500),
		report("11/03/2025", ShiftAfternoon, 31000),
		report("13/03/2025", ShiftMorning, 29800),
		report("14/03/2025", ShiftAfternoon, 30200),
		report("15/03/2025", ShiftAfternoon, 31500),
		report("08/03/2025", ShiftAfternoon, 99999), // previous week, excluded
	}

	wr := BuildWeeklyReport(now, reports)

	if wr.Week != "10/03/2025 - 15/03/2025" {
		t.Errorf("Week = %q", wr.Week)
	}
	if wr.DaysWorked != 5 {
		t.Errorf("DaysWorked = %d, want 5", wr.DaysWorked)
	}
	if want := int64(30500 + 31000 + 29800 + 30200 + 31500); wr.WeekTotal != want {
		t.Errorf("WeekTotal = %d, want %d", wr.WeekTotal, want)
	}
	if wr.MorningTotal != 30500+29800 {
		t.Errorf("MorningTotal = %d", wr.MorningTotal)
	}
	if wr.AfternoonTotal != 31000+30200+31500 {
		t.Errorf("AfternoonTotal = %d", wr.AfternoonTotal)
	}
	if len(wr.Reports) != 5 {
		t.Errorf("len(Reports) = %d, want 5", len(wr.Reports))
	}
}

func TestBuildWeeklyReport_TwoShiftsSameDay(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	reports := []ShiftReport{
		report("10/03/2025", ShiftMorning, 35000),
		report("10/03/2025", ShiftAfternoon, 38000),
	}

	wr := BuildWeeklyReport(now, reports)
	if wr.DaysWorked != 1 {
		t.Errorf("DaysWorked = %d, want 1 distinct date", wr.DaysWorked)
	}
	if wr.WeekTotal != 73000 {
		t.Errorf("WeekTotal = %d, want 73000", wr.WeekTotal)
	}
}
