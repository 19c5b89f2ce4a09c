package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ShiftMorning   ShiftCode = "8-15"
	ShiftAfternoon ShiftCode = "15-22"
)

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
)

// OpeningFloat is the fixed cash amount assumed present in the register at
// shift start, in minor currency units. It is not user-editable.
const OpeningFloat int64 = 30000

// DateLayout is the day format used in report dates and report keys.
const DateLayout = "02/01/2006"

type (
	ShiftCode     string
	PaymentMethod string

	// Sale is one transaction recorded during a shift. Sales are immutable
	// once created and are persisted only embedded in a ShiftReport.
	Sale struct {
		ID        int64         `json:"id"`
		Amount    int64         `json:"amount"`
		Method    PaymentMethod `json:"method"`
		Time      string        `json:"time"`
		Payer     string        `json:"payer,omitempty"`
		Timestamp int64         `json:"timestamp"`
	}

	// ShiftReport is the saved record of one employee's shift. Key is derived
	// from date and shift code; there is at most one report per key.
	ShiftReport struct {
		Key           string    `json:"id"`
		Date          string    `json:"date"`
		Shift         ShiftCode `json:"shift"`
		StartAt       string    `json:"startAt"`
		EndAt         string    `json:"endAt"`
		Employee      string    `json:"employee"`
		OpeningFloat  int64     `json:"openingFloat"`
		Sales         []Sale    `json:"sales"`
		CashTotal     int64     `json:"cashTotal"`
		TransferTotal int64     `json:"transferTotal"`
		Total         int64     `json:"total"`
		Timestamp     int64     `json:"timestamp"`
	}

	// Personnel is a roster entry. It is purely informational: reports store
	// the employee name as a free-text snapshot, not a reference.
	Personnel struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	// DailyClose combines a date's two shifts. It exists only when the
	// afternoon report exists; the morning side is best-effort.
	DailyClose struct {
		Date      string       `json:"date"`
		Morning   *ShiftReport `json:"morning"`
		Afternoon ShiftReport  `json:"afternoon"`
		DayTotal  int64        `json:"dayTotal"`
	}

	// WeeklyReport is the persisted snapshot of one generated week. It is
	// appended once and never updated, even if later reports would have
	// fallen inside its window.
	WeeklyReport struct {
		Week           string        `json:"week"`
		WeekTotal      int64         `json:"weekTotal"`
		MorningTotal   int64         `json:"morningTotal"`
		AfternoonTotal int64         `json:"afternoonTotal"`
		DaysWorked     int           `json:"daysWorked"`
		Reports        []ShiftReport `json:"reports"`
		Timestamp      int64         `json:"timestamp"`
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrMissingPayer    = errors.New("missing transfer payer name")
	ErrMissingShift    = errors.New("no shift selected")
	ErrInvalidShift    = errors.New("invalid shift code")
	ErrMissingEmployee = errors.New("missing employee name")
	ErrEmptyName       = errors.New("empty name")
)

// Valid reports whether c is one of the two fixed shift codes.
func (c ShiftCode) Valid() bool {
	return c == ShiftMorning || c == ShiftAfternoon
}

// Window returns the nominal start and end clock times of the shift.
func (c ShiftCode) Window() (start, end string) {
	if c == ShiftMorning {
		return "08:00", "15:00"
	}
	return "15:00", "22:00"
}

func (s Sale) Validate() error {
	if s.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch s.Method {
	case MethodCash:
	case MethodTransfer:
		if strings.TrimSpace(s.Payer) == "" {
			return ErrMissingPayer
		}
	default:
		return ErrInvalidMethod
	}
	return nil
}

func (p Personnel) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ReportKey is the canonical identity of a shift report, used to detect and
// replace an existing report for the same day and shift.
func ReportKey(date string, shift ShiftCode) string {
	return date + "-" + string(shift)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
