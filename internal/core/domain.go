package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	Income  TransactionKind = "income"
	Expense TransactionKind = "expense"
)

// SeedLabel is the label of the synthetic income transaction created at
// challenge setup. The seed transaction is protected from deletion.
const SeedLabel = "Ngân sách ban đầu"

// SupportedDurations lists the challenge lengths in days.
var SupportedDurations = []int{7, 14, 30}

type (
	TransactionKind string

	// Date is a calendar date. The time component is always midnight UTC;
	// day boundaries are calendar-day granular.
	Date struct {
		time.Time
	}

	// Transaction is an immutable ledger record. Label holds the income
	// source or the expense category, depending on Kind. Seed marks the
	// synthetic budget transaction created at setup.
	Transaction struct {
		ID     string
		Kind   TransactionKind
		Amount int64
		Label  string
		Date   Date
		Notes  string
		Seed   bool
	}

	// Jar is a named spending envelope. Spent is never stored on the jar;
	// it is derived from the transaction history on every read.
	Jar struct {
		Name  string
		Limit int64
	}

	// ChallengeConfig is frozen once setup completes: the jar limits and
	// total budget are immutable for the life of the challenge.
	ChallengeConfig struct {
		DurationDays int
		StartDate    Date
		TotalBudget  int64
		Jars         []Jar
	}
)

var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidBudget           = errors.New("invalid total budget")
	ErrMissingAllocation       = errors.New("missing jar allocation")
	ErrDuplicateJar            = errors.New("duplicate jar name")
	ErrAllocationExceedsBudget = errors.New("allocation exceeds budget")
	ErrAllocationMismatch      = errors.New("allocation must equal budget")
	ErrLimitExceeded           = errors.New("expense limit exceeded")
	ErrProtectedRecord         = errors.New("protected record")
	ErrNoActiveChallenge       = errors.New("no active challenge")
	ErrAlreadyConfigured       = errors.New("challenge already configured")
	ErrInvalidDuration         = errors.New("unsupported challenge duration")
	ErrNotFound                = errors.New("transaction not found")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a point in time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string, falling back to the given default
// when the input is empty or malformed. Form dates are advisory only, so a
// bad value never rejects the whole record.
func ParseDate(s string, fallback Date) Date {
	if s == "" {
		return fallback
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return DateOf(t)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// ValidDuration reports whether the given challenge length is supported.
func ValidDuration(days int) bool {
	for _, d := range SupportedDurations {
		if d == days {
			return true
		}
	}
	return false
}

// JarLimit looks up the limit for a jar by name. The second result is false
// when no jar with that name exists, in which case no jar-level check
// applies to expenses in that category.
func (c ChallengeConfig) JarLimit(name string) (int64, bool) {
	for _, j := range c.Jars {
		if j.Name == name {
			return j.Limit, true
		}
	}
	return 0, false
}

// NewSeedTransaction builds the synthetic income transaction that seeds the
// ledger with the total budget at setup time.
func NewSeedTransaction(id string, totalBudget int64, durationDays int, today Date) Transaction {
	return Transaction{
		ID:     id,
		Kind:   Income,
		Amount: totalBudget,
		Label:  SeedLabel,
		Date:   today,
		Notes:  fmt.Sprintf("Ngân sách cho thử thách %d ngày", durationDays),
		Seed:   true,
	}
}
