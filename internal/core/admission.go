package core

import "strings"

const (
	LimitBalance LimitCause = "balance"
	LimitBudget  LimitCause = "budget"
	LimitJar     LimitCause = "jar"
)

// LimitCause identifies which limit an expense would break. The causes are
// modeled separately even though the user-facing message collapses them
// into a single rejection.
type LimitCause string

// LimitError rejects an expense that would break one or more limits. It
// unwraps to ErrLimitExceeded so callers can match the collapsed reason
// with errors.Is while tests can still assert the individual causes.
type LimitError struct {
	Causes []LimitCause
}

func (e *LimitError) Error() string {
	parts := make([]string, len(e.Causes))
	for i, c := range e.Causes {
		parts[i] = string(c)
	}
	return "expense limit exceeded: " + strings.Join(parts, ", ")
}

func (e *LimitError) Unwrap() error { return ErrLimitExceeded }

// Has reports whether the rejection includes the given cause.
func (e *LimitError) Has(cause LimitCause) bool {
	for _, c := range e.Causes {
		if c == cause {
			return true
		}
	}
	return false
}

// ExpenseInput carries the raw expense form fields. Category doubles as the
// jar name; an unknown category skips the jar-level check.
type ExpenseInput struct {
	Amount   string
	Category string
	Date     Date
	Notes    string
}

// AdmitExpense decides whether a candidate expense may enter the ledger.
// It returns the parsed amount on admission, ErrInvalidAmount when the
// amount field parses to zero, or a *LimitError when any of three
// independent limits would be broken:
//
//   - the amount exceeds the remaining balance
//   - total expenses would exceed the overall challenge budget
//   - the target jar's cumulative spend would exceed its limit
//
// Admission is purely a decision; the caller appends the transaction.
// The ledger is left untouched on rejection.
func AdmitExpense(cfg ChallengeConfig, txs []Transaction, in ExpenseInput) (int64, error) {
	amount := ParseAmount(in.Amount)
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	totals := Aggregate(txs)

	var causes []LimitCause
	if amount > totals.Balance {
		causes = append(causes, LimitBalance)
	}
	if totals.TotalExpense+amount > cfg.TotalBudget {
		causes = append(causes, LimitBudget)
	}
	if limit, ok := cfg.JarLimit(in.Category); ok {
		if SpentInJar(txs, in.Category)+amount > limit {
			causes = append(causes, LimitJar)
		}
	}
	if len(causes) > 0 {
		return 0, &LimitError{Causes: causes}
	}
	return amount, nil
}
