package core

import (
	"errors"
	"testing"
)

func TestAdmitExpenseZeroAmount(t *testing.T) {
	cfg := ChallengeConfig{TotalBudget: 100000, DurationDays: 7}
	for _, raw := range []string{"", "abc", "0"} {
		_, err := AdmitExpense(cfg, nil, ExpenseInput{Amount: raw, Category: "Khác"})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", raw, err)
		}
	}
}

func TestAdmitExpenseJarLimitAlone(t *testing.T) {
	// Balance and total-budget headroom both exist; only the jar envelope
	// is full. The expense must still be rejected.
	cfg := ChallengeConfig{
		TotalBudget:  500000,
		DurationDays: 7,
		Jars:         []Jar{{Name: "Ăn uống", Limit: 50000}},
	}
	txs := []Transaction{
		txn(Income, 500000, SeedLabel),
		txn(Expense, 350000, "Khác"),
		txn(Expense, 50000, "Ăn uống"),
	}
	// balance = 100_000, totalExpense = 400_000, jar spent = 50_000
	_, err := AdmitExpense(cfg, txs, ExpenseInput{Amount: "10000", Category: "Ăn uống"})
	var lim *LimitError
	if !errors.As(err, &lim) {
		t.Fatalf("expected LimitError, got %v", err)
	}
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatal("LimitError must unwrap to ErrLimitExceeded")
	}
	if !lim.Has(LimitJar) {
		t.Fatalf("expected jar cause, got %v", lim.Causes)
	}
	if lim.Has(LimitBalance) || lim.Has(LimitBudget) {
		t.Fatalf("balance and budget checks should pass here, got %v", lim.Causes)
	}
}

func TestAdmitExpenseBalanceAndBudget(t *testing.T) {
	cfg := ChallengeConfig{TotalBudget: 100000, DurationDays: 7}
	txs := []Transaction{
		txn(Income, 100000, SeedLabel),
		txn(Expense, 90000, "Khác"),
	}
	_, err := AdmitExpense(cfg, txs, ExpenseInput{Amount: "20000", Category: "Khác"})
	var lim *LimitError
	if !errors.As(err, &lim) {
		t.Fatalf("expected LimitError, got %v", err)
	}
	if !lim.Has(LimitBalance) || !lim.Has(LimitBudget) {
		t.Fatalf("expected balance+budget causes, got %v", lim.Causes)
	}
}

func TestAdmitExpenseUnknownCategorySkipsJarCheck(t *testing.T) {
	cfg := ChallengeConfig{
		TotalBudget:  100000,
		DurationDays: 7,
		Jars:         []Jar{{Name: "Ăn uống", Limit: 10000}},
	}
	txs := []Transaction{txn(Income, 100000, SeedLabel)}
	// No jar named "Linh tinh": only the two budget-wide checks run.
	amount, err := AdmitExpense(cfg, txs, ExpenseInput{Amount: "50000", Category: "Linh tinh"})
	if err != nil {
		t.Fatalf("expected admission, got %v", err)
	}
	if amount != 50000 {
		t.Fatalf("expected parsed amount 50000, got %d", amount)
	}
}

func TestAdmitExpenseExactLimits(t *testing.T) {
	// Spending exactly up to every limit is admissible; the checks are
	// strict "greater than" comparisons.
	cfg := ChallengeConfig{
		TotalBudget:  100000,
		DurationDays: 7,
		Jars:         []Jar{{Name: "Ăn uống", Limit: 100000}},
	}
	txs := []Transaction{txn(Income, 100000, SeedLabel)}
	if _, err := AdmitExpense(cfg, txs, ExpenseInput{Amount: "100000", Category: "Ăn uống"}); err != nil {
		t.Fatalf("expected admission at exact limit, got %v", err)
	}
}
