package core

import "testing"

func txn(kind TransactionKind, amount int64, label string) Transaction {
	return Transaction{Kind: kind, Amount: amount, Label: label, Date: NewDate(2025, 9, 1)}
}

func TestAggregate(t *testing.T) {
	txs := []Transaction{
		txn(Income, 300000, SeedLabel),
		txn(Expense, 150000, "Ăn uống"),
		txn(Income, 50000, "Lương"),
		txn(Expense, 20000, "Đi lại"),
	}
	got := Aggregate(txs)
	if got.TotalIncome != 350000 || got.TotalExpense != 170000 || got.Balance != 180000 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.Balance != got.TotalIncome-got.TotalExpense {
		t.Fatalf("balance identity broken: %+v", got)
	}
}

func TestAggregateEmpty(t *testing.T) {
	if got := Aggregate(nil); got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestAggregateNegativeBalance(t *testing.T) {
	// Balance is not clamped; a transiently negative ledger reports as-is.
	got := Aggregate([]Transaction{txn(Expense, 5000, "Khác")})
	if got.Balance != -5000 {
		t.Fatalf("expected -5000 balance, got %d", got.Balance)
	}
}

func TestSpentInJar(t *testing.T) {
	txs := []Transaction{
		txn(Expense, 30000, "Ăn uống"),
		txn(Expense, 20000, "Ăn uống"),
		txn(Expense, 10000, "Đi lại"),
		txn(Income, 50000, "Ăn uống"), // income label matching a jar never counts
	}
	if got := SpentInJar(txs, "Ăn uống"); got != 50000 {
		t.Fatalf("SpentInJar = %d, want 50000", got)
	}
	if got := SpentInJar(txs, "Mua sắm"); got != 0 {
		t.Fatalf("SpentInJar for untouched jar = %d, want 0", got)
	}
}

func TestExpenseByCategory(t *testing.T) {
	txs := []Transaction{
		txn(Expense, 75000, "Ăn uống"),
		txn(Expense, 25000, "Đi lại"),
		txn(Income, 300000, SeedLabel),
	}
	got := ExpenseByCategory(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got))
	}
	if got[0].Name != "Ăn uống" || got[0].Amount != 75000 || got[0].Percent != 75 {
		t.Fatalf("unexpected first category: %+v", got[0])
	}
	if got[1].Name != "Đi lại" || got[1].Percent != 25 {
		t.Fatalf("unexpected second category: %+v", got[1])
	}
}

func TestExpenseByCategoryNoExpenses(t *testing.T) {
	if got := ExpenseByCategory([]Transaction{txn(Income, 1000, "x")}); len(got) != 0 {
		t.Fatalf("expected no categories, got %v", got)
	}
}

func TestExpenseByDay(t *testing.T) {
	txs := []Transaction{
		{Kind: Expense, Amount: 100, Label: "a", Date: NewDate(2025, 9, 2)},
		{Kind: Expense, Amount: 200, Label: "b", Date: NewDate(2025, 9, 1)},
		{Kind: Expense, Amount: 300, Label: "c", Date: NewDate(2025, 9, 2)},
	}
	got := ExpenseByDay(txs)
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
	if got[0].Date != NewDate(2025, 9, 1) || got[0].Amount != 200 {
		t.Fatalf("unexpected first day: %+v", got[0])
	}
	if got[1].Amount != 400 {
		t.Fatalf("expected day 2 total 400, got %d", got[1].Amount)
	}
}
