package core

import "sort"

// Totals are the ledger aggregates. They are always recomputed from the
// transaction history, never stored. Balance may be negative only in states
// the admission gate is designed to prevent going forward; it is not clamped.
type Totals struct {
	TotalIncome  int64
	TotalExpense int64
	Balance      int64
}

// CategoryAmount is an expense total for one category, with its integer
// share of the overall expense.
type CategoryAmount struct {
	Name    string
	Amount  int64
	Percent int
}

// DayAmount is the expense total for one calendar day.
type DayAmount struct {
	Date   Date
	Amount int64
}

// Aggregate computes total income, total expense and balance from the
// transaction history. Order-independent; O(n) on personal-finance volumes.
func Aggregate(txs []Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Kind {
		case Income:
			t.TotalIncome += tx.Amount
		case Expense:
			t.TotalExpense += tx.Amount
		}
	}
	t.Balance = t.TotalIncome - t.TotalExpense
	return t
}

// SpentInJar sums the expense amounts recorded against the named jar.
func SpentInJar(txs []Transaction, jarName string) int64 {
	var sum int64
	for _, tx := range txs {
		if tx.Kind == Expense && tx.Label == jarName {
			sum += tx.Amount
		}
	}
	return sum
}

// ExpenseByCategory breaks down expenses per category, sorted by amount
// descending. Percentages are rounded to whole percent and computed against
// the overall expense total.
func ExpenseByCategory(txs []Transaction) []CategoryAmount {
	totals := Aggregate(txs)
	byName := make(map[string]int64)
	var order []string
	for _, tx := range txs {
		if tx.Kind != Expense {
			continue
		}
		if _, ok := byName[tx.Label]; !ok {
			order = append(order, tx.Label)
		}
		byName[tx.Label] += tx.Amount
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		amount := byName[name]
		percent := 0
		if totals.TotalExpense > 0 {
			percent = int((amount*100 + totals.TotalExpense/2) / totals.TotalExpense)
		}
		out = append(out, CategoryAmount{Name: name, Amount: amount, Percent: percent})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// ExpenseByDay breaks down expenses per calendar day, sorted ascending.
func ExpenseByDay(txs []Transaction) []DayAmount {
	byDay := make(map[string]*DayAmount)
	for _, tx := range txs {
		if tx.Kind != Expense {
			continue
		}
		key := tx.Date.String()
		if d, ok := byDay[key]; ok {
			d.Amount += tx.Amount
		} else {
			byDay[key] = &DayAmount{Date: tx.Date, Amount: tx.Amount}
		}
	}
	out := make([]DayAmount, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out
}
