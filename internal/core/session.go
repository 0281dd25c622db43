package core

import "fmt"

// Session is the per-user aggregate: the active challenge configuration (nil
// when no challenge is selected) and the ordered transaction history,
// most recent first. All ledger mutation goes through Session methods; the
// session is threaded explicitly through every operation, never looked up
// from ambient state.
type Session struct {
	Config       *ChallengeConfig
	Transactions []Transaction

	// Seq is the last assigned transaction sequence number. It survives
	// resets so transaction ids stay unique for the life of the session.
	Seq int64
}

// IncomeInput carries the raw income form fields.
type IncomeInput struct {
	Amount string
	Source string
	Date   Date
	Notes  string
}

// JarProgress is the derived per-jar view: limit, spent-to-date and the
// rounded percentage of the envelope consumed.
type JarProgress struct {
	Name    string
	Limit   int64
	Spent   int64
	Percent int
}

// Overview is the render bundle the presentation layer consumes.
type Overview struct {
	Phase      Phase
	Totals     Totals
	CurrentDay int
	TotalDays  int
	Jars       []JarProgress
}

// NewSession returns an empty session with no challenge selected.
func NewSession() *Session {
	return &Session{}
}

func (s *Session) nextID(kind TransactionKind) string {
	s.Seq++
	return fmt.Sprintf("%s-%d", kind, s.Seq)
}

// Phase derives the lifecycle state for the given date.
func (s *Session) Phase(today Date) Phase {
	switch {
	case s.Config == nil:
		return PhaseNone
	case s.Config.TotalBudget <= 0:
		return PhaseConfiguring
	case IsElapsed(CurrentDay(s.Config.StartDate, today), s.Config.DurationDays):
		return PhaseCompleted
	default:
		return PhaseActive
	}
}

// StartChallenge selects a challenge length and starts the configuration
// step. Any previous challenge state is discarded; the start date is fixed
// to today and immutable thereafter.
func (s *Session) StartChallenge(durationDays int, today Date) error {
	if !ValidDuration(durationDays) {
		return ErrInvalidDuration
	}
	s.Config = &ChallengeConfig{DurationDays: durationDays, StartDate: today}
	s.Transactions = nil
	return nil
}

// CompleteSetup validates the jar allocation and, on success, freezes the
// configuration and seeds the ledger with the protected budget transaction.
func (s *Session) CompleteSetup(in AllocationInput, today Date) error {
	if s.Config == nil {
		return ErrNoActiveChallenge
	}
	if s.Config.TotalBudget > 0 {
		return ErrAlreadyConfigured
	}
	cfg, err := ValidateAllocation(s.Config.DurationDays, s.Config.StartDate, in)
	if err != nil {
		return err
	}
	s.Config = &cfg
	seed := NewSeedTransaction(s.nextID(Income), cfg.TotalBudget, cfg.DurationDays, today)
	s.Transactions = []Transaction{seed}
	return nil
}

// RecordIncome admits an income transaction. Any positive, well-formed
// income is admitted unconditionally; there is no income ceiling.
func (s *Session) RecordIncome(in IncomeInput) (Transaction, error) {
	if err := s.requireActive(); err != nil {
		return Transaction{}, err
	}
	amount := ParseAmount(in.Amount)
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	tx := Transaction{
		ID:     s.nextID(Income),
		Kind:   Income,
		Amount: amount,
		Label:  in.Source,
		Date:   in.Date,
		Notes:  in.Notes,
	}
	s.prepend(tx)
	return tx, nil
}

// RecordExpense runs the admission gate and, on admission, appends the
// expense to the ledger. Rejections leave the session unchanged.
func (s *Session) RecordExpense(in ExpenseInput) (Transaction, error) {
	if err := s.requireActive(); err != nil {
		return Transaction{}, err
	}
	amount, err := AdmitExpense(*s.Config, s.Transactions, in)
	if err != nil {
		return Transaction{}, err
	}
	tx := Transaction{
		ID:     s.nextID(Expense),
		Kind:   Expense,
		Amount: amount,
		Label:  in.Category,
		Date:   in.Date,
		Notes:  in.Notes,
	}
	s.prepend(tx)
	return tx, nil
}

// DeleteTransaction removes a transaction by id. The synthetic seed
// transaction is protected for the life of the challenge.
func (s *Session) DeleteTransaction(id string) error {
	for i, tx := range s.Transactions {
		if tx.ID != id {
			continue
		}
		if tx.Seed {
			return ErrProtectedRecord
		}
		s.Transactions = append(s.Transactions[:i], s.Transactions[i+1:]...)
		return nil
	}
	return ErrNotFound
}

// ResetChallenge clears the configuration and the transaction history. Not
// carrying transactions into the next challenge is the default behavior.
func (s *Session) ResetChallenge() {
	s.Config = nil
	s.Transactions = nil
}

// Overview computes the derived aggregates for rendering: totals, the
// day-of-challenge pair and per-jar progress. Pure; safe to call on every
// view.
func (s *Session) Overview(today Date) Overview {
	ov := Overview{Phase: s.Phase(today)}
	if s.Config == nil {
		return ov
	}
	ov.Totals = Aggregate(s.Transactions)
	ov.CurrentDay = CurrentDay(s.Config.StartDate, today)
	ov.TotalDays = s.Config.DurationDays
	for _, j := range s.Config.Jars {
		spent := SpentInJar(s.Transactions, j.Name)
		percent := 0
		if j.Limit > 0 {
			percent = int((spent*100 + j.Limit/2) / j.Limit)
		}
		ov.Jars = append(ov.Jars, JarProgress{Name: j.Name, Limit: j.Limit, Spent: spent, Percent: percent})
	}
	return ov
}

func (s *Session) requireActive() error {
	if s.Config == nil || s.Config.TotalBudget <= 0 {
		return ErrNoActiveChallenge
	}
	return nil
}

func (s *Session) prepend(tx Transaction) {
	s.Transactions = append([]Transaction{tx}, s.Transactions...)
}

// Clone returns a deep copy of the session. Stores hand out clones so
// callers never share ledger slices.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Seq: s.Seq}
	if s.Config != nil {
		cfg := *s.Config
		cfg.Jars = append([]Jar(nil), s.Config.Jars...)
		out.Config = &cfg
	}
	out.Transactions = append([]Transaction(nil), s.Transactions...)
	return out
}
