// Package services orchestrates challenge operations across the session
// store and the event broker.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/amqp"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/core"
	applog "github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/log"
	"github.com/Tung1601-IT/quan-ly-thu-chi-7-14-30/internal/store"
)

// ChallengeService loads a user's session, applies one core operation and
// persists the result. Event publishing is best effort: a broker failure
// never fails the request, the state is already saved.
type ChallengeService struct {
	store  store.SessionStore
	events *amqp.Client
	now    func() time.Time
}

func NewChallengeService(sessions store.SessionStore, events *amqp.Client) *ChallengeService {
	return &ChallengeService{
		store:  sessions,
		events: events,
		now:    time.Now,
	}
}

// Statistics groups the expense breakdowns served by the statistics endpoint.
type Statistics struct {
	ByCategory []core.CategoryAmount
	ByDay      []core.DayAmount
}

func (s *ChallengeService) load(ctx context.Context, userKey string) (*core.Session, error) {
	sess, err := s.store.Load(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = core.NewSession()
	}
	return sess, nil
}

func (s *ChallengeService) save(ctx context.Context, userKey string, sess *core.Session) error {
	if err := s.store.Save(ctx, userKey, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *ChallengeService) today() core.Date {
	return core.DateOf(s.now())
}

func (s *ChallengeService) Overview(ctx context.Context, userKey string) (core.Overview, error) {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return core.Overview{}, err
	}
	return sess.Overview(s.today()), nil
}

func (s *ChallengeService) Transactions(ctx context.Context, userKey string) ([]core.Transaction, error) {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return nil, err
	}
	return sess.Transactions, nil
}

func (s *ChallengeService) Statistics(ctx context.Context, userKey string) (Statistics, error) {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		ByCategory: core.ExpenseByCategory(sess.Transactions),
		ByDay:      core.ExpenseByDay(sess.Transactions),
	}, nil
}

// StartChallenge begins a new challenge of the given duration, replacing
// whatever session state the user had before.
func (s *ChallengeService) StartChallenge(ctx context.Context, userKey string, durationDays int) error {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return err
	}
	if err := sess.StartChallenge(durationDays, s.today()); err != nil {
		return err
	}
	if err := s.save(ctx, userKey, sess); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventChallengeSelected, userKey, s.now()))
	return nil
}

// CompleteSetup validates the budget allocation and activates the challenge.
func (s *ChallengeService) CompleteSetup(ctx context.Context, userKey string, in core.AllocationInput) error {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return err
	}
	if err := sess.CompleteSetup(in, s.today()); err != nil {
		return err
	}
	if err := s.save(ctx, userKey, sess); err != nil {
		return err
	}

	ev := amqp.NewLedgerEvent(amqp.EventChallengeConfigured, userKey, s.now())
	ev.Amount = sess.Config.TotalBudget
	s.publish(ctx, ev)
	return nil
}

func (s *ChallengeService) RecordIncome(ctx context.Context, userKey string, in core.IncomeInput) (core.Transaction, error) {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return core.Transaction{}, err
	}
	if in.Date.IsZero() {
		in.Date = s.today()
	}
	tx, err := sess.RecordIncome(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.save(ctx, userKey, sess); err != nil {
		return core.Transaction{}, err
	}

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRecorded, userKey, s.now())
	ev.TransactionID = tx.ID
	ev.Amount = tx.Amount
	s.publish(ctx, ev)
	return tx, nil
}

func (s *ChallengeService) RecordExpense(ctx context.Context, userKey string, in core.ExpenseInput) (core.Transaction, error) {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return core.Transaction{}, err
	}
	if in.Date.IsZero() {
		in.Date = s.today()
	}
	tx, err := sess.RecordExpense(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.save(ctx, userKey, sess); err != nil {
		return core.Transaction{}, err
	}

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRecorded, userKey, s.now())
	ev.TransactionID = tx.ID
	ev.Amount = tx.Amount
	s.publish(ctx, ev)
	return tx, nil
}

func (s *ChallengeService) DeleteTransaction(ctx context.Context, userKey, id string) error {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return err
	}
	if err := sess.DeleteTransaction(id); err != nil {
		return err
	}
	if err := s.save(ctx, userKey, sess); err != nil {
		return err
	}

	ev := amqp.NewLedgerEvent(amqp.EventTransactionDeleted, userKey, s.now())
	ev.TransactionID = id
	s.publish(ctx, ev)
	return nil
}

// ResetChallenge abandons the current challenge and its ledger.
func (s *ChallengeService) ResetChallenge(ctx context.Context, userKey string) error {
	sess, err := s.load(ctx, userKey)
	if err != nil {
		return err
	}
	sess.ResetChallenge()
	if err := s.save(ctx, userKey, sess); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventChallengeReset, userKey, s.now()))
	return nil
}

func (s *ChallengeService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			applog.FieldEvent, event.Event,
			applog.FieldUserKey, event.UserKey,
			applog.FieldError, err)
	}
}
