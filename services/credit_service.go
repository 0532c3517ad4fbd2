package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"veil_server/metrics"
	"veil_server/models"
)

// ActionCosts is the configurable price table for credit-gated actions.
type ActionCosts struct {
	FindMatch     int
	SkipMatch     int
	RequestReveal int
	AcceptReveal  int
}

// For returns the cost of an action kind. Unknown kinds are free.
func (c ActionCosts) For(action string) int {
	switch action {
	case models.CreditActionFindMatch:
		return c.FindMatch
	case models.CreditActionSkipMatch:
		return c.SkipMatch
	case models.CreditActionRequestReveal:
		return c.RequestReveal
	case models.CreditActionAcceptReveal:
		return c.AcceptReveal
	}
	return 0
}

// CreditService owns the per-user balance and the append-only ledger.
type CreditService struct {
	Store     CreditStore
	Allotment int
	Costs     ActionCosts
	Log       zerolog.Logger

	// Now is swappable so tests can cross midnight.
	Now func() time.Time
}

func NewCreditService(store CreditStore, allotment int, costs ActionCosts, log zerolog.Logger) *CreditService {
	return &CreditService{
		Store:     store,
		Allotment: allotment,
		Costs:     costs,
		Log:       log.With().Str("service", "credits").Logger(),
		Now:       time.Now,
	}
}

// GetBalance returns the current balance after applying the daily refresh if
// the stored refresh stamp is from an earlier calendar day. The comparison is
// by date components, so crossing local midnight triggers a refresh
// regardless of elapsed time.
func (s *CreditService) GetBalance(ctx context.Context, userID string) (*models.BalanceView, error) {
	if err := s.RefreshIfDue(ctx, userID); err != nil {
		return nil, err
	}
	balance, _, err := s.Store.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	next := nextMidnight(now)
	return &models.BalanceView{
		Balance:        balance,
		NextRefreshAt:  next,
		UntilRefresh:   next.Sub(now),
		UntilRefreshMs: next.Sub(now).Milliseconds(),
	}, nil
}

// RefreshIfDue resets the balance to the daily allotment when the last
// refresh happened on an earlier calendar day. A conditional write guards
// against two concurrent callers both refreshing; the loser just moves on.
func (s *CreditService) RefreshIfDue(ctx context.Context, userID string) error {
	_, lastRefresh, err := s.Store.Balance(ctx, userID)
	if err != nil {
		return err
	}

	now := s.Now()
	if lastRefresh != "" {
		last, err := time.Parse(time.RFC3339, lastRefresh)
		if err == nil && sameDay(last.In(now.Location()), now) {
			return nil
		}
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	previous, err := s.Store.ResetBalance(ctx, userID, s.Allotment, now, todayStart)
	if errors.Is(err, ErrConflict) {
		return nil // someone else refreshed first
	}
	if err != nil {
		return err
	}

	txn := &models.CreditTransaction{
		UserID:    userID,
		CreatedAt: models.Timestamp(now),
		TxnID:     uuid.NewString(),
		Action:    models.CreditActionDailyRefresh,
		Amount:    s.Allotment - previous,
		Balance:   s.Allotment,
	}
	if err := s.Store.AppendTransaction(ctx, txn); err != nil {
		return fmt.Errorf("failed to record daily refresh: %w", err)
	}
	s.Log.Info().Str("userId", userID).Int("balance", s.Allotment).Msg("daily credits refreshed")
	return nil
}

// CanAfford reports whether the (refreshed) balance covers the action.
func (s *CreditService) CanAfford(ctx context.Context, userID, action string) (bool, error) {
	if err := s.RefreshIfDue(ctx, userID); err != nil {
		return false, err
	}
	balance, _, err := s.Store.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= s.Costs.For(action), nil
}

// Charge debits the action's cost and appends the ledger entry. The debit is
// a conditional decrement, so two concurrent charges can never both succeed
// past a balance that only covers one.
func (s *CreditService) Charge(ctx context.Context, userID, action, matchID string) error {
	if err := s.RefreshIfDue(ctx, userID); err != nil {
		return err
	}

	cost := s.Costs.For(action)
	balance := 0
	if cost > 0 {
		var err error
		balance, err = s.Store.Debit(ctx, userID, cost)
		if err != nil {
			return err
		}
	} else {
		var err error
		balance, _, err = s.Store.Balance(ctx, userID)
		if err != nil {
			return err
		}
	}

	txn := &models.CreditTransaction{
		UserID:    userID,
		CreatedAt: models.Timestamp(s.Now()),
		TxnID:     uuid.NewString(),
		Action:    action,
		Amount:    -cost,
		Balance:   balance,
		MatchID:   matchID,
	}
	if err := s.Store.AppendTransaction(ctx, txn); err != nil {
		return fmt.Errorf("failed to record %s charge: %w", action, err)
	}
	metrics.CreditCharges.WithLabelValues(action).Inc()
	s.Log.Debug().Str("userId", userID).Str("action", action).Int("cost", cost).Int("balance", balance).Msg("credits charged")
	return nil
}

// Refund returns a previously charged amount, used when a downstream
// mutation fails after its charge was applied.
func (s *CreditService) Refund(ctx context.Context, userID, action string, amount int, matchID string) error {
	if amount <= 0 {
		return nil
	}
	balance, err := s.Store.Credit(ctx, userID, amount)
	if err != nil {
		return err
	}
	txn := &models.CreditTransaction{
		UserID:    userID,
		CreatedAt: models.Timestamp(s.Now()),
		TxnID:     uuid.NewString(),
		Action:    action,
		Amount:    amount,
		Balance:   balance,
		MatchID:   matchID,
	}
	return s.Store.AppendTransaction(ctx, txn)
}

// History returns ledger entries newest first.
func (s *CreditService) History(ctx context.Context, userID string, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.Store.ListTransactions(ctx, userID, limit)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
