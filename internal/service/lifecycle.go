package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/observability"
	"github.com/ayo6706/bankcards/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleService owns the card status state machine and the expiration
// sweep. Manual transitions only ever move between ACTIVE and BLOCKED;
// EXPIRED is entered exclusively by the sweep and is terminal.
type LifecycleService struct {
	store QueryStore
}

func NewLifecycleService(store QueryStore) *LifecycleService {
	return &LifecycleService{store: store}
}

// ChangeStatus applies a manual ACTIVE<->BLOCKED transition and returns the
// updated card. The card row stays locked for the duration so a status
// change can never interleave with a transfer on the same card.
func (s *LifecycleService) ChangeStatus(ctx context.Context, cardID uuid.UUID, target domain.CardStatus) (*models.Card, error) {
	if target != domain.StatusActive && target != domain.StatusBlocked {
		return nil, fmt.Errorf("target status %s: %w", target, models.ErrInvalidTransition)
	}

	var updated *models.Card
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		card, err := q.GetCardForUpdate(ctx, cardID)
		if err != nil {
			return err
		}
		if card.Status == target {
			return fmt.Errorf("status is already %s: %w", target, models.ErrNoOp)
		}
		if !card.Status.CanTransitionTo(target) {
			return fmt.Errorf("cannot move %s card to %s: %w", card.Status, target, models.ErrInvalidTransition)
		}
		if err := q.UpdateCardStatus(ctx, cardID, target); err != nil {
			return err
		}
		card.Status = target
		updated = card
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("card status changed",
		zap.String("card_id", cardID.String()),
		zap.String("status", updated.Status.String()),
	)
	return updated, nil
}

// ExpireOverdue marks every ACTIVE card whose expiration date is strictly
// before asOf's calendar day as EXPIRED with a zero balance, committing the
// whole batch at once. Running it again the same day finds nothing left to
// do. Returns the number of cards expired.
func (s *LifecycleService) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	day := asOf.UTC()
	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var expired int
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		expired = 0
		overdue, err := q.ListOverdueActiveForUpdate(ctx, today)
		if err != nil {
			return err
		}
		for _, card := range overdue {
			if err := q.ExpireCard(ctx, card.ID); err != nil {
				return err
			}
			// Funds are forfeited on expiry, not moved. Downstream systems
			// reconcile from this log line and the ledger.
			zap.L().Warn("card expired",
				zap.String("card_id", card.ID.String()),
				zap.String("card", domain.MaskCardNumber(card.CardNumber)),
				zap.Time("expiration_date", card.ExpirationDate),
				zap.String("forfeited_balance", domain.FormatAmount(card.Balance)),
			)
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	observability.AddExpiredCards(expired)
	if expired > 0 {
		zap.L().Info("expiration sweep finished", zap.Int("expired", expired))
	}
	return expired, nil
}
