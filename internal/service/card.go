package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CardService exposes card queries and administrative card management.
type CardService struct {
	store QueryStore
}

func NewCardService(store QueryStore) *CardService {
	return &CardService{store: store}
}

// GetBalance returns the card's current balance. Blocked and expired cards
// do not expose their balance.
func (s *CardService) GetBalance(ctx context.Context, cardID uuid.UUID) (decimal.Decimal, error) {
	card, err := s.store.Queries().GetCard(ctx, cardID)
	if err != nil {
		return decimal.Zero, err
	}
	if !card.Status.Usable() {
		return decimal.Zero, fmt.Errorf("card is %s: %w", card.Status, models.ErrCardNotUsable)
	}
	return card.Balance, nil
}

func (s *CardService) GetCard(ctx context.Context, cardID uuid.UUID) (*models.Card, error) {
	return s.store.Queries().GetCard(ctx, cardID)
}

func (s *CardService) GetCardByNumber(ctx context.Context, number string) (*models.Card, error) {
	return s.store.Queries().GetCardByNumber(ctx, number)
}

// ListUserCards returns one page of the owner's cards as masked projections
// plus the total match count.
func (s *CardService) ListUserCards(ctx context.Context, ownerID uuid.UUID, filter models.CardFilter, page models.Page) ([]models.CardListItem, int64, error) {
	return s.store.Queries().ListCardsByOwner(ctx, ownerID, filter, page)
}

// CreateCard issues a new card for the owner. Administrative operation.
func (s *CardService) CreateCard(ctx context.Context, ownerID uuid.UUID, number string, expiration time.Time, balance decimal.Decimal) (*models.Card, error) {
	if err := domain.ValidateCardNumber(number); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidCardNumber, err)
	}
	if balance.IsNegative() || !domain.CentPrecision(balance) {
		return nil, models.ErrInvalidAmount
	}
	if _, err := s.store.Queries().GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	card := &models.Card{
		ID:             uuid.New(),
		CardNumber:     number,
		OwnerID:        ownerID,
		ExpirationDate: expiration,
		Status:         domain.StatusActive,
		Balance:        balance,
	}
	saved, err := s.store.Queries().SaveCard(ctx, card)
	if err != nil {
		return nil, err
	}

	zap.L().Info("card created",
		zap.String("card_id", saved.ID.String()),
		zap.String("card", domain.MaskCardNumber(saved.CardNumber)),
		zap.String("owner_id", ownerID.String()),
	)
	return saved, nil
}

// DeleteCard removes a card that the ledger does not reference. Deletion of
// a card with transaction history is refused rather than leaving dangling
// ledger entries.
func (s *CardService) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if _, err := q.GetCardForUpdate(ctx, cardID); err != nil {
			return err
		}
		refs, err := q.CountLedgerEntries(ctx, cardID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("card is referenced by %d ledger entries: %w", refs, models.ErrConflict)
		}
		return q.DeleteCard(ctx, cardID)
	})
	if err != nil {
		return err
	}

	zap.L().Info("card deleted", zap.String("card_id", cardID.String()))
	return nil
}
