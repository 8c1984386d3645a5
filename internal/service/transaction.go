package service

import (
	"context"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
)

// TransactionService reads the ledger on behalf of a card.
type TransactionService struct {
	store QueryStore
}

func NewTransactionService(store QueryStore) *TransactionService {
	return &TransactionService{store: store}
}

// ListForCard returns every transaction the card participated in, as source
// or destination, in insertion order. Both card numbers are masked in the
// returned views.
func (s *TransactionService) ListForCard(ctx context.Context, cardNumber string) (*models.Card, []models.TransactionView, error) {
	card, err := s.store.Queries().GetCardByNumber(ctx, cardNumber)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.store.Queries().ListTransactionsWithNumbers(ctx, card.ID)
	if err != nil {
		return nil, nil, err
	}

	views := make([]models.TransactionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.TransactionView{
			ID:        row.Transaction.ID,
			FromCard:  domain.MaskCardNumber(row.FromCardNumber),
			ToCard:    domain.MaskCardNumber(row.ToCardNumber),
			Amount:    row.Transaction.Amount,
			Timestamp: row.Transaction.Timestamp,
		})
	}
	return card, views, nil
}
