package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/ayo6706/bankcards/internal/observability"
	"github.com/ayo6706/bankcards/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransferService moves funds between two cards. The debit, the credit and
// the ledger append commit together or not at all: both card rows are
// locked in lexicographic card-number order (so opposite-direction
// transfers cannot deadlock) and every precondition is re-validated on the
// locked rows, never on values read earlier in the request.
type TransferService struct {
	store QueryStore
}

func NewTransferService(store QueryStore) *TransferService {
	return &TransferService{store: store}
}

// Transfer debits fromNumber by amount, credits toNumber and appends one
// ledger entry, returning the created transaction.
func (s *TransferService) Transfer(ctx context.Context, fromNumber, toNumber string, amount decimal.Decimal) (*models.Transaction, error) {
	if fromNumber == toNumber {
		return nil, models.ErrSameCardTransfer
	}
	if !amount.IsPositive() || !domain.CentPrecision(amount) {
		return nil, models.ErrInvalidAmount
	}

	var created *models.Transaction
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		source, dest, err := lockCardPair(ctx, q, fromNumber, toNumber)
		if err != nil {
			return err
		}

		if !source.Status.Usable() {
			return fmt.Errorf("source card %s is %s: %w",
				domain.MaskCardNumber(fromNumber), source.Status, models.ErrCardNotUsable)
		}
		if source.Balance.LessThan(amount) {
			return fmt.Errorf("source card %s: %w",
				domain.MaskCardNumber(fromNumber), models.ErrInsufficientFunds)
		}

		if err := q.UpdateCardBalance(ctx, source.ID, source.Balance.Sub(amount)); err != nil {
			return err
		}
		if err := q.UpdateCardBalance(ctx, dest.ID, dest.Balance.Add(amount)); err != nil {
			return err
		}

		created, err = q.AppendTransaction(ctx, source.ID, dest.ID, amount)
		return err
	})
	if err != nil {
		observability.IncrementTransfer(transferOutcome(err))
		return nil, err
	}

	observability.IncrementTransfer("success")
	zap.L().Info("transfer completed",
		zap.Int64("transaction_id", created.ID),
		zap.String("from_card", domain.MaskCardNumber(fromNumber)),
		zap.String("to_card", domain.MaskCardNumber(toNumber)),
		zap.String("amount", domain.FormatAmount(amount)),
	)
	return created, nil
}

// lockCardPair acquires FOR UPDATE locks on both cards in lexicographic
// card-number order and returns them as (source, destination). Missing-card
// errors keep the reporting precedence: a missing source is reported before a
// missing destination.
func lockCardPair(ctx context.Context, q *repository.Queries, fromNumber, toNumber string) (*models.Card, *models.Card, error) {
	first, second := fromNumber, toNumber
	if first > second {
		first, second = second, first
	}

	locked := make(map[string]*models.Card, 2)
	for _, number := range []string{first, second} {
		card, err := q.GetCardByNumberForUpdate(ctx, number)
		if err != nil {
			if errors.Is(err, models.ErrCardNotFound) {
				return nil, nil, notFoundFor(ctx, q, number, fromNumber, toNumber)
			}
			return nil, nil, err
		}
		locked[number] = card
	}
	return locked[fromNumber], locked[toNumber], nil
}

// notFoundFor maps a missing card onto the right party. When the
// destination was locked first and is absent, the source may be absent
// too; the source takes precedence.
func notFoundFor(ctx context.Context, q *repository.Queries, missing, fromNumber, toNumber string) error {
	if missing != fromNumber {
		if _, err := q.GetCardByNumber(ctx, fromNumber); errors.Is(err, models.ErrCardNotFound) {
			missing = fromNumber
		}
	}
	party := "destination"
	if missing == fromNumber {
		party = "source"
	}
	return fmt.Errorf("%s card %s: %w", party, domain.MaskCardNumber(missing), models.ErrCardNotFound)
}

func transferOutcome(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrCardNotUsable):
		return "card_not_usable"
	case errors.Is(err, models.ErrCardNotFound):
		return "card_not_found"
	case errors.Is(err, models.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
