package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/ayo6706/bankcards/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const cardColumns = `id, card_number, owner_id, expiration_date, status, balance, created_at`

func scanCard(row pgx.Row) (*models.Card, error) {
	card := &models.Card{}
	var status string
	err := row.Scan(&card.ID, &card.CardNumber, &card.OwnerID, &card.ExpirationDate, &status, &card.Balance, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrCardNotFound
		}
		return nil, fmt.Errorf("scan card: %w", mapStoreError(err))
	}
	card.Status = domain.CardStatus(status)
	return card, nil
}

// GetCard fetches a card by identifier.
func (q *Queries) GetCard(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := q.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return scanCard(row)
}

// GetCardByNumber fetches a card by its full card number.
func (q *Queries) GetCardByNumber(ctx context.Context, number string) (*models.Card, error) {
	row := q.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_number = $1`, number)
	return scanCard(row)
}

// GetCardForUpdate fetches a card by identifier holding its row lock for the
// rest of the enclosing transaction.
func (q *Queries) GetCardForUpdate(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	row := q.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1 FOR UPDATE`, id)
	return scanCard(row)
}

// GetCardByNumberForUpdate fetches a card by number holding its row lock.
func (q *Queries) GetCardByNumberForUpdate(ctx context.Context, number string) (*models.Card, error) {
	row := q.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE card_number = $1 FOR UPDATE`, number)
	return scanCard(row)
}

// ListCardsByStatus returns all cards in the given lifecycle state.
func (q *Queries) ListCardsByStatus(ctx context.Context, status domain.CardStatus) ([]models.Card, error) {
	rows, err := q.db.Query(ctx, `SELECT `+cardColumns+` FROM cards WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list cards by status: %w", mapStoreError(err))
	}
	defer rows.Close()
	return collectCards(rows)
}

// ListOverdueActiveForUpdate returns ACTIVE cards whose expiration date is
// strictly before asOf, locking each returned row.
func (q *Queries) ListOverdueActiveForUpdate(ctx context.Context, asOf time.Time) ([]models.Card, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE status = $1 AND expiration_date < $2 ORDER BY id FOR UPDATE`,
		string(domain.StatusActive), asOf)
	if err != nil {
		return nil, fmt.Errorf("list overdue cards: %w", mapStoreError(err))
	}
	defer rows.Close()
	return collectCards(rows)
}

func collectCards(rows pgx.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		var card models.Card
		var status string
		if err := rows.Scan(&card.ID, &card.CardNumber, &card.OwnerID, &card.ExpirationDate, &status, &card.Balance, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card row: %w", mapStoreError(err))
		}
		card.Status = domain.CardStatus(status)
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", mapStoreError(err))
	}
	return cards, nil
}

// ListCardsByOwner returns a page of the owner's cards as masked projections,
// optionally narrowed by a card-number search term and a status filter,
// together with the total match count.
func (q *Queries) ListCardsByOwner(ctx context.Context, ownerID uuid.UUID, filter models.CardFilter, page models.Page) ([]models.CardListItem, int64, error) {
	where := `owner_id = $1`
	args := []any{ownerID}
	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		where += fmt.Sprintf(` AND card_number LIKE $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM cards WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count owner cards: %w", mapStoreError(err))
	}

	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(
		`SELECT id, card_number, expiration_date, status, balance FROM cards WHERE %s ORDER BY created_at LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list owner cards: %w", mapStoreError(err))
	}
	defer rows.Close()

	var items []models.CardListItem
	for rows.Next() {
		var item models.CardListItem
		var number, status string
		if err := rows.Scan(&item.ID, &number, &item.ExpirationDate, &status, &item.Balance); err != nil {
			return nil, 0, fmt.Errorf("scan owner card: %w", mapStoreError(err))
		}
		item.MaskedNumber = domain.MaskCardNumber(number)
		item.Status = domain.CardStatus(status)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate owner cards: %w", mapStoreError(err))
	}
	return items, total, nil
}

// SaveCard upserts a card by identifier. Card-number uniqueness is enforced
// by the store; a duplicate number surfaces as Conflict.
func (q *Queries) SaveCard(ctx context.Context, card *models.Card) (*models.Card, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO cards (id, card_number, owner_id, expiration_date, status, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET card_number = EXCLUDED.card_number,
		    owner_id = EXCLUDED.owner_id,
		    expiration_date = EXCLUDED.expiration_date,
		    status = EXCLUDED.status,
		    balance = EXCLUDED.balance
		RETURNING `+cardColumns,
		card.ID, card.CardNumber, card.OwnerID, card.ExpirationDate, string(card.Status), card.Balance)
	saved, err := scanCard(row)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return saved, nil
}

// UpdateCardBalance sets a card's balance.
func (q *Queries) UpdateCardBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	tag, err := q.db.Exec(ctx, `UPDATE cards SET balance = $1 WHERE id = $2`, balance, id)
	if err != nil {
		return fmt.Errorf("update card balance: %w", mapStoreError(err))
	}
	if tag.RowsAffected() != 1 {
		return models.ErrCardNotFound
	}
	return nil
}

// UpdateCardStatus sets a card's lifecycle status.
func (q *Queries) UpdateCardStatus(ctx context.Context, id uuid.UUID, status domain.CardStatus) error {
	tag, err := q.db.Exec(ctx, `UPDATE cards SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update card status: %w", mapStoreError(err))
	}
	if tag.RowsAffected() != 1 {
		return models.ErrCardNotFound
	}
	return nil
}

// ExpireCard marks a card EXPIRED and zeroes its balance in one statement so
// the EXPIRED-implies-zero-balance invariant holds at every commit point.
func (q *Queries) ExpireCard(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE cards SET status = $1, balance = 0 WHERE id = $2`, string(domain.StatusExpired), id)
	if err != nil {
		return fmt.Errorf("expire card: %w", mapStoreError(err))
	}
	if tag.RowsAffected() != 1 {
		return models.ErrCardNotFound
	}
	return nil
}

// CountLedgerEntries reports how many ledger entries reference the card on
// either side.
func (q *Queries) CountLedgerEntries(ctx context.Context, cardID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE from_card_id = $1 OR to_card_id = $1`, cardID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", mapStoreError(err))
	}
	return n, nil
}

// DeleteCard removes a card. Deleting a card the ledger still references
// surfaces as Conflict via the RESTRICT foreign keys.
func (q *Queries) DeleteCard(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", mapStoreError(err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrCardNotFound
	}
	return nil
}
