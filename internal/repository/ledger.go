package repository

import (
	"context"
	"fmt"

	"github.com/ayo6706/bankcards/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppendTransaction inserts a single ledger entry. The store assigns the
// monotonic identifier and the UTC timestamp.
func (q *Queries) AppendTransaction(ctx context.Context, fromCardID, toCardID uuid.UUID, amount decimal.Decimal) (*models.Transaction, error) {
	tx := &models.Transaction{
		FromCardID: fromCardID,
		ToCardID:   toCardID,
		Amount:     amount,
	}
	err := q.db.QueryRow(ctx, `
		INSERT INTO transactions (from_card_id, to_card_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, ts`,
		fromCardID, toCardID, amount).Scan(&tx.ID, &tx.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("append transaction: %w", mapStoreError(err))
	}
	return tx, nil
}

// ListTransactionsForCard returns every ledger entry where the card appears
// as source or destination, in insertion order.
func (q *Queries) ListTransactionsForCard(ctx context.Context, cardID uuid.UUID) ([]models.Transaction, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, from_card_id, to_card_id, amount, ts
		FROM transactions
		WHERE from_card_id = $1 OR to_card_id = $1
		ORDER BY id`,
		cardID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", mapStoreError(err))
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.FromCardID, &tx.ToCardID, &tx.Amount, &tx.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", mapStoreError(err))
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", mapStoreError(err))
	}
	return txs, nil
}

// TransactionWithNumbers joins a ledger entry with both parties' full card
// numbers. Masking happens above the store.
type TransactionWithNumbers struct {
	Transaction    models.Transaction
	FromCardNumber string
	ToCardNumber   string
}

// ListTransactionsWithNumbers returns the card's ledger entries in
// insertion order together with the participating card numbers.
func (q *Queries) ListTransactionsWithNumbers(ctx context.Context, cardID uuid.UUID) ([]TransactionWithNumbers, error) {
	rows, err := q.db.Query(ctx, `
		SELECT t.id, t.from_card_id, t.to_card_id, t.amount, t.ts, cf.card_number, ct.card_number
		FROM transactions t
		JOIN cards cf ON cf.id = t.from_card_id
		JOIN cards ct ON ct.id = t.to_card_id
		WHERE t.from_card_id = $1 OR t.to_card_id = $1
		ORDER BY t.id`,
		cardID)
	if err != nil {
		return nil, fmt.Errorf("list transactions with numbers: %w", mapStoreError(err))
	}
	defer rows.Close()

	var out []TransactionWithNumbers
	for rows.Next() {
		var row TransactionWithNumbers
		tx := &row.Transaction
		if err := rows.Scan(&tx.ID, &tx.FromCardID, &tx.ToCardID, &tx.Amount, &tx.Timestamp,
			&row.FromCardNumber, &row.ToCardNumber); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", mapStoreError(err))
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", mapStoreError(err))
	}
	return out, nil
}

// CountTransactions reports the total number of ledger entries.
func (q *Queries) CountTransactions(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", mapStoreError(err))
	}
	return n, nil
}
