package models

import (
	"time"

	"github.com/ayo6706/bankcards/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // "ADMIN" or "USER"
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Card struct {
	ID             uuid.UUID         `json:"id"`
	CardNumber     string            `json:"card_number"`
	OwnerID        uuid.UUID         `json:"owner_id"`
	ExpirationDate time.Time         `json:"expiration_date"`
	Status         domain.CardStatus `json:"status"`
	Balance        decimal.Decimal   `json:"balance"`
	CreatedAt      time.Time         `json:"created_at"`
}

// Transaction is one immutable ledger entry: funds moved from one card to
// another at a single instant. The ledger is append-only.
type Transaction struct {
	ID         int64           `json:"id"`
	FromCardID uuid.UUID       `json:"from_card_id"`
	ToCardID   uuid.UUID       `json:"to_card_id"`
	Amount     decimal.Decimal `json:"amount"`
	Timestamp  time.Time       `json:"timestamp"`
}

// TransactionView is the caller-facing rendering of a ledger entry. Card
// numbers are always masked so one party never learns the counterparty's
// full number.
type TransactionView struct {
	ID        int64           `json:"id"`
	FromCard  string          `json:"from_card"`
	ToCard    string          `json:"to_card"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// CardListItem is the masked projection returned by owner-scoped listings.
type CardListItem struct {
	ID             uuid.UUID         `json:"id"`
	MaskedNumber   string            `json:"masked_number"`
	ExpirationDate time.Time         `json:"expiration_date"`
	Status         domain.CardStatus `json:"status"`
	Balance        decimal.Decimal   `json:"balance"`
}

// CardFilter narrows owner-scoped card listings.
type CardFilter struct {
	SearchTerm string
	Status     *domain.CardStatus
}

// Page is a 1-based pagination request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	n := p.Number
	if n < 1 {
		n = 1
	}
	return (n - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.Size < 1 {
		return 10
	}
	return p.Size
}
